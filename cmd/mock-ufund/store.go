package main

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/theeman05/SWEN-261-StudentUFund/model"
	"github.com/theeman05/SWEN-261-StudentUFund/notify"
)

// Store errors, mapped onto HTTP statuses by the handlers.
var (
	errNotFound  = errors.New("not found")
	errConflict  = errors.New("conflict")
	errForbidden = errors.New("forbidden")
)

// store holds the whole backend state in memory: the needs catalog, the
// registered supporters with their baskets, the receipt ledger, the
// inboxes, and the single current session, matching the original server's
// one-session-at-a-time model.
type store struct {
	mu         sync.Mutex
	needs      map[string]model.Need            // catalog; Stock is remaining inventory
	supporters map[string]map[string]model.Need // username → basket (need name → entry)
	receipts   map[string]map[string]*model.Receipt
	inboxes    map[string]map[string]model.NeedMessage // username → need name → slot
	current    string                                   // logged-in username, "" = none

	// onChange, when set, receives every catalog mutation for the
	// need-change feed.
	onChange func(notify.NeedEvent)
}

func newStore() *store {
	return &store{
		needs:      make(map[string]model.Need),
		supporters: make(map[string]map[string]model.Need),
		receipts:   make(map[string]map[string]*model.Receipt),
		inboxes:    make(map[string]map[string]model.NeedMessage),
	}
}

func (s *store) emit(t notify.EventType, need model.Need) {
	if s.onChange != nil {
		s.onChange(notify.NeedEvent{Type: t, Need: need})
	}
}

// ReplaceCatalog swaps the needs catalog wholesale (seed load and reload).
// Supporter baskets are not touched; stale entries are clamped away on the
// next basket fetch.
func (s *store) ReplaceCatalog(needs []model.Need) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.needs = make(map[string]model.Need, len(needs))
	for _, n := range needs {
		n.Quantity = 0
		s.needs[n.Name] = n
	}
}

// --- catalog ---

func (s *store) Needs() []model.Need {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedNeeds(s.needs)
}

func sortedNeeds(m map[string]model.Need) []model.Need {
	needs := make([]model.Need, 0, len(m))
	for _, n := range m {
		needs = append(needs, n)
	}
	sort.Slice(needs, func(i, j int) bool { return needs[i].Name < needs[j].Name })
	return needs
}

func (s *store) Need(name string) (model.Need, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.needs[name]
	return n, ok
}

func (s *store) Search(term string) []model.Need {
	s.mu.Lock()
	defer s.mu.Unlock()
	term = strings.ToLower(term)
	matches := make(map[string]model.Need)
	for name, n := range s.needs {
		if strings.Contains(strings.ToLower(name), term) {
			matches[name] = n
		}
	}
	return sortedNeeds(matches)
}

func (s *store) CreateNeed(n model.Need) (model.Need, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.needs[n.Name]; exists {
		return model.Need{}, errConflict
	}
	n.Quantity = 0
	s.needs[n.Name] = n
	s.emit(notify.EventCreated, n)
	return n, nil
}

func (s *store) UpdateNeed(n model.Need) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.needs[n.Name]; !exists {
		return errNotFound
	}
	n.Quantity = 0
	s.needs[n.Name] = n
	s.emit(notify.EventUpdated, n)
	return nil
}

func (s *store) DeleteNeed(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, exists := s.needs[name]
	if !exists {
		return errNotFound
	}
	delete(s.needs, name)
	s.emit(notify.EventDeleted, n)
	return nil
}

// --- session ---

func (s *store) Login(username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if username != model.AdminUsername {
		if _, ok := s.supporters[username]; !ok {
			return model.User{}, errNotFound
		}
	}
	s.current = username
	return model.User{Username: username}, nil
}

func (s *store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = ""
}

func (s *store) Signup(username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if username == model.AdminUsername {
		return model.User{}, errConflict
	}
	if _, exists := s.supporters[username]; exists {
		return model.User{}, errConflict
	}
	s.supporters[username] = make(map[string]model.Need)
	return model.User{Username: username}, nil
}

// currentBasket returns the signed-in supporter's basket. The admin has no
// basket; basket routes are forbidden without a supporter session.
func (s *store) currentBasket() (map[string]model.Need, error) {
	if s.current == "" || s.current == model.AdminUsername {
		return nil, errForbidden
	}
	return s.supporters[s.current], nil
}

// --- basket ---

// Basket returns the clamped, authoritative basket: entries for deleted
// needs are dropped, quantities are clamped to current stock, and each
// entry's Stock is refreshed.
func (s *store) Basket() ([]model.Need, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	basket, err := s.currentBasket()
	if err != nil {
		return nil, err
	}

	for name, entry := range basket {
		catalog, ok := s.needs[name]
		if !ok {
			delete(basket, name)
			continue
		}
		entry.Stock = catalog.Stock
		entry.Cost = catalog.Cost
		entry.Type = catalog.Type
		if entry.Quantity > catalog.Stock {
			entry.Quantity = catalog.Stock
		}
		basket[name] = entry
	}
	return sortedNeeds(basket), nil
}

// Basketable lists catalog needs still addable: needs absent from the
// basket, plus needs whose basket quantity leaves remaining stock. Stock in
// the result is the remaining addable amount.
func (s *store) Basketable() ([]model.Need, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	basket, err := s.currentBasket()
	if err != nil {
		return nil, err
	}

	addable := make(map[string]model.Need)
	for name, catalog := range s.needs {
		entry, inBasket := basket[name]
		switch {
		case !inBasket:
			addable[name] = catalog
		case catalog.Stock > entry.Quantity:
			remaining := catalog
			remaining.Stock = catalog.Stock - entry.Quantity
			addable[name] = remaining
		}
	}
	return sortedNeeds(addable), nil
}

// BasketNeed returns one need as held in the basket: quantity is the amount
// in the basket (zero when absent), clamped to stock.
func (s *store) BasketNeed(name string) (model.Need, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	basket, err := s.currentBasket()
	if err != nil {
		return model.Need{}, err
	}
	catalog, ok := s.needs[name]
	if !ok {
		return model.Need{}, errNotFound
	}

	quantity := 0
	if entry, inBasket := basket[name]; inBasket {
		quantity = entry.Quantity
	}
	if quantity > catalog.Stock {
		quantity = catalog.Stock
	}
	catalog.Quantity = quantity
	return catalog, nil
}

// AddToBasket adds the named need with the default quantity of one.
func (s *store) AddToBasket(name string) (model.Need, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	basket, err := s.currentBasket()
	if err != nil {
		return model.Need{}, err
	}
	catalog, ok := s.needs[name]
	if !ok {
		return model.Need{}, errNotFound
	}
	if _, inBasket := basket[name]; inBasket {
		return model.Need{}, errConflict
	}
	if catalog.Stock < 1 {
		// Nothing left to fund.
		return model.Need{}, errConflict
	}

	entry := catalog
	entry.Quantity = 1
	basket[name] = entry
	return entry, nil
}

// UpdateBasketEntry sets the basket quantity for need.Name. A quantity of
// zero or less removes the entry.
func (s *store) UpdateBasketEntry(need model.Need) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	basket, err := s.currentBasket()
	if err != nil {
		return err
	}
	catalog, ok := s.needs[need.Name]
	if !ok {
		return errNotFound
	}

	if need.Quantity <= 0 {
		delete(basket, need.Name)
		return nil
	}
	entry := catalog
	entry.Quantity = need.Quantity
	basket[need.Name] = entry
	return nil
}

func (s *store) RemoveFromBasket(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	basket, err := s.currentBasket()
	if err != nil {
		return err
	}
	if _, inBasket := basket[name]; !inBasket {
		return errConflict
	}
	delete(basket, name)
	return nil
}

// Checkout atomically converts the basket into receipts. All-or-nothing:
// if any entry's quantity exceeds current stock, or its need is gone,
// nothing is committed and the verdict is false. An empty basket has
// nothing to commit and is also rejected.
func (s *store) Checkout() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	basket, err := s.currentBasket()
	if err != nil {
		return false, err
	}
	if len(basket) == 0 {
		return false, nil
	}

	// Validate every entry before touching anything.
	for name, entry := range basket {
		catalog, ok := s.needs[name]
		if !ok || entry.Quantity > catalog.Stock {
			return false, nil
		}
	}

	for name, entry := range basket {
		catalog := s.needs[name]
		catalog.Stock -= entry.Quantity
		if catalog.Stock > 0 {
			s.needs[name] = catalog
			s.emit(notify.EventCheckedOut, catalog)
		} else {
			delete(s.needs, name)
			s.emit(notify.EventDeleted, catalog)
		}
		s.recordReceipt(s.current, name, catalog.Cost*float64(entry.Quantity), entry.Quantity)
	}

	s.supporters[s.current] = make(map[string]model.Need)
	return true, nil
}

// recordReceipt merges repeat fundings of the same need into one receipt.
func (s *store) recordReceipt(username, need string, totalCost float64, quantity int) {
	byNeed := s.receipts[username]
	if byNeed == nil {
		byNeed = make(map[string]*model.Receipt)
		s.receipts[username] = byNeed
	}
	if r, ok := byNeed[need]; ok {
		r.Cost += totalCost
		r.Quantity += quantity
		return
	}
	byNeed[need] = &model.Receipt{
		SupporterUsername: username,
		Name:              need,
		Cost:              totalCost,
		Quantity:          quantity,
	}
}

// --- receipts ---

func (s *store) Receipts() []model.Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Receipt
	for _, byNeed := range s.receipts {
		for _, r := range byNeed {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SupporterUsername != out[j].SupporterUsername {
			return out[i].SupporterUsername < out[j].SupporterUsername
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (s *store) ReceiptsOf(username string) []model.Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Receipt
	for _, r := range s.receipts[username] {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *store) Total(username string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, r := range s.receipts[username] {
		total += r.Cost
	}
	return total
}

// Leaderboard returns every receipt ordered by each supporter's total
// funding, highest first; a supporter's own receipts are ordered by funded
// amount, then name.
func (s *store) Leaderboard() []model.Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()

	type entry struct {
		username string
		total    float64
		receipts []model.Receipt
	}
	var entries []entry
	for username, byNeed := range s.receipts {
		e := entry{username: username}
		for _, r := range byNeed {
			e.total += r.Cost
			e.receipts = append(e.receipts, *r)
		}
		sort.Slice(e.receipts, func(i, j int) bool {
			if e.receipts[i].Cost != e.receipts[j].Cost {
				return e.receipts[i].Cost > e.receipts[j].Cost
			}
			return e.receipts[i].Name < e.receipts[j].Name
		})
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].total != entries[j].total {
			return entries[i].total > entries[j].total
		}
		return entries[i].username < entries[j].username
	})

	var out []model.Receipt
	for _, e := range entries {
		out = append(out, e.receipts...)
	}
	return out
}

// --- inbox ---

// SendMessage upserts the (recipient, need) slot. The wire carries the
// recipient in the sender field, as the original client did; the stored
// sender is the acting session (the admin when no one is signed in, which
// matches the original's hardcoded admin sender).
func (s *store) SendMessage(msg model.NeedMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recipient := msg.SenderUsername
	sender := s.current
	if sender == "" {
		sender = model.AdminUsername
	}

	slots := s.inboxes[recipient]
	if slots == nil {
		slots = make(map[string]model.NeedMessage)
		s.inboxes[recipient] = slots
	}
	slots[msg.NeedName] = model.NeedMessage{
		SenderUsername: sender,
		NeedName:       msg.NeedName,
		Message:        msg.Message,
	}
}

func (s *store) Inbox() ([]model.NeedMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == "" {
		return nil, errForbidden
	}
	slots := s.inboxes[s.current]
	out := make([]model.NeedMessage, 0, len(slots))
	for _, m := range slots {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NeedName < out[j].NeedName })
	return out, nil
}

func (s *store) DeleteMessage(needName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == "" {
		return errForbidden
	}
	delete(s.inboxes[s.current], needName)
	return nil
}

func (s *store) MessageTo(receiver, needName string) (model.NeedMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.inboxes[receiver][needName]
	return msg, ok
}
