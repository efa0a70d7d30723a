// Package basket implements the client-held basket and its synchronization
// protocol against the server-held, mutable inventory.
//
// The engine owns the client-visible entries, validates quantities locally,
// and performs optimistic checkout: attempt first, and on a server rejection
// (a write-write conflict on stock) reload the authoritative basket and
// inform the supporter instead of retrying. Retries are therefore bounded to
// one per explicit user action, which cannot live-lock against a racing
// admin update.
package basket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/theeman05/SWEN-261-StudentUFund/api"
	"github.com/theeman05/SWEN-261-StudentUFund/errbus"
	"github.com/theeman05/SWEN-261-StudentUFund/model"
)

// Messages published by the engine.
const (
	MsgEmptyBasket     = "Basket is empty"
	MsgInvalidQuantity = "Please enter a valid quantity."
	MsgBasketRefreshed = "At least one Need in your basket has been updated. Your basket has been refreshed. Please try again."
	MsgCheckoutFailed  = "Checkout failed. Please try again."
)

// Client is the server boundary the engine drives. api.SessionClient
// satisfies it.
type Client interface {
	Basket(ctx context.Context) []model.Need
	AddToBasket(ctx context.Context, name string) *model.Need
	UpdateBasket(ctx context.Context, need model.Need) bool
	RemoveFromBasket(ctx context.Context, name string) bool
	Checkout(ctx context.Context) (bool, error)
}

// Navigator is the external navigation capability for basket views: Back
// leaves the basket view, GotoConfirmation is the checkout-success
// destination.
type Navigator interface {
	Back()
	GotoConfirmation()
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine keeps one supporter's basket consistent with the server under
// concurrent modification. It holds no state across view activations beyond
// what is in flight: Load re-derives everything from the server.
//
// The engine is owned by a single session context and is not safe for
// concurrent use; cross-session conflicts are handled entirely server-side
// via the checkout-rejection protocol.
type Engine struct {
	client   Client
	identity model.User
	bus      *errbus.Bus
	nav      Navigator
	logger   *slog.Logger

	entries []model.Need

	// emptyAnnounced suppresses duplicate empty-basket back-navigation
	// until the basket has been observed non-empty again.
	emptyAnnounced bool

	// inflight tracks fire-and-forget removals so callers can drain them
	// before tearing the process down.
	inflight sync.WaitGroup
}

// New creates an engine for the given identity. The identity is threaded
// explicitly; the engine never consults ambient session state.
func New(client Client, identity model.User, bus *errbus.Bus, nav Navigator, opts ...Option) *Engine {
	e := &Engine{
		client:   client,
		identity: identity,
		bus:      bus,
		nav:      nav,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Identity returns the supporter this engine acts for.
func (e *Engine) Identity() model.User {
	return e.identity
}

// Entries returns the current client-visible basket.
func (e *Engine) Entries() []model.Need {
	return e.entries
}

// Load fetches the authoritative basket. On an empty result it navigates
// back and publishes MsgEmptyBasket, once per empty observation window.
func (e *Engine) Load(ctx context.Context) {
	e.entries = e.client.Basket(ctx)
	if len(e.entries) > 0 {
		e.emptyAnnounced = false
		return
	}
	e.announceEmpty()
}

func (e *Engine) announceEmpty() {
	if e.emptyAnnounced {
		return
	}
	e.emptyAnnounced = true
	e.nav.Back()
	e.bus.Publish(MsgEmptyBasket)
}

// AddEntry asks the server to add need (by name) to the basket. The server
// decides whether it was already present; on failure the client layer has
// already published the conflict message and local state is untouched. On
// success the entry joins the local view and navigation returns to the
// previous view.
func (e *Engine) AddEntry(ctx context.Context, need model.Need) {
	entry := e.client.AddToBasket(ctx, need.Name)
	if entry == nil {
		return
	}
	e.entries = append(e.entries, *entry)
	e.emptyAnnounced = false
	e.nav.Back()
}

// UpdateEntry validates entry.Quantity locally before any network call:
// it must be a positive integer not exceeding entry.Stock. Invalid input is
// rejected with MsgInvalidQuantity and the basket is left unchanged. On a
// successful server update the engine navigates back to the basket.
func (e *Engine) UpdateEntry(ctx context.Context, entry model.Need) {
	if !model.ValidQuantity(entry.Quantity, entry.Stock) {
		e.bus.Publish(MsgInvalidQuantity)
		return
	}
	if !e.client.UpdateBasket(ctx, entry) {
		return
	}
	for i := range e.entries {
		if e.entries[i].Name == entry.Name {
			e.entries[i].Quantity = entry.Quantity
			break
		}
	}
	e.nav.Back()
}

// RemoveEntry removes entry from the local view immediately and fires the
// server delete without waiting for acknowledgment. The brief divergence is
// benign: removal is idempotent and the next Load corrects any drift. If the
// basket becomes empty the engine navigates back.
func (e *Engine) RemoveEntry(ctx context.Context, entry model.Need) {
	kept := e.entries[:0]
	for _, n := range e.entries {
		if n.Name != entry.Name {
			kept = append(kept, n)
		}
	}
	e.entries = kept

	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		e.client.RemoveFromBasket(ctx, entry.Name)
	}()

	if len(e.entries) == 0 && !e.emptyAnnounced {
		e.emptyAnnounced = true
		e.nav.Back()
	}
}

// Checkout performs the optimistic two-phase attempt. On commit it navigates
// to the confirmation destination. On a server rejection it reloads the
// corrected basket and publishes MsgBasketRefreshed; the supporter must
// re-initiate after reviewing. On a transport failure the basket is left as
// last known, since the failure does not imply staleness.
func (e *Engine) Checkout(ctx context.Context) {
	committed, err := e.client.Checkout(ctx)
	if err != nil {
		e.reportCheckoutFailure(err)
		return
	}
	if committed {
		e.entries = nil
		e.nav.GotoConfirmation()
		return
	}

	e.logger.Info("checkout rejected, refreshing basket", "user", e.identity.Username)
	e.Load(ctx)
	e.bus.Publish(MsgBasketRefreshed)
}

func (e *Engine) reportCheckoutFailure(err error) {
	e.logger.Warn("checkout failed", "user", e.identity.Username, "error", err)
	switch api.Classify(err) {
	case api.KindCapacity:
		e.bus.Publish(api.MsgServerCapacity)
	case api.KindForbidden:
		e.nav.Back()
	default:
		e.bus.Publish(MsgCheckoutFailed)
	}
}

// Wait drains in-flight removals. The CLI calls it before process exit so a
// fire-and-forget delete is not lost to a fast shutdown.
func (e *Engine) Wait() {
	e.inflight.Wait()
}
