package api

import (
	"context"

	"github.com/theeman05/SWEN-261-StudentUFund/errbus"
	"github.com/theeman05/SWEN-261-StudentUFund/model"
)

// Session and basket messages.
const (
	MsgUsernameNotFound = "Username not found."
	MsgUsernameTaken    = "Username already taken!"
	MsgAlreadyInBasket  = "Need already in basket!"
	MsgNotInBasket      = "Need is not in your basket."
)

// SessionClient wraps identity establishment, the per-supporter basket, and
// the inbox between supporters and the administrator. Like the other
// wrappers it never raises to the caller: failures become neutral results
// plus a published message.
//
// Checkout is the one richer boundary: the basket engine must distinguish
// commit, stock-conflict rejection, and transport failure, so Checkout
// returns the classified error and leaves all checkout reporting to the
// engine (see basket.Engine).
type SessionClient struct {
	t *transport
	r *reporter
}

// NewSessionClient creates a session client publishing failures on bus and
// navigating back through nav on Forbidden.
func NewSessionClient(baseURL string, bus *errbus.Bus, nav Navigator, opts ...Option) *SessionClient {
	t := newTransport(baseURL, opts...)
	return &SessionClient{t: t, r: newReporter(bus, nav, t.logger)}
}

// Login establishes the session identity for username. Returns nil if the
// username is unknown.
func (c *SessionClient) Login(ctx context.Context, username string) *model.User {
	var user model.User
	if err := c.t.get(ctx, "/users/"+pathSegment(username), &user); err != nil {
		c.r.report("loginUser", err, failureMessages{notFound: MsgUsernameNotFound})
		return nil
	}
	return &user
}

// Signup registers a new supporter identity. Returns nil if the username is
// already taken.
func (c *SessionClient) Signup(ctx context.Context, username string) *model.User {
	var user model.User
	if err := c.t.post(ctx, "/users", username, &user); err != nil {
		c.r.report("createSupporter", err, failureMessages{conflict: MsgUsernameTaken})
		return nil
	}
	return &user
}

// Logout ends the current session.
func (c *SessionClient) Logout(ctx context.Context) bool {
	var ok bool
	if err := c.t.get(ctx, "/users/logout", &ok); err != nil {
		c.r.report("logout", err, failureMessages{})
		return false
	}
	return ok
}

// Basket fetches the authoritative basket for the current identity. The
// server clamps quantities to current stock and drops deleted needs, so the
// result is always internally consistent.
func (c *SessionClient) Basket(ctx context.Context) []model.Need {
	var entries []model.Need
	if err := c.t.get(ctx, "/users/basket", &entries); err != nil {
		c.r.report("getBasket", err, failureMessages{})
		return nil
	}
	return entries
}

// BasketableNeeds lists catalog needs still addable to the basket, with
// their remaining addable stock.
func (c *SessionClient) BasketableNeeds(ctx context.Context) []model.Need {
	var needs []model.Need
	if err := c.t.get(ctx, "/users/basketable", &needs); err != nil {
		c.r.report("getBasketableNeeds", err, failureMessages{})
		return nil
	}
	return needs
}

// BasketNeed fetches one need as held in the basket. A 404 is silent and
// returns nil.
func (c *SessionClient) BasketNeed(ctx context.Context, name string) *model.Need {
	var need model.Need
	if err := c.t.get(ctx, "/users/basket/"+pathSegment(name), &need); err != nil {
		c.r.report("getBasketNeed", err, failureMessages{})
		return nil
	}
	return &need
}

// AddToBasket adds a need by name and returns the created entry, or nil on
// failure. The server is the source of truth for duplicates.
func (c *SessionClient) AddToBasket(ctx context.Context, name string) *model.Need {
	var entry model.Need
	if err := c.t.post(ctx, "/users/basket", name, &entry); err != nil {
		c.r.report("addToBasket", err, failureMessages{conflict: MsgAlreadyInBasket})
		return nil
	}
	return &entry
}

// UpdateBasket sets the basket quantity for need.Name to need.Quantity.
func (c *SessionClient) UpdateBasket(ctx context.Context, need model.Need) bool {
	if err := c.t.put(ctx, "/users/basket", need); err != nil {
		c.r.report("updateBasket", err, failureMessages{notFound: MsgNeedNotFound})
		return false
	}
	return true
}

// RemoveFromBasket deletes the entry for name. Removal is idempotent from
// the caller's perspective; a conflict means the entry was already gone.
func (c *SessionClient) RemoveFromBasket(ctx context.Context, name string) bool {
	if err := c.t.delete(ctx, "/users/basket/"+pathSegment(name)); err != nil {
		c.r.report("removeFromBasket", err, failureMessages{conflict: MsgNotInBasket})
		return false
	}
	return true
}

// Checkout atomically converts the basket into receipts. The boolean body is
// the server's verdict: true means committed, false means at least one
// need's stock changed since the basket was fetched. A non-nil error means
// the request itself failed and the verdict is unknown; it has not been
// reported on the bus.
func (c *SessionClient) Checkout(ctx context.Context) (bool, error) {
	var committed bool
	if err := c.t.get(ctx, "/users/checkout", &committed); err != nil {
		return false, err
	}
	return committed, nil
}

// Inbox lists the current identity's messages.
func (c *SessionClient) Inbox(ctx context.Context) []model.NeedMessage {
	var messages []model.NeedMessage
	if err := c.t.get(ctx, "/users/inbox", &messages); err != nil {
		c.r.report("getMessages", err, failureMessages{})
		return nil
	}
	return messages
}

// SendMessage upserts the (toUser, needName) inbox slot with text.
func (c *SessionClient) SendMessage(ctx context.Context, text, needName, toUser string) bool {
	msg := model.NeedMessage{SenderUsername: toUser, NeedName: needName, Message: text}
	if err := c.t.post(ctx, "/users/inbox", msg, nil); err != nil {
		c.r.report("sendMessage", err, failureMessages{})
		return false
	}
	return true
}

// DeleteMessage removes the current identity's inbox slot for needName.
func (c *SessionClient) DeleteMessage(ctx context.Context, needName string) bool {
	if err := c.t.delete(ctx, "/users/inbox/"+pathSegment(needName)); err != nil {
		c.r.report("deleteMessage", err, failureMessages{})
		return false
	}
	return true
}

// MessageTo fetches the message currently occupying the (receiver, needName)
// slot, or nil when the slot is empty.
func (c *SessionClient) MessageTo(ctx context.Context, receiver, needName string) *model.NeedMessage {
	var msg model.NeedMessage
	path := "/users/" + pathSegment(receiver) + "/inbox/" + pathSegment(needName)
	if err := c.t.get(ctx, path, &msg); err != nil {
		c.r.report("getMessageToUser", err, failureMessages{})
		return nil
	}
	return &msg
}
