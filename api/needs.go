package api

import (
	"context"
	"strings"

	"github.com/theeman05/SWEN-261-StudentUFund/errbus"
	"github.com/theeman05/SWEN-261-StudentUFund/model"
)

// Catalog messages surfaced on conflicting or missing needs.
const (
	MsgNeedExists   = "A need with this name already exists!"
	MsgNeedNotFound = "Need not found."
)

// InventoryClient wraps need CRUD and search against the remote catalog.
// Inputs are expected to be caller-trimmed and validated; business rules for
// basket quantities live in the basket engine, not here.
type InventoryClient struct {
	t *transport
	r *reporter
}

// NewInventoryClient creates a catalog client publishing failures on bus and
// navigating back through nav on Forbidden.
func NewInventoryClient(baseURL string, bus *errbus.Bus, nav Navigator, opts ...Option) *InventoryClient {
	t := newTransport(baseURL, opts...)
	return &InventoryClient{t: t, r: newReporter(bus, nav, t.logger)}
}

// Needs lists the whole catalog. Failures yield an empty slice.
func (c *InventoryClient) Needs(ctx context.Context) []model.Need {
	var needs []model.Need
	if err := c.t.get(ctx, "/needs", &needs); err != nil {
		c.r.report("getNeeds", err, failureMessages{})
		return nil
	}
	return needs
}

// Need fetches one need by name. Absence is an expected case: a 404 returns
// nil without publishing.
func (c *InventoryClient) Need(ctx context.Context, name string) *model.Need {
	var need model.Need
	if err := c.t.get(ctx, "/needs/"+pathSegment(name), &need); err != nil {
		c.r.report("getNeed", err, failureMessages{})
		return nil
	}
	return &need
}

// Search lists needs whose name contains term. A blank term short-circuits
// to an empty result without a network call.
func (c *InventoryClient) Search(ctx context.Context, term string) []model.Need {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	var needs []model.Need
	if err := c.t.get(ctx, "/needs/?name="+queryValue(term), &needs); err != nil {
		c.r.report("searchNeeds", err, failureMessages{})
		return nil
	}
	return needs
}

// Create adds a new need to the catalog and returns it, or nil on failure.
func (c *InventoryClient) Create(ctx context.Context, need model.Need) *model.Need {
	var created model.Need
	if err := c.t.post(ctx, "/needs", need, &created); err != nil {
		c.r.report("addNeed", err, failureMessages{conflict: MsgNeedExists, fallback: MsgNeedExists})
		return nil
	}
	return &created
}

// Update replaces the need identified by need.Name. Returns false if the
// need was not applied.
func (c *InventoryClient) Update(ctx context.Context, need model.Need) bool {
	if err := c.t.put(ctx, "/needs", need); err != nil {
		c.r.report("updateNeed", err, failureMessages{notFound: MsgNeedNotFound})
		return false
	}
	return true
}

// Delete removes a need from the catalog. Returns false if nothing was
// deleted.
func (c *InventoryClient) Delete(ctx context.Context, name string) bool {
	if err := c.t.delete(ctx, "/needs/"+pathSegment(name)); err != nil {
		c.r.report("deleteNeed", err, failureMessages{notFound: MsgNeedNotFound})
		return false
	}
	return true
}
