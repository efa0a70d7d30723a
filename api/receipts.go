package api

import (
	"context"

	"github.com/theeman05/SWEN-261-StudentUFund/errbus"
	"github.com/theeman05/SWEN-261-StudentUFund/model"
)

// ReceiptClient is the read-only wrapper for funding receipts and the
// aggregate leaderboard views consumed by reporting.
type ReceiptClient struct {
	t *transport
	r *reporter
}

// NewReceiptClient creates a receipts client publishing failures on bus and
// navigating back through nav on Forbidden.
func NewReceiptClient(baseURL string, bus *errbus.Bus, nav Navigator, opts ...Option) *ReceiptClient {
	t := newTransport(baseURL, opts...)
	return &ReceiptClient{t: t, r: newReporter(bus, nav, t.logger)}
}

// Receipts lists every funding receipt.
func (c *ReceiptClient) Receipts(ctx context.Context) []model.Receipt {
	var receipts []model.Receipt
	if err := c.t.get(ctx, "/receipts", &receipts); err != nil {
		c.r.report("getReceipts", err, failureMessages{})
		return nil
	}
	return receipts
}

// ReceiptsOf lists the receipts for one supporter.
func (c *ReceiptClient) ReceiptsOf(ctx context.Context, username string) []model.Receipt {
	var receipts []model.Receipt
	if err := c.t.get(ctx, "/receipts/"+pathSegment(username), &receipts); err != nil {
		c.r.report("getReceiptsOfUser", err, failureMessages{})
		return nil
	}
	return receipts
}

// Leaderboard lists all receipts ordered by each supporter's total funding,
// highest first.
func (c *ReceiptClient) Leaderboard(ctx context.Context) []model.Receipt {
	var receipts []model.Receipt
	if err := c.t.get(ctx, "/receipts/sorted", &receipts); err != nil {
		c.r.report("getSortedReceipts", err, failureMessages{})
		return nil
	}
	return receipts
}

// Total returns one supporter's total funded amount.
func (c *ReceiptClient) Total(ctx context.Context, username string) float64 {
	var total float64
	if err := c.t.get(ctx, "/receipts/"+pathSegment(username)+"/total", &total); err != nil {
		c.r.report("getUserFundingTotal", err, failureMessages{})
		return 0
	}
	return total
}
