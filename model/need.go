// Package model defines the marketplace data model shared by the clients,
// the basket engine, and the mock server.
package model

import "strings"

// Need is a fundable inventory item. The name is the stable key in all
// client/server addressing; there is no surrogate numeric id.
//
// Quantity is context dependent: in the catalog it is unused (zero), in a
// basket it is the supporter-chosen amount. Stock is the server-authoritative
// remaining inventory as of the last fetch.
type Need struct {
	Name     string  `json:"name"`
	Cost     float64 `json:"cost"`
	Quantity int     `json:"quantity"`
	Stock    int     `json:"stock"`
	Type     string  `json:"type,omitempty"`
}

// Validation messages for Need fields. Violations are concatenable: callers
// join the returned slice into a single published message.
const (
	MsgInvalidName  = "Please enter a valid name."
	MsgInvalidCost  = "Please enter a valid cost."
	MsgInvalidStock = "Please enter a valid stock."
)

// ValidateFields checks the admin-editable fields of a catalog need and
// returns one message per violation, in field order. An empty slice means
// the need is valid.
func (n Need) ValidateFields() []string {
	var violations []string
	if strings.TrimSpace(n.Name) == "" {
		violations = append(violations, MsgInvalidName)
	}
	if n.Cost < 0 {
		violations = append(violations, MsgInvalidCost)
	}
	if n.Stock < 0 {
		violations = append(violations, MsgInvalidStock)
	}
	return violations
}

// ValidQuantity reports whether quantity satisfies the basket rule
// 0 < quantity <= stock.
func ValidQuantity(quantity, stock int) bool {
	return quantity > 0 && quantity <= stock
}
