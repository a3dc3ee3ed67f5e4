// Package cart contains the client-side cart model and the pure
// reconciliation logic: totals recomputation for the optimistic phase
// and the order-preserving merge of server responses.
package cart

import "time"

// Item is one line of the cart. Order within Cart.Items is significant,
// it is the order the user sees.
type Item struct {
	CartItemID int64     `json:"cart_item_id"`
	ItemID     int64     `json:"item_id"`
	Name       string    `json:"item_name"`
	UnitPrice  float64   `json:"unit_price"`
	Quantity   int       `json:"quantity"`
	TotalPrice float64   `json:"total_price"`
	ImageURL   string    `json:"image_url,omitempty"`
	AddedAt    time.Time `json:"added_at"`
}

// Cart is the client's working copy of the server-authoritative cart.
// TotalItems and TotalAmount are recomputed locally during the optimistic
// phase and taken verbatim from the server after reconciliation.
type Cart struct {
	ID          int64     `json:"cart_id"`
	UserID      int64     `json:"user_id"`
	Items       []Item    `json:"items"`
	TotalItems  int       `json:"total_items"`
	TotalAmount float64   `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Clone returns a deep copy. Rollback snapshots must not share the
// items slice with the working copy.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Items = make([]Item, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}

// Find returns the line for itemID, or nil if absent.
func (c *Cart) Find(itemID int64) *Item {
	if c == nil {
		return nil
	}
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}
