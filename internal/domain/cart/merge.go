package cart

// RecomputeTotals sets TotalItems and TotalAmount from the item lines.
// Used only in the optimistic phase; after reconciliation the server's
// totals are authoritative and copied verbatim.
func RecomputeTotals(c *Cart) {
	total := 0
	amount := 0.0
	for i := range c.Items {
		total += c.Items[i].Quantity
		amount += c.Items[i].TotalPrice
	}
	c.TotalItems = total
	c.TotalAmount = amount
}

// WithQuantity returns a deep copy of c with the line for itemID set to
// the given quantity, its line total recomputed from the unit price, and
// cart totals recomputed. If the item is absent the copy is unchanged.
func WithQuantity(c *Cart, itemID int64, quantity int) *Cart {
	next := c.Clone()
	for i := range next.Items {
		if next.Items[i].ItemID == itemID {
			next.Items[i].Quantity = quantity
			next.Items[i].TotalPrice = next.Items[i].UnitPrice * float64(quantity)
			break
		}
	}
	RecomputeTotals(next)
	return next
}

// WithoutItem returns a deep copy of c with the line for itemID removed
// and cart totals recomputed.
func WithoutItem(c *Cart, itemID int64) *Cart {
	next := c.Clone()
	filtered := next.Items[:0]
	for _, it := range next.Items {
		if it.ItemID != itemID {
			filtered = append(filtered, it)
		}
	}
	next.Items = filtered
	RecomputeTotals(next)
	return next
}

// MergeItems reconciles the server's authoritative item set against the
// client's prior display order.
//
// Lines the client already shows keep their position but take the
// server's values (fresh quantity and price truth). Lines the server no
// longer has are dropped. Lines new to the client are appended at the
// end in the server's order, never interleaved. The user's mental model
// of the cart layout survives the server iterating its storage in a
// different order.
func MergeItems(prior, authoritative []Item) []Item {
	byID := make(map[int64]Item, len(authoritative))
	for _, it := range authoritative {
		byID[it.ItemID] = it
	}

	merged := make([]Item, 0, len(authoritative))
	seen := make(map[int64]bool, len(prior))
	for _, it := range prior {
		if fresh, ok := byID[it.ItemID]; ok {
			merged = append(merged, fresh)
			seen[it.ItemID] = true
		}
	}
	for _, it := range authoritative {
		if !seen[it.ItemID] {
			merged = append(merged, it)
		}
	}
	return merged
}

// Merge applies MergeItems to a full server response: the returned cart
// carries the server's identity, timestamps and totals verbatim, with
// items reordered to preserve the prior display order.
func Merge(prior *Cart, authoritative *Cart) *Cart {
	if authoritative == nil {
		return nil
	}
	next := authoritative.Clone()
	if prior != nil {
		next.Items = MergeItems(prior.Items, authoritative.Items)
	}
	return next
}
