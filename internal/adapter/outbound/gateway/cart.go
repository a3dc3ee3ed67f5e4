package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tableside/tableside/internal/domain/cart"
)

// addItemRequest is the payload for POST /cart/add.
type addItemRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// updateItemRequest is the payload for PUT /cart/item/{id}.
type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// FetchCart returns the authoritative cart.
// Returns apperrors.ErrCartNotFound when the server holds no cart for
// this user; callers treat that as the empty state, not a failure.
func (c *Client) FetchCart(ctx context.Context) (*cart.Cart, error) {
	var result cart.Cart
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AddItem adds an item to the cart and returns the authoritative result.
func (c *Client) AddItem(ctx context.Context, itemID int64, quantity int) (*cart.Cart, error) {
	var result cart.Cart
	req := addItemRequest{ItemID: itemID, Quantity: quantity}
	if err := c.do(ctx, http.MethodPost, "/cart/add", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateItem sets an item's quantity and returns the authoritative cart.
func (c *Client) UpdateItem(ctx context.Context, itemID int64, quantity int) (*cart.Cart, error) {
	var result cart.Cart
	path := fmt.Sprintf("/cart/item/%d", itemID)
	if err := c.do(ctx, http.MethodPut, path, updateItemRequest{Quantity: quantity}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RemoveItem removes an item and returns the authoritative cart.
func (c *Client) RemoveItem(ctx context.Context, itemID int64) (*cart.Cart, error) {
	var result cart.Cart
	path := fmt.Sprintf("/cart/item/%d", itemID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ClearCart empties the cart server-side.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cart/clear", nil, nil)
}
