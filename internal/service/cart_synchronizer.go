package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tableside/tableside/internal/adapter/outbound/gateway"
	"github.com/tableside/tableside/internal/apperrors"
	"github.com/tableside/tableside/internal/domain/cart"
	"github.com/tableside/tableside/internal/domain/session"
)

// CartGateway is the remote cart API surface the synchronizer needs.
// Implemented by *gateway.Client; tests substitute fakes.
type CartGateway interface {
	FetchCart(ctx context.Context) (*cart.Cart, error)
	AddItem(ctx context.Context, itemID int64, quantity int) (*cart.Cart, error)
	UpdateItem(ctx context.Context, itemID int64, quantity int) (*cart.Cart, error)
	RemoveItem(ctx context.Context, itemID int64) (*cart.Cart, error)
	ClearCart(ctx context.Context) error
}

// SessionInfo is the session state the synchronizer gates on.
type SessionInfo interface {
	IsAuthenticated() bool
	User() *session.User
}

// CartSynchronizer owns the client-visible cart. Quantity updates and
// removals apply optimistically before the network call and roll back
// to the pre-mutation snapshot on failure; successful responses are
// reconciled with the order-preserving merge so existing rows never
// jump position.
//
// The lock is released across network calls, so two in-flight mutations
// on the same item can race; the later response wins at the merge step.
// Callers are expected to serialize same-item mutations.
type CartSynchronizer struct {
	gw      CartGateway
	session SessionInfo
	logger  *slog.Logger
	metrics *gateway.Metrics

	mu   sync.RWMutex
	cart *cart.Cart
}

// NewCartSynchronizer creates the synchronizer. One instance per running
// client, sharing the session manager built alongside it. metrics may
// be nil.
func NewCartSynchronizer(gw CartGateway, sess SessionInfo, logger *slog.Logger, metrics *gateway.Metrics) *CartSynchronizer {
	return &CartSynchronizer{
		gw:      gw,
		session: sess,
		logger:  logger,
		metrics: metrics,
	}
}

// eligible reports whether the current session may hold a cart: an
// authenticated session with a cart-eligible role. Ineligible sessions
// never trigger network calls and always see a nil cart.
func (s *CartSynchronizer) eligible() bool {
	u := s.session.User()
	return u != nil && u.Role.CartEligible()
}

// Refresh fetches the authoritative cart. A "cart not found" response
// is the normal state for a new user: the cart becomes nil with no
// error surfaced. For an ineligible session Refresh is a no-op.
func (s *CartSynchronizer) Refresh(ctx context.Context) error {
	if !s.eligible() {
		s.setCart(nil)
		return nil
	}

	fetched, err := s.gw.FetchCart(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrCartNotFound) {
			s.setCart(nil)
			return nil
		}
		return err
	}

	s.mu.Lock()
	s.cart = cart.Merge(s.cart, fetched)
	s.mu.Unlock()
	return nil
}

// AddItem adds an item to the cart. There is no optimistic insert: the
// correct resulting line (possibly merged with an existing one) is only
// known authoritatively. On failure state is unchanged and the error is
// returned for the caller to surface.
func (s *CartSynchronizer) AddItem(ctx context.Context, itemID int64, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}
	if !s.eligible() {
		return apperrors.ErrNotPermitted
	}

	fresh, err := s.gw.AddItem(ctx, itemID, quantity)
	if err != nil {
		s.metrics.ObserveCartMutation("add", false)
		s.logger.Warn("add item failed", "item_id", itemID, "error", err)
		return err
	}

	s.mu.Lock()
	s.cart = cart.Merge(s.cart, fresh)
	s.mu.Unlock()

	s.metrics.ObserveCartMutation("add", true)
	return nil
}

// UpdateItemQuantity optimistically sets the quantity (publishing the
// recomputed cart immediately to hide latency), dispatches the update,
// and reconciles the response. On failure the pre-mutation snapshot is
// restored exactly and the error is returned.
func (s *CartSynchronizer) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	if !s.eligible() {
		return apperrors.ErrNotPermitted
	}

	s.mu.Lock()
	if s.cart == nil || s.cart.Find(itemID) == nil {
		s.mu.Unlock()
		return apperrors.ErrItemNotInCart
	}
	snapshot := s.cart.Clone()
	s.cart = cart.WithQuantity(s.cart, itemID, quantity)
	s.mu.Unlock()

	fresh, err := s.gw.UpdateItem(ctx, itemID, quantity)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.cart = snapshot
		s.metrics.ObserveRollback()
		s.metrics.ObserveCartMutation("update", false)
		s.logger.Warn("quantity update rolled back", "item_id", itemID, "error", err)
		return err
	}
	s.cart = cart.Merge(s.cart, fresh)
	s.metrics.ObserveCartMutation("update", true)
	return nil
}

// RemoveItem optimistically filters the line out, dispatches the
// removal, and reconciles. Same rollback shape as UpdateItemQuantity.
func (s *CartSynchronizer) RemoveItem(ctx context.Context, itemID int64) error {
	if !s.eligible() {
		return apperrors.ErrNotPermitted
	}

	s.mu.Lock()
	if s.cart == nil || s.cart.Find(itemID) == nil {
		s.mu.Unlock()
		return apperrors.ErrItemNotInCart
	}
	snapshot := s.cart.Clone()
	s.cart = cart.WithoutItem(s.cart, itemID)
	s.mu.Unlock()

	fresh, err := s.gw.RemoveItem(ctx, itemID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.cart = snapshot
		s.metrics.ObserveRollback()
		s.metrics.ObserveCartMutation("remove", false)
		s.logger.Warn("item removal rolled back", "item_id", itemID, "error", err)
		return err
	}
	s.cart = cart.Merge(s.cart, fresh)
	s.metrics.ObserveCartMutation("remove", true)
	return nil
}

// Clear empties the cart. No optimistic phase: the end state is
// unambiguous, so the local cart is only dropped once the server
// confirms. On failure the cart keeps its prior state.
func (s *CartSynchronizer) Clear(ctx context.Context) error {
	if !s.eligible() {
		return apperrors.ErrNotPermitted
	}

	if err := s.gw.ClearCart(ctx); err != nil {
		s.metrics.ObserveCartMutation("clear", false)
		return err
	}

	s.setCart(nil)
	s.metrics.ObserveCartMutation("clear", true)
	return nil
}

// Invalidate drops the local cart without any network call. Called when
// the session ends.
func (s *CartSynchronizer) Invalidate() {
	s.setCart(nil)
}

// Cart returns a deep copy of the client-visible cart, or nil.
func (s *CartSynchronizer) Cart() *cart.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

// TotalItems returns the client-visible item count, 0 without a cart.
func (s *CartSynchronizer) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cart == nil {
		return 0
	}
	return s.cart.TotalItems
}

// TotalAmount returns the client-visible cart total, 0 without a cart.
func (s *CartSynchronizer) TotalAmount() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cart == nil {
		return 0
	}
	return s.cart.TotalAmount
}

func (s *CartSynchronizer) setCart(c *cart.Cart) {
	s.mu.Lock()
	s.cart = c
	s.mu.Unlock()
}
