package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tableside/tableside/internal/adapter/outbound/gateway"
	"github.com/tableside/tableside/internal/apperrors"
	"github.com/tableside/tableside/internal/domain/cart"
	"github.com/tableside/tableside/internal/domain/session"
)

func eligibleSession() *fakeSession {
	return &fakeSession{user: &session.User{ID: 7, Username: "chef", Role: session.RoleUser}}
}

func cartWith(items ...cart.Item) *cart.Cart {
	c := &cart.Cart{ID: 1, UserID: 7, Items: items}
	cart.RecomputeTotals(c)
	return c
}

func line(id int64, qty int, unit float64) cart.Item {
	return cart.Item{
		CartItemID: id * 100,
		ItemID:     id,
		Name:       "dish",
		UnitPrice:  unit,
		Quantity:   qty,
		TotalPrice: unit * float64(qty),
	}
}

// seed loads an initial cart into the synchronizer through Refresh.
func seed(t *testing.T, s *CartSynchronizer, gw *fakeCartGateway, c *cart.Cart) {
	t.Helper()
	gw.fetchFn = func(ctx context.Context) (*cart.Cart, error) { return c.Clone(), nil }
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("seed Refresh() error: %v", err)
	}
}

func TestRefreshCartNotFoundIsEmptyState(t *testing.T) {
	t.Parallel()

	gw := &fakeCartGateway{
		fetchFn: func(ctx context.Context) (*cart.Cart, error) { return nil, apperrors.ErrCartNotFound },
	}
	s := NewCartSynchronizer(gw, eligibleSession(), discardLogger(), nil)

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v, want silent empty state", err)
	}
	if s.Cart() != nil {
		t.Error("cart should be nil after not-found")
	}
	if s.TotalItems() != 0 || s.TotalAmount() != 0 {
		t.Error("derived readers should be zero without a cart")
	}
}

func TestRefreshErrorKeepsCart(t *testing.T) {
	t.Parallel()

	gw := &fakeCartGateway{}
	s := NewCartSynchronizer(gw, eligibleSession(), discardLogger(), nil)
	seed(t, s, gw, cartWith(line(1, 2, 10)))

	gw.fetchFn = func(ctx context.Context) (*cart.Cart, error) {
		return nil, &apperrors.ServerError{Status: 500}
	}
	if err := s.Refresh(context.Background()); !errors.Is(err, apperrors.ErrServer) {
		t.Fatalf("err = %v, want ErrServer", err)
	}
	if s.Cart() == nil {
		t.Error("cart dropped on failed refresh")
	}
}

func TestEligibilityGateBlocksIneligibleRoles(t *testing.T) {
	t.Parallel()

	for _, role := range []session.Role{session.RoleManager, session.RoleAdmin} {
		gw := &fakeCartGateway{}
		sess := &fakeSession{user: &session.User{ID: 2, Username: "staff", Role: role}}
		s := NewCartSynchronizer(gw, sess, discardLogger(), nil)

		if err := s.AddItem(context.Background(), 1, 1); !errors.Is(err, apperrors.ErrNotPermitted) {
			t.Errorf("role %s: AddItem err = %v, want ErrNotPermitted", role, err)
		}
		if err := s.Refresh(context.Background()); err != nil {
			t.Errorf("role %s: Refresh err = %v, want silent no-op", role, err)
		}
		if gw.total() != 0 {
			t.Errorf("role %s: %d network calls issued for ineligible session", role, gw.total())
		}
		if s.Cart() != nil {
			t.Errorf("role %s: cart held for ineligible session", role)
		}
	}
}

func TestEligibilityGateBlocksAnonymous(t *testing.T) {
	t.Parallel()

	gw := &fakeCartGateway{}
	s := NewCartSynchronizer(gw, &fakeSession{}, discardLogger(), nil)

	if err := s.UpdateItemQuantity(context.Background(), 1, 2); !errors.Is(err, apperrors.ErrNotPermitted) {
		t.Errorf("err = %v, want ErrNotPermitted", err)
	}
	if gw.total() != 0 {
		t.Errorf("%d network calls for anonymous session", gw.total())
	}
}

func TestAddItemMergesAuthoritativeResponse(t *testing.T) {
	t.Parallel()

	gw := &fakeCartGateway{}
	s := NewCartSynchronizer(gw, eligibleSession(), discardLogger(), nil)
	seed(t, s, gw, cartWith(line(1, 1, 10), line(2, 1, 5)))

	// Server returns its set in a different order, with the new item first.
	gw.addFn = func(ctx context.Context, itemID int64, qty int) (*cart.Cart, error) {
		return cartWith(line(3, 1, 7), line(2, 1, 5), line(1, 1, 10)), nil
	}

	if err := s.AddItem(context.Background(), 3, 1); err != nil {
		t.Fatalf("AddItem() error: %v", err)
	}

	got := s.Cart()
	wantOrder := []int64{1, 2, 3}
	for i, want := range wantOrder {
		if got.Items[i].ItemID != want {
			t.Fatalf("item order = %v, want %v", itemIDs(got.Items), wantOrder)
		}
	}
}

func TestAddItemFailureLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	gw := &fakeCartGateway{}
	s := NewCartSynchronizer(gw, eligibleSession(), discardLogger(), nil)
	seed(t, s, gw, cartWith(line(1, 1, 10)))
	before := s.Cart()

	gw.addFn = func(ctx context.Context, itemID int64, qty int) (*cart.Cart, error) {
		return nil, &apperrors.NetworkError{Cause: errors.New("timeout")}
	}
	if err := s.AddItem(context.Background(), 2, 1); !errors.Is(err, apperrors.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}

	if !reflect.DeepEqual(before, s.Cart()) {
		t.Error("cart changed by a failed add")
	}
}

func TestUpdateQuantityOptimisticThenRollback(t *testing.T) {
	t.Parallel()

	gw := &fakeCartGateway{}
	s := NewCartSynchronizer(gw, eligibleSession(), discardLogger(), nil)
	seed(t, s, gw, cartWith(line(7, 1, 10)))
	before := s.Cart()

	// Observe the optimistic state from inside the in-flight call.
	var optimistic *cart.Cart
	gw.updateFn = func(ctx context.Context, itemID int64, qty int) (*cart.Cart, error) {
		optimistic = s.Cart()
		return nil, &apperrors.NetworkError{Cause: errors.New("connection reset")}
	}

	err := s.UpdateItemQuantity(context.Background(), 7, 3)
	if !errors.Is(err, apperrors.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}

	// The optimistic phase was visible and fully recomputed.
	if optimistic == nil || optimistic.Items[0].Quantity != 3 {
		t.Fatalf("optimistic state = %+v, want qty 3", optimistic)
	}
	if optimistic.Items[0].TotalPrice != 30 || optimistic.TotalAmount != 30 || optimistic.TotalItems != 3 {
		t.Errorf("optimistic totals = %+v, want recomputed 30/30/3", optimistic)
	}

	// Rollback restored the exact pre-mutation snapshot.
	if !reflect.DeepEqual(before, s.Cart()) {
		t.Errorf("rollback not exact:\nbefore  %+v\nafter   %+v", before, s.Cart())
	}
	if s.TotalAmount() != 10 {
		t.Errorf("TotalAmount = %v, want 10", s.TotalAmount())
	}
}

func TestUpdateQuantitySuccessTakesServerTotals(t *testing.T) {
	t.Parallel()

	gw := &fakeCartGateway{}
	s := NewCartSynchronizer(gw, eligibleSession(), discardLogger(), nil)
	seed(t, s, gw, cartWith(line(7, 1, 10)))

	server := cartWith(line(7, 3, 10))
	server.TotalAmount = 29.5 // server applies a discount the client cannot compute
	gw.updateFn = func(ctx context.Context, itemID int64, qty int) (*cart.Cart, error) {
		return server.Clone(), nil
	}

	if err := s.UpdateItemQuantity(context.Background(), 7, 3); err != nil {
		t.Fatalf("UpdateItemQuantity() error: %v", err)
	}
	if got := s.TotalAmount(); got != 29.5 {
		t.Errorf("TotalAmount = %v, want server's 29.5 verbatim", got)
	}
}

func TestUpdateQuantityUnknownItem(t *testing.T) {
	t.Parallel()

	gw := &fakeCartGateway{}
	s := NewCartSynchronizer(gw, eligibleSession(), discardLogger(), nil)
	seed(t, s, gw, cartWith(line(1, 1, 10)))

	if err := s.UpdateItemQuantity(context.Background(), 99, 2); !errors.Is(err, apperrors.ErrItemNotInCart) {
		t.Errorf("err = %v, want ErrItemNotInCart", err)
	}
	if gw.total() != 1 { // only the seed fetch
		t.Errorf("network calls = %d, want 1", gw.total())
	}
}

func TestRemoveItemOptimisticThenRollback(t *testing.T) {
	t.Parallel()

	gw := &fakeCartGateway{}
	s := NewCartSynchronizer(gw, eligibleSession(), discardLogger(), nil)
	seed(t, s, gw, cartWith(line(1, 1, 10), line(2, 2, 5)))
	before := s.Cart()

	var optimistic *cart.Cart
	gw.removeFn = func(ctx context.Context, itemID int64) (*cart.Cart, error) {
		optimistic = s.Cart()
		return nil, &apperrors.ServerError{Status: 503}
	}

	if err := s.RemoveItem(context.Background(), 1); !errors.Is(err, apperrors.ErrServer) {
		t.Fatalf("err = %v, want ErrServer", err)
	}

	if len(optimistic.Items) != 1 || optimistic.Items[0].ItemID != 2 {
		t.Errorf("optimistic items = %v, want item 1 filtered out", itemIDs(optimistic.Items))
	}
	if optimistic.TotalItems != 2 || optimistic.TotalAmount != 10 {
		t.Errorf("optimistic totals = %d/%v, want 2/10", optimistic.TotalItems, optimistic.TotalAmount)
	}
	if !reflect.DeepEqual(before, s.Cart()) {
		t.Error("rollback not exact after failed removal")
	}
}

func TestRemoveItemSuccess(t *testing.T) {
	t.Parallel()

	gw := &fakeCartGateway{}
	s := NewCartSynchronizer(gw, eligibleSession(), discardLogger(), nil)
	seed(t, s, gw, cartWith(line(1, 1, 10), line(2, 2, 5)))

	gw.removeFn = func(ctx context.Context, itemID int64) (*cart.Cart, error) {
		return cartWith(line(2, 2, 5)), nil
	}
	if err := s.RemoveItem(context.Background(), 1); err != nil {
		t.Fatalf("RemoveItem() error: %v", err)
	}
	got := s.Cart()
	if len(got.Items) != 1 || got.Items[0].ItemID != 2 {
		t.Errorf("items = %v, want [2]", itemIDs(got.Items))
	}
}

func TestClearSuccess(t *testing.T) {
	t.Parallel()

	gw := &fakeCartGateway{}
	s := NewCartSynchronizer(gw, eligibleSession(), discardLogger(), nil)
	seed(t, s, gw, cartWith(line(1, 1, 10)))

	gw.clearFn = func(ctx context.Context) error { return nil }
	if err := s.Clear(context.Background()); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if s.Cart() != nil {
		t.Error("cart not nil after clear")
	}
}

func TestClearFailureKeepsCart(t *testing.T) {
	t.Parallel()

	gw := &fakeCartGateway{}
	s := NewCartSynchronizer(gw, eligibleSession(), discardLogger(), nil)
	seed(t, s, gw, cartWith(line(1, 1, 10)))

	gw.clearFn = func(ctx context.Context) error {
		return &apperrors.NetworkError{Cause: errors.New("timeout")}
	}
	if err := s.Clear(context.Background()); !errors.Is(err, apperrors.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
	// Clear is not assumed to have partially happened.
	if s.Cart() == nil {
		t.Error("cart dropped despite failed clear")
	}
}

func TestRollbackMetricRecorded(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics := gateway.NewMetrics(reg)

	gw := &fakeCartGateway{}
	s := NewCartSynchronizer(gw, eligibleSession(), discardLogger(), metrics)
	seed(t, s, gw, cartWith(line(7, 1, 10)))

	gw.updateFn = func(ctx context.Context, itemID int64, qty int) (*cart.Cart, error) {
		return nil, &apperrors.NetworkError{Cause: errors.New("reset")}
	}
	_ = s.UpdateItemQuantity(context.Background(), 7, 3)

	if got := testutil.ToFloat64(metrics.RollbacksTotal); got != 1 {
		t.Errorf("cart_rollbacks_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.CartMutations.WithLabelValues("update", "error")); got != 1 {
		t.Errorf("cart_mutations_total{update,error} = %v, want 1", got)
	}
}

func TestInvalidateDropsCartWithoutNetwork(t *testing.T) {
	t.Parallel()

	gw := &fakeCartGateway{}
	s := NewCartSynchronizer(gw, eligibleSession(), discardLogger(), nil)
	seed(t, s, gw, cartWith(line(1, 1, 10)))
	calls := gw.total()

	s.Invalidate()

	if s.Cart() != nil {
		t.Error("cart held after invalidate")
	}
	if gw.total() != calls {
		t.Error("invalidate issued a network call")
	}
}

func itemIDs(items []cart.Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ItemID
	}
	return out
}
