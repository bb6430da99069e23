package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"clubstore/internal/cart"
	"clubstore/internal/domain"
)

type stubOrders struct {
	mu          sync.Mutex
	orders      []domain.Order
	items       []domain.OrderItem
	failOrder   error
	failItemAt  int // 1-based index of the CreateItem call that fails; 0 never fails
	itemCalls   int
	block       chan struct{}
	entered     chan struct{}
	createCalls int
}

func (s *stubOrders) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	s.createCalls++
	block, entered := s.block, s.entered
	s.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOrder != nil {
		return nil, s.failOrder
	}
	s.orders = append(s.orders, o)
	return &o, nil
}

func (s *stubOrders) CreateItem(_ context.Context, item domain.OrderItem) (*domain.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.itemCalls++
	if s.failItemAt > 0 && s.itemCalls == s.failItemAt {
		return nil, errors.New("network down")
	}
	s.items = append(s.items, item)
	return &item, nil
}

func (s *stubOrders) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createCalls + s.itemCalls
}

func newSequencer(orders OrderWriter) *Sequencer {
	seq := New(orders, nil)
	n := 0
	seq.newID = func() string {
		n++
		return "id-" + string(rune('a'+n-1))
	}
	return seq
}

func fill(store *cart.Store) {
	store.Add(cart.Item{ProductID: "p1", Name: "Home Jersey", UnitPriceCents: 50000})
	store.Add(cart.Item{ProductID: "p1", Name: "Home Jersey", UnitPriceCents: 50000})
	store.Add(cart.Item{ProductID: "p2", Name: "Scarf", UnitPriceCents: 30000})
}

var fan = &domain.User{ID: "u1", Email: "fan@example.com"}

func TestCheckoutSuccessClearsAndClosesCart(t *testing.T) {
	orders := &stubOrders{}
	store := cart.NewStore()
	fill(store)
	store.SetOpen(true)

	res, err := newSequencer(orders).Checkout(context.Background(), store, fan, "  Salt Lake, Kolkata ")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if res.TotalCents != 130000 {
		t.Fatalf("expected total 130000, got %d", res.TotalCents)
	}
	if len(orders.orders) != 1 || len(orders.items) != 2 {
		t.Fatalf("expected 1 order and 2 items, got %d and %d", len(orders.orders), len(orders.items))
	}
	o := orders.orders[0]
	if o.Status != domain.OrderStatusPending || o.UserID != "u1" || o.ShippingAddress != "Salt Lake, Kolkata" || o.TotalCents != 130000 {
		t.Fatalf("unexpected order %+v", o)
	}
	if orders.items[0].Quantity != 2 || orders.items[0].PriceCents != 50000 || orders.items[0].OrderID != o.ID {
		t.Fatalf("unexpected first item %+v", orders.items[0])
	}
	if store.Len() != 0 || store.IsOpen() {
		t.Fatalf("expected empty closed cart, got lines=%d open=%v", store.Len(), store.IsOpen())
	}
	if store.CheckoutState() != cart.CheckoutSucceeded {
		t.Fatalf("expected succeeded, got %s", store.CheckoutState())
	}
	if !strings.Contains(res.Message, o.ID) || !strings.Contains(res.Message, "1,300.00") {
		t.Fatalf("unexpected message %q", res.Message)
	}
}

func TestCheckoutDefaultsShippingAddress(t *testing.T) {
	orders := &stubOrders{}
	store := cart.NewStore()
	fill(store)
	if _, err := newSequencer(orders).Checkout(context.Background(), store, fan, "   "); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if got := orders.orders[0].ShippingAddress; got != defaultShippingAddress {
		t.Fatalf("expected default address, got %q", got)
	}
}

func TestCheckoutEmptyCartMakesNoCalls(t *testing.T) {
	orders := &stubOrders{}
	_, err := newSequencer(orders).Checkout(context.Background(), cart.NewStore(), fan, "")
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if orders.calls() != 0 {
		t.Fatalf("expected zero remote calls, got %d", orders.calls())
	}
}

func TestCheckoutClearedCartStaysIdle(t *testing.T) {
	orders := &stubOrders{}
	store := cart.NewStore()
	fill(store)
	store.Clear()

	_, err := newSequencer(orders).Checkout(context.Background(), store, fan, "")
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if store.CheckoutState() != cart.CheckoutIdle || orders.calls() != 0 {
		t.Fatalf("expected idle state and no calls, got %s and %d", store.CheckoutState(), orders.calls())
	}
}

func TestCheckoutWithoutUserMakesNoCalls(t *testing.T) {
	orders := &stubOrders{}
	store := cart.NewStore()
	fill(store)
	_, err := newSequencer(orders).Checkout(context.Background(), store, nil, "")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if orders.calls() != 0 || store.Len() != 2 {
		t.Fatalf("expected no calls and untouched cart")
	}
}

func TestCheckoutPartialFailureKeepsCartAndRecords(t *testing.T) {
	orders := &stubOrders{failItemAt: 2}
	store := cart.NewStore()
	store.Add(cart.Item{ProductID: "a", UnitPriceCents: 100})
	store.Add(cart.Item{ProductID: "b", UnitPriceCents: 200})
	store.Add(cart.Item{ProductID: "c", UnitPriceCents: 300})
	store.SetOpen(true)
	before := store.Lines()

	_, err := newSequencer(orders).Checkout(context.Background(), store, fan, "")
	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if cerr.OrderID == "" || cerr.ItemsCreated != 1 {
		t.Fatalf("unexpected error detail %+v", cerr)
	}
	if len(orders.orders) != 1 || len(orders.items) != 1 || orders.items[0].ProductID != "a" {
		t.Fatalf("expected order plus first item persisted, got %d orders %d items", len(orders.orders), len(orders.items))
	}
	after := store.Lines()
	if len(after) != 3 || !store.IsOpen() {
		t.Fatalf("cart must be untouched, got %d lines open=%v", len(after), store.IsOpen())
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("line %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
	if store.CheckoutState() != cart.CheckoutFailed {
		t.Fatalf("expected failed state, got %s", store.CheckoutState())
	}
}

func TestCheckoutOrderFailureCreatesNoItems(t *testing.T) {
	orders := &stubOrders{failOrder: errors.New("timeout")}
	store := cart.NewStore()
	fill(store)

	_, err := newSequencer(orders).Checkout(context.Background(), store, fan, "")
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.OrderID != "" {
		t.Fatalf("expected *Error without order id, got %v", err)
	}
	if orders.itemCalls != 0 || store.Len() != 2 {
		t.Fatalf("expected no item calls and untouched cart")
	}
}

func TestCheckoutRetryAfterFailureCreatesNewOrder(t *testing.T) {
	orders := &stubOrders{failItemAt: 1}
	store := cart.NewStore()
	fill(store)
	seq := newSequencer(orders)

	if _, err := seq.Checkout(context.Background(), store, fan, ""); err == nil {
		t.Fatalf("expected first attempt to fail")
	}
	res, err := seq.Checkout(context.Background(), store, fan, "")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(orders.orders) != 2 || res.OrderID == orders.orders[0].ID {
		t.Fatalf("expected a second, distinct order")
	}
}

func TestCheckoutConcurrentAttemptRejected(t *testing.T) {
	orders := &stubOrders{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	store := cart.NewStore()
	fill(store)
	seq := newSequencer(orders)

	done := make(chan error, 1)
	go func() {
		_, err := seq.Checkout(context.Background(), store, fan, "")
		done <- err
	}()
	<-orders.entered

	if _, err := seq.Checkout(context.Background(), store, fan, ""); !errors.Is(err, cart.ErrCheckoutInProgress) {
		t.Fatalf("expected ErrCheckoutInProgress, got %v", err)
	}
	close(orders.block)
	if err := <-done; err != nil {
		t.Fatalf("first checkout: %v", err)
	}
	if len(orders.orders) != 1 {
		t.Fatalf("expected exactly one order, got %d", len(orders.orders))
	}
}

func TestCheckoutKeepsItemsAddedWhileSubmitting(t *testing.T) {
	orders := &stubOrders{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	store := cart.NewStore()
	fill(store)
	seq := newSequencer(orders)

	done := make(chan error, 1)
	go func() {
		_, err := seq.Checkout(context.Background(), store, fan, "")
		done <- err
	}()
	<-orders.entered

	store.Add(cart.Item{ProductID: "p9", Name: "Cap", UnitPriceCents: 49900})
	store.Add(cart.Item{ProductID: "p1", Name: "Home Jersey", UnitPriceCents: 50000})
	close(orders.block)
	if err := <-done; err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if len(orders.items) != 2 {
		t.Fatalf("expected only the captured lines ordered, got %d items", len(orders.items))
	}
	if orders.orders[0].TotalCents != 130000 {
		t.Fatalf("expected order total 130000, got %d", orders.orders[0].TotalCents)
	}
	lines := store.Lines()
	if len(lines) != 2 || lines[0].ProductID != "p1" || lines[0].Quantity != 1 || lines[1].ProductID != "p9" || lines[1].Quantity != 1 {
		t.Fatalf("expected p1x1 and p9x1 left in cart, got %+v", lines)
	}
	if store.CheckoutState() != cart.CheckoutSucceeded {
		t.Fatalf("expected succeeded, got %s", store.CheckoutState())
	}
}
