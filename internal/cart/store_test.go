package cart

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"clubstore/internal/domain"
)

func item(id string, price int64) Item {
	return Item{ProductID: id, Name: "Product " + id, UnitPriceCents: price, ImageURL: "https://img/" + id}
}

func assertConsistent(t *testing.T, s *Store) {
	t.Helper()
	var total int64
	count := 0
	for _, l := range s.Lines() {
		if l.Quantity <= 0 {
			t.Fatalf("line %s has non-positive quantity %d", l.ProductID, l.Quantity)
		}
		total += l.UnitPriceCents * int64(l.Quantity)
		count += l.Quantity
	}
	if got := s.TotalCents(); got != total {
		t.Fatalf("total drifted: got %d want %d", got, total)
	}
	if got := s.ItemCount(); got != count {
		t.Fatalf("item count drifted: got %d want %d", got, count)
	}
}

func TestStoreAddSameProductTwiceIncrements(t *testing.T) {
	s := NewStore()
	s.Add(item("a", 50000))
	s.Add(item("a", 50000))

	lines := s.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", lines[0].Quantity)
	}
}

func TestStoreTotalsScenario(t *testing.T) {
	s := NewStore()
	s.Add(item("a", 50000))
	s.Add(item("a", 50000))
	s.Add(item("b", 30000))

	if got := s.TotalCents(); got != 130000 {
		t.Fatalf("expected total 130000, got %d", got)
	}
	if got := s.ItemCount(); got != 3 {
		t.Fatalf("expected item count 3, got %d", got)
	}
}

func TestStoreUpdateQuantityNonPositiveRemoves(t *testing.T) {
	for _, q := range []int{0, -1} {
		s := NewStore()
		s.Add(item("a", 100))
		s.Add(item("b", 200))
		s.UpdateQuantity("a", q)
		lines := s.Lines()
		if len(lines) != 1 || lines[0].ProductID != "b" {
			t.Fatalf("quantity %d: expected only b to remain, got %+v", q, lines)
		}
	}
}

func TestStoreUpdateQuantitySetsValue(t *testing.T) {
	s := NewStore()
	s.Add(item("a", 100))
	s.UpdateQuantity("a", 5)
	if got := s.ItemCount(); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	assertConsistent(t, s)
}

func TestStoreUpdateQuantityUnknownIsNoop(t *testing.T) {
	s := NewStore()
	s.Add(item("a", 100))
	before := s.Version()
	s.UpdateQuantity("missing", 3)
	if s.Version() != before || s.Len() != 1 {
		t.Fatalf("expected no change for unknown product")
	}
}

func TestStoreRemoveAbsentIsNoop(t *testing.T) {
	s := NewStore()
	s.Remove("missing")
	s.Add(item("a", 100))
	s.Remove("a")
	s.Remove("a")
	if s.Len() != 0 {
		t.Fatalf("expected empty cart")
	}
}

func TestStoreClear(t *testing.T) {
	s := NewStore()
	s.Add(item("a", 100))
	s.Add(item("b", 250))
	s.Clear()
	if s.TotalCents() != 0 || s.ItemCount() != 0 || len(s.Lines()) != 0 {
		t.Fatalf("expected empty cart after clear")
	}
}

func TestStoreSetOpenIdempotent(t *testing.T) {
	s := NewStore()
	s.SetOpen(true)
	v := s.Version()
	s.SetOpen(true)
	if !s.IsOpen() {
		t.Fatalf("expected open")
	}
	if s.Version() != v {
		t.Fatalf("second SetOpen(true) should not change version")
	}
}

func TestStoreLinesPreserveInsertionOrder(t *testing.T) {
	s := NewStore()
	s.Add(item("c", 1))
	s.Add(item("a", 1))
	s.Add(item("b", 1))
	s.Add(item("a", 1))
	lines := s.Lines()
	if lines[0].ProductID != "c" || lines[1].ProductID != "a" || lines[2].ProductID != "b" {
		t.Fatalf("unexpected order %+v", lines)
	}
}

func TestStoreLinesReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Add(item("a", 100))
	lines := s.Lines()
	lines[0].Quantity = 99
	if s.ItemCount() != 1 {
		t.Fatalf("mutating returned lines changed the store")
	}
}

func TestStoreRandomOperationsKeepTotalsConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := []string{"a", "b", "c", "d"}
	prices := map[string]int64{"a": 50000, "b": 30000, "c": 1999, "d": 1}
	s := NewStore()

	for i := 0; i < 2000; i++ {
		id := ids[rng.Intn(len(ids))]
		switch rng.Intn(3) {
		case 0:
			s.Add(item(id, prices[id]))
		case 1:
			s.UpdateQuantity(id, rng.Intn(7)-2)
		case 2:
			s.Remove(id)
		}
		assertConsistent(t, s)
	}
}

func TestStoreConcurrentAdds(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add(item("a", 10))
		}()
	}
	wg.Wait()
	if s.ItemCount() != 50 || s.Len() != 1 {
		t.Fatalf("expected one line with 50 items, got %d lines %d items", s.Len(), s.ItemCount())
	}
}

func TestStoreBeginCheckoutRejectsConcurrentAttempt(t *testing.T) {
	s := NewStore()
	s.Add(item("a", 100))
	lines, finish, err := s.BeginCheckout()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 || lines[0].ProductID != "a" {
		t.Fatalf("unexpected captured lines %+v", lines)
	}
	if s.CheckoutState() != CheckoutSubmitting {
		t.Fatalf("expected submitting, got %s", s.CheckoutState())
	}
	if _, _, err := s.BeginCheckout(); !errors.Is(err, ErrCheckoutInProgress) {
		t.Fatalf("expected ErrCheckoutInProgress, got %v", err)
	}

	finish(false)
	finish(true)
	if s.CheckoutState() != CheckoutFailed {
		t.Fatalf("expected failed after first finish, got %s", s.CheckoutState())
	}

	_, finish2, err := s.BeginCheckout()
	if err != nil {
		t.Fatalf("expected retry to be allowed, got %v", err)
	}
	finish2(true)
	if s.CheckoutState() != CheckoutSucceeded {
		t.Fatalf("expected succeeded, got %s", s.CheckoutState())
	}
}

func TestStoreBeginCheckoutEmptyKeepsState(t *testing.T) {
	s := NewStore()
	if _, _, err := s.BeginCheckout(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if s.CheckoutState() != CheckoutIdle {
		t.Fatalf("expected idle, got %s", s.CheckoutState())
	}

	s.Add(item("a", 100))
	_, finish, err := s.BeginCheckout()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	finish(true)
	s.Clear()
	if _, _, err := s.BeginCheckout(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if s.CheckoutState() != CheckoutSucceeded {
		t.Fatalf("empty attempt must not overwrite last outcome, got %s", s.CheckoutState())
	}
}

func TestStoreBeginCheckoutCapturesCopy(t *testing.T) {
	s := NewStore()
	s.Add(item("a", 100))
	lines, finish, err := s.BeginCheckout()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer finish(true)
	s.Add(item("a", 100))
	if lines[0].Quantity != 1 {
		t.Fatalf("captured line changed with the cart: %+v", lines[0])
	}
}

func TestStoreConsumeKeepsLaterChanges(t *testing.T) {
	s := NewStore()
	s.Add(item("a", 100))
	s.Add(item("a", 100))
	s.Add(item("b", 200))
	s.Add(item("c", 300))
	ordered := s.Lines()

	s.Add(item("a", 100))
	s.Add(item("d", 400))
	s.UpdateQuantity("c", 0)
	before := s.Version()

	s.Consume(ordered)
	lines := s.Lines()
	if len(lines) != 2 || lines[0].ProductID != "a" || lines[0].Quantity != 1 || lines[1].ProductID != "d" {
		t.Fatalf("unexpected remaining lines %+v", lines)
	}
	if s.Version() == before {
		t.Fatalf("expected version bump")
	}
	assertConsistent(t, s)
}

func TestStoreConsumeNothingMatchingIsNoop(t *testing.T) {
	s := NewStore()
	s.Add(item("a", 100))
	v := s.Version()
	s.Consume([]domain.CartLine{{ProductID: "z", Quantity: 1}})
	s.Consume(nil)
	if s.Version() != v || s.Len() != 1 {
		t.Fatalf("expected no change")
	}
}

func TestStoreRestoreDropsInvalidLines(t *testing.T) {
	s := NewStore()
	s.Add(item("a", 100))
	snap := s.Snapshot()
	snap.Lines = append(snap.Lines, snap.Lines[0])
	snap.Lines = append(snap.Lines, domain.CartLine{ProductID: "z", UnitPriceCents: 5, Quantity: 0})
	snap.IsOpen = true

	restored := NewStore()
	restored.Restore(snap)
	if restored.Len() != 1 || !restored.IsOpen() {
		t.Fatalf("unexpected restored state lines=%d open=%v", restored.Len(), restored.IsOpen())
	}
	assertConsistent(t, restored)
}
