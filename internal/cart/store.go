// Package cart holds the session-local shopping cart.
//
// A Store is owned by exactly one session and handed to whoever needs it;
// there is no package-level cart. All mutations are synchronous, and totals
// are recomputed from the lines on every read.
package cart

import (
	"errors"
	"sync"

	"clubstore/internal/domain"
)

var (
	// ErrCheckoutInProgress is returned when a checkout is already submitting for this cart.
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	// ErrEmpty is returned by BeginCheckout when there are no lines to order.
	ErrEmpty = errors.New("cart is empty")
)

// CheckoutState tracks the most recent checkout attempt for a cart.
type CheckoutState string

const (
	CheckoutIdle       CheckoutState = "idle"
	CheckoutSubmitting CheckoutState = "submitting"
	CheckoutSucceeded  CheckoutState = "succeeded"
	CheckoutFailed     CheckoutState = "failed"
)

// Item is what the storefront passes to Add: a product without a quantity.
type Item struct {
	ProductID      string
	Name           string
	UnitPriceCents int64
	ImageURL       string
}

type Store struct {
	mu       sync.Mutex
	lines    []domain.CartLine
	isOpen   bool
	version  uint64
	checkout CheckoutState
}

func NewStore() *Store {
	return &Store{checkout: CheckoutIdle}
}

// Add inserts a new line with quantity 1, or increments the existing line for the product.
func (s *Store) Add(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(item.ProductID); i >= 0 {
		s.lines[i].Quantity++
	} else {
		s.lines = append(s.lines, domain.CartLine{
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			ImageURL:       item.ImageURL,
			Quantity:       1,
		})
	}
	s.version++
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less removes
// the line. Unknown products are ignored.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		s.removeAt(i)
	} else {
		s.lines[i].Quantity = quantity
	}
	s.version++
}

// Remove drops the line for productID if present.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID); i >= 0 {
		s.removeAt(i)
		s.version++
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return
	}
	s.lines = nil
	s.version++
}

// SetOpen toggles cart panel visibility. It has no effect on the contents.
func (s *Store) SetOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isOpen == open {
		return
	}
	s.isOpen = open
	s.version++
}

func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOpen
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) TotalCents() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, l := range s.lines {
		total += l.TotalCents()
	}
	return total
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, l := range s.lines {
		count += l.Quantity
	}
	return count
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Version increases on every observable change to lines or visibility.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) CheckoutState() CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout
}

// BeginCheckout moves the cart into the submitting state and returns the lines
// to order, captured under the same lock. The returned finish func records the
// outcome and must be called exactly once. A second attempt while one is
// submitting is rejected with ErrCheckoutInProgress; an empty cart is rejected
// with ErrEmpty and keeps its previous state.
func (s *Store) BeginCheckout() (lines []domain.CartLine, finish func(ok bool), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkout == CheckoutSubmitting {
		return nil, nil, ErrCheckoutInProgress
	}
	if len(s.lines) == 0 {
		return nil, nil, ErrEmpty
	}
	s.checkout = CheckoutSubmitting
	lines = make([]domain.CartLine, len(s.lines))
	copy(lines, s.lines)

	var once sync.Once
	return lines, func(ok bool) {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if ok {
				s.checkout = CheckoutSucceeded
			} else {
				s.checkout = CheckoutFailed
			}
		})
	}, nil
}

// Consume subtracts ordered quantities from the matching lines and drops lines
// that reach zero. Lines added after the order was captured are kept.
func (s *Store) Consume(ordered []domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, o := range ordered {
		i := s.indexOf(o.ProductID)
		if i < 0 {
			continue
		}
		if s.lines[i].Quantity -= o.Quantity; s.lines[i].Quantity <= 0 {
			s.removeAt(i)
		}
		changed = true
	}
	if changed {
		s.version++
	}
}

func (s *Store) indexOf(productID string) int {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(i int) {
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
}
