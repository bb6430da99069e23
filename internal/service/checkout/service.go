// Package checkout turns a session cart into a persisted order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"clubstore/internal/cart"
	"clubstore/internal/domain"
	"clubstore/internal/money"
	"github.com/google/uuid"
)

const defaultShippingAddress = "No address provided"

var (
	// ErrUnauthenticated is returned when checkout is attempted without a signed-in user.
	ErrUnauthenticated = errors.New("sign in required to check out")
	// ErrEmptyCart is returned when there is nothing to order.
	ErrEmptyCart = cart.ErrEmpty
)

// OrderWriter is the subset of the order repository checkout needs.
type OrderWriter interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	CreateItem(ctx context.Context, item domain.OrderItem) (*domain.OrderItem, error)
}

// Error reports a checkout that failed after it started writing. OrderID is
// empty when the order itself could not be created. Records written before
// the failure are left in place.
type Error struct {
	OrderID      string
	ItemsCreated int
	Err          error
}

func (e *Error) Error() string {
	if e.OrderID == "" {
		return fmt.Sprintf("checkout: create order: %v", e.Err)
	}
	return fmt.Sprintf("checkout: order %s failed after %d items: %v", e.OrderID, e.ItemsCreated, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type Result struct {
	OrderID    string             `json:"orderId"`
	TotalCents int64              `json:"totalCents"`
	Items      []domain.OrderItem `json:"items"`
	Message    string             `json:"message"`
}

type Sequencer struct {
	orders OrderWriter
	logger *log.Logger
	newID  func() string
}

func New(orders OrderWriter, logger *log.Logger) *Sequencer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Sequencer{orders: orders, logger: logger, newID: uuid.NewString}
}

// Checkout writes one pending order and one item per cart line, in order.
// Only if every write succeeds are the ordered quantities removed and the cart
// closed; lines added while submitting stay behind. On failure the cart is
// left exactly as it was so the user can retry.
func (s *Sequencer) Checkout(ctx context.Context, store *cart.Store, user *domain.User, shippingAddress string) (*Result, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	lines, finish, err := store.BeginCheckout()
	if err != nil {
		return nil, err
	}

	res, err := s.submit(ctx, lines, user, shippingAddress)
	if err != nil {
		finish(false)
		return nil, err
	}

	store.Consume(lines)
	store.SetOpen(false)
	finish(true)
	return res, nil
}

func (s *Sequencer) submit(ctx context.Context, lines []domain.CartLine, user *domain.User, shippingAddress string) (*Result, error) {
	var total int64
	for _, l := range lines {
		total += l.TotalCents()
	}
	address := strings.TrimSpace(shippingAddress)
	if address == "" {
		address = defaultShippingAddress
	}

	orderID := s.newID()
	order, err := s.orders.Create(ctx, domain.Order{
		ID:              orderID,
		UserID:          user.ID,
		TotalCents:      total,
		Status:          domain.OrderStatusPending,
		ShippingAddress: address,
	})
	if err != nil {
		s.logger.Printf("checkout: create order user_id=%s error=%v", user.ID, err)
		return nil, &Error{Err: err}
	}
	s.logger.Printf("checkout: order created id=%s lines=%d total_cents=%d", order.ID, len(lines), total)

	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		item, err := s.orders.CreateItem(ctx, domain.OrderItem{
			ID:         s.newID(),
			OrderID:    order.ID,
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			PriceCents: l.UnitPriceCents,
		})
		if err != nil {
			s.logger.Printf("checkout: create item order_id=%s product_id=%s created=%d error=%v", order.ID, l.ProductID, len(items), err)
			return nil, &Error{OrderID: order.ID, ItemsCreated: len(items), Err: err}
		}
		items = append(items, *item)
	}

	return &Result{
		OrderID:    order.ID,
		TotalCents: total,
		Items:      items,
		Message:    fmt.Sprintf("Order #%s placed successfully! Total: %s", order.ID, money.Format(total)),
	}, nil
}
