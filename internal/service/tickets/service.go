// Package tickets books seats for upcoming home fixtures.
package tickets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"clubstore/internal/domain"
	ticketrepo "clubstore/internal/repository/ticket"
	"github.com/google/uuid"
)

const maxTicketsPerBooking = 8

// ErrUnauthenticated is returned when booking without a signed-in user.
var ErrUnauthenticated = errors.New("sign in required to book tickets")

type BookInput struct {
	MatchID  int                 `json:"matchId" binding:"required"`
	Category domain.SeatCategory `json:"seatCategory" binding:"required"`
	Quantity int                 `json:"quantity" binding:"required"`
}

type Service struct {
	repo     ticketrepo.Repository
	clubName string
	matches  []domain.Match
	logger   *log.Logger
}

func New(repo ticketrepo.Repository, clubName string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, clubName: clubName, matches: upcoming(), logger: logger}
}

// Matches returns the fixtures open for booking, soonest first.
func (s *Service) Matches() []domain.Match {
	out := make([]domain.Match, len(s.matches))
	copy(out, s.matches)
	return out
}

func (s *Service) match(id int) (domain.Match, bool) {
	for _, m := range s.matches {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Match{}, false
}

// Book records a confirmed booking priced from the fixture's seat category.
func (s *Service) Book(ctx context.Context, user *domain.User, in BookInput) (*domain.Ticket, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	if in.Quantity < 1 || in.Quantity > maxTicketsPerBooking {
		return nil, fmt.Errorf("%w: quantity must be between 1 and %d", domain.ErrValidation, maxTicketsPerBooking)
	}
	m, ok := s.match(in.MatchID)
	if !ok {
		return nil, fmt.Errorf("%w: match %d", domain.ErrNotFound, in.MatchID)
	}
	category := domain.SeatCategory(strings.ToLower(string(in.Category)))
	price, ok := m.Prices[category]
	if !ok {
		return nil, fmt.Errorf("%w: unknown seat category %q", domain.ErrValidation, in.Category)
	}
	if in.Quantity > m.TicketsAvailable {
		return nil, fmt.Errorf("%w: only %d tickets left", domain.ErrValidation, m.TicketsAvailable)
	}

	t, err := s.repo.Create(ctx, domain.Ticket{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		MatchID:         m.ID,
		MatchTitle:      fmt.Sprintf("%s vs %s", s.clubName, m.Opponent),
		SeatCategory:    category,
		Quantity:        in.Quantity,
		TotalPriceCents: price * int64(in.Quantity),
		BookingStatus:   domain.BookingConfirmed,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("tickets: booked id=%s user_id=%s match_id=%d qty=%d", t.ID, user.ID, m.ID, t.Quantity)
	return t, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.Ticket, error) {
	return s.repo.ListByUser(ctx, userID)
}
