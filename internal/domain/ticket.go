package domain

import "time"

type SeatCategory string

const (
	SeatGeneral   SeatCategory = "general"
	SeatPremium   SeatCategory = "premium"
	SeatVIP       SeatCategory = "vip"
	SeatCorporate SeatCategory = "corporate"
)

const BookingConfirmed = "confirmed"

type Ticket struct {
	ID              string       `json:"id"`
	UserID          string       `json:"userId"`
	MatchID         int          `json:"matchId"`
	MatchTitle      string       `json:"matchTitle"`
	SeatCategory    SeatCategory `json:"seatCategory"`
	Quantity        int          `json:"quantity"`
	TotalPriceCents int64        `json:"totalPriceCents"`
	BookingStatus   string       `json:"bookingStatus"`
	CreatedAt       time.Time    `json:"createdAt"`
}

// Match is an upcoming home fixture that tickets can be booked for.
type Match struct {
	ID               int                    `json:"id"`
	Opponent         string                 `json:"opponent"`
	OpponentCode     string                 `json:"opponentCode"`
	Kickoff          time.Time              `json:"kickoff"`
	Venue            string                 `json:"venue"`
	Competition      string                 `json:"competition"`
	TicketsAvailable int                    `json:"ticketsAvailable"`
	TotalCapacity    int                    `json:"totalCapacity"`
	Prices           map[SeatCategory]int64 `json:"prices"`
}
