package tickets

import (
	"time"

	"clubstore/internal/domain"
	"clubstore/internal/money"
)

var ist = time.FixedZone("IST", 5*60*60+30*60)

func kickoff(date string, hh, mm int) time.Time {
	d, err := time.ParseInLocation("2006-01-02", date, ist)
	if err != nil {
		panic(err)
	}
	return d.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
}

func prices(general, premium, vip, corporate int64) map[domain.SeatCategory]int64 {
	return map[domain.SeatCategory]int64{
		domain.SeatGeneral:   money.FromRupees(general),
		domain.SeatPremium:   money.FromRupees(premium),
		domain.SeatVIP:       money.FromRupees(vip),
		domain.SeatCorporate: money.FromRupees(corporate),
	}
}

// upcoming is the fixed list of home fixtures open for booking.
func upcoming() []domain.Match {
	return []domain.Match{
		{
			ID:               1,
			Opponent:         "Bengaluru FC",
			OpponentCode:     "BFC",
			Kickoff:          kickoff("2024-02-15", 19, 30),
			Venue:            "Salt Lake Stadium",
			Competition:      "ISL",
			TicketsAvailable: 15420,
			TotalCapacity:    68000,
			Prices:           prices(299, 799, 1999, 4999),
		},
		{
			ID:               2,
			Opponent:         "Mumbai City FC",
			OpponentCode:     "MCFC",
			Kickoff:          kickoff("2024-02-22", 20, 0),
			Venue:            "Salt Lake Stadium",
			Competition:      "ISL",
			TicketsAvailable: 12850,
			TotalCapacity:    68000,
			Prices:           prices(399, 899, 2299, 5499),
		},
		{
			ID:               3,
			Opponent:         "Kerala Blasters",
			OpponentCode:     "KBFC",
			Kickoff:          kickoff("2024-03-01", 19, 30),
			Venue:            "Salt Lake Stadium",
			Competition:      "ISL",
			TicketsAvailable: 18200,
			TotalCapacity:    68000,
			Prices:           prices(349, 849, 2149, 4799),
		},
	}
}
