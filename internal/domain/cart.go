package domain

// CartLine is one product-quantity pairing in a session cart.
type CartLine struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	ImageURL       string `json:"imageUrl"`
	Quantity       int    `json:"quantity"`
}

func (l CartLine) TotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}
