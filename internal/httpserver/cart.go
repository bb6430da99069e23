package httpserver

import (
	"net/http"
	"time"

	"clubstore/internal/cart"
	"clubstore/internal/domain"
	"clubstore/internal/money"
	"github.com/gin-gonic/gin"
)

type cartView struct {
	Lines         []domain.CartLine  `json:"lines"`
	ItemCount     int                `json:"itemCount"`
	TotalCents    int64              `json:"totalCents"`
	Total         string             `json:"total"`
	IsOpen        bool               `json:"isOpen"`
	CheckoutState cart.CheckoutState `json:"checkoutState"`
}

func toCartView(s *cart.Store) cartView {
	lines := s.Lines()
	var total int64
	count := 0
	for _, l := range lines {
		total += l.TotalCents()
		count += l.Quantity
	}
	return cartView{
		Lines:         lines,
		ItemCount:     count,
		TotalCents:    total,
		Total:         money.Format(total),
		IsOpen:        s.IsOpen(),
		CheckoutState: s.CheckoutState(),
	}
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Cart      cartView  `json:"cart"`
}

// startSession returns the caller's live session, or starts one.
func (h *handlers) startSession(c *gin.Context) {
	sessions := h.deps.Sessions
	ctx := c.Request.Context()
	s, err := sessions.Lookup(ctx, sessionToken(c))
	status := http.StatusOK
	if err != nil {
		s, err = sessions.Start(ctx)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		status = http.StatusCreated
	}
	setSessionCookie(c, s, sessions)
	c.JSON(status, sessionResponse{Token: s.ID, ExpiresAt: s.ExpiresAt(), Cart: toCartView(s.Cart)})
}

func (h *handlers) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, toCartView(sessionFrom(c).Cart))
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// addCartItem resolves name, price and image from the catalog so clients
// cannot set their own prices.
func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.deps.Catalog.Get(c.Request.Context(), req.ProductID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	store := sessionFrom(c).Cart
	store.Add(cart.Item{
		ProductID:      p.ID,
		Name:           p.Name,
		UnitPriceCents: p.PriceCents,
		ImageURL:       p.ImageURL,
	})
	c.JSON(http.StatusOK, toCartView(store))
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *handlers) updateCartItem(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	store := sessionFrom(c).Cart
	store.UpdateQuantity(c.Param("productId"), *req.Quantity)
	c.JSON(http.StatusOK, toCartView(store))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	store := sessionFrom(c).Cart
	store.Remove(c.Param("productId"))
	c.JSON(http.StatusOK, toCartView(store))
}

func (h *handlers) clearCart(c *gin.Context) {
	store := sessionFrom(c).Cart
	store.Clear()
	c.JSON(http.StatusOK, toCartView(store))
}

type setOpenRequest struct {
	Open *bool `json:"open" binding:"required"`
}

func (h *handlers) setCartOpen(c *gin.Context) {
	var req setOpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	store := sessionFrom(c).Cart
	store.SetOpen(*req.Open)
	c.JSON(http.StatusOK, toCartView(store))
}

type checkoutRequest struct {
	ShippingAddress string `json:"shippingAddress"`
}

type checkoutResponse struct {
	OrderID    string             `json:"orderId"`
	TotalCents int64              `json:"totalCents"`
	Total      string             `json:"total"`
	Items      []domain.OrderItem `json:"items"`
	Message    string             `json:"message"`
	Cart       cartView           `json:"cart"`
}

func (h *handlers) checkout(c *gin.Context) {
	var req checkoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	store := sessionFrom(c).Cart
	res, err := h.deps.Checkout.Checkout(c.Request.Context(), store, userFrom(c), req.ShippingAddress)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, checkoutResponse{
		OrderID:    res.OrderID,
		TotalCents: res.TotalCents,
		Total:      money.Format(res.TotalCents),
		Items:      res.Items,
		Message:    res.Message,
		Cart:       toCartView(store),
	})
}
