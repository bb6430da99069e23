package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"clubstore/internal/cart"
	"clubstore/internal/domain"
	"clubstore/internal/service/auth"
	"clubstore/internal/service/catalog"
	"clubstore/internal/service/checkout"
	"clubstore/internal/service/orders"
	"clubstore/internal/service/tickets"
	"clubstore/internal/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuthService interface {
	Signup(ctx context.Context, in auth.SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (*domain.User, error)
	AccessTTL() time.Duration
}

type CatalogService interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, in catalog.CreateInput) (*domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type CheckoutService interface {
	Checkout(ctx context.Context, store *cart.Store, user *domain.User, shippingAddress string) (*checkout.Result, error)
}

type OrderService interface {
	List(ctx context.Context) ([]domain.Order, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Order, error)
	Items(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (orders.Stats, error)
}

type TicketService interface {
	Matches() []domain.Match
	Book(ctx context.Context, user *domain.User, in tickets.BookInput) (*domain.Ticket, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Ticket, error)
}

// Deps groups the services the router dispatches to.
type Deps struct {
	Sessions       *session.Manager
	Auth           AuthService
	Catalog        CatalogService
	Checkout       CheckoutService
	Orders         OrderService
	Tickets        TicketService
	AllowedOrigins []string
}

func (d Deps) validate() error {
	switch {
	case d.Sessions == nil:
		return errors.New("httpserver: session manager is required")
	case d.Auth == nil:
		return errors.New("httpserver: auth service is required")
	case d.Catalog == nil:
		return errors.New("httpserver: catalog service is required")
	case d.Checkout == nil:
		return errors.New("httpserver: checkout service is required")
	case d.Orders == nil:
		return errors.New("httpserver: order service is required")
	case d.Tickets == nil:
		return errors.New("httpserver: ticket service is required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if mw := corsMiddleware(deps.AllowedOrigins); mw != nil {
		router.Use(mw)
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db, deps.Sessions))

	h := &handlers{deps: deps, logger: logger}

	api := router.Group("/api")
	api.POST("/session", h.startSession)

	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)
	api.GET("/categories", h.listCategories)
	api.GET("/matches", h.listMatches)

	scoped := api.Group("")
	scoped.Use(sessionMiddleware(deps.Sessions, logger), userMiddleware(deps.Auth))

	scoped.GET("/cart", h.getCart)
	scoped.POST("/cart/items", h.addCartItem)
	scoped.PUT("/cart/items/:productId", h.updateCartItem)
	scoped.DELETE("/cart/items/:productId", h.removeCartItem)
	scoped.DELETE("/cart", h.clearCart)
	scoped.PUT("/cart/open", h.setCartOpen)

	scoped.POST("/auth/signup", h.signup)
	scoped.POST("/auth/login", h.login)
	scoped.POST("/auth/logout", h.logout)
	scoped.GET("/auth/me", h.me)
	scoped.GET("/auth/stream", h.authStream)

	member := scoped.Group("")
	member.Use(requireUser())
	member.POST("/checkout", h.checkout)
	member.GET("/orders", h.myOrders)
	member.POST("/tickets", h.bookTickets)
	member.GET("/tickets", h.myTickets)

	admin := scoped.Group("/admin")
	admin.Use(requireAdmin())
	admin.GET("/stats", h.adminStats)
	admin.GET("/products", h.adminListProducts)
	admin.POST("/products", h.adminCreateProduct)
	admin.PUT("/products/:id", h.adminUpdateProduct)
	admin.DELETE("/products/:id", h.adminDeleteProduct)
	admin.GET("/orders", h.adminListOrders)
	admin.GET("/orders/:id/items", h.adminOrderItems)
	admin.PUT("/orders/:id/status", h.adminUpdateOrderStatus)
	admin.DELETE("/orders/:id", h.adminDeleteOrder)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	return router, nil
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return nil
	}
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", sessionHeader},
		ExposeHeaders: []string{sessionHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cors.New(cfg)
}
