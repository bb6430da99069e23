package httpserver

import (
	"errors"
	"log"
	"net/http"

	"clubstore/internal/cart"
	"clubstore/internal/domain"
	"clubstore/internal/service/auth"
	"clubstore/internal/service/checkout"
	"clubstore/internal/service/tickets"
	"github.com/gin-gonic/gin"
)

const checkoutFailedMessage = "Checkout failed. Please try again."

// writeError maps service errors onto HTTP status codes.
func writeError(c *gin.Context, logger *log.Logger, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Printf("http: %s %s error=%v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": msg})
}

func classify(err error) (int, string) {
	var checkoutErr *checkout.Error
	switch {
	case errors.As(err, &checkoutErr):
		return http.StatusBadGateway, checkoutFailedMessage
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "already exists"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, checkout.ErrUnauthenticated),
		errors.Is(err, tickets.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusUnprocessableEntity, "cart is empty"
	case errors.Is(err, cart.ErrCheckoutInProgress):
		return http.StatusConflict, "checkout already in progress"
	}
	return http.StatusInternalServerError, "internal error"
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
