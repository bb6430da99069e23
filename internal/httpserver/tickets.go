package httpserver

import (
	"net/http"

	"clubstore/internal/domain"
	"clubstore/internal/money"
	"clubstore/internal/service/tickets"
	"github.com/gin-gonic/gin"
)

func (h *handlers) listMatches(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"results": h.deps.Tickets.Matches()})
}

func (h *handlers) bookTickets(c *gin.Context) {
	var in tickets.BookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.deps.Tickets.Book(c.Request.Context(), userFrom(c), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ticket": t, "total": money.Format(t.TotalPriceCents)})
}

func (h *handlers) myTickets(c *gin.Context) {
	list, err := h.deps.Tickets.ListForUser(c.Request.Context(), userFrom(c).ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if list == nil {
		list = []domain.Ticket{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "results": list})
}
