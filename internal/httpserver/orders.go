package httpserver

import (
	"net/http"

	"clubstore/internal/domain"
	"clubstore/internal/money"
	"github.com/gin-gonic/gin"
)

func (h *handlers) myOrders(c *gin.Context) {
	list, err := h.deps.Orders.ListForUser(c.Request.Context(), userFrom(c).ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if list == nil {
		list = []domain.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "results": list})
}

func (h *handlers) adminStats(c *gin.Context) {
	st, err := h.deps.Orders.Stats(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"totalProducts":     st.TotalProducts,
		"totalOrders":       st.TotalOrders,
		"pendingOrders":     st.PendingOrders,
		"totalRevenueCents": st.TotalRevenueCents,
		"totalRevenue":      money.Format(st.TotalRevenueCents),
	})
}

func (h *handlers) adminListOrders(c *gin.Context) {
	list, err := h.deps.Orders.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if list == nil {
		list = []domain.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "results": list})
}

func (h *handlers) adminOrderItems(c *gin.Context) {
	items, err := h.deps.Orders.Items(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if items == nil {
		items = []domain.OrderItem{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "results": items})
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

func (h *handlers) adminUpdateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.deps.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) adminDeleteOrder(c *gin.Context) {
	if err := h.deps.Orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
