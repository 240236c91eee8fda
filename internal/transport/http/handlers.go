package httpt

import (
	"net/http"

	"umkmorder/internal/entity"
	"umkmorder/pkg/logger"

	"github.com/gin-gonic/gin"
)

func (h *OrderHandler) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *OrderHandler) packagesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Packages())
}

func (h *OrderHandler) endorseMonthsHandler(c *gin.Context) {
	window := h.svc.EndorseMonths()
	c.JSON(http.StatusOK, EndorseMonthsResponse{
		Earliest: window.Earliest,
		Latest:   window.Latest,
		Months:   window.Months(),
	})
}

func (h *OrderHandler) submitOrderHandler(c *gin.Context) {
	const op = "transport.submitOrderHandler"

	var sub entity.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		h.handleBindError(c, err, op)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	order, err := h.svc.SubmitOrder(ctx, &sub)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	h.log.Ctx(ctx).LogAttrs(ctx, logger.InfoLevel, "order submitted",
		logger.String("order_id", order.OrderID),
	)

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) trackOrderHandler(c *gin.Context) {
	const op = "transport.trackOrderHandler"

	ctx, cancel := h.requestContext(c)
	defer cancel()

	view, err := h.svc.Track(ctx, c.Param("order_id"))
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, view)
}
