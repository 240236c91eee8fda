package httpt

import (
	"net/http"

	"umkmorder/internal/entity"
	"umkmorder/pkg/logger"

	"github.com/gin-gonic/gin"
)

func (h *OrderHandler) listOrdersHandler(c *gin.Context) {
	const op = "transport.listOrdersHandler"

	var filter entity.OrderFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.handleBindError(c, err, op)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	orders, err := h.svc.ListOrders(ctx, filter)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, OrderListResponse{Orders: orders, Count: len(orders)})
}

func (h *OrderHandler) createOrderHandler(c *gin.Context) {
	const op = "transport.createOrderHandler"

	var order entity.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		h.handleBindError(c, err, op)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	created, err := h.svc.CreateOrder(ctx, &order)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	h.log.Ctx(ctx).LogAttrs(ctx, logger.InfoLevel, "order created by admin",
		logger.String("order_id", created.OrderID),
		logger.String("admin", c.GetString(_adminUserKey)),
	)

	c.JSON(http.StatusCreated, created)
}

func (h *OrderHandler) getOrderHandler(c *gin.Context) {
	const op = "transport.getOrderHandler"

	ctx, cancel := h.requestContext(c)
	defer cancel()

	order, err := h.svc.GetOrder(ctx, c.Param("order_id"))
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) updateOrderHandler(c *gin.Context) {
	const op = "transport.updateOrderHandler"

	var patch entity.OrderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.handleBindError(c, err, op)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	order, err := h.svc.UpdateOrder(ctx, c.Param("order_id"), patch)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	h.log.Ctx(ctx).LogAttrs(ctx, logger.InfoLevel, "order updated by admin",
		logger.String("order_id", order.OrderID),
		logger.String("status", string(order.Status)),
		logger.String("admin", c.GetString(_adminUserKey)),
	)

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) sweepHandler(c *gin.Context) {
	const op = "transport.sweepHandler"

	ctx, cancel := h.requestContext(c)
	defer cancel()

	n, err := h.svc.SweepExpired(ctx)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, SweepResponse{Cancelled: n})
}

func (h *OrderHandler) notificationHandler(c *gin.Context) {
	const op = "transport.notificationHandler"

	ctx, cancel := h.requestContext(c)
	defer cancel()

	n, err := h.svc.Notification(ctx, c.Param("order_id"), c.Query("template"))
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, n)
}

func (h *OrderHandler) statsHandler(c *gin.Context) {
	const op = "transport.statsHandler"

	ctx, cancel := h.requestContext(c)
	defer cancel()

	stats, err := h.svc.Stats(ctx)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, stats)
}
