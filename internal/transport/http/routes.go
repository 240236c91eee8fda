package httpt

func (h *OrderHandler) setupRoutes() {
	h.router.GET("/health", h.healthHandler)

	api := h.router.Group("/api/v1")
	{
		api.GET("/packages", h.packagesHandler)
		api.GET("/endorse-months", h.endorseMonthsHandler)
		api.POST("/orders", h.submitOrderHandler)
		api.GET("/track/:order_id", h.trackOrderHandler)
	}

	admin := api.Group("/admin", h.adminAuthMiddleware())
	{
		admin.GET("/orders", h.listOrdersHandler)
		admin.POST("/orders", h.createOrderHandler)
		admin.POST("/orders/sweep", h.sweepHandler)
		admin.GET("/orders/:order_id", h.getOrderHandler)
		admin.PATCH("/orders/:order_id", h.updateOrderHandler)
		admin.GET("/orders/:order_id/notification", h.notificationHandler)
		admin.GET("/stats", h.statsHandler)
	}
}
