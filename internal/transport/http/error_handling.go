package httpt

import (
	"context"
	"errors"
	"net/http"

	"umkmorder/internal/entity"
	"umkmorder/internal/service"
	"umkmorder/pkg/logger"

	"github.com/gin-gonic/gin"
)

func (h *OrderHandler) handleServiceError(c *gin.Context, err error, op string) {
	ctx := c.Request.Context()
	log := h.log.Ctx(ctx)

	switch {
	case errors.Is(err, entity.ErrInvalidData):
		log.LogAttrs(ctx, logger.WarnLevel, op+" rejected",
			logger.Err(err),
			logger.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: fieldErrors(err),
		})
	case errors.Is(err, entity.ErrDataNotFound):
		log.LogAttrs(ctx, logger.WarnLevel, "order not found",
			logger.String("op", op),
			logger.String("order_id", c.Param("order_id")),
			logger.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Order not found"})
	case errors.Is(err, entity.ErrConflictingData):
		log.LogAttrs(ctx, logger.WarnLevel, "order already exists",
			logger.String("op", op),
			logger.Err(err),
		)
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Order already exists"})
	case errors.Is(err, context.DeadlineExceeded):
		log.LogAttrs(ctx, logger.WarnLevel, "request timeout",
			logger.String("path", c.Request.URL.Path),
			logger.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "Request timed out"})
	default:
		log.LogAttrs(ctx, logger.ErrorLevel, "internal server error",
			logger.String("op", op),
			logger.Err(err),
			logger.String("path", c.Request.URL.Path),
			logger.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal service error"})
	}
}

func (h *OrderHandler) handleBindError(c *gin.Context, err error, op string) {
	h.log.Ctx(c.Request.Context()).LogAttrs(c.Request.Context(), logger.WarnLevel, "malformed request",
		logger.String("op", op),
		logger.Err(err),
		logger.String("client_ip", c.ClientIP()),
	)

	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Malformed request: " + err.Error()})
}

func fieldErrors(err error) []FieldError {
	ves := service.ValidationErrors(err)
	if len(ves) == 0 {
		return nil
	}
	out := make([]FieldError, 0, len(ves))
	for _, ve := range ves {
		out = append(out, FieldError{Field: ve.Field, Reason: ve.Reason})
	}
	return out
}
