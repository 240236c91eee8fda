package service

import (
	"context"
	"fmt"

	"umkmorder/internal/entity"
	"umkmorder/internal/notify"
	"umkmorder/pkg/logger"
)

// Notification renders a WhatsApp message for an order. An empty template
// key means the generic order update.
func (s *OrderService) Notification(
	ctx context.Context,
	orderID string,
	template string,
) (*entity.Notification, error) {
	const op = "service.Notification"

	if template == "" {
		template = notify.TemplateOrderUpdate
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	message, err := s.formatter.Render(template, notify.OrderVariables(order, s.location))
	if err != nil {
		return nil, fmt.Errorf("%s: template %q: %w", op, template, err)
	}

	phone := order.Phone
	if notify.NormalizePhone(phone) == "" {
		phone = s.fallbackPhone
	}

	n := &entity.Notification{
		OrderID:  order.OrderID,
		Template: template,
		Message:  message,
		Phone:    notify.NormalizePhone(phone),
	}
	if n.Phone != "" {
		n.Link = notify.WhatsAppLink(n.Phone, message)
	}

	s.metrics.NotificationRendered(template)
	s.logger.Ctx(ctx).LogAttrs(ctx, logger.DebugLevel, "notification rendered",
		logger.String("op", op),
		logger.String("order_id", order.OrderID),
		logger.String("template", template),
	)

	return n, nil
}
