package service

import (
	"context"
	"fmt"

	"umkmorder/internal/entity"
	"umkmorder/internal/lifecycle"
)

// Track returns the customer-facing view of an order. The expiry check runs
// first, so an unpaid order past its deadline is reported as cancelled.
func (s *OrderService) Track(ctx context.Context, orderID string) (*entity.TrackingView, error) {
	const op = "service.Track"

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.trackingView(order), nil
}

func (s *OrderService) trackingView(o *entity.Order) *entity.TrackingView {
	products := make([]entity.TrackedProduct, 0, len(o.Products))
	for _, p := range o.Products {
		products = append(products, entity.TrackedProduct{
			Description:      p.Description,
			EndorsementType:  p.EndorsementType,
			EndorsementLabel: s.catalog.Label(p.EndorsementType),
			EndorseMonth:     p.EndorseMonth,
			Price:            p.Price,
		})
	}

	view := &entity.TrackingView{
		OrderID:       o.OrderID,
		CustomerName:  o.CustomerName,
		BrandName:     o.BrandName,
		Instagram:     o.Instagram,
		Products:      products,
		TotalAmount:   o.TotalAmount,
		Status:        o.Status,
		StatusLabel:   o.Status.Label(),
		CreatedAt:     o.CreatedAt,
		ScheduledDate: o.ScheduledDate,
		Notes:         o.Notes,
		CancelledAt:   o.CancelledAt,
		Timeline:      lifecycle.Timeline(o.Status),
	}
	if o.Status == entity.StatusPaymentConfirmation {
		view.ExpiresAt = o.ExpiresAt
	}
	return view
}
