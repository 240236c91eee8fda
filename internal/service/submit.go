package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"umkmorder/internal/entity"
	"umkmorder/internal/pricing"
	"umkmorder/pkg/logger"

	"github.com/google/uuid"
)

const (
	SourceHTTP  = "http"
	SourceKafka = "kafka"
	SourceAdmin = "admin"

	orderIDDateLayout = "010206"
)

type sourceKey struct{}

// WithSource tags ctx with the intake channel reported in metrics.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

// SourceFrom returns the channel set by WithSource, or SourceHTTP.
func SourceFrom(ctx context.Context) string {
	if source, ok := ctx.Value(sourceKey{}).(string); ok && source != "" {
		return source
	}
	return SourceHTTP
}

// SubmitOrder turns an intake form submission into a stored order awaiting
// payment.
func (s *OrderService) SubmitOrder(ctx context.Context, sub *entity.Submission) (*entity.Order, error) {
	const op = "service.SubmitOrder"
	log := s.logger.Ctx(ctx)

	if sub == nil {
		return nil, fmt.Errorf("%s: %w", op, entity.NewValidationError("submission", "is required"))
	}

	log.LogAttrs(ctx, logger.InfoLevel, "submit order started",
		logger.String("op", op),
		logger.String("brand_name", sub.BrandName),
		logger.Int("products_count", len(sub.Products)),
	)

	if err := s.validateSubmission(sub); err != nil {
		log.LogAttrs(ctx, logger.WarnLevel, "submission validation failed",
			logger.String("op", op),
			logger.Err(err),
		)
		return nil, fmt.Errorf("%s: validate submission: %w", op, err)
	}

	now := s.now()
	order := s.assembleOrder(sub, now)

	seen := s.writes.Load()
	created, err := s.createWithFreshID(ctx, order, now)
	if err != nil {
		log.LogAttrs(ctx, logger.ErrorLevel, "order submission failed",
			logger.String("op", op),
			logger.Err(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.cachePut(created, seen)
	s.metrics.Submitted(SourceFrom(ctx))

	log.LogAttrs(ctx, logger.InfoLevel, "order submitted",
		logger.String("op", op),
		logger.String("order_id", created.OrderID),
		logger.Int64("total_amount", created.TotalAmount),
		logger.Time("expires_at", *created.ExpiresAt),
	)

	return created, nil
}

func (s *OrderService) validateSubmission(sub *entity.Submission) error {
	if err := s.validateStruct(sub); err != nil {
		return err
	}

	window := s.EndorseMonths()
	var errs []error
	for i, p := range sub.Products {
		if err := window.Validate(p.EndorseMonth); err != nil {
			var ve *entity.ValidationError
			if errors.As(err, &ve) {
				errs = append(errs, entity.NewValidationError(
					fmt.Sprintf("products[%d].endorseMonth", i), ve.Reason,
				))
				continue
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *OrderService) assembleOrder(sub *entity.Submission, now time.Time) *entity.Order {
	products := make([]entity.OrderProduct, 0, len(sub.Products))
	for _, p := range sub.Products {
		products = append(products, entity.OrderProduct{
			ID:              uuid.NewString(),
			Description:     p.Description,
			EndorsementType: p.EndorsementType,
			EndorseMonth:    p.EndorseMonth,
			Price:           s.catalog.PriceFor(p.EndorsementType),
			Photo:           p.Photo,
		})
	}

	expiresAt := s.engine.ExpiryFor(now)
	return &entity.Order{
		ID:           uuid.NewString(),
		CustomerName: sub.CustomerName,
		BrandName:    sub.BrandName,
		Instagram:    sub.Instagram,
		Email:        sub.Email,
		Phone:        sub.Phone,
		Products:     products,
		TotalAmount:  pricing.RecomputeTotal(products),
		Status:       entity.StatusPaymentConfirmation,
		Priority:     entity.PriorityMedium,
		CreatedAt:    now,
		ExpiresAt:    &expiresAt,
	}
}

// createWithFreshID stores order under a generated ID, regenerating it once
// when the first one is already taken.
func (s *OrderService) createWithFreshID(ctx context.Context, order *entity.Order, now time.Time) (*entity.Order, error) {
	const attempts = 2

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		order.OrderID = s.generateOrderID(now)

		var created *entity.Order
		created, err = s.orderRepo.Create(ctx, order)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, entity.ErrConflictingData) {
			return nil, err
		}

		s.logger.Ctx(ctx).LogAttrs(ctx, logger.WarnLevel, "generated order id already taken",
			logger.String("order_id", order.OrderID),
			logger.Int("attempt", attempt),
		)
	}
	return nil, err
}

// generateOrderID builds prefix + MMDDYY + three random digits.
func (s *OrderService) generateOrderID(now time.Time) string {
	return fmt.Sprintf("%s%s%03d", s.idPrefix, now.In(s.location).Format(orderIDDateLayout), rand.IntN(1000))
}

// CreateOrder stores an order assembled by a client. Missing defaults are
// filled in and the total is recomputed from product prices.
func (s *OrderService) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	const op = "service.CreateOrder"
	log := s.logger.Ctx(ctx)

	if order == nil {
		return nil, fmt.Errorf("%s: %w", op, entity.NewValidationError("order", "is required"))
	}

	log.LogAttrs(ctx, logger.InfoLevel, "create order started",
		logger.String("op", op),
		logger.String("order_id", order.OrderID),
		logger.Int("products_count", len(order.Products)),
	)

	if err := s.prepareOrder(order); err != nil {
		log.LogAttrs(ctx, logger.WarnLevel, "order validation failed",
			logger.String("op", op),
			logger.Err(err),
			logger.String("order_id", order.OrderID),
		)
		return nil, fmt.Errorf("%s: validate order: %w", op, err)
	}

	seen := s.writes.Load()
	created, err := s.orderRepo.Create(ctx, order)
	if err != nil {
		log.LogAttrs(ctx, logger.ErrorLevel, "order creation failed",
			logger.String("op", op),
			logger.Err(err),
			logger.String("order_id", order.OrderID),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.cachePut(created, seen)
	s.metrics.Submitted(SourceAdmin)

	log.LogAttrs(ctx, logger.InfoLevel, "order created successfully",
		logger.String("op", op),
		logger.String("order_id", created.OrderID),
	)

	return created, nil
}

func (s *OrderService) prepareOrder(order *entity.Order) error {
	now := s.now()

	if order.Status == "" {
		order.Status = entity.StatusPaymentConfirmation
	}
	if order.Priority == "" {
		order.Priority = entity.PriorityMedium
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Status == entity.StatusPaymentConfirmation && order.ExpiresAt == nil {
		expiresAt := s.engine.ExpiryFor(order.CreatedAt)
		order.ExpiresAt = &expiresAt
	}
	if order.Status == entity.StatusCancelled && order.CancelledAt == nil {
		order.CancelledAt = &now
	}
	for i := range order.Products {
		if order.Products[i].ID == "" {
			order.Products[i].ID = uuid.NewString()
		}
	}
	order.TotalAmount = pricing.RecomputeTotal(order.Products)

	var errs []error
	if err := s.validateStruct(order); err != nil {
		errs = append(errs, err)
	}
	if !order.Status.Valid() {
		errs = append(errs, entity.NewValidationError("status", fmt.Sprintf("unknown status %q", order.Status)))
	}
	if !order.Priority.Valid() {
		errs = append(errs, entity.NewValidationError("priority", fmt.Sprintf("unknown priority %q", order.Priority)))
	}
	if order.ScheduledDate != "" {
		if err := checkScheduledDate(order.ScheduledDate, order.Status); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
