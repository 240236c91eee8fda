package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"umkmorder/internal/entity"
	"umkmorder/internal/lifecycle"
	"umkmorder/internal/pricing"
	"umkmorder/pkg/logger"

	"github.com/google/uuid"
)

const scheduledDateLayout = "2006-01-02"

// UpdateOrder applies a staff patch. Status moves go through the lifecycle
// engine; product edits recompute the total.
func (s *OrderService) UpdateOrder(
	ctx context.Context,
	orderID string,
	patch entity.OrderPatch,
) (*entity.Order, error) {
	const op = "service.UpdateOrder"
	log := s.logger.Ctx(ctx)

	if patch.Empty() {
		return nil, fmt.Errorf("%s: %w", op, entity.NewValidationError("patch", "no fields to update"))
	}
	if err := s.validatePatch(patch); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	startTime := time.Now()
	defer s.warnSlow(ctx, op, orderID, startTime)

	var (
		from    entity.OrderStatus
		expired bool
	)
	updated, err := s.orderRepo.Update(ctx, orderID, func(o *entity.Order) error {
		now := s.now()
		from = o.Status
		// The patch applies to what staff would see on load: an unpaid
		// order past its deadline is cancelled first.
		expired = s.engine.Expire(o, now)
		return s.applyPatch(o, patch, now)
	})
	if err != nil {
		level := logger.ErrorLevel
		if errors.Is(err, entity.ErrInvalidData) || errors.Is(err, entity.ErrDataNotFound) {
			level = logger.WarnLevel
		}
		log.LogAttrs(ctx, level, "order update failed",
			logger.String("op", op),
			logger.String("order_id", orderID),
			logger.Err(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(orderID)

	if expired {
		s.metrics.Expired(1)
	}
	if from != updated.Status {
		s.metrics.StatusChanged(string(from), string(updated.Status))
	}

	log.LogAttrs(ctx, logger.InfoLevel, "order updated",
		logger.String("op", op),
		logger.String("order_id", updated.OrderID),
		logger.String("from_status", string(from)),
		logger.String("status", string(updated.Status)),
		logger.Bool("expired_on_update", expired),
	)

	return updated, nil
}

func (s *OrderService) validatePatch(patch entity.OrderPatch) error {
	var errs []error
	if patch.Status != nil && !patch.Status.Valid() {
		errs = append(errs, entity.NewValidationError("status", fmt.Sprintf("unknown status %q", *patch.Status)))
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		errs = append(errs, entity.NewValidationError("priority", fmt.Sprintf("unknown priority %q", *patch.Priority)))
	}
	if patch.ScheduledDate != nil && *patch.ScheduledDate != "" {
		if _, err := time.Parse(scheduledDateLayout, *patch.ScheduledDate); err != nil {
			errs = append(errs, entity.NewValidationError("scheduledDate", "must be a YYYY-MM-DD date"))
		}
	}
	if patch.Notes != nil && len(*patch.Notes) > 2000 {
		errs = append(errs, entity.NewValidationError("notes", "must be at most 2000 long"))
	}
	if patch.Products != nil {
		if len(*patch.Products) == 0 {
			errs = append(errs, entity.NewValidationError("products", "must have at least 1 entries"))
		}
		for i := range *patch.Products {
			for _, ve := range ValidationErrors(s.validateStruct((*patch.Products)[i])) {
				errs = append(errs, entity.NewValidationError(fmt.Sprintf("products[%d].%s", i, ve.Field), ve.Reason))
			}
		}
	}
	return errors.Join(errs...)
}

func (s *OrderService) applyPatch(o *entity.Order, patch entity.OrderPatch, now time.Time) error {
	if patch.Status != nil {
		if err := s.engine.Transition(o, *patch.Status, now); err != nil {
			return err
		}
	}
	if patch.Priority != nil {
		o.Priority = *patch.Priority
	}
	if patch.ScheduledDate != nil {
		if *patch.ScheduledDate != "" {
			if err := checkScheduledDate(*patch.ScheduledDate, o.Status); err != nil {
				return err
			}
		}
		o.ScheduledDate = *patch.ScheduledDate
	}
	if patch.Notes != nil {
		o.Notes = *patch.Notes
	}
	if patch.Products != nil {
		products := make([]entity.OrderProduct, len(*patch.Products))
		copy(products, *patch.Products)
		for i := range products {
			if products[i].ID == "" {
				products[i].ID = uuid.NewString()
			}
			if products[i].Price == 0 {
				products[i].Price = s.catalog.PriceFor(products[i].EndorsementType)
			}
		}
		o.Products = products
		o.TotalAmount = pricing.RecomputeTotal(products)
	}

	o.LastUpdated = &now
	return nil
}

func checkScheduledDate(date string, status entity.OrderStatus) error {
	if _, err := time.Parse(scheduledDateLayout, date); err != nil {
		return entity.NewValidationError("scheduledDate", "must be a YYYY-MM-DD date")
	}
	if !lifecycle.CanSchedule(status) {
		return entity.NewValidationError("scheduledDate",
			fmt.Sprintf("cannot be set while the order is %s", status))
	}
	return nil
}

// SweepExpired cancels every unpaid order past its deadline and persists the
// result. Running it twice changes nothing the second time.
func (s *OrderService) SweepExpired(ctx context.Context) (int, error) {
	const op = "service.SweepExpired"

	now := s.now()
	var expired []string
	err := s.orderRepo.UpdateAll(ctx, func(orders []*entity.Order) (bool, error) {
		expired = expired[:0]
		for _, o := range orders {
			if s.engine.Expire(o, now) {
				expired = append(expired, o.OrderID)
			}
		}
		return len(expired) > 0, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if len(expired) == 0 {
		return 0, nil
	}

	s.invalidate(expired...)
	s.metrics.Expired(len(expired))

	s.logger.Ctx(ctx).LogAttrs(ctx, logger.InfoLevel, "expired unpaid orders cancelled",
		logger.String("op", op),
		logger.Int("count", len(expired)),
		logger.Any("order_ids", expired),
	)

	return len(expired), nil
}
