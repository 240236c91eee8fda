package lifecycle

import (
	"fmt"
	"time"

	"umkmorder/internal/entity"
)

const (
	DefaultPaymentWindow = 48 * time.Hour

	AutoCancelNote = "Order automatically cancelled due to non-payment within 48 hours"
)

type Policy int

const (
	// PolicyPermissive accepts any known status at any time.
	PolicyPermissive Policy = iota
	// PolicyForwardOnly allows moving forward along ForwardStatuses or
	// cancelling a non-terminal order.
	PolicyForwardOnly
)

type Engine struct {
	policy        Policy
	paymentWindow time.Duration
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		policy:        PolicyPermissive,
		paymentWindow: DefaultPaymentWindow,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Policy() Policy {
	return e.policy
}

func (e *Engine) PaymentWindow() time.Duration {
	return e.paymentWindow
}

// Transition moves the order to status to. Products and totals are not
// touched.
func (e *Engine) Transition(order *entity.Order, to entity.OrderStatus, now time.Time) error {
	const op = "lifecycle.Engine.Transition"

	if !to.Valid() {
		return fmt.Errorf("%s: %w", op, entity.NewValidationError("status", fmt.Sprintf("unknown status %q", to)))
	}

	from := order.Status
	if from == to {
		return nil
	}

	if e.policy == PolicyForwardOnly && !forwardAllowed(from, to) {
		return fmt.Errorf("%s: %s -> %s: %w", op, from, to, entity.ErrInvalidTransition)
	}

	order.Status = to

	switch {
	case to == entity.StatusCancelled:
		cancelledAt := now
		order.CancelledAt = &cancelledAt
	case from == entity.StatusCancelled:
		order.CancelledAt = nil
	}

	return nil
}

func forwardAllowed(from, to entity.OrderStatus) bool {
	if from.Terminal() {
		return false
	}
	if to == entity.StatusCancelled {
		return true
	}
	fromIdx, toIdx := from.Index(), to.Index()
	if fromIdx < 0 {
		// Legacy documents with an unknown status may only be repaired
		// into the canonical path.
		return toIdx >= 0
	}
	return toIdx > fromIdx
}

func (e *Engine) ExpiryFor(createdAt time.Time) time.Time {
	return createdAt.Add(e.paymentWindow)
}

func (e *Engine) IsExpired(order *entity.Order, now time.Time) bool {
	return order.Status == entity.StatusPaymentConfirmation &&
		order.ExpiresAt != nil &&
		now.After(*order.ExpiresAt)
}

// Expire cancels an unpaid order whose payment deadline has passed and
// reports whether the order changed. Calling it again is a no-op.
func (e *Engine) Expire(order *entity.Order, now time.Time) bool {
	if !e.IsExpired(order, now) {
		return false
	}
	cancelledAt := now
	order.Status = entity.StatusCancelled
	order.CancelledAt = &cancelledAt
	order.Notes = AutoCancelNote
	return true
}

// CanSchedule reports whether a shoot date may be attached to an order in
// the given status.
func CanSchedule(status entity.OrderStatus) bool {
	return status.Index() >= entity.StatusScheduledShoot.Index()
}
