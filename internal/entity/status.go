package entity

import (
	"fmt"
	"strings"
)

type OrderStatus string

const (
	StatusPaymentConfirmation OrderStatus = "payment_confirmation"
	StatusPaymentConfirmed    OrderStatus = "payment_confirmed"
	StatusItemReceived        OrderStatus = "item_received"
	StatusScheduledShoot      OrderStatus = "scheduled_shoot"
	StatusFinalEditing        OrderStatus = "final_editing"
	StatusPostScheduled       OrderStatus = "post_scheduled"
	StatusPosted              OrderStatus = "posted"
	StatusCancelled           OrderStatus = "cancelled"
)

// ForwardStatuses lists the non-cancelled states in canonical order.
var ForwardStatuses = []OrderStatus{
	StatusPaymentConfirmation,
	StatusPaymentConfirmed,
	StatusItemReceived,
	StatusScheduledShoot,
	StatusFinalEditing,
	StatusPostScheduled,
	StatusPosted,
}

var statusLabels = map[OrderStatus]string{
	StatusPaymentConfirmation: "Payment Confirmation",
	StatusPaymentConfirmed:    "Payment Confirmed",
	StatusItemReceived:        "Item Received",
	StatusScheduledShoot:      "Scheduled for Shoot",
	StatusFinalEditing:        "Final Editing",
	StatusPostScheduled:       "Post Scheduled",
	StatusPosted:              "Posted",
	StatusCancelled:           "Cancelled",
}

func ParseOrderStatus(value string) (OrderStatus, error) {
	s := OrderStatus(strings.TrimSpace(value))
	if !s.Valid() {
		return "", NewValidationError("status", fmt.Sprintf("unknown status %q", value))
	}
	return s, nil
}

func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Index returns the position of s in ForwardStatuses, or -1 for cancelled
// and unknown values.
func (s OrderStatus) Index() int {
	for i, fs := range ForwardStatuses {
		if fs == s {
			return i
		}
	}
	return -1
}

func (s OrderStatus) Terminal() bool {
	return s == StatusPosted || s == StatusCancelled
}

func (s OrderStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func ParsePriority(value string) (Priority, error) {
	p := Priority(strings.TrimSpace(value))
	if !p.Valid() {
		return "", NewValidationError("priority", fmt.Sprintf("unknown priority %q", value))
	}
	return p, nil
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}
