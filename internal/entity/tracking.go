package entity

import "time"

type StepState string

const (
	StepCompleted StepState = "completed"
	StepCurrent   StepState = "current"
	StepPending   StepState = "pending"
	StepCancelled StepState = "cancelled"
)

type TimelineStep struct {
	Status OrderStatus `json:"id"`
	Label  string      `json:"label"`
	State  StepState   `json:"status"`
}

// TrackingView is the unauthenticated customer view of an order. Contact
// details, priority and the internal row ID are left out.
type TrackingView struct {
	OrderID       string           `json:"orderId"`
	CustomerName  string           `json:"customerName"`
	BrandName     string           `json:"brandName"`
	Instagram     string           `json:"instagram"`
	Products      []TrackedProduct `json:"products"`
	TotalAmount   int64            `json:"totalAmount"`
	Status        OrderStatus      `json:"status"`
	StatusLabel   string           `json:"statusLabel"`
	CreatedAt     time.Time        `json:"createdAt"`
	ExpiresAt     *time.Time       `json:"expiresAt,omitempty"`
	ScheduledDate string           `json:"scheduledDate,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	CancelledAt   *time.Time       `json:"cancelledAt,omitempty"`
	Timeline      []TimelineStep   `json:"timeline"`
}

type TrackedProduct struct {
	Description      string    `json:"description"`
	EndorsementType  string    `json:"endorsementType"`
	EndorsementLabel string    `json:"endorsementLabel,omitempty"`
	EndorseMonth     YearMonth `json:"endorseMonth"`
	Price            int64     `json:"price"`
}
