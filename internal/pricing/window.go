package pricing

import (
	"fmt"
	"time"

	"umkmorder/internal/entity"
)

const (
	DefaultCutoffDay    = 14
	DefaultWindowMonths = 12
)

// EarliestEndorseMonth returns the first month that can still be booked on
// today: the next month once today's day reaches cutoffDay, otherwise the
// current month.
func EarliestEndorseMonth(today time.Time, cutoffDay int) entity.YearMonth {
	current := entity.YearMonthOf(today)
	if today.Day() >= cutoffDay {
		return current.AddMonths(1)
	}
	return current
}

// Window is the inclusive range of bookable endorsement months.
type Window struct {
	Earliest entity.YearMonth
	Latest   entity.YearMonth
}

// WindowFor spans months calendar months starting at the earliest
// bookable month.
func WindowFor(today time.Time, cutoffDay, months int) Window {
	if cutoffDay <= 0 {
		cutoffDay = DefaultCutoffDay
	}
	if months <= 0 {
		months = DefaultWindowMonths
	}
	earliest := EarliestEndorseMonth(today, cutoffDay)
	return Window{Earliest: earliest, Latest: earliest.AddMonths(months - 1)}
}

func (w Window) Contains(month entity.YearMonth) bool {
	return month.Compare(w.Earliest) >= 0 && month.Compare(w.Latest) <= 0
}

func (w Window) Validate(month entity.YearMonth) error {
	if month.IsZero() {
		return entity.NewValidationError("endorseMonth", "month is required")
	}
	if !w.Contains(month) {
		return entity.NewValidationError("endorseMonth",
			fmt.Sprintf("%s is outside %s..%s", month, w.Earliest, w.Latest))
	}
	return nil
}

// Months lists every month in the window in order.
func (w Window) Months() []entity.YearMonth {
	var months []entity.YearMonth
	for m := w.Earliest; m.Compare(w.Latest) <= 0; m = m.AddMonths(1) {
		months = append(months, m)
	}
	return months
}

func (w Window) MonthWindow() entity.MonthWindow {
	return entity.MonthWindow{Earliest: w.Earliest, Latest: w.Latest}
}
