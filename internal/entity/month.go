package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

const yearMonthLayout = "2006-01"

// YearMonth is a calendar month serialized as "YYYY-MM".
type YearMonth struct {
	Year  int
	Month time.Month
}

func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func ParseYearMonth(value string) (YearMonth, error) {
	t, err := time.Parse(yearMonthLayout, value)
	if err != nil {
		return YearMonth{}, NewValidationError("endorseMonth", fmt.Sprintf("%q is not a YYYY-MM month", value))
	}
	return YearMonthOf(t), nil
}

func (m YearMonth) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m YearMonth) AddMonths(n int) YearMonth {
	return YearMonthOf(time.Date(m.Year, m.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC))
}

// Compare returns -1, 0 or 1.
func (m YearMonth) Compare(other YearMonth) int {
	a := m.Year*12 + int(m.Month)
	b := other.Year*12 + int(other.Month)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (m YearMonth) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m YearMonth) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *YearMonth) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("entity.YearMonth.UnmarshalJSON: %w", err)
	}
	if raw == "" {
		*m = YearMonth{}
		return nil
	}
	parsed, err := ParseYearMonth(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
