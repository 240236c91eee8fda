package httpt

import "umkmorder/internal/entity"

type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type OrderListResponse struct {
	Orders []*entity.Order `json:"orders"`
	Count  int             `json:"count"`
}

type EndorseMonthsResponse struct {
	Earliest entity.YearMonth   `json:"earliest"`
	Latest   entity.YearMonth   `json:"latest"`
	Months   []entity.YearMonth `json:"months"`
}

type SweepResponse struct {
	Cancelled int `json:"cancelled"`
}
