package entity

import "strings"

const filterAll = "all"

// OrderFilter mirrors the admin order list controls. Empty or "all" values
// do not constrain the result.
type OrderFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status"`
	Priority string `form:"priority"`
	Limit    int    `form:"limit"    validate:"gte=0,lte=1000"`
	Offset   int    `form:"offset"   validate:"gte=0"`
}

func (f OrderFilter) Match(o *Order) bool {
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(o.CustomerName), term) &&
			!strings.Contains(strings.ToLower(o.BrandName), term) &&
			!strings.Contains(strings.ToLower(o.OrderID), term) &&
			!strings.Contains(strings.ToLower(o.Instagram), term) {
			return false
		}
	}
	if f.Status != "" && f.Status != filterAll && string(o.Status) != f.Status {
		return false
	}
	if f.Priority != "" && f.Priority != filterAll && string(o.Priority) != f.Priority {
		return false
	}
	return true
}

// Apply filters orders and then applies Offset/Limit. A zero Limit returns
// everything after Offset.
func (f OrderFilter) Apply(orders []*Order) []*Order {
	matched := make([]*Order, 0, len(orders))
	for _, o := range orders {
		if f.Match(o) {
			matched = append(matched, o)
		}
	}

	if f.Offset >= len(matched) {
		return []*Order{}
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched
}

// OrderPatch carries the staff-editable fields. Nil fields are left alone.
type OrderPatch struct {
	Status        *OrderStatus    `json:"status,omitempty"`
	Priority      *Priority       `json:"priority,omitempty"`
	ScheduledDate *string         `json:"scheduledDate,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	Products      *[]OrderProduct `json:"products,omitempty"`
}

func (p OrderPatch) Empty() bool {
	return p.Status == nil && p.Priority == nil && p.ScheduledDate == nil &&
		p.Notes == nil && p.Products == nil
}

type OrderStats struct {
	Total            int                 `json:"total"`
	ByStatus         map[OrderStatus]int `json:"byStatus"`
	ByPriority       map[Priority]int    `json:"byPriority"`
	AwaitingPayment  int                 `json:"awaitingPayment"`
	InProgress       int                 `json:"inProgress"`
	Posted           int                 `json:"posted"`
	Cancelled        int                 `json:"cancelled"`
	ConfirmedRevenue int64               `json:"confirmedRevenue"`
}

// Notification is a rendered staff update ready to hand to WhatsApp.
type Notification struct {
	OrderID  string `json:"orderId"`
	Template string `json:"template"`
	Message  string `json:"message"`
	Phone    string `json:"phone,omitempty"`
	Link     string `json:"link,omitempty"`
}
