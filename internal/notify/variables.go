package notify

import (
	"strings"
	"time"

	"umkmorder/internal/entity"
	"umkmorder/internal/pricing"
)

const orderDateLayout = "02/01/2006"

// OrderVariables builds the placeholder values for an order. Optional
// sections render as empty strings when the order has no value for them.
func OrderVariables(order *entity.Order, loc *time.Location) map[string]string {
	if loc == nil {
		loc = time.UTC
	}

	vars := map[string]string{
		"customerName":  order.CustomerName,
		"brandName":     order.BrandName,
		"orderId":       order.OrderID,
		"instagram":     order.Instagram,
		"status":        StatusText(order.Status),
		"scheduledDate": "",
		"notes":         "",
		"totalAmount":   pricing.FormatAmount(order.TotalAmount),
		"orderDate":     order.CreatedAt.In(loc).Format(orderDateLayout),
	}
	if order.ScheduledDate != "" {
		vars["scheduledDate"] = "Scheduled Date: " + order.ScheduledDate
	}
	if order.Notes != "" {
		vars["notes"] = "Notes: " + order.Notes
	}
	return vars
}

// StatusText upper-cases a status and turns underscores into spaces.
func StatusText(status entity.OrderStatus) string {
	return strings.ToUpper(strings.ReplaceAll(string(status), "_", " "))
}
