package notify

const (
	TemplateUMKMConfirmation  = "umkmConfirmation"
	TemplateOrderUpdate       = "orderUpdate"
	TemplatePaymentReminder   = "paymentReminder"
	TemplateOrderCancellation = "orderCancellation"
)

// DefaultTemplates returns the stock WhatsApp messages. Configured templates
// with the same key replace them.
func DefaultTemplates() map[string]string {
	return map[string]string{
		TemplateUMKMConfirmation: "Hi {customerName}! \n\n" +
			"Update on your UMKM Partnership order {orderId}:\n\n" +
			"Current Status: {status}\n" +
			"{scheduledDate}\n" +
			"{notes}\n\n" +
			"We'll keep you updated on the progress. Thank you for your partnership!",
		TemplateOrderUpdate: "Hi {customerName}! \n\n" +
			"Your order {orderId} status has been updated to: {status}\n\n" +
			"{notes}\n\n" +
			"Thank you for choosing our services!",
		TemplatePaymentReminder: "Hi {customerName}! \n\n" +
			"This is a friendly reminder that your order {orderId} is awaiting payment confirmation.\n\n" +
			"Order Details:\n" +
			"- Total Amount: Rp {totalAmount}\n" +
			"- Order Date: {orderDate}\n\n" +
			"Please complete your payment and send us the confirmation. " +
			"If you have any questions, feel free to contact us.\n\n" +
			"Thank you!",
		TemplateOrderCancellation: "Hi {customerName}! \n\n" +
			"We regret to inform you that your order {orderId} has been automatically cancelled " +
			"due to non-payment within 48 hours.\n\n" +
			"If you still wish to proceed with this order, please place a new order through our website.\n\n" +
			"Thank you for your understanding.",
	}
}
