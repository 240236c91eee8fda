package notify

import (
	"net/url"
	"strings"
)

const whatsAppBaseURL = "https://wa.me/"

// NormalizePhone keeps only digits and rewrites local 08… numbers to the
// 628… international form.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") {
		digits = "62" + digits[1:]
	}
	return digits
}

func WhatsAppLink(phone, message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return whatsAppBaseURL + NormalizePhone(phone) + "?text=" + text
}
