package notify_test

import (
	"errors"
	"testing"
	"time"

	"umkmorder/internal/entity"
	"umkmorder/internal/notify"

	"github.com/stretchr/testify/require"
)

type renderTestInput struct {
	key  string
	vars map[string]string
}

type renderTestExpected struct {
	message string
	err     error
}

func TestFormatter_Render(t *testing.T) {
	t.Parallel()

	formatter := notify.NewFormatter(map[string]string{
		"short":                   "{orderId} is {status} ({unknown})",
		notify.TemplateOrderUpdate: "",
	})

	testCases := []struct {
		desc     string
		input    renderTestInput
		expected renderTestExpected
	}{
		{
			desc: "CustomTemplate",
			input: renderTestInput{
				key:  "short",
				vars: map[string]string{"orderId": "SMB101626001", "status": "POSTED"},
			},
			expected: renderTestExpected{message: "SMB101626001 is POSTED ({unknown})"},
		},
		{
			desc: "EmptyOverrideKeepsDefault",
			input: renderTestInput{
				key: notify.TemplateOrderUpdate,
				vars: map[string]string{
					"customerName": "Sari",
					"orderId":      "SMB101626001",
					"status":       "ITEM RECEIVED",
					"notes":        "",
				},
			},
			expected: renderTestExpected{
				message: "Hi Sari! \n\nYour order SMB101626001 status has been updated to: ITEM RECEIVED\n\n\n\nThank you for choosing our services!",
			},
		},
		{
			desc: "RepeatedPlaceholder",
			input: renderTestInput{
				key:  "short",
				vars: map[string]string{"orderId": "{status}", "status": "x"},
			},
			expected: renderTestExpected{message: "{status} is x ({unknown})"},
		},
		{
			desc:     "UnknownTemplate",
			input:    renderTestInput{key: "birthday"},
			expected: renderTestExpected{err: entity.ErrDataNotFound},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			message, err := formatter.Render(tc.input.key, tc.input.vars)
			if tc.expected.err != nil {
				require.True(t, errors.Is(err, tc.expected.err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected.message, message)
		})
	}
}

func TestFormatter_Keys(t *testing.T) {
	t.Parallel()

	keys := notify.NewFormatter(nil).Keys()
	require.Equal(t, []string{
		notify.TemplateOrderCancellation,
		notify.TemplateOrderUpdate,
		notify.TemplatePaymentReminder,
		notify.TemplateUMKMConfirmation,
	}, keys)
}

func TestOrderVariables(t *testing.T) {
	t.Parallel()

	jakarta := time.FixedZone("WIB", 7*60*60)
	order := &entity.Order{
		OrderID:       "SMB101626042",
		CustomerName:  "Budi",
		BrandName:     "Kopi Budi",
		Instagram:     "@kopibudi",
		Status:        entity.StatusScheduledShoot,
		TotalAmount:   1500000,
		CreatedAt:     time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC),
		ScheduledDate: "2026-11-03",
		Notes:         "Bring two cups",
	}

	vars := notify.OrderVariables(order, jakarta)

	require.Equal(t, "SCHEDULED SHOOT", vars["status"])
	require.Equal(t, "Scheduled Date: 2026-11-03", vars["scheduledDate"])
	require.Equal(t, "Notes: Bring two cups", vars["notes"])
	require.Equal(t, "1.500.000", vars["totalAmount"])
	require.Equal(t, "17/10/2026", vars["orderDate"])

	order.ScheduledDate, order.Notes = "", ""
	vars = notify.OrderVariables(order, nil)
	require.Empty(t, vars["scheduledDate"])
	require.Empty(t, vars["notes"])
	require.Equal(t, "16/10/2026", vars["orderDate"])

	message, err := notify.NewFormatter(nil).Render(notify.TemplatePaymentReminder, vars)
	require.NoError(t, err)
	require.Contains(t, message, "- Total Amount: Rp 1.500.000\n- Order Date: 16/10/2026")
}

func TestStatusText(t *testing.T) {
	t.Parallel()

	require.Equal(t, "PAYMENT CONFIRMATION", notify.StatusText(entity.StatusPaymentConfirmation))
	require.Equal(t, "POST SCHEDULED", notify.StatusText(entity.StatusPostScheduled))
	require.Equal(t, "CANCELLED", notify.StatusText(entity.StatusCancelled))
}
