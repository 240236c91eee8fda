package pricing_test

import (
	"errors"
	"testing"
	"time"

	"umkmorder/internal/entity"
	"umkmorder/internal/pricing"

	"github.com/stretchr/testify/require"
)

func ym(year int, month time.Month) entity.YearMonth {
	return entity.YearMonth{Year: year, Month: month}
}

func TestEarliestEndorseMonth(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc     string
		input    time.Time
		expected entity.YearMonth
	}{
		{desc: "BeforeCutoff", input: time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC), expected: ym(2026, time.March)},
		{desc: "DayBeforeCutoff", input: time.Date(2026, 3, 13, 23, 59, 0, 0, time.UTC), expected: ym(2026, time.March)},
		{desc: "OnCutoff", input: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), expected: ym(2026, time.April)},
		{desc: "AfterCutoff", input: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), expected: ym(2026, time.April)},
		{desc: "YearRollover", input: time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC), expected: ym(2027, time.January)},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.expected, pricing.EarliestEndorseMonth(tc.input, pricing.DefaultCutoffDay))
		})
	}
}

func TestWindow_Validate(t *testing.T) {
	t.Parallel()

	on20th := pricing.WindowFor(time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), 14, 12)
	on5th := pricing.WindowFor(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), 14, 12)

	testCases := []struct {
		desc     string
		window   pricing.Window
		input    entity.YearMonth
		expected bool
	}{
		{desc: "CurrentMonthAfterCutoff", window: on20th, input: ym(2026, time.March), expected: false},
		{desc: "NextMonthAfterCutoff", window: on20th, input: ym(2026, time.April), expected: true},
		{desc: "CurrentMonthBeforeCutoff", window: on5th, input: ym(2026, time.March), expected: true},
		{desc: "LastMonth", window: on5th, input: ym(2027, time.February), expected: true},
		{desc: "PastLastMonth", window: on5th, input: ym(2027, time.March), expected: false},
		{desc: "Zero", window: on5th, input: entity.YearMonth{}, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			err := tc.window.Validate(tc.input)
			if tc.expected {
				require.NoError(t, err)
				return
			}

			var ve *entity.ValidationError
			require.True(t, errors.As(err, &ve))
			require.Equal(t, "endorseMonth", ve.Field)
			require.ErrorIs(t, err, entity.ErrInvalidData)
		})
	}
}

func TestWindow_Months(t *testing.T) {
	t.Parallel()

	w := pricing.WindowFor(time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), 14, 12)
	months := w.Months()

	require.Len(t, months, 12)
	require.Equal(t, ym(2026, time.November), months[0])
	require.Equal(t, ym(2027, time.October), months[11])
	require.Equal(t, w.Latest, months[11])
}
