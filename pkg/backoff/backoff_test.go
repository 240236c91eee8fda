package backoff_test

import (
	"context"
	"testing"
	"time"

	"umkmorder/pkg/backoff"

	"github.com/stretchr/testify/require"
)

func TestPolicy_Validate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc     string
		input    backoff.Policy
		expected string
	}{
		{desc: "Valid", input: backoff.Policy{Attempts: 3, Base: time.Millisecond, Max: time.Second}},
		{desc: "NoAttempts", input: backoff.Policy{Base: time.Millisecond, Max: time.Second}, expected: "attempts"},
		{desc: "ZeroBase", input: backoff.Policy{Attempts: 1, Max: time.Second}, expected: "base retry delay must be > 0"},
		{desc: "BaseAboveMax", input: backoff.Policy{Attempts: 1, Base: time.Second, Max: time.Millisecond}, expected: "cannot exceed"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			err := tc.input.Validate()
			if tc.expected == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.expected)
		})
	}
}

func TestPolicy_Ceiling(t *testing.T) {
	t.Parallel()

	p := backoff.Policy{Attempts: 10, Base: 100 * time.Millisecond, Max: time.Second}

	require.Equal(t, 100*time.Millisecond, p.Ceiling(0))
	require.Equal(t, 200*time.Millisecond, p.Ceiling(1))
	require.Equal(t, 800*time.Millisecond, p.Ceiling(3))
	require.Equal(t, time.Second, p.Ceiling(4))
	require.Equal(t, time.Second, p.Ceiling(60))

	for retry := range 8 {
		d := p.Delay(retry)
		require.GreaterOrEqual(t, d, time.Duration(0))
		require.Less(t, d, p.Ceiling(retry))
	}
}

func TestSleep(t *testing.T) {
	t.Parallel()

	require.NoError(t, backoff.Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, backoff.Sleep(ctx, time.Hour), context.Canceled)
}
