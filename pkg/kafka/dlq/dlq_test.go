package dlq_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"umkmorder/pkg/kafka/dlq"
	"umkmorder/pkg/logger"
	mock_metric "umkmorder/pkg/metric/mock"

	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type processTestInput struct {
	failures  int
	err       error
	writerErr error
}

type processTestExpected struct {
	calls      int
	dead       bool
	retryCount int
	permanent  bool
	err        bool
}

func TestProcessWithRetry(t *testing.T) {
	t.Parallel()

	transient := errors.New("store unavailable")

	testCases := []struct {
		desc     string
		input    processTestInput
		expected processTestExpected
	}{
		{
			desc:     "FirstAttemptSucceeds",
			input:    processTestInput{failures: 0, err: transient},
			expected: processTestExpected{calls: 1},
		},
		{
			desc:     "SucceedsAfterRetries",
			input:    processTestInput{failures: 2, err: transient},
			expected: processTestExpected{calls: 3},
		},
		{
			desc:     "ExhaustsAttempts",
			input:    processTestInput{failures: 100, err: transient},
			expected: processTestExpected{calls: 3, dead: true, retryCount: 3},
		},
		{
			desc:     "PermanentErrorSkipsRetries",
			input:    processTestInput{failures: 100, err: dlq.Permanent(errors.New("invalid customerName"))},
			expected: processTestExpected{calls: 1, dead: true, retryCount: 1, permanent: true},
		},
		{
			desc:     "DeadLetterWriteFails",
			input:    processTestInput{failures: 100, err: transient, writerErr: errors.New("broker down")},
			expected: processTestExpected{calls: 3, err: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			metrics := mock_metric.NewMockDLQ(ctrl)
			metrics.EXPECT().DLSent("submissions-dlq", "submissions", gomock.Any()).AnyTimes()
			metrics.EXPECT().DLError("submissions-dlq", gomock.Any()).AnyTimes()

			writer := &fakeWriter{err: tc.input.writerErr}
			q, err := dlq.NewWithWriter(writer, "submissions-dlq", logger.NewNop(), metrics,
				dlq.MaxAttemptsCount(3),
				dlq.BaseRetryDelay(time.Millisecond),
				dlq.MaxRetryDelay(2*time.Millisecond),
			)
			require.NoError(t, err)

			calls := 0
			handler := func(context.Context, kafka.Message) error {
				calls++
				if calls <= tc.input.failures {
					return tc.input.err
				}
				return nil
			}

			msg := kafka.Message{Topic: "submissions", Offset: 42, Key: []byte("k"), Value: []byte(`{"customerName":""}`)}
			err = dlq.ProcessWithRetry(context.Background(), msg, handler, q, logger.NewNop())

			require.Equal(t, tc.expected.calls, calls)
			if tc.expected.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			if !tc.expected.dead {
				require.Empty(t, writer.messages)
				return
			}

			require.Len(t, writer.messages, 1)
			var envelope dlq.Envelope
			require.NoError(t, json.Unmarshal(writer.messages[0].Value, &envelope))
			require.Equal(t, tc.expected.retryCount, envelope.Metadata.RetryCount)
			require.Equal(t, tc.expected.permanent, envelope.Metadata.Permanent)
			require.Equal(t, "submissions", envelope.Metadata.OriginalTopic)
			require.Equal(t, int64(42), envelope.Metadata.Offset)
			require.Equal(t, string(msg.Value), envelope.Payload)
			require.Equal(t, []byte("k"), writer.messages[0].Key)
		})
	}
}

func TestPermanent(t *testing.T) {
	t.Parallel()

	base := errors.New("bad payload")
	wrapped := dlq.Permanent(base)

	require.True(t, dlq.IsPermanent(wrapped))
	require.ErrorIs(t, wrapped, base)
	require.False(t, dlq.IsPermanent(base))
	require.NoError(t, dlq.Permanent(nil))
}
