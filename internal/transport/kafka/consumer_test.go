package kafkat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"umkmorder/internal/entity"
	"umkmorder/internal/service"
	"umkmorder/pkg/kafka/dlq"
	"umkmorder/pkg/logger"
	mock_metric "umkmorder/pkg/metric/mock"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	msgs chan kafka.Message
}

func newFakeReader() *fakeReader {
	return &fakeReader{msgs: make(chan kafka.Message, 10)}
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) Close() error { return nil }

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func (w *fakeWriter) envelopes(t *testing.T) []dlq.Envelope {
	t.Helper()

	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]dlq.Envelope, 0, len(w.msgs))
	for _, m := range w.msgs {
		var env dlq.Envelope
		require.NoError(t, json.Unmarshal(m.Value, &env))
		out = append(out, env)
	}
	return out
}

type fakeSubmitter struct {
	mu      sync.Mutex
	calls   int
	sources []string
	err     error
}

func (s *fakeSubmitter) SubmitOrder(ctx context.Context, sub *entity.Submission) (*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.sources = append(s.sources, service.SourceFrom(ctx))
	if s.err != nil {
		return nil, s.err
	}
	return &entity.Order{OrderID: "SMB101626001", CustomerName: sub.CustomerName}, nil
}

func (s *fakeSubmitter) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestDLQ(t *testing.T, ctrl *gomock.Controller, w *fakeWriter) *dlq.DLQ {
	t.Helper()

	metrics := mock_metric.NewMockDLQ(ctrl)
	metrics.EXPECT().DLSent(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	metrics.EXPECT().DLError(gomock.Any(), gomock.Any()).AnyTimes()
	metrics.EXPECT().DLRetryCount(gomock.Any(), gomock.Any()).AnyTimes()

	d, err := dlq.NewWithWriter(w, "umkm-submissions-dlq", logger.NewNop(), metrics,
		dlq.MaxAttemptsCount(3),
		dlq.BaseRetryDelay(time.Millisecond),
		dlq.MaxRetryDelay(2*time.Millisecond),
	)
	require.NoError(t, err)
	return d
}

func fakeSubmissionPayload(t *testing.T) []byte {
	t.Helper()

	raw, err := json.Marshal(entity.Submission{
		CustomerName: gofakeit.Name(),
		BrandName:    gofakeit.Company(),
		Instagram:    "@" + gofakeit.Username(),
		Products: []entity.SubmissionProduct{{
			Description:     gofakeit.ProductDescription(),
			EndorsementType: "basic",
			EndorseMonth:    entity.YearMonth{Year: 2026, Month: time.November},
		}},
	})
	require.NoError(t, err)
	return raw
}

type consumerTestExpected struct {
	calls     int
	dead      int
	permanent bool
	retries   int
}

func TestSubmissionConsumer_ProcessMessage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc     string
		payload  func(t *testing.T) []byte
		svcErr   error
		metrics  func(m *mock_metric.MockKafka)
		expected consumerTestExpected
	}{
		{
			desc:    "Success",
			payload: fakeSubmissionPayload,
			metrics: func(m *mock_metric.MockKafka) {
				m.EXPECT().MessageProcessed("umkm-submissions", 0).Times(1)
			},
			expected: consumerTestExpected{calls: 1},
		},
		{
			desc:    "MalformedJSON",
			payload: func(*testing.T) []byte { return []byte("{not json") },
			metrics: func(m *mock_metric.MockKafka) {
				m.EXPECT().MessageFailed("umkm-submissions", 0, "dead_lettered").Times(1)
			},
			expected: consumerTestExpected{dead: 1, permanent: true, retries: 1},
		},
		{
			desc:    "ValidationFailureNotRetried",
			payload: fakeSubmissionPayload,
			svcErr:  entity.NewValidationError("brandName", "is required"),
			metrics: func(m *mock_metric.MockKafka) {
				m.EXPECT().MessageFailed("umkm-submissions", 0, "dead_lettered").Times(1)
			},
			expected: consumerTestExpected{calls: 1, dead: 1, permanent: true, retries: 1},
		},
		{
			desc:    "TransientFailureRetried",
			payload: fakeSubmissionPayload,
			svcErr:  errors.New("store unavailable"),
			metrics: func(m *mock_metric.MockKafka) {
				m.EXPECT().MessageFailed("umkm-submissions", 0, "dead_lettered").Times(1)
			},
			expected: consumerTestExpected{calls: 3, dead: 1, retries: 3},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			kafkaMetrics := mock_metric.NewMockKafka(ctrl)
			tc.metrics(kafkaMetrics)

			writer := &fakeWriter{}
			svc := &fakeSubmitter{err: tc.svcErr}
			consumer := NewSubmissionConsumer(newFakeReader(), newTestDLQ(t, ctrl, writer), svc, kafkaMetrics, logger.NewNop())

			consumer.processMessage(context.Background(), kafka.Message{
				Topic:  "umkm-submissions",
				Offset: 42,
				Value:  tc.payload(t),
			})

			require.Equal(t, tc.expected.calls, svc.Calls())
			for _, source := range svc.sources {
				require.Equal(t, service.SourceKafka, source)
			}

			envelopes := writer.envelopes(t)
			require.Len(t, envelopes, tc.expected.dead)
			if tc.expected.dead > 0 {
				require.Equal(t, tc.expected.permanent, envelopes[0].Metadata.Permanent)
				require.Equal(t, tc.expected.retries, envelopes[0].Metadata.RetryCount)
				require.Equal(t, int64(42), envelopes[0].Metadata.Offset)
				require.Equal(t, "umkm-submissions", envelopes[0].Metadata.OriginalTopic)
			}
		})
	}
}

func TestSubmissionConsumer_Start(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	kafkaMetrics := mock_metric.NewMockKafka(ctrl)
	kafkaMetrics.EXPECT().MessageProcessed(gomock.Any(), gomock.Any()).Times(2)

	reader := newFakeReader()
	svc := &fakeSubmitter{}
	consumer := NewSubmissionConsumer(reader, newTestDLQ(t, ctrl, &fakeWriter{}), svc, kafkaMetrics, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Start(ctx) }()

	reader.msgs <- kafka.Message{Topic: "umkm-submissions", Value: fakeSubmissionPayload(t)}
	reader.msgs <- kafka.Message{Topic: "umkm-submissions", Value: fakeSubmissionPayload(t)}

	require.Eventually(t, func() bool { return svc.Calls() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}

func deadLetter(t *testing.T, payload []byte, retryCount int, permanent bool) kafka.Message {
	t.Helper()

	raw, err := json.Marshal(dlq.Envelope{
		Metadata: dlq.Metadata{
			OriginalTopic: "umkm-submissions",
			Offset:        7,
			RetryCount:    retryCount,
			Permanent:     permanent,
			Error:         "store unavailable",
		},
		Payload: string(payload),
	})
	require.NoError(t, err)
	return kafka.Message{Topic: "umkm-submissions-dlq", Offset: 3, Value: raw}
}

type dlqProcessorTestExpected struct {
	calls      int
	resent     int
	retryCount int
}

func TestDLQProcessor_ProcessMessage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc       string
		retryCount int
		permanent  bool
		svcErr     error
		raw        []byte
		expected   dlqProcessorTestExpected
	}{
		{desc: "Recovered", retryCount: 1, expected: dlqProcessorTestExpected{calls: 1}},
		{desc: "StillFailing", retryCount: 1, svcErr: errors.New("store unavailable"), expected: dlqProcessorTestExpected{calls: 1, resent: 1, retryCount: 2}},
		{desc: "PermanentSkipped", retryCount: 1, permanent: true, expected: dlqProcessorTestExpected{}},
		{desc: "RetryLimitReached", retryCount: 5, expected: dlqProcessorTestExpected{}},
		{desc: "CorruptEnvelope", raw: []byte("garbage"), expected: dlqProcessorTestExpected{}},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			writer := &fakeWriter{}
			svc := &fakeSubmitter{err: tc.svcErr}
			processor := NewDLQProcessor(newFakeReader(), newTestDLQ(t, ctrl, writer), svc, 5, time.Millisecond, logger.NewNop())

			payload := fakeSubmissionPayload(t)
			msg := deadLetter(t, payload, tc.retryCount, tc.permanent)
			if tc.raw != nil {
				msg.Value = tc.raw
			}

			processor.processMessage(context.Background(), msg)

			require.Equal(t, tc.expected.calls, svc.Calls())
			envelopes := writer.envelopes(t)
			require.Len(t, envelopes, tc.expected.resent)
			if tc.expected.resent > 0 {
				require.Equal(t, tc.expected.retryCount, envelopes[0].Metadata.RetryCount)
				require.Equal(t, string(payload), envelopes[0].Payload)
				require.Equal(t, int64(7), envelopes[0].Metadata.Offset)
			}
		})
	}
}

type statsReader struct {
	*fakeReader
	lag int64
}

func (r *statsReader) Stats() kafka.ReaderStats { return kafka.ReaderStats{Lag: r.lag} }

func TestSubmissionConsumer_ReportsLag(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	kafkaMetrics := mock_metric.NewMockKafka(ctrl)
	kafkaMetrics.EXPECT().MessageProcessed("umkm-submissions", 2).Times(1)
	kafkaMetrics.EXPECT().ConsumerGroupLag("umkm-submissions", 2, int64(17)).Times(1)

	reader := &statsReader{fakeReader: newFakeReader(), lag: 17}
	consumer := NewSubmissionConsumer(reader, newTestDLQ(t, ctrl, &fakeWriter{}), &fakeSubmitter{}, kafkaMetrics, logger.NewNop())

	consumer.processMessage(context.Background(), kafka.Message{
		Topic:     "umkm-submissions",
		Partition: 2,
		Value:     fakeSubmissionPayload(t),
	})
}

type failingReader struct {
	reads int
}

func (r *failingReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.reads++
	if err := ctx.Err(); err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{}, io.EOF
}

func (r *failingReader) Close() error { return nil }

// recordingSleep stores every requested wait and cancels after limit calls.
func recordingSleep(cancel context.CancelFunc, limit int, waits *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		if len(*waits) >= limit {
			cancel()
			return ctx.Err()
		}
		return nil
	}
}

func TestReadLoops_BackOffOnReadErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc string
		run  func(ctx context.Context, reader Reader, b *readBackoff)
	}{
		{
			desc: "SubmissionConsumer",
			run: func(ctx context.Context, reader Reader, b *readBackoff) {
				consumer := NewSubmissionConsumer(reader, nil, &fakeSubmitter{}, nil, logger.NewNop())
				consumer.backoff = b
				require.NoError(t, consumer.run(ctx))
			},
		},
		{
			desc: "DLQProcessor",
			run: func(ctx context.Context, reader Reader, b *readBackoff) {
				processor := NewDLQProcessor(reader, nil, &fakeSubmitter{}, 5, time.Millisecond, logger.NewNop())
				processor.backoff = b
				require.NoError(t, processor.run(ctx))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			var waits []time.Duration
			b := newReadBackoff()
			b.sleep = recordingSleep(cancel, 3, &waits)

			reader := &failingReader{}
			tc.run(ctx, reader, b)

			require.Equal(t, 3, reader.reads)
			require.Len(t, waits, 3)
			for i, d := range waits {
				require.Less(t, d, b.policy.Ceiling(i))
			}
			require.Equal(t, 3, b.failures)
		})
	}
}

func TestReadBackoff_ResetAfterSuccess(t *testing.T) {
	t.Parallel()

	b := newReadBackoff()
	b.sleep = func(context.Context, time.Duration) error { return nil }

	require.NoError(t, b.wait(context.Background()))
	require.NoError(t, b.wait(context.Background()))
	require.Equal(t, 2, b.failures)

	b.reset()
	require.Zero(t, b.failures)
}
