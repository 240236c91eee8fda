package dlq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"umkmorder/internal/config"
	"umkmorder/pkg/backoff"
	"umkmorder/pkg/logger"
	"umkmorder/pkg/metric"

	"github.com/segmentio/kafka-go"
)

const (
	_defaultMaxAttempts    = 10
	_defaultBaseRetryDelay = 100 * time.Millisecond
	_defaultMaxRetryDelay  = 5 * time.Second
)

// Writer is the part of kafka.Writer the DLQ needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type DLQ struct {
	writer  Writer
	topic   string
	log     logger.Logger
	metrics metric.DLQ
	retry   backoff.Policy
}

// Envelope is the dead letter written to the DLQ topic.
type Envelope struct {
	Metadata Metadata `json:"metadata"`
	Payload  string   `json:"payload"`
}

type Metadata struct {
	OriginalTopic string `json:"original_topic"`
	Partition     int    `json:"partition"`
	Offset        int64  `json:"offset"`
	RetryCount    int    `json:"retry_count"`
	Permanent     bool   `json:"permanent,omitempty"`
	Error         string `json:"error"`
	Timestamp     string `json:"timestamp"`
}

func NewDLQ(cfg config.DLQ, log logger.Logger, metrics metric.DLQ, opts ...Option) (*DLQ, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Async:        false,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.LogAttrs(context.Background(), logger.ErrorLevel, "dlq writer error",
				logger.String("error", fmt.Sprintf(msg, args...)),
			)
		}),
	}

	return NewWithWriter(writer, cfg.Topic, log, metrics, opts...)
}

// NewWithWriter builds a DLQ on top of an existing writer.
func NewWithWriter(
	writer Writer,
	topic string,
	log logger.Logger,
	metrics metric.DLQ,
	opts ...Option,
) (*DLQ, error) {
	dlq := &DLQ{
		writer:  writer,
		topic:   topic,
		log:     log,
		metrics: metrics,
		retry: backoff.Policy{
			Attempts: _defaultMaxAttempts,
			Base:     _defaultBaseRetryDelay,
			Max:      _defaultMaxRetryDelay,
		},
	}

	for _, opt := range opts {
		opt(dlq)
	}

	if err := dlq.retry.Validate(); err != nil {
		return nil, fmt.Errorf("kafka.dlq.NewDLQ: validation: %w", err)
	}

	return dlq, nil
}

func (d *DLQ) Close() error {
	if err := d.writer.Close(); err != nil {
		return fmt.Errorf("kafka.dlq.Close: %w", err)
	}
	return nil
}

func (d *DLQ) Topic() string {
	return d.topic
}

// Send writes originalMsg to the dead letter topic together with the
// failure that put it there.
func (d *DLQ) Send(
	ctx context.Context,
	originalMsg kafka.Message,
	cause error,
	retryCount int,
) error {
	const op = "kafka.dlq.Send"

	envelope := Envelope{
		Metadata: Metadata{
			OriginalTopic: originalMsg.Topic,
			Partition:     originalMsg.Partition,
			Offset:        originalMsg.Offset,
			RetryCount:    retryCount,
			Permanent:     IsPermanent(cause),
			Error:         cause.Error(),
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
		},
		Payload: string(originalMsg.Value),
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		d.metrics.DLError(d.topic, "marshal_failed")
		return fmt.Errorf("%s: marshal envelope: %w", op, err)
	}

	if err = d.writer.WriteMessages(ctx, kafka.Message{Key: originalMsg.Key, Value: value}); err != nil {
		d.log.LogAttrs(ctx, logger.ErrorLevel, "failed to send message to dlq",
			logger.String("operation", op),
			logger.Int64("offset", originalMsg.Offset),
			logger.Err(err),
		)
		d.metrics.DLError(d.topic, "write_failed")
		return fmt.Errorf("%s: send message: %w", op, err)
	}

	d.metrics.DLSent(d.topic, originalMsg.Topic, retryCount)
	d.log.LogAttrs(ctx, logger.WarnLevel, "message sent to dlq",
		logger.String("operation", op),
		logger.String("topic", d.topic),
		logger.Int64("offset", originalMsg.Offset),
		logger.Int("retry_count", retryCount),
		logger.Bool("permanent", envelope.Metadata.Permanent),
	)

	return nil
}

// ProcessWithRetry runs handler until it succeeds, returns a permanent
// error, or the retry attempts run out. Failed messages are sent to the DLQ;
// the returned error is non-nil only when that send fails or ctx ends.
func ProcessWithRetry(
	ctx context.Context,
	msg kafka.Message,
	handler func(context.Context, kafka.Message) error,
	dlq *DLQ,
	log logger.Logger,
) error {
	const op = "kafka.dlq.ProcessWithRetry"

	var err error
	attempts := 0
	for attempts < dlq.retry.Attempts {
		if attempts > 0 {
			wait := dlq.retry.Delay(attempts - 1)

			log.LogAttrs(ctx, logger.InfoLevel, "retrying message processing",
				logger.String("operation", op),
				logger.Int("attempt", attempts+1),
				logger.Duration("retry_after", wait),
				logger.Err(err),
			)

			if sleepErr := backoff.Sleep(ctx, wait); sleepErr != nil {
				return fmt.Errorf("%s: %w", op, sleepErr)
			}
		}

		attempts++
		err = handler(ctx, msg)
		if err == nil {
			return nil
		}

		log.LogAttrs(ctx, logger.ErrorLevel, "message processing failed",
			logger.String("operation", op),
			logger.Int64("offset", msg.Offset),
			logger.Int("attempt", attempts),
			logger.Err(err),
		)

		if IsPermanent(err) || errors.Is(err, context.Canceled) {
			break
		}
	}

	if ctx.Err() != nil {
		return fmt.Errorf("%s: context done: %w", op, ctx.Err())
	}
	return dlq.Send(ctx, msg, err, attempts)
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}
