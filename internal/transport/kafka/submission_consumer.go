package kafkat

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"umkmorder/internal/entity"
	"umkmorder/internal/service"
	"umkmorder/pkg/kafka/dlq"
	"umkmorder/pkg/logger"
	"umkmorder/pkg/metric"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
)

type (
	Reader interface {
		ReadMessage(ctx context.Context) (kafka.Message, error)
		Close() error
	}

	OrderSubmitter interface {
		SubmitOrder(ctx context.Context, sub *entity.Submission) (*entity.Order, error)
	}

	// SubmissionConsumer reads intake form submissions from the intake
	// topic and stores them as orders.
	SubmissionConsumer struct {
		reader Reader
		dlq    *dlq.DLQ
		svc    OrderSubmitter
		metric metric.Kafka
		log    logger.Logger
	}
)

func NewSubmissionConsumer(
	reader Reader,
	dlq *dlq.DLQ,
	svc OrderSubmitter,
	metric metric.Kafka,
	log logger.Logger,
) *SubmissionConsumer {
	return &SubmissionConsumer{
		reader:  reader,
		dlq:     dlq,
		svc:     svc,
		metric:  metric,
		log:     log,
		backoff: newReadBackoff(),
	}
}

func (c *SubmissionConsumer) Start(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return c.run(ctx)
	})

	eg.Go(func() error {
		<-ctx.Done()
		c.log.Infow("shutting down submission consumer")
		return c.reader.Close()
	})

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("transport.kafka.SubmissionConsumer.Start: %w", err)
	}
	return nil
}

func (c *SubmissionConsumer) run(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Errorw("kafka read failed",
				"error", err,
				"consecutive_failures", c.backoff.failures+1,
			)
			if c.backoff.wait(ctx) != nil {
				return nil
			}
			continue
		}
		c.backoff.reset()

		c.processMessage(ctx, msg)
	}
}

func (c *SubmissionConsumer) processMessage(ctx context.Context, msg kafka.Message) {
	c.log.Debugw("processing kafka message",
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
	)

	var handled bool
	err := dlq.ProcessWithRetry(
		ctx,
		msg,
		func(ctx context.Context, msg kafka.Message) error {
			if err := c.handleMessage(ctx, msg); err != nil {
				return err
			}
			handled = true
			return nil
		},
		c.dlq,
		c.log,
	)

	switch {
	case handled:
		c.metric.MessageProcessed(msg.Topic, msg.Partition)
		c.reportLag(msg)
	case err != nil:
		c.log.Errorw("critical: message neither processed nor dead-lettered",
			"offset", msg.Offset,
			"error", err,
			"payload_sha256", payloadHash(msg.Value),
		)
		c.metric.MessageFailed(msg.Topic, msg.Partition, "dlq_send_failed")
	default:
		c.metric.MessageFailed(msg.Topic, msg.Partition, "dead_lettered")
	}
}

// reportLag publishes the consumer lag when the reader exposes stats, as
// *kafka.Reader does.
func (c *SubmissionConsumer) reportLag(msg kafka.Message) {
	stats, ok := c.reader.(interface{ Stats() kafka.ReaderStats })
	if !ok {
		return
	}
	c.metric.ConsumerGroupLag(msg.Topic, msg.Partition, stats.Stats().Lag)
}

func (c *SubmissionConsumer) handleMessage(ctx context.Context, msg kafka.Message) error {
	const op = "transport.kafka.SubmissionConsumer.handleMessage"

	order, err := submit(ctx, c.svc, msg.Value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.log.Infow("order submitted from kafka",
		"order_id", order.OrderID,
		"offset", msg.Offset,
	)

	return nil
}

// submit decodes a submission payload and hands it to the service. Payloads
// that can never succeed are marked permanent.
func submit(ctx context.Context, svc OrderSubmitter, payload []byte) (*entity.Order, error) {
	var sub entity.Submission
	if err := json.Unmarshal(payload, &sub); err != nil {
		return nil, dlq.Permanent(fmt.Errorf("unmarshal submission: %w", err))
	}

	order, err := svc.SubmitOrder(service.WithSource(ctx, service.SourceKafka), &sub)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidData) {
			return nil, dlq.Permanent(err)
		}
		return nil, err
	}
	return order, nil
}

func payloadHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
