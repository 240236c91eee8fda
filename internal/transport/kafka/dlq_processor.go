package kafkat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"umkmorder/pkg/kafka/dlq"
	"umkmorder/pkg/logger"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
)

const (
	_defaultDLQRetryDelay    = 100 * time.Millisecond
	_defaultDLQHandleTimeout = 5 * time.Second
)

// DLQProcessor re-attempts dead-lettered submissions read from the DLQ
// topic. Permanent failures and letters that reached maxRetries are dropped
// after logging.
type DLQProcessor struct {
	dlqReader  Reader
	dlq        *dlq.DLQ
	svc        OrderSubmitter
	maxRetries int
	retryDelay time.Duration
	log        logger.Logger
	backoff    *readBackoff
}

func NewDLQProcessor(
	reader Reader,
	dlq *dlq.DLQ,
	svc OrderSubmitter,
	maxRetries int,
	retryDelay time.Duration,
	log logger.Logger,
) *DLQProcessor {
	if retryDelay <= 0 {
		retryDelay = _defaultDLQRetryDelay
	}
	return &DLQProcessor{
		dlqReader:  reader,
		dlq:        dlq,
		svc:        svc,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		log:        log,
		backoff:    newReadBackoff(),
	}
}

func (p *DLQProcessor) Start(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return p.run(ctx)
	})

	eg.Go(func() error {
		<-ctx.Done()
		p.log.Infow("dlq processor shutting down")
		return p.dlqReader.Close()
	})

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("transport.kafka.DLQProcessor.Start: %w", err)
	}
	return nil
}

func (p *DLQProcessor) run(ctx context.Context) error {
	for {
		msg, err := p.dlqReader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.log.Errorw("read dlq message",
				"error", err,
				"consecutive_failures", p.backoff.failures+1,
			)
			if p.backoff.wait(ctx) != nil {
				return nil
			}
			continue
		}
		p.backoff.reset()

		select {
		case <-time.After(p.retryDelay):
		case <-ctx.Done():
			return nil
		}

		p.processMessage(ctx, msg)
	}
}

func (p *DLQProcessor) processMessage(ctx context.Context, msg kafka.Message) {
	var envelope dlq.Envelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		p.log.Errorw("unmarshal dlq message",
			"error", err,
			"offset", msg.Offset,
			"payload_sha256", payloadHash(msg.Value),
		)
		return
	}

	meta := envelope.Metadata
	if meta.Permanent {
		p.log.Warnw("skipping permanently failed dlq message",
			"offset", msg.Offset,
			"original_offset", meta.Offset,
			"error", meta.Error,
		)
		return
	}
	if meta.RetryCount >= p.maxRetries {
		p.log.Warnw("skipping dlq message after max retries",
			"offset", msg.Offset,
			"original_offset", meta.Offset,
			"retry_count", meta.RetryCount,
		)
		return
	}

	handleCtx, cancel := context.WithTimeout(ctx, _defaultDLQHandleTimeout)
	defer cancel()

	order, err := submit(handleCtx, p.svc, []byte(envelope.Payload))
	if err == nil {
		p.log.Infow("dlq message processed successfully",
			"offset", msg.Offset,
			"order_id", order.OrderID,
			"retry_count", meta.RetryCount,
		)
		return
	}

	p.log.Errorw("dlq message retry failed",
		"error", err,
		"offset", msg.Offset,
		"retry_count", meta.RetryCount,
	)

	original := kafka.Message{
		Topic:     meta.OriginalTopic,
		Partition: meta.Partition,
		Offset:    meta.Offset,
		Key:       msg.Key,
		Value:     []byte(envelope.Payload),
	}
	if sendErr := p.dlq.Send(ctx, original, err, meta.RetryCount+1); sendErr != nil {
		p.log.Errorw("failed to return message to dlq",
			"offset", msg.Offset,
			"retry_count", meta.RetryCount+1,
			"error", sendErr,
			"payload_sha256", payloadHash(original.Value),
		)
	}
}
