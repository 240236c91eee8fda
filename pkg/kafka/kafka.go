package kafka

import (
	"context"
	"fmt"
	"time"

	"umkmorder/pkg/logger"

	"github.com/segmentio/kafka-go"
)

const _dialTimeout = 5 * time.Second

type ReaderConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewReader creates a consumer group reader after checking that every
// broker accepts connections.
func NewReader(ctx context.Context, cfg ReaderConfig, log logger.Logger) (*kafka.Reader, error) {
	const op = "kafka.NewReader"

	if err := checkKafkaConnection(ctx, cfg.Brokers, log); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		Logger:      kafkaLogger(log, logger.DebugLevel, "kafka reader", cfg.Topic),
		ErrorLogger: kafkaLogger(log, logger.ErrorLevel, "kafka reader error", cfg.Topic),
	}), nil
}

// NewWriter creates a synchronous writer that balances by message key.
func NewWriter(brokers []string, topic string, log logger.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		Logger:                 kafkaLogger(log, logger.DebugLevel, "kafka writer", topic),
		ErrorLogger:            kafkaLogger(log, logger.ErrorLevel, "kafka writer error", topic),
	}
}

func kafkaLogger(log logger.Logger, level logger.Level, msg, topic string) kafka.LoggerFunc {
	return func(format string, args ...any) {
		log.LogAttrs(context.Background(), level, msg,
			logger.String("topic", topic),
			logger.String("message", fmt.Sprintf(format, args...)),
		)
	}
}

func checkKafkaConnection(ctx context.Context, brokers []string, log logger.Logger) error {
	const op = "kafka.checkKafkaConnection"

	dialer := &kafka.Dialer{Timeout: _dialTimeout}
	for _, broker := range brokers {
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			return fmt.Errorf("%s: connect to %s: %w", op, broker, err)
		}

		if err = conn.Close(); err != nil {
			log.LogAttrs(ctx, logger.WarnLevel, "failed to close connection",
				logger.String("operation", op),
				logger.String("broker", broker),
				logger.Err(err),
			)
		}
	}
	return nil
}
