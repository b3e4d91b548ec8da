package queue

import (
	"context"
	"errors"
	"time"

	"github.com/SundayYogurt/logistics_service/internal/interfaces"
	"github.com/SundayYogurt/logistics_service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const defaultRetryDelay = time.Second

// MessageReader is the part of *kafka.Reader the consumer loop needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type KafkaConsumer struct {
	Reader     MessageReader
	Handler    interfaces.ConsumerHandler
	RetryDelay time.Duration
	log        *zap.Logger
}

func NewKafkaConsumer(broker, topic, groupID string, creds Credentials, handler interfaces.ConsumerHandler, log *zap.Logger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{broker},
		GroupID:  groupID,
		Topic:    topic,
		Dialer:   creds.dialer(),
		MinBytes: 1,
		MaxBytes: 10e6, //10MB
	})

	return &KafkaConsumer{
		Reader:     reader,
		Handler:    handler,
		RetryDelay: defaultRetryDelay,
		log:        logger.OrNop(log).With(zap.String("component", "kafka-consumer"), zap.String("topic", topic)),
	}
}

// Listen reads until ctx is canceled. Handler errors are logged and the
// message is still committed, a poison event must not stall the group.
func (kc *KafkaConsumer) Listen(ctx context.Context) {
	defer func() {
		if err := kc.Reader.Close(); err != nil {
			kc.log.Warn("close reader", zap.Error(err))
		}
	}()

	for {
		msg, err := kc.Reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			kc.log.Warn("read message", zap.Error(err))
			// back off so an unreachable broker does not spin the loop
			if !sleepCtx(ctx, kc.RetryDelay) {
				return
			}
			continue
		}

		kc.log.Debug("message received",
			zap.ByteString("key", msg.Key),
			zap.Int64("offset", msg.Offset),
		)

		if err := kc.Handler.HandleMessage(ctx, msg.Key, msg.Value); err != nil {
			kc.log.Warn("handle message", zap.ByteString("key", msg.Key), zap.Error(err))
		}
	}
}

// sleepCtx waits for d and reports false when ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = defaultRetryDelay
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
