package queue

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/SundayYogurt/logistics_service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"
)

// Credentials enable SASL/PLAIN over TLS when Username is set.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) transport() *kafka.Transport {
	if c.Username == "" {
		return nil
	}
	return &kafka.Transport{
		SASL: plain.Mechanism{Username: c.Username, Password: c.Password},
		TLS:  &tls.Config{},
	}
}

func (c Credentials) dialer() *kafka.Dialer {
	d := &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true}
	if c.Username != "" {
		d.SASLMechanism = plain.Mechanism{Username: c.Username, Password: c.Password}
		d.TLS = &tls.Config{}
	}
	return d
}

type Producer struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewProducer(broker, topic string, creds Credentials, log *zap.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: 10 * time.Second,
	}
	if t := creds.transport(); t != nil {
		w.Transport = t
	}

	return &Producer{writer: w, log: logger.OrNop(log)}
}

// PublishMessage writes one event. Key routes all events of a type to one partition.
func (p *Producer) PublishMessage(key, value []byte) error {
	if p == nil || p.writer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
