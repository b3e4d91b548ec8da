package interfaces

import "context"

// ConsumerHandler processes one message read from the event topic.
type ConsumerHandler interface {
	HandleMessage(ctx context.Context, key, value []byte) error
}

type ProducerHandler interface {
	PublishMessage(key, value []byte) error
}
