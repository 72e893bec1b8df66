package interfaces

import "context"

// EventPublisher delivers lifecycle events. Events sharing a key are delivered in order.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
