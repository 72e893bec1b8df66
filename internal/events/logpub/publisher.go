// Package logpub publishes lifecycle events to the service log. It is used when
// no message broker is configured.
package logpub

import (
	"context"

	"go.uber.org/zap"

	interfaces "github.com/sheikh-saqib/echeque-service/internal/interfaces"
)

type Publisher struct {
	logger *zap.Logger
}

func NewPublisher(logger *zap.Logger) *Publisher {
	return &Publisher{logger: logger}
}

func (p *Publisher) Publish(_ context.Context, topic string, key string, event any) error {
	p.logger.Info("event",
		zap.String("topic", topic),
		zap.String("key", key),
		zap.Any("event", event),
	)
	return nil
}

var _ interfaces.EventPublisher = (*Publisher)(nil)
