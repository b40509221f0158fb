package rabbitmq

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/pledge/pkg/config"
)

// NewPublisher connects to the configured broker. A missing URL or a failed dial
// yields a NoopPublisher so billing keeps running without a broker.
func NewPublisher(lc fx.Lifecycle, l *zap.SugaredLogger, cfg *config.Config) Publisher {
	if cfg.Events.AMQPURL == "" {
		l.Infow("charge events disabled: no amqp url configured")
		return NoopPublisher{}
	}
	p, err := NewEventProducer(l, cfg.Events.AMQPURL, cfg.Events.Exchange, cfg.Events.RoutingKey)
	if err != nil {
		l.Warnw("charge events disabled: rabbitmq unavailable", "error", err)
		return NoopPublisher{}
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		p.Close()
		return nil
	}})
	l.Infow("charge events enabled", "exchange", cfg.Events.Exchange, "routing_key", cfg.Events.RoutingKey)
	return p
}

var Module = fx.Options(
	fx.Provide(NewPublisher),
)
