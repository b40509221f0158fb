package billing

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/pledge/internal/app/service/subscription"
	"github.com/fatflowers/pledge/internal/app/service/transaction"
	"github.com/fatflowers/pledge/internal/platform/rabbitmq"
	"github.com/fatflowers/pledge/internal/platform/storage"
	"github.com/fatflowers/pledge/pkg/clock"
	"github.com/fatflowers/pledge/pkg/config"
	"github.com/fatflowers/pledge/pkg/metrics"
)

type schedulerParams struct {
	fx.In

	Backend   storage.Backend
	Store     *subscription.Service
	Ledger    *transaction.Ledger
	Publisher rabbitmq.Publisher
	Clock     clock.Clock
	Log       *zap.SugaredLogger
	Cfg       *config.Config
}

func newScheduler(p schedulerParams) (*Scheduler, error) {
	m, err := metrics.NewBilling(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, err
	}
	return NewScheduler(Options{
		Backend:   p.Backend,
		Store:     p.Store,
		Ledger:    p.Ledger,
		Publisher: p.Publisher,
		Clock:     p.Clock,
		Metrics:   m,
		Log:       p.Log,
		Interval:  p.Cfg.Billing.TickInterval,
	}), nil
}

func registerScheduler(lc fx.Lifecycle, s *Scheduler, cfg *config.Config, l *zap.SugaredLogger) {
	if !cfg.Billing.Enabled {
		l.Warnw("billing scheduler disabled by config")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error { return s.Start() },
		OnStop:  s.Stop,
	})
}

var Module = fx.Options(
	fx.Provide(newScheduler),
	fx.Invoke(registerScheduler),
)
