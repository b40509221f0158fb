package statistics

import (
	"go.uber.org/fx"

	"github.com/fatflowers/pledge/internal/app/service/subscription"
	"github.com/fatflowers/pledge/internal/app/service/transaction"
)

func newService(subs *subscription.Service, ledger *transaction.Ledger) *Service {
	return New(subs, ledger)
}

var Module = fx.Options(
	fx.Provide(newService),
)
