package transaction

import "go.uber.org/fx"

// Module exposes the transaction ledger via Fx.
var Module = fx.Options(
	fx.Provide(NewLedger),
)
