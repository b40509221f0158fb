package storage

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/pledge/internal/platform/db"
	cfgpkg "github.com/fatflowers/pledge/pkg/config"
)

// NewBackend picks the table implementation named by storage.driver.
func NewBackend(lc fx.Lifecycle, l *zap.SugaredLogger, cfg *cfgpkg.Config) (Backend, error) {
	switch cfg.Storage.Driver {
	case cfgpkg.StorageDriverMemory, "":
		l.Infow("using in-memory storage backend")
		return NewMemory(), nil
	case cfgpkg.StorageDriverPostgres:
		gdb, err := db.Open(lc, l, cfg)
		if err != nil {
			return nil, err
		}
		return NewGorm(gdb), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Module exposes the storage backend via Fx.
var Module = fx.Options(
	fx.Provide(NewBackend),
)
