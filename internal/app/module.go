package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/pledge/internal/app/api/server"
	"github.com/fatflowers/pledge/internal/app/service/billing"
	"github.com/fatflowers/pledge/internal/app/service/classifier"
	"github.com/fatflowers/pledge/internal/app/service/statistics"
	"github.com/fatflowers/pledge/internal/app/service/subscription"
	"github.com/fatflowers/pledge/internal/app/service/transaction"
	"github.com/fatflowers/pledge/internal/platform/rabbitmq"
	"github.com/fatflowers/pledge/internal/platform/storage"
	"github.com/fatflowers/pledge/pkg/clock"
	"github.com/fatflowers/pledge/pkg/config"
	"github.com/fatflowers/pledge/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	clock.Module,
	storage.Module,
	rabbitmq.Module,
	classifier.Module,
	subscription.Module,
	transaction.Module,
	statistics.Module,
	billing.Module,
	server.Module,
)
