package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/pledge/docs"
	"github.com/fatflowers/pledge/internal/app/api/handlers"
	mw "github.com/fatflowers/pledge/internal/app/api/middleware"
	"github.com/fatflowers/pledge/internal/app/service/statistics"
	"github.com/fatflowers/pledge/internal/app/service/subscription"
	"github.com/fatflowers/pledge/internal/app/service/transaction"
	cfgpkg "github.com/fatflowers/pledge/pkg/config"
	metrics "github.com/fatflowers/pledge/pkg/metrics"
)

const shutdownTimeout = 30 * time.Second

func newEngine(log *zap.SugaredLogger, cfg *cfgpkg.Config) *gin.Engine {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(mw.TraceMiddleware(), mw.RecoveryMiddleware(log, cfg.IsDev()))
	r.NoRoute(mw.NotFoundHandler())
	return r
}

// registerMetrics must run before registerRoutes so the middleware sees every route.
func registerMetrics(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) error {
	if cfg.MetricsAddr == "" {
		return nil
	}
	p, err := metrics.NewPrometheus(metrics.NewPrometheusOptions{Logger: log})
	if err != nil {
		return fmt.Errorf("failed to register http metrics: %w", err)
	}
	p.SetListenAddress(cfg.MetricsAddr)
	srv := p.Use(r)
	serve(lc, log, "metrics", srv)
	return nil
}

type routeParams struct {
	fx.In

	Engine       *gin.Engine
	Log          *zap.SugaredLogger
	Subscription *subscription.Service
	Ledger       *transaction.Ledger
	Statistics   *statistics.Service
}

func registerRoutes(p routeParams) {
	docs.SwaggerInfo.BasePath = "/"
	p.Engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := p.Engine.Group("/api")
	api.Use(mw.RequestLoggerMiddleware(p.Log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(api)
	handlers.RegisterSubscriptionRoutes(api, p.Subscription)
	handlers.RegisterTransactionRoutes(api, p.Ledger)
	handlers.RegisterStatisticsRoutes(api, p.Statistics)
}

func serve(lc fx.Lifecycle, log *zap.SugaredLogger, name string, srv *http.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "name", name, "addr", srv.Addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("%s server error: %v", name, err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping server", "name", name)
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	serve(lc, log, "http", &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerMetrics),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
