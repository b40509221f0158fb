package main

// @title           Pledge Donation Billing API
// @version         1.0
// @description     Recurring donation subscriptions with a background billing scheduler.

// @host      localhost:3000
// @BasePath  /

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/pledge/internal/app"
)

func main() {
	os.Exit(run())
}

// run starts the app, blocks until SIGINT/SIGTERM and stops it, waiting for the
// in-flight billing tick.
func run() int {
	bootLog := zap.NewExample().Sugar()
	a := fx.New(
		app.Module,
		fx.StartTimeout(app.DefaultStartTimeout),
		fx.StopTimeout(app.DefaultStopTimeout),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), app.DefaultStartTimeout)
	defer cancelStart()
	if err := a.Start(startCtx); err != nil {
		bootLog.Errorf("failed to start pledge api: %v", err)
		return 1
	}

	sig := <-a.Wait()
	bootLog.Infow("shutdown requested", "signal", sig.Signal)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
	defer cancelStop()
	if err := a.Stop(stopCtx); err != nil {
		bootLog.Errorf("failed to stop pledge api: %v", err)
		return 1
	}
	return sig.ExitCode
}
