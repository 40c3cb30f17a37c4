package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kapu/painpoint-scout-go/internal/config"
	"github.com/kapu/painpoint-scout-go/internal/di"
)

// shutdownTimeout 은 진행 중인 분석 요청이 마무리될 시간을 준다.
const shutdownTimeout = 15 * time.Second

func main() {
	app, err := di.InitializeApp()
	if err != nil {
		log.Fatalf("failed to initialize app: %v", err)
	}
	defer app.Close()

	config.LogEnvStatus(app.Config, app.Logger)

	if err := run(app); err != nil {
		app.Logger.Error("server_failed", "err", err)
		os.Exit(1)
	}
}

func run(app *di.App) error {
	app.Logger.Info(
		"server_start",
		"host", app.Config.HTTP.Host,
		"port", app.Config.HTTP.Port,
		"http2", app.Config.HTTP.HTTP2Enabled,
	)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.Server.ListenAndServe()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	var err error
	select {
	case sig := <-signalCh:
		app.Logger.Info("server_shutdown_signal", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := app.Server.Shutdown(shutdownCtx); shutdownErr != nil {
			app.Logger.Error("server_shutdown_failed", "err", shutdownErr)
			_ = app.Server.Close()
		}

		err = <-serveErr
	case err = <-serveErr:
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
