package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Roma7-7-7/mailchimp-notifier/internal"
	"github.com/Roma7-7-7/mailchimp-notifier/pkg/basecamp"
	"github.com/Roma7-7-7/mailchimp-notifier/pkg/mailchimp"
)

var (
	Version   = "dev"     //nolint:gochecknoglobals // version is a global variable
	BuildTime = "unknown" //nolint:gochecknoglobals // build time is a global variable
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	exitCode := run(ctx)
	cancel()
	os.Exit(exitCode)
}

func run(ctx context.Context) int {
	_ = godotenv.Load() // optional .env file for local runs

	conf, err := internal.GetConfig(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get config", "error", err) //nolint:sloglint // logger is not yet initialized
		return 1
	}

	log := internal.NewLogger(conf.Dev)
	log.InfoContext(ctx, "mailchimp-notifier function host starting",
		"version", Version,
		"build_time", BuildTime,
		"port", conf.Port,
		"production", conf.Production)

	httpClient := &http.Client{
		Timeout: 10 * time.Second, //nolint:mnd // reasonable timeout
	}

	mailchimpClient, err := mailchimp.NewClient(conf.APIKey, httpClient, log)
	if err != nil {
		log.ErrorContext(ctx, "failed to create mailchimp client", "error", err)
		return 1
	}
	basecampClient := basecamp.NewClient(conf.WebhookURL, httpClient, log)

	notifier := internal.NewNotifier(conf, mailchimpClient, basecampClient, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", conf.Port),
		Handler:           internal.NewRouter(notifier, log),
		ReadHeaderTimeout: 5 * time.Second, //nolint:mnd // reasonable timeout
	}

	srvErrChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErrChan <- err
		}
	}()

	log.InfoContext(ctx, "listening for invocations", "addr", srv.Addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-srvErrChan:
		log.ErrorContext(ctx, "server failed", "error", err)
		return 1
	case sig := <-sigChan:
		log.InfoContext(ctx, "received shutdown signal", "signal", sig)
	case <-ctx.Done():
		log.InfoContext(ctx, "context cancelled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second) //nolint:mnd // reasonable shutdown timeout
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(ctx, "failed to shutdown server", "error", err)
		return 1
	}

	return 0
}
