package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/Roma7-7-7/mailchimp-notifier/internal"
	"github.com/Roma7-7-7/mailchimp-notifier/pkg/basecamp"
	"github.com/Roma7-7-7/mailchimp-notifier/pkg/mailchimp"
)

func main() {
	ctx := context.Background()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	conf, err := internal.GetConfig(ctx)
	if err != nil {
		log.ErrorContext(ctx, "failed to get config", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}

	mailchimpClient, err := mailchimp.NewClient(conf.APIKey, httpClient, log)
	if err != nil {
		log.ErrorContext(ctx, "failed to create mailchimp client", "error", err)
		os.Exit(1)
	}
	basecampClient := basecamp.NewClient(conf.WebhookURL, httpClient, log)

	notifier := internal.NewNotifier(conf, mailchimpClient, basecampClient, log)
	handler := internal.NewLambdaHandler(notifier)

	lambda.Start(handler.HandleRequest)
}
