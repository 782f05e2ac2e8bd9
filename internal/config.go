package internal

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	pkgSSM "github.com/Roma7-7-7/mailchimp-notifier/pkg/ssm"
)

const defaultPort = 3000

type Config struct {
	Dev        bool
	APIKey     string
	ListID     string
	WebhookURL string
	Production bool
	Port       int
	Schedule   string
}

// GetConfig resolves the process configuration from the environment, falling
// back to SSM Parameter Store for secrets that are not set. The custom
// handler port follows the Azure Functions convention and defaults to 3000.
func GetConfig(ctx context.Context) (*Config, error) {
	res := &Config{
		Dev:        os.Getenv("ENV") == "dev",
		APIKey:     os.Getenv("MAILCHIMP_API_KEY"),
		ListID:     os.Getenv("MAILCHIMP_LIST_ID"),
		WebhookURL: os.Getenv("BASECAMP_WEBHOOK_URL"),
		Production: os.Getenv("PRODUCTION") != "",
		Schedule:   os.Getenv("SCHEDULE"),
	}
	if res.Schedule == "" {
		res.Schedule = "0 9 * * 1"
	}

	res.Port = defaultPort
	if port := os.Getenv("FUNCTIONS_CUSTOMHANDLER_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("parse FUNCTIONS_CUSTOMHANDLER_PORT: %w", err)
		}
		res.Port = p
	}

	// In dev mode or if all required params are set via env vars, skip SSM
	if res.Dev || res.hasRequiredParams() {
		if err := res.validate(); err != nil {
			return nil, err
		}
		return res, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config (set required env vars to skip SSM): %w", err)
	}
	ssmClient := ssm.NewFromConfig(cfg)

	err = pkgSSM.Resolve(ctx, ssmClient, map[string]*string{
		"/mailchimp-notifier/prod/mailchimp-api-key":    &res.APIKey,
		"/mailchimp-notifier/prod/mailchimp-list-id":    &res.ListID,
		"/mailchimp-notifier/prod/basecamp-webhook-url": &res.WebhookURL,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve SSM parameters (set required env vars to skip SSM): %w", err)
	}

	if err := res.validate(); err != nil {
		return nil, err
	}

	return res, nil
}

func (c *Config) hasRequiredParams() bool {
	return c.APIKey != "" && c.ListID != "" && c.WebhookURL != ""
}

func (c *Config) validate() error {
	var missing []string

	if c.APIKey == "" {
		missing = append(missing, "MAILCHIMP_API_KEY")
	}
	if c.ListID == "" {
		missing = append(missing, "MAILCHIMP_LIST_ID")
	}
	if c.WebhookURL == "" {
		missing = append(missing, "BASECAMP_WEBHOOK_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %v", missing)
	}

	return nil
}
