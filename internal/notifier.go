package internal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Roma7-7-7/mailchimp-notifier/pkg/mailchimp"
)

type (
	StatsFetcher interface {
		LatestCampaignStats(ctx context.Context, listID string) (*mailchimp.CampaignStats, error)
	}

	ChatPublisher interface {
		CreateLine(ctx context.Context, content string) error
	}

	Notifier struct {
		fetcher   StatsFetcher
		publisher ChatPublisher

		listID     string
		production bool

		log *slog.Logger
	}
)

func NewNotifier(conf *Config, fetcher StatsFetcher, publisher ChatPublisher, log *slog.Logger) *Notifier {
	return &Notifier{
		fetcher:    fetcher,
		publisher:  publisher,
		listID:     conf.ListID,
		production: conf.Production,
		log:        log,
	}
}

// PostCampaignStats runs one invocation of the pipeline: fetch the latest
// campaign stats, render the chat message and deliver it. A failure at any
// stage aborts the remaining stages. Outside production the message is only
// logged, never posted.
func (n *Notifier) PostCampaignStats(ctx context.Context) error {
	n.log.InfoContext(ctx, "posting campaign stats", "list_id", n.listID)

	stats, err := n.fetcher.LatestCampaignStats(ctx, n.listID)
	if err != nil {
		return fmt.Errorf("fetch stats: %w", err)
	}

	msg, err := RenderStatsMessage(stats)
	if err != nil {
		return fmt.Errorf("render stats message: %w", err)
	}

	if !n.production {
		n.log.InfoContext(ctx, "would have posted message", "msg", msg)
		return nil
	}

	if err = n.publisher.CreateLine(ctx, msg); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	n.log.InfoContext(ctx, "message sent")
	return nil
}
