package internal

import (
	"context"
)

// LambdaHandler adapts the notification pipeline to the AWS Lambda runtime
// for deployments where the host is an EventBridge schedule instead of the
// Azure Functions custom handler contract.
type LambdaHandler struct {
	notifier *Notifier
}

func NewLambdaHandler(notifier *Notifier) *LambdaHandler {
	return &LambdaHandler{
		notifier: notifier,
	}
}

func (h *LambdaHandler) HandleRequest(ctx context.Context) error {
	return h.notifier.PostCampaignStats(ctx)
}
