package internal

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Roma7-7-7/mailchimp-notifier/pkg/mailchimp"
)

// Campfire accepts a small subset of HTML; the message is a bold header
// followed by a bullet list, one metric per line.
var statsTemplate = template.Must(template.New("stats").
	Funcs(template.FuncMap{
		"percent":    percent,
		"percent100": percent100,
		"perMonth":   perMonth,
	}).
	Parse(`<strong>Mailchimp Stats</strong><ul>` +
		`<li><strong>Latest campaign:</strong> {{.Subject}} (sent {{.SendTime.Format "2006-01-02"}})</li>` +
		`<li><strong>Recipients:</strong> {{.EmailsSent}}</li>` +
		`<li><strong>Open rate:</strong> {{.OpenRate | percent}}</li>` +
		`<li><strong>Click rate:</strong> {{.ClickRate | percent}}</li>` +
		`{{- with .Audience}}` +
		`<li><strong>Active subscribers:</strong> {{.MemberCount}}</li>` +
		`<li><strong>Subscribes since last send:</strong> {{.SubscribesSinceSend}}</li>` +
		`<li><strong>Unsubscribes since last send:</strong> {{.UnsubscribesSinceSend}}</li>` +
		`<li><strong>Subscribe rate:</strong> {{.AvgSubRate | perMonth}}</li>` +
		`<li><strong>Unsubscribe rate:</strong> {{.AvgUnsubRate | perMonth}}</li>` +
		`<li><strong>Avg click rate:</strong> {{.AvgClickRate | percent100}}</li>` +
		`{{- end}}` +
		`</ul>`))

// RenderStatsMessage renders the chat message for a campaign stats report.
// Output is deterministic for a given input; all numbers use dot decimal
// separators regardless of locale.
func RenderStatsMessage(stats *mailchimp.CampaignStats) (string, error) {
	buff := &bytes.Buffer{}
	if err := statsTemplate.Execute(buff, stats); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buff.String(), nil
}

// percent formats a 0..1 fraction as a fixed two-decimal percentage.
func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// percent100 formats a value already scaled to 0..100 by the API.
func percent100(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func perMonth(v float64) string {
	return fmt.Sprintf("%.0f/m", v)
}
