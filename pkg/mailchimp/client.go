package mailchimp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const baseURLFormat = "https://%s.api.mailchimp.com/3.0"

type (
	Logger interface {
		DebugContext(ctx context.Context, msg string, fields ...any)
		WarnContext(ctx context.Context, msg string, fields ...any)
	}

	HTTPClient interface {
		Do(req *http.Request) (*http.Response, error)
	}

	// CampaignStats holds the performance metrics of the most recently sent
	// campaign of a list. Rates are fractions in the 0..1 range.
	CampaignStats struct {
		Title      string
		Subject    string
		SendTime   time.Time
		EmailsSent int
		OpenRate   float64
		ClickRate  float64

		// Audience is nil when the list stats could not be fetched.
		Audience *AudienceStats
	}

	// AudienceStats holds list-level subscriber metrics. AvgSubRate and
	// AvgUnsubRate are monthly averages; AvgClickRate is a percentage in
	// the 0..100 range as reported by the API.
	AudienceStats struct {
		MemberCount           int
		SubscribesSinceSend   int
		UnsubscribesSinceSend int
		AvgSubRate            float64
		AvgUnsubRate          float64
		AvgClickRate          float64
	}

	Client struct {
		apiKey     string
		baseURL    string
		httpClient HTTPClient
		log        Logger
	}
)

// NewClient creates a Mailchimp API client. The datacenter is derived from
// the API key suffix (e.g. "abc123-us14" targets us14.api.mailchimp.com).
func NewClient(apiKey string, httpClient HTTPClient, log Logger) (*Client, error) {
	dc, err := datacenter(apiKey)
	if err != nil {
		return nil, err
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    fmt.Sprintf(baseURLFormat, dc),
		httpClient: httpClient,
		log:        log,
	}, nil
}

// newClientWithBaseURL is used by tests to point the client at a fake server.
func newClientWithBaseURL(apiKey, baseURL string, httpClient HTTPClient, log Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        log,
	}
}

type (
	reportsResponse struct {
		Reports    []campaignReport `json:"reports"`
		TotalItems int              `json:"total_items"`
	}

	campaignReport struct {
		ID            string    `json:"id"`
		CampaignTitle string    `json:"campaign_title"`
		SubjectLine   string    `json:"subject_line"`
		EmailsSent    int       `json:"emails_sent"`
		SendTime      time.Time `json:"send_time"`
		Opens         struct {
			OpenRate float64 `json:"open_rate"`
		} `json:"opens"`
		Clicks struct {
			ClickRate float64 `json:"click_rate"`
		} `json:"clicks"`
	}

	listResponse struct {
		Stats struct {
			MemberCount               int     `json:"member_count"`
			MemberCountSinceSend      int     `json:"member_count_since_send"`
			UnsubscribeCountSinceSend int     `json:"unsubscribe_count_since_send"`
			AvgSubRate                float64 `json:"avg_sub_rate"`
			AvgUnsubRate              float64 `json:"avg_unsub_rate"`
			ClickRate                 float64 `json:"click_rate"`
		} `json:"stats"`
	}
)

// LatestCampaignStats fetches the report of the most recently sent campaign
// for the given list, together with the list's audience stats. A failing
// report request fails the call; a failing audience request only leaves
// CampaignStats.Audience nil.
func (c *Client) LatestCampaignStats(ctx context.Context, listID string) (*CampaignStats, error) {
	report, err := c.latestReport(ctx, listID)
	if err != nil {
		return nil, err
	}

	stats := &CampaignStats{
		Title:      report.CampaignTitle,
		Subject:    report.SubjectLine,
		SendTime:   report.SendTime,
		EmailsSent: report.EmailsSent,
		OpenRate:   report.Opens.OpenRate,
		ClickRate:  report.Clicks.ClickRate,
	}

	audience, err := c.audienceStats(ctx, listID)
	if err != nil {
		c.log.WarnContext(ctx, "failed to fetch audience stats", "list_id", listID, "error", err)
		return stats, nil
	}
	stats.Audience = audience

	return stats, nil
}

func (c *Client) latestReport(ctx context.Context, listID string) (*campaignReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reports", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	q := req.URL.Query()
	q.Add("list_id", listID)
	q.Add("count", "1")
	q.Add("sort_field", "send_time")
	q.Add("sort_dir", "DESC")
	req.URL.RawQuery = q.Encode()

	var res reportsResponse
	if err := c.get(ctx, req, &res); err != nil {
		return nil, err
	}

	if len(res.Reports) == 0 {
		return nil, ErrNoCampaigns
	}

	return &res.Reports[0], nil
}

func (c *Client) audienceStats(ctx context.Context, listID string) (*AudienceStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/lists/"+listID, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	q := req.URL.Query()
	q.Add("fields", "stats")
	req.URL.RawQuery = q.Encode()

	var res listResponse
	if err := c.get(ctx, req, &res); err != nil {
		return nil, err
	}

	return &AudienceStats{
		MemberCount:           res.Stats.MemberCount,
		SubscribesSinceSend:   res.Stats.MemberCountSinceSend,
		UnsubscribesSinceSend: res.Stats.UnsubscribeCountSinceSend,
		AvgSubRate:            res.Stats.AvgSubRate,
		AvgUnsubRate:          res.Stats.AvgUnsubRate,
		AvgClickRate:          res.Stats.ClickRate,
	}, nil
}

func (c *Client) get(ctx context.Context, req *http.Request, dest any) error {
	req.SetBasicAuth("anystring", c.apiKey)

	c.log.DebugContext(ctx, "sending request",
		"url", req.URL.String(),
		"method", req.Method)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransientError{Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // ignore

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decoding
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.log.WarnContext(ctx, "authentication rejected", "status_code", resp.StatusCode)
		return &AuthError{StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
		return ErrNoCampaigns
	case resp.StatusCode >= 500:
		c.log.WarnContext(ctx, "server error", "status_code", resp.StatusCode)
		return &TransientError{Err: fmt.Errorf("status code %d", resp.StatusCode)}
	default:
		c.log.WarnContext(ctx, "unexpected status code", "status_code", resp.StatusCode)
		return &ProtocolError{Err: fmt.Errorf("status code %d", resp.StatusCode)}
	}

	if err = json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &ProtocolError{Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}

func datacenter(apiKey string) (string, error) {
	i := strings.LastIndex(apiKey, "-")
	if i < 0 || i == len(apiKey)-1 {
		return "", fmt.Errorf("api key has no datacenter suffix")
	}
	return apiKey[i+1:], nil
}
