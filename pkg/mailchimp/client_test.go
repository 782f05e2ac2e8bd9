package mailchimp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reportsBody = `{
	"reports": [
		{
			"id": "abc123",
			"campaign_title": "September newsletter",
			"subject_line": "September News",
			"emails_sent": 1250,
			"send_time": "2021-09-01T14:00:00+00:00",
			"opens": {"open_rate": 0.4321},
			"clicks": {"click_rate": 0.0712}
		}
	],
	"total_items": 1
}`

const listBody = `{
	"stats": {
		"member_count": 5000,
		"member_count_since_send": 40,
		"unsubscribe_count_since_send": 12,
		"avg_sub_rate": 35,
		"avg_unsub_rate": 8,
		"click_rate": 12.5
	}
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFakeAPI(t *testing.T, reportsHandler, listHandler http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/reports", reportsHandler)
	mux.HandleFunc("/lists/", listHandler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient_DatacenterParsing(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		wantErr bool
	}{
		{name: "valid key", apiKey: "0123456789abcdef-us14", wantErr: false},
		{name: "no datacenter suffix", apiKey: "0123456789abcdef", wantErr: true},
		{name: "trailing dash", apiKey: "0123456789abcdef-", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.apiKey, http.DefaultClient, testLogger())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "https://us14.api.mailchimp.com/3.0", c.baseURL)
		})
	}
}

func TestLatestCampaignStats(t *testing.T) {
	var gotAuth string
	srv := newFakeAPI(t,
		func(w http.ResponseWriter, r *http.Request) {
			_, pass, _ := r.BasicAuth()
			gotAuth = pass
			assert.Equal(t, "list-1", r.URL.Query().Get("list_id"))
			assert.Equal(t, "1", r.URL.Query().Get("count"))
			_, _ = w.Write([]byte(reportsBody))
		},
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(listBody))
		},
	)

	c := newClientWithBaseURL("key-us14", srv.URL, srv.Client(), testLogger())

	stats, err := c.LatestCampaignStats(context.Background(), "list-1")
	require.NoError(t, err)

	assert.Equal(t, "key-us14", gotAuth)
	assert.Equal(t, "September newsletter", stats.Title)
	assert.Equal(t, "September News", stats.Subject)
	assert.Equal(t, time.Date(2021, 9, 1, 14, 0, 0, 0, time.UTC), stats.SendTime.UTC())
	assert.Equal(t, 1250, stats.EmailsSent)
	assert.InDelta(t, 0.4321, stats.OpenRate, 1e-9)
	assert.InDelta(t, 0.0712, stats.ClickRate, 1e-9)

	require.NotNil(t, stats.Audience)
	assert.Equal(t, 5000, stats.Audience.MemberCount)
	assert.Equal(t, 40, stats.Audience.SubscribesSinceSend)
	assert.Equal(t, 12, stats.Audience.UnsubscribesSinceSend)
	assert.InDelta(t, 35, stats.Audience.AvgSubRate, 1e-9)
	assert.InDelta(t, 8, stats.Audience.AvgUnsubRate, 1e-9)
	assert.InDelta(t, 12.5, stats.Audience.AvgClickRate, 1e-9)
}

func TestLatestCampaignStats_AudienceFailureDegrades(t *testing.T) {
	srv := newFakeAPI(t,
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(reportsBody))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	)

	c := newClientWithBaseURL("key-us14", srv.URL, srv.Client(), testLogger())

	stats, err := c.LatestCampaignStats(context.Background(), "list-1")
	require.NoError(t, err)
	assert.Equal(t, "September News", stats.Subject)
	assert.Nil(t, stats.Audience)
}

func TestLatestCampaignStats_NoCampaigns(t *testing.T) {
	srv := newFakeAPI(t,
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"reports": [], "total_items": 0}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(listBody))
		},
	)

	c := newClientWithBaseURL("key-us14", srv.URL, srv.Client(), testLogger())

	_, err := c.LatestCampaignStats(context.Background(), "list-1")
	require.ErrorIs(t, err, ErrNoCampaigns)
}

func TestLatestCampaignStats_AuthError(t *testing.T) {
	srv := newFakeAPI(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
	)

	c := newClientWithBaseURL("bad-key-us14", srv.URL, srv.Client(), testLogger())

	_, err := c.LatestCampaignStats(context.Background(), "list-1")

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
}

func TestLatestCampaignStats_ProtocolError(t *testing.T) {
	srv := newFakeAPI(t,
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"reports": [`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(listBody))
		},
	)

	c := newClientWithBaseURL("key-us14", srv.URL, srv.Client(), testLogger())

	_, err := c.LatestCampaignStats(context.Background(), "list-1")

	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
}

func TestLatestCampaignStats_ServerErrorIsTransient(t *testing.T) {
	srv := newFakeAPI(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
	)

	c := newClientWithBaseURL("key-us14", srv.URL, srv.Client(), testLogger())

	_, err := c.LatestCampaignStats(context.Background(), "list-1")

	var transientErr *TransientError
	require.ErrorAs(t, err, &transientErr)
}

func TestLatestCampaignStats_NetworkFailureIsTransient(t *testing.T) {
	srv := newFakeAPI(t,
		func(w http.ResponseWriter, r *http.Request) {},
		func(w http.ResponseWriter, r *http.Request) {},
	)
	url := srv.URL
	srv.Close()

	c := newClientWithBaseURL("key-us14", url, http.DefaultClient, testLogger())

	_, err := c.LatestCampaignStats(context.Background(), "list-1")

	var transientErr *TransientError
	require.ErrorAs(t, err, &transientErr)
	require.Error(t, errors.Unwrap(transientErr))
}
