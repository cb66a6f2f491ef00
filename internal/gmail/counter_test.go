package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/carbon-footprint/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

func newTestCounter(t *testing.T, handler http.Handler) *Counter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	counter, err := NewCounter(context.Background(),
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	counter.retry = common.RetryOptions{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
	return counter
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func messages(prefix string, n int) []map[string]string {
	out := make([]map[string]string, n)
	for i := range out {
		out[i] = map[string]string{"id": fmt.Sprintf("%s-%d", prefix, i)}
	}
	return out
}

func TestMonthStart(t *testing.T) {
	// 22:00 on March 31 in UTC-5 is already April in UTC
	local := time.FixedZone("EST", -5*3600)
	now := time.Date(2024, 3, 31, 22, 0, 0, 0, local)

	start := MonthStart(now)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestCounter_CountSinceMonthStart(t *testing.T) {
	now := time.Date(2024, 5, 17, 15, 0, 0, 0, time.UTC)
	after := fmt.Sprintf("after:%d", MonthStart(now).Unix())

	var queries []string
	counter := newTestCounter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/users/me/profile"):
			writeJSON(t, w, map[string]any{"emailAddress": "ana@example.com"})
		case strings.HasSuffix(r.URL.Path, "/users/me/messages"):
			q := r.URL.Query().Get("q")
			queries = append(queries, q)
			assert.Contains(t, q, after)

			switch {
			case strings.HasPrefix(q, "in:inbox"):
				assert.Equal(t, "500", r.URL.Query().Get("maxResults"))
				if r.URL.Query().Get("pageToken") == "" {
					writeJSON(t, w, map[string]any{"messages": messages("in", 500), "nextPageToken": "page2"})
					return
				}
				assert.Equal(t, "page2", r.URL.Query().Get("pageToken"))
				writeJSON(t, w, map[string]any{"messages": messages("in2", 37)})
			case strings.HasPrefix(q, "in:sent"):
				writeJSON(t, w, map[string]any{"messages": messages("out", 10), "resultSizeEstimate": 42})
			}
		default:
			http.NotFound(w, r)
		}
	}))

	counts, err := counter.CountSinceMonthStart(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", counts.Email)
	assert.Equal(t, 537, counts.Received)
	assert.Equal(t, 42, counts.Sent)
	assert.Equal(t, 579, counts.Total())
	assert.InDelta(t, 579*GramsPerEmail, counts.FootprintGrams(), 1e-9)
	assert.Len(t, queries, 3)
}

func TestCounter_NonRetryableError(t *testing.T) {
	var calls atomic.Int32
	counter := newTestCounter(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = fmt.Fprint(w, `{"error":{"code":403,"message":"insufficient scope"}}`)
	}))

	_, err := counter.CountSinceMonthStart(context.Background(), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrFetch)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCounter_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	counter := newTestCounter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/profile") {
			writeJSON(t, w, map[string]any{"emailAddress": "ana@example.com"})
			return
		}
		writeJSON(t, w, map[string]any{"resultSizeEstimate": 0})
	}))

	counts, err := counter.CountSinceMonthStart(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", counts.Email)
	assert.Zero(t, counts.Total())
}

func TestCounter_RateLimitExhaustsRetries(t *testing.T) {
	counter := newTestCounter(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := counter.CountSinceMonthStart(context.Background(), time.Now())
	assert.ErrorIs(t, err, common.ErrMaxRetries)
}

func TestCounter_Recent(t *testing.T) {
	counter := newTestCounter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/messages"):
			assert.Equal(t, "2", r.URL.Query().Get("maxResults"))
			writeJSON(t, w, map[string]any{"messages": messages("m", 2)})
		case strings.HasSuffix(r.URL.Path, "/messages/m-0"):
			assert.Equal(t, "metadata", r.URL.Query().Get("format"))
			writeJSON(t, w, map[string]any{"id": "m-0", "payload": map[string]any{"headers": []map[string]string{
				{"name": "Subject", "value": "Weekly digest"},
				{"name": "From", "value": "news@example.com"},
			}}})
		case strings.HasSuffix(r.URL.Path, "/messages/m-1"):
			writeJSON(t, w, map[string]any{"id": "m-1"})
		default:
			http.NotFound(w, r)
		}
	}))

	recent, err := counter.Recent(context.Background(), time.Now(), 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Weekly digest", recent[0].Subject)
	assert.Equal(t, "news@example.com", recent[0].From)
	assert.Equal(t, "(No Subject)", recent[1].Subject)
	assert.Equal(t, "(No Sender)", recent[1].From)
}

func TestOAuth2Config_Validate(t *testing.T) {
	assert.ErrorIs(t, OAuth2Config{}.Validate(), common.ErrMissingConfig)
	assert.NoError(t, OAuth2Config{ClientID: "id", ClientSecret: "secret"}.Validate())
}

func TestCallbackCode(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode string
		wantErr  bool
	}{
		{name: "ok", query: "state=s1&code=abc", wantCode: "abc"},
		{name: "state mismatch", query: "state=other&code=abc", wantErr: true},
		{name: "denied", query: "error=access_denied&state=s1", wantErr: true},
		{name: "no code", query: "state=s1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/callback?"+tt.query, nil)
			code, err := callbackCode(r, "s1")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	path := t.TempDir() + "/nested/token.json"
	_, err := LoadToken(path)
	require.Error(t, err)

	require.NoError(t, saveToken(path, oauthToken("access-1")))
	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "access-1", loaded.AccessToken)
}

func oauthToken(access string) *oauth2.Token {
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
}
