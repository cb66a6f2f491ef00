// Package tips requests and generates tailored travel tips.
package tips

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/carbon-footprint/internal/common"
	"github.com/Veraticus/carbon-footprint/internal/model"
)

// MaxTips is the most tips ever shown for one request.
const MaxTips = 5

// TailoredTipsPath is the tips service endpoint.
const TailoredTipsPath = "/api/tailored-tips"

// Fallback messages. They only differ at the presentation layer; both mean no
// tips were produced.
const (
	FallbackNoTips = "No tailored tips are available right now. Keep choosing low-carbon travel!"
	FallbackFailed = "We couldn't load your tips. Please try again later."
)

// Reason explains why an outcome carries the fallback message.
type Reason int

// Outcome reasons.
const (
	ReasonTips Reason = iota
	ReasonNoTips
	ReasonRequestFailed
	ReasonSuperseded
)

// Outcome is the result of a tips request. Tips always holds at least one
// entry: either real tips or the fallback message.
type Outcome struct {
	Err    error
	Tips   []string
	Reason Reason
}

// Produced reports whether the service returned real tips.
func (o Outcome) Produced() bool {
	return o.Reason == ReasonTips
}

// Response is the tips service payload.
type Response struct {
	Tips []string `json:"tips"`
}

// Requester posts calculator snapshots to the tips service. Starting a new
// request cancels the one in flight; the canceled call resolves to a
// superseded fallback.
type Requester struct {
	httpClient *http.Client
	cancel     context.CancelFunc
	baseURL    string
	mu         sync.Mutex
	seq        uint64
}

// RequesterOption configures a Requester.
type RequesterOption func(*Requester)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) RequesterOption {
	return func(r *Requester) {
		r.httpClient = c
	}
}

// NewRequester creates a requester for the service at baseURL.
func NewRequester(baseURL string, opts ...RequesterOption) *Requester {
	r := &Requester{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RequestTailoredTips sends snapshot to the tips service. It never returns an
// error; every failure resolves to a fallback outcome.
func (r *Requester) RequestTailoredTips(ctx context.Context, snapshot model.Snapshot) Outcome {
	ctx, id := r.begin(ctx)
	defer r.finish(id)

	tips, err := r.fetch(ctx, snapshot)
	if err != nil {
		if r.superseded(id) && errors.Is(err, context.Canceled) {
			slog.Debug("tips request superseded by a newer one")
			return Outcome{Tips: []string{FallbackFailed}, Reason: ReasonSuperseded, Err: err}
		}
		slog.Warn("tips request failed", "error", err)
		return Outcome{Tips: []string{FallbackFailed}, Reason: ReasonRequestFailed, Err: err}
	}

	return outcomeFor(tips)
}

func outcomeFor(tips []string) Outcome {
	if len(tips) == 0 {
		return Outcome{Tips: []string{FallbackNoTips}, Reason: ReasonNoTips}
	}
	if len(tips) > MaxTips {
		tips = tips[:MaxTips]
	}
	return Outcome{Tips: tips, Reason: ReasonTips}
}

// begin cancels any outstanding request and registers a new one.
func (r *Requester) begin(ctx context.Context) (context.Context, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.seq++
	return ctx, r.seq
}

func (r *Requester) finish(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seq == id && r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Requester) superseded(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq != id
}

func (r *Requester) fetch(ctx context.Context, snapshot model.Snapshot) ([]string, error) {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+TailoredTipsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", common.ErrFetch, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: tips service returned status %d", common.ErrFetch, resp.StatusCode)
	}

	var payload struct {
		Tips *[]string `json:"tips"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrBadResponse, err)
	}
	if payload.Tips == nil {
		return nil, fmt.Errorf("%w: missing tips field", common.ErrBadResponse)
	}

	return *payload.Tips, nil
}
