package news

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/carbon-footprint/internal/model"
	"golang.org/x/time/rate"
)

// Store persists news items.
type Store interface {
	UpsertNewsItems(ctx context.Context, items []model.NewsItem) (int, error)
}

// SyncResult summarizes one sync run.
type SyncResult struct {
	Failed  map[string]error
	Fetched int
	Stored  int
	Skipped int
}

// Syncer pulls items from upstream feeds into the store. Upstream requests
// are rate limited so a long source list does not hammer a single host.
type Syncer struct {
	store      Store
	limiter    *rate.Limiter
	httpClient *http.Client
	onProgress func(source string)
}

// SyncerOption configures a Syncer.
type SyncerOption func(*Syncer)

// WithRateLimit sets the minimum interval between upstream requests.
func WithRateLimit(every time.Duration) SyncerOption {
	return func(s *Syncer) {
		if every > 0 {
			s.limiter = rate.NewLimiter(rate.Every(every), 1)
		}
	}
}

// WithProgress registers a callback invoked after each source completes.
func WithProgress(fn func(source string)) SyncerOption {
	return func(s *Syncer) {
		s.onProgress = fn
	}
}

// WithSyncHTTPClient overrides the HTTP client used for upstream feeds.
func WithSyncHTTPClient(c *http.Client) SyncerOption {
	return func(s *Syncer) {
		s.httpClient = c
	}
}

// NewSyncer creates a syncer writing to store.
func NewSyncer(store Store, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		store:      store,
		limiter:    rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync fetches every source URL and stores the valid items. A failing source
// is recorded and skipped; the run only aborts on store errors or
// cancellation.
func (s *Syncer) Sync(ctx context.Context, sources []string) (SyncResult, error) {
	result := SyncResult{Failed: make(map[string]error)}

	for _, source := range sources {
		if err := s.limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("sync canceled: %w", err)
		}

		items, err := NewURLClient(source, s.httpClient).FetchAll(ctx)
		if err != nil {
			slog.Warn("news source failed", "source", source, "error", err)
			result.Failed[source] = err
			s.progress(source)
			continue
		}
		result.Fetched += len(items)

		valid := ValidItems(items)
		result.Skipped += len(items) - len(valid)

		if len(valid) > 0 {
			stored, err := s.store.UpsertNewsItems(ctx, valid)
			if err != nil {
				return result, fmt.Errorf("failed to store items from %s: %w", source, err)
			}
			result.Stored += stored
		}

		slog.Info("news source synced", "source", source, "items", len(valid))
		s.progress(source)
	}

	return result, nil
}

// Import stores items read from a local feed document.
func Import(ctx context.Context, store Store, data []byte) (SyncResult, error) {
	items, err := decodeFeed(data)
	if err != nil {
		return SyncResult{}, err
	}
	valid := ValidItems(items)
	result := SyncResult{
		Fetched: len(items),
		Skipped: len(items) - len(valid),
	}
	if len(valid) == 0 {
		return result, nil
	}
	stored, err := store.UpsertNewsItems(ctx, valid)
	if err != nil {
		return result, fmt.Errorf("failed to store items: %w", err)
	}
	result.Stored = stored
	return result, nil
}

// ValidItems drops items without a title or link.
func ValidItems(items []model.NewsItem) []model.NewsItem {
	out := make([]model.NewsItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Title) == "" || strings.TrimSpace(item.Link) == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (s *Syncer) progress(source string) {
	if s.onProgress != nil {
		s.onProgress(source)
	}
}
