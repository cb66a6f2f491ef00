package news

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/Veraticus/carbon-footprint/internal/model"
)

// DefaultPageSize is the number of cards appended per page.
const DefaultPageSize = 9

// LoadMoreThreshold is how close, in layout units, the viewport bottom must
// come to the document bottom before the next page loads.
const LoadMoreThreshold = 300

// Feed messages shown instead of cards.
const (
	MessageNoNews        = "No news articles are available right now. Check back soon."
	MessageEmptyCategory = "No articles in this category yet."
	MessageLoadFailed    = "We couldn't load the latest news. Please try again later."
)

// State is the pager lifecycle state.
type State int

// Pager states.
const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateExhausted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateExhausted:
		return "exhausted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Cursor is the pagination position over the fetched items. Items holds the
// whole feed newest first, featured item included.
type Cursor struct {
	ActiveCategory string
	Items          []model.NewsItem
	PageIndex      int
	PageSize       int
	Exhausted      bool
}

// Pager serves fetched news items one page at a time. It owns its cursor and
// is driven by a single goroutine.
type Pager struct {
	fetcher  Fetcher
	err      error
	featured *model.NewsItem
	message  string
	rendered []model.NewsItem
	cursor   Cursor
	state    State
}

// PagerOption configures a Pager.
type PagerOption func(*Pager)

// WithPageSize overrides the page size. Non-positive sizes are ignored.
func WithPageSize(size int) PagerOption {
	return func(p *Pager) {
		if size > 0 {
			p.cursor.PageSize = size
		}
	}
}

// NewPager creates an empty pager.
func NewPager(fetcher Fetcher, opts ...PagerOption) *Pager {
	p := &Pager{
		fetcher: fetcher,
		cursor: Cursor{
			ActiveCategory: model.CategoryAll,
			PageSize:       DefaultPageSize,
		},
		state: StateEmpty,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LoadAll fetches the feed once and renders the first page. On failure the
// pager moves to StateFailed and the error is returned.
func (p *Pager) LoadAll(ctx context.Context) error {
	if !p.BeginLoad() {
		return nil
	}
	if p.fetcher == nil {
		err := errors.New("news fetcher not configured")
		p.CompleteLoad(nil, err)
		return err
	}
	items, err := p.fetcher.FetchAll(ctx)
	p.CompleteLoad(items, err)
	return err
}

// BeginLoad marks a fetch as in flight. It returns false when a fetch is
// already running or items were already loaded.
func (p *Pager) BeginLoad() bool {
	switch p.state {
	case StateEmpty, StateFailed:
		p.state = StateLoading
		p.err = nil
		p.message = ""
		return true
	default:
		return false
	}
}

// CompleteLoad applies the result of a fetch started with BeginLoad.
func (p *Pager) CompleteLoad(items []model.NewsItem, err error) {
	if err != nil {
		slog.Warn("news fetch failed", "error", err)
		p.state = StateFailed
		p.err = err
		p.message = MessageLoadFailed
		return
	}

	sorted := SortNewest(items)
	p.rendered = nil
	p.cursor.PageIndex = 0
	p.cursor.Exhausted = false

	if len(sorted) == 0 {
		p.cursor.Items = nil
		p.featured = nil
		p.cursor.Exhausted = true
		p.state = StateExhausted
		p.message = MessageNoNews
		return
	}

	featured := sorted[0]
	p.featured = &featured
	p.cursor.Items = sorted
	p.state = StateReady

	slog.Debug("news loaded", "count", len(sorted))
	p.NextPage()
}

// NextPage appends the next page for the active category and returns it. It
// does nothing while loading, after a failure, or once exhausted.
func (p *Pager) NextPage() []model.NewsItem {
	if p.state != StateReady || p.cursor.Exhausted {
		return nil
	}

	filtered := p.filtered()
	start := p.cursor.PageIndex * p.cursor.PageSize
	if start >= len(filtered) {
		p.markExhausted(p.cursor.PageIndex == 0)
		return nil
	}

	end := min(start+p.cursor.PageSize, len(filtered))
	page := filtered[start:end]
	p.rendered = append(p.rendered, page...)
	p.cursor.PageIndex++

	if end == len(filtered) {
		p.markExhausted(false)
	}

	out := make([]model.NewsItem, len(page))
	copy(out, page)
	return out
}

func (p *Pager) markExhausted(firstPage bool) {
	p.cursor.Exhausted = true
	p.state = StateExhausted
	// in the all view the featured card is the match
	if firstPage && !p.showingAll() {
		p.message = MessageEmptyCategory
	}
}

// SetCategory switches the filter, clears the rendered cards and renders the
// first page again from the already fetched items.
func (p *Pager) SetCategory(category string) []model.NewsItem {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, model.CategoryAll) {
		category = model.CategoryAll
	}
	p.cursor.ActiveCategory = category

	if p.state != StateReady && p.state != StateExhausted {
		return nil
	}
	if p.featured == nil {
		// nothing was ever fetched, stay on the empty-feed message
		return nil
	}

	p.cursor.PageIndex = 0
	p.cursor.Exhausted = false
	p.rendered = nil
	p.message = ""
	p.state = StateReady
	return p.NextPage()
}

// ShouldLoadMore reports whether the viewport bottom is within
// LoadMoreThreshold of the document bottom.
func ShouldLoadMore(viewportBottom, documentHeight float64) bool {
	return documentHeight-viewportBottom <= LoadMoreThreshold
}

// MaybeLoadMore is the scroll handler. Calling it redundantly is cheap and
// never changes an exhausted or loading pager.
func (p *Pager) MaybeLoadMore(viewportBottom, documentHeight float64) []model.NewsItem {
	if !p.CanLoadMore() || !ShouldLoadMore(viewportBottom, documentHeight) {
		return nil
	}
	return p.NextPage()
}

// CanLoadMore reports whether another page may exist.
func (p *Pager) CanLoadMore() bool {
	return p.state == StateReady && !p.cursor.Exhausted
}

// Categories returns the distinct categories, newest item's category first.
func (p *Pager) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(c string) {
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, c)
	}
	for _, item := range p.cursor.Items {
		add(item.Category)
	}
	return out
}

// State returns the lifecycle state.
func (p *Pager) State() State { return p.state }

// Err returns the last fetch error.
func (p *Pager) Err() error { return p.err }

// Message returns the empty-state or error message, if any.
func (p *Pager) Message() string { return p.message }

// Featured returns the newest item, shown above the paged grid. It is hidden
// while a category filter is active; the filtered grid then holds every match.
func (p *Pager) Featured() (model.NewsItem, bool) {
	if p.featured == nil || !p.showingAll() {
		return model.NewsItem{}, false
	}
	return *p.featured, true
}

// Rendered returns a copy of every card rendered so far.
func (p *Pager) Rendered() []model.NewsItem {
	out := make([]model.NewsItem, len(p.rendered))
	copy(out, p.rendered)
	return out
}

// Cursor returns a copy of the pagination cursor.
func (p *Pager) Cursor() Cursor {
	c := p.cursor
	c.Items = append([]model.NewsItem(nil), p.cursor.Items...)
	return c
}

func (p *Pager) showingAll() bool {
	return p.cursor.ActiveCategory == model.CategoryAll
}

func (p *Pager) filtered() []model.NewsItem {
	if p.showingAll() {
		if len(p.cursor.Items) == 0 {
			return nil
		}
		return p.cursor.Items[1:]
	}
	var out []model.NewsItem
	for _, item := range p.cursor.Items {
		if item.MatchesCategory(p.cursor.ActiveCategory) {
			out = append(out, item)
		}
	}
	return out
}

// SortNewest returns a copy of items stably sorted by publish date, newest
// first. Unparsable dates sort last.
func SortNewest(items []model.NewsItem) []model.NewsItem {
	out := make([]model.NewsItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt().After(out[j].PublishedAt())
	})
	return out
}
