package model

import (
	"strings"
	"time"
)

// NewsItem is a single article served by the news API. Items are never
// modified after they are fetched.
type NewsItem struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Source    string `json:"source"`
	Published string `json:"published"`
	Link      string `json:"link"`
	Category  string `json:"category"`
	Image     string `json:"image,omitempty"`
}

// CategoryAll matches every news item.
const CategoryAll = "all"

var publishedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// PublishedAt parses the published field. Unparsable dates return the zero
// time so they sort as the oldest items.
func (n NewsItem) PublishedAt() time.Time {
	s := strings.TrimSpace(n.Published)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// MatchesCategory reports whether the item belongs to category. "all" and
// the empty string match everything.
func (n NewsItem) MatchesCategory(category string) bool {
	if category == "" || category == CategoryAll {
		return true
	}
	return strings.EqualFold(n.Category, category)
}
