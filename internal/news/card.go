package news

import (
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/carbon-footprint/internal/model"
)

// SummaryLimit is the longest summary shown on a card, in runes.
const SummaryLimit = 160

// Card is the presentation node for one news item. It carries no styling so
// it can be rendered by the terminal dashboard or serialized as-is.
type Card struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Source    string `json:"source"`
	DateLabel string `json:"date_label"`
	Category  string `json:"category"`
	Link      string `json:"link"`
	Image     string `json:"image,omitempty"`
	HasImage  bool   `json:"has_image"`
	Featured  bool   `json:"featured"`
}

// RenderCard shapes a news item into a card.
func RenderCard(item model.NewsItem) Card {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = "Untitled"
	}
	source := strings.TrimSpace(item.Source)
	if source == "" {
		source = "Unknown source"
	}
	category := strings.TrimSpace(item.Category)
	if category == "" {
		category = "General"
	}

	return Card{
		Title:     title,
		Summary:   truncate(strings.TrimSpace(item.Summary), SummaryLimit),
		Source:    source,
		DateLabel: dateLabel(item),
		Category:  category,
		Link:      item.Link,
		Image:     item.Image,
		HasImage:  strings.TrimSpace(item.Image) != "",
	}
}

// RenderFeatured shapes the featured item. Its summary is never truncated.
func RenderFeatured(item model.NewsItem) Card {
	card := RenderCard(item)
	card.Summary = strings.TrimSpace(item.Summary)
	card.Featured = true
	return card
}

// RenderCards shapes a page of items.
func RenderCards(items []model.NewsItem) []Card {
	cards := make([]Card, 0, len(items))
	for _, item := range items {
		cards = append(cards, RenderCard(item))
	}
	return cards
}

func dateLabel(item model.NewsItem) string {
	t := item.PublishedAt()
	if t.IsZero() {
		if s := strings.TrimSpace(item.Published); s != "" {
			return s
		}
		return "Date unknown"
	}
	return t.Format("Jan 2, 2006")
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := strings.TrimRight(string(runes[:limit]), " ")
	if i := strings.LastIndex(cut, " "); i > limit/2 {
		cut = cut[:i]
	}
	return cut + "…"
}
