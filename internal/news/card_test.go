package news

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestRenderCard(t *testing.T) {
	card := RenderCard(model.NewsItem{
		Title:     "  Cities expand bike lanes ",
		Summary:   "Short summary.",
		Source:    "Green Daily",
		Published: "2024-05-01T08:00:00Z",
		Link:      "https://example.com/bikes",
		Category:  "transport",
		Image:     "https://example.com/bikes.jpg",
	})

	assert.Equal(t, "Cities expand bike lanes", card.Title)
	assert.Equal(t, "May 1, 2024", card.DateLabel)
	assert.Equal(t, "transport", card.Category)
	assert.True(t, card.HasImage)
	assert.False(t, card.Featured)
}

func TestRenderCard_Defaults(t *testing.T) {
	card := RenderCard(model.NewsItem{Published: "last Tuesday"})

	assert.Equal(t, "Untitled", card.Title)
	assert.Equal(t, "Unknown source", card.Source)
	assert.Equal(t, "General", card.Category)
	assert.Equal(t, "last Tuesday", card.DateLabel)
	assert.False(t, card.HasImage)

	assert.Equal(t, "Date unknown", RenderCard(model.NewsItem{}).DateLabel)
}

func TestRenderCard_TruncatesSummary(t *testing.T) {
	long := strings.Repeat("carbon emissions fall ", 20)
	card := RenderCard(model.NewsItem{Summary: long})
	featured := RenderFeatured(model.NewsItem{Summary: long})

	assert.LessOrEqual(t, utf8.RuneCountInString(card.Summary), SummaryLimit+1)
	assert.True(t, strings.HasSuffix(card.Summary, "…"))
	assert.Equal(t, strings.TrimSpace(long), featured.Summary)
	assert.True(t, featured.Featured)
}

func TestRenderCards(t *testing.T) {
	cards := RenderCards(makeItems(3, func(int) string { return "energy" }))
	assert.Len(t, cards, 3)
	assert.Equal(t, "Story 0", cards[0].Title)
}
