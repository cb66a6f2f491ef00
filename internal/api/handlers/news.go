package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Veraticus/carbon-footprint/internal/model"
)

const (
	defaultNewsLimit = 0
	maxNewsLimit     = 500
)

// NewsHandler serves the news feed.
type NewsHandler struct {
	news NewsProvider
}

// NewNewsHandler creates a news handler.
func NewNewsHandler(news NewsProvider) *NewsHandler {
	return &NewsHandler{news: news}
}

// List returns {items: [...]}, newest first. The optional category
// parameter filters case-insensitively; "all" disables the filter.
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", defaultNewsLimit, 0, maxNewsLimit)
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	// with a category filter the limit applies after filtering
	fetchLimit := limit
	if category != "" {
		fetchLimit = 0
	}

	items, err := h.news.ListNewsItems(r.Context(), fetchLimit)
	if err != nil {
		slog.Error("failed to list news", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load news", nil)
		return
	}

	if category != "" {
		filtered := make([]model.NewsItem, 0, len(items))
		for _, item := range items {
			if item.MatchesCategory(category) {
				filtered = append(filtered, item)
			}
		}
		items = filtered
		if limit > 0 && len(items) > limit {
			items = items[:limit]
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
