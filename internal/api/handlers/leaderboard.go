package handlers

import (
	"log/slog"
	"net/http"
)

// LeaderboardHandler serves challenge rankings.
type LeaderboardHandler struct {
	board LeaderboardProvider
}

// NewLeaderboardHandler creates a leaderboard handler.
func NewLeaderboardHandler(board LeaderboardProvider) *LeaderboardHandler {
	return &LeaderboardHandler{board: board}
}

// List returns {entries: [...]}.
func (h *LeaderboardHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 10, 1, 100)

	entries, err := h.board.Leaderboard(r.Context(), limit)
	if err != nil {
		slog.Error("failed to load leaderboard", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load leaderboard", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
