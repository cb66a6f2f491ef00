package handlers

import (
	"net/http"
)

// RootHandler describes the API.
type RootHandler struct {
	version string
}

// NewRootHandler creates a root handler.
func NewRootHandler(version string) *RootHandler {
	return &RootHandler{version: version}
}

// Index lists the available endpoints.
func (h *RootHandler) Index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "footprint",
		"description": "Travel emissions, tailored tips and climate news",
		"version":     h.version,
		"endpoints": map[string]string{
			"GET /api":                "API information",
			"GET /health":             "Health check",
			"GET /api/news":           "News feed (?category=, ?limit=)",
			"POST /api/tailored-tips": "Tips for a journey snapshot",
			"POST /api/emissions":     "Emission breakdown for a journey snapshot",
			"GET /api/leaderboard":    "Challenge leaderboard (?limit=)",
		},
	})
}

// NotFound answers unknown routes.
func (h *RootHandler) NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error":   "Route not found",
		"message": "Check /api for available routes",
	})
}
