package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/carbon-footprint/internal/api/handlers"
)

// RequestTimeout bounds every API request.
const RequestTimeout = 15 * time.Second

// Dependencies are the data sources behind the API.
type Dependencies struct {
	News        handlers.NewsProvider
	Tips        handlers.TipsProvider
	Leaderboard handlers.LeaderboardProvider
	Version     string
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	rootHandler := handlers.NewRootHandler(deps.Version)
	healthHandler := handlers.NewHealthHandler(deps.Version)
	newsHandler := handlers.NewNewsHandler(deps.News)
	tipsHandler := handlers.NewTipsHandler(deps.Tips)
	leaderboardHandler := handlers.NewLeaderboardHandler(deps.Leaderboard)

	mux.HandleFunc("GET /{$}", rootHandler.Index)
	mux.HandleFunc("GET /api", rootHandler.Index)
	mux.HandleFunc("GET /health", healthHandler.Health)

	mux.HandleFunc("GET /api/news", newsHandler.List)
	mux.HandleFunc("POST /api/tailored-tips", tipsHandler.Tailored)
	mux.HandleFunc("POST /api/emissions", tipsHandler.Emissions)
	mux.HandleFunc("GET /api/leaderboard", leaderboardHandler.List)

	mux.HandleFunc("/", rootHandler.NotFound)

	return Chain(mux,
		Recovery,
		Logging,
		CORS,
		Timeout(RequestTimeout),
	)
}

// Serve runs handler on addr until ctx is canceled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("Shutting down API server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
