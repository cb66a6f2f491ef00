package main

import (
	"fmt"

	"github.com/Veraticus/carbon-footprint/internal/api"
	"github.com/Veraticus/carbon-footprint/internal/tips"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the footprint API backend",
		Long: `Serve stored news, tailored tips, emission calculations and the
challenge leaderboard over HTTP.

Endpoints:
  GET  /api/news
  POST /api/tailored-tips
  POST /api/emissions
  GET  /api/leaderboard
  GET  /health`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			router := api.NewRouter(api.Dependencies{
				News:        store,
				Tips:        tips.NewAdvisor(),
				Leaderboard: store,
				Version:     version,
			})
			return api.Serve(cmd.Context(), fmt.Sprintf(":%d", cfg.ServerPort), router)
		},
	}

	cmd.Flags().Int("port", 0, "port to listen on (default: server.port)")
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}
