package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Veraticus/carbon-footprint/internal/common"
	"github.com/Veraticus/carbon-footprint/internal/config"
	"github.com/Veraticus/carbon-footprint/internal/emissions"
	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/Veraticus/carbon-footprint/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadConfig resolves the configuration from viper.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("Invalid configuration", err)
	}
	return cfg, nil
}

// initStorage opens the database and brings the schema up to date.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// addDistanceFlags registers one km flag per transport mode.
func addDistanceFlags(cmd *cobra.Command) {
	for _, mode := range model.AllModes() {
		cmd.Flags().Float64(string(mode), 0, fmt.Sprintf("%s distance in km", mode.Label()))
	}
}

// aggregatorFromFlags builds an aggregator from the distance flags.
func aggregatorFromFlags(cmd *cobra.Command) (*emissions.Aggregator, error) {
	agg := emissions.New()
	for _, mode := range model.AllModes() {
		value, err := cmd.Flags().GetFloat64(string(mode))
		if err != nil {
			return nil, err
		}
		if err := agg.SetDistance(mode, value); err != nil {
			return nil, common.NewUserError(fmt.Sprintf("Invalid --%s value", mode), err)
		}
	}
	return agg, nil
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
