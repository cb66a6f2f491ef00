// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/carbon-footprint/internal/common"
	"github.com/Veraticus/carbon-footprint/internal/gmail"
	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultDatabasePath = "~/.local/share/footprint/footprint.db"
	DefaultAPIBaseURL   = "http://localhost:8000"
	DefaultServerPort   = 8000
	DefaultPageSize     = 9
	DefaultSyncRate     = 500 * time.Millisecond
	DefaultTokenFile    = "~/.config/footprint/gmail-token.json"
	DefaultBackupDir    = "~/.local/share/footprint/backups"
)

// Config is the resolved application configuration.
type Config struct {
	DatabasePath string
	APIBaseURL   string
	BackupDir    string
	NewsSources  []string
	Gmail        gmail.OAuth2Config
	ServerPort   int
	NewsPageSize int
	NewsSyncRate time.Duration
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("database.backup_dir", DefaultBackupDir)
	v.SetDefault("api.base_url", DefaultAPIBaseURL)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("news.page_size", DefaultPageSize)
	v.SetDefault("news.sync_rate", DefaultSyncRate)
	v.SetDefault("news.sources", []string{})
	v.SetDefault("gmail.token_file", DefaultTokenFile)
	v.SetDefault("gmail.callback_port", gmail.DefaultCallbackPort)
}

// Load resolves configuration from v. Gmail credentials fall back to the
// GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment variables, which
// is where a .env file usually puts them.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabasePath: ExpandPath(v.GetString("database.path")),
		BackupDir:    ExpandPath(v.GetString("database.backup_dir")),
		APIBaseURL:   strings.TrimRight(v.GetString("api.base_url"), "/"),
		ServerPort:   v.GetInt("server.port"),
		NewsPageSize: v.GetInt("news.page_size"),
		NewsSyncRate: v.GetDuration("news.sync_rate"),
		NewsSources:  v.GetStringSlice("news.sources"),
		Gmail: gmail.OAuth2Config{
			ClientID:     v.GetString("gmail.client_id"),
			ClientSecret: v.GetString("gmail.client_secret"),
			TokenFile:    ExpandPath(v.GetString("gmail.token_file")),
			CallbackPort: v.GetInt("gmail.callback_port"),
		},
	}

	if cfg.Gmail.ClientID == "" {
		cfg.Gmail.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if cfg.Gmail.ClientSecret == "" {
		cfg.Gmail.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges of numeric settings.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: database.path is empty", common.ErrInvalidConfig)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", common.ErrInvalidConfig, c.ServerPort)
	}
	if c.NewsPageSize <= 0 {
		return fmt.Errorf("%w: news.page_size must be positive", common.ErrInvalidConfig)
	}
	if c.NewsSyncRate < 0 {
		return fmt.Errorf("%w: news.sync_rate cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
