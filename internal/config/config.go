// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Site     SiteConfig     `mapstructure:"site"`
	Builder  BuilderConfig  `mapstructure:"builder"`
	DB       DBConfig       `mapstructure:"db"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Ping     PingConfig     `mapstructure:"ping"`
	Search   SearchConfig   `mapstructure:"search"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Indexing IndexingConfig `mapstructure:"indexing"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// AuthConfig defines API authentication toggles for mutating endpoints.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// SiteConfig describes the site the sitemap is generated for.
type SiteConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// SitemapURL returns the absolute URL of the published sitemap.
func (s SiteConfig) SitemapURL() string {
	return s.BaseURL + "/sitemap.xml"
}

// BuilderConfig governs dynamic route generation.
type BuilderConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// DBConfig controls access to the paper database. An empty DSN selects the
// in-memory store.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// StorageConfig selects the blob backend for published artifacts.
type StorageConfig struct {
	Backend   string `mapstructure:"backend"`
	BaseDir   string `mapstructure:"base_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
}

// PingEngine names one search-engine ping endpoint.
type PingEngine struct {
	Name     string `mapstructure:"name"`
	Endpoint string `mapstructure:"endpoint"`
}

// PingConfig lists the crawler ping endpoints.
type PingConfig struct {
	Engines        []PingEngine `mapstructure:"engines"`
	TimeoutSeconds int          `mapstructure:"timeout_seconds"`
}

// SearchConfig configures the Search Console / Indexing API client.
type SearchConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	CredentialsFile string `mapstructure:"credentials_file"`
	Property        string `mapstructure:"property"`
}

// PubSubConfig holds metadata for sitemap-generated event notifications.
type PubSubConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// IndexingConfig throttles Indexing API submissions.
type IndexingConfig struct {
	MinIntervalMs int `mapstructure:"min_interval_ms"`
}

// MinInterval returns the mandatory gap between indexing requests.
func (c IndexingConfig) MinInterval() time.Duration {
	return time.Duration(c.MinIntervalMs) * time.Millisecond
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SITEMAPD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 60)
	v.SetDefault("builder.page_size", 1000)
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.base_dir", "public")
	v.SetDefault("ping.timeout_seconds", 10)
	v.SetDefault("ping.engines", []map[string]any{
		{"name": "google", "endpoint": "http://www.google.com/ping"},
		{"name": "bing", "endpoint": "http://www.bing.com/ping"},
	})
	v.SetDefault("indexing.min_interval_ms", 1000)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url is required")
	}
	if !strings.HasPrefix(c.Site.BaseURL, "https://") {
		return fmt.Errorf("site.base_url must be an absolute https origin")
	}
	if strings.HasSuffix(c.Site.BaseURL, "/") {
		return fmt.Errorf("site.base_url must not end with a slash")
	}
	if c.Builder.PageSize <= 0 {
		return fmt.Errorf("builder.page_size must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	switch c.Storage.Backend {
	case "local", "memory":
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket must be set when backend is gcs")
		}
	default:
		return fmt.Errorf("storage.backend must be one of local, gcs, memory")
	}
	if c.Search.Enabled && c.Search.CredentialsFile == "" {
		return fmt.Errorf("search.credentials_file must be set when search is enabled")
	}
	if c.Indexing.MinIntervalMs < 1000 {
		return fmt.Errorf("indexing.min_interval_ms must be >= 1000")
	}
	return nil
}
