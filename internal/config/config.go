// Package config assembles service configuration from defaults, an optional
// YAML or JSON file and environment variables, in that order of precedence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ug-admin-search/internal/fuzzy"
)

// Data sources accepted by DataConfig.Source.
const (
	SourceEmbedded = "embedded"
	SourceDir      = "dir"
	SourcePostgres = "postgres"
)

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server"`
	Data     DataConfig     `yaml:"data" json:"data"`
	Database DatabaseConfig `yaml:"database" json:"database"`
	Search   SearchConfig   `yaml:"search" json:"search"`
	Cache    CacheConfig    `yaml:"cache" json:"cache"`
	Auth     AuthConfig     `yaml:"auth" json:"auth"`
	Log      LogConfig      `yaml:"log" json:"log"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins" json:"cors_origins"`
}

// DataConfig selects where reference data comes from.
type DataConfig struct {
	Source string `yaml:"source" json:"source" validate:"oneof=embedded dir postgres"`
	Dir    string `yaml:"dir" json:"dir" validate:"required_if=Source dir"`
	// Watch reloads the dir source when its files change.
	Watch    bool          `yaml:"watch" json:"watch"`
	Debounce time.Duration `yaml:"debounce" json:"debounce"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	// URL is a lib/pq connection string. Empty falls back to the PG* variables.
	URL            string `yaml:"url" json:"url"`
	MaxConnections int    `yaml:"max_connections" json:"max_connections" validate:"min=1"`
}

// SearchConfig holds matching parameters and result limits.
type SearchConfig struct {
	Threshold      float64 `yaml:"threshold" json:"threshold" validate:"gt=0,lte=1"`
	MinMatchLength int     `yaml:"min_match_length" json:"min_match_length" validate:"min=1"`
	IgnoreLocation bool    `yaml:"ignore_location" json:"ignore_location"`
	Location       int     `yaml:"location" json:"location" validate:"min=0"`
	Distance       int     `yaml:"distance" json:"distance" validate:"min=0"`
	Matcher        string  `yaml:"matcher" json:"matcher" validate:"oneof=approx levenshtein"`
	DefaultLimit   int     `yaml:"default_limit" json:"default_limit" validate:"min=1"`
	MaxLimit       int     `yaml:"max_limit" json:"max_limit" validate:"gtefield=DefaultLimit"`
}

// CacheConfig sizes the result cache. An empty RedisAddr disables Redis.
type CacheConfig struct {
	Enabled       bool          `yaml:"enabled" json:"enabled"`
	Size          int           `yaml:"size" json:"size" validate:"min=0"`
	RedisAddr     string        `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword string        `yaml:"redis_password" json:"redis_password"`
	RedisDB       int           `yaml:"redis_db" json:"redis_db" validate:"min=0"`
	TTL           time.Duration `yaml:"ttl" json:"ttl"`
}

// AuthConfig contains authentication settings
type AuthConfig struct {
	// APIKeys, when non-empty, are required in X-API-Key on /api routes.
	APIKeys []string `yaml:"api_keys" json:"api_keys"`
	// AdminToken guards POST /api/reload. Empty disables the endpoint.
	AdminToken string `yaml:"admin_token" json:"admin_token"`
}

// LogConfig selects slog level and format.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" json:"format" validate:"omitempty,oneof=text json"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	opts := fuzzy.DefaultOptions()
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Data: DataConfig{
			Source:   SourceEmbedded,
			Debounce: 500 * time.Millisecond,
		},
		Database: DatabaseConfig{
			MaxConnections: 10,
		},
		Search: SearchConfig{
			Threshold:      opts.Threshold,
			MinMatchLength: opts.MinMatchLength,
			IgnoreLocation: opts.IgnoreLocation,
			Location:       opts.Location,
			Distance:       opts.Distance,
			Matcher:        opts.Matcher,
			DefaultLimit:   100,
			MaxLimit:       500,
		},
		Cache: CacheConfig{
			Enabled: true,
			Size:    4096,
			TTL:     10 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// FuzzyOptions converts the search section into index options.
func (s SearchConfig) FuzzyOptions() fuzzy.Options {
	return fuzzy.Options{
		Threshold:      s.Threshold,
		MinMatchLength: s.MinMatchLength,
		IgnoreLocation: s.IgnoreLocation,
		Location:       s.Location,
		Distance:       s.Distance,
		Matcher:        s.Matcher,
	}
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load builds the configuration: defaults, then the file at path (if any),
// then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv() {
	c.Server.Host = GetEnv("HOST", c.Server.Host)
	c.Server.Port = GetEnvInt("PORT", c.Server.Port)
	if v := GetEnv("CORS_ORIGINS", ""); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}

	c.Data.Source = GetEnv("DATA_SOURCE", c.Data.Source)
	c.Data.Dir = GetEnv("DATA_DIR", c.Data.Dir)
	c.Data.Watch = GetEnvBool("DATA_WATCH", c.Data.Watch)
	c.Data.Debounce = GetEnvDuration("DATA_DEBOUNCE", c.Data.Debounce)

	c.Database.URL = GetEnv("DATABASE_URL", c.Database.URL)
	c.Database.MaxConnections = GetEnvInt("DB_MAX_CONNECTIONS", c.Database.MaxConnections)

	c.Search.Threshold = GetEnvFloat("SEARCH_THRESHOLD", c.Search.Threshold)
	c.Search.MinMatchLength = GetEnvInt("SEARCH_MIN_MATCH_LENGTH", c.Search.MinMatchLength)
	c.Search.IgnoreLocation = GetEnvBool("SEARCH_IGNORE_LOCATION", c.Search.IgnoreLocation)
	c.Search.Location = GetEnvInt("SEARCH_LOCATION", c.Search.Location)
	c.Search.Distance = GetEnvInt("SEARCH_DISTANCE", c.Search.Distance)
	c.Search.Matcher = GetEnv("SEARCH_MATCHER", c.Search.Matcher)
	c.Search.DefaultLimit = GetEnvInt("SEARCH_DEFAULT_LIMIT", c.Search.DefaultLimit)
	c.Search.MaxLimit = GetEnvInt("SEARCH_MAX_LIMIT", c.Search.MaxLimit)

	c.Cache.Enabled = GetEnvBool("CACHE_ENABLED", c.Cache.Enabled)
	c.Cache.Size = GetEnvInt("CACHE_SIZE", c.Cache.Size)
	c.Cache.TTL = GetEnvDuration("CACHE_TTL", c.Cache.TTL)
	if host := GetEnv("REDIS_HOST", ""); host != "" {
		c.Cache.RedisAddr = host + ":" + GetEnv("REDIS_PORT", "6379")
	}
	c.Cache.RedisPassword = GetEnv("REDIS_PASS", c.Cache.RedisPassword)
	c.Cache.RedisDB = GetEnvInt("REDIS_DB", c.Cache.RedisDB)

	if v := GetEnv("API_KEYS", ""); v != "" {
		c.Auth.APIKeys = splitList(v)
	}
	c.Auth.AdminToken = GetEnv("ADMIN_TOKEN", c.Auth.AdminToken)

	c.Log.Level = GetEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = GetEnv("LOG_FORMAT", c.Log.Format)
}

// Validate checks field constraints and the fuzzy options they produce.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Search.FuzzyOptions().Validate(); err != nil {
		return fmt.Errorf("invalid search config: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
