package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"
)

// DefaultPath is the config file used when --config is not given.
const DefaultPath = "configs/filmes.yaml"

// Defaults applied by setDefaults.
const (
	DefaultTMDbBaseURL  = "https://api.themoviedb.org/3"
	DefaultTMDbLanguage = "pt-BR"
	DefaultTMDbTimeout  = 30 // seconds
	DefaultServerPort   = 8080
	DefaultLogLevel     = "info"
)

// envPrefix namespaces every environment override.
const envPrefix = "FILMES_"

// Config represents the main application configuration
type Config struct {
	// Metadata provider
	TMDb TMDbConfig `yaml:"tmdb"`

	// Web frontend
	Server ServerConfig `yaml:"server"`

	// Optional chat frontend
	Telegram *TelegramConfig `yaml:"telegram,omitempty"`

	// Application settings
	App AppConfig `yaml:"app"`
}

// TMDbConfig holds TMDb API configuration
type TMDbConfig struct {
	APIKey      string `yaml:"api_key"`
	AccessToken string `yaml:"access_token,omitempty"` // v4 read token, alternative to api_key
	BaseURL     string `yaml:"base_url,omitempty"`
	Language    string `yaml:"language,omitempty"`
	Timeout     int    `yaml:"timeout,omitempty"` // seconds
}

// TimeoutDuration returns the request timeout as a time.Duration.
func (c TMDbConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Port int `yaml:"port"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken       string  `yaml:"bot_token"`
	AllowedUserIDs []int64 `yaml:"allowed_user_ids,omitempty"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	LogLevel string `yaml:"log_level"` // "debug", "info", "warn", "error"
}

// Load reads the YAML file at path, applies FILMES_* overrides from the
// environment and from .env files, fills defaults and validates the result.
// Process environment wins over .env values. A .env next to the config file
// wins over one in the working directory.
func Load(path string) (*Config, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	dotenv, err := readDotenv(".env", filepath.Join(filepath.Dir(path), ".env"))
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnvOverrides(envLookup(dotenv)); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// validateConfigPath checks that path exists and is a regular file.
func validateConfigPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file not found: %s", path)
		}
		return fmt.Errorf("stat config file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	return nil
}

// readDotenv merges the given .env files in order; later files win.
// Missing files are skipped.
func readDotenv(paths ...string) (map[string]string, error) {
	merged := make(map[string]string)
	seen := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err == nil {
			if seen[abs] {
				continue
			}
			seen[abs] = true
		}

		vals, err := godotenv.Read(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		for k, v := range vals {
			merged[k] = v
		}
	}
	return merged, nil
}

// envLookup returns a lookup that prefers the process environment and falls
// back to dotenv.
func envLookup(dotenv map[string]string) func(string) string {
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}
}

// applyEnvOverrides overrides config values with FILMES_* variables
func (c *Config) applyEnvOverrides(getenv func(string) string) error {
	// TMDb
	if v := getenv(envPrefix + "TMDB_API_KEY"); v != "" {
		c.TMDb.APIKey = v
	}
	if v := getenv(envPrefix + "TMDB_ACCESS_TOKEN"); v != "" {
		c.TMDb.AccessToken = v
	}
	if v := getenv(envPrefix + "TMDB_BASE_URL"); v != "" {
		c.TMDb.BaseURL = v
	}
	if v := getenv(envPrefix + "TMDB_LANGUAGE"); v != "" {
		c.TMDb.Language = v
	}
	if err := envInt(getenv, "TMDB_TIMEOUT", &c.TMDb.Timeout); err != nil {
		return err
	}

	// Server
	if err := envInt(getenv, "SERVER_PORT", &c.Server.Port); err != nil {
		return err
	}

	// Telegram; a token in the environment enables the bot on its own.
	if v := getenv(envPrefix + "TELEGRAM_BOT_TOKEN"); v != "" {
		if c.Telegram == nil {
			c.Telegram = &TelegramConfig{}
		}
		c.Telegram.BotToken = v
	}
	if v := getenv(envPrefix + "TELEGRAM_ALLOWED_USER_IDS"); v != "" && c.Telegram != nil {
		ids, err := parseIDList(v)
		if err != nil {
			return fmt.Errorf("%sTELEGRAM_ALLOWED_USER_IDS: %w", envPrefix, err)
		}
		c.Telegram.AllowedUserIDs = ids
	}

	// App
	if v := getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
	return nil
}

func envInt(getenv func(string) string, name string, dst *int) error {
	v := getenv(envPrefix + name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s%s must be an integer, got %q", envPrefix, name, v)
	}
	*dst = n
	return nil
}

// parseIDList parses a comma separated list of Telegram user IDs.
func parseIDList(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// setDefaults fills unset optional fields.
func (c *Config) setDefaults() {
	if c.TMDb.BaseURL == "" {
		c.TMDb.BaseURL = DefaultTMDbBaseURL
	}
	if c.TMDb.Language == "" {
		c.TMDb.Language = DefaultTMDbLanguage
	}
	if c.TMDb.Timeout == 0 {
		c.TMDb.Timeout = DefaultTMDbTimeout
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = DefaultLogLevel
	}
}

var validLogLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate validates the configuration. It expects defaults to be set.
func (c *Config) Validate() error {
	if c.TMDb.APIKey == "" && c.TMDb.AccessToken == "" {
		return fmt.Errorf("tmdb.api_key or tmdb.access_token is required")
	}
	if err := validateURL(c.TMDb.BaseURL, "tmdb.base_url"); err != nil {
		return err
	}
	if c.TMDb.Language == "" {
		return fmt.Errorf("tmdb.language is required")
	}
	if c.TMDb.Timeout < 0 {
		return fmt.Errorf("tmdb.timeout must not be negative")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Telegram != nil && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.App.LogLevel)) {
		return fmt.Errorf("app.log_level must be one of %s, got %q", strings.Join(validLogLevels, ", "), c.App.LogLevel)
	}

	return nil
}

// validateURL checks that raw is an absolute http(s) URL with a host.
func validateURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing host", field)
	}
	return nil
}
