// Package models defines data structures for configuration, extracted
// content and the messages exchanged between the summarizer roles.
package models

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel           = "gemini-2.5-flash"
	DefaultEndpoint        = "https://generativelanguage.googleapis.com/v1"
	DefaultTemperature     = 0.7
	DefaultMaxOutputTokens = 1024
	DefaultDBName          = "llm-web-summarizer.db"
	DefaultOutputDir       = "lws-exports"
	DefaultCacheTTL        = 10 * time.Minute

	// APIKeyEnv is read after the YAML file and .env, so the environment
	// always wins over the file.
	APIKeyEnv = "GEMINI_API_KEY"
)

// Config holds runtime configuration. Values come from an optional YAML file,
// then .env/environment, then CLI flags.
type Config struct {
	APIKey          string         `yaml:"api_key"`
	Model           string         `yaml:"model"`
	Endpoint        string         `yaml:"endpoint"`
	Temperature     float64        `yaml:"temperature"`
	MaxOutputTokens int            `yaml:"max_output_tokens"`
	RequestTimeout  time.Duration  `yaml:"request_timeout"`
	SummaryLength   SummaryLength  `yaml:"summary_length"`
	DBPath          string         `yaml:"db_path"`
	OutputDir       string         `yaml:"output_dir"`
	CacheDir        string         `yaml:"cache_dir"`
	CacheTTL        time.Duration  `yaml:"cache_ttl"`
	Eviction        EvictionConfig `yaml:"eviction"`
}

// EvictionConfig controls how long the last extraction is kept in storage.
type EvictionConfig struct {
	Interval time.Duration `yaml:"interval"`
	MaxAge   time.Duration `yaml:"max_age"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Model:           DefaultModel,
		Endpoint:        DefaultEndpoint,
		Temperature:     DefaultTemperature,
		MaxOutputTokens: DefaultMaxOutputTokens,
		SummaryLength:   SummaryLengthFive,
		DBPath:          DefaultDBName,
		OutputDir:       DefaultOutputDir,
		CacheTTL:        DefaultCacheTTL,
		Eviction: EvictionConfig{
			Interval: 5 * time.Minute,
			MaxAge:   30 * time.Minute,
		},
	}
}

// LoadConfig reads the YAML file at path on top of the defaults. A missing
// file is not an error; the defaults are returned instead.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		f, err := os.Open(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to open config %q: %w", path, err)
		default:
			defer f.Close()
			if err := decodeConfig(f, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFromReader decodes YAML from r on top of the defaults without
// touching the environment. Useful in tests.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if err := decodeConfig(r, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeConfig(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// applyEnv loads .env from the working directory when present and lets
// GEMINI_API_KEY override the file.
func (c *Config) applyEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		c.APIKey = key
	}
	return nil
}

// CachePath returns the page cache directory, defaulting to lws under the
// user cache directory.
func (c *Config) CachePath() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "lws")
	}
	return filepath.Join(dir, "lws")
}

// Validate checks that c is coherent. All problems are reported at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Model == "" {
		errs = append(errs, errors.New("model must not be empty"))
	}
	if !strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://") {
		errs = append(errs, fmt.Errorf("endpoint %q must be an http(s) URL", c.Endpoint))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature %v out of range [0, 2]", c.Temperature))
	}
	if c.MaxOutputTokens <= 0 {
		errs = append(errs, fmt.Errorf("max_output_tokens must be positive, got %d", c.MaxOutputTokens))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("cache_ttl must not be negative, got %s", c.CacheTTL))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout))
	}
	if c.Eviction.Interval <= 0 {
		errs = append(errs, fmt.Errorf("eviction.interval must be positive, got %s", c.Eviction.Interval))
	}
	if c.Eviction.MaxAge <= 0 {
		errs = append(errs, fmt.Errorf("eviction.max_age must be positive, got %s", c.Eviction.MaxAge))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
