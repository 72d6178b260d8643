package models

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigFromReader_Overrides(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader(`
api_key: abc
model: gemini-2.5-pro
temperature: 0.2
summary_length: "10"
eviction:
  interval: 1m
  max_age: 10m
`))
	if err != nil {
		t.Fatalf("LoadConfigFromReader() error = %v", err)
	}

	if cfg.APIKey != "abc" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "abc")
	}
	if cfg.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q, want %q", cfg.Model, "gemini-2.5-pro")
	}
	if cfg.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", cfg.Temperature)
	}
	if cfg.SummaryLength != SummaryLengthTen {
		t.Errorf("SummaryLength = %q, want %q", cfg.SummaryLength, SummaryLengthTen)
	}
	if cfg.Eviction.Interval != time.Minute || cfg.Eviction.MaxAge != 10*time.Minute {
		t.Errorf("Eviction = %+v, want 1m/10m", cfg.Eviction)
	}
	// Untouched keys keep their defaults.
	if cfg.MaxOutputTokens != DefaultMaxOutputTokens {
		t.Errorf("MaxOutputTokens = %d, want %d", cfg.MaxOutputTokens, DefaultMaxOutputTokens)
	}
}

func TestLoadConfigFromReader_Empty(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadConfigFromReader() error = %v", err)
	}
	if cfg.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", cfg.Model, DefaultModel)
	}
	if cfg.Eviction.MaxAge != 30*time.Minute || cfg.Eviction.Interval != 5*time.Minute {
		t.Errorf("Eviction = %+v, want 5m/30m", cfg.Eviction)
	}
}

func TestLoadConfigFromReader_UnknownField(t *testing.T) {
	_, err := LoadConfigFromReader(strings.NewReader("modle: typo\n"))
	if err == nil {
		t.Fatal("LoadConfigFromReader() error = nil, want unknown field error")
	}
}

func TestLoadConfigFromReader_Invalid(t *testing.T) {
	_, err := LoadConfigFromReader(strings.NewReader("temperature: 3\nmax_output_tokens: 0\n"))
	if err == nil {
		t.Fatal("LoadConfigFromReader() error = nil, want validation error")
	}
	for _, want := range []string{"temperature", "max_output_tokens"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(APIKeyEnv, "from-env")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "from-env")
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("api_key: from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(APIKeyEnv, "")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.APIKey != "from-file" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "from-file")
	}

	t.Setenv(APIKeyEnv, "from-env")
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "from-env")
	}
}

func TestSummaryLength_BulletCount(t *testing.T) {
	tests := map[SummaryLength]int{
		SummaryLengthFive:          5,
		SummaryLengthTen:           10,
		SummaryLengthComprehensive: 0,
		"":                         0,
		"7":                        0,
	}
	for length, want := range tests {
		if got := length.BulletCount(); got != want {
			t.Errorf("SummaryLength(%q).BulletCount() = %d, want %d", length, got, want)
		}
	}
}

func TestConfig_CachePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheDir = "/tmp/pages"
	if got := cfg.CachePath(); got != "/tmp/pages" {
		t.Errorf("CachePath() = %q, want /tmp/pages", got)
	}

	cfg.CacheDir = ""
	if got := cfg.CachePath(); filepath.Base(got) != "lws" {
		t.Errorf("CachePath() = %q, want a directory named lws", got)
	}
}
