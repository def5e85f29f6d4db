package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/abelbrown/cxdash/internal/fetch"
	"github.com/abelbrown/cxdash/internal/metrics"
	"github.com/abelbrown/cxdash/internal/query"
)

// Config is the persistent application configuration
type Config struct {
	API     APIConfig     `json:"api" yaml:"api"`
	UI      UIConfig      `json:"ui" yaml:"ui"`
	Palette PaletteConfig `json:"palette" yaml:"palette"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// APIConfig describes the aggregation API and how hard to hit it
type APIConfig struct {
	BaseURL           string  `json:"base_url" yaml:"base_url"`
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"` // 0 = unlimited
	Burst             int     `json:"burst" yaml:"burst"`
	RequestTimeoutMs  int     `json:"request_timeout_ms" yaml:"request_timeout_ms"` // 0 = wait forever
	FanoutLimit       int     `json:"fanout_limit" yaml:"fanout_limit"`             // concurrent requests in flight
}

// UIConfig holds UI preferences
type UIConfig struct {
	PageSize    int    `json:"page_size" yaml:"page_size"`
	DensityMode string `json:"density_mode" yaml:"density_mode"` // "comfortable" or "compact"
}

// PaletteConfig holds display colors
type PaletteConfig struct {
	Positive string            `json:"positive" yaml:"positive"`
	Negative string            `json:"negative" yaml:"negative"`
	Neutral  string            `json:"neutral" yaml:"neutral"`
	Fallback string            `json:"fallback" yaml:"fallback"`
	Banks    map[string]string `json:"banks" yaml:"banks"`
}

// LogConfig controls diagnostics
type LogConfig struct {
	Level    string `json:"level" yaml:"level"`
	File     string `json:"file,omitempty" yaml:"file,omitempty"`           // diagnostics log; default under ~/.cxdash/logs
	EventLog string `json:"event_log,omitempty" yaml:"event_log,omitempty"` // JSONL event stream; empty disables
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	p := metrics.DefaultPalette()
	return &Config{
		API: APIConfig{
			BaseURL:     "http://localhost:8000",
			Burst:       1,
			FanoutLimit: 8,
		},
		UI: UIConfig{
			PageSize:    query.DefaultPageSize,
			DensityMode: "comfortable",
		},
		Palette: PaletteConfig{
			Positive: p.Positive,
			Negative: p.Negative,
			Neutral:  p.Neutral,
			Fallback: p.Fallback,
			Banks:    p.Banks,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cxdash", "config.json")
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads config from path (ConfigPath when empty), or returns defaults
// when the file does not exist. Values in the file override defaults;
// environment variables override both.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	case isYAML(path):
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to ConfigPath
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes config to path, as YAML for .yaml/.yml and JSON otherwise
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides settings from CXDASH_* environment variables
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("CXDASH_API_BASE"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("CXDASH_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CXDASH_PAGE_SIZE: %w", err)
		}
		c.UI.PageSize = n
	}
	if v := os.Getenv("CXDASH_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("CXDASH_RPS: %w", err)
		}
		c.API.RequestsPerSecond = f
	}
	if v := os.Getenv("CXDASH_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate reports the first setting that cannot work
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url: %q is not an http(s) URL", c.API.BaseURL)
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("api.requests_per_second: must be >= 0, got %v", c.API.RequestsPerSecond)
	}
	if c.API.Burst < 0 || c.API.FanoutLimit < 0 || c.API.RequestTimeoutMs < 0 {
		return fmt.Errorf("api: burst, fanout_limit and request_timeout_ms must be >= 0")
	}
	if c.UI.PageSize < 1 || c.UI.PageSize > 100 {
		return fmt.Errorf("ui.page_size: must be in [1, 100], got %d", c.UI.PageSize)
	}
	if _, err := c.LogLevel(); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (log.Level, error) {
	if c.Log.Level == "" {
		return log.InfoLevel, nil
	}
	return log.ParseLevel(c.Log.Level)
}

// RequestTimeout returns the per-request timeout; zero means none.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.RequestTimeoutMs) * time.Millisecond
}

// FetchOptions returns the client options for the API section.
func (c *Config) FetchOptions() fetch.Options {
	return fetch.Options{
		Timeout:           c.RequestTimeout(),
		RequestsPerSecond: c.API.RequestsPerSecond,
		Burst:             c.API.Burst,
	}
}

// MetricsPalette returns the configured palette, filling blanks from the
// default palette.
func (c *Config) MetricsPalette() metrics.Palette {
	p := metrics.DefaultPalette()
	if c.Palette.Positive != "" {
		p.Positive = c.Palette.Positive
	}
	if c.Palette.Negative != "" {
		p.Negative = c.Palette.Negative
	}
	if c.Palette.Neutral != "" {
		p.Neutral = c.Palette.Neutral
	}
	if c.Palette.Fallback != "" {
		p.Fallback = c.Palette.Fallback
	}
	if len(c.Palette.Banks) > 0 {
		p.Banks = make(map[string]string, len(c.Palette.Banks))
		for k, v := range c.Palette.Banks {
			p.Banks[k] = v
		}
	}
	return p
}

// Compact reports whether the compact density mode is selected.
func (c *Config) Compact() bool {
	return c.UI.DensityMode == "compact"
}
