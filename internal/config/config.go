package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/tidwall/jsonc"
)

const appDir = "evtui"

// APIConfig holds backend connection settings
type APIConfig struct {
	BaseURL string `json:"base_url"`
	Timeout string `json:"timeout"`
}

// NavigationConfig controls page transitions
type NavigationConfig struct {
	DefaultPage string   `json:"default_page"`
	FadeMs      int      `json:"fade_ms"`
	Preload     []string `json:"preload"`
	// TemplateDir overrides the built-in page templates; changes are picked up live.
	TemplateDir string `json:"template_dir"`
	// KeepPollsOnNavigate lets task polls outlive the page that started them.
	KeepPollsOnNavigate bool `json:"keep_polls_on_navigate"`
	HistorySize         int  `json:"history_size"`
}

// PollingConfig controls background task polling
type PollingConfig struct {
	IntervalMs int `json:"interval_ms"`
}

// HeartbeatConfig controls the region reconciliation loop
type HeartbeatConfig struct {
	Enabled  bool `json:"enabled"`
	PeriodMs int  `json:"period_ms"`
}

// CacheConfig locates local state
type CacheConfig struct {
	Path          string `json:"path"`
	SessionDir    string `json:"session_dir"`
	SessionMaxAge string `json:"session_max_age"`
}

// ConnectivityConfig controls the backend health check
type ConnectivityConfig struct {
	Interval string `json:"interval"`
}

// MetricsConfig enables the Prometheus listener when Addr is set
type MetricsConfig struct {
	Addr string `json:"addr"`
}

// LayoutConfig defines UI presentation
type LayoutConfig struct {
	Theme           string `json:"theme"`
	CustomThemeDir  string `json:"custom_theme_dir"`
	ShowBreadcrumbs bool   `json:"show_breadcrumbs"`
	ShowBorders     bool   `json:"show_borders"`
	LabelWidth      int    `json:"label_width"`
}

// KeyBindings defines keyboard shortcuts for the TUI
type KeyBindings struct {
	Quit        string `json:"quit"`
	CommandMode string `json:"command_mode"`
	Back        string `json:"back"`
	Forward     string `json:"forward"`
	Refresh     string `json:"refresh"`
	Help        string `json:"help"`

	Dashboard     string `json:"dashboard"`
	Profiles      string `json:"profiles"`
	Upload        string `json:"upload"`
	Transcription string `json:"transcription"`
	Chat          string `json:"chat"`
	Analytics     string `json:"analytics"`
}

// Config holds all configuration for evtui
type Config struct {
	API          APIConfig          `json:"api"`
	Navigation   NavigationConfig   `json:"navigation"`
	Polling      PollingConfig      `json:"polling"`
	Heartbeat    HeartbeatConfig    `json:"heartbeat"`
	Cache        CacheConfig        `json:"cache"`
	Connectivity ConnectivityConfig `json:"connectivity"`
	Metrics      MetricsConfig      `json:"metrics"`
	Layout       LayoutConfig       `json:"layout"`
	Keys         KeyBindings        `json:"keys"`

	// Logging
	LogFile string `json:"log_file"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:8000",
			Timeout: "30s",
		},
		Navigation: NavigationConfig{
			DefaultPage: "dashboard",
			FadeMs:      150,
			Preload:     []string{"dashboard", "profiles", "upload", "chat"},
			HistorySize: 100,
		},
		Polling:      PollingConfig{IntervalMs: 1000},
		Heartbeat:    HeartbeatConfig{Enabled: true, PeriodMs: 500},
		Cache:        CacheConfig{SessionMaxAge: "30m"},
		Connectivity: ConnectivityConfig{Interval: "15s"},
		Layout: LayoutConfig{
			Theme:           "dark",
			ShowBreadcrumbs: true,
			ShowBorders:     true,
			LabelWidth:      40,
		},
		Keys: DefaultKeyBindings(),
	}
}

// DefaultKeyBindings returns default keyboard shortcuts
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		Quit:        "q",
		CommandMode: ":",
		Back:        "[",
		Forward:     "]",
		Refresh:     "R",
		Help:        "?",

		Dashboard:     "1",
		Profiles:      "2",
		Upload:        "3",
		Transcription: "4",
		Chat:          "5",
		Analytics:     "6",
	}
}

// LoadConfig reads a JSON config file; // and /* */ comments and trailing
// commas are accepted. A missing file yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", configPath, err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overlays environment settings. APP_HOST and APP_PORT are the
// backend's own variables; EVTUI_BASE_URL wins over both.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	host, port := getenv("APP_HOST"), getenv("APP_PORT")
	if host != "" || port != "" {
		if host == "" || host == "0.0.0.0" {
			host = "127.0.0.1"
		}
		if port == "" {
			port = "8000"
		}
		c.API.BaseURL = "http://" + net.JoinHostPort(host, port)
	}
	if v := getenv("EVTUI_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := getenv("EVTUI_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := getenv("EVTUI_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	for name, v := range map[string]string{
		"api.timeout":           c.API.Timeout,
		"cache.session_max_age": c.Cache.SessionMaxAge,
		"connectivity.interval": c.Connectivity.Interval,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if c.Navigation.FadeMs < 0 {
		return fmt.Errorf("navigation.fade_ms cannot be negative")
	}
	if c.Polling.IntervalMs < 0 || c.Heartbeat.PeriodMs < 0 {
		return fmt.Errorf("intervals cannot be negative")
	}
	return nil
}

// APITimeout returns the request timeout.
func (c *Config) APITimeout() time.Duration {
	return parseDuration(c.API.Timeout, 30*time.Second)
}

// SessionMaxAge returns how old a session snapshot may be to be resumed.
func (c *Config) SessionMaxAge() time.Duration {
	return parseDuration(c.Cache.SessionMaxAge, 30*time.Minute)
}

// ConnectivityInterval returns the health check period.
func (c *Config) ConnectivityInterval() time.Duration {
	return parseDuration(c.Connectivity.Interval, 15*time.Second)
}

// FadeDuration returns the navigation fade. Zero disables it.
func (c *Config) FadeDuration() time.Duration {
	if c.Navigation.FadeMs <= 0 {
		return -1
	}
	return time.Duration(c.Navigation.FadeMs) * time.Millisecond
}

// PollInterval returns the task poll period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Polling.IntervalMs) * time.Millisecond
}

// HeartbeatPeriod returns the reconciliation period.
func (c *Config) HeartbeatPeriod() time.Duration {
	return time.Duration(c.Heartbeat.PeriodMs) * time.Millisecond
}

func parseDuration(v string, fallback time.Duration) time.Duration {
	if v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// DefaultConfigDir returns ~/.config/evtui
func DefaultConfigDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDir)
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.json")
}

// DefaultCachePath returns the default sqlite cache path
func DefaultCachePath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "cache", "evtui.db")
}

// DefaultSessionDir returns the default session snapshot directory
func DefaultSessionDir() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "session")
}

// DefaultLogDir returns the default log directory path
func DefaultLogDir() string {
	return DefaultConfigDir()
}

// ExpandPath resolves a leading ~.
func ExpandPath(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}
