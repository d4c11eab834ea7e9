package config

import (
	"fmt"
	"sync"
)

// Manager owns the loaded configuration
type Manager struct {
	mu         sync.RWMutex
	config     *Config
	configPath string
}

// NewManager creates a manager holding the defaults
func NewManager() *Manager {
	return &Manager{config: DefaultConfig()}
}

// LoadFromFile loads, overlays the environment, expands paths and validates.
func (m *Manager) LoadFromFile(configPath string, getenv func(string) string) error {
	configPath = ExpandPath(configPath)
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyEnv(getenv)
	m.applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	m.mu.Lock()
	m.config = cfg
	m.configPath = configPath
	m.mu.Unlock()
	return nil
}

// Path returns the file the configuration was loaded from
func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.configPath
}

// GetConfig returns a copy of the current configuration
func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyConfig(m.config)
}

// Update applies fn to a copy of the configuration and installs it when valid.
func (m *Manager) Update(fn func(*Config)) error {
	m.mu.RLock()
	cfg := copyConfig(m.config)
	m.mu.RUnlock()

	fn(cfg)
	m.applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return nil
}

// Save writes the current configuration to the file it came from
func (m *Manager) Save() error {
	m.mu.RLock()
	cfg := copyConfig(m.config)
	path := m.configPath
	m.mu.RUnlock()
	if path == "" {
		return fmt.Errorf("no config path")
	}
	if err := cfg.SaveConfig(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// applyDefaults fills sections left empty by a partial config file
func (m *Manager) applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Keys == (KeyBindings{}) {
		cfg.Keys = def.Keys
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = def.API.BaseURL
	}
	if cfg.Navigation.DefaultPage == "" {
		cfg.Navigation.DefaultPage = def.Navigation.DefaultPage
	}
	if cfg.Layout.Theme == "" {
		cfg.Layout.Theme = def.Layout.Theme
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = DefaultCachePath()
	}
	if cfg.Cache.SessionDir == "" {
		cfg.Cache.SessionDir = DefaultSessionDir()
	}
	cfg.Cache.Path = ExpandPath(cfg.Cache.Path)
	cfg.Cache.SessionDir = ExpandPath(cfg.Cache.SessionDir)
	cfg.Navigation.TemplateDir = ExpandPath(cfg.Navigation.TemplateDir)
	cfg.Layout.CustomThemeDir = ExpandPath(cfg.Layout.CustomThemeDir)
	cfg.LogFile = ExpandPath(cfg.LogFile)
}

func copyConfig(cfg *Config) *Config {
	if cfg == nil {
		return nil
	}
	c := *cfg
	c.Navigation.Preload = append([]string(nil), cfg.Navigation.Preload...)
	return &c
}
