package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var builtinThemes = map[string]func() *ColorsConfig{
	"dark":  DefaultColors,
	"light": LightColors,
}

// ThemeLoader handles loading and saving themes
type ThemeLoader struct {
	themesDir string
}

// NewThemeLoader creates a new theme loader
func NewThemeLoader(themesDir string) *ThemeLoader {
	return &ThemeLoader{themesDir: themesDir}
}

type themeFile struct {
	EvTUI *ColorsConfig `yaml:"evtui"`
}

// Load returns the named theme: <themesDir>/<name>.yaml first, then the
// built-in themes.
func (tl *ThemeLoader) Load(name string) (*ColorsConfig, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".yaml")
	if name == "" {
		return nil, fmt.Errorf("empty theme name")
	}
	if tl.themesDir != "" {
		path := filepath.Join(tl.themesDir, name+".yaml")
		if fileExists(path) {
			return tl.LoadThemeFromFile(path)
		}
	}
	if build, ok := builtinThemes[name]; ok {
		return build(), nil
	}
	return nil, fmt.Errorf("theme not found: %s", name)
}

// LoadThemeFromFile loads a theme from a YAML file
func (tl *ThemeLoader) LoadThemeFromFile(path string) (*ColorsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}
	var theme themeFile
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}
	if theme.EvTUI == nil {
		return nil, fmt.Errorf("invalid theme file: missing evtui section")
	}
	if err := ValidateTheme(theme.EvTUI); err != nil {
		return nil, err
	}
	return theme.EvTUI, nil
}

// ListAvailableThemes returns built-in and custom theme names, sorted
func (tl *ThemeLoader) ListAvailableThemes() []string {
	seen := make(map[string]bool)
	for name := range builtinThemes {
		seen[name] = true
	}
	if tl.themesDir != "" {
		if entries, err := os.ReadDir(tl.themesDir); err == nil {
			for _, entry := range entries {
				if !entry.IsDir() && filepath.Ext(entry.Name()) == ".yaml" {
					seen[strings.TrimSuffix(entry.Name(), ".yaml")] = true
				}
			}
		}
	}
	themes := make([]string, 0, len(seen))
	for name := range seen {
		themes = append(themes, name)
	}
	sort.Strings(themes)
	return themes
}

// SaveThemeToFile saves a theme configuration to <themesDir>/<name>.yaml
func (tl *ThemeLoader) SaveThemeToFile(theme *ColorsConfig, name string) error {
	if err := os.MkdirAll(tl.themesDir, 0o755); err != nil {
		return fmt.Errorf("failed to create themes directory: %w", err)
	}
	data, err := yaml.Marshal(themeFile{EvTUI: theme})
	if err != nil {
		return fmt.Errorf("failed to marshal theme: %w", err)
	}
	if err := os.WriteFile(filepath.Join(tl.themesDir, name+".yaml"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write theme file: %w", err)
	}
	return nil
}

// ValidateTheme validates a theme configuration
func ValidateTheme(theme *ColorsConfig) error {
	if theme == nil {
		return fmt.Errorf("theme is nil")
	}
	required := []struct {
		name  string
		color Color
	}{
		{"body.fgColor", theme.Body.FgColor},
		{"body.bgColor", theme.Body.BgColor},
		{"status.errorColor", theme.Status.ErrorColor},
		{"status.successColor", theme.Status.SuccessColor},
	}
	for _, req := range required {
		if req.color == "" {
			return fmt.Errorf("missing required color: %s", req.name)
		}
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
