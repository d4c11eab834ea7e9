package tui

import (
	"testing"

	"github.com/ajramos/evtui/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestGetWelcomeShortcuts_CustomConfig(t *testing.T) {
	app := &App{
		Keys: config.KeyBindings{
			Help:        "F1",
			Profiles:    "p",
			Upload:      "u",
			CommandMode: ";",
			Quit:        "Q",
		},
	}

	shortcuts := app.getWelcomeShortcuts()

	assert.Contains(t, shortcuts, "F1 Help")
	assert.Contains(t, shortcuts, "p Profiles")
	assert.Contains(t, shortcuts, "u Upload")
	assert.Contains(t, shortcuts, "; Commands")
	assert.Contains(t, shortcuts, "Q Quit")
}

func TestGetWelcomeShortcuts_DefaultFallback(t *testing.T) {
	app := &App{}

	shortcuts := app.getWelcomeShortcuts()

	assert.Contains(t, shortcuts, "? Help")
	assert.Contains(t, shortcuts, "2 Profiles")
	assert.Contains(t, shortcuts, "3 Upload")
	assert.Contains(t, shortcuts, ": Commands")
	assert.Contains(t, shortcuts, "q Quit")
}

func TestBuildWelcomeText(t *testing.T) {
	cfg := config.DefaultConfig()
	app := &App{cfg: cfg, Keys: cfg.Keys}

	text := app.buildWelcomeText()

	assert.Contains(t, text, "http://127.0.0.1:8000")
	assert.Contains(t, text, "Loading...")
}
