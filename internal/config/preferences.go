package config

import "strings"

// PreferencesKey is the persistent cache key of the user's preferences.
const PreferencesKey = "preferences"

// Preferences are user choices kept in the local cache, not in the config file
type Preferences struct {
	Theme         string `json:"theme"`
	TTSEnabled    bool   `json:"ttsEnabled"`
	AutoPlayAudio bool   `json:"autoPlayAudio"`
	Language      string `json:"language"`
	Notifications bool   `json:"notifications"`
	// DataRetention is in days; 0 keeps data forever.
	DataRetention int `json:"dataRetention"`
}

// DefaultPreferences returns the preferences of a fresh install.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         "dark",
		Language:      "en",
		Notifications: true,
		DataRetention: 365,
	}
}

// Normalize fills blank fields from the defaults and clamps bad values.
func (p Preferences) Normalize() Preferences {
	def := DefaultPreferences()
	p.Theme = strings.TrimSpace(strings.ToLower(p.Theme))
	if p.Theme == "" {
		p.Theme = def.Theme
	}
	p.Language = strings.TrimSpace(strings.ToLower(p.Language))
	if p.Language == "" {
		p.Language = def.Language
	}
	if p.DataRetention < 0 {
		p.DataRetention = 0
	}
	// audio can only autoplay when it is generated
	if !p.TTSEnabled {
		p.AutoPlayAudio = false
	}
	return p
}
