package pages

import (
	"github.com/ajramos/evtui/internal/heartbeat"
	"github.com/ajramos/evtui/internal/nav"
)

// Modules holds one module per page.
type Modules struct {
	Dashboard     *Dashboard
	Profiles      *Profiles
	Upload        *Upload
	Transcription *Transcription
	Chat          *Chat
	Analytics     *Analytics
}

// New builds every page module over shared deps.
func New(d *Deps) *Modules {
	return &Modules{
		Dashboard:     NewDashboard(d),
		Profiles:      NewProfiles(d),
		Upload:        NewUpload(d),
		Transcription: NewTranscription(d),
		Chat:          NewChat(d),
		Analytics:     NewAnalytics(d),
	}
}

// Map is the page registry handed to the navigator.
func (m *Modules) Map() map[nav.Page]nav.Module {
	return map[nav.Page]nav.Module{
		nav.PageDashboard:     m.Dashboard,
		nav.PageProfiles:      m.Profiles,
		nav.PageUpload:        m.Upload,
		nav.PageTranscription: m.Transcription,
		nav.PageChat:          m.Chat,
		nav.PageAnalytics:     m.Analytics,
	}
}

// Targets are the cache-backed regions the heartbeat keeps in step.
func (m *Modules) Targets() []heartbeat.Target {
	return []heartbeat.Target{
		m.Profiles.Target(),
		m.Dashboard.Target(),
		m.Upload.Target(),
	}
}
