package tui

import (
	"github.com/ajramos/evtui/internal/bus"
	"github.com/ajramos/evtui/internal/nav"
)

// ApplicationState is the process-wide state owned by App. Readers get
// copies from State.
type ApplicationState struct {
	// CurrentPage is the last page whose navigation completed.
	CurrentPage   nav.Page
	ActiveProfile *int64
	IsOnline      bool
	IsLoading     bool
}

func (s ApplicationState) clone() ApplicationState {
	if s.ActiveProfile != nil {
		id := *s.ActiveProfile
		s.ActiveProfile = &id
	}
	return s
}

// StatePatch is a partial update; nil fields are left alone.
type StatePatch struct {
	CurrentPage   *nav.Page
	ActiveProfile *int64
	// ClearProfile drops the active profile; it wins over ActiveProfile.
	ClearProfile bool
	IsOnline     *bool
	IsLoading    *bool
}

func (p StatePatch) apply(s *ApplicationState) {
	if p.CurrentPage != nil {
		s.CurrentPage = *p.CurrentPage
	}
	if p.ActiveProfile != nil {
		id := *p.ActiveProfile
		s.ActiveProfile = &id
	}
	if p.ClearProfile {
		s.ActiveProfile = nil
	}
	if p.IsOnline != nil {
		s.IsOnline = *p.IsOnline
	}
	if p.IsLoading != nil {
		s.IsLoading = *p.IsLoading
	}
}

// reason names the first field the patch touches; it becomes the Reason of
// the state.changed event.
func (p StatePatch) reason() string {
	switch {
	case p.CurrentPage != nil:
		return "page"
	case p.ActiveProfile != nil || p.ClearProfile:
		return "profile"
	case p.IsOnline != nil:
		return "connectivity"
	case p.IsLoading != nil:
		return "loading"
	default:
		return ""
	}
}

// StateChange is the payload of state.changed
type StateChange struct {
	Old ApplicationState
	New ApplicationState
}

func ptr[T any](v T) *T { return &v }

// State returns a snapshot of the application state.
func (a *App) State() ApplicationState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.clone()
}

// SetState merges patch into the state, publishes state.changed with the old
// and new snapshots, then redraws the header and status bar. Handlers may
// call SetState again.
func (a *App) SetState(patch StatePatch) {
	a.mu.Lock()
	old := a.state.clone()
	patch.apply(&a.state)
	updated := a.state.clone()
	a.mu.Unlock()

	a.bus.Publish(bus.Event{
		Name:    bus.StateChanged,
		Reason:  patch.reason(),
		Payload: StateChange{Old: old, New: updated},
	})
	a.refreshChrome()
}

// ActiveProfile implements pages.Selection.
func (a *App) ActiveProfile() (int64, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.state.ActiveProfile == nil {
		return 0, false
	}
	return *a.state.ActiveProfile, true
}

// SelectProfile implements pages.Selection.
func (a *App) SelectProfile(id int64) {
	a.SetState(StatePatch{ActiveProfile: &id})
}

// ClearProfile implements pages.Selection.
func (a *App) ClearProfile() {
	a.SetState(StatePatch{ClearProfile: true})
}
