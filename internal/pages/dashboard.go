package pages

import (
	"context"

	"github.com/ajramos/evtui/internal/api"
	"github.com/ajramos/evtui/internal/heartbeat"
	"github.com/ajramos/evtui/internal/view"
)

// Dashboard page regions
const (
	RegionDashboardStats  = "dashboard-stats"
	RegionDashboardRecent = "dashboard-recent"
)

// Dashboard shows store totals and the most recent profiles.
type Dashboard struct {
	d      *Deps
	recent *view.Renderer[api.Profile]
}

// NewDashboard creates the dashboard module.
func NewDashboard(d *Deps) *Dashboard {
	return &Dashboard{
		d: d,
		recent: &view.Renderer[api.Profile]{
			Region:     RegionDashboardRecent,
			Registry:   d.Regions,
			Collection: d.Profiles,
			Format:     func(items []api.Profile) string { return formatRecentProfiles(items, d.LabelWidth) },
			EmptyText:  "No profiles yet",
		},
	}
}

func (m *Dashboard) Initialize(ctx context.Context) error {
	if m.d.Profiles.Len() == 0 {
		m.d.Profiles.Restore(ctx)
	}
	if m.d.Profiles.Len() > 0 {
		m.render()
	} else {
		m.d.loading(RegionDashboardRecent, "Loading...")
	}
	m.d.loading(RegionDashboardStats, "Loading statistics...")

	m.d.spawn(func() {
		stats, err := m.d.ProfileSvc.DashboardStats(ctx)
		if err != nil {
			m.d.logf("dashboard: stats: %v", err)
			m.d.write(RegionDashboardStats, "Statistics unavailable")
			return
		}
		m.d.write(RegionDashboardStats, formatStats(stats))
	})
	m.d.spawn(func() {
		if err := refreshCollection(ctx, m.d.Profiles); err != nil {
			m.d.logf("dashboard: refresh profiles: %v", err)
			return
		}
		m.render()
	})
	return nil
}

func (m *Dashboard) Refresh(ctx context.Context) error {
	return m.Initialize(ctx)
}

// Target keeps the recent list repaired by the heartbeat.
func (m *Dashboard) Target() heartbeat.Target {
	return &heartbeat.CollectionTarget[api.Profile]{
		Renderer: m.recent,
		Spawn:    m.d.Go,
		Logger:   m.d.Logger,
	}
}

func (m *Dashboard) render() {
	if err := m.recent.Render(); err != nil {
		m.d.logf("dashboard: %v", err)
	}
}
