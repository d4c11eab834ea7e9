package pages

import (
	"context"
	"fmt"

	"github.com/ajramos/evtui/internal/api"
	"github.com/ajramos/evtui/internal/heartbeat"
	"github.com/ajramos/evtui/internal/services"
	"github.com/ajramos/evtui/internal/view"
)

// Profiles page regions
const (
	RegionProfilesGrid  = "profiles-grid"
	RegionProfileDetail = "profile-detail"
)

// Profiles lists memory profiles and manages the active one.
type Profiles struct {
	d    *Deps
	grid *view.Renderer[api.Profile]
}

// NewProfiles creates the profiles module.
func NewProfiles(d *Deps) *Profiles {
	return &Profiles{
		d: d,
		grid: &view.Renderer[api.Profile]{
			Region:     RegionProfilesGrid,
			Registry:   d.Regions,
			Collection: d.Profiles,
			Format:     func(items []api.Profile) string { return formatProfiles(items, d.LabelWidth) },
			EmptyText:  "No profiles yet. Press n to create one.",
		},
	}
}

// Initialize shows the cached grid at once and refreshes it in the
// background.
func (p *Profiles) Initialize(ctx context.Context) error {
	if p.d.Profiles.Len() == 0 {
		p.d.Profiles.Restore(ctx)
	}
	if p.d.Profiles.Len() > 0 {
		p.renderGrid()
	} else {
		p.d.loading(RegionProfilesGrid, "Loading profiles...")
	}
	p.renderDetail()
	p.d.spawn(func() {
		if err := refreshCollection(ctx, p.d.Profiles); err != nil {
			p.d.logf("profiles: refresh: %v", err)
			return
		}
		p.renderGrid()
		p.renderDetail()
	})
	return nil
}

// Refresh re-renders from the cache and reloads.
func (p *Profiles) Refresh(ctx context.Context) error {
	return p.Initialize(ctx)
}

// Target keeps the grid repaired by the heartbeat.
func (p *Profiles) Target() heartbeat.Target {
	return &heartbeat.CollectionTarget[api.Profile]{
		Renderer: p.grid,
		Spawn:    p.d.Go,
		Logger:   p.d.Logger,
	}
}

// Create stores a new profile and reloads the grid.
func (p *Profiles) Create(ctx context.Context, in api.ProfileInput) (*api.Profile, error) {
	prof, err := p.d.ProfileSvc.CreateProfile(ctx, in)
	if err != nil {
		return nil, p.d.report(ctx, err)
	}
	if err := refreshCollection(ctx, p.d.Profiles); err != nil {
		p.d.logf("profiles: refresh after create: %v", err)
	}
	p.renderGrid()
	p.d.notifySuccess(ctx, fmt.Sprintf("Profile %s created", prof.Name))
	return prof, nil
}

// Delete removes a profile after confirmation. Deleting the active profile
// clears the selection. It reports whether the profile was deleted.
func (p *Profiles) Delete(ctx context.Context, id int64) (bool, error) {
	prof, ok := p.d.Profiles.Find(func(pr api.Profile) bool { return pr.ID == id })
	name := fmt.Sprintf("#%d", id)
	if ok {
		name = prof.Name
	}
	if !p.d.confirm(ctx, fmt.Sprintf("Delete %s and all their memories?", name)) {
		return false, nil
	}
	if err := p.d.ProfileSvc.DeleteProfile(ctx, id); err != nil {
		return false, p.d.report(ctx, err)
	}
	if active, ok := p.d.activeProfile(); ok && active == id {
		p.d.Selection.ClearProfile()
		p.d.Files.Invalidate(ctx)
	}
	if err := refreshCollection(ctx, p.d.Profiles); err != nil {
		p.d.logf("profiles: refresh after delete: %v", err)
	}
	p.renderGrid()
	p.renderDetail()
	p.d.notifySuccess(ctx, fmt.Sprintf("Profile %s deleted", name))
	return true, nil
}

// Select makes id the active profile. The file list of the previous profile
// is dropped.
func (p *Profiles) Select(ctx context.Context, id int64) error {
	prof, ok := p.d.Profiles.Find(func(pr api.Profile) bool { return pr.ID == id })
	if !ok {
		err := fmt.Errorf("profile %d: %w", id, services.ErrNotFound)
		return p.d.report(ctx, err)
	}
	if active, ok := p.d.activeProfile(); ok && active == id {
		return nil
	}
	p.d.Selection.SelectProfile(id)
	p.d.Files.Invalidate(ctx)
	p.renderDetail()
	p.d.notifyInfo(ctx, fmt.Sprintf("Active profile: %s", prof.Name))
	return nil
}

func (p *Profiles) renderGrid() {
	if err := p.grid.Render(); err != nil {
		p.d.logf("profiles: %v", err)
	}
}

func (p *Profiles) renderDetail() {
	id, ok := p.d.activeProfile()
	if !ok {
		p.d.write(RegionProfileDetail, "No active profile. Select one with enter.")
		return
	}
	prof, found := p.d.Profiles.Find(func(pr api.Profile) bool { return pr.ID == id })
	if !found {
		p.d.write(RegionProfileDetail, fmt.Sprintf("Profile #%d", id))
		return
	}
	p.d.write(RegionProfileDetail, formatProfileDetail(prof))
}
