package pages

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ajramos/evtui/internal/api"
	"github.com/ajramos/evtui/internal/cache"
	"github.com/ajramos/evtui/internal/config"
	"github.com/ajramos/evtui/internal/services"
	"github.com/ajramos/evtui/internal/tasks"
	"github.com/ajramos/evtui/internal/view"
)

// Collection keys in the persistent cache
const (
	ProfilesKey = "collection.profiles"
	FilesKey    = "collection.files"
)

// Notifier surfaces messages in the status bar
type Notifier interface {
	ShowInfo(ctx context.Context, msg string)
	ShowWarning(ctx context.Context, msg string)
	ShowError(ctx context.Context, msg string)
	ShowSuccess(ctx context.Context, msg string)
}

// Selection is the active-profile slot of the application state
type Selection interface {
	ActiveProfile() (int64, bool)
	SelectProfile(id int64)
	ClearProfile()
}

// Confirmer asks the user a yes/no question and blocks for the answer.
type Confirmer interface {
	Confirm(ctx context.Context, question string) bool
}

// Deps are the collaborators shared by all page modules.
type Deps struct {
	Regions  *view.Registry
	Profiles *cache.Collection[api.Profile]
	Files    *cache.Collection[api.UploadedFile]

	ProfileSvc  services.ProfileService
	FileSvc     services.FileService
	Transcriber services.TranscriptionService
	Chat        services.ChatService
	Analytics   services.AnalyticsService

	Poller       *tasks.Poller
	PollInterval time.Duration

	Notifier    Notifier
	Selection   Selection
	Confirmer   Confirmer
	Preferences func() config.Preferences

	// Go runs network work off the UI goroutine.
	Go func(fn func())
	// Report surfaces a failed user action once.
	Report func(ctx context.Context, err error)

	Logger     *log.Logger
	LabelWidth int
}

// NewProfilesCollection creates the cached profile list.
func NewProfilesCollection(store *cache.Persistent, svc services.ProfileService) *cache.Collection[api.Profile] {
	return cache.NewCollection[api.Profile](ProfilesKey, store, svc.ListProfiles, func(p api.Profile) string { return p.Name })
}

// NewFilesCollection creates the cached file list of the active profile. With
// no active profile the list is empty.
func NewFilesCollection(store *cache.Persistent, svc services.FileService, sel Selection) *cache.Collection[api.UploadedFile] {
	fetch := func(ctx context.Context) ([]api.UploadedFile, error) {
		id, ok := sel.ActiveProfile()
		if !ok {
			return nil, nil
		}
		return svc.ListFiles(ctx, id)
	}
	return cache.NewCollection[api.UploadedFile](FilesKey, store, fetch, func(f api.UploadedFile) string { return f.Filename })
}

// write puts plain text into a region. Missing regions are logged, not fatal.
func (d *Deps) write(region, text string) {
	r, ok := d.Regions.Lookup(region)
	if !ok {
		d.logf("pages: region %s not mounted", region)
		return
	}
	if err := r.Render(text, 0); err != nil {
		d.logf("pages: write %s: %v", region, err)
	}
}

func (d *Deps) loading(region, text string) {
	if r, ok := d.Regions.Lookup(region); ok {
		_ = r.SetLoading(text)
	}
}

func (d *Deps) activeProfile() (int64, bool) {
	if d.Selection == nil {
		return 0, false
	}
	return d.Selection.ActiveProfile()
}

func (d *Deps) requireProfile() (int64, error) {
	id, ok := d.activeProfile()
	if !ok {
		return 0, services.ErrNoProfile
	}
	return id, nil
}

func (d *Deps) prefs() config.Preferences {
	if d.Preferences == nil {
		return config.DefaultPreferences()
	}
	return d.Preferences()
}

func (d *Deps) confirm(ctx context.Context, question string) bool {
	if d.Confirmer == nil {
		return true
	}
	return d.Confirmer.Confirm(ctx, question)
}

func (d *Deps) spawn(fn func()) {
	if d.Go != nil {
		d.Go(fn)
		return
	}
	go fn()
}

func (d *Deps) notifySuccess(ctx context.Context, msg string) {
	if d.Notifier != nil {
		d.Notifier.ShowSuccess(ctx, msg)
	}
}

func (d *Deps) notifyInfo(ctx context.Context, msg string) {
	if d.Notifier != nil {
		d.Notifier.ShowInfo(ctx, msg)
	}
}

func (d *Deps) notifyWarning(ctx context.Context, msg string) {
	if d.Notifier != nil {
		d.Notifier.ShowWarning(ctx, msg)
	}
}

func (d *Deps) notifyError(ctx context.Context, msg string) {
	if d.Notifier != nil {
		d.Notifier.ShowError(ctx, msg)
	}
}

// report surfaces err once and returns it marked, so outer error boundaries
// only log it.
func (d *Deps) report(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if d.Report != nil {
		d.Report(ctx, err)
	} else {
		d.logf("pages: %v", err)
		d.notifyError(ctx, api.UserMessage(err))
	}
	return api.MarkSurfaced(err)
}

// refreshCollection treats a refresh already in flight, or one dropped by an
// invalidation, as success. Callers then render the current snapshot, which
// may predate the fetch; the heartbeat redraws the region once the running
// refresh bumps the generation.
func refreshCollection[T any](ctx context.Context, c *cache.Collection[T]) error {
	err := c.Refresh(ctx)
	if errors.Is(err, cache.ErrRefreshInFlight) || errors.Is(err, cache.ErrRefreshSuperseded) {
		return nil
	}
	return err
}

func (d *Deps) logf(format string, args ...any) {
	if d.Logger != nil {
		d.Logger.Printf(format, args...)
	}
}
