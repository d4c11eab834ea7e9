package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ajramos/evtui/internal/api"
	"github.com/ajramos/evtui/internal/bus"
	"github.com/ajramos/evtui/internal/cache"
	"github.com/ajramos/evtui/internal/config"
	"github.com/ajramos/evtui/internal/heartbeat"
	"github.com/ajramos/evtui/internal/metrics"
	"github.com/ajramos/evtui/internal/nav"
	"github.com/ajramos/evtui/internal/pages"
	"github.com/ajramos/evtui/internal/services"
	"github.com/ajramos/evtui/internal/tasks"
	"github.com/ajramos/evtui/internal/view"
	"github.com/rivo/tview"
)

// Legacy names of page.changed kept for older subscribers
const (
	legacyPageChanged       = "pageChanged"
	legacyNavigationChanged = "navigation:changed"
)

// Services are the backend operations the pages use.
type Services struct {
	Profiles      services.ProfileService
	Files         services.FileService
	Transcription services.TranscriptionService
	Progress      services.ProgressService
	Chat          services.ChatService
	Analytics     services.AnalyticsService
	Health        services.HealthService
}

// Options configure NewApp. Only Config and Services are required.
type Options struct {
	Config    *config.Config
	Logger    *log.Logger
	Cache     *cache.Persistent
	Sessions  *cache.SessionStore
	Templates *nav.TemplateCache
	Themes    *config.ThemeLoader
	Metrics   *metrics.Recorder
	Services  Services
	// Confirmer replaces the yes/no dialog.
	Confirmer pages.Confirmer
}

// App owns the application state, the page registry and the startup
// sequence, and wires the navigator, poller and heartbeat together.
type App struct {
	*tview.Application
	Keys config.KeyBindings

	cfg       *config.Config
	logger    *log.Logger
	cache     *cache.Persistent
	sessions  *cache.SessionStore
	templates *nav.TemplateCache
	themes    *config.ThemeLoader
	svc       Services

	ctx     context.Context
	cancel  context.CancelFunc
	running atomic.Bool
	ready   atomic.Bool
	ui      *uiQueue
	wg      sync.WaitGroup

	bus          *bus.Bus
	regions      *view.Registry
	history      *nav.History
	navigator    *nav.Navigator
	poller       *tasks.Poller
	heartbeat    *heartbeat.Heartbeat
	connectivity *connectivityMonitor
	deps         *pages.Deps
	modules      *pages.Modules
	errorHandler *ErrorHandler

	// Layout
	root    *tview.Pages
	main    *tview.Flex
	header  *tview.TextView
	body    *tview.Flex
	hint    *tview.TextView
	cmdBar  *tview.InputField
	status  *tview.TextView
	cmdMode bool

	// Command bar history, touched only on the event loop.
	cmdHistory      []string
	cmdHistoryIndex int

	mu       sync.RWMutex
	state    ApplicationState
	prefs    config.Preferences
	colors   *config.ColorsConfig
	meta     nav.Meta
	pageHint string
	started  bool
	subs     []*bus.Subscription
	stopOnce sync.Once
	startErr error

	// highlighted is the page in the header menu; shown is the page whose
	// regions are on screen, empty while loading or on the error view.
	highlighted nav.Page
	shown       nav.Page
}

// NewApp builds the application. Nothing touches the network until Start.
func NewApp(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if opts.Cache == nil {
		opts.Cache = cache.NewPersistent(cache.NewMemoryBackend(), logger)
	}
	if opts.Templates == nil {
		opts.Templates = nav.NewTemplateCache(nav.NewFileSource(cfg.Navigation.TemplateDir), logger)
	}
	if opts.Themes == nil {
		opts.Themes = config.NewThemeLoader(cfg.Layout.CustomThemeDir)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		Application: tview.NewApplication(),
		Keys:        cfg.Keys,
		cfg:         cfg,
		logger:      logger,
		cache:       opts.Cache,
		sessions:    opts.Sessions,
		templates:   opts.Templates,
		themes:      opts.Themes,
		svc:         opts.Services,
		ctx:         ctx,
		cancel:      cancel,
		bus:         bus.New(logger),
		regions:     view.NewRegistry(),
		history:     nav.NewHistory(cfg.Navigation.HistorySize),
		state:       ApplicationState{IsOnline: true},
		prefs:       config.DefaultPreferences(),
		colors:      config.DefaultColors(),
	}
	a.ui = newUIQueue(func(fn func()) { a.QueueUpdateDraw(fn) }, &a.running)
	a.ui.onPanic = func(r any) { a.recovered("ui", r) }

	a.initComponents()

	a.errorHandler = NewErrorHandler(a.dispatch, a.status, logger)
	a.errorHandler.SetBaseline(a.statusBaseline)
	a.errorHandler.SetColors(func() config.StatusColors { return a.theme().Status })
	a.errorHandler.SetMuted(a.notificationMuted)
	a.errorHandler.SetPublisher(func(msg string, level LogLevel) {
		a.bus.Emit(bus.Notification, strings.ToLower(a.errorHandler.levelToString(level)), msg)
	})

	// Typed nil observers would be called, so only set them when present.
	var (
		navObs  nav.Observer
		pollObs tasks.Observer
		beatObs heartbeat.Observer
	)
	if opts.Metrics != nil {
		navObs, pollObs, beatObs = opts.Metrics, opts.Metrics, opts.Metrics
	}

	a.poller = tasks.NewPoller(opts.Services.Progress,
		tasks.WithNotifier(a.errorHandler),
		tasks.WithDispatcher(a.dispatch),
		tasks.WithObserver(pollObs),
		tasks.WithLogger(logger),
		tasks.WithPublisher(a.bus),
	)

	confirmer := opts.Confirmer
	if confirmer == nil {
		confirmer = &modalConfirmer{app: a}
	}
	a.deps = &pages.Deps{
		Regions:      a.regions,
		Profiles:     pages.NewProfilesCollection(opts.Cache, opts.Services.Profiles),
		Files:        pages.NewFilesCollection(opts.Cache, opts.Services.Files, a),
		ProfileSvc:   opts.Services.Profiles,
		FileSvc:      opts.Services.Files,
		Transcriber:  opts.Services.Transcription,
		Chat:         opts.Services.Chat,
		Analytics:    opts.Services.Analytics,
		Poller:       a.poller,
		PollInterval: cfg.PollInterval(),
		Notifier:     a.errorHandler,
		Selection:    a,
		Confirmer:    confirmer,
		Preferences:  a.Preferences,
		Go:           func(fn func()) { a.Go("page", fn) },
		Report:       a.ReportError,
		Logger:       logger,
		LabelWidth:   cfg.Layout.LabelWidth,
	}
	a.deps.Profiles.OnChange(func(gen uint64) {
		a.bus.Emit(bus.CollectionUpdated, pages.ProfilesKey, gen)
	})
	a.deps.Files.OnChange(func(gen uint64) {
		a.bus.Emit(bus.CollectionUpdated, pages.FilesKey, gen)
	})
	a.modules = pages.New(a.deps)

	a.navigator = nav.NewNavigator(ctx, nav.Config{
		Modules:       a.modules.Map(),
		Templates:     opts.Templates,
		Stage:         &stage{app: a},
		Bus:           a.bus,
		History:       a.history,
		Logger:        logger,
		Observer:      navObs,
		FadeDuration:  cfg.FadeDuration(),
		KeepLifetimes: cfg.Navigation.KeepPollsOnNavigate,
		OnModuleError: a.onModuleError,
	})

	a.heartbeat = heartbeat.New(
		heartbeat.WithLogger(logger),
		heartbeat.WithObserver(beatObs),
		heartbeat.WithPeriod(cfg.HeartbeatPeriod()),
	)
	for _, t := range a.modules.Targets() {
		a.heartbeat.Add(t)
	}

	a.connectivity = newConnectivityMonitor(opts.Services.Health, cfg.ConnectivityInterval(), a.setOnline, logger)

	a.bindKeys()
	return a
}

// Start runs the startup sequence, each step finishing before the next:
// preferences, core components, the first page, global listeners, ready.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return errors.New("app already started")
	}
	a.started = true
	a.mu.Unlock()
	context.AfterFunc(ctx, a.cancel)

	a.loadPreferences(ctx)
	a.logf("app: preferences loaded (theme %s)", a.Preferences().Theme)
	a.pruneCache(ctx)

	a.bus.Alias(legacyPageChanged, bus.PageChanged)
	a.bus.Alias(legacyNavigationChanged, bus.PageChanged)
	if err := a.navigator.Validate(); err != nil {
		a.logf("app: startup aborted: %v", err)
		return fmt.Errorf("startup: %w", err)
	}
	a.templates.Preload(ctx, a.preloadPages())
	if err := a.applyTheme(a.Preferences().Theme); err != nil {
		a.logf("app: theme %q: %v; using %s", a.Preferences().Theme, err, a.cfg.Layout.Theme)
		if err := a.applyTheme(a.cfg.Layout.Theme); err != nil {
			a.logf("app: theme %q: %v", a.cfg.Layout.Theme, err)
		}
	}
	a.logf("app: core components ready")

	page := a.resume()
	if _, err := a.navigator.Restore(a.ctx, page); err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	if cur := a.navigator.Current(); cur != "" {
		if a.history.Len() == 0 {
			a.history.Push(cur)
		}
		a.SetState(StatePatch{CurrentPage: &cur})
	}
	a.logf("app: initial page %s", page)

	a.attachListeners()
	if err := a.connectivity.Start(a.ctx); err != nil {
		a.logf("app: connectivity monitor: %v", err)
	}
	if a.cfg.Heartbeat.Enabled {
		if err := a.heartbeat.Start(a.ctx); err != nil {
			a.logf("app: heartbeat: %v", err)
		}
	}
	a.logf("app: listeners attached")

	a.ready.Store(true)
	a.bus.Emit(bus.AppReady, "", a.State())
	a.logf("app: ready")
	return nil
}

// Run starts the event loop and runs Start alongside it. It returns when the
// user quits or startup fails.
func (a *App) Run(ctx context.Context) error {
	a.SetRoot(a.root, true)
	a.running.Store(true)
	defer a.running.Store(false)

	go func() {
		if err := a.Start(ctx); err != nil {
			a.mu.Lock()
			a.startErr = err
			a.mu.Unlock()
			a.Application.Stop()
		}
	}()
	if err := a.Application.Run(); err != nil {
		return err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.startErr
}

// Stop persists the session and preferences, stops background work and
// leaves the event loop. Later calls do nothing.
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		a.persistSession()
		a.savePreferences(context.Background())
		a.connectivity.Stop()
		if err := a.heartbeat.Stop(); err != nil {
			a.logf("app: stop heartbeat: %v", err)
		}
		a.navigator.Close()
		a.mu.Lock()
		subs := a.subs
		a.subs = nil
		a.mu.Unlock()
		for _, s := range subs {
			s.Unsubscribe()
		}
		a.cancel()
		if a.running.Load() {
			a.Application.Stop()
		}
		a.logf("app: stopped")
	})
}

// Ready reports whether Start completed.
func (a *App) Ready() bool { return a.ready.Load() }

// Bus exposes the event bus to embedders.
func (a *App) Bus() *bus.Bus { return a.bus }

// Navigator exposes the page router.
func (a *App) Navigator() *nav.Navigator { return a.navigator }

// Heartbeat exposes the reconciliation loop.
func (a *App) Heartbeat() *heartbeat.Heartbeat { return a.heartbeat }

// GetErrorHandler returns the status bar notifier.
func (a *App) GetErrorHandler() *ErrorHandler { return a.errorHandler }

// Preferences returns the current user preferences.
func (a *App) Preferences() config.Preferences {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.prefs
}

// UpdatePreferences applies fn and stores the result.
func (a *App) UpdatePreferences(ctx context.Context, fn func(*config.Preferences)) {
	a.mu.Lock()
	p := a.prefs
	fn(&p)
	a.prefs = p.Normalize()
	a.mu.Unlock()
	a.savePreferences(ctx)
}

func (a *App) loadPreferences(ctx context.Context) {
	var p config.Preferences
	if !a.cache.Get(ctx, config.PreferencesKey, &p) {
		p = config.DefaultPreferences()
		if a.cfg.Layout.Theme != "" {
			p.Theme = a.cfg.Layout.Theme
		}
	}
	a.mu.Lock()
	a.prefs = p.Normalize()
	a.mu.Unlock()
}

// pruneCache drops cached data older than the retention preference.
func (a *App) pruneCache(ctx context.Context) {
	days := a.Preferences().DataRetention
	if days <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	if n := a.cache.Prune(ctx, cutoff); n > 0 {
		a.logf("app: pruned %d cache entries older than %d days", n, days)
	}
}

// notificationMuted silences info and success messages when the user turned
// notifications off. Warnings and errors always show.
func (a *App) notificationMuted(level LogLevel) bool {
	if level != LogLevelInfo && level != LogLevelSuccess {
		return false
	}
	return !a.Preferences().Notifications
}

func (a *App) savePreferences(ctx context.Context) {
	a.cache.Set(ctx, config.PreferencesKey, a.Preferences())
}

// resume picks the first page: the page of a recent session snapshot, or
// the configured default. A resumed session also restores the active
// profile and history.
func (a *App) resume() nav.Page {
	def, ok := nav.ParsePage(a.cfg.Navigation.DefaultPage)
	if !ok {
		def = nav.PageDashboard
	}
	if a.sessions == nil {
		return def
	}
	s, ok := a.sessions.Load(a.cfg.SessionMaxAge())
	if !ok {
		return def
	}
	if s.ActiveProfile != nil {
		a.SetState(StatePatch{ActiveProfile: s.ActiveProfile})
	}
	if len(s.History) > 0 {
		hist := make([]nav.Page, 0, len(s.History))
		for _, h := range s.History {
			hist = append(hist, nav.Page(h))
		}
		a.history.Restore(hist)
	}
	page, ok := nav.ParsePage(s.CurrentPage)
	if !ok {
		a.logf("app: session %s has unknown page %q", s.ID, s.CurrentPage)
		return def
	}
	a.logf("app: resumed session %s on %s", s.ID, page)
	return page
}

func (a *App) persistSession() {
	if a.sessions == nil {
		return
	}
	st := a.State()
	page := st.CurrentPage
	if page == "" {
		page = a.navigator.Current()
	}
	if page == "" {
		return
	}
	var hist []string
	for _, p := range a.history.Pages() {
		hist = append(hist, string(p))
	}
	a.sessions.Save(cache.Session{
		CurrentPage:   string(page),
		ActiveProfile: st.ActiveProfile,
		History:       hist,
	})
}

func (a *App) preloadPages() []nav.Page {
	if len(a.cfg.Navigation.Preload) == 0 {
		return nav.EagerPages
	}
	out := make([]nav.Page, 0, len(a.cfg.Navigation.Preload))
	for _, s := range a.cfg.Navigation.Preload {
		if p, ok := nav.ParsePage(s); ok {
			out = append(out, p)
		}
	}
	return out
}

// attachListeners subscribes the global handlers: page changes, the
// uncaught-error boundary and profile updates for the header.
func (a *App) attachListeners() {
	subs := []*bus.Subscription{
		a.bus.Subscribe(bus.PageChanged, a.onPageChanged),
		a.bus.Subscribe(bus.UncaughtError, func(ev bus.Event) {
			if err, ok := ev.Payload.(error); ok {
				a.ReportError(a.ctx, err)
			}
		}),
		a.bus.Subscribe(bus.CollectionUpdated, func(ev bus.Event) {
			if ev.Reason == pages.ProfilesKey {
				a.refreshChrome()
			}
		}),
		a.bus.Subscribe(bus.TaskFinished, func(ev bus.Event) {
			if t, ok := ev.Payload.(tasks.Task); ok {
				a.logf("app: %s task %s %s after %s", t.Kind, t.ID, ev.Reason, time.Since(t.StartTime).Round(time.Millisecond))
			}
		}),
	}
	a.mu.Lock()
	a.subs = append(a.subs, subs...)
	a.mu.Unlock()
}

// onPageChanged records the completed navigation. A page.changed for the
// page already current and initialized is ignored, so a second listener
// reacting to the same transition cannot start another activation.
func (a *App) onPageChanged(ev bus.Event) {
	change, ok := ev.Payload.(nav.PageChange)
	if !ok {
		return
	}
	if a.State().CurrentPage == change.To && a.navigator.Initialized(change.To) {
		a.logf("app: ignored page.changed re-entry for %s (%s)", change.To, ev.Reason)
		return
	}
	to := change.To
	a.SetState(StatePatch{CurrentPage: &to})
}

func (a *App) onModuleError(page nav.Page, err error) {
	a.ReportError(a.ctx, fmt.Errorf("%s: %w", page, err))
}

func (a *App) setOnline(online bool) {
	if a.State().IsOnline == online {
		return
	}
	a.SetState(StatePatch{IsOnline: &online})
	reason := "offline"
	if online {
		reason = "online"
		a.errorHandler.ShowSuccess(a.ctx, "Connection restored")
	} else {
		a.errorHandler.ShowWarning(a.ctx, "Backend unreachable, working offline")
	}
	a.bus.Emit(bus.ConnectivityChanged, reason, online)
}

// Navigate opens page in the background. Requests made while another
// transition runs are dropped.
func (a *App) Navigate(page nav.Page) {
	a.Go("navigate", func() {
		out, err := a.navigator.NavigateTo(a.ctx, page, true)
		a.afterNavigation(out, err)
	})
}

func (a *App) afterNavigation(out nav.Outcome, err error) {
	if err != nil {
		a.ReportError(a.ctx, err)
		return
	}
	if out == nav.OutcomeDropped {
		a.logf("app: navigation dropped")
	}
}

// Go runs fn on a new goroutine inside the error boundary.
func (a *App) Go(scope string, fn func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.recoverPanic(scope)
		fn()
	}()
}

// Wait blocks until every goroutine started with Go has returned.
func (a *App) Wait() { a.wg.Wait() }

func (a *App) recoverPanic(scope string) {
	if r := recover(); r != nil {
		a.recovered(scope, r)
	}
}

func (a *App) recovered(scope string, r any) {
	err := fmt.Errorf("%s: panic: %v", scope, r)
	a.logf("app: %v\n%s", err, debug.Stack())
	a.bus.Emit(bus.UncaughtError, scope, err)
}

// ReportError logs err and shows it once. Errors already shown, cancelled
// requests and transport failures while offline are only logged.
func (a *App) ReportError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	a.logf("app: error: %v", err)
	switch {
	case api.IsSurfaced(err), errors.Is(err, context.Canceled):
		return
	case api.IsTransport(err) && !a.State().IsOnline:
		return
	}
	a.errorHandler.ShowError(ctx, api.UserMessage(err))
}

// dispatch runs fn on the event loop, or inline before it starts.
func (a *App) dispatch(fn func()) { a.ui.Dispatch(fn) }

func (a *App) logf(format string, args ...any) {
	if a.logger != nil {
		a.logger.Printf(format, args...)
	}
}
