package pages

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ajramos/evtui/internal/api"
	"github.com/ajramos/evtui/internal/cache"
	"github.com/ajramos/evtui/internal/config"
	"github.com/ajramos/evtui/internal/tasks"
	"github.com/ajramos/evtui/internal/view"
	"github.com/stretchr/testify/mock"
)

type mockProfileService struct {
	mock.Mock
}

func (m *mockProfileService) ListProfiles(ctx context.Context) ([]api.Profile, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]api.Profile)
	return items, args.Error(1)
}

func (m *mockProfileService) GetProfile(ctx context.Context, id int64) (*api.Profile, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*api.Profile)
	return p, args.Error(1)
}

func (m *mockProfileService) CreateProfile(ctx context.Context, in api.ProfileInput) (*api.Profile, error) {
	args := m.Called(ctx, in)
	p, _ := args.Get(0).(*api.Profile)
	return p, args.Error(1)
}

func (m *mockProfileService) UpdateProfile(ctx context.Context, id int64, in api.ProfileInput) (*api.Profile, error) {
	args := m.Called(ctx, id, in)
	p, _ := args.Get(0).(*api.Profile)
	return p, args.Error(1)
}

func (m *mockProfileService) DeleteProfile(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProfileService) DashboardStats(ctx context.Context) (*api.DashboardStats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*api.DashboardStats)
	return s, args.Error(1)
}

type mockFileService struct {
	mock.Mock
}

func (m *mockFileService) Upload(ctx context.Context, profileID int64, paths []string) (*api.UploadResult, error) {
	args := m.Called(ctx, profileID, paths)
	r, _ := args.Get(0).(*api.UploadResult)
	return r, args.Error(1)
}

func (m *mockFileService) ListFiles(ctx context.Context, profileID int64) ([]api.UploadedFile, error) {
	args := m.Called(ctx, profileID)
	items, _ := args.Get(0).([]api.UploadedFile)
	return items, args.Error(1)
}

func (m *mockFileService) DeleteFile(ctx context.Context, fileID int64) error {
	return m.Called(ctx, fileID).Error(0)
}

type mockTranscriber struct {
	mock.Mock
}

func (m *mockTranscriber) TranscribeFile(ctx context.Context, fileID int64) (string, error) {
	args := m.Called(ctx, fileID)
	return args.String(0), args.Error(1)
}

func (m *mockTranscriber) TranscribeAll(ctx context.Context, profileID int64) (string, error) {
	args := m.Called(ctx, profileID)
	return args.String(0), args.Error(1)
}

func (m *mockTranscriber) Results(ctx context.Context, profileID int64) ([]api.Transcription, error) {
	args := m.Called(ctx, profileID)
	items, _ := args.Get(0).([]api.Transcription)
	return items, args.Error(1)
}

type mockChat struct {
	mock.Mock
}

func (m *mockChat) Send(ctx context.Context, profileID int64, message string) (*api.ChatReply, error) {
	args := m.Called(ctx, profileID, message)
	r, _ := args.Get(0).(*api.ChatReply)
	return r, args.Error(1)
}

func (m *mockChat) History(ctx context.Context, profileID int64, limit int) ([]api.ChatEntry, error) {
	args := m.Called(ctx, profileID, limit)
	items, _ := args.Get(0).([]api.ChatEntry)
	return items, args.Error(1)
}

func (m *mockChat) ClearHistory(ctx context.Context, profileID int64) (int, error) {
	args := m.Called(ctx, profileID)
	return args.Int(0), args.Error(1)
}

func (m *mockChat) Summary(ctx context.Context, profileID int64) (map[string]any, error) {
	args := m.Called(ctx, profileID)
	out, _ := args.Get(0).(map[string]any)
	return out, args.Error(1)
}

func (m *mockChat) BuildPersona(ctx context.Context, profileID int64) (map[string]any, error) {
	args := m.Called(ctx, profileID)
	out, _ := args.Get(0).(map[string]any)
	return out, args.Error(1)
}

func (m *mockChat) Speak(ctx context.Context, profileID int64, text string) (*api.SpeechResult, error) {
	args := m.Called(ctx, profileID, text)
	r, _ := args.Get(0).(*api.SpeechResult)
	return r, args.Error(1)
}

type mockAnalytics struct {
	mock.Mock
}

func (m *mockAnalytics) Visualization(ctx context.Context, profileID int64) (*api.Visualization, error) {
	args := m.Called(ctx, profileID)
	v, _ := args.Get(0).(*api.Visualization)
	return v, args.Error(1)
}

// progressScript returns queued progress records, repeating the last one.
type progressScript struct {
	mu      sync.Mutex
	records []api.Progress
}

func (p *progressScript) Progress(_ context.Context, _, taskID string) (*api.Progress, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec := p.records[0]
	if len(p.records) > 1 {
		p.records = p.records[1:]
	}
	rec.TaskID = taskID
	return &rec, nil
}

type selection struct {
	mu     sync.Mutex
	id     int64
	active bool
}

func (s *selection) ActiveProfile() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.active
}

func (s *selection) SelectProfile(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id, s.active = id, true
}

func (s *selection) ClearProfile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id, s.active = 0, false
}

type notes struct {
	mu   sync.Mutex
	msgs []string
}

func (n *notes) add(level, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, level+": "+msg)
}

func (n *notes) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

func (n *notes) ShowInfo(_ context.Context, msg string)    { n.add("info", msg) }
func (n *notes) ShowWarning(_ context.Context, msg string) { n.add("warning", msg) }
func (n *notes) ShowError(_ context.Context, msg string)   { n.add("error", msg) }
func (n *notes) ShowSuccess(_ context.Context, msg string) { n.add("success", msg) }

type answer bool

func (a answer) Confirm(context.Context, string) bool { return bool(a) }

type memSurface struct {
	mu   sync.Mutex
	text string
}

func (m *memSurface) SetContent(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
}

func (m *memSurface) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

type fixture struct {
	deps      *Deps
	store     *cache.Persistent
	profiles  *mockProfileService
	files     *mockFileService
	transcr   *mockTranscriber
	chat      *mockChat
	analytics *mockAnalytics
	progress  *progressScript
	sel       *selection
	notes     *notes
	prefs     config.Preferences
	surfaces  map[string]*memSurface
}

func newFixture(t *testing.T, regions ...string) *fixture {
	t.Helper()
	f := &fixture{
		store:     cache.NewPersistent(cache.NewMemoryBackend(), nil),
		profiles:  &mockProfileService{},
		files:     &mockFileService{},
		transcr:   &mockTranscriber{},
		chat:      &mockChat{},
		analytics: &mockAnalytics{},
		progress:  &progressScript{records: []api.Progress{{Status: "running"}}},
		sel:       &selection{},
		notes:     &notes{},
		prefs:     config.DefaultPreferences(),
		surfaces:  map[string]*memSurface{},
	}
	registry := view.NewRegistry()
	for _, name := range regions {
		s := &memSurface{}
		f.surfaces[name] = s
		registry.Mount(view.NewRegion(name, s))
	}
	f.deps = &Deps{
		Regions:      registry,
		Profiles:     NewProfilesCollection(f.store, f.profiles),
		Files:        NewFilesCollection(f.store, f.files, f.sel),
		ProfileSvc:   f.profiles,
		FileSvc:      f.files,
		Transcriber:  f.transcr,
		Chat:         f.chat,
		Analytics:    f.analytics,
		Poller:       tasks.NewPoller(f.progress),
		PollInterval: 5 * time.Millisecond,
		Notifier:     f.notes,
		Selection:    f.sel,
		Confirmer:    answer(true),
		Preferences:  func() config.Preferences { return f.prefs },
		Go:           func(fn func()) { fn() },
		LabelWidth:   12,
	}
	t.Cleanup(func() {
		f.profiles.AssertExpectations(t)
		f.files.AssertExpectations(t)
		f.transcr.AssertExpectations(t)
		f.chat.AssertExpectations(t)
		f.analytics.AssertExpectations(t)
	})
	return f
}

func (f *fixture) text(region string) string {
	return f.surfaces[region].String()
}

func (f *fixture) region(region string) *view.Region {
	r, _ := f.deps.Regions.Lookup(region)
	return r
}
