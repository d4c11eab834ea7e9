package tui

import (
	"bytes"
	"context"
	"log"
	"sync"
	"testing"

	"github.com/ajramos/evtui/internal/api"
	"github.com/ajramos/evtui/internal/bus"
	"github.com/ajramos/evtui/internal/cache"
	"github.com/ajramos/evtui/internal/config"
)

// fakeBackend answers every service call with canned data.
type fakeBackend struct {
	mu       sync.Mutex
	profiles []api.Profile
	calls    map[string]int
	pingErr  error
}

func newFakeBackend(profiles ...api.Profile) *fakeBackend {
	return &fakeBackend{profiles: profiles, calls: make(map[string]int)}
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) services() Services {
	return Services{
		Profiles:      f,
		Files:         f,
		Transcription: f,
		Progress:      f,
		Chat:          f,
		Analytics:     f,
	}
}

func (f *fakeBackend) ListProfiles(context.Context) ([]api.Profile, error) {
	f.record("ListProfiles")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Profile(nil), f.profiles...), nil
}

func (f *fakeBackend) GetProfile(_ context.Context, id int64) (*api.Profile, error) {
	f.record("GetProfile")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, &api.ServerError{Status: 404, Message: "Profile not found"}
}

func (f *fakeBackend) CreateProfile(_ context.Context, in api.ProfileInput) (*api.Profile, error) {
	f.record("CreateProfile")
	f.mu.Lock()
	defer f.mu.Unlock()
	p := api.Profile{ID: int64(len(f.profiles) + 1), Name: in.Name, Relationship: in.Relationship, ConsentGiven: in.ConsentGiven}
	f.profiles = append(f.profiles, p)
	return &p, nil
}

func (f *fakeBackend) UpdateProfile(_ context.Context, id int64, in api.ProfileInput) (*api.Profile, error) {
	f.record("UpdateProfile")
	return &api.Profile{ID: id, Name: in.Name}, nil
}

func (f *fakeBackend) DeleteProfile(context.Context, int64) error {
	f.record("DeleteProfile")
	return nil
}

func (f *fakeBackend) DashboardStats(context.Context) (*api.DashboardStats, error) {
	f.record("DashboardStats")
	f.mu.Lock()
	defer f.mu.Unlock()
	return &api.DashboardStats{ProfilesCount: len(f.profiles)}, nil
}

func (f *fakeBackend) Upload(_ context.Context, profileID int64, paths []string) (*api.UploadResult, error) {
	f.record("Upload")
	return &api.UploadResult{TaskID: "upload-1"}, nil
}

func (f *fakeBackend) ListFiles(context.Context, int64) ([]api.UploadedFile, error) {
	f.record("ListFiles")
	return nil, nil
}

func (f *fakeBackend) DeleteFile(context.Context, int64) error {
	f.record("DeleteFile")
	return nil
}

func (f *fakeBackend) TranscribeFile(context.Context, int64) (string, error) {
	f.record("TranscribeFile")
	return "t-1", nil
}

func (f *fakeBackend) TranscribeAll(context.Context, int64) (string, error) {
	f.record("TranscribeAll")
	return "t-all", nil
}

func (f *fakeBackend) Results(context.Context, int64) ([]api.Transcription, error) {
	f.record("Results")
	return nil, nil
}

func (f *fakeBackend) Progress(_ context.Context, kind, taskID string) (*api.Progress, error) {
	f.record("Progress")
	return &api.Progress{TaskID: taskID, TaskType: kind, Status: "completed", Progress: 100}, nil
}

func (f *fakeBackend) Send(_ context.Context, _ int64, message string) (*api.ChatReply, error) {
	f.record("Send")
	return &api.ChatReply{Response: "echo: " + message}, nil
}

func (f *fakeBackend) History(context.Context, int64, int) ([]api.ChatEntry, error) {
	f.record("History")
	return nil, nil
}

func (f *fakeBackend) ClearHistory(context.Context, int64) (int, error) {
	f.record("ClearHistory")
	return 0, nil
}

func (f *fakeBackend) Summary(context.Context, int64) (map[string]any, error) {
	f.record("Summary")
	return map[string]any{"topics": 1}, nil
}

func (f *fakeBackend) BuildPersona(context.Context, int64) (map[string]any, error) {
	f.record("BuildPersona")
	return map[string]any{"tone": "warm"}, nil
}

func (f *fakeBackend) Speak(context.Context, int64, string) (*api.SpeechResult, error) {
	f.record("Speak")
	return &api.SpeechResult{AudioPath: "/audio/1.mp3"}, nil
}

func (f *fakeBackend) Visualization(context.Context, int64) (*api.Visualization, error) {
	f.record("Visualization")
	return &api.Visualization{}, nil
}

func (f *fakeBackend) Ping(context.Context) error {
	f.record("Ping")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeBackend) setPingErr(err error) {
	f.mu.Lock()
	f.pingErr = err
	f.mu.Unlock()
}

// yes answers every confirmation with true.
type yes struct{}

func (yes) Confirm(context.Context, string) bool { return true }

type testApp struct {
	*App
	backend *fakeBackend
	logs    *syncBuffer
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testOption func(*Options)

func withSessions(s *cache.SessionStore) testOption {
	return func(o *Options) { o.Sessions = s }
}

func withConfig(fn func(*config.Config)) testOption {
	return func(o *Options) { fn(o.Config) }
}

// newTestApp builds an App on fakes, with no fade and no heartbeat. The event
// loop is never started, so view updates run inline.
func newTestApp(t *testing.T, backend *fakeBackend, opts ...testOption) *testApp {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Navigation.FadeMs = 0
	cfg.Heartbeat.Enabled = false

	logs := &syncBuffer{}
	o := Options{
		Config:    cfg,
		Logger:    log.New(logs, "", 0),
		Services:  backend.services(),
		Confirmer: yes{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	app := NewApp(o)
	t.Cleanup(func() {
		app.Stop()
		app.Wait()
	})
	return &testApp{App: app, backend: backend, logs: logs}
}

// events records the events published under name.
type events struct {
	mu   sync.Mutex
	list []bus.Event
}

func record(b *bus.Bus, name string) *events {
	e := &events{}
	b.Subscribe(name, func(ev bus.Event) {
		e.mu.Lock()
		e.list = append(e.list, ev)
		e.mu.Unlock()
	})
	return e
}

func (e *events) all() []bus.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]bus.Event(nil), e.list...)
}
