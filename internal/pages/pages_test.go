package pages

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ajramos/evtui/internal/api"
	"github.com/ajramos/evtui/internal/nav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDashboard_Initialize(t *testing.T) {
	f := newFixture(t, RegionDashboardStats, RegionDashboardRecent)
	f.profiles.On("DashboardStats", mock.Anything).Return(&api.DashboardStats{ProfilesCount: 2, FilesCount: 5, ConversationsCount: 9, MemoryHours: 1.5}, nil).Once()
	f.profiles.On("ListProfiles", mock.Anything).Return([]api.Profile{
		{ID: 1, Name: "Alice", CreatedAt: "2025-01-01T10:00:00"},
		{ID: 2, Name: "Bob", CreatedAt: "2025-02-01T10:00:00"},
	}, nil).Once()

	require.NoError(t, NewDashboard(f.deps).Initialize(context.Background()))

	stats := f.text(RegionDashboardStats)
	assert.Contains(t, stats, "Profiles:       2")
	assert.Contains(t, stats, "1.5 hours")

	recent := f.text(RegionDashboardRecent)
	require.Contains(t, recent, "Alice")
	assert.Less(t, strings.Index(recent, "Bob"), strings.Index(recent, "Alice"))
}

func TestDashboard_StatsFailure(t *testing.T) {
	f := newFixture(t, RegionDashboardStats, RegionDashboardRecent)
	f.profiles.On("DashboardStats", mock.Anything).Return(nil, errors.New("down")).Once()
	f.profiles.On("ListProfiles", mock.Anything).Return(nil, errors.New("down")).Once()

	require.NoError(t, NewDashboard(f.deps).Initialize(context.Background()))
	assert.Equal(t, "Statistics unavailable", f.text(RegionDashboardStats))
	assert.Equal(t, "Loading...", f.text(RegionDashboardRecent))
}

func TestTranscription_InitializeAndBatch(t *testing.T) {
	f := newFixture(t, RegionTranscriptionResults, RegionTranscriptionProgress)
	f.sel.SelectProfile(3)
	f.progress.records = []api.Progress{
		{Status: "running", Progress: 10, CurrentStep: "Transcribing"},
		{Status: "completed", Progress: 100},
	}
	f.transcr.On("Results", mock.Anything, int64(3)).Return([]api.Transcription{}, nil).Once()
	f.transcr.On("TranscribeAll", mock.Anything, int64(3)).Return("batch-1", nil).Once()
	f.transcr.On("Results", mock.Anything, int64(3)).Return([]api.Transcription{
		{FileID: 4, OriginalText: "raw", CleanedText: "Happy birthday", Confidence: 0.9, TranscriptionMethod: "whisper"},
	}, nil).Once()
	f.files.On("ListFiles", mock.Anything, int64(3)).Return([]api.UploadedFile{{ID: 4, Filename: "bday.mp3", Processed: true}}, nil).Once()

	m := NewTranscription(f.deps)
	require.NoError(t, m.Initialize(context.Background()))
	assert.Contains(t, f.text(RegionTranscriptionResults), "No transcriptions yet")

	h, err := m.TranscribeAll(context.Background())
	require.NoError(t, err)
	waitDone(t, h)

	assert.Equal(t, "Transcription complete", f.text(RegionTranscriptionProgress))
	assert.Contains(t, f.text(RegionTranscriptionResults), "File 4  (90% confidence, whisper)\nHappy birthday")
	assert.Len(t, m.Results(), 1)
	assert.Equal(t, 1, f.deps.Files.Len())
}

func TestTranscription_ResultsFailure(t *testing.T) {
	f := newFixture(t, RegionTranscriptionResults, RegionTranscriptionProgress)
	f.sel.SelectProfile(3)
	f.transcr.On("Results", mock.Anything, int64(3)).Return(nil, &api.TransportError{Method: "GET", Path: "/api/transcribe/results/3", Err: errors.New("refused")}).Once()

	require.NoError(t, NewTranscription(f.deps).Initialize(context.Background()))
	assert.Equal(t, "Transcriptions unavailable: Cannot reach the server", f.text(RegionTranscriptionResults))
}

func TestAnalytics_Initialize(t *testing.T) {
	f := newFixture(t, RegionAnalyticsEmotions, RegionAnalyticsWords)
	f.sel.SelectProfile(2)
	f.analytics.On("Visualization", mock.Anything, int64(2)).Return(&api.Visualization{
		EmotionAnalysis: api.EmotionAnalysis{
			Distribution:     map[string]float64{"calm": 40, "joy": 60},
			PrimaryEmotion:   "joy",
			EmotionDiversity: 2,
		},
		WordAnalysis: api.WordAnalysis{
			WordFrequency:  map[string]int{"garden": 3, "love": 7},
			TextStatistics: api.TextStatistics{TotalWords: 120, UniqueWords: 80},
		},
		SummaryStats: map[string]any{"total_files": 4},
	}, nil).Once()

	require.NoError(t, NewAnalytics(f.deps).Initialize(context.Background()))

	emotions := f.text(RegionAnalyticsEmotions)
	assert.Contains(t, emotions, "Primary: joy (2 emotions)")
	assert.Less(t, strings.Index(emotions, "joy       "), strings.Index(emotions, "calm"))

	words := f.text(RegionAnalyticsWords)
	assert.Contains(t, words, "Words: 120 (80 unique")
	assert.Less(t, strings.Index(words, "love"), strings.Index(words, "garden"))
	assert.Contains(t, words, "total files: 4")
}

func TestAnalytics_WithoutProfile(t *testing.T) {
	f := newFixture(t, RegionAnalyticsEmotions, RegionAnalyticsWords)

	require.NoError(t, NewAnalytics(f.deps).Initialize(context.Background()))
	assert.Equal(t, noProfileText, f.text(RegionAnalyticsEmotions))
}

func TestModules_CoverEveryPage(t *testing.T) {
	f := newFixture(t)
	mods := New(f.deps)

	registry := mods.Map()
	for _, p := range nav.Pages {
		assert.NotNil(t, registry[p], "page %s", p)
	}

	var names []string
	for _, target := range mods.Targets() {
		names = append(names, target.Name())
	}
	assert.Equal(t, []string{RegionProfilesGrid, RegionDashboardRecent, RegionUploadFiles}, names)

	_, ok := registry[nav.PageProfiles].(nav.Refresher)
	assert.True(t, ok)
	_, ok = registry[nav.PageAnalytics].(nav.Refresher)
	assert.False(t, ok)
}
