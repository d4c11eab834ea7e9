package pages

import (
	"context"
	"fmt"
	"sync"

	"github.com/ajramos/evtui/internal/api"
	"github.com/ajramos/evtui/internal/services"
	"github.com/ajramos/evtui/internal/tasks"
)

// Transcription page regions
const (
	RegionTranscriptionResults  = "transcription-results"
	RegionTranscriptionProgress = "transcription-progress"
)

// Transcription shows transcribed text and runs batch transcription.
type Transcription struct {
	d *Deps

	mu      sync.Mutex
	results []api.Transcription
}

// NewTranscription creates the transcription module.
func NewTranscription(d *Deps) *Transcription {
	return &Transcription{d: d}
}

func (m *Transcription) Initialize(ctx context.Context) error {
	id, ok := m.d.activeProfile()
	if !ok {
		m.d.write(RegionTranscriptionResults, noProfileText)
		m.d.write(RegionTranscriptionProgress, "")
		return nil
	}
	m.d.loading(RegionTranscriptionResults, "Loading transcriptions...")
	m.d.write(RegionTranscriptionProgress, "Idle")
	m.d.spawn(func() {
		if err := m.load(ctx, id); err != nil {
			m.d.logf("transcription: results: %v", err)
			m.d.write(RegionTranscriptionResults, "Transcriptions unavailable: "+api.UserMessage(err))
		}
	})
	return nil
}

func (m *Transcription) Refresh(ctx context.Context) error {
	return m.Initialize(ctx)
}

// Results returns the last loaded transcriptions.
func (m *Transcription) Results() []api.Transcription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]api.Transcription(nil), m.results...)
}

// TranscribeAll transcribes every pending file of the active profile.
func (m *Transcription) TranscribeAll(ctx context.Context) (*tasks.Handle, error) {
	id, err := m.d.requireProfile()
	if err != nil {
		return nil, m.d.report(ctx, err)
	}
	taskID, err := m.d.Transcriber.TranscribeAll(ctx, id)
	if err != nil {
		return nil, m.d.report(ctx, err)
	}
	m.d.write(RegionTranscriptionProgress, "Transcription queued")
	return m.d.Poller.Start(ctx, taskID, services.KindTranscription, m.d.PollInterval, tasks.Callbacks{
		OnProgress: func(u tasks.Update) {
			m.d.write(RegionTranscriptionProgress, formatProgress("Transcription", u))
		},
		OnComplete: func(tasks.Task) {
			m.d.write(RegionTranscriptionProgress, "Transcription complete")
			m.d.spawn(func() {
				if err := m.load(ctx, id); err != nil {
					m.d.logf("transcription: reload: %v", err)
				}
				if err := refreshCollection(ctx, m.d.Files); err != nil {
					m.d.logf("transcription: refresh files: %v", err)
				}
			})
		},
		OnFailed: func(_ tasks.Task, msg string) {
			m.d.write(RegionTranscriptionProgress, fmt.Sprintf("Transcription failed: %s", msg))
			m.d.notifyError(ctx, "Transcription failed: "+msg)
		},
	}), nil
}

func (m *Transcription) load(ctx context.Context, profileID int64) error {
	items, err := m.d.Transcriber.Results(ctx, profileID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.results = items
	m.mu.Unlock()
	m.d.write(RegionTranscriptionResults, formatTranscriptions(items))
	return nil
}
