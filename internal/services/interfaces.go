package services

import (
	"context"

	"github.com/ajramos/evtui/internal/api"
)

// ProfileService handles profile operations
type ProfileService interface {
	ListProfiles(ctx context.Context) ([]api.Profile, error)
	GetProfile(ctx context.Context, id int64) (*api.Profile, error)
	CreateProfile(ctx context.Context, in api.ProfileInput) (*api.Profile, error)
	UpdateProfile(ctx context.Context, id int64, in api.ProfileInput) (*api.Profile, error)
	DeleteProfile(ctx context.Context, id int64) error
	DashboardStats(ctx context.Context) (*api.DashboardStats, error)
}

// FileService handles uploads and uploaded files
type FileService interface {
	Upload(ctx context.Context, profileID int64, paths []string) (*api.UploadResult, error)
	ListFiles(ctx context.Context, profileID int64) ([]api.UploadedFile, error)
	DeleteFile(ctx context.Context, fileID int64) error
}

// TranscriptionService starts and inspects transcription jobs
type TranscriptionService interface {
	TranscribeFile(ctx context.Context, fileID int64) (string, error)
	TranscribeAll(ctx context.Context, profileID int64) (string, error)
	Results(ctx context.Context, profileID int64) ([]api.Transcription, error)
}

// ChatService handles conversations with a profile's persona
type ChatService interface {
	Send(ctx context.Context, profileID int64, message string) (*api.ChatReply, error)
	History(ctx context.Context, profileID int64, limit int) ([]api.ChatEntry, error)
	ClearHistory(ctx context.Context, profileID int64) (int, error)
	Summary(ctx context.Context, profileID int64) (map[string]any, error)
	BuildPersona(ctx context.Context, profileID int64) (map[string]any, error)
	Speak(ctx context.Context, profileID int64, text string) (*api.SpeechResult, error)
}

// AnalyticsService returns visualization data
type AnalyticsService interface {
	Visualization(ctx context.Context, profileID int64) (*api.Visualization, error)
}

// HealthService checks backend reachability
type HealthService interface {
	Ping(ctx context.Context) error
}

// ProgressService fetches background job status by kind
type ProgressService interface {
	Progress(ctx context.Context, kind, taskID string) (*api.Progress, error)
}
