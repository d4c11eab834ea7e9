package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ajramos/evtui/internal/api"
)

// Task kinds understood by ProgressService
const (
	KindUpload        = "upload"
	KindTranscription = "transcription"
)

// MediaServiceImpl implements FileService, TranscriptionService and ProgressService
type MediaServiceImpl struct {
	client *api.Client
}

// NewMediaService creates a new media service
func NewMediaService(client *api.Client) *MediaServiceImpl {
	return &MediaServiceImpl{client: client}
}

func (s *MediaServiceImpl) Upload(ctx context.Context, profileID int64, paths []string) (*api.UploadResult, error) {
	if profileID <= 0 {
		return nil, ErrNoProfile
	}
	var clean []string
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInput, p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidInput, p)
		}
		clean = append(clean, p)
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("%w: no files selected", ErrInvalidInput)
	}
	res, err := s.client.UploadFiles(ctx, profileID, clean)
	if err != nil {
		return nil, fmt.Errorf("failed to upload files: %w", err)
	}
	return res, nil
}

func (s *MediaServiceImpl) ListFiles(ctx context.Context, profileID int64) ([]api.UploadedFile, error) {
	if profileID <= 0 {
		return nil, ErrNoProfile
	}
	files, err := s.client.ListFiles(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

func (s *MediaServiceImpl) DeleteFile(ctx context.Context, fileID int64) error {
	if fileID <= 0 {
		return fmt.Errorf("%w: file id must be positive", ErrInvalidInput)
	}
	if err := s.client.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *MediaServiceImpl) TranscribeFile(ctx context.Context, fileID int64) (string, error) {
	if fileID <= 0 {
		return "", fmt.Errorf("%w: file id must be positive", ErrInvalidInput)
	}
	id, err := s.client.TranscribeFile(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("failed to start transcription: %w", err)
	}
	return id, nil
}

func (s *MediaServiceImpl) TranscribeAll(ctx context.Context, profileID int64) (string, error) {
	if profileID <= 0 {
		return "", ErrNoProfile
	}
	id, err := s.client.TranscribeAll(ctx, profileID)
	if err != nil {
		return "", fmt.Errorf("failed to start batch transcription: %w", err)
	}
	return id, nil
}

func (s *MediaServiceImpl) Results(ctx context.Context, profileID int64) ([]api.Transcription, error) {
	if profileID <= 0 {
		return nil, ErrNoProfile
	}
	res, err := s.client.TranscriptionResults(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcripts: %w", err)
	}
	return res, nil
}

// Progress routes to the progress endpoint of the given task kind.
func (s *MediaServiceImpl) Progress(ctx context.Context, kind, taskID string) (*api.Progress, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, fmt.Errorf("%w: task id cannot be empty", ErrInvalidInput)
	}
	switch kind {
	case KindUpload:
		return s.client.UploadProgress(ctx, taskID)
	case KindTranscription:
		return s.client.TranscriptionProgress(ctx, taskID)
	default:
		return nil, fmt.Errorf("%w: unknown task kind %q", ErrInvalidInput, kind)
	}
}
