package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ajramos/evtui/internal/api"
)

// MaxMessageLength bounds a single chat message
const MaxMessageLength = 4000

// ChatServiceImpl implements ChatService, AnalyticsService and HealthService
type ChatServiceImpl struct {
	client *api.Client
}

// NewChatService creates a new chat service
func NewChatService(client *api.Client) *ChatServiceImpl {
	return &ChatServiceImpl{client: client}
}

func (s *ChatServiceImpl) Send(ctx context.Context, profileID int64, message string) (*api.ChatReply, error) {
	if profileID <= 0 {
		return nil, ErrNoProfile
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message cannot be empty", ErrInvalidInput)
	}
	if len(message) > MaxMessageLength {
		return nil, fmt.Errorf("%w: message longer than %d characters", ErrInvalidInput, MaxMessageLength)
	}
	reply, err := s.client.SendMessage(ctx, profileID, message)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return reply, nil
}

func (s *ChatServiceImpl) History(ctx context.Context, profileID int64, limit int) ([]api.ChatEntry, error) {
	if profileID <= 0 {
		return nil, ErrNoProfile
	}
	h, err := s.client.ChatHistory(ctx, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	return h, nil
}

func (s *ChatServiceImpl) ClearHistory(ctx context.Context, profileID int64) (int, error) {
	if profileID <= 0 {
		return 0, ErrNoProfile
	}
	n, err := s.client.ClearChatHistory(ctx, profileID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear chat history: %w", err)
	}
	return n, nil
}

func (s *ChatServiceImpl) Summary(ctx context.Context, profileID int64) (map[string]any, error) {
	if profileID <= 0 {
		return nil, ErrNoProfile
	}
	out, err := s.client.ConversationSummary(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation summary: %w", err)
	}
	return out, nil
}

func (s *ChatServiceImpl) BuildPersona(ctx context.Context, profileID int64) (map[string]any, error) {
	if profileID <= 0 {
		return nil, ErrNoProfile
	}
	out, err := s.client.BuildPersona(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to build persona: %w", err)
	}
	return out, nil
}

func (s *ChatServiceImpl) Speak(ctx context.Context, profileID int64, text string) (*api.SpeechResult, error) {
	if profileID <= 0 {
		return nil, ErrNoProfile
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: nothing to speak", ErrInvalidInput)
	}
	res, err := s.client.GenerateSpeech(ctx, api.SpeechRequest{ProfileID: profileID, AIResponse: text})
	if err != nil {
		return nil, fmt.Errorf("failed to generate speech: %w", err)
	}
	return res, nil
}

func (s *ChatServiceImpl) Visualization(ctx context.Context, profileID int64) (*api.Visualization, error) {
	if profileID <= 0 {
		return nil, ErrNoProfile
	}
	v, err := s.client.Visualization(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load analytics: %w", err)
	}
	return v, nil
}

// Ping reports nil when the backend answers healthy.
func (s *ChatServiceImpl) Ping(ctx context.Context) error {
	h, err := s.client.Health(ctx)
	if err != nil {
		return err
	}
	if h.Status != "healthy" {
		return fmt.Errorf("%w: backend reports %q", ErrServiceUnavailable, h.Status)
	}
	return nil
}
