package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ajramos/evtui/internal/api"
)

// ProfileServiceImpl implements ProfileService
type ProfileServiceImpl struct {
	client *api.Client
}

// NewProfileService creates a new profile service
func NewProfileService(client *api.Client) *ProfileServiceImpl {
	return &ProfileServiceImpl{client: client}
}

func (s *ProfileServiceImpl) ListProfiles(ctx context.Context) ([]api.Profile, error) {
	profiles, err := s.client.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

func (s *ProfileServiceImpl) GetProfile(ctx context.Context, id int64) (*api.Profile, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: profile id must be positive", ErrInvalidInput)
	}
	p, err := s.client.GetProfile(ctx, id)
	if err != nil {
		if api.IsNotFound(err) {
			return nil, fmt.Errorf("profile %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func validateProfileInput(in api.ProfileInput) (api.ProfileInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Relationship = strings.TrimSpace(in.Relationship)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return in, fmt.Errorf("%w: profile name cannot be empty", ErrInvalidInput)
	}
	if !in.ConsentGiven {
		return in, ErrConsentNeeded
	}
	return in, nil
}

func (s *ProfileServiceImpl) CreateProfile(ctx context.Context, in api.ProfileInput) (*api.Profile, error) {
	in, err := validateProfileInput(in)
	if err != nil {
		return nil, err
	}
	p, err := s.client.CreateProfile(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return p, nil
}

func (s *ProfileServiceImpl) UpdateProfile(ctx context.Context, id int64, in api.ProfileInput) (*api.Profile, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: profile id must be positive", ErrInvalidInput)
	}
	in, err := validateProfileInput(in)
	if err != nil {
		return nil, err
	}
	p, err := s.client.UpdateProfile(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p, nil
}

func (s *ProfileServiceImpl) DeleteProfile(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: profile id must be positive", ErrInvalidInput)
	}
	if err := s.client.DeleteProfile(ctx, id); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

func (s *ProfileServiceImpl) DashboardStats(ctx context.Context) (*api.DashboardStats, error) {
	stats, err := s.client.DashboardStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return stats, nil
}
