package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
)

// ProfileService manages the demographic profile and its photo.
type ProfileService struct {
	profiles domain.ProfileRepository
	photos   domain.PhotoStore
}

func NewProfileService(profiles domain.ProfileRepository, photos domain.PhotoStore) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		photos:   photos,
	}
}

// Load returns the stored profile, or an empty one when the profile has
// never been saved.
func (s *ProfileService) Load(ctx context.Context, profileID string) (*domain.Profile, error) {
	profile, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return &domain.Profile{}, nil
		}
		return nil, fmt.Errorf("profile service: load: %w", err)
	}
	return profile, nil
}

func (s *ProfileService) Save(ctx context.Context, profileID string, profile *domain.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	profile.UpdatedAt = time.Now().UTC()

	if err := s.profiles.Upsert(ctx, profileID, profile); err != nil {
		return fmt.Errorf("profile service: save: %w", err)
	}
	return nil
}

// SavePhoto uploads the photo to the blob store and records the resulting
// URL on the profile. A profile that was never saved gets created with just
// the photo URL.
func (s *ProfileService) SavePhoto(ctx context.Context, profileID string, r io.Reader, size int64, contentType string) (string, error) {
	if s.photos == nil {
		return "", domain.ErrPhotoUploadsDisabled
	}

	url, err := s.photos.Upload(ctx, profileID, r, size, contentType)
	if err != nil {
		return "", fmt.Errorf("profile service: photo upload: %w", err)
	}

	profile, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			return "", fmt.Errorf("profile service: load for photo update: %w", err)
		}
		profile = &domain.Profile{}
	}

	profile.PhotoURL = url
	profile.UpdatedAt = time.Now().UTC()
	if err := s.profiles.Upsert(ctx, profileID, profile); err != nil {
		return "", fmt.Errorf("profile service: photo update: %w", err)
	}

	return url, nil
}

// PostAuthUpsert mirrors the signed-in user's display fields onto the
// profile after authentication. Existing profile fields win over identity
// fields; only gaps are filled. Failures are logged, never surfaced, since
// sign-in must not break on a profile mirror.
func (s *ProfileService) PostAuthUpsert(ctx context.Context, user *domain.User) {
	profile, err := s.profiles.Get(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			log.Printf("[PROFILE] post-auth read failed for %s: %v", user.ID, err)
			return
		}
		profile = &domain.Profile{}
	}

	changed := false
	if profile.Name == "" && user.DisplayName != "" {
		profile.Name = user.DisplayName
		changed = true
	}
	if profile.Email == "" && user.Email != "" {
		profile.Email = user.Email
		changed = true
	}
	if profile.PhotoURL == "" && user.PhotoURL != "" {
		profile.PhotoURL = user.PhotoURL
		changed = true
	}

	if !changed {
		return
	}

	profile.UpdatedAt = time.Now().UTC()
	if err := s.profiles.Upsert(ctx, user.ID, profile); err != nil {
		log.Printf("[PROFILE] post-auth upsert failed for %s: %v", user.ID, err)
	}
}
