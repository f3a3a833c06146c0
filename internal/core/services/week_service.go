package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
)

// WeekService owns resolution, persistence, seeding and merging of weekly
// category data, and maintains the per-profile template.
type WeekService struct {
	weeks     domain.WeekRepository
	templates domain.TemplateRepository
	local     domain.LocalStore
}

func NewWeekService(weeks domain.WeekRepository, templates domain.TemplateRepository, local domain.LocalStore) *WeekService {
	return &WeekService{
		weeks:     weeks,
		templates: templates,
		local:     local,
	}
}

// Resolve returns the category list for a (profile, weekStamp) key. Sources
// are tried in order: persisted week document, sanitized template (non-past
// weeks only), legacy local cache keyed by stamp alone, hard-coded defaults.
// Each step runs only when the previous one yields nothing, and a transient
// primary-read failure falls through the chain instead of surfacing. The
// caller always gets a category list.
func (s *WeekService) Resolve(ctx context.Context, profileID, weekStamp string) ([]domain.Category, error) {
	if !domain.IsWeekStamp(weekStamp) {
		return nil, domain.ErrInvalidWeekStamp
	}

	doc, err := s.weeks.Get(ctx, profileID, weekStamp)
	if err == nil {
		domain.NormalizeCategories(doc.Categories)
		return doc.Categories, nil
	}
	if !errors.Is(err, domain.ErrWeekNotFound) {
		log.Printf("[WEEK] primary read failed for %s/%s, falling through: %v", profileID, weekStamp, err)
	}

	mode, err := domain.ModeFor(weekStamp, time.Now())
	if err != nil {
		return nil, err
	}

	// Never seed a past week from the template: a finished week with no
	// document shows whatever the legacy cache has, or defaults.
	if mode != domain.WeekPast {
		tmpl, err := s.templates.Get(ctx, profileID)
		if err == nil && len(tmpl) > 0 {
			return domain.SanitizeTemplate(tmpl), nil
		}
		if err != nil && !errors.Is(err, domain.ErrTemplateNotFound) {
			log.Printf("[WEEK] template read failed for %s: %v", profileID, err)
		}
	}

	if cats, err := s.local.GetWeek(ctx, weekStamp); err == nil && len(cats) > 0 {
		domain.NormalizeCategories(cats)
		return cats, nil
	}

	return domain.DefaultCategories(), nil
}

// Persist writes the full snapshot to the primary store and mirrors it to the
// local cache. A primary failure degrades to local-only persistence, logged,
// and only surfaces as an error when the local mirror also fails. Saving the
// current week additionally refreshes the template from the sanitized
// categories so future weeks inherit the goal set without progress.
func (s *WeekService) Persist(ctx context.Context, profileID, weekStamp string, categories []domain.Category) error {
	if !domain.IsWeekStamp(weekStamp) {
		return domain.ErrInvalidWeekStamp
	}

	domain.NormalizeCategories(categories)

	doc := &domain.WeekDocument{
		ProfileID:  profileID,
		WeekStamp:  weekStamp,
		Categories: categories,
		UpdatedAt:  time.Now().UTC(),
	}

	primaryErr := s.weeks.Upsert(ctx, doc)
	if primaryErr != nil {
		log.Printf("[WEEK] primary save failed for %s/%s, keeping local copy: %v", profileID, weekStamp, primaryErr)
	}

	localErr := s.local.PutWeek(ctx, weekStamp, categories)
	if primaryErr != nil && localErr != nil {
		return fmt.Errorf("week service: save failed on both stores: %w", primaryErr)
	}

	if weekStamp == domain.CurrentWeekStamp(time.Now()) {
		if err := s.templates.Put(ctx, profileID, domain.SanitizeTemplate(categories)); err != nil {
			log.Printf("[WEEK] template refresh failed for %s: %v", profileID, err)
		}
	}

	return nil
}

// Exists reports whether a persisted week document exists for the key.
func (s *WeekService) Exists(ctx context.Context, profileID, weekStamp string) (bool, error) {
	return s.weeks.Exists(ctx, profileID, weekStamp)
}

const migrationFlagPrefix = "migrated:"

// MigrateLegacyLocal sweeps legacy stamp-keyed local cache entries into the
// primary store for profileID. It runs effectively once per profile, tracked
// via a persisted flag checked before and set after the sweep. Entries whose
// (profile, stamp) already has a remote document are skipped; successfully
// uploaded (or already-present) entries are removed from the local cache.
func (s *WeekService) MigrateLegacyLocal(ctx context.Context, profileID string) error {
	flag := migrationFlagPrefix + profileID
	done, err := s.local.GetFlag(ctx, flag)
	if err != nil {
		return fmt.Errorf("week service: migration flag read: %w", err)
	}
	if done {
		return nil
	}

	stamps, err := s.local.ListWeekStamps(ctx)
	if err != nil {
		return fmt.Errorf("week service: legacy key sweep: %w", err)
	}

	for _, stamp := range stamps {
		if !domain.IsWeekStamp(stamp) {
			continue
		}

		cats, err := s.local.GetWeek(ctx, stamp)
		if err != nil {
			if errors.Is(err, domain.ErrLocalMiss) {
				continue
			}
			return fmt.Errorf("week service: legacy read for %s: %w", stamp, err)
		}

		exists, err := s.weeks.Exists(ctx, profileID, stamp)
		if err != nil {
			return fmt.Errorf("week service: existence check for %s: %w", stamp, err)
		}

		if !exists {
			domain.NormalizeCategories(cats)
			doc := &domain.WeekDocument{
				ProfileID:  profileID,
				WeekStamp:  stamp,
				Categories: cats,
				UpdatedAt:  time.Now().UTC(),
			}
			if err := s.weeks.Upsert(ctx, doc); err != nil {
				return fmt.Errorf("week service: migration upload for %s: %w", stamp, err)
			}
			log.Printf("[WEEK] migrated legacy week %s for profile %s", stamp, profileID)
		}

		if err := s.local.DeleteWeek(ctx, stamp); err != nil {
			log.Printf("[WEEK] could not remove migrated legacy key %s: %v", stamp, err)
		}
	}

	if err := s.local.SetFlag(ctx, flag); err != nil {
		return fmt.Errorf("week service: migration flag write: %w", err)
	}
	return nil
}

const mergeFlagPrefix = "anon-synced:"

// MergeAnonymousIntoAuthenticated folds every week the anonymous profile has
// data for into the authenticated profile, after a sign-in transition. Weeks
// are discovered remote-first with the legacy local cache as a second source.
// The merged result is persisted under the authenticated id; the anonymous
// profile's remote documents are retained untouched, and matching legacy
// local entries are removed after a successful merge. Idempotent via a
// persisted per-authenticated-id flag.
func (s *WeekService) MergeAnonymousIntoAuthenticated(ctx context.Context, anonymousID, authenticatedID string) error {
	if anonymousID == "" || anonymousID == authenticatedID {
		return nil
	}

	flag := mergeFlagPrefix + authenticatedID
	done, err := s.local.GetFlag(ctx, flag)
	if err != nil {
		return fmt.Errorf("week service: merge flag read: %w", err)
	}
	if done {
		return nil
	}

	stamps, err := s.weeks.ListStamps(ctx, anonymousID)
	if err != nil {
		return fmt.Errorf("week service: anonymous week listing: %w", err)
	}

	seen := make(map[string]bool, len(stamps))
	for _, stamp := range stamps {
		seen[stamp] = true
	}

	localStamps, err := s.local.ListWeekStamps(ctx)
	if err != nil {
		log.Printf("[WEEK] legacy key sweep during merge failed: %v", err)
		localStamps = nil
	}
	for _, stamp := range localStamps {
		if domain.IsWeekStamp(stamp) && !seen[stamp] {
			stamps = append(stamps, stamp)
			seen[stamp] = true
		}
	}

	for _, stamp := range stamps {
		anonCats, fromLocal, err := s.anonymousWeek(ctx, anonymousID, stamp)
		if err != nil {
			return err
		}
		if anonCats == nil {
			continue
		}

		var authCats []domain.Category
		authDoc, err := s.weeks.Get(ctx, authenticatedID, stamp)
		if err == nil {
			authCats = authDoc.Categories
		} else if !errors.Is(err, domain.ErrWeekNotFound) {
			return fmt.Errorf("week service: authenticated read for %s: %w", stamp, err)
		}

		merged := domain.MergeCategories(anonCats, authCats)
		domain.NormalizeCategories(merged)

		doc := &domain.WeekDocument{
			ProfileID:  authenticatedID,
			WeekStamp:  stamp,
			Categories: merged,
			UpdatedAt:  time.Now().UTC(),
		}
		if err := s.weeks.Upsert(ctx, doc); err != nil {
			return fmt.Errorf("week service: merged save for %s: %w", stamp, err)
		}

		if fromLocal {
			if err := s.local.DeleteWeek(ctx, stamp); err != nil {
				log.Printf("[WEEK] could not remove merged legacy key %s: %v", stamp, err)
			}
		}

		log.Printf("[WEEK] merged week %s from %s into %s", stamp, anonymousID, authenticatedID)
	}

	if err := s.local.SetFlag(ctx, flag); err != nil {
		return fmt.Errorf("week service: merge flag write: %w", err)
	}
	return nil
}

// anonymousWeek reads one week of anonymous data, remote first and the
// legacy local cache second. A nil result with nil error means no data.
func (s *WeekService) anonymousWeek(ctx context.Context, anonymousID, stamp string) ([]domain.Category, bool, error) {
	doc, err := s.weeks.Get(ctx, anonymousID, stamp)
	if err == nil {
		return doc.Categories, false, nil
	}
	if !errors.Is(err, domain.ErrWeekNotFound) {
		return nil, false, fmt.Errorf("week service: anonymous read for %s: %w", stamp, err)
	}

	cats, err := s.local.GetWeek(ctx, stamp)
	if err != nil {
		if errors.Is(err, domain.ErrLocalMiss) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("week service: legacy read for %s: %w", stamp, err)
	}
	return cats, true, nil
}
