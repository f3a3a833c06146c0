package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
)

// In-memory implementations of the storage ports, used by handler tests and
// local development wiring.

type InMemoryWeekRepository struct {
	store map[string]*domain.WeekDocument

	mu sync.RWMutex
}

func NewInMemoryWeekRepository() *InMemoryWeekRepository {
	return &InMemoryWeekRepository{
		store: make(map[string]*domain.WeekDocument),
	}
}

func (r *InMemoryWeekRepository) Get(ctx context.Context, profileID, weekStamp string) (*domain.WeekDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := domain.WeekKey{ProfileID: profileID, WeekStamp: weekStamp}
	doc, ok := r.store[key.DocKey()]
	if !ok {
		return nil, domain.ErrWeekNotFound
	}

	copied := *doc
	return &copied, nil
}

func (r *InMemoryWeekRepository) Upsert(ctx context.Context, doc *domain.WeekDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *doc
	r.store[doc.Key().DocKey()] = &copied
	return nil
}

func (r *InMemoryWeekRepository) Exists(ctx context.Context, profileID, weekStamp string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := domain.WeekKey{ProfileID: profileID, WeekStamp: weekStamp}
	_, ok := r.store[key.DocKey()]
	return ok, nil
}

func (r *InMemoryWeekRepository) ListStamps(ctx context.Context, profileID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stamps []string
	for _, doc := range r.store {
		if doc.ProfileID == profileID {
			stamps = append(stamps, doc.WeekStamp)
		}
	}
	sort.Strings(stamps)
	return stamps, nil
}

type InMemoryTemplateRepository struct {
	store map[string][]domain.Category

	mu sync.RWMutex
}

func NewInMemoryTemplateRepository() *InMemoryTemplateRepository {
	return &InMemoryTemplateRepository{
		store: make(map[string][]domain.Category),
	}
}

func (r *InMemoryTemplateRepository) Get(ctx context.Context, profileID string) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cats, ok := r.store[profileID]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	return cats, nil
}

func (r *InMemoryTemplateRepository) Put(ctx context.Context, profileID string, categories []domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[profileID] = categories
	return nil
}

type InMemoryReportRepository struct {
	history []*domain.SavedWeeklyReport
	latest  map[string]*domain.SavedWeeklyReport

	mu sync.RWMutex
}

func NewInMemoryReportRepository() *InMemoryReportRepository {
	return &InMemoryReportRepository{
		latest: make(map[string]*domain.SavedWeeklyReport),
	}
}

func (r *InMemoryReportRepository) AppendHistory(ctx context.Context, report *domain.SavedWeeklyReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *report
	r.history = append(r.history, &copied)
	return nil
}

func (r *InMemoryReportRepository) UpsertLatest(ctx context.Context, report *domain.SavedWeeklyReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := domain.WeekKey{ProfileID: report.ProfileID, WeekStamp: report.WeekStamp}
	copied := *report
	r.latest[key.DocKey()] = &copied
	return nil
}

func (r *InMemoryReportRepository) GetLatest(ctx context.Context, profileID, weekStamp string) (*domain.SavedWeeklyReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := domain.WeekKey{ProfileID: profileID, WeekStamp: weekStamp}
	report, ok := r.latest[key.DocKey()]
	if !ok {
		return nil, domain.ErrReportNotFound
	}

	copied := *report
	return &copied, nil
}

func (r *InMemoryReportRepository) ListHistory(ctx context.Context, profileID, weekStamp string, max int) ([]*domain.SavedWeeklyReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var reports []*domain.SavedWeeklyReport
	for i := len(r.history) - 1; i >= 0 && len(reports) < max; i-- {
		report := r.history[i]
		if report.ProfileID == profileID && report.WeekStamp == weekStamp {
			copied := *report
			reports = append(reports, &copied)
		}
	}
	return reports, nil
}

type InMemoryProfileRepository struct {
	store map[string]*domain.Profile

	mu sync.RWMutex
}

func NewInMemoryProfileRepository() *InMemoryProfileRepository {
	return &InMemoryProfileRepository{
		store: make(map[string]*domain.Profile),
	}
}

func (r *InMemoryProfileRepository) Get(ctx context.Context, profileID string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.store[profileID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}

	copied := *profile
	return &copied, nil
}

func (r *InMemoryProfileRepository) Upsert(ctx context.Context, profileID string, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *profile
	r.store[profileID] = &copied
	return nil
}

type InMemoryEventRepository struct {
	events []*domain.WeekEvent

	mu sync.RWMutex
}

func NewInMemoryEventRepository() *InMemoryEventRepository {
	return &InMemoryEventRepository{}
}

func (r *InMemoryEventRepository) Append(ctx context.Context, event *domain.WeekEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *event
	r.events = append(r.events, &copied)
	return nil
}

func (r *InMemoryEventRepository) ListByWeek(ctx context.Context, profileID, weekStamp string) ([]*domain.WeekEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var events []*domain.WeekEvent
	for _, e := range r.events {
		if e.ProfileID == profileID && e.WeekStamp == weekStamp {
			copied := *e
			events = append(events, &copied)
		}
	}
	return events, nil
}

type InMemoryUserRepository struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return domain.ErrEmailAlreadyExists
	}

	copied := *user
	r.byID[user.ID] = &copied
	r.byEmail[user.Email] = &copied
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	copied := *user
	return &copied, nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	copied := *user
	return &copied, nil
}

func (r *InMemoryUserRepository) UpdateIdentity(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[user.ID]; !ok {
		return domain.ErrUserNotFound
	}

	copied := *user
	r.byID[user.ID] = &copied
	r.byEmail[user.Email] = &copied
	return nil
}
