package domain

import (
	"context"
	"errors"
	"io"
)

var (
	ErrWeekNotFound     = errors.New("week document not found")
	ErrTemplateNotFound = errors.New("week template not found")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrLocalMiss        = errors.New("local cache miss")
)

type WeekRepository interface {
	// Get retrieves the week document for an exact (profile, weekStamp)
	// key, or ErrWeekNotFound.
	Get(ctx context.Context, profileID, weekStamp string) (*WeekDocument, error)

	// Upsert writes the full category snapshot with merge semantics:
	// fields absent from the write are left untouched server-side.
	Upsert(ctx context.Context, doc *WeekDocument) error

	// Exists reports whether a week document is persisted for the key.
	Exists(ctx context.Context, profileID, weekStamp string) (bool, error)

	// ListStamps returns every weekStamp the profile has a document for.
	ListStamps(ctx context.Context, profileID string) ([]string, error)
}

type TemplateRepository interface {
	// Get returns the per-profile category skeleton, or ErrTemplateNotFound.
	Get(ctx context.Context, profileID string) ([]Category, error)

	// Put replaces the per-profile skeleton.
	Put(ctx context.Context, profileID string, categories []Category) error
}

type ReportRepository interface {
	// AppendHistory adds an immutable history record.
	AppendHistory(ctx context.Context, report *SavedWeeklyReport) error

	// UpsertLatest overwrites the per-WeekKey "latest" pointer record.
	UpsertLatest(ctx context.Context, report *SavedWeeklyReport) error

	// GetLatest returns the latest pointer record, or ErrReportNotFound.
	GetLatest(ctx context.Context, profileID, weekStamp string) (*SavedWeeklyReport, error)

	// ListHistory returns up to max history records, newest first.
	ListHistory(ctx context.Context, profileID, weekStamp string, max int) ([]*SavedWeeklyReport, error)
}

type ProfileRepository interface {
	Get(ctx context.Context, profileID string) (*Profile, error)
	Upsert(ctx context.Context, profileID string, profile *Profile) error
}

type EventRepository interface {
	Append(ctx context.Context, event *WeekEvent) error

	// ListByWeek returns the week's events in creation order.
	ListByWeek(ctx context.Context, profileID, weekStamp string) ([]*WeekEvent, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdateIdentity persists display fields, provider ids and login time.
	UpdateIdentity(ctx context.Context, user *User) error
}

// LocalStore is the local fallback cache: legacy week snapshots keyed by
// weekStamp alone, the locally issued profile id, and the persisted
// idempotency flags for one-time routines. Reads of absent or malformed
// entries yield ErrLocalMiss, never a parse failure.
type LocalStore interface {
	GetWeek(ctx context.Context, weekStamp string) ([]Category, error)
	PutWeek(ctx context.Context, weekStamp string, categories []Category) error
	DeleteWeek(ctx context.Context, weekStamp string) error

	// ListWeekStamps returns the stamps of every cached legacy week entry.
	ListWeekStamps(ctx context.Context) ([]string, error)

	GetFlag(ctx context.Context, name string) (bool, error)
	SetFlag(ctx context.Context, name string) error

	GetProfileID(ctx context.Context) (string, error)
	SetProfileID(ctx context.Context, id string) error
}

// PhotoStore stores profile photos and returns a retrievable URL.
type PhotoStore interface {
	Upload(ctx context.Context, profileID string, r io.Reader, size int64, contentType string) (string, error)
}

// ReportGenerator is the external narrative generator: structured week
// summary in, markdown text out. Failures surface to the caller untouched.
type ReportGenerator interface {
	Generate(ctx context.Context, req ReportRequest) (string, error)
}
