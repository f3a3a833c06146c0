package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

var (
	ErrProfileNameRequired  = errors.New("profile name is required")
	ErrProfileInvalidAge    = errors.New("age cannot be negative")
	ErrProfileInvalidEmail  = errors.New("invalid email format")
	ErrProfileInvalidChoice = errors.New("invalid choice for enumerated field")

	// ErrPhotoUploadsDisabled means no blob store was configured.
	ErrPhotoUploadsDisabled = errors.New("photo uploads are not configured")
)

var (
	profileSexes      = []string{"", "Male", "Female", "Other"}
	maritalStatuses   = []string{"", "Single", "Married", "Other"}
	occupationChoices = []string{"", "Job", "Business", "Student", "Other"}
)

// Profile holds the demographic fields shown on the profile page. It is
// independent of week data and keyed by the same profile id.
type Profile struct {
	Name          string    `json:"name" db:"name"`
	Age           int       `json:"age,omitempty" db:"age"`
	Sex           string    `json:"sex,omitempty" db:"sex"`
	Email         string    `json:"email,omitempty" db:"email"`
	BloodGroup    string    `json:"bloodGroup,omitempty" db:"blood_group"`
	MaritalStatus string    `json:"maritalStatus,omitempty" db:"marital_status"`
	Occupation    string    `json:"occupation,omitempty" db:"occupation"`
	PhotoURL      string    `json:"photoUrl,omitempty" db:"photo_url"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}

func oneOf(value string, choices []string) bool {
	for _, c := range choices {
		if value == c {
			return true
		}
	}
	return false
}

func (p *Profile) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return ErrProfileNameRequired
	}
	if p.Age < 0 {
		return ErrProfileInvalidAge
	}
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return ErrProfileInvalidEmail
		}
	}
	if !oneOf(p.Sex, profileSexes) || !oneOf(p.MaritalStatus, maritalStatuses) || !oneOf(p.Occupation, occupationChoices) {
		return ErrProfileInvalidChoice
	}
	return nil
}
