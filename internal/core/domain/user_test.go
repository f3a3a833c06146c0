package domain_test

import (
	"testing"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("normalizes email and display name", func(t *testing.T) {
		u, err := domain.NewUser("u1", "  Jane@Example.COM ", "  Jane  ")
		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", u.Email)
		assert.Equal(t, "Jane", u.DisplayName)
		assert.Equal(t, []string{"password"}, u.ProviderIDs)
		assert.False(t, u.CreatedAt.IsZero())
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := domain.NewUser("u1", "not-an-email", "Jane")
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})
}

func TestUserPassword(t *testing.T) {
	u, err := domain.NewUser("u1", "jane@example.com", "Jane")
	require.NoError(t, err)

	t.Run("too short", func(t *testing.T) {
		assert.ErrorIs(t, u.SetPassword("short"), domain.ErrPasswordTooShort)
	})

	t.Run("set and check", func(t *testing.T) {
		require.NoError(t, u.SetPassword("correct horse battery"))
		assert.NotEqual(t, "correct horse battery", u.PasswordHash)
		assert.NoError(t, u.CheckPassword("correct horse battery"))
		assert.Error(t, u.CheckPassword("wrong password"))
	})
}

func TestProfileValidate(t *testing.T) {
	valid := func() domain.Profile {
		return domain.Profile{
			Name:          "Jane",
			Age:           30,
			Sex:           "Female",
			Email:         "jane@example.com",
			MaritalStatus: "Single",
			Occupation:    "Job",
		}
	}

	t.Run("valid", func(t *testing.T) {
		p := valid()
		assert.NoError(t, p.Validate())
	})

	t.Run("optional fields may be blank", func(t *testing.T) {
		p := domain.Profile{Name: "Jane"}
		assert.NoError(t, p.Validate())
	})

	t.Run("name required", func(t *testing.T) {
		p := valid()
		p.Name = "   "
		assert.ErrorIs(t, p.Validate(), domain.ErrProfileNameRequired)
	})

	t.Run("negative age", func(t *testing.T) {
		p := valid()
		p.Age = -1
		assert.ErrorIs(t, p.Validate(), domain.ErrProfileInvalidAge)
	})

	t.Run("bad email", func(t *testing.T) {
		p := valid()
		p.Email = "nope"
		assert.ErrorIs(t, p.Validate(), domain.ErrProfileInvalidEmail)
	})

	t.Run("unknown enum choice", func(t *testing.T) {
		p := valid()
		p.Occupation = "Astronaut"
		assert.ErrorIs(t, p.Validate(), domain.ErrProfileInvalidChoice)
	})
}

func TestReportFileName(t *testing.T) {
	assert.Equal(t,
		"goal-challenge_report_jane_doe_2025-08-18.md",
		domain.ReportFileName("Jane Doe", "2025-08-18"))
	assert.Equal(t,
		"goal-challenge_report_user_2025-08-18.md",
		domain.ReportFileName("   ", "2025-08-18"))
}
