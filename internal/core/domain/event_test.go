package domain_test

import (
	"testing"
	"time"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekEventValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		e := domain.NewWeekEvent("p1", "2025-08-18", "goal_toggled")
		assert.NoError(t, e.Validate())
	})

	t.Run("missing profile", func(t *testing.T) {
		e := domain.NewWeekEvent("  ", "2025-08-18", "goal_toggled")
		assert.ErrorIs(t, e.Validate(), domain.ErrInvalidEvent)
	})

	t.Run("bad stamp", func(t *testing.T) {
		e := domain.NewWeekEvent("p1", "not-a-stamp", "goal_toggled")
		assert.ErrorIs(t, e.Validate(), domain.ErrInvalidWeekStamp)
	})

	t.Run("missing type", func(t *testing.T) {
		e := domain.NewWeekEvent("p1", "2025-08-18", "   ")
		assert.ErrorIs(t, e.Validate(), domain.ErrInvalidEvent)
	})
}

func TestWeekEventDayIndex(t *testing.T) {
	cases := []struct {
		name string
		ts   time.Time
		want int
	}{
		{"monday", time.Date(2025, 8, 18, 9, 0, 0, 0, time.UTC), 0},
		{"wednesday", time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC), 2},
		{"sunday", time.Date(2025, 8, 24, 9, 0, 0, 0, time.UTC), 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := domain.NewWeekEvent("p1", "2025-08-18", "open")
			e.CreatedAt = tc.ts
			require.Equal(t, tc.want, e.DayIndex())
		})
	}
}
