package domain_test

import (
	"testing"
	"time"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfWeek(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		want string
	}{
		{
			name: "mid-week wednesday",
			now:  time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC),
			want: "2025-08-18",
		},
		{
			name: "monday itself",
			now:  time.Date(2025, 8, 18, 10, 0, 0, 0, time.UTC),
			want: "2025-08-18",
		},
		{
			name: "sunday belongs to the running week",
			now:  time.Date(2025, 8, 24, 10, 0, 0, 0, time.UTC),
			want: "2025-08-18",
		},
		{
			// 18:45 UTC Sunday is already 00:15 Monday in the reference zone.
			name: "late utc sunday rolls into monday",
			now:  time.Date(2025, 8, 24, 18, 45, 0, 0, time.UTC),
			want: "2025-08-25",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.CurrentWeekStamp(tc.now))
		})
	}
}

func TestParseStamp(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, err := domain.ParseStamp("2025-08-18")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("rejects junk", func(t *testing.T) {
		for _, s := range []string{"", "18-08-2025", "2025/08/18", "2025-08-18T00:00:00Z", "not-a-date"} {
			_, err := domain.ParseStamp(s)
			assert.ErrorIs(t, err, domain.ErrInvalidWeekStamp, "input %q", s)
		}
	})
}

func TestIsWeekStamp(t *testing.T) {
	assert.True(t, domain.IsWeekStamp("2025-08-18"))
	assert.False(t, domain.IsWeekStamp("profileId"))
	assert.False(t, domain.IsWeekStamp("2025-08-18_extra"))
}

func TestWeekLabel(t *testing.T) {
	assert.Equal(t, "18 Aug → 24 Aug", domain.WeekLabel("2025-08-18"))
	assert.Equal(t, "29 Dec → 04 Jan", domain.WeekLabel("2025-12-29"))
	assert.Equal(t, "garbage", domain.WeekLabel("garbage"))
}

func TestWeekKeyDocKey(t *testing.T) {
	key := domain.WeekKey{ProfileID: "p1", WeekStamp: "2025-08-18"}
	assert.Equal(t, "p1_2025-08-18", key.DocKey())
}

func TestModeFor(t *testing.T) {
	now := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

	t.Run("past", func(t *testing.T) {
		mode, err := domain.ModeFor("2025-08-11", now)
		require.NoError(t, err)
		assert.Equal(t, domain.WeekPast, mode)
	})

	t.Run("current", func(t *testing.T) {
		mode, err := domain.ModeFor("2025-08-18", now)
		require.NoError(t, err)
		assert.Equal(t, domain.WeekCurrent, mode)
	})

	t.Run("future", func(t *testing.T) {
		mode, err := domain.ModeFor("2025-08-25", now)
		require.NoError(t, err)
		assert.Equal(t, domain.WeekFuture, mode)
	})

	t.Run("invalid stamp", func(t *testing.T) {
		_, err := domain.ModeFor("nope", now)
		assert.ErrorIs(t, err, domain.ErrInvalidWeekStamp)
	})
}
