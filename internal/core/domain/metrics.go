package domain

import (
	"math"
	"sort"
	"time"
)

// DayNames are the Monday-first labels used in day maps and report payloads.
var DayNames = [DaysPerWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// TimeOfDayHistogram buckets event counts by UTC hour of day.
type TimeOfDayHistogram struct {
	Morning   int `json:"morning"`   // 05-12
	Afternoon int `json:"afternoon"` // 12-17
	Evening   int `json:"evening"`   // 17-22
	Night     int `json:"night"`     // 22-05
}

// Interactions summarizes the week's interaction events.
type Interactions struct {
	TotalEvents         int                `json:"totalEvents"`
	ActiveDaysViaEvents int                `json:"activeDaysViaEvents"`
	LastEventAt         *time.Time         `json:"lastEventAt,omitempty"`
	TimeOfDay           TimeOfDayHistogram `json:"timeOfDayHistogram"`
}

// WeeklyMetrics is derived from a week's categories (plus optional events)
// and never persisted as source of truth.
//
// CompletionPercent is target-based: min(2, completed) per category over
// 2×categories. CompletedPicked/TotalPicked carry the supplementary
// picked-based view the dashboard and report use.
type WeeklyMetrics struct {
	CompletionPercent int           `json:"completionPercent"`
	CompletedPicked   int           `json:"completedPicked"`
	TotalPicked       int           `json:"totalPicked"`
	ActiveDays        int           `json:"activeDays"`
	LongestStreak     int           `json:"longestStreak"`
	DayMap            []bool        `json:"dayMap"`
	Interactions      *Interactions `json:"interactions,omitempty"`
}

// CategoryPickedStat is the per-category picked-goal progress view.
type CategoryPickedStat struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	CompletedPicked int    `json:"completedPicked"`
	TotalPicked     int    `json:"totalPicked"`
	Percent         int    `json:"pct"`
}

// ChallengeCompletionPercent is the canonical progress figure: each category
// contributes up to CategoryTarget completed goals toward a total target of
// CategoryTarget per category. Zero categories means zero percent.
func ChallengeCompletionPercent(categories []Category) int {
	totalTarget := CategoryTarget * len(categories)
	if totalTarget == 0 {
		return 0
	}

	achieved := 0
	for _, c := range categories {
		done := c.CompletedCount()
		if done > CategoryTarget {
			done = CategoryTarget
		}
		achieved += done
	}

	return int(math.Round(float64(achieved) / float64(totalTarget) * 100))
}

// DayMapFromDaily ORs every goal's daily array into one Monday-first map.
// Arrays of the wrong length contribute nothing.
func DayMapFromDaily(categories []Category) []bool {
	days := make([]bool, DaysPerWeek)
	for _, c := range categories {
		for _, g := range c.Goals {
			if len(g.Daily) != DaysPerWeek {
				continue
			}
			for i, on := range g.Daily {
				if on {
					days[i] = true
				}
			}
		}
	}
	return days
}

// LongestStreak is the longest run of consecutive true entries. No
// wraparound between Sunday and the next Monday.
func LongestStreak(dayMap []bool) int {
	best, run := 0, 0
	for _, on := range dayMap {
		if on {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}

// ComputeMetrics derives the full weekly metrics from a category snapshot
// and an optional event log. The day map is a pure OR-merge of daily
// tracking and event days.
func ComputeMetrics(categories []Category, events []*WeekEvent) WeeklyMetrics {
	totalPicked, completedPicked := 0, 0
	for _, c := range categories {
		for _, g := range c.Goals {
			if !g.Picked {
				continue
			}
			totalPicked++
			if g.Completed {
				completedPicked++
			}
		}
	}

	dayMap := DayMapFromDaily(categories)

	var interactions *Interactions
	if len(events) > 0 {
		var hist TimeOfDayHistogram
		var lastEvent time.Time
		eventDays := make(map[int]bool)

		for _, e := range events {
			ts := e.CreatedAt.UTC()
			if ts.After(lastEvent) {
				lastEvent = ts
			}
			eventDays[e.DayIndex()] = true

			switch h := ts.Hour(); {
			case h >= 5 && h < 12:
				hist.Morning++
			case h >= 12 && h < 17:
				hist.Afternoon++
			case h >= 17 && h < 22:
				hist.Evening++
			default:
				hist.Night++
			}
		}

		for i := range dayMap {
			if eventDays[i] {
				dayMap[i] = true
			}
		}

		interactions = &Interactions{
			TotalEvents:         len(events),
			ActiveDaysViaEvents: len(eventDays),
			TimeOfDay:           hist,
		}
		if !lastEvent.IsZero() {
			interactions.LastEventAt = &lastEvent
		}
	}

	activeDays := 0
	for _, on := range dayMap {
		if on {
			activeDays++
		}
	}

	return WeeklyMetrics{
		CompletionPercent: ChallengeCompletionPercent(categories),
		CompletedPicked:   completedPicked,
		TotalPicked:       totalPicked,
		ActiveDays:        activeDays,
		LongestStreak:     LongestStreak(dayMap),
		DayMap:            dayMap,
		Interactions:      interactions,
	}
}

// PerCategoryPickedStats is the per-category breakdown over picked goals.
func PerCategoryPickedStats(categories []Category) []CategoryPickedStat {
	stats := make([]CategoryPickedStat, 0, len(categories))
	for _, c := range categories {
		total, completed := 0, 0
		for _, g := range c.Goals {
			if !g.Picked {
				continue
			}
			total++
			if g.Completed {
				completed++
			}
		}
		pct := 0
		if total > 0 {
			pct = int(math.Round(float64(completed) / float64(total) * 100))
		}
		stats = append(stats, CategoryPickedStat{
			ID:              c.ID,
			Name:            c.Name,
			CompletedPicked: completed,
			TotalPicked:     total,
			Percent:         pct,
		})
	}
	return stats
}

// MostActiveCategories orders by completed picked goals, then by picks.
func MostActiveCategories(stats []CategoryPickedStat, max int) []CategoryPickedStat {
	out := make([]CategoryPickedStat, len(stats))
	copy(out, stats)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CompletedPicked != out[j].CompletedPicked {
			return out[i].CompletedPicked > out[j].CompletedPicked
		}
		return out[i].TotalPicked > out[j].TotalPicked
	})
	if len(out) > max {
		out = out[:max]
	}
	return out
}

// NeedsImprovementCategories returns categories with picks but under 50%
// completion, worst first.
func NeedsImprovementCategories(stats []CategoryPickedStat, max int) []CategoryPickedStat {
	var out []CategoryPickedStat
	for _, s := range stats {
		if s.TotalPicked > 0 && s.Percent < 50 {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Percent < out[j].Percent
	})
	if len(out) > max {
		out = out[:max]
	}
	return out
}
