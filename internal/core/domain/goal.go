package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrGoalTitleEmpty      = errors.New("goal title cannot be empty")
	ErrGoalTitleTooLong    = errors.New("goal title is too long (max 100 chars)")
	ErrCategoryNameEmpty   = errors.New("category name cannot be empty")
	ErrInvalidDayIndex     = errors.New("invalid day index (must be 0-6)")
	ErrCompletionIsDerived = errors.New("completion is derived from daily tracking")
)

const (
	// DaysPerWeek is the length of every daily-tracking array, Monday first.
	DaysPerWeek = 7

	// CategoryTarget is how many completed goals a category needs to count
	// toward the challenge milestones.
	CategoryTarget = 2

	MaxGoalTitleLen = 100
)

// Goal is one weekly goal inside a category. When TrackDaily is set,
// Completed always mirrors "all seven Daily entries true".
type Goal struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Picked     bool   `json:"picked"`
	Completed  bool   `json:"completed"`
	TrackDaily bool   `json:"trackDaily,omitempty"`
	Daily      []bool `json:"daily,omitempty"`
}

// Category is an ordered list of goals under a fixed life area. Merge
// identity is the Name; the ID is regenerated per week instantiation.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ColorKey string `json:"colorKey,omitempty"`
	Goals    []Goal `json:"goals"`
}

func NewID() string {
	return uuid.NewString()
}

func NewGoal(title string) (Goal, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return Goal{}, ErrGoalTitleEmpty
	}
	if len(trimmed) > MaxGoalTitleLen {
		return Goal{}, ErrGoalTitleTooLong
	}

	return Goal{
		ID:    NewID(),
		Title: trimmed,
	}, nil
}

func NewCategory(name string, goals ...Goal) (Category, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Category{}, ErrCategoryNameEmpty
	}

	return Category{
		ID:    NewID(),
		Name:  trimmed,
		Goals: goals,
	}, nil
}

// ensureDaily returns a seven-slot copy; anything of the wrong length is
// treated as seven false entries.
func ensureDaily(daily []bool) []bool {
	if len(daily) != DaysPerWeek {
		return make([]bool, DaysPerWeek)
	}
	out := make([]bool, DaysPerWeek)
	copy(out, daily)
	return out
}

func allSeven(daily []bool) bool {
	if len(daily) != DaysPerWeek {
		return false
	}
	for _, on := range daily {
		if !on {
			return false
		}
	}
	return true
}

// Normalize repairs the goal in place: daily arrays of the wrong length
// become seven false entries, and when TrackDaily is on, Completed is
// recomputed from the daily array.
func (g *Goal) Normalize() {
	if g.Daily != nil || g.TrackDaily {
		g.Daily = ensureDaily(g.Daily)
	}
	if g.TrackDaily {
		g.Completed = allSeven(g.Daily)
	}
}

// SetTrackDaily switches daily-tracking mode. Turning it on with an already
// full week marks the goal completed; turning it off leaves Completed as-is.
func (g *Goal) SetTrackDaily(on bool) {
	g.TrackDaily = on
	g.Daily = ensureDaily(g.Daily)
	if on {
		g.Completed = allSeven(g.Daily)
	}
}

// SetDay toggles one daily slot. Checking any day picks the goal (it never
// auto-unpicks), and under TrackDaily the Completed flag mirrors 7/7.
func (g *Goal) SetDay(idx int, on bool) error {
	if idx < 0 || idx >= DaysPerWeek {
		return ErrInvalidDayIndex
	}

	g.Daily = ensureDaily(g.Daily)
	g.Daily[idx] = on

	if on {
		g.Picked = true
	}
	if g.TrackDaily {
		g.Completed = allSeven(g.Daily)
	}
	return nil
}

// SetCompleted flips manual completion. Goals in daily-tracking mode derive
// completion from their daily array and reject direct writes.
func (g *Goal) SetCompleted(on bool) error {
	if g.TrackDaily {
		return ErrCompletionIsDerived
	}
	g.Completed = on
	return nil
}

func (c *Category) Normalize() {
	for i := range c.Goals {
		c.Goals[i].Normalize()
	}
}

// NormalizeCategories repairs a full week snapshot in place.
func NormalizeCategories(categories []Category) {
	for i := range categories {
		categories[i].Normalize()
	}
}

// CompletedCount is the number of completed goals in the category.
func (c Category) CompletedCount() int {
	n := 0
	for _, g := range c.Goals {
		if g.Completed {
			n++
		}
	}
	return n
}

// AchievedTarget reports whether the category counts toward milestones.
func (c Category) AchievedTarget() bool {
	return c.CompletedCount() >= CategoryTarget
}

// SanitizeTemplate builds a progress-free skeleton from a week's categories:
// fresh ids everywhere, all flags reset, titles, names and color hints kept.
func SanitizeTemplate(categories []Category) []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		goals := make([]Goal, 0, len(c.Goals))
		for _, g := range c.Goals {
			goals = append(goals, Goal{
				ID:    NewID(),
				Title: g.Title,
			})
		}
		out = append(out, Category{
			ID:       NewID(),
			Name:     c.Name,
			ColorKey: c.ColorKey,
			Goals:    goals,
		})
	}
	return out
}

// DefaultCategories is the hard-coded starter set used when a profile has
// neither a week document nor a template. Every call mints fresh ids.
func DefaultCategories() []Category {
	mk := func(name string, titles ...string) Category {
		goals := make([]Goal, 0, len(titles))
		for _, t := range titles {
			goals = append(goals, Goal{ID: NewID(), Title: t})
		}
		return Category{ID: NewID(), Name: name, Goals: goals}
	}

	return []Category{
		mk("Health & Energy", "30-min workout", "Sleep 7+ hours", "10k steps", "Meditate 10 min"),
		mk("Learning & Growth", "Read 20 pages", "Course lesson", "Write notes"),
		mk("Career & Craft", "Deep work (90m)", "Ship a task", "Mentor someone"),
		mk("Relationships", "Quality time", "Call a friend", "Acts of kindness"),
		mk("Finance", "Track expenses", "No-spend day", "Invest/Plan"),
		mk("Fun & Spirit", "Hobby session", "Get outdoors", "Gratitude journal"),
	}
}

// Milestone is the achievement tier for a week, based on how many categories
// reached the two-completed-goals target.
type Milestone string

const (
	MilestoneNone      Milestone = "none"
	MilestoneRight     Milestone = "right"     // 2+ categories achieved
	MilestoneRocking   Milestone = "rocking"   // 4+ categories achieved
	MilestoneBrilliant Milestone = "brilliant" // every category achieved
)

// AchievedCategoryCount counts categories with at least CategoryTarget
// completed goals.
func AchievedCategoryCount(categories []Category) int {
	n := 0
	for _, c := range categories {
		if c.AchievedTarget() {
			n++
		}
	}
	return n
}

func MilestoneFor(categories []Category) Milestone {
	achieved := AchievedCategoryCount(categories)
	switch {
	case len(categories) > 0 && achieved == len(categories):
		return MilestoneBrilliant
	case achieved >= 4:
		return MilestoneRocking
	case achieved >= 2:
		return MilestoneRight
	default:
		return MilestoneNone
	}
}
