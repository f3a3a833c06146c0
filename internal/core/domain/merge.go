package domain

// MergeCategories reconciles an anonymous profile's week against any
// existing authenticated data for the same week. Categories join on Name,
// goals join on Title; the result never regresses pre-login progress.
//
// Anonymous-derived categories come first in their original order, with the
// anonymous side's non-goal fields (id, color hint) authoritative. Any
// authenticated category whose name found no match is appended unchanged.
func MergeCategories(anonymous, authenticated []Category) []Category {
	authByName := make(map[string]Category, len(authenticated))
	for _, c := range authenticated {
		authByName[c.Name] = c
	}

	matched := make(map[string]bool, len(anonymous))
	out := make([]Category, 0, len(anonymous)+len(authenticated))

	for _, anon := range anonymous {
		auth, ok := authByName[anon.Name]
		if !ok {
			out = append(out, anon)
			continue
		}
		matched[anon.Name] = true
		merged := anon
		merged.Goals = MergeGoals(anon.Goals, auth.Goals)
		out = append(out, merged)
	}

	for _, auth := range authenticated {
		if !matched[auth.Name] {
			out = append(out, auth)
		}
	}

	return out
}

// MergeGoals merges two goal lists joined on Title. Goals present on only
// one side are kept as-is; for goals present in both, the authenticated goal
// is the base but progress flags are OR-ed, the daily array prefers the
// anonymous side, and the anonymous id wins so in-flight references from the
// current session stay valid.
func MergeGoals(anonymous, authenticated []Goal) []Goal {
	authByTitle := make(map[string]Goal, len(authenticated))
	for _, g := range authenticated {
		authByTitle[g.Title] = g
	}

	matched := make(map[string]bool, len(anonymous))
	out := make([]Goal, 0, len(anonymous)+len(authenticated))

	for _, anon := range anonymous {
		auth, ok := authByTitle[anon.Title]
		if !ok {
			out = append(out, anon)
			continue
		}
		matched[anon.Title] = true

		merged := auth
		merged.ID = anon.ID
		merged.Picked = anon.Picked || auth.Picked
		merged.Completed = anon.Completed || auth.Completed
		merged.TrackDaily = anon.TrackDaily || auth.TrackDaily
		if anon.Daily != nil {
			merged.Daily = anon.Daily
		}
		out = append(out, merged)
	}

	for _, auth := range authenticated {
		if !matched[auth.Title] {
			out = append(out, auth)
		}
	}

	return out
}
