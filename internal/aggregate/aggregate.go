// Package aggregate reduces time entries into total hours and a per-category
// breakdown.
package aggregate

import (
	"sort"

	"time-tracker-backend/internal/model"
)

// Entry is the minimal view of a time entry the engine needs.
type Entry struct {
	Category string
	Hours    float64
}

// CategoryHours is the summed duration for one category.
type CategoryHours struct {
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

// Totals is the result of Summarize.
type Totals struct {
	TotalHours float64
	ByCategory []CategoryHours
}

// Summarize sums hours overall and per category. Categories appear in the
// order of their first occurrence in entries. No rounding is applied.
func Summarize(entries []Entry) Totals {
	totals := Totals{ByCategory: make([]CategoryHours, 0)}
	index := make(map[string]int)

	for _, e := range entries {
		totals.TotalHours += e.Hours

		i, ok := index[e.Category]
		if !ok {
			i = len(totals.ByCategory)
			index[e.Category] = i
			totals.ByCategory = append(totals.ByCategory, CategoryHours{Name: e.Category})
		}
		totals.ByCategory[i].Hours += e.Hours
	}

	return totals
}

// FromTimeEntries adapts stored entries, labelled with their category name,
// to engine input.
func FromTimeEntries(entries []model.TimeEntry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{Category: e.CategoryName, Hours: e.DurationHours}
	}
	return out
}

// Map returns the breakdown keyed by category name.
func (t Totals) Map() map[string]float64 {
	m := make(map[string]float64, len(t.ByCategory))
	for _, c := range t.ByCategory {
		m[c.Name] = c.Hours
	}
	return m
}

// SortedByHours returns a copy of the breakdown ordered by hours descending,
// then by name.
func (t Totals) SortedByHours() []CategoryHours {
	out := make([]CategoryHours, len(t.ByCategory))
	copy(out, t.ByCategory)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].Name < out[j].Name
	})
	return out
}
