// Package model holds the stored records shared by the storage layer and the
// HTTP handlers.
package model

import "time"

// Category is a named bucket time entries are classified under
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// TimeEntry records hours spent on a calendar day under a category
type TimeEntry struct {
	ID            int64     `json:"id"`
	Date          time.Time `json:"date"`
	CategoryID    int64     `json:"categoryId"`
	DurationHours float64   `json:"durationHours"`
	Note          string    `json:"note"`
	CreatedAt     time.Time `json:"createdAt"`
	CategoryName  string    `json:"categoryName,omitempty"`
}

// NewTimeEntry holds the validated values of an entry about to be inserted
type NewTimeEntry struct {
	Date          time.Time
	CategoryID    int64
	DurationHours float64
	Note          string
}
