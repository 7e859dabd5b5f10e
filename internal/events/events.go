// Package events publishes time entry notifications to a message broker.
package events

import (
	"context"
	"encoding/json"
	"time"

	"time-tracker-backend/internal/model"
	"time-tracker-backend/internal/period"
)

// Publisher announces created time entries. Implementations must be safe for
// concurrent use by request handlers.
type Publisher interface {
	PublishEntryCreated(ctx context.Context, entry model.TimeEntry) error
	Close() error
}

// EntryCreated is the message body published for every new time entry.
type EntryCreated struct {
	ID            int64     `json:"id"`
	Date          string    `json:"date"`
	CategoryID    int64     `json:"categoryId"`
	CategoryName  string    `json:"categoryName"`
	DurationHours float64   `json:"durationHours"`
	Note          string    `json:"note"`
	CreatedAt     time.Time `json:"createdAt"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewEntryCreated builds the message for entry.
func NewEntryCreated(entry model.TimeEntry) *EntryCreated {
	return &EntryCreated{
		ID:            entry.ID,
		Date:          period.FormatDate(entry.Date),
		CategoryID:    entry.CategoryID,
		CategoryName:  entry.CategoryName,
		DurationHours: entry.DurationHours,
		Note:          entry.Note,
		CreatedAt:     entry.CreatedAt,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntryCreated) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryCreatedFromJSON decodes a message produced by ToJSON.
func EntryCreatedFromJSON(data []byte) (*EntryCreated, error) {
	var msg EntryCreated
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Nop discards every event. Used when no broker is configured.
type Nop struct{}

func (Nop) PublishEntryCreated(context.Context, model.TimeEntry) error { return nil }
func (Nop) Close() error                                               { return nil }
