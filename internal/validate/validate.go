// Package validate turns untyped request payloads into typed, checked input
// or a structured validation failure.
package validate

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"time-tracker-backend/internal/apperr"
	"time-tracker-backend/internal/category"
	"time-tracker-backend/internal/period"
)

const (
	MinDurationHours = 0.25
	MaxDurationHours = 12.0
	DurationStep     = 0.25
	MinNoteLength    = 3
	MinCategoryName  = 2

	// stepEpsilon absorbs binary representation error when checking that a
	// duration sits on the quarter-hour grid.
	stepEpsilon = 1e-9
)

var (
	ErrInvalidDate     = errors.New("Invalid YYYY-MM-DD")
	ErrInvalidDuration = errors.New("Duration must be between 0.25 and 12 hours in 0.25 steps")
	ErrInvalidNote     = errors.New("Note must contain at least 3 character(s)")
	ErrInvalidName     = errors.New("Name must not be empty")
	ErrShortCategory   = errors.New("Category must contain at least 2 character(s)")
	ErrInvalidCategory = errors.New("Invalid categoryId")
)

// EntryInput is a time entry creation payload that passed validation.
type EntryInput struct {
	Date          time.Time
	Category      category.Ref
	DurationHours float64
	Note          string
}

// CategoryInput is a category creation payload that passed validation.
type CategoryInput struct {
	Name string
}

// DecodeObject parses body as a JSON object. Anything else, including valid
// JSON that is not an object, is a malformed payload.
func DecodeObject(body []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, apperr.MalformedPayload(err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, apperr.MalformedPayload(errors.New("request body must be a JSON object"))
	}
	return obj, nil
}

// TimeEntry validates a time entry creation payload. Field problems are
// reported together; a payload with valid fields but no category reference
// fails with MissingCategoryReference.
func TimeEntry(raw map[string]any) (EntryInput, error) {
	var in EntryInput
	fields := apperr.FieldErrors{}

	if s, ok := raw["date"].(string); !ok {
		fields.Add("date", ErrInvalidDate.Error())
	} else if d, err := period.ParseDate(s); err != nil {
		fields.Add("date", ErrInvalidDate.Error())
	} else {
		in.Date = d
	}

	ref, field, err := categoryRef(raw)
	if err != nil {
		fields.Add(field, err.Error())
	}
	in.Category = ref

	if d, ok := raw["durationHours"].(float64); !ok {
		fields.Add("durationHours", "Expected number")
	} else if err := DurationHours(d); err != nil {
		fields.Add("durationHours", err.Error())
	} else {
		in.DurationHours = d
	}

	if s, ok := raw["note"].(string); !ok {
		fields.Add("note", ErrInvalidNote.Error())
	} else if err := Note(s); err != nil {
		fields.Add("note", err.Error())
	} else {
		in.Note = s
	}

	if len(fields) > 0 {
		return EntryInput{}, apperr.ValidationFailed(fields)
	}
	if in.Category.IsZero() {
		return EntryInput{}, apperr.MissingCategoryReference()
	}
	return in, nil
}

// categoryRef picks categoryId over category. It returns the offending field
// name alongside any shape error.
func categoryRef(raw map[string]any) (category.Ref, string, error) {
	if v, ok := raw["categoryId"]; ok && v != nil {
		id, err := parseID(v)
		if err != nil {
			return category.Ref{}, "categoryId", err
		}
		return category.ByID(id), "", nil
	}

	v, ok := raw["category"]
	if !ok || v == nil {
		return category.Ref{}, "", nil
	}
	s, ok := v.(string)
	if !ok {
		return category.Ref{}, "category", ErrShortCategory
	}
	name := strings.TrimSpace(s)
	if name == "" {
		return category.Ref{}, "", nil
	}
	if utf8.RuneCountInString(name) < MinCategoryName {
		return category.Ref{}, "category", ErrShortCategory
	}
	return category.ByName(name), "", nil
}

func parseID(v any) (int64, error) {
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) || math.Abs(x) > math.MaxInt64/2 {
			return 0, ErrInvalidCategory
		}
		return int64(x), nil
	case string:
		return ParseID(x)
	default:
		return 0, ErrInvalidCategory
	}
}

// ParseID parses a category identifier given as text, such as a query
// parameter.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, ErrInvalidCategory
	}
	return id, nil
}

// DurationHours accepts values in [0.25, 12] that are whole multiples of 0.25.
func DurationHours(d float64) error {
	if math.IsNaN(d) || d < MinDurationHours || d > MaxDurationHours {
		return ErrInvalidDuration
	}
	q := d / DurationStep
	if math.Abs(q-math.Round(q)) > stepEpsilon {
		return ErrInvalidDuration
	}
	return nil
}

// Note requires at least three characters.
func Note(s string) error {
	if utf8.RuneCountInString(s) < MinNoteLength {
		return ErrInvalidNote
	}
	return nil
}

// Category validates a category creation payload. The name is trimmed so
// that what is stored can later be resolved by name.
func Category(raw map[string]any) (CategoryInput, error) {
	s, ok := raw["name"].(string)
	name := strings.TrimSpace(s)
	if !ok || name == "" {
		fields := apperr.FieldErrors{}
		fields.Add("name", ErrInvalidName.Error())
		return CategoryInput{}, apperr.ValidationFailed(fields)
	}
	return CategoryInput{Name: name}, nil
}
