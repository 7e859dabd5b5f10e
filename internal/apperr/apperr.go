// Package apperr defines the error taxonomy shared by the validation layer,
// the category resolver and the HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
)

// Kind classifies a failure surfaced to API callers.
type Kind string

const (
	KindMalformedPayload         Kind = "MalformedPayload"
	KindValidationFailed         Kind = "ValidationFailed"
	KindInvalidDateFormat        Kind = "InvalidDateFormat"
	KindMissingCategoryReference Kind = "MissingCategoryReference"
	KindCategoryNotFound         Kind = "CategoryNotFound"
	KindConflict                 Kind = "Conflict"
	KindInternal                 Kind = "Internal"
)

// Error is a classified failure. Fields is only populated for
// KindValidationFailed.
type Error struct {
	Kind    Kind
	Message string
	Fields  FieldErrors
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindMalformedPayload, KindValidationFailed, KindInvalidDateFormat, KindMissingCategoryReference:
		return http.StatusBadRequest
	case KindCategoryNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FieldErrors maps a request field to the messages describing why it was
// rejected.
type FieldErrors map[string][]string

// Add appends a message for field.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Fields returns the rejected field names in sorted order.
func (f FieldErrors) Fields() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func MalformedPayload(err error) *Error {
	return &Error{Kind: KindMalformedPayload, Message: "Invalid JSON", Err: err}
}

func ValidationFailed(fields FieldErrors) *Error {
	return &Error{Kind: KindValidationFailed, Message: "Validation failed", Fields: fields}
}

func InvalidDateFormat(value string) *Error {
	msg := "Invalid or missing date, use YYYY-MM-DD"
	if value != "" {
		msg = fmt.Sprintf("Invalid date format %q, use YYYY-MM-DD", value)
	}
	return &Error{Kind: KindInvalidDateFormat, Message: msg}
}

func MissingCategoryReference() *Error {
	return &Error{Kind: KindMissingCategoryReference, Message: "Provide category or categoryId"}
}

// CategoryNotFound reports an unresolvable reference. ref is the identifier
// or name the caller supplied.
func CategoryNotFound(ref any) *Error {
	return &Error{Kind: KindCategoryNotFound, Message: fmt.Sprintf("Category not found: %v", ref)}
}

func Conflict(msg string, err error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

// As extracts a classified error from err. Unclassified errors come back as
// KindInternal with a generic message so storage details never leak to
// callers.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
