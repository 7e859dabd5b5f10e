// Package category resolves a category reference, given either by identifier
// or by name, to the stored category record.
package category

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"time-tracker-backend/internal/apperr"
	"time-tracker-backend/internal/model"
)

type refKind uint8

const (
	refNone refKind = iota
	refID
	refName
)

// Ref is a reference to a category: ByID, ByName, or the zero value meaning
// no reference was supplied.
type Ref struct {
	kind refKind
	id   int64
	name string
}

func ByID(id int64) Ref {
	return Ref{kind: refID, id: id}
}

func ByName(name string) Ref {
	return Ref{kind: refName, name: name}
}

// IsZero reports whether no reference was supplied.
func (r Ref) IsZero() bool {
	return r.kind == refNone
}

// ID returns the identifier and true for ByID references.
func (r Ref) ID() (int64, bool) {
	return r.id, r.kind == refID
}

// Name returns the raw name and true for ByName references.
func (r Ref) Name() (string, bool) {
	return r.name, r.kind == refName
}

func (r Ref) String() string {
	switch r.kind {
	case refID:
		return strconv.FormatInt(r.id, 10)
	case refName:
		return r.name
	default:
		return "<none>"
	}
}

// Finder is the read side of category storage the resolver needs.
type Finder interface {
	CategoryByID(ctx context.Context, id int64) (model.Category, bool, error)
	CategoryByName(ctx context.Context, name string) (model.Category, bool, error)
}

type Resolver struct {
	finder Finder
}

func NewResolver(finder Finder) *Resolver {
	return &Resolver{finder: finder}
}

// Resolve looks the reference up. Names are trimmed and then matched
// exactly, so "Coding" does not resolve to a category stored as "coding".
func (r *Resolver) Resolve(ctx context.Context, ref Ref) (model.Category, error) {
	switch ref.kind {
	case refID:
		c, ok, err := r.finder.CategoryByID(ctx, ref.id)
		if err != nil {
			return model.Category{}, fmt.Errorf("failed to look up category %d: %w", ref.id, err)
		}
		if !ok {
			return model.Category{}, apperr.CategoryNotFound(ref.id)
		}
		return c, nil

	case refName:
		name := strings.TrimSpace(ref.name)
		if name == "" {
			return model.Category{}, apperr.MissingCategoryReference()
		}
		c, ok, err := r.finder.CategoryByName(ctx, name)
		if err != nil {
			return model.Category{}, fmt.Errorf("failed to look up category %q: %w", name, err)
		}
		if !ok {
			return model.Category{}, apperr.CategoryNotFound(name)
		}
		return c, nil
	}

	return model.Category{}, apperr.MissingCategoryReference()
}
