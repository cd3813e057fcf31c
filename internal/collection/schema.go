// Package collection implements the shared list-management workflow behind
// every admin panel: an in-memory collection store, a declarative query
// pipeline (search, filter, sort, paginate), and optimistic mutations with
// rollback when a write-through backend rejects the change.
package collection

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Schema declares how the pipeline and the mutation handlers read one
// entity type. Panels configure a Schema once instead of re-implementing
// the same closures per view.
type Schema[T any] struct {
	// ID returns the entity's stable identifier.
	ID func(T) string
	// NewID assigns an identifier for a created entity, given the current
	// collection contents.
	NewID func(items []T) string
	// SearchFields are the values matched by the free-text search.
	SearchFields []func(T) string
	// Filters maps a filter dimension name to the field it matches against.
	Filters map[string]func(T) string
	// Sorts maps a sort key to its comparator. Comparators return a
	// negative, zero, or positive value in ascending orientation.
	Sorts map[string]func(a, b T) int
	// Status reads the entity's workflow status, when the entity has one.
	Status func(T) string
	// SetStatus writes the entity's workflow status.
	SetStatus func(*T, string)
	// Stamp records transition metadata (actor, reason, timestamp) on the
	// entity. Optional.
	Stamp func(*T, TransitionMeta)
}

// TransitionMeta is the auxiliary metadata recorded by a status transition.
type TransitionMeta struct {
	Actor  string
	Reason string
	At     time.Time
}

// ByString builds an ascending comparator over a string field.
func ByString[T any](field func(T) string) func(a, b T) int {
	return func(a, b T) int {
		return strings.Compare(field(a), field(b))
	}
}

// ByFloat builds an ascending comparator over a numeric field.
func ByFloat[T any](field func(T) float64) func(a, b T) int {
	return func(a, b T) int {
		switch {
		case field(a) < field(b):
			return -1
		case field(a) > field(b):
			return 1
		default:
			return 0
		}
	}
}

// ByInt builds an ascending comparator over an integer field.
func ByInt[T any](field func(T) int) func(a, b T) int {
	return func(a, b T) int {
		return field(a) - field(b)
	}
}

// ByTime builds an ascending (oldest first) comparator over a time field.
func ByTime[T any](field func(T) time.Time) func(a, b T) int {
	return func(a, b T) int {
		switch {
		case field(a).Before(field(b)):
			return -1
		case field(a).After(field(b)):
			return 1
		default:
			return 0
		}
	}
}

// NumericIDs is a NewID strategy for seeded collections: one greater than
// the highest existing numeric id.
func NumericIDs[T any](id func(T) string) func(items []T) string {
	return func(items []T) string {
		max := 0
		for _, item := range items {
			n, err := strconv.Atoi(id(item))
			if err != nil {
				continue
			}
			if n > max {
				max = n
			}
		}
		return fmt.Sprintf("%d", max+1)
	}
}
