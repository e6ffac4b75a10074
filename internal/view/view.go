// Package view derives what a client shows from its cached collection:
// the filtered and sorted task list, and its HTML or terminal rendering.
//
// Everything here is pure. Callers own the cache; Compute never modifies
// the slice it is given.
package view

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"tasknotes-backend/internal/domain"
)

// SortMode orders the computed view. The zero value keeps filter order.
type SortMode string

const (
	SortNone   SortMode = ""
	SortNewest SortMode = "newest"
	SortOldest SortMode = "oldest"
	SortAZ     SortMode = "az"
	SortZA     SortMode = "za"
)

// SortModes lists the selectable modes in display order.
var SortModes = []SortMode{SortNewest, SortOldest, SortAZ, SortZA}

func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(strings.TrimSpace(s)); m {
	case SortNone, SortNewest, SortOldest, SortAZ, SortZA:
		return m, nil
	default:
		return SortNone, fmt.Errorf("unknown sort mode %q", s)
	}
}

func (m SortMode) Label() string {
	switch m {
	case SortNewest:
		return "Newest first"
	case SortOldest:
		return "Oldest first"
	case SortAZ:
		return "Title A-Z"
	case SortZA:
		return "Title Z-A"
	default:
		return "Unsorted"
	}
}

// Next cycles through SortModes, starting from SortNewest when unset.
func (m SortMode) Next() SortMode {
	i := slices.Index(SortModes, m)
	return SortModes[(i+1)%len(SortModes)]
}

// Compute filters tasks by query and orders the result by mode.
//
// A task matches when its case-folded title or content contains the trimmed,
// case-folded query. Sorting is stable; titles are compared with a
// locale-aware collator.
func Compute(tasks []domain.Task, query string, mode SortMode) []domain.Task {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))

	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if q == "" || strings.Contains(fold.String(t.Title), q) || strings.Contains(fold.String(t.Content), q) {
			out = append(out, t)
		}
	}

	switch mode {
	case SortNewest:
		slices.SortStableFunc(out, func(a, b domain.Task) int { return compareInt64(b.Date, a.Date) })
	case SortOldest:
		slices.SortStableFunc(out, func(a, b domain.Task) int { return compareInt64(a.Date, b.Date) })
	case SortAZ:
		col := collate.New(language.Und)
		slices.SortStableFunc(out, func(a, b domain.Task) int { return col.CompareString(a.Title, b.Title) })
	case SortZA:
		col := collate.New(language.Und)
		slices.SortStableFunc(out, func(a, b domain.Task) int { return col.CompareString(b.Title, a.Title) })
	}
	return out
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
