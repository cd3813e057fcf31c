package collection

import (
	"sort"
	"strings"
)

// View is the visible slice computed by the query pipeline plus the counts
// the panels need to render pagination controls.
type View[T any] struct {
	Items         []T `json:"items"`
	Total         int `json:"total"`
	FilteredTotal int `json:"filteredTotal"`
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
}

// Evaluate runs the pipeline in its fixed order: search, filter, sort, page.
// It is a pure function of its inputs; the input slice is never mutated.
//
// Pagination intentionally does not clamp: when a delete or a narrower
// filter shrinks the result below the current page offset the slice is
// empty, and the caller recovers by paging back.
func (s Schema[T]) Evaluate(items []T, p Params) View[T] {
	matched := make([]T, 0, len(items))
	needle := strings.ToLower(p.Search())
	for _, item := range items {
		if needle != "" && !s.matchesSearch(item, needle) {
			continue
		}
		if !s.matchesFilters(item, p.filters) {
			continue
		}
		matched = append(matched, item)
	}

	if compare, ok := s.Sorts[p.SortKey()]; ok {
		descending := p.SortDir() == SortDesc
		sort.SliceStable(matched, func(i, j int) bool {
			c := compare(matched[i], matched[j])
			if descending {
				return c > 0
			}
			return c < 0
		})
	}

	start := p.Page() * p.PageSize()
	end := start + p.PageSize()
	var page []T
	switch {
	case start >= len(matched):
		page = []T{}
	case end > len(matched):
		page = matched[start:]
	default:
		page = matched[start:end]
	}

	return View[T]{
		Items:         page,
		Total:         len(items),
		FilteredTotal: len(matched),
		Page:          p.Page(),
		PageSize:      p.PageSize(),
	}
}

func (s Schema[T]) matchesSearch(item T, needle string) bool {
	for _, field := range s.SearchFields {
		if strings.Contains(strings.ToLower(field(item)), needle) {
			return true
		}
	}
	return false
}

// matchesFilters applies every active dimension with logical AND. A
// dimension the schema does not declare matches nothing, so a typo in a
// query parameter surfaces as an empty result rather than a silent pass.
func (s Schema[T]) matchesFilters(item T, filters map[string]string) bool {
	for dimension, want := range filters {
		field, ok := s.Filters[dimension]
		if !ok {
			return false
		}
		if field(item) != want {
			return false
		}
	}
	return true
}
