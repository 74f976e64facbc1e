package facet

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// View is the computed view model of one browsing screen.
type View[T any] struct {
	// Visible is the current page window: the first DisplayCount matches.
	Visible []T `json:"items"`
	// HasMore reports whether a "load more" would reveal more items.
	HasMore bool `json:"hasMore"`
	// Total is the number of matches before pagination.
	Total        int `json:"total"`
	DisplayCount int `json:"displayCount"`
	// Filtered reports whether search/filters/date narrowed the result;
	// an empty filtered view should offer "clear all filters".
	Filtered bool `json:"filtered"`
}

// Empty reports whether nothing matched.
func (v View[T]) Empty() bool {
	return v.Total == 0
}

// ComputeView filters, sorts and paginates items. It never mutates items.
func ComputeView[T any](items []T, s Schema[T], st State) View[T] {
	view := View[T]{
		Visible:      []T{},
		DisplayCount: st.DisplayCount,
		Filtered:     st.Active(),
	}
	if len(items) == 0 {
		return view
	}

	matched := Match(items, s, st)
	Sort(matched, s, st)

	n := min(max(st.DisplayCount, 0), len(matched))
	view.Visible = matched[:n:n]
	view.HasMore = st.DisplayCount < len(matched)
	view.Total = len(matched)
	return view
}

// Match returns a new slice with the items that pass, in order: tab scope,
// free-text search, categorical filters and the date range. Each stage
// narrows the previous one and stops early once nothing is left.
func Match[T any](items []T, s Schema[T], st State) []T {
	out := slices.Clone(items)

	if s.Tab != nil && st.Tab != "" && st.Tab != AllValue {
		out = keep(out, func(it T) bool { return s.Tab(it) == st.Tab })
	}

	if q := strings.ToLower(trimmed(st.Search)); q != "" && len(out) > 0 {
		out = keep(out, func(it T) bool { return matchesSearch(it, s.Search, q) })
	}

	for _, key := range sortedKeys(st.Filters) {
		if len(out) == 0 {
			break
		}
		want := st.Filters[key]
		field, ok := s.Filters[key]
		if !ok || want == "" || want == AllValue {
			continue
		}
		out = keep(out, func(it T) bool { return field(it) == want })
	}

	if s.Date != nil && (st.DateFrom != "" || st.DateTo != "") && len(out) > 0 {
		out = keep(out, func(it T) bool { return inRange(s.Date(it), st.DateFrom, st.DateTo) })
	}

	return out
}

// Sort orders items in place by the state's sort field. The direction
// flips the primary comparison only; ties are broken by ascending ID so
// the order does not depend on the input order.
func Sort[T any](items []T, s Schema[T], st State) {
	key, ok := s.Sorts[st.SortField]
	if !ok {
		key, ok = s.Sorts[s.DefaultSort]
	}
	if !ok || key.Value == nil {
		if s.ID != nil {
			slices.SortStableFunc(items, func(a, b T) int { return strings.Compare(s.ID(a), s.ID(b)) })
		}
		return
	}

	dir := st.SortDirection
	if !dir.Valid() {
		dir = s.defaultDirection()
	}

	var primary func(a, b string) int
	switch key.Kind {
	case SortDate:
		primary = strings.Compare
	default:
		// collate.Collator keeps internal buffers; one per call keeps
		// ComputeView safe for concurrent callers.
		tag := s.Language
		if tag == language.Und {
			tag = language.English
		}
		primary = collate.New(tag).CompareString
	}

	slices.SortStableFunc(items, func(a, b T) int {
		c := primary(key.Value(a), key.Value(b))
		if dir == Desc {
			c = -c
		}
		if c != 0 || s.ID == nil {
			return c
		}
		return strings.Compare(s.ID(a), s.ID(b))
	})
}

func matchesSearch[T any](it T, fields []Accessor[T], q string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f(it)), q) {
			return true
		}
	}
	return false
}

// inRange applies inclusive ISO bounds. Items without a date never match a
// bounded range.
func inRange(date, from, to string) bool {
	if date == "" {
		return false
	}
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

func keep[T any](items []T, pred func(T) bool) []T {
	return slices.DeleteFunc(items, func(it T) bool { return !pred(it) })
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
