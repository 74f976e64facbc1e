// Package facet implements the faceted content browser shared by every
// browsing screen: tab scope, free-text search, categorical filters, an
// inclusive date range, sorting and "load more" pagination.
//
// The engine owns no state. A Schema describes how to read a record type,
// a State holds the caller's current facet values, and ComputeView is a
// pure function of (items, schema, state).
package facet

import (
	"golang.org/x/text/language"
)

const (
	// AllValue is the selector value meaning "no constraint" for a filter
	// or tab.
	AllValue = "all"

	// DefaultPageSize is the initial display count and the "load more"
	// increment when a schema does not set one.
	DefaultPageSize = 9
)

// Direction is the sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Valid reports whether d is asc or desc.
func (d Direction) Valid() bool {
	return d == Asc || d == Desc
}

// Accessor reads one string field of a record. An empty result means the
// field is absent.
type Accessor[T any] func(T) string

// SortKind selects the comparator used for a sort field.
type SortKind int

const (
	// SortText compares with a locale-aware collator.
	SortText SortKind = iota
	// SortDate compares ISO dates byte-wise, which is correct for the
	// fixed-width zero-padded format.
	SortDate
)

// SortKey is one selectable sort field.
type SortKey[T any] struct {
	Value Accessor[T]
	Kind  SortKind
}

// Schema describes how the engine reads records of type T.
type Schema[T any] struct {
	// ID is the stable secondary sort key. Required for deterministic
	// ordering of ties.
	ID Accessor[T]

	// Tab reads the coarse partition field. Nil for screens without tabs.
	Tab Accessor[T]
	// Tabs is the closed set of tab values; DefaultTab is selected on a
	// fresh State. DefaultTab may be AllValue.
	Tabs       []string
	DefaultTab string

	// Search fields are OR-ed for free-text matching.
	Search []Accessor[T]

	// Filters maps a facet key (e.g. "series") to the field it constrains.
	Filters map[string]Accessor[T]

	// Date is the field checked against the date range. Nil disables the
	// date facet.
	Date Accessor[T]

	Sorts            map[string]SortKey[T]
	DefaultSort      string
	DefaultDirection Direction

	// PageSize is the initial display count and load-more increment.
	PageSize int

	// Language drives text collation; the zero value collates as English.
	Language language.Tag
}

func (s Schema[T]) pageSize() int {
	if s.PageSize > 0 {
		return s.PageSize
	}
	return DefaultPageSize
}

func (s Schema[T]) defaultDirection() Direction {
	if s.DefaultDirection.Valid() {
		return s.DefaultDirection
	}
	return Desc
}

func (s Schema[T]) hasTab(tab string) bool {
	if tab == AllValue {
		return true
	}
	for _, t := range s.Tabs {
		if t == tab {
			return true
		}
	}
	return false
}

// NewState returns the defaults for a freshly mounted browsing screen.
func NewState[T any](s Schema[T]) State {
	return State{
		Filters:       map[string]string{},
		SortField:     s.DefaultSort,
		SortDirection: s.defaultDirection(),
		Tab:           s.DefaultTab,
		DisplayCount:  s.pageSize(),
		PageSize:      s.pageSize(),
	}
}

// Normalize repairs a State decoded from an untrusted source: unknown sort
// fields, directions, tabs and filter keys fall back to the schema's
// defaults, malformed dates are dropped and DisplayCount is at least one
// page.
func Normalize[T any](s Schema[T], st State) State {
	st.PageSize = s.pageSize()

	if _, ok := s.Sorts[st.SortField]; !ok {
		st.SortField = s.DefaultSort
	}
	if !st.SortDirection.Valid() {
		st.SortDirection = s.defaultDirection()
	}

	if s.Tab == nil {
		st.Tab = ""
	} else if st.Tab == "" || !s.hasTab(st.Tab) {
		st.Tab = s.DefaultTab
	}

	if len(st.Filters) > 0 {
		clean := make(map[string]string, len(st.Filters))
		for k, v := range st.Filters {
			if _, ok := s.Filters[k]; !ok || v == "" || v == AllValue {
				continue
			}
			clean[k] = v
		}
		st.Filters = clean
	} else {
		st.Filters = map[string]string{}
	}

	if st.DateFrom != "" && !isISODate(st.DateFrom) {
		st.DateFrom = ""
	}
	if st.DateTo != "" && !isISODate(st.DateTo) {
		st.DateTo = ""
	}

	if st.DisplayCount < st.PageSize {
		st.DisplayCount = st.PageSize
	}
	return st
}

// isISODate checks the YYYY-MM-DD shape without calendar validation; the
// engine only needs the fixed width for string comparison to hold.
func isISODate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, c := range s {
		if i == 4 || i == 7 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
