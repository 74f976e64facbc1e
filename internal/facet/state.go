package facet

import "maps"

// State is the caller-owned view configuration of one browsing screen.
//
// Every mutator returns a new State. All of them except LoadMore reset
// DisplayCount to one page, so changing what is shown always returns the
// user to the first page.
type State struct {
	Search        string            `json:"search"`
	Filters       map[string]string `json:"filters"`
	DateFrom      string            `json:"dateFrom,omitempty"`
	DateTo        string            `json:"dateTo,omitempty"`
	SortField     string            `json:"sort"`
	SortDirection Direction         `json:"dir"`
	Tab           string            `json:"tab,omitempty"`
	DisplayCount  int               `json:"count"`

	// PageSize is copied from the schema; it is not user-controlled.
	PageSize int `json:"-"`
}

func (st State) pageSize() int {
	if st.PageSize > 0 {
		return st.PageSize
	}
	return DefaultPageSize
}

func (st State) reset() State {
	st.DisplayCount = st.pageSize()
	return st
}

// WithSearch sets the free-text query.
func (st State) WithSearch(q string) State {
	st.Search = q
	return st.reset()
}

// WithFilter selects value for the facet key. AllValue or "" clears it.
func (st State) WithFilter(key, value string) State {
	filters := maps.Clone(st.Filters)
	if filters == nil {
		filters = map[string]string{}
	}
	if value == "" || value == AllValue {
		delete(filters, key)
	} else {
		filters[key] = value
	}
	st.Filters = filters
	return st.reset()
}

// WithDateRange sets the inclusive date bounds; "" leaves a side open.
func (st State) WithDateRange(from, to string) State {
	st.DateFrom = from
	st.DateTo = to
	return st.reset()
}

// WithSort selects the sort field and direction.
func (st State) WithSort(field string, dir Direction) State {
	st.SortField = field
	st.SortDirection = dir
	return st.reset()
}

// WithTab selects the tab scope.
func (st State) WithTab(tab string) State {
	st.Tab = tab
	return st.reset()
}

// LoadMore grows the display count by one page.
func (st State) LoadMore() State {
	st.DisplayCount += st.pageSize()
	return st
}

// Clear drops search, filters and the date range. Tab and sort are kept.
func (st State) Clear() State {
	st.Search = ""
	st.Filters = map[string]string{}
	st.DateFrom = ""
	st.DateTo = ""
	return st.reset()
}

// Active reports whether any narrowing facet (search, filter or date
// bound) is set. Tab scope does not count: it is not cleared by Clear.
func (st State) Active() bool {
	if trimmed(st.Search) != "" || st.DateFrom != "" || st.DateTo != "" {
		return true
	}
	for _, v := range st.Filters {
		if v != "" && v != AllValue {
			return true
		}
	}
	return false
}
