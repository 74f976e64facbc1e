// Package browse binds the generic facet engine and aggregation to the four
// content kinds and assembles the view model each browsing screen renders.
package browse

import (
	"slices"

	"churchcms/internal/aggregate"
	"churchcms/internal/facet"
	"churchcms/internal/model"
)

// Screen is one browsing screen: how to read the records, which fields
// can be grouped into selector options, and the labels of their "all"
// entries.
type Screen[T any] struct {
	Kind   model.Kind
	Schema facet.Schema[T]

	// Groups are the aggregatable fields. Every filter key is a group;
	// the tab field may be one too.
	Groups map[string]facet.Accessor[T]
	// Reference holds fixed taxonomies (the canonical book list) whose
	// options are listed in full, zero-count entries disabled.
	Reference map[string][]string
	// AllLabels label the leading "all" option of each group.
	AllLabels map[string]string
}

// Result is the computed view model of one screen.
type Result[T any] struct {
	Kind         model.Kind `json:"kind"`
	Items        []T        `json:"items"`
	HasMore      bool       `json:"hasMore"`
	Total        int        `json:"total"`
	DisplayCount int        `json:"displayCount"`
	// NextCount is the display count a "load more" request should send.
	NextCount int `json:"nextCount"`
	// Filtered with Empty means "offer clear all filters"; Empty alone
	// means the collection itself is empty.
	Filtered bool                          `json:"filtered"`
	Empty    bool                          `json:"empty"`
	State    facet.State                   `json:"state"`
	Options  map[string][]aggregate.Option `json:"options"`
}

// NewState is the state of a freshly opened screen.
func (sc Screen[T]) NewState() facet.State {
	return facet.NewState(sc.Schema)
}

// Build normalizes st, runs the engine over items and attaches selector
// options computed from the full collection.
func (sc Screen[T]) Build(items []T, st facet.State) Result[T] {
	st = facet.Normalize(sc.Schema, st)
	view := facet.ComputeView(items, sc.Schema, st)

	return Result[T]{
		Kind:         sc.Kind,
		Items:        view.Visible,
		HasMore:      view.HasMore,
		Total:        view.Total,
		DisplayCount: view.DisplayCount,
		NextCount:    st.LoadMore().DisplayCount,
		Filtered:     view.Filtered,
		Empty:        view.Empty(),
		State:        st,
		Options:      sc.Options(items),
	}
}

// GroupKeys lists the aggregatable fields in name order.
func (sc Screen[T]) GroupKeys() []string {
	keys := make([]string, 0, len(sc.Groups))
	for k := range sc.Groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Aggregates groups the full collection by one field. ok is false for an
// unknown field.
func (sc Screen[T]) Aggregates(items []T, by string) ([]aggregate.Aggregate, bool) {
	field, ok := sc.Groups[by]
	if !ok {
		return nil, false
	}
	return aggregate.Compute(items, field, sc.Schema.Date), true
}

// Options builds every selector: a leading "all" entry followed by the
// reference taxonomy or the live aggregates.
func (sc Screen[T]) Options(items []T) map[string][]aggregate.Option {
	out := make(map[string][]aggregate.Option, len(sc.Groups))
	for _, key := range sc.GroupKeys() {
		aggs, _ := sc.Aggregates(items, key)

		var opts []aggregate.Option
		if ref, ok := sc.Reference[key]; ok {
			opts = aggregate.ReferenceOptions(ref, aggs)
		} else {
			aggregate.SortByName(aggs)
			opts = aggregate.Options(aggs)
		}

		label := sc.AllLabels[key]
		if label == "" {
			label = "All"
		}
		out[key] = append([]aggregate.Option{aggregate.AllOption(label, len(items))}, opts...)
	}
	return out
}
