// Package aggregate derives grouped summaries (count and latest date per
// series, book, speaker, ...) and the facet selector options built from
// them. Aggregates always describe the full collection, never a filtered
// view, so their counts stay stable while the user narrows the list.
package aggregate

import (
	"cmp"
	"fmt"
	"slices"
)

// Aggregate summarizes the items sharing one value of a categorical field.
type Aggregate struct {
	Name           string `json:"name"`
	Count          int    `json:"count"`
	MostRecentDate string `json:"mostRecentDate,omitempty"`
}

// Compute groups items by the non-empty value of groupBy. Items without a
// value belong to no group. MostRecentDate is the lexicographic maximum of
// date over the group's members (date may be nil). The result is ordered
// by MostRecentDate descending, then by Name.
func Compute[T any](items []T, groupBy func(T) string, date func(T) string) []Aggregate {
	byName := make(map[string]*Aggregate)
	for _, it := range items {
		name := groupBy(it)
		if name == "" {
			continue
		}
		agg, ok := byName[name]
		if !ok {
			agg = &Aggregate{Name: name}
			byName[name] = agg
		}
		agg.Count++
		if date != nil {
			if d := date(it); d > agg.MostRecentDate {
				agg.MostRecentDate = d
			}
		}
	}

	out := make([]Aggregate, 0, len(byName))
	for _, agg := range byName {
		out = append(out, *agg)
	}
	SortByRecent(out)
	return out
}

// SortByRecent orders aggregates most recently active first.
func SortByRecent(aggs []Aggregate) {
	slices.SortFunc(aggs, func(a, b Aggregate) int {
		if c := cmp.Compare(b.MostRecentDate, a.MostRecentDate); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

// SortByName orders aggregates alphabetically.
func SortByName(aggs []Aggregate) {
	slices.SortFunc(aggs, func(a, b Aggregate) int { return cmp.Compare(a.Name, b.Name) })
}

// SortByCount orders aggregates largest first, then by name.
func SortByCount(aggs []Aggregate) {
	slices.SortFunc(aggs, func(a, b Aggregate) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

// Counts indexes aggregates by name.
func Counts(aggs []Aggregate) map[string]int {
	out := make(map[string]int, len(aggs))
	for _, a := range aggs {
		out[a.Name] = a.Count
	}
	return out
}

// Option is one entry of a facet selector.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Count    int    `json:"count"`
	Disabled bool   `json:"disabled,omitempty"`
}

// AllOption is the leading "no constraint" selector entry.
func AllOption(label string, total int) Option {
	return Option{Value: "all", Label: label, Count: total}
}

// Options turns dynamic aggregates into selector entries, keeping their
// order.
func Options(aggs []Aggregate) []Option {
	out := make([]Option, 0, len(aggs))
	for _, a := range aggs {
		out = append(out, Option{
			Value: a.Name,
			Label: label(a.Name, a.Count),
			Count: a.Count,
		})
	}
	return out
}

// ReferenceOptions lists every entry of a fixed reference taxonomy in
// reference order, merged with live counts. Entries with no items stay in
// the list, disabled. Aggregates whose name is not in the reference are
// ignored.
func ReferenceOptions(reference []string, aggs []Aggregate) []Option {
	counts := Counts(aggs)
	out := make([]Option, 0, len(reference))
	for _, name := range reference {
		n := counts[name]
		out = append(out, Option{
			Value:    name,
			Label:    label(name, n),
			Count:    n,
			Disabled: n == 0,
		})
	}
	return out
}

func label(name string, n int) string {
	if n == 0 {
		return name
	}
	return fmt.Sprintf("%s (%d)", name, n)
}
