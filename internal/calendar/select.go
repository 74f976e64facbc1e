package calendar

import (
	"cmp"
	"slices"

	"churchcms/internal/model"
)

// Selection is the result of matching events against one month.
type Selection struct {
	// MonthEvents overlap the month, recurring or not.
	MonthEvents []model.Event `json:"monthEvents"`
	// Upcoming are the non-recurring month events starting today or later,
	// earliest first.
	Upcoming []model.Event `json:"upcoming"`
	// Recurring holds every recurring event of the whole collection,
	// ordered by reference start date. It does not depend on the month.
	Recurring []model.Event `json:"recurring"`
}

// Overlaps reports whether the event's [DateStart, End()] interval
// intersects [from, to]. Events without a start date never match.
func Overlaps(e model.Event, from, to string) bool {
	if e.DateStart == "" {
		return false
	}
	return e.DateStart <= to && e.End() >= from
}

// SelectForMonth window-matches events against m. today is an ISO date
// computed once by the caller.
func SelectForMonth(events []model.Event, m Month, today string) Selection {
	sel := Selection{
		MonthEvents: []model.Event{},
		Upcoming:    []model.Event{},
		Recurring:   []model.Event{},
	}
	from, to := m.Start(), m.End()

	for _, e := range events {
		if e.IsRecurring {
			sel.Recurring = append(sel.Recurring, e)
		}
		if !Overlaps(e, from, to) {
			continue
		}
		sel.MonthEvents = append(sel.MonthEvents, e)
		if !e.IsRecurring && e.DateStart >= today {
			sel.Upcoming = append(sel.Upcoming, e)
		}
	}

	sortByStart(sel.MonthEvents)
	sortByStart(sel.Upcoming)
	sortByStart(sel.Recurring)
	return sel
}

func sortByStart(events []model.Event) {
	slices.SortStableFunc(events, func(a, b model.Event) int {
		if c := cmp.Compare(a.DateStart, b.DateStart); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Capped is a display-limited list. Total and Hidden feed the
// "show N more" affordance.
type Capped[T any] struct {
	Shown  []T `json:"items"`
	Total  int `json:"total"`
	Hidden int `json:"hidden"`
}

// Cap keeps the first n items. n <= 0 disables the cap.
func Cap[T any](items []T, n int) Capped[T] {
	if items == nil {
		items = []T{}
	}
	if n <= 0 || len(items) <= n {
		return Capped[T]{Shown: items, Total: len(items)}
	}
	return Capped[T]{Shown: items[:n:n], Total: len(items), Hidden: len(items) - n}
}
