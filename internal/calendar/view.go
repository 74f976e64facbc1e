package calendar

import (
	"time"

	"churchcms/internal/model"
)

// Mode is the events screen's display state.
type Mode string

const (
	ModeList     Mode = "list"
	ModeCalendar Mode = "calendar"
)

// TypeAll disables the type filter.
const TypeAll = "all"

// View is the events screen state: display mode, navigated month and type
// filter. Changing one never resets the others.
type View struct {
	Mode  Mode   `json:"mode"`
	Month Month  `json:"month"`
	Type  string `json:"type"`
}

// NewView opens the list on month m with no type filter.
func NewView(m Month) View {
	return View{Mode: ModeList, Month: NewMonth(m.Year, m.Month), Type: TypeAll}
}

// WithMode switches between list and calendar. Unknown modes are ignored.
func (v View) WithMode(mode Mode) View {
	if mode == ModeList || mode == ModeCalendar {
		v.Mode = mode
	}
	return v
}

// Toggle flips list and calendar.
func (v View) Toggle() View {
	if v.Mode == ModeCalendar {
		v.Mode = ModeList
	} else {
		v.Mode = ModeCalendar
	}
	return v
}

// WithType selects the event type filter. Unknown types select all.
func (v View) WithType(t string) View {
	v.Type = TypeAll
	for _, known := range model.EventTypes {
		if t == known {
			v.Type = t
		}
	}
	return v
}

func (v View) NextMonth() View {
	v.Month = v.Month.Next()
	return v
}

func (v View) PrevMonth() View {
	v.Month = v.Month.Prev()
	return v
}

// FilterType keeps events of type t; TypeAll keeps everything.
func FilterType(events []model.Event, t string) []model.Event {
	if t == "" || t == TypeAll {
		return events
	}
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Caps are the display limits of the two list buckets.
type Caps struct {
	Upcoming  int
	Recurring int
}

// Page is the computed events screen.
type Page struct {
	View        View                `json:"view"`
	Today       string              `json:"today"`
	MonthStart  string              `json:"monthStart"`
	MonthEnd    string              `json:"monthEnd"`
	MonthEvents []model.Event       `json:"monthEvents"`
	Upcoming    Capped[model.Event] `json:"upcoming"`
	Recurring   Capped[model.Event] `json:"recurring"`
	Weeks       [][]Day             `json:"weeks,omitempty"`
}

// Compute applies the type filter, window-matches the month and, in
// calendar mode, lays out the grid. The type filter scopes every bucket,
// including recurring.
func (v View) Compute(events []model.Event, today string, caps Caps, weekStart time.Weekday) Page {
	scoped := FilterType(events, v.Type)
	sel := SelectForMonth(scoped, v.Month, today)

	page := Page{
		View:        v,
		Today:       today,
		MonthStart:  v.Month.Start(),
		MonthEnd:    v.Month.End(),
		MonthEvents: sel.MonthEvents,
		Upcoming:    Cap(sel.Upcoming, caps.Upcoming),
		Recurring:   Cap(sel.Recurring, caps.Recurring),
	}
	if v.Mode == ModeCalendar {
		page.Weeks = Grid(v.Month, scoped, today, weekStart)
	}
	return page
}
