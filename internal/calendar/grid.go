package calendar

import (
	"time"

	"churchcms/internal/model"
)

// Day is one cell of the month grid.
type Day struct {
	Date    string        `json:"date"`
	InMonth bool          `json:"inMonth"`
	IsToday bool          `json:"isToday"`
	Events  []model.Event `json:"events"`
}

// ParseWeekStart maps the config value to a weekday; anything but
// "monday" starts weeks on Sunday.
func ParseWeekStart(s string) time.Weekday {
	if s == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// Grid lays out m as whole weeks starting on weekStart. Each day lists the
// one-off events covering it plus the occurrences of recurring events that
// carry a structured rule. Recurring events without a rule have no
// concrete dates and only appear in the recurring list.
func Grid(m Month, events []model.Event, today string, weekStart time.Weekday) [][]Day {
	first := m.first()
	last := first.AddDate(0, 1, -1)

	gridStart := first.AddDate(0, 0, -int((first.Weekday()-weekStart+7)%7))
	gridEnd := last.AddDate(0, 0, int((weekStart+6-last.Weekday()+7)%7))
	from, to := model.FormatDate(gridStart), model.FormatDate(gridEnd)

	byDate := make(map[string][]model.Event)
	for _, e := range events {
		if e.IsRecurring {
			for _, d := range Occurrences(e, from, to) {
				byDate[d] = append(byDate[d], e)
			}
			continue
		}
		if !Overlaps(e, from, to) {
			continue
		}
		// Walk only the part of a multi-day event that is on the grid.
		start, end := max(e.DateStart, from), min(e.End(), to)
		if !model.IsDate(start) || !model.IsDate(end) {
			continue
		}
		for d := start; d <= end; d = model.AddDays(d, 1) {
			byDate[d] = append(byDate[d], e)
		}
	}

	var weeks [][]Day
	for day := gridStart; !day.After(gridEnd); day = day.AddDate(0, 0, 7) {
		week := make([]Day, 0, 7)
		for i := range 7 {
			t := day.AddDate(0, 0, i)
			date := model.FormatDate(t)
			evs := byDate[date]
			if evs == nil {
				evs = []model.Event{}
			}
			sortByStart(evs)
			week = append(week, Day{
				Date:    date,
				InMonth: t.Month() == m.Month,
				IsToday: date == today,
				Events:  evs,
			})
		}
		weeks = append(weeks, week)
	}
	return weeks
}
