// Package calendar matches church events against a displayed month and
// splits them into the "upcoming" and "recurring" lists of the events
// screen. All functions take "today" explicitly; nothing reads the clock.
package calendar

import (
	"fmt"
	"time"

	"churchcms/internal/model"
)

// Month is one displayed calendar month.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// NewMonth normalizes out-of-range months (13 → January of the next year).
func NewMonth(year int, month time.Month) Month {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Month: t.Month()}
}

// MonthOf returns the month containing an ISO date.
func MonthOf(date string) (Month, bool) {
	t, ok := model.ParseDate(date)
	if !ok {
		return Month{}, false
	}
	return Month{Year: t.Year(), Month: t.Month()}, true
}

func (m Month) first() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Start is the ISO date of the first day.
func (m Month) Start() string {
	return model.FormatDate(m.first())
}

// End is the ISO date of the last day.
func (m Month) End() string {
	return model.FormatDate(m.first().AddDate(0, 1, -1))
}

func (m Month) Next() Month {
	return NewMonth(m.Year, m.Month+1)
}

func (m Month) Prev() Month {
	return NewMonth(m.Year, m.Month-1)
}

// String renders "YYYY-MM".
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
