package web

import (
	"net/http"
	"time"

	"churchcms/internal/calendar"
)

type calendarQuery struct {
	Year         int    `schema:"year"`
	Month        int    `schema:"month"`
	Type         string `schema:"type"`
	Mode         string `schema:"mode"`
	UpcomingCap  int    `schema:"upcoming_cap"`
	RecurringCap int    `schema:"recurring_cap"`
}

// handleCalendar serves the events screen for one month. Year and month
// default to the current month in the configured timezone.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	var q calendarQuery
	if err := s.decoder.Decode(&q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query: "+err.Error())
		return
	}

	today := s.today()
	current, _ := calendar.MonthOf(today)
	if q.Year == 0 {
		q.Year = current.Year
	}
	if q.Month == 0 {
		q.Month = int(current.Month)
	}
	// Dates compare as strings, which only holds for four-digit years.
	if q.Year < 1 || q.Year > 9999 {
		writeError(w, http.StatusBadRequest, "year must be between 1 and 9999")
		return
	}
	if q.Month < 1 || q.Month > 12 {
		writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	view := calendar.NewView(calendar.NewMonth(q.Year, time.Month(q.Month))).
		WithMode(calendar.Mode(q.Mode)).
		WithType(q.Type)

	caps := calendar.Caps{Upcoming: s.cfg.UpcomingCap, Recurring: s.cfg.RecurringCap}
	if q.UpcomingCap > 0 {
		caps.Upcoming = q.UpcomingCap
	}
	if q.RecurringCap > 0 {
		caps.Recurring = q.RecurringCap
	}

	page := view.Compute(s.lib.Events(), today, caps, s.weekStart)
	if s.metrics != nil {
		s.metrics.RecordCalendarSelection(string(view.Mode))
	}
	writeJSON(w, http.StatusOK, page)
}
