package ics

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"churchcms/internal/calendar"
	appLog "churchcms/internal/log"
	"churchcms/internal/model"
)

// ToEvents converts parsed VEVENTs into calendar dates in loc. Overrides of
// single instances and cancelled events are dropped, and when a UID repeats
// the highest SEQUENCE wins. The result is ordered by start date then ID.
func ToEvents(parsed []ParsedEvent, loc *time.Location) []model.Event {
	if loc == nil {
		loc = time.Local
	}

	latest := make(map[string]ParsedEvent, len(parsed))
	for _, pe := range parsed {
		if pe.IsOverride || pe.Status == "CANCELLED" {
			continue
		}
		key := pe.Source.ID + "\x00" + pe.UID
		if prev, ok := latest[key]; ok && prev.Seq > pe.Seq {
			continue
		}
		latest[key] = pe
	}

	out := make([]model.Event, 0, len(latest))
	for _, pe := range latest {
		out = append(out, toEvent(pe, loc))
	}
	slices.SortFunc(out, func(a, b model.Event) int {
		if c := cmp.Compare(a.DateStart, b.DateStart); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func toEvent(pe ParsedEvent, loc *time.Location) model.Event {
	e := model.Event{
		ID:          pe.Source.ID + ":" + pe.UID,
		Title:       pe.Summary,
		Description: pe.Description,
		Location:    pe.Location,
		Type:        eventType(pe),
		Source:      pe.Source.ID,
	}

	var start, end string
	if pe.AllDay {
		start = model.FormatDate(pe.Start)
		// All-day DTEND is exclusive.
		if !pe.End.IsZero() {
			end = model.FormatDate(pe.End.AddDate(0, 0, -1))
		}
	} else {
		start = model.FormatDate(pe.Start.In(loc))
		if pe.End.After(pe.Start) {
			end = model.FormatDate(pe.End.Add(-time.Nanosecond).In(loc))
		}
	}
	e.DateStart = start
	if end > start {
		e.DateEnd = end
	}

	if pe.RawRRule != "" {
		e.IsRecurring = true
		e.RecurrenceSchedule = "Repeats"
		rec := &model.Recurrence{Pattern: model.PatternCustom, RRule: pe.RawRRule}
		for _, ex := range pe.ExDates {
			if pe.AllDay {
				rec.ExDates = append(rec.ExDates, model.FormatDate(ex))
			} else {
				rec.ExDates = append(rec.ExDates, model.FormatDate(ex.In(loc)))
			}
		}
		// Rules the grid cannot place keep the event in the recurring list
		// only.
		opt, err := calendar.RuleOption(rec, time.Time{})
		if err != nil {
			appLog.Warn("ics rrule not placed on the grid", "id", e.ID, "rrule", pe.RawRRule, "reason", err.Error())
		} else {
			e.Recurrence = rec
			e.RecurrenceSchedule = calendar.DescribeOption(opt)
		}
	}
	return e
}

// eventType picks the first category naming a known type, then the feed's
// configured type.
func eventType(pe ParsedEvent) string {
	for _, c := range pe.Categories {
		for _, t := range model.EventTypes {
			if strings.EqualFold(c, t) {
				return t
			}
		}
	}
	for _, t := range model.EventTypes {
		if pe.Source.Type == t {
			return t
		}
	}
	return model.EventTypeEvent
}

// Collect fetches, parses and converts every source. A source that fails to
// fetch or parse contributes no events and one error.
func (f *Fetcher) Collect(ctx context.Context, sources []Source, loc *time.Location) ([]model.Event, []error) {
	results, errs := f.FetchAll(ctx, sources)

	var parsed []ParsedEvent
	for _, res := range results {
		evs, err := Parse(res.Source, res.Body)
		if err != nil {
			appLog.Error("ics parse failed", err, "id", res.Source.ID)
			errs = append(errs, fmt.Errorf("ics %s: %w", res.Source.ID, err))
			continue
		}
		parsed = append(parsed, evs...)
	}
	return ToEvents(parsed, loc), errs
}
