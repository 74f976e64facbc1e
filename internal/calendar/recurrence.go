package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	appLog "churchcms/internal/log"
	"churchcms/internal/model"
)

const (
	// maxOccurrencesPerEvent caps the dates of a single rule within one window.
	maxOccurrencesPerEvent = 400
	// maxRuleSteps bounds how many instances are walked to reach a window,
	// about a century of a daily rule.
	maxRuleSteps = 40000
)

var weekdayByName = map[string]rrule.Weekday{
	"mo": rrule.MO, "mon": rrule.MO, "monday": rrule.MO,
	"tu": rrule.TU, "tue": rrule.TU, "tuesday": rrule.TU,
	"we": rrule.WE, "wed": rrule.WE, "wednesday": rrule.WE,
	"th": rrule.TH, "thu": rrule.TH, "thursday": rrule.TH,
	"fr": rrule.FR, "fri": rrule.FR, "friday": rrule.FR,
	"sa": rrule.SA, "sat": rrule.SA, "saturday": rrule.SA,
	"su": rrule.SU, "sun": rrule.SU, "sunday": rrule.SU,
}

// rrule-go numbers weekdays from Monday.
var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// RuleOption converts a structured recurrence into rrule options anchored
// at dtstart.
func RuleOption(r *model.Recurrence, dtstart time.Time) (*rrule.ROption, error) {
	if r == nil {
		return nil, errors.New("recurrence: nil rule")
	}

	var opt *rrule.ROption
	switch r.Pattern {
	case model.PatternDaily:
		opt = &rrule.ROption{Freq: rrule.DAILY}
	case model.PatternWeekly:
		opt = &rrule.ROption{Freq: rrule.WEEKLY}
	case model.PatternMonthly:
		opt = &rrule.ROption{Freq: rrule.MONTHLY}
	case model.PatternYearly:
		opt = &rrule.ROption{Freq: rrule.YEARLY}
	case model.PatternCustom:
		if r.RRule == "" {
			return nil, errors.New("recurrence: custom pattern without rrule")
		}
		parsed, err := rrule.StrToROption(strings.TrimPrefix(r.RRule, "RRULE:"))
		if err != nil {
			return nil, fmt.Errorf("recurrence: parse rrule: %w", err)
		}
		opt = parsed
	default:
		return nil, fmt.Errorf("recurrence: unknown pattern %q", r.Pattern)
	}

	if r.Pattern != model.PatternCustom {
		if r.Interval > 1 {
			opt.Interval = r.Interval
		}
		for _, name := range r.Weekdays {
			wd, ok := weekdayByName[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				return nil, fmt.Errorf("recurrence: unknown weekday %q", name)
			}
			opt.Byweekday = append(opt.Byweekday, wd)
		}
	}
	// The grid has day resolution; finer rules only cost expansion time.
	if opt.Freq > rrule.DAILY {
		return nil, errors.New("recurrence: rules more frequent than daily are not supported")
	}
	for _, d := range r.ExDates {
		if !model.IsDate(d) {
			return nil, fmt.Errorf("recurrence: excluded date %q is not YYYY-MM-DD", d)
		}
	}
	opt.Dtstart = dtstart
	return opt, nil
}

// Occurrences expands a recurring event's structured rule into the ISO
// dates it falls on within [from, to]. Events without a rule, or with a
// rule that cannot be parsed, have no concrete occurrences.
func Occurrences(e model.Event, from, to string) []string {
	if !e.IsRecurring || e.Recurrence == nil {
		return nil
	}
	start, ok := model.ParseDate(e.DateStart)
	if !ok {
		return nil
	}
	fromT, okFrom := model.ParseDate(from)
	toT, okTo := model.ParseDate(to)
	if !okFrom || !okTo || toT.Before(fromT) {
		return nil
	}

	opt, err := RuleOption(e.Recurrence, start)
	if err != nil {
		appLog.Error("calendar: invalid recurrence", err, "event_id", e.ID)
		return nil
	}
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		appLog.Error("calendar: rrule rejected", err, "event_id", e.ID)
		return nil
	}

	set := &rrule.Set{}
	set.RRule(r)
	for _, d := range e.Recurrence.ExDates {
		if t, ok := model.ParseDate(d); ok {
			set.ExDate(t)
		}
	}

	// Walk forward from the reference date and stop at the window end, so
	// a long-running rule never expands past what the grid shows.
	end := toT.AddDate(0, 0, 1)
	next := set.Iterator()
	out := []string{}
	for steps := 0; steps < maxRuleSteps; steps++ {
		t, ok := next()
		if !ok || !t.Before(end) {
			break
		}
		if t.Before(fromT) {
			continue
		}
		d := model.FormatDate(t)
		if n := len(out); n > 0 && out[n-1] == d {
			continue
		}
		out = append(out, d)
		if len(out) == maxOccurrencesPerEvent {
			break
		}
	}
	return out
}

// Describe renders a structured recurrence as display text, e.g.
// "Every 2 weeks on Tuesday and Thursday". It returns "" when the rule
// cannot be read.
func Describe(r *model.Recurrence) string {
	if r == nil {
		return ""
	}
	opt, err := RuleOption(r, time.Time{})
	if err != nil {
		return ""
	}
	return DescribeOption(opt)
}

// DescribeOption renders parsed rrule options as display text.
func DescribeOption(opt *rrule.ROption) string {
	var unit string
	switch opt.Freq {
	case rrule.DAILY:
		unit = "day"
	case rrule.WEEKLY:
		unit = "week"
	case rrule.MONTHLY:
		unit = "month"
	case rrule.YEARLY:
		unit = "year"
	default:
		return "Repeats"
	}

	var b strings.Builder
	if opt.Interval > 1 {
		fmt.Fprintf(&b, "Every %d %ss", opt.Interval, unit)
	} else {
		b.WriteString("Every " + unit)
	}

	if len(opt.Byweekday) > 0 {
		days := make([]string, 0, len(opt.Byweekday))
		for _, wd := range opt.Byweekday {
			name := weekdayNames[wd.Day()]
			if n := wd.N(); n != 0 {
				name = ordinal(n) + " " + name
			}
			days = append(days, name)
		}
		b.WriteString(" on ")
		if opt.Freq == rrule.MONTHLY && opt.Byweekday[0].N() != 0 {
			b.WriteString("the ")
		}
		b.WriteString(joinAnd(days))
	}
	return b.String()
}

func ordinal(n int) string {
	if n == -1 {
		return "last"
	}
	if n < 0 {
		return fmt.Sprintf("%s to last", ordinal(-n))
	}
	suffix := "th"
	switch n % 10 {
	case 1:
		if n%100 != 11 {
			suffix = "st"
		}
	case 2:
		if n%100 != 12 {
			suffix = "nd"
		}
	case 3:
		if n%100 != 13 {
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

func joinAnd(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}
