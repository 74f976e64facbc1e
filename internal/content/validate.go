package content

import (
	"fmt"
	"slices"
	"strings"

	"churchcms/internal/aggregate"
	"churchcms/internal/calendar"
	"churchcms/internal/model"
)

// prepare trims and validates a record before it is stored.
func prepare[T Record](rec T) (T, error) {
	var err error
	switch r := any(&rec).(type) {
	case *model.Study:
		r.Title = strings.TrimSpace(r.Title)
		err = checkTitleDate(r.Title, r.Date)
		if err == nil && strings.TrimSpace(r.Type) == "" {
			err = fmt.Errorf("%w: type is required", ErrInvalid)
		}
		if err == nil {
			err = normalizeBook(&r.Book)
		}
	case *model.Message:
		r.Title = strings.TrimSpace(r.Title)
		err = checkTitleDate(r.Title, r.Date)
		if err == nil {
			err = normalizeBook(&r.Book)
		}
	case *model.Video:
		r.Title = strings.TrimSpace(r.Title)
		err = checkTitleDate(r.Title, r.Date)
	case *model.Event:
		r.Title = strings.TrimSpace(r.Title)
		err = prepareEvent(r)
	}
	return rec, err
}

// normalizeBook rewrites book to its canonical spelling. Books outside the
// 66-book list are rejected, since the book selector could never reach them.
func normalizeBook(book *string) error {
	b := strings.TrimSpace(*book)
	if b == "" {
		*book = ""
		return nil
	}
	canonical := aggregate.CanonicalBook(b)
	if canonical == "" {
		return fmt.Errorf("%w: book %q is not a book of the Bible", ErrInvalid, b)
	}
	*book = canonical
	return nil
}

func checkTitleDate(title, date string) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if date != "" && !model.IsDate(date) {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalid, date)
	}
	return nil
}

func prepareEvent(e *model.Event) error {
	if e.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if !model.IsDate(e.DateStart) {
		return fmt.Errorf("%w: dateStart %q is not YYYY-MM-DD", ErrInvalid, e.DateStart)
	}
	if e.DateEnd != "" {
		if !model.IsDate(e.DateEnd) {
			return fmt.Errorf("%w: dateEnd %q is not YYYY-MM-DD", ErrInvalid, e.DateEnd)
		}
		if e.DateEnd < e.DateStart {
			return fmt.Errorf("%w: dateEnd before dateStart", ErrInvalid)
		}
	}
	if e.Type == "" {
		e.Type = model.EventTypeEvent
	}
	if !slices.Contains(model.EventTypes, e.Type) {
		return fmt.Errorf("%w: unknown event type %q", ErrInvalid, e.Type)
	}
	e.Source = model.SourceLocal

	if e.Recurrence != nil {
		e.IsRecurring = true
		start, _ := model.ParseDate(e.DateStart)
		if _, err := calendar.RuleOption(e.Recurrence, start); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if e.RecurrenceSchedule == "" {
			e.RecurrenceSchedule = calendar.Describe(e.Recurrence)
		}
	}
	return nil
}
