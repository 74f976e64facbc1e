package browse

import (
	"golang.org/x/text/language"

	"churchcms/internal/aggregate"
	"churchcms/internal/facet"
	"churchcms/internal/model"
)

// Study tabs.
const (
	StudyTypeStudy      = "study"
	StudyTypeDevotional = "devotional"
)

// Sort field names shared by the screens.
const (
	SortDate    = "date"
	SortTitle   = "title"
	SortSpeaker = "speaker"
	SortSeries  = "series"
	SortBook    = "book"
)

// Screens holds the four configured screens.
type Screens struct {
	Studies  Screen[model.Study]
	Messages Screen[model.Message]
	Videos   Screen[model.Video]
	Events   Screen[model.Event]
}

// NewScreens configures every screen with the given page size (the initial
// display count and the load-more increment) and collation language.
func NewScreens(pageSize int, lang language.Tag) Screens {
	return Screens{
		Studies:  StudiesScreen(pageSize, lang),
		Messages: MessagesScreen(pageSize, lang),
		Videos:   VideosScreen(pageSize, lang),
		Events:   EventsScreen(pageSize, lang),
	}
}

func StudiesScreen(pageSize int, lang language.Tag) Screen[model.Study] {
	var (
		id      = func(s model.Study) string { return s.ID }
		title   = func(s model.Study) string { return s.Title }
		book    = func(s model.Study) string { return s.Book }
		series  = func(s model.Study) string { return s.Series }
		speaker = func(s model.Study) string { return s.Speaker }
		date    = func(s model.Study) string { return s.Date }
		typ     = func(s model.Study) string { return s.Type }
	)
	return Screen[model.Study]{
		Kind: model.KindStudies,
		Schema: facet.Schema[model.Study]{
			ID:         id,
			Tab:        typ,
			Tabs:       []string{StudyTypeStudy, StudyTypeDevotional},
			DefaultTab: facet.AllValue,
			Search: []facet.Accessor[model.Study]{
				title,
				func(s model.Study) string { return s.Passage },
				func(s model.Study) string { return s.Description },
				series,
				speaker,
				book,
			},
			Filters: map[string]facet.Accessor[model.Study]{
				"series":  series,
				"book":    book,
				"speaker": speaker,
			},
			Date: date,
			Sorts: map[string]facet.SortKey[model.Study]{
				SortDate:  {Value: date, Kind: facet.SortDate},
				SortTitle: {Value: title, Kind: facet.SortText},
				SortBook:  {Value: book, Kind: facet.SortText},
			},
			DefaultSort:      SortDate,
			DefaultDirection: facet.Desc,
			PageSize:         pageSize,
			Language:         lang,
		},
		Groups: map[string]facet.Accessor[model.Study]{
			"series":  series,
			"book":    book,
			"speaker": speaker,
			"type":    typ,
		},
		Reference: map[string][]string{"book": aggregate.BibleBooks},
		AllLabels: map[string]string{
			"series":  "All series",
			"book":    "All books",
			"speaker": "All speakers",
			"type":    "All",
		},
	}
}

func MessagesScreen(pageSize int, lang language.Tag) Screen[model.Message] {
	var (
		id      = func(m model.Message) string { return m.ID }
		title   = func(m model.Message) string { return m.Title }
		book    = func(m model.Message) string { return m.Book }
		series  = func(m model.Message) string { return m.Series }
		speaker = func(m model.Message) string { return m.Speaker }
		date    = func(m model.Message) string { return m.Date }
	)
	return Screen[model.Message]{
		Kind: model.KindMessages,
		Schema: facet.Schema[model.Message]{
			ID: id,
			Search: []facet.Accessor[model.Message]{
				title,
				func(m model.Message) string { return m.Passage },
				func(m model.Message) string { return m.Description },
				series,
				speaker,
			},
			Filters: map[string]facet.Accessor[model.Message]{
				"series":  series,
				"book":    book,
				"speaker": speaker,
			},
			Date: date,
			Sorts: map[string]facet.SortKey[model.Message]{
				SortDate:    {Value: date, Kind: facet.SortDate},
				SortTitle:   {Value: title, Kind: facet.SortText},
				SortSpeaker: {Value: speaker, Kind: facet.SortText},
				SortSeries:  {Value: series, Kind: facet.SortText},
			},
			DefaultSort:      SortDate,
			DefaultDirection: facet.Desc,
			PageSize:         pageSize,
			Language:         lang,
		},
		Groups: map[string]facet.Accessor[model.Message]{
			"series":  series,
			"book":    book,
			"speaker": speaker,
		},
		Reference: map[string][]string{"book": aggregate.BibleBooks},
		AllLabels: map[string]string{
			"series":  "All series",
			"book":    "All books",
			"speaker": "All speakers",
		},
	}
}

func VideosScreen(pageSize int, lang language.Tag) Screen[model.Video] {
	var (
		id       = func(v model.Video) string { return v.ID }
		title    = func(v model.Video) string { return v.Title }
		series   = func(v model.Video) string { return v.Series }
		speaker  = func(v model.Video) string { return v.Speaker }
		category = func(v model.Video) string { return v.Category }
		date     = func(v model.Video) string { return v.Date }
	)
	return Screen[model.Video]{
		Kind: model.KindVideos,
		Schema: facet.Schema[model.Video]{
			ID: id,
			Search: []facet.Accessor[model.Video]{
				title,
				func(v model.Video) string { return v.Description },
				series,
				speaker,
				category,
			},
			Filters: map[string]facet.Accessor[model.Video]{
				"series":   series,
				"category": category,
				"speaker":  speaker,
			},
			Date: date,
			Sorts: map[string]facet.SortKey[model.Video]{
				SortDate:  {Value: date, Kind: facet.SortDate},
				SortTitle: {Value: title, Kind: facet.SortText},
			},
			DefaultSort:      SortDate,
			DefaultDirection: facet.Desc,
			PageSize:         pageSize,
			Language:         lang,
		},
		Groups: map[string]facet.Accessor[model.Video]{
			"series":   series,
			"category": category,
			"speaker":  speaker,
		},
		AllLabels: map[string]string{
			"series":   "All series",
			"category": "All categories",
			"speaker":  "All speakers",
		},
	}
}

// EventsScreen browses events as a list: tabs by type, soonest first.
// The month calendar lives in package calendar.
func EventsScreen(pageSize int, lang language.Tag) Screen[model.Event] {
	var (
		id       = func(e model.Event) string { return e.ID }
		title    = func(e model.Event) string { return e.Title }
		location = func(e model.Event) string { return e.Location }
		source   = func(e model.Event) string { return e.Source }
		start    = func(e model.Event) string { return e.DateStart }
		typ      = func(e model.Event) string { return e.Type }
	)
	return Screen[model.Event]{
		Kind: model.KindEvents,
		Schema: facet.Schema[model.Event]{
			ID:         id,
			Tab:        typ,
			Tabs:       model.EventTypes,
			DefaultTab: facet.AllValue,
			Search: []facet.Accessor[model.Event]{
				title,
				func(e model.Event) string { return e.Description },
				location,
				func(e model.Event) string { return e.RecurrenceSchedule },
			},
			Filters: map[string]facet.Accessor[model.Event]{
				"location": location,
				"source":   source,
			},
			Date: start,
			Sorts: map[string]facet.SortKey[model.Event]{
				SortDate:  {Value: start, Kind: facet.SortDate},
				SortTitle: {Value: title, Kind: facet.SortText},
			},
			DefaultSort:      SortDate,
			DefaultDirection: facet.Asc,
			PageSize:         pageSize,
			Language:         lang,
		},
		Groups: map[string]facet.Accessor[model.Event]{
			"location": location,
			"source":   source,
			"type":     typ,
		},
		Reference: map[string][]string{"type": model.EventTypes},
		AllLabels: map[string]string{
			"location": "All locations",
			"source":   "All calendars",
			"type":     "All",
		},
	}
}
