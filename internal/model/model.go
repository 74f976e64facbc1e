// Package model holds the content records served by the browsing screens.
// Every orderable date is an ISO "YYYY-MM-DD" string so that comparing two
// dates is a plain string comparison.
package model

// Kind names one browsable collection.
type Kind string

const (
	KindStudies  Kind = "studies"
	KindMessages Kind = "messages"
	KindVideos   Kind = "videos"
	KindEvents   Kind = "events"
)

// Kinds lists every collection in a stable order.
var Kinds = []Kind{KindStudies, KindMessages, KindVideos, KindEvents}

// ParseKind reports whether s names a known collection.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Study is a bible study or devotional. Type selects the screen tab.
type Study struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Type        string `yaml:"type" json:"type"`
	Passage     string `yaml:"passage,omitempty" json:"passage,omitempty"`
	Book        string `yaml:"book,omitempty" json:"book,omitempty"`
	Series      string `yaml:"series,omitempty" json:"series,omitempty"`
	Speaker     string `yaml:"speaker,omitempty" json:"speaker,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Date        string `yaml:"date" json:"date"`
}

// Message is a recorded sermon.
type Message struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Series      string `yaml:"series,omitempty" json:"series,omitempty"`
	Speaker     string `yaml:"speaker,omitempty" json:"speaker,omitempty"`
	Passage     string `yaml:"passage,omitempty" json:"passage,omitempty"`
	Book        string `yaml:"book,omitempty" json:"book,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Date        string `yaml:"date" json:"date"`
	VideoURL    string `yaml:"video_url,omitempty" json:"videoUrl,omitempty"`
	AudioURL    string `yaml:"audio_url,omitempty" json:"audioUrl,omitempty"`
}

// Video is an item of the media library.
type Video struct {
	ID           string `yaml:"id" json:"id"`
	Title        string `yaml:"title" json:"title"`
	Description  string `yaml:"description,omitempty" json:"description,omitempty"`
	Series       string `yaml:"series,omitempty" json:"series,omitempty"`
	Speaker      string `yaml:"speaker,omitempty" json:"speaker,omitempty"`
	Category     string `yaml:"category,omitempty" json:"category,omitempty"`
	Date         string `yaml:"date" json:"date"`
	URL          string `yaml:"url,omitempty" json:"url,omitempty"`
	ThumbnailURL string `yaml:"thumbnail_url,omitempty" json:"thumbnailUrl,omitempty"`
}

// Event types double as the calendar's type filter values.
const (
	EventTypeEvent   = "event"
	EventTypeMeeting = "meeting"
	EventTypeProgram = "program"
)

// EventTypes lists the closed set of event types.
var EventTypes = []string{EventTypeEvent, EventTypeMeeting, EventTypeProgram}

// SourceLocal marks events maintained through the admin API; any other
// Source is the ID of the ICS feed the event was imported from.
const SourceLocal = "local"

// Event is a church calendar entry. A recurring event repeats without a
// fixed end; RecurrenceSchedule is display text only and is never parsed.
type Event struct {
	ID                 string      `yaml:"id" json:"id"`
	Title              string      `yaml:"title" json:"title"`
	Description        string      `yaml:"description,omitempty" json:"description,omitempty"`
	Location           string      `yaml:"location,omitempty" json:"location,omitempty"`
	Type               string      `yaml:"type" json:"type"`
	DateStart          string      `yaml:"date_start" json:"dateStart"`
	DateEnd            string      `yaml:"date_end,omitempty" json:"dateEnd,omitempty"`
	IsRecurring        bool        `yaml:"is_recurring,omitempty" json:"isRecurring"`
	RecurrenceSchedule string      `yaml:"recurrence_schedule,omitempty" json:"recurrenceSchedule,omitempty"`
	Recurrence         *Recurrence `yaml:"recurrence,omitempty" json:"recurrence,omitempty"`
	Source             string      `yaml:"source,omitempty" json:"source,omitempty"`
}

// End returns DateEnd, or DateStart for single-day events.
func (e Event) End() string {
	if e.DateEnd != "" {
		return e.DateEnd
	}
	return e.DateStart
}

// ReadOnly reports whether the event came from an external feed.
func (e Event) ReadOnly() bool {
	return e.Source != "" && e.Source != SourceLocal
}

// Pattern is the tag of a structured recurrence rule.
type Pattern string

const (
	PatternDaily   Pattern = "daily"
	PatternWeekly  Pattern = "weekly"
	PatternMonthly Pattern = "monthly"
	PatternYearly  Pattern = "yearly"
	PatternCustom  Pattern = "custom"
)

// Recurrence is an optional machine-readable schedule. Bucket
// classification never looks at it; the month grid uses it to place
// occurrences. Custom rules carry a raw RFC 5545 RRULE.
type Recurrence struct {
	Pattern  Pattern  `yaml:"pattern" json:"pattern"`
	Interval int      `yaml:"interval,omitempty" json:"interval,omitempty"`
	Weekdays []string `yaml:"weekdays,omitempty" json:"weekdays,omitempty"`
	RRule    string   `yaml:"rrule,omitempty" json:"rrule,omitempty"`
	// ExDates are ISO dates on which the rule does not occur.
	ExDates []string `yaml:"exdates,omitempty" json:"exDates,omitempty"`
}
