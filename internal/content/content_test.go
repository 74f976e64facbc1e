package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churchcms/internal/ics"
	"churchcms/internal/model"
)

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	l := New(t.TempDir())
	var n atomic.Int64
	l.newID = func() string { return "id-" + strconv.FormatInt(n.Add(1), 10) }
	return l
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoadReadsCollections(t *testing.T) {
	l := newTestLibrary(t)
	writeFile(t, l.dir, "studies.yaml", `
- id: s1
  title: Grace in Romans
  type: study
  book: romans
  date: "2024-03-01"
`)
	writeFile(t, l.dir, "events.yaml", `
- id: e1
  title: Youth group
  type: program
  date_start: "2023-09-06"
  is_recurring: true
  recurrence_schedule: Wednesdays at 7pm
  source: someone-elses-feed
`)

	require.NoError(t, l.Load())
	require.Len(t, l.Studies(), 1)
	assert.Equal(t, "Romans", l.Studies()[0].Book)
	assert.Empty(t, l.Messages())
	assert.NotNil(t, l.Videos())

	events := l.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.SourceLocal, events[0].Source, "file events are always local")
	assert.True(t, events[0].IsRecurring)
}

func TestLoadKeepsPreviousContentOnDecodeError(t *testing.T) {
	l := newTestLibrary(t)
	writeFile(t, l.dir, "videos.yaml", "- id: v1\n  title: Welcome\n  date: \"2024-01-01\"\n")
	require.NoError(t, l.Load())

	writeFile(t, l.dir, "messages.yaml", "- id: [broken")
	assert.Error(t, l.Load())
	assert.Len(t, l.Videos(), 1)
}

func TestSnapshotsAreCopies(t *testing.T) {
	l := newTestLibrary(t)
	_, err := Create(l, model.Video{Title: "Welcome", Date: "2024-01-01"})
	require.NoError(t, err)

	videos := l.Videos()
	videos[0].Title = "changed"
	assert.Equal(t, "Welcome", l.Videos()[0].Title)
}

func TestCreateUpdateDelete(t *testing.T) {
	l := newTestLibrary(t)

	msg, err := Create(l, model.Message{Title: "  Living hope ", Date: "2024-02-04", Series: "1 Peter"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", msg.ID)
	assert.Equal(t, "Living hope", msg.Title)

	got, err := Get[model.Message](l, "id-1")
	require.NoError(t, err)
	assert.Equal(t, msg, got)

	msg.Title = "Living hope (part 1)"
	updated, err := Update(l, "id-1", msg)
	require.NoError(t, err)
	assert.Equal(t, "Living hope (part 1)", updated.Title)

	// Persisted and reloadable.
	fresh := New(l.dir)
	require.NoError(t, fresh.Load())
	require.Len(t, fresh.Messages(), 1)
	assert.Equal(t, "Living hope (part 1)", fresh.Messages()[0].Title)

	require.NoError(t, Delete[model.Message](l, "id-1"))
	assert.Empty(t, l.Messages())
	assert.ErrorIs(t, Delete[model.Message](l, "id-1"), ErrNotFound)
	_, err = Update(l, "missing", msg)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = Get[model.Message](l, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFailedSaveLeavesMemoryUnchanged(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	writeFile(t, filepath.Dir(blocker), "blocker", "not a directory")
	l := New(filepath.Join(blocker, "content"))

	_, err := Create(l, model.Message{Title: "Grace", Date: "2024-02-04"})
	require.Error(t, err)
	assert.Empty(t, l.Messages())

	l.messages = []model.Message{{ID: "m1", Title: "Grace", Date: "2024-02-04"}}
	_, err = Update(l, "m1", model.Message{Title: "Mercy", Date: "2024-02-04"})
	require.Error(t, err)
	assert.Equal(t, "Grace", l.Messages()[0].Title)

	require.Error(t, Delete[model.Message](l, "m1"))
	assert.Len(t, l.Messages(), 1)
}

func TestReloadDuringWritesLosesNothing(t *testing.T) {
	l := newTestLibrary(t)
	const n = 20

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			_, err := Create(l, model.Message{Title: "Message " + strconv.Itoa(i), Date: "2024-02-04"})
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			assert.NoError(t, l.Load())
		}
	}()
	wg.Wait()

	assert.Len(t, l.Messages(), n)
	fresh := New(l.dir)
	require.NoError(t, fresh.Load())
	assert.Len(t, fresh.Messages(), n)
}

func TestBooksAreCanonicalized(t *testing.T) {
	l := newTestLibrary(t)

	msg, err := Create(l, model.Message{Title: "Hope", Book: "  1 peter ", Date: "2024-02-04"})
	require.NoError(t, err)
	assert.Equal(t, "1 Peter", msg.Book)

	study, err := Create(l, model.Study{Title: "Wisdom", Type: "study", Book: "PROVERBS"})
	require.NoError(t, err)
	assert.Equal(t, "Proverbs", study.Book)

	_, err = Create(l, model.Message{Title: "Apocrypha", Book: "Tobit"})
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Len(t, l.Messages(), 1)
}

func TestCreateValidates(t *testing.T) {
	l := newTestLibrary(t)

	cases := map[string]func() error{
		"study without title": func() error { _, err := Create(l, model.Study{Type: "study"}); return err },
		"study without type":  func() error { _, err := Create(l, model.Study{Title: "x"}); return err },
		"bad video date":      func() error { _, err := Create(l, model.Video{Title: "x", Date: "03/01/2024"}); return err },
		"event without start": func() error { _, err := Create(l, model.Event{Title: "x"}); return err },
		"event ends early": func() error {
			_, err := Create(l, model.Event{Title: "x", DateStart: "2024-02-10", DateEnd: "2024-02-09"})
			return err
		},
		"unknown event type": func() error {
			_, err := Create(l, model.Event{Title: "x", DateStart: "2024-02-10", Type: "concert"})
			return err
		},
		"bad recurrence": func() error {
			_, err := Create(l, model.Event{Title: "x", DateStart: "2024-02-10", Recurrence: &model.Recurrence{Pattern: "sometimes"}})
			return err
		},
	}
	for name, create := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, create(), ErrInvalid)
		})
	}
	assert.Empty(t, l.Studies())
	assert.Empty(t, l.Events())
}

func TestCreateEventDefaults(t *testing.T) {
	l := newTestLibrary(t)
	e, err := Create(l, model.Event{
		Title:      "Midweek prayer",
		DateStart:  "2024-01-03",
		Recurrence: &model.Recurrence{Pattern: model.PatternWeekly, Weekdays: []string{"wednesday"}},
		Source:     "spoofed",
	})
	require.NoError(t, err)
	assert.Equal(t, model.EventTypeEvent, e.Type)
	assert.Equal(t, model.SourceLocal, e.Source)
	assert.True(t, e.IsRecurring)
	assert.Equal(t, "Every week on Wednesday", e.RecurrenceSchedule)
}

func TestFeedEventsAreReadOnly(t *testing.T) {
	l := newTestLibrary(t)
	l.SetFeedEvents("parish", []model.Event{{ID: "parish:1", Title: "Feast", DateStart: "2024-02-02", Type: "event"}})

	e, err := Get[model.Event](l, "parish:1")
	require.NoError(t, err)
	assert.Equal(t, "parish", e.Source)

	_, err = Update(l, "parish:1", model.Event{Title: "x", DateStart: "2024-02-02"})
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.ErrorIs(t, Delete[model.Event](l, "parish:1"), ErrReadOnly)

	assert.Equal(t, []string{"parish"}, l.FeedSources())
	assert.Equal(t, 1, l.Counts()[model.KindEvents])

	l.SetFeedEvents("parish", nil)
	assert.Empty(t, l.Events())
}

func TestSaveUnknownKind(t *testing.T) {
	l := newTestLibrary(t)
	assert.ErrorIs(t, l.Save("sermons"), ErrUnknownKind)
}

const feed = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//t//t//EN\r\n" +
	"BEGIN:VEVENT\r\nUID:feast\r\nDTSTAMP:20240101T000000Z\r\nDTSTART;VALUE=DATE:20240202\r\nSUMMARY:Candlemas\r\nEND:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

type recordingObserver struct {
	refreshes []error
	failures  []string
}

func (o *recordingObserver) ObserveRefresh(err error) { o.refreshes = append(o.refreshes, err) }
func (o *recordingObserver) ObserveFeedFailure(sourceID string) {
	o.failures = append(o.failures, sourceID)
}

func TestRefresherMergesFeeds(t *testing.T) {
	var down atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	l := newTestLibrary(t)
	l.SetFeedEvents("retired", []model.Event{{ID: "retired:1", Title: "old", DateStart: "2020-01-01"}})

	obs := &recordingObserver{}
	fetcher := ics.NewFetcher(t.TempDir(), srv.Client())
	sources := []ics.Source{{ID: "parish", URL: srv.URL, Type: model.EventTypeEvent}}
	r := NewRefresher(l, fetcher, sources, time.UTC, obs)

	require.NoError(t, r.Refresh(context.Background()))
	events := l.Events()
	require.Len(t, events, 1, "feeds no longer configured are dropped")
	assert.Equal(t, "parish:feast", events[0].ID)
	assert.Equal(t, "2024-02-02", events[0].DateStart)

	// A failing feed with no usable cache keeps its previous events.
	down.Store(true)
	r.fetcher = ics.NewFetcher(t.TempDir(), srv.Client())
	err := r.Refresh(context.Background())
	require.Error(t, err)
	assert.Len(t, l.Events(), 1)
	assert.Equal(t, []string{"parish"}, obs.failures)
	require.Len(t, obs.refreshes, 2)
	assert.NoError(t, obs.refreshes[0])
	assert.Error(t, obs.refreshes[1])
}

func TestRefresherAbortsOnBadFile(t *testing.T) {
	l := newTestLibrary(t)
	writeFile(t, l.dir, "events.yaml", "not: [a list")
	obs := &recordingObserver{}
	err := NewRefresher(l, nil, nil, nil, obs).Refresh(context.Background())
	require.Error(t, err)
	require.Len(t, obs.refreshes, 1)
	assert.ErrorIs(t, err, ErrReload)
	assert.Equal(t, err, obs.refreshes[0])
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler("every so often", NewRefresher(newTestLibrary(t), nil, nil, nil, nil))
	assert.Error(t, err)

	s, err := NewScheduler("@every 1h", NewRefresher(newTestLibrary(t), nil, nil, nil, nil))
	require.NoError(t, err)
	s.Start()
	assert.False(t, s.Next().IsZero())
	s.Stop(context.Background())
}
