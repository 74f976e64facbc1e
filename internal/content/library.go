// Package content keeps the browsable collections in memory, backed by one
// YAML file per kind, and merges events imported from calendar feeds.
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"churchcms/internal/aggregate"
	"churchcms/internal/config"
	appLog "churchcms/internal/log"
	"churchcms/internal/model"
)

var (
	ErrNotFound    = errors.New("content: not found")
	ErrUnknownKind = errors.New("content: unknown kind")
	ErrReadOnly    = errors.New("content: record is managed by a calendar feed")
	ErrInvalid     = errors.New("content: invalid record")
	// ErrReload wraps a collection file that failed to load.
	ErrReload = errors.New("content: reload")
)

// Record is any browsable content record.
type Record interface {
	model.Study | model.Message | model.Video | model.Event
}

// Library holds every collection. Readers get copies, so a snapshot stays
// stable while the library is reloaded or edited.
type Library struct {
	dir string

	// fileMu serializes file IO so a reload never interleaves with a
	// write. mu guards the in-memory collections.
	fileMu sync.Mutex

	mu       sync.RWMutex
	studies  []model.Study
	messages []model.Message
	videos   []model.Video
	events   []model.Event
	feeds    map[string][]model.Event

	newID func() string
}

// New returns an empty library persisted under dir.
func New(dir string) *Library {
	return &Library{
		dir:   dir,
		feeds: make(map[string][]model.Event),
		newID: func() string { return uuid.NewString() },
	}
}

func (l *Library) path(kind model.Kind) string {
	return filepath.Join(l.dir, string(kind)+".yaml")
}

// Load reads every collection file. A missing file is an empty collection.
// Nothing is replaced unless all files decode.
func (l *Library) Load() error {
	l.fileMu.Lock()
	defer l.fileMu.Unlock()

	var (
		studies  []model.Study
		messages []model.Message
		videos   []model.Video
		events   []model.Event
	)
	if err := readCollection(l.path(model.KindStudies), &studies); err != nil {
		return err
	}
	if err := readCollection(l.path(model.KindMessages), &messages); err != nil {
		return err
	}
	if err := readCollection(l.path(model.KindVideos), &videos); err != nil {
		return err
	}
	if err := readCollection(l.path(model.KindEvents), &events); err != nil {
		return err
	}
	for i := range events {
		events[i].Source = model.SourceLocal
	}
	// Hand-edited files may spell books loosely; unknown names are kept.
	for i := range studies {
		if b := aggregate.CanonicalBook(studies[i].Book); b != "" {
			studies[i].Book = b
		}
	}
	for i := range messages {
		if b := aggregate.CanonicalBook(messages[i].Book); b != "" {
			messages[i].Book = b
		}
	}

	l.mu.Lock()
	l.studies, l.messages, l.videos, l.events = studies, messages, videos, events
	l.mu.Unlock()

	appLog.Info("content loaded",
		"dir", l.dir,
		"studies", len(studies),
		"messages", len(messages),
		"videos", len(videos),
		"events", len(events),
	)
	return nil
}

func readCollection[T any](path string, out *[]T) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			*out = []T{}
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("content: decode %s: %w", filepath.Base(path), err)
	}
	if *out == nil {
		*out = []T{}
	}
	return nil
}

// Save writes one collection file atomically.
func (l *Library) Save(kind model.Kind) error {
	l.fileMu.Lock()
	defer l.fileMu.Unlock()

	l.mu.RLock()
	var v any
	switch kind {
	case model.KindStudies:
		v = l.studies
	case model.KindMessages:
		v = l.messages
	case model.KindVideos:
		v = l.videos
	case model.KindEvents:
		v = l.events
	default:
		l.mu.RUnlock()
		return ErrUnknownKind
	}
	data, err := yaml.Marshal(v)
	l.mu.RUnlock()
	if err != nil {
		return err
	}
	return l.writeCollection(kind, data)
}

func (l *Library) writeCollection(kind model.Kind, data []byte) error {
	return config.WriteFileAtomic(l.path(kind), data, ".churchcms-"+string(kind)+"-*.tmp")
}

func (l *Library) Studies() []model.Study {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.studies)
}

func (l *Library) Messages() []model.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.messages)
}

func (l *Library) Videos() []model.Video {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.videos)
}

// Events returns local events followed by feed events, feeds in source
// order.
func (l *Library) Events() []model.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := slices.Clone(l.events)
	ids := make([]string, 0, len(l.feeds))
	for id := range l.feeds {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		out = append(out, l.feeds[id]...)
	}
	return out
}

// SetFeedEvents replaces the events imported from one feed. A nil slice
// removes the feed.
func (l *Library) SetFeedEvents(sourceID string, events []model.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if events == nil {
		delete(l.feeds, sourceID)
		return
	}
	evs := slices.Clone(events)
	for i := range evs {
		evs[i].Source = sourceID
	}
	l.feeds[sourceID] = evs
}

// FeedSources lists the feeds currently merged into the events.
func (l *Library) FeedSources() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.feeds))
	for id := range l.feeds {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Counts reports the size of every collection.
func (l *Library) Counts() map[model.Kind]int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	feed := 0
	for _, evs := range l.feeds {
		feed += len(evs)
	}
	return map[model.Kind]int{
		model.KindStudies:  len(l.studies),
		model.KindMessages: len(l.messages),
		model.KindVideos:   len(l.videos),
		model.KindEvents:   len(l.events) + feed,
	}
}

// slot returns the locally editable collection for T. Reading or
// replacing the slice requires l.mu.
func slot[T Record](l *Library) (*[]T, model.Kind) {
	var zero T
	switch any(zero).(type) {
	case model.Study:
		return any(&l.studies).(*[]T), model.KindStudies
	case model.Message:
		return any(&l.messages).(*[]T), model.KindMessages
	case model.Video:
		return any(&l.videos).(*[]T), model.KindVideos
	default:
		return any(&l.events).(*[]T), model.KindEvents
	}
}

func idOf[T Record](rec T) string {
	switch r := any(rec).(type) {
	case model.Study:
		return r.ID
	case model.Message:
		return r.ID
	case model.Video:
		return r.ID
	case model.Event:
		return r.ID
	}
	return ""
}

func withID[T Record](rec T, id string) T {
	switch r := any(&rec).(type) {
	case *model.Study:
		r.ID = id
	case *model.Message:
		r.ID = id
	case *model.Video:
		r.ID = id
	case *model.Event:
		r.ID = id
	}
	return rec
}

func (l *Library) feedEvent(id string) bool {
	for _, evs := range l.feeds {
		for _, e := range evs {
			if e.ID == id {
				return true
			}
		}
	}
	return false
}

// Get finds a record by ID. Feed events are found too.
func Get[T Record](l *Library, id string) (T, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	items, kind := slot[T](l)
	for _, it := range *items {
		if idOf(it) == id {
			return it, nil
		}
	}
	var zero T
	if kind == model.KindEvents {
		for _, evs := range l.feeds {
			for _, e := range evs {
				if e.ID == id {
					return any(e).(T), nil
				}
			}
		}
	}
	return zero, ErrNotFound
}

// Create validates rec, assigns a fresh ID and appends it. The record
// becomes visible only once the collection file is written.
func Create[T Record](l *Library, rec T) (T, error) {
	rec, err := prepare(rec)
	if err != nil {
		return rec, err
	}
	rec = withID(rec, l.newID())

	l.fileMu.Lock()
	defer l.fileMu.Unlock()

	l.mu.RLock()
	items, kind := slot[T](l)
	next := append(slices.Clone(*items), rec)
	l.mu.RUnlock()

	if err := commit(l, next); err != nil {
		return rec, err
	}
	appLog.Info("content created", "kind", kind, "id", idOf(rec))
	return rec, nil
}

// Update replaces the record with the given ID. Feed events are read-only.
func Update[T Record](l *Library, id string, rec T) (T, error) {
	rec, err := prepare(rec)
	if err != nil {
		return rec, err
	}
	rec = withID(rec, id)

	l.fileMu.Lock()
	defer l.fileMu.Unlock()

	l.mu.RLock()
	items, kind := slot[T](l)
	i := slices.IndexFunc(*items, func(it T) bool { return idOf(it) == id })
	if i < 0 {
		readOnly := kind == model.KindEvents && l.feedEvent(id)
		l.mu.RUnlock()
		if readOnly {
			return rec, ErrReadOnly
		}
		return rec, ErrNotFound
	}
	next := slices.Clone(*items)
	next[i] = rec
	l.mu.RUnlock()

	if err := commit(l, next); err != nil {
		return rec, err
	}
	appLog.Info("content updated", "kind", kind, "id", id)
	return rec, nil
}

// Delete removes the record with the given ID. Feed events are read-only.
func Delete[T Record](l *Library, id string) error {
	l.fileMu.Lock()
	defer l.fileMu.Unlock()

	l.mu.RLock()
	items, kind := slot[T](l)
	next := slices.DeleteFunc(slices.Clone(*items), func(it T) bool { return idOf(it) == id })
	removed := len(next) != len(*items)
	readOnly := !removed && kind == model.KindEvents && l.feedEvent(id)
	l.mu.RUnlock()

	switch {
	case readOnly:
		return ErrReadOnly
	case !removed:
		return ErrNotFound
	}
	if err := commit(l, next); err != nil {
		return err
	}
	appLog.Info("content deleted", "kind", kind, "id", id)
	return nil
}

// commit writes next as T's collection file and then swaps it into
// memory. Callers hold l.fileMu.
func commit[T Record](l *Library, next []T) error {
	items, kind := slot[T](l)
	data, err := yaml.Marshal(next)
	if err != nil {
		return fmt.Errorf("content: encode %s: %w", kind, err)
	}
	if err := l.writeCollection(kind, data); err != nil {
		return fmt.Errorf("content: save %s: %w", kind, err)
	}
	l.mu.Lock()
	*items = next
	l.mu.Unlock()
	return nil
}
