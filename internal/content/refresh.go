package content

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"churchcms/internal/ics"
	appLog "churchcms/internal/log"
)

// refreshTimeout bounds one scheduled refresh.
const refreshTimeout = 2 * time.Minute

// Observer receives refresh outcomes; metrics.Collector implements it.
type Observer interface {
	ObserveRefresh(err error)
	ObserveFeedFailure(sourceID string)
}

type nopObserver struct{}

func (nopObserver) ObserveRefresh(error)      {}
func (nopObserver) ObserveFeedFailure(string) {}

// Refresher reloads the collection files and re-imports every feed.
type Refresher struct {
	lib     *Library
	fetcher *ics.Fetcher
	sources []ics.Source
	loc     *time.Location
	obs     Observer

	mu sync.Mutex
}

// NewRefresher wires a library to its feeds. obs may be nil.
func NewRefresher(lib *Library, fetcher *ics.Fetcher, sources []ics.Source, loc *time.Location, obs Observer) *Refresher {
	if obs == nil {
		obs = nopObserver{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Refresher{lib: lib, fetcher: fetcher, sources: sources, loc: loc, obs: obs}
}

// Refresh runs one reload. A file that fails to decode aborts the reload
// and keeps the previous content. A feed that fails keeps its previously
// imported events; feed failures are joined into the returned error.
func (r *Refresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	if err := r.lib.Load(); err != nil {
		err = fmt.Errorf("%w: %w", ErrReload, err)
		r.obs.ObserveRefresh(err)
		return err
	}

	var feedErrs []error
	if r.fetcher != nil {
		for _, src := range r.sources {
			events, errs := r.fetcher.Collect(ctx, []ics.Source{src}, r.loc)
			if len(errs) > 0 {
				r.obs.ObserveFeedFailure(src.ID)
				feedErrs = append(feedErrs, errs...)
				continue
			}
			r.lib.SetFeedEvents(src.ID, events)
		}
	}
	for _, id := range r.lib.FeedSources() {
		if !slices.ContainsFunc(r.sources, func(s ics.Source) bool { return s.ID == id }) {
			r.lib.SetFeedEvents(id, nil)
		}
	}

	err := errors.Join(feedErrs...)
	r.obs.ObserveRefresh(err)
	appLog.Info("content refreshed",
		"feeds", len(r.sources),
		"feed_failures", len(feedErrs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return err
}

// Scheduler runs a Refresher on a cron spec.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler parses spec (five-field cron syntax or descriptors such as
// "@every 10m") and registers the refresh job.
func NewScheduler(spec string, r *Refresher) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := r.Refresh(ctx); err != nil {
			appLog.Error("scheduled refresh failed", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("content: refresh schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running refresh or ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Next reports when the refresh will next run.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
