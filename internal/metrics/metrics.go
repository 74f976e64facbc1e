// Package metrics exposes Prometheus counters for browsing, calendar
// selection, HTTP traffic and content refreshes.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements content.Observer and the recorder interface the
// web layer uses.
type Collector struct {
	views              *prometheus.CounterVec
	emptyViews         *prometheus.CounterVec
	calendarSelections *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       prometheus.Histogram
	refreshes          *prometheus.CounterVec
	feedFailures       *prometheus.CounterVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		views: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "churchcms_views_total",
			Help: "Browsing views computed, by content kind.",
		}, []string{"kind"}),
		emptyViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "churchcms_empty_views_total",
			Help: "Browsing views with no matches, by content kind.",
		}, []string{"kind"}),
		calendarSelections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "churchcms_calendar_selections_total",
			Help: "Month selections computed, by display mode.",
		}, []string{"mode"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "churchcms_http_requests_total",
			Help: "HTTP responses by status code.",
		}, []string{"status"}),
		httpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "churchcms_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "churchcms_refresh_total",
			Help: "Content refreshes by result.",
		}, []string{"result"}),
		feedFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "churchcms_ics_fetch_failures_total",
			Help: "Calendar feed refresh failures, by feed.",
		}, []string{"source"}),
	}

	reg.MustRegister(
		c.views,
		c.emptyViews,
		c.calendarSelections,
		c.httpRequests,
		c.httpDuration,
		c.refreshes,
		c.feedFailures,
	)
	return c
}

// RecordView counts one browsing view of kind.
func (c *Collector) RecordView(kind string, empty bool) {
	c.views.WithLabelValues(kind).Inc()
	if empty {
		c.emptyViews.WithLabelValues(kind).Inc()
	}
}

func (c *Collector) RecordCalendarSelection(mode string) {
	c.calendarSelections.WithLabelValues(mode).Inc()
}

func (c *Collector) RecordHTTP(status int, d time.Duration) {
	c.httpRequests.WithLabelValues(strconv.Itoa(status)).Inc()
	c.httpDuration.Observe(d.Seconds())
}

// ObserveRefresh counts a refresh as "ok" or "error".
func (c *Collector) ObserveRefresh(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.refreshes.WithLabelValues(result).Inc()
}

func (c *Collector) ObserveFeedFailure(sourceID string) {
	c.feedFailures.WithLabelValues(sourceID).Inc()
}

// Handler serves the registry for Prometheus scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
