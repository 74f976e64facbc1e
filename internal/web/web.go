package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/schema"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/language"

	"churchcms/internal/browse"
	"churchcms/internal/calendar"
	"churchcms/internal/config"
	"churchcms/internal/content"
	appLog "churchcms/internal/log"
	"churchcms/internal/metrics"
	"churchcms/internal/model"
)

// Deps are the collaborators of a Server.
type Deps struct {
	Config    *config.Config
	Library   *content.Library
	Refresher *content.Refresher
	Metrics   *metrics.Collector
	Gatherer  prometheus.Gatherer
	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

// Server serves the browsing, calendar and admin APIs.
type Server struct {
	cfg       *config.Config
	lib       *content.Library
	refresher *content.Refresher
	metrics   *metrics.Collector
	gatherer  prometheus.Gatherer
	now       func() time.Time

	loc       *time.Location
	weekStart time.Weekday
	screens   browse.Screens
	decoder   *schema.Decoder
	limiter   *rateLimiter
}

// NewServer constructs a Server. Call Close to stop its background work.
func NewServer(d Deps) *Server {
	cfg := d.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.Normalize()

	now := d.Now
	if now == nil {
		now = time.Now
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	return &Server{
		cfg:       cfg,
		lib:       d.Library,
		refresher: d.Refresher,
		metrics:   d.Metrics,
		gatherer:  gatherer,
		now:       now,
		loc:       resolveLocationOrLocal(cfg.Timezone),
		weekStart: calendar.ParseWeekStart(cfg.WeekStart),
		screens:   browse.NewScreens(cfg.PageSize, language.English),
		decoder:   dec,
		limiter:   newRateLimiter(cfg.RateLimit, cfg.RateBurst, 5*time.Minute),
	}
}

// Close stops the rate limiter's cleanup loop.
func (s *Server) Close() {
	s.limiter.stop()
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler(s.gatherer))

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.middleware)

		r.Get("/api/events/calendar", s.handleCalendar)
		r.Get("/api/{kind}", s.handleBrowse)
		r.Get("/api/{kind}/aggregates", s.handleAggregates)
		r.Get("/api/{kind}/{id}", s.handleGet)
	})

	r.Route("/api/admin", func(r chi.Router) {
		if s.basicAuthEnabled() {
			r.Use(s.basicAuthMiddleware)
		}
		r.Post("/refresh", s.handleRefresh)
		r.Post("/{kind}", s.handleCreate)
		r.Put("/{kind}/{id}", s.handleUpdate)
		r.Delete("/{kind}/{id}", s.handleDelete)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if !s.basicAuthEnabled() {
		appLog.Warn("admin API has no basic auth configured", "listen", s.cfg.Listen)
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg.BasicAuth == nil {
		return false
	}
	// Empty credentials disable auth rather than lock everyone out.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="churchcms", charset="UTF-8"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// today is computed once per request in the configured timezone.
func (s *Server) today() string {
	return model.Today(s.now(), s.loc)
}

func kindParam(r *http.Request) (model.Kind, bool) {
	return model.ParseKind(chi.URLParam(r, "kind"))
}

// statusFor maps content errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, content.ErrNotFound), errors.Is(err, content.ErrUnknownKind):
		return http.StatusNotFound
	case errors.Is(err, content.ErrReadOnly):
		return http.StatusConflict
	case errors.Is(err, content.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
