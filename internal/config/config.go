package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults shared by DefaultConfig and Normalize.
const (
	DefaultListen       = "127.0.0.1:8080"
	DefaultTimezone     = "America/Chicago"
	DefaultWeekStart    = "sunday"
	DefaultRefreshCron  = "*/15 * * * *"
	DefaultContentDir   = "/var/lib/churchcms/content"
	DefaultCacheDir     = "/var/lib/churchcms/ics-cache"
	DefaultPageSize     = 9
	DefaultUpcomingCap  = 6
	DefaultRecurringCap = 6
	DefaultRateLimit    = 10
	DefaultRateBurst    = 20
)

// ICSConfig describes a calendar feed whose events are merged into the
// events collection.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used as the events' source.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label shown in the admin UI.
	Name string `yaml:"name" json:"name"`
	// Type is the event type (event, meeting, program) assigned to feed
	// events whose CATEGORIES do not name one.
	Type string `yaml:"type" json:"type"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the admin API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used to decide what "today" is and to
	// convert feed events to calendar dates.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart controls the first column of the month grid:
	//   - "sunday" (default)
	//   - "monday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RefreshCron is a cron-style schedule string for reloading content
	// files and ICS feeds.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// ContentDir holds the YAML collections (studies.yaml, messages.yaml, ...).
	ContentDir string `yaml:"content_dir" json:"content_dir"`

	// CacheDir holds ICS response bodies and their HTTP cache metadata.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// PageSize is both the initial display count and the "load more"
	// increment of every browsing screen.
	PageSize int `yaml:"page_size" json:"page_size"`

	// UpcomingCap and RecurringCap limit how many calendar list entries are
	// shown before collapsing into a "show N more" affordance.
	UpcomingCap  int `yaml:"upcoming_cap" json:"upcoming_cap"`
	RecurringCap int `yaml:"recurring_cap" json:"recurring_cap"`

	// RateLimit is the sustained per-client request rate (req/sec) for the
	// public API; RateBurst is the bucket size.
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"`
	RateBurst int     `yaml:"rate_burst" json:"rate_burst"`

	// ICS is the list of subscribed calendar feeds.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// BasicAuth, if non-nil, protects the /api/admin endpoints.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       DefaultListen,
		Timezone:     DefaultTimezone,
		WeekStart:    DefaultWeekStart,
		RefreshCron:  DefaultRefreshCron,
		ContentDir:   DefaultContentDir,
		CacheDir:     DefaultCacheDir,
		PageSize:     DefaultPageSize,
		UpcomingCap:  DefaultUpcomingCap,
		RecurringCap: DefaultRecurringCap,
		RateLimit:    DefaultRateLimit,
		RateBurst:    DefaultRateBurst,
		ICS:          []ICSConfig{},
		BasicAuth:    nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	switch c.WeekStart {
	case "monday", "sunday":
	default:
		c.WeekStart = DefaultWeekStart
	}
	if c.RefreshCron == "" {
		c.RefreshCron = DefaultRefreshCron
	}
	if c.ContentDir == "" {
		c.ContentDir = DefaultContentDir
	}
	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.UpcomingCap <= 0 {
		c.UpcomingCap = DefaultUpcomingCap
	}
	if c.RecurringCap <= 0 {
		c.RecurringCap = DefaultRecurringCap
	}
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.RateBurst <= 0 {
		c.RateBurst = DefaultRateBurst
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	for i := range c.ICS {
		if c.ICS[i].ID == "" {
			if c.ICS[i].Name != "" {
				c.ICS[i].ID = c.ICS[i].Name
			} else {
				c.ICS[i].ID = c.ICS[i].URL
			}
		}
		switch c.ICS[i].Type {
		case "event", "meeting", "program":
		default:
			c.ICS[i].Type = "event"
		}
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - Otherwise the YAML is decoded and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to path atomically (temp file in the
// same directory, then rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data, ".churchcms-config-*.tmp")
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// WriteFileAtomic writes data next to path under a temp name matching
// pattern, then renames it over path. The parent directory is created
// with 0700 if needed.
func WriteFileAtomic(path string, data []byte, pattern string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
