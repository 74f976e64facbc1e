package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"churchcms/internal/config"
	"churchcms/internal/content"
	"churchcms/internal/ics"
	appLog "churchcms/internal/log"
	"churchcms/internal/metrics"
	"churchcms/internal/model"
	"churchcms/internal/web"
)

var version = "dev"

// options are the command-line flags; the config file holds the rest.
type options struct {
	Config string `long:"config" env:"CHURCHCMS_CONFIG" default:"/etc/churchcms/config.yaml" description:"Path to config file"`
	Listen string `long:"listen" env:"CHURCHCMS_LISTEN" description:"HTTP listen address (overrides config if set)"`
	Once   bool   `long:"once" description:"Load content and feeds once, print a summary and exit"`
	Debug  bool   `long:"debug" env:"CHURCHCMS_DEBUG" description:"Enable debug logging"`
}

func main() {
	var opts options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	level := appLog.LevelInfo
	if opts.Debug {
		level = appLog.LevelDebug
	}
	appLog.Setup(os.Stderr, level)
	appLog.Info("churchcms starting", "version", version)

	if err := run(opts); err != nil {
		appLog.Error("churchcms failed", err)
		os.Exit(1)
	}
	appLog.Info("churchcms exiting")
}

func run(opts options) error {
	conf, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("load config %s: %w", opts.Config, err)
	}
	if opts.Listen != "" {
		conf.Listen = opts.Listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"refresh", conf.RefreshCron,
		"content_dir", conf.ContentDir,
		"ics_count", len(conf.ICS),
		"once", opts.Once,
	)

	loc, err := time.LoadLocation(conf.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", conf.Timezone, err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	lib := content.New(conf.ContentDir)
	fetcher := ics.NewFetcher(conf.CacheDir, nil)
	refresher := content.NewRefresher(lib, fetcher, ics.SourcesFromConfig(conf.ICS), loc, collector)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := refresher.Refresh(ctx); err != nil {
		if opts.Once {
			return err
		}
		// Feeds are retried on schedule; a bad content file is fatal.
		if errors.Is(err, content.ErrReload) {
			return err
		}
		appLog.Warn("initial refresh incomplete", "error", err.Error())
	}

	if opts.Once {
		counts := lib.Counts()
		for _, kind := range model.Kinds {
			fmt.Printf("%-10s %d\n", kind, counts[kind])
		}
		return nil
	}

	sched, err := content.NewScheduler(conf.RefreshCron, refresher)
	if err != nil {
		return err
	}
	sched.Start()
	appLog.Info("refresh scheduled", "spec", conf.RefreshCron, "next", sched.Next().Format(time.RFC3339))
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sched.Stop(stopCtx)
	}()

	srv := web.NewServer(web.Deps{
		Config:    conf,
		Library:   lib,
		Refresher: refresher,
		Metrics:   collector,
		Gatherer:  reg,
	})
	defer srv.Close()

	return srv.ListenAndServe(ctx)
}
