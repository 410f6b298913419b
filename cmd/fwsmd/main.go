// Command fwsmd loads a state machine table, runs a number of instances of
// it on the realtime runtime and exposes their metrics over HTTP.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/comalice/fwsm"
	"github.com/comalice/fwsm/internal/config"
	"github.com/comalice/fwsm/internal/core"
	"github.com/comalice/fwsm/internal/extensibility"
	"github.com/comalice/fwsm/internal/logger"
	"github.com/comalice/fwsm/internal/production"
	"github.com/comalice/fwsm/realtime"
)

func main() {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		slog.Error("load config", logger.Error(err))
		os.Exit(1)
	}
	log := logger.New(
		logger.WithLevelName(cfg.LogLevel),
		logger.WithFormat(logger.Format(cfg.LogFormat)),
		logger.WithAttr(slog.String("service", "fwsmd")),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("fwsmd failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, log *slog.Logger) error {
	table, err := core.ReadConfig(cfg.Table)
	if err != nil {
		return err
	}
	catalog, err := newCatalog(table, cfg.Guards, log)
	if err != nil {
		return err
	}

	observers := &production.Fanout{}
	m, err := core.Load(table, catalog, core.WithObserver(observers), core.WithLogger(log))
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	metrics, err := production.NewMetricsObserver(reg, m)
	if err != nil {
		return err
	}
	observers.Add(production.NewLoggingObserver(log, m), metrics)

	persister, err := newPersister(cfg)
	if err != nil {
		return err
	}

	rt := realtime.NewRuntime(realtime.Config{
		TickRate:           cfg.TickRate,
		MaxTriggersPerTick: cfg.QueueSize,
		Logger:             log,
	})
	for i := 0; i < cfg.Instances; i++ {
		name := m.ID() + "-" + strconv.Itoa(i)
		d, err := instance(ctx, m, persister, name, i, log)
		if err != nil {
			return err
		}
		if err := rt.Add(name, d); err != nil {
			return err
		}
	}

	timers := make(map[fwsm.Trigger]time.Duration, len(cfg.Timers))
	for trigger, period := range cfg.Timers {
		tr, ok := m.Trigger(trigger)
		if !ok {
			return errors.Newf("FWSM_TIMERS: unknown trigger %q", trigger)
		}
		timers[tr] = period
	}

	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return rt.Run(runCtx) })

	for tr, period := range timers {
		src := extensibility.NewTimerSource(tr, period)
		g.Go(func() error {
			defer src.Stop()
			return rt.Forward(gctx, "", src.Triggers())
		})
	}

	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		log.Info("serving metrics", slog.String("addr", cfg.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "metrics server")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		// Snapshots are taken before the runtime stops the machines.
		err := persist(m, rt, persister)
		cancelRun()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return errors.CombineErrors(err, srv.Shutdown(shutdownCtx))
	})

	return g.Wait()
}

func newPersister(cfg Config) (core.Persister, error) {
	if cfg.SnapshotDir == "" {
		return nil, nil
	}
	switch cfg.SnapshotFormat {
	case "json":
		p, err := production.NewJSONPersister(cfg.SnapshotDir)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "yaml":
		p, err := production.NewYAMLPersister(cfg.SnapshotDir)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, errors.Newf("FWSM_SNAPSHOT_FORMAT: unknown format %q", cfg.SnapshotFormat)
	}
}

// instance resumes the saved instance called name, or derives a fresh one.
func instance(ctx context.Context, m *core.Machine, p core.Persister, name string, index int, log *slog.Logger) (*fwsm.Descriptor, error) {
	data := extensibility.Vars{"instance": name, "index": index}
	if p == nil {
		return m.New(fwsm.WithData(data)), nil
	}
	rec, err := p.Load(ctx, name)
	switch {
	case errors.Is(err, production.ErrNoRecord):
		return m.New(fwsm.WithData(data)), nil
	case err != nil:
		return nil, err
	}
	d, err := m.Resume(rec, fwsm.WithData(data))
	if errors.Is(err, core.ErrVersionMismatch) {
		log.Warn("discarding snapshot of an older table", slog.String("instance", name), slog.String("version", rec.Version))
		return m.New(fwsm.WithData(data)), nil
	}
	if err != nil {
		return nil, err
	}
	log.Info("resumed instance", slog.String("instance", name), slog.Any("active", rec.Active))
	return d, nil
}

func persist(m *core.Machine, rt *realtime.Runtime, p core.Persister) error {
	if p == nil {
		return nil
	}
	var errs error
	for _, name := range rt.Names() {
		var rec core.Record
		if err := rt.Inspect(name, func(d *fwsm.Descriptor) { rec = m.Record(name, d) }); err != nil {
			errs = errors.CombineErrors(errs, err)
			continue
		}
		errs = errors.CombineErrors(errs, p.Save(context.Background(), rec))
	}
	return errs
}
