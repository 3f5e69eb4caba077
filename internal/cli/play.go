package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/aretw0/dialoguetree"
	"github.com/aretw0/dialoguetree/internal/presentation/tui"
	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/observability"
	"github.com/aretw0/dialoguetree/pkg/runner"
	"github.com/aretw0/dialoguetree/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PlayOptions configures one interactive run.
type PlayOptions struct {
	GraphID string
	// Slot loads records before playing and merges them back afterwards. Optional.
	Slot   string
	Resume bool
	// StatePath is a YAML state file (see State). Optional.
	StatePath string
	// Seed fixes speech variation and gesture rolls when non-zero.
	Seed uint64
	JSON bool
	// Banner prints the banner before text mode play.
	Banner bool
	// MetricsAddr serves Prometheus metrics while playing, e.g. ":2112". Optional.
	MetricsAddr string

	In  io.Reader
	Out io.Writer
}

// Play compiles the graph and plays it on the console until it ends.
func (p *Project) Play(ctx context.Context, opts PlayOptions) error {
	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.In, opts.Out)
	} else {
		if opts.Banner {
			tui.PrintBanner(opts.Out)
		}
		handler = runner.NewTextHandler(opts.In, opts.Out)
	}
	console := runner.NewConsole(handler)

	state, err := LoadState(opts.StatePath)
	if err != nil {
		return err
	}
	reg := state.Registry(func(ctx context.Context, msg string) {
		_ = handler.SystemOutput(ctx, msg)
	})

	dlg, err := p.Compile(ctx, opts.GraphID, state.Resolver(reg))
	if err != nil {
		return err
	}

	hooks := observability.LogHooks(p.Logger)
	if opts.MetricsAddr != "" {
		stop, metricsHooks := p.serveMetrics(opts.MetricsAddr)
		defer stop()
		hooks = hooks.Merge(metricsHooks)
	}

	directorOpts := []dialoguetree.Option{
		dialoguetree.WithLogger(p.Logger),
		dialoguetree.WithDispatcher(reg),
		dialoguetree.WithHooks(hooks),
	}
	if opts.Seed != 0 {
		directorOpts = append(directorOpts, dialoguetree.WithRand(rand.New(rand.NewPCG(opts.Seed, opts.Seed))))
	}
	director := dialoguetree.New(console, directorOpts...)

	var runnerOpts []runner.Option
	runnerOpts = append(runnerOpts, runner.WithLogger(p.Logger))
	if opts.Slot != "" {
		store, closeFn, err := p.Config.OpenStore()
		if err != nil {
			return err
		}
		defer func() { _ = closeFn() }()

		manager := session.NewManager(store, session.WithLogger(p.Logger))
		h, err := manager.Load(ctx, opts.Slot)
		switch {
		case err == nil:
			director.ImportRecords(h)
		case !errors.Is(err, domain.ErrHistoryNotFound):
			return fmt.Errorf("failed to load slot %s: %w", opts.Slot, err)
		}
		runnerOpts = append(runnerOpts, runner.WithSaveSlot(manager, opts.Slot))
	}

	if err := director.Start(ctx, dlg, console.Cast(dlg), opts.Resume); err != nil {
		return err
	}
	return runner.New(console, runnerOpts...).Run(ctx, director)
}

// serveMetrics exposes dialogue metrics on addr until the returned stop is called.
func (p *Project) serveMetrics(addr string) (func(), domain.LifecycleHooks) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		p.Logger.Info("Starting metrics server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.Logger.Error("metrics server failed", "err", err)
		}
	}()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return stop, metrics.Hooks()
}
