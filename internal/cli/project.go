package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/dialoguetree"
	"github.com/aretw0/dialoguetree/internal/presentation/graph"
	"github.com/aretw0/dialoguetree/pkg/adapters/loam"
	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/registry"
)

// Project is a graph directory opened for the CLI.
type Project struct {
	Config Config
	Logger *slog.Logger
	Loader *loam.Loader
}

// OpenProject opens the graph repository in cfg.Dir.
func OpenProject(cfg Config, logger *slog.Logger) (*Project, error) {
	loader, err := loam.Open(cfg.Dir)
	if err != nil {
		return nil, err
	}
	return &Project{Config: cfg, Logger: logger, Loader: loader}, nil
}

// Compile loads and compiles graph id. A nil resolver compiles against an empty state,
// where every query reads its zero value.
func (p *Project) Compile(ctx context.Context, id string, resolver dialoguetree.Resolver) (*domain.Dialogue, error) {
	if resolver == nil {
		state, err := LoadState("")
		if err != nil {
			return nil, err
		}
		resolver = state.Resolver(registry.New())
	}
	return dialoguetree.Load(ctx, p.Loader, id, resolver, p.Logger)
}

// Validate compiles every graph in ids (all graphs when empty) and writes one line per graph.
// It returns an error naming every graph that failed.
func (p *Project) Validate(ctx context.Context, w io.Writer, ids []string) error {
	if len(ids) == 0 {
		var err error
		if ids, err = p.Loader.ListGraphs(ctx); err != nil {
			return err
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("no graphs found in %s", p.Config.Dir)
	}

	var failed []error
	for _, id := range ids {
		dlg, err := p.Compile(ctx, id, nil)
		if err != nil {
			fmt.Fprintf(w, "FAIL %s\n", id)
			var ce *dialoguetree.CompileError
			if errors.As(err, &ce) {
				for _, d := range ce.Diagnostics {
					fmt.Fprintf(w, "     %s\n", d.String())
				}
			} else {
				fmt.Fprintf(w, "     %v\n", err)
			}
			failed = append(failed, fmt.Errorf("%s: %w", id, err))
			continue
		}
		fmt.Fprintf(w, "ok   %s (%d nodes)\n", id, dlg.NumNodes())
	}
	return errors.Join(failed...)
}

// Graph writes a Mermaid flowchart of graph id. When slot is set, the nodes any speaker
// visited in that save are highlighted.
func (p *Project) Graph(ctx context.Context, w io.Writer, id, slot string) error {
	dlg, err := p.Compile(ctx, id, nil)
	if err != nil {
		return err
	}

	var overlay *graph.GraphOverlay
	if slot != "" {
		store, closeFn, err := p.Config.OpenStore()
		if err != nil {
			return err
		}
		defer func() { _ = closeFn() }()

		h, err := store.Load(ctx, slot)
		if err != nil {
			return fmt.Errorf("failed to load slot %s: %w", slot, err)
		}
		overlay = &graph.GraphOverlay{}
		if dh := h[dlg.ID]; dh != nil {
			for _, sh := range dh.Speakers {
				overlay.VisitedNodes = append(overlay.VisitedNodes, sh.Visited.Sorted()...)
				if overlay.CurrentNode == "" {
					overlay.CurrentNode = sh.ResumeNodeID
				}
			}
		}
	}

	_, err = io.WriteString(w, graph.GenerateMermaid(dlg, overlay))
	return err
}

// WatchValidate validates every graph, then revalidates each graph whose file changes
// until ctx is done. Failures are reported on w and do not stop the watch.
func (p *Project) WatchValidate(ctx context.Context, w io.Writer) error {
	changes, err := p.Loader.Watch(ctx)
	if err != nil {
		return err
	}
	if err := p.Validate(ctx, w, nil); err != nil {
		p.Logger.Warn("validation failed", "err", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-changes:
			if !ok {
				return nil
			}
			p.Logger.Debug("graph changed", "graph_id", id)
			if err := p.Validate(ctx, w, []string{id}); err != nil {
				p.Logger.Warn("validation failed", "graph_id", id, "err", err)
			}
		}
	}
}
