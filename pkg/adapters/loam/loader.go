// Package loam serves dialogue graphs stored as documents in a Loam repository.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/dialoguetree/pkg/ports"
	"github.com/aretw0/loam"
	"gopkg.in/yaml.v3"
)

// Loader adapts the Loam library to the ports.GraphLoader interface.
type Loader struct {
	Repo *loam.TypedRepository[GraphDocument]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[GraphDocument]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a strict, read-only Loam repository at dir and wraps it.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve graph directory: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph repository: %w", err)
	}
	return New(loam.NewTypedRepository[GraphDocument](repo)), nil
}

// LoadGraph retrieves a graph document and re-encodes it as YAML for the compiler.
// Loam resolves "tavern" to tavern.yaml, tavern.json or tavern.md.
func (l *Loader) LoadGraph(ctx context.Context, id string) ([]byte, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ports.ErrGraphNotFound, id, err)
	}

	graphID := doc.Data.ID
	if graphID == "" {
		graphID = doc.ID
	}

	data := map[string]any{
		"id":    trimExtension(graphID),
		"nodes": doc.Data.Nodes,
	}
	if len(doc.Data.Roles) > 0 {
		data["roles"] = doc.Data.Roles
	}
	if doc.Data.GenericSpeakerNames {
		data["generic_speaker_names"] = true
	}

	out, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graph %s: %w", id, err)
	}
	return out, nil
}

// ListGraphs lists all graphs in the repository, sorted.
func (l *Loader) ListGraphs(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		// Use the ID from the document if available, otherwise the file name.
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch emits the ID of every graph document that changes until ctx is done.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
