package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/dialoguetree/pkg/dsl"
	"github.com/aretw0/dialoguetree/pkg/ports"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.GraphLoader using an in-memory map.
type Loader struct {
	graphs map[string][]byte
}

// NewLoader creates a loader serving the given graph files (YAML or JSON) by ID.
func NewLoader(data map[string]string) *Loader {
	graphs := make(map[string][]byte, len(data))
	for k, v := range data {
		graphs[k] = []byte(v)
	}
	return &Loader{graphs: graphs}
}

// NewFromGraphs encodes editable graphs as YAML and serves them by graph ID.
func NewFromGraphs(graphs ...*dsl.Graph) (*Loader, error) {
	data := make(map[string][]byte, len(graphs))
	for _, g := range graphs {
		if g == nil || g.ID == "" {
			return nil, fmt.Errorf("graph missing ID")
		}
		if _, dup := data[g.ID]; dup {
			return nil, fmt.Errorf("duplicate graph %s", g.ID)
		}
		encoded, err := yaml.Marshal(g)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal graph %s: %w", g.ID, err)
		}
		data[g.ID] = encoded
	}
	return &Loader{graphs: data}, nil
}

// LoadGraph returns the raw definition of a graph.
func (l *Loader) LoadGraph(ctx context.Context, id string) ([]byte, error) {
	content, ok := l.graphs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrGraphNotFound, id)
	}
	return content, nil
}

// ListGraphs returns all available graph IDs.
func (l *Loader) ListGraphs(ctx context.Context) ([]string, error) {
	return slices.Sorted(maps.Keys(l.graphs)), nil
}
