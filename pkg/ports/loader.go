package ports

import (
	"context"
	"errors"
)

// ErrGraphNotFound is returned by loaders when a graph ID is unknown.
var ErrGraphNotFound = errors.New("graph not found")

// GraphLoader retrieves editable dialogue graphs.
// This allows the storage layer (Loam, FS, Memory) to be decoupled from the compiler.
type GraphLoader interface {
	// LoadGraph returns the raw YAML or JSON definition of a graph, which the compiler parses.
	LoadGraph(ctx context.Context, id string) ([]byte, error)

	// ListGraphs returns the IDs of every graph available.
	ListGraphs(ctx context.Context) ([]string, error)
}
