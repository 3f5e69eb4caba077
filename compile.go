package dialoguetree

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/dialoguetree/internal/compiler"
	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/dsl"
	"github.com/aretw0/dialoguetree/pkg/ports"
)

// Resolver turns serialized conditions into live ones. *registry.Registry implements it.
type Resolver = compiler.Resolver

// CompileError lists every node that failed validation.
type CompileError = compiler.CompileError

// Compile builds b and compiles the result. resolver may be nil when the graph uses no conditions.
func Compile(b *dsl.Builder, resolver Resolver) (*domain.Dialogue, error) {
	g, err := b.Build()
	if err != nil {
		return nil, err
	}
	return CompileGraph(g, resolver)
}

// CompileGraph compiles an editable graph.
func CompileGraph(g *dsl.Graph, resolver Resolver) (*domain.Dialogue, error) {
	return compilerFor(resolver, nil).Build(g)
}

// Relink resolves the conditions and option locks of a dialogue decoded from JSON, which
// come back uncompiled, and makes it playable again.
func Relink(dlg *domain.Dialogue, resolver Resolver) error {
	return compilerFor(resolver, nil).Relink(dlg)
}

// Parse decodes a YAML or JSON graph file.
func Parse(data []byte) (*dsl.Graph, error) {
	return compiler.NewParser().Parse(data)
}

// Load reads graph id from loader, parses and compiles it.
func Load(ctx context.Context, loader ports.GraphLoader, id string, resolver Resolver, logger *slog.Logger) (*domain.Dialogue, error) {
	data, err := loader.LoadGraph(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("graph %q: %w", id, err)
	}
	return compilerFor(resolver, logger).Build(g)
}

func compilerFor(resolver Resolver, logger *slog.Logger) *compiler.Compiler {
	var opts []compiler.Option
	if resolver != nil {
		opts = append(opts, compiler.WithResolver(resolver))
	}
	if logger != nil {
		opts = append(opts, compiler.WithLogger(logger))
	}
	return compiler.New(opts...)
}
