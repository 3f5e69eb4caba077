package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/dialoguetree/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	id      string
	roles   []string
	generic bool
	order   []domain.NodeID
	nodes   map[domain.NodeID]*NodeBuilder
}

// New creates a new graph builder declaring the default roles.
func New(id string) *Builder {
	return &Builder{
		id:    id,
		roles: []string{domain.RoleNPC, domain.RolePlayer},
		nodes: make(map[domain.NodeID]*NodeBuilder),
	}
}

// Roles replaces the declared speaker roles.
func (b *Builder) Roles(roles ...string) *Builder {
	b.roles = roles
	return b
}

// GenericSpeakerNames makes participants fill "Speaker1".."SpeakerN" in start order.
func (b *Builder) GenericSpeakerNames() *Builder {
	b.generic = true
	return b
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	nid := domain.NodeID(id)
	if nb, ok := b.nodes[nid]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    EditNode{ID: nid},
		builder: b,
	}
	b.nodes[nid] = nb
	b.order = append(b.order, nid)
	return nb
}

// Build assembles the graph. Nodes are created first and wired afterwards, so
// connections may point at nodes added later.
func (b *Builder) Build() (*Graph, error) {
	g := &Graph{
		ID:                  b.id,
		Roles:               append([]string(nil), b.roles...),
		GenericSpeakerNames: b.generic,
	}

	var errs []error
	for _, id := range b.order {
		nb := b.nodes[id]
		if !nb.node.Kind.Valid() {
			errs = append(errs, fmt.Errorf("%w: node %s has kind %q", ErrInvalidKind, id, nb.node.Kind))
			continue
		}
		if nb.node.Kind == domain.KindBranch && nb.whenTrue == "" && nb.whenElse != "" {
			errs = append(errs, fmt.Errorf("%w: branch %s has an else child but no then child", ErrInvalidConnection, id))
		}
		n := nb.node
		n.Children = nil
		g.Nodes = append(g.Nodes, &n)
	}

	for _, id := range b.order {
		for _, to := range b.nodes[id].connections() {
			if err := g.Connect(id, to); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to build graph %s: %w", b.id, errors.Join(errs...))
	}
	return g, nil
}
