package dsl

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/dialoguetree/pkg/condition"
	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/transition"
	"github.com/google/uuid"
)

var (
	ErrDuplicateNode     = errors.New("node already exists")
	ErrInvalidKind       = errors.New("invalid node kind")
	ErrConnectionLimit   = errors.New("connection limit reached")
	ErrInvalidConnection = errors.New("invalid connection")
	ErrEntryRequired     = errors.New("the entry node cannot be removed")
)

// EntryID is the ID given to the entry node of a new graph.
const EntryID domain.NodeID = "entry"

// EditNode is a node as authored. Only the fields relevant to Kind are used.
type EditNode struct {
	ID       domain.NodeID   `json:"id" yaml:"id" mapstructure:"id"`
	Kind     domain.Kind     `json:"kind" yaml:"kind" mapstructure:"kind"`
	Children []domain.NodeID `json:"children,omitempty" yaml:"children,omitempty" mapstructure:"children"`
	Target   domain.NodeID   `json:"target,omitempty" yaml:"target,omitempty" mapstructure:"target"`

	Speech     *domain.SpeechDetails `json:"speech,omitempty" yaml:"speech,omitempty" mapstructure:"speech"`
	Transition domain.TransitionKind `json:"transition,omitempty" yaml:"transition,omitempty" mapstructure:"transition"`
	SkipEvents []domain.EventSpec    `json:"skip_events,omitempty" yaml:"skip_events,omitempty" mapstructure:"skip_events"`
	Events     []domain.EventSpec    `json:"events,omitempty" yaml:"events,omitempty" mapstructure:"events"`

	Condition *condition.Spec     `json:"condition,omitempty" yaml:"condition,omitempty" mapstructure:"condition"`
	Lock      *condition.LockSpec `json:"lock,omitempty" yaml:"lock,omitempty" mapstructure:"lock"`
}

// Graph is an editable dialogue graph.
type Graph struct {
	ID                  string      `json:"id" yaml:"id" mapstructure:"id"`
	Roles               []string    `json:"roles,omitempty" yaml:"roles,omitempty" mapstructure:"roles"`
	GenericSpeakerNames bool        `json:"generic_speaker_names,omitempty" yaml:"generic_speaker_names,omitempty" mapstructure:"generic_speaker_names"`
	Nodes               []*EditNode `json:"nodes" yaml:"nodes" mapstructure:"nodes"`
}

// NewGraph creates a graph holding only its entry node and the default roles.
func NewGraph(id string) *Graph {
	return &Graph{
		ID:    id,
		Roles: []string{domain.RoleNPC, domain.RolePlayer},
		Nodes: []*EditNode{{ID: EntryID, Kind: domain.KindEntry}},
	}
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id domain.NodeID) *EditNode {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Entry returns the first entry node, or nil.
func (g *Graph) Entry() *EditNode {
	for _, n := range g.Nodes {
		if n.Kind == domain.KindEntry {
			return n
		}
	}
	return nil
}

// AddNode creates a node of the given kind. An empty id is replaced by a random one.
func (g *Graph) AddNode(kind domain.Kind, id domain.NodeID) (*EditNode, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if id == "" {
		id = domain.NodeID(uuid.NewString())
	}
	if g.Node(id) != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	n := &EditNode{ID: id, Kind: kind}
	if kind == domain.KindSpeech {
		n.Speech = &domain.SpeechDetails{}
	}
	g.Nodes = append(g.Nodes, n)
	return n, nil
}

// MaxChildren returns how many children n may have, or -1 for no limit.
func MaxChildren(n *EditNode) int {
	return domain.MaxChildren(n.Kind, transition.Limit(n.Transition))
}

// Connect wires to as a child of from. A parent limited to a single child has it replaced.
func (g *Graph) Connect(from, to domain.NodeID) error {
	parent, child := g.Node(from), g.Node(to)
	if parent == nil {
		return fmt.Errorf("connect %s: %w", from, domain.ErrNodeNotFound)
	}
	if child == nil {
		return fmt.Errorf("connect %s: %w", to, domain.ErrNodeNotFound)
	}
	if from == to {
		return fmt.Errorf("%w: %s cannot connect to itself", ErrInvalidConnection, from)
	}
	if child.Kind == domain.KindEntry {
		return fmt.Errorf("%w: entry %s cannot be a child", ErrInvalidConnection, to)
	}
	if slices.Contains(parent.Children, to) {
		return nil
	}

	switch limit := MaxChildren(parent); {
	case limit == 1 && len(parent.Children) >= 1:
		parent.Children = []domain.NodeID{to}
		return nil
	case limit >= 0 && len(parent.Children) >= limit:
		return fmt.Errorf("%w: %s (%s) accepts %d", ErrConnectionLimit, from, parent.Kind, limit)
	}
	parent.Children = append(parent.Children, to)
	return nil
}

// Disconnect removes to from the children of from.
func (g *Graph) Disconnect(from, to domain.NodeID) error {
	parent := g.Node(from)
	if parent == nil {
		return fmt.Errorf("disconnect %s: %w", from, domain.ErrNodeNotFound)
	}
	parent.Children = slices.DeleteFunc(parent.Children, func(id domain.NodeID) bool { return id == to })
	return nil
}

// SetTarget sets the referenced node of a jump or set-jump-back node.
// The target may not exist yet; the compiler resolves it.
func (g *Graph) SetTarget(id, target domain.NodeID) error {
	n := g.Node(id)
	if n == nil {
		return fmt.Errorf("set target %s: %w", id, domain.ErrNodeNotFound)
	}
	if !n.Kind.IsJump() {
		return fmt.Errorf("%w: %s is a %s node", ErrInvalidKind, id, n.Kind)
	}
	n.Target = target
	return nil
}

// SetTransition changes the transition of a speech node. When the new kind accepts fewer
// children, the excess connections are severed and returned.
func (g *Graph) SetTransition(id domain.NodeID, kind domain.TransitionKind) ([]domain.NodeID, error) {
	n := g.Node(id)
	if n == nil {
		return nil, fmt.Errorf("set transition %s: %w", id, domain.ErrNodeNotFound)
	}
	if n.Kind != domain.KindSpeech {
		return nil, fmt.Errorf("%w: %s is a %s node", ErrInvalidKind, id, n.Kind)
	}
	n.Transition = kind

	limit := MaxChildren(n)
	if limit < 0 || len(n.Children) <= limit {
		return nil, nil
	}
	severed := slices.Clone(n.Children[limit:])
	n.Children = n.Children[:limit]
	return severed, nil
}

// AddRole declares a speaker role. Declaring an existing role is a no-op.
func (g *Graph) AddRole(role string) {
	if !slices.Contains(g.Roles, role) {
		g.Roles = append(g.Roles, role)
	}
}

// RenameRole renames a declared role and rewrites every speech and gesture using it.
// It returns the IDs of the nodes that changed.
func (g *Graph) RenameRole(oldRole, newRole string) []domain.NodeID {
	if oldRole == newRole {
		return nil
	}
	roles := make([]string, 0, len(g.Roles))
	for _, r := range g.Roles {
		if r == oldRole {
			r = newRole
		}
		if !slices.Contains(roles, r) {
			roles = append(roles, r)
		}
	}
	g.Roles = roles

	var changed []domain.NodeID
	for _, n := range g.Nodes {
		if n.Speech == nil {
			continue
		}
		touched := false
		if n.Speech.Role == oldRole {
			n.Speech.Role = newRole
			touched = true
		}
		for i := range n.Speech.Gestures {
			if n.Speech.Gestures[i].Role == oldRole {
				n.Speech.Gestures[i].Role = newRole
				touched = true
			}
		}
		if touched {
			changed = append(changed, n.ID)
		}
	}
	return changed
}

// RemoveNode deletes a node and every connection and target pointing at it.
func (g *Graph) RemoveNode(id domain.NodeID) error {
	n := g.Node(id)
	if n == nil {
		return fmt.Errorf("remove %s: %w", id, domain.ErrNodeNotFound)
	}
	if n.Kind == domain.KindEntry {
		return ErrEntryRequired
	}
	g.Nodes = slices.DeleteFunc(g.Nodes, func(other *EditNode) bool { return other.ID == id })
	for _, other := range g.Nodes {
		other.Children = slices.DeleteFunc(other.Children, func(c domain.NodeID) bool { return c == id })
		if other.Target == id {
			other.Target = ""
		}
	}
	return nil
}
