package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

// CompileStatus tracks the lifecycle of a dialogue asset.
type CompileStatus string

const (
	StatusUncompiled CompileStatus = "uncompiled"
	StatusCompiled   CompileStatus = "compiled"
	StatusFailed     CompileStatus = "failed"
)

// Default speaker roles declared by a fresh dialogue.
const (
	RoleNPC    = "NPC"
	RolePlayer = "Player"
)

// Diagnostic explains why a node failed to compile.
type Diagnostic struct {
	NodeID NodeID `json:"node_id"`
	Reason string `json:"reason"`
}

func (d Diagnostic) String() string {
	if d.NodeID == "" {
		return d.Reason
	}
	return fmt.Sprintf("%s: %s", d.NodeID, d.Reason)
}

// Dialogue is the compiled asset. It exclusively owns every node in Nodes.
type Dialogue struct {
	ID    string           `json:"id"`
	Nodes map[NodeID]*Node `json:"nodes"`
	Root  NodeID           `json:"root,omitempty"`
	Roles []string         `json:"roles"`

	// GenericSpeakerNames assigns participants to "Speaker1".."SpeakerN" in start order
	// instead of matching their dialogue names.
	GenericSpeakerNames bool `json:"generic_speaker_names,omitempty"`

	Status      CompileStatus `json:"status"`
	Diagnostics []Diagnostic  `json:"diagnostics,omitempty"`
}

// NewDialogue creates an uncompiled dialogue with the default NPC and Player roles.
func NewDialogue(id string) *Dialogue {
	return &Dialogue{
		ID:     id,
		Nodes:  make(map[NodeID]*Node),
		Roles:  []string{RoleNPC, RolePlayer},
		Status: StatusUncompiled,
	}
}

// UnmarshalJSON decodes a dialogue. Resolved conditions and locks are not serialized, so a
// dialogue decoded as compiled comes back uncompiled until it is relinked.
func (d *Dialogue) UnmarshalJSON(data []byte) error {
	type plain Dialogue
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = Dialogue(p)
	if d.Nodes == nil {
		d.Nodes = make(map[NodeID]*Node)
	}
	if d.Status == StatusCompiled || d.Status == "" {
		d.Status = StatusUncompiled
	}
	return nil
}

// Reset clears the compiled node set and marks the dialogue uncompiled. Roles are kept.
func (d *Dialogue) Reset() {
	d.Nodes = make(map[NodeID]*Node)
	d.Root = ""
	d.Diagnostics = nil
	d.Status = StatusUncompiled
}

// AddNode inserts n into the arena unless a node with the same ID exists.
func (d *Dialogue) AddNode(n *Node) bool {
	if n == nil || n.ID == "" {
		return false
	}
	if d.Nodes == nil {
		d.Nodes = make(map[NodeID]*Node)
	}
	if _, exists := d.Nodes[n.ID]; exists {
		return false
	}
	d.Nodes[n.ID] = n
	if n.Kind == KindEntry {
		d.Root = n.ID
	}
	return true
}

// Node resolves id through the arena.
func (d *Dialogue) Node(id NodeID) (*Node, bool) {
	if d == nil || id == "" {
		return nil, false
	}
	n, ok := d.Nodes[id]
	return n, ok
}

// HasNode reports whether id exists in the arena.
func (d *Dialogue) HasNode(id NodeID) bool {
	_, ok := d.Node(id)
	return ok
}

// RootNode returns the entry node, if any.
func (d *Dialogue) RootNode() (*Node, bool) {
	return d.Node(d.Root)
}

// NumNodes counts the nodes in the arena, entry included.
func (d *Dialogue) NumNodes() int {
	return len(d.Nodes)
}

// HasExistingData reports whether the dialogue holds anything beyond its entry node.
func (d *Dialogue) HasExistingData() bool {
	return len(d.Nodes) > 1
}

// NodeIDs returns every node ID in sorted order.
func (d *Dialogue) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, len(d.Nodes))
	for id := range d.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// HasRole reports whether role is declared.
func (d *Dialogue) HasRole(role string) bool {
	return slices.Contains(d.Roles, role)
}

// CanPlay reports why the dialogue cannot be played, or nil.
func (d *Dialogue) CanPlay() error {
	if d == nil || d.Status != StatusCompiled {
		return ErrNotCompiled
	}
	if _, ok := d.RootNode(); !ok {
		return ErrNoRoot
	}
	for _, id := range d.NodeIDs() {
		if !d.Nodes[id].IsResolved() {
			return fmt.Errorf("%w: node %s has an unresolved condition", ErrNotCompiled, id)
		}
	}
	return nil
}
