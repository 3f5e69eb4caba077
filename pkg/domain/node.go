package domain

import "github.com/aretw0/dialoguetree/pkg/condition"

// NodeID identifies a node within one dialogue. It is stable across recompiles so that
// visitation history keyed by it survives edits.
type NodeID string

// Kind enumerates the closed set of node variants.
type Kind string

const (
	// KindEntry is the sole traversal root. Single child.
	KindEntry Kind = "entry"
	// KindSpeech presents a speech bundle and hands control to its Transition.
	KindSpeech Kind = "speech"
	// KindBranch picks the first child when its condition is met, the second otherwise.
	KindBranch Kind = "branch"
	// KindEvent fires its events and advances to its single child.
	KindEvent Kind = "event"
	// KindJump redirects traversal to Target.
	KindJump Kind = "jump"
	// KindJumpBack resumes at the recorded jump-back target, or falls through to its child.
	KindJumpBack Kind = "jump_back"
	// KindSetJumpBack records Target as the jump-back target and advances to its child.
	KindSetJumpBack Kind = "set_jump_back"
	// KindOptionLock gates the option offered by its single child.
	KindOptionLock Kind = "option_lock"
	// KindReroute is an editor-only passthrough. It never survives compilation.
	KindReroute Kind = "reroute"
)

// Kinds lists every variant in declaration order.
var Kinds = []Kind{
	KindEntry, KindSpeech, KindBranch, KindEvent, KindJump,
	KindJumpBack, KindSetJumpBack, KindOptionLock, KindReroute,
}

// Valid reports whether k is one of the declared variants.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsJump reports whether nodes of this kind carry a Target reference.
func (k Kind) IsJump() bool {
	return k == KindJump || k == KindSetJumpBack
}

// EventSpec describes a side effect requested from the host when a node is entered (or skipped).
type EventSpec struct {
	Name string         `json:"name" yaml:"name" mapstructure:"name"`
	Args map[string]any `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"`
}

// Node is one compiled unit of dialogue control flow.
// Only the fields relevant to Kind are populated.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     Kind     `json:"kind"`
	Children []NodeID `json:"children,omitempty"`

	// Speech payload (KindSpeech).
	Speech     *SpeechDetails `json:"speech,omitempty"`
	Transition TransitionKind `json:"transition,omitempty"`
	SkipEvents []EventSpec    `json:"skip_events,omitempty"`

	// Events fired on entry (KindEvent, KindSpeech).
	Events []EventSpec `json:"events,omitempty"`

	// Target is the referenced node of KindJump and KindSetJumpBack.
	Target NodeID `json:"target,omitempty"`

	// ConditionSpec is the serialized predicate of a KindBranch node.
	ConditionSpec *condition.Spec `json:"condition,omitempty"`
	// LockSpec is the serialized gate of a KindOptionLock node.
	LockSpec *condition.LockSpec `json:"lock,omitempty"`

	// Condition and Lock are resolved by the compiler against live game state.
	Condition condition.Condition `json:"-"`
	Lock      *condition.Lock     `json:"-"`
}

// IsResolved reports whether the live predicates a branch or option lock needs are set.
func (n *Node) IsResolved() bool {
	switch n.Kind {
	case KindBranch:
		return n.Condition != nil
	case KindOptionLock:
		return n.Lock != nil
	}
	return true
}

// MaxChildren returns how many children a node of kind may have, or -1 for no limit.
// limit is the connection limit of a speech node's transition and is ignored for other kinds.
func MaxChildren(kind Kind, limit ConnectionLimit) int {
	switch kind {
	case KindSpeech:
		if limit == LimitMultiple {
			return -1
		}
		return 1
	case KindBranch:
		return 2
	case KindJump:
		return 0
	}
	return 1
}

// Child returns the i-th child, or "" when out of range.
func (n *Node) Child(i int) NodeID {
	if n == nil || i < 0 || i >= len(n.Children) {
		return ""
	}
	return n.Children[i]
}

// FirstChild is shorthand for Child(0).
func (n *Node) FirstChild() NodeID {
	return n.Child(0)
}

// DirectChildren returns the children plus the jump target, which is how reachability is defined.
func (n *Node) DirectChildren() []NodeID {
	out := make([]NodeID, 0, len(n.Children)+1)
	out = append(out, n.Children...)
	if n.Kind.IsJump() && n.Target != "" {
		out = append(out, n.Target)
	}
	return out
}
