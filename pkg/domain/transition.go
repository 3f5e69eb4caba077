package domain

// TransitionKind names a registered transition strategy. The empty kind is abstract.
type TransitionKind string

const (
	// TransitionAuto advances to the single child as soon as the speech is displayed.
	TransitionAuto TransitionKind = "auto"
	// TransitionInput presents the children as a choice menu.
	TransitionInput TransitionKind = "input"
	// TransitionGated waits for the presentation layer to continue (or the player to skip).
	TransitionGated TransitionKind = "gated"
)

// ConnectionLimit declares how many children a node may have.
type ConnectionLimit int

const (
	// LimitSingle allows at most one child.
	LimitSingle ConnectionLimit = iota + 1
	// LimitMultiple allows any number of children.
	LimitMultiple
)

// Allows reports whether n children fit the limit.
func (l ConnectionLimit) Allows(n int) bool {
	if l == LimitSingle {
		return n <= 1
	}
	return true
}

func (l ConnectionLimit) String() string {
	switch l {
	case LimitSingle:
		return "single"
	case LimitMultiple:
		return "multiple"
	default:
		return "unknown"
	}
}
