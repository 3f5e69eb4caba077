package transition

import "github.com/aretw0/dialoguetree/pkg/domain"

// Outcome tells the traversal loop what to do after a strategy call.
type Outcome int

const (
	// OutcomeWait keeps the session on the current node until more input arrives.
	OutcomeWait Outcome = iota
	// OutcomeAdvance enters Result.Next.
	OutcomeAdvance
	// OutcomeEnd ends the dialogue.
	OutcomeEnd
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWait:
		return "wait"
	case OutcomeAdvance:
		return "advance"
	case OutcomeEnd:
		return "end"
	}
	return "unknown"
}

// Result is the decision returned by a strategy.
type Result struct {
	Outcome Outcome
	Next    domain.NodeID
}

// Wait keeps the session where it is.
func Wait() Result { return Result{Outcome: OutcomeWait} }

// Advance moves to next.
func Advance(next domain.NodeID) Result { return Result{Outcome: OutcomeAdvance, Next: next} }

// End ends the dialogue.
func End() Result { return Result{Outcome: OutcomeEnd} }

// advanceOrEnd advances to the first child of the host node, or ends when there is none.
func advanceOrEnd(h Host) Result {
	if next := h.Node().FirstChild(); next != "" {
		return Advance(next)
	}
	return End()
}

// Host is the view of the running session a strategy works against.
type Host interface {
	// Node is the speech node owning the strategy.
	Node() *domain.Node
	// Options builds the choice menu for the node's children, evaluating locks now.
	Options() []domain.Option
	// DisplayOptions forwards the menu to the controller.
	DisplayOptions(options []domain.Option)
}

// Strategy decides how control passes onward from a speech node.
type Strategy interface {
	// Start begins presenting or advancing. Called once the speech is displayed.
	Start(h Host) Result
	// CheckConditions re-evaluates anything the strategy is waiting on.
	CheckConditions(h Host) Result
	// SelectOption accepts a menu choice. Strategies without a menu ignore it.
	SelectOption(h Host, index int) Result
	// Skip force-advances. Only forwarded when the speech can be skipped.
	Skip(h Host) Result
	// Continue is sent by the presentation layer once it is done with the speech
	// (minimum play time elapsed, audio finished).
	Continue(h Host) Result
	// Limit declares how many children the owning node may have.
	Limit() domain.ConnectionLimit
}
