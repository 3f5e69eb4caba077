package transition

import "github.com/aretw0/dialoguetree/pkg/domain"

// Input presents the node's children as a choice menu and waits for a selection.
type Input struct {
	options []domain.Option
	done    bool
}

// NewInput is the factory of domain.TransitionInput.
func NewInput() Strategy { return &Input{} }

// Start displays the menu, or ends the dialogue when there is nothing to choose.
func (in *Input) Start(h Host) Result {
	in.options = h.Options()
	if len(in.options) == 0 {
		in.done = true
		return End()
	}
	h.DisplayOptions(in.options)
	return Wait()
}

// CheckConditions re-displays the menu with refreshed lock states.
func (in *Input) CheckConditions(h Host) Result {
	if in.done {
		return Wait()
	}
	return in.Start(h)
}

// SelectOption advances to the chosen option. Out-of-range, locked, or repeated selections are ignored.
func (in *Input) SelectOption(_ Host, index int) Result {
	if in.done || index < 0 || index >= len(in.options) {
		return Wait()
	}
	opt := in.options[index]
	if opt.Locked || opt.Node == "" {
		return Wait()
	}
	in.done = true
	return Advance(opt.Node)
}

func (in *Input) Skip(Host) Result { return Wait() }

func (in *Input) Continue(Host) Result { return Wait() }

func (in *Input) Limit() domain.ConnectionLimit { return domain.LimitMultiple }
