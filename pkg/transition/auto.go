package transition

import "github.com/aretw0/dialoguetree/pkg/domain"

// Auto advances to the single child as soon as it starts.
type Auto struct {
	done bool
}

// NewAuto is the factory of domain.TransitionAuto.
func NewAuto() Strategy { return &Auto{} }

func (a *Auto) Start(h Host) Result {
	return a.advance(h)
}

func (a *Auto) CheckConditions(Host) Result { return Wait() }

func (a *Auto) SelectOption(Host, int) Result { return Wait() }

func (a *Auto) Skip(h Host) Result {
	return a.advance(h)
}

func (a *Auto) Continue(Host) Result { return Wait() }

func (a *Auto) Limit() domain.ConnectionLimit { return domain.LimitSingle }

func (a *Auto) advance(h Host) Result {
	if a.done {
		return Wait()
	}
	a.done = true
	return advanceOrEnd(h)
}
