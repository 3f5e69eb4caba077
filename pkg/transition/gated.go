package transition

import "github.com/aretw0/dialoguetree/pkg/domain"

// Gated waits on its single child until the presentation layer continues or the player skips.
type Gated struct {
	done bool
}

// NewGated is the factory of domain.TransitionGated.
func NewGated() Strategy { return &Gated{} }

func (g *Gated) Start(Host) Result { return Wait() }

func (g *Gated) CheckConditions(Host) Result { return Wait() }

func (g *Gated) SelectOption(Host, int) Result { return Wait() }

func (g *Gated) Skip(h Host) Result { return g.release(h) }

func (g *Gated) Continue(h Host) Result { return g.release(h) }

func (g *Gated) Limit() domain.ConnectionLimit { return domain.LimitSingle }

func (g *Gated) release(h Host) Result {
	if g.done {
		return Wait()
	}
	g.done = true
	return advanceOrEnd(h)
}
