package transition

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/dialoguetree/pkg/domain"
)

// ErrAbstract is returned for empty or unregistered transition kinds.
var ErrAbstract = errors.New("transition kind is abstract or not registered")

// Factory creates a fresh strategy for one speech entry.
type Factory func() Strategy

var (
	mu        sync.RWMutex
	factories = map[domain.TransitionKind]Factory{
		domain.TransitionAuto:  NewAuto,
		domain.TransitionInput: NewInput,
		domain.TransitionGated: NewGated,
	}
)

// Register adds a custom strategy. Registering an existing kind replaces it.
func Register(kind domain.TransitionKind, f Factory) error {
	if kind == "" || f == nil {
		return fmt.Errorf("register %q: %w", kind, ErrAbstract)
	}
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
	return nil
}

// New creates a strategy of the given kind.
func New(kind domain.TransitionKind) (Strategy, error) {
	mu.RLock()
	f, ok := factories[kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAbstract, kind)
	}
	return f(), nil
}

// IsRegistered reports whether kind can be instantiated.
func IsRegistered(kind domain.TransitionKind) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := factories[kind]
	return ok
}

// Limit returns the connection limit of kind. Unknown kinds are treated as single.
func Limit(kind domain.TransitionKind) domain.ConnectionLimit {
	s, err := New(kind)
	if err != nil {
		return domain.LimitSingle
	}
	return s.Limit()
}
