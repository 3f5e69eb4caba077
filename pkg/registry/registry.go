// Package registry holds the named game-state queries and event handlers that graph files refer to.
//
// Graph files cannot carry code, so a branch condition names its query ("gold", "has_key") and an
// event node names its handler. The host registers both before compiling or playing a dialogue.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/dialoguetree/pkg/condition"
	"github.com/aretw0/dialoguetree/pkg/domain"
)

var (
	// ErrUnknownEvent is returned when a node fires an event nobody registered.
	ErrUnknownEvent = errors.New("event handler not found")
	// ErrInvalidSpec is returned when a serialized condition cannot be resolved.
	ErrInvalidSpec = errors.New("invalid condition spec")
)

// EventFunc handles an event fired by an event or speech node.
type EventFunc func(ctx context.Context, dialogueID string, args map[string]any) error

// Registry manages the available queries and event handlers.
type Registry struct {
	mu     sync.RWMutex
	ints   map[string]condition.IntQuery
	floats map[string]condition.FloatQuery
	bools  map[string]condition.BoolQuery
	events map[string]EventFunc
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		ints:   make(map[string]condition.IntQuery),
		floats: make(map[string]condition.FloatQuery),
		bools:  make(map[string]condition.BoolQuery),
		events: make(map[string]EventFunc),
	}
}

// RegisterInt adds an integer query. An existing query with the same name is overwritten.
func (r *Registry) RegisterInt(name string, q condition.IntQuery) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ints[name] = q
}

// RegisterFloat adds a floating-point query.
func (r *Registry) RegisterFloat(name string, q condition.FloatQuery) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.floats[name] = q
}

// RegisterBool adds a boolean query.
func (r *Registry) RegisterBool(name string, q condition.BoolQuery) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bools[name] = q
}

// RegisterEvent adds an event handler.
func (r *Registry) RegisterEvent(name string, fn EventFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[name] = fn
}

// HasEvent reports whether a handler named name exists.
func (r *Registry) HasEvent(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.events[name]
	return ok
}

// Dispatch looks up the handler of ev and executes it.
func (r *Registry) Dispatch(ctx context.Context, dialogueID string, ev domain.EventSpec) error {
	r.mu.RLock()
	fn, ok := r.events[ev.Name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, ev.Name)
	}
	return fn(ctx, dialogueID, ev.Args)
}

// Resolve builds a condition from its serialized form.
// Queries are looked up on every evaluation, so a condition naming an unregistered query
// is returned without error but reports IsValidCondition() == false.
func (r *Registry) Resolve(spec condition.Spec) (condition.Condition, error) {
	op, err := condition.ParseComparison(spec.Op)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	switch spec.Type {
	case condition.TypeInt, "integer":
		v, err := toInt(spec.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: query %q: %v", ErrInvalidSpec, spec.Query, err)
		}
		return &condition.Int{Name: spec.Query, Query: intRef{r, spec.Query}, Op: op, Value: v}, nil
	case condition.TypeFloat, "number":
		v, err := toFloat(spec.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: query %q: %v", ErrInvalidSpec, spec.Query, err)
		}
		return &condition.Float{Name: spec.Query, Query: floatRef{r, spec.Query}, Op: op, Value: v}, nil
	case condition.TypeBool, "boolean", "":
		v, err := toBool(spec.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: query %q: %v", ErrInvalidSpec, spec.Query, err)
		}
		return &condition.Bool{Name: spec.Query, Query: boolRef{r, spec.Query}, Op: op, Value: v}, nil
	}
	return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidSpec, spec.Type)
}

// ResolveLock builds a lock from its serialized form. A nil spec yields a lock with no
// conditions, which is always unlocked.
func (r *Registry) ResolveLock(spec *condition.LockSpec) (*condition.Lock, error) {
	if spec == nil {
		return &condition.Lock{Mode: condition.ModeAll}, nil
	}
	mode, err := condition.ParseMode(spec.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	lock := &condition.Lock{Mode: mode, Message: spec.Message}
	var errs []error
	for i, cs := range spec.Conditions {
		c, err := r.Resolve(cs)
		if err != nil {
			errs = append(errs, fmt.Errorf("condition %d: %w", i, err))
			continue
		}
		lock.Conditions = append(lock.Conditions, c)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return lock, nil
}

func (r *Registry) intQuery(name string) (condition.IntQuery, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.ints[name]
	return q, ok && q != nil
}

func (r *Registry) floatQuery(name string) (condition.FloatQuery, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.floats[name]
	return q, ok && q != nil
}

func (r *Registry) boolQuery(name string) (condition.BoolQuery, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.bools[name]
	return q, ok && q != nil
}
