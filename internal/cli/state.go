package cli

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/aretw0/dialoguetree/pkg/condition"
	"github.com/aretw0/dialoguetree/pkg/registry"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EventEffect is what a scripted event does when a dialogue fires it.
type EventEffect struct {
	// Set overwrites state values. The value type picks the table (int, float or bool).
	Set map[string]any `mapstructure:"set"`
	// Say is printed as a system message.
	Say string `mapstructure:"say"`
}

// State is the scripted game world the CLI plays dialogues against:
//
//	ints:   {gold: 3}
//	floats: {reputation: 0.5}
//	bools:  {has_key: false}
//	events:
//	  give_key: {set: {has_key: true}, say: "You receive a rusty key."}
type State struct {
	Ints   map[string]int         `mapstructure:"ints"`
	Floats map[string]float64     `mapstructure:"floats"`
	Bools  map[string]bool        `mapstructure:"bools"`
	Events map[string]EventEffect `mapstructure:"events"`

	mu sync.RWMutex
}

// LoadState reads a state file. An empty path yields an empty state.
func LoadState(path string) (*State, error) {
	s := &State{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read state file: %w", err)
		}
		if err := s.decode(data); err != nil {
			return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
		}
	}
	if s.Ints == nil {
		s.Ints = make(map[string]int)
	}
	if s.Floats == nil {
		s.Floats = make(map[string]float64)
	}
	if s.Bools == nil {
		s.Bools = make(map[string]bool)
	}
	return s, nil
}

func (s *State) decode(data []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           s,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Registry exposes every state value as a query and every scripted event as a handler.
// Queries read the live state, so events fired mid-dialogue change later conditions.
// say receives the Say text of fired events.
func (s *State) Registry(say func(ctx context.Context, msg string)) *registry.Registry {
	reg := registry.New()

	s.mu.RLock()
	defer s.mu.RUnlock()
	for name := range s.Ints {
		reg.RegisterInt(name, condition.IntFunc(func() int { return s.Int(name) }))
	}
	for name := range s.Floats {
		reg.RegisterFloat(name, condition.FloatFunc(func() float64 { return s.Float(name) }))
	}
	for name := range s.Bools {
		reg.RegisterBool(name, condition.BoolFunc(func() bool { return s.Bool(name) }))
	}
	for name, effect := range s.Events {
		reg.RegisterEvent(name, func(ctx context.Context, dialogueID string, args map[string]any) error {
			if err := s.apply(effect.Set); err != nil {
				return fmt.Errorf("event %s: %w", name, err)
			}
			if effect.Say != "" && say != nil {
				say(ctx, effect.Say)
			}
			return nil
		})
	}
	return reg
}

// Resolver resolves graph conditions against reg. A query the state does not hold yet is
// declared first with the zero value of the condition's type, so any graph compiles and
// events can set the value later.
func (s *State) Resolver(reg *registry.Registry) *Resolver {
	return &Resolver{state: s, reg: reg}
}

// Resolver implements dialoguetree.Resolver for a State.
type Resolver struct {
	state *State
	reg   *registry.Registry
}

func (r *Resolver) Resolve(spec condition.Spec) (condition.Condition, error) {
	r.state.declare(r.reg, spec)
	return r.reg.Resolve(spec)
}

func (r *Resolver) ResolveLock(spec *condition.LockSpec) (*condition.Lock, error) {
	if spec != nil {
		for _, c := range spec.Conditions {
			r.state.declare(r.reg, c)
		}
	}
	return r.reg.ResolveLock(spec)
}

func (s *State) declare(reg *registry.Registry, spec condition.Spec) {
	name := spec.Query
	if name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, isInt := s.Ints[name]
	_, isFloat := s.Floats[name]
	_, isBool := s.Bools[name]
	if isInt || isFloat || isBool {
		return
	}
	switch spec.Type {
	case condition.TypeInt:
		s.Ints[name] = 0
		reg.RegisterInt(name, condition.IntFunc(func() int { return s.Int(name) }))
	case condition.TypeFloat:
		s.Floats[name] = 0
		reg.RegisterFloat(name, condition.FloatFunc(func() float64 { return s.Float(name) }))
	case condition.TypeBool:
		s.Bools[name] = false
		reg.RegisterBool(name, condition.BoolFunc(func() bool { return s.Bool(name) }))
	}
}

func (s *State) Int(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Ints[name]
}

func (s *State) Float(name string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Floats[name]
}

func (s *State) Bool(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Bools[name]
}

// apply writes values into the table that already holds the name, or picks one from the
// value type. Only names known when the registry was built are visible to conditions.
func (s *State) apply(set map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range slices.Sorted(maps.Keys(set)) {
		v := set[name]
		_, isInt := s.Ints[name]
		_, isFloat := s.Floats[name]
		_, isBool := s.Bools[name]
		switch val := v.(type) {
		case bool:
			if isInt || isFloat {
				return fmt.Errorf("%s is not a bool", name)
			}
			s.Bools[name] = val
		case int:
			switch {
			case isFloat:
				s.Floats[name] = float64(val)
			case isBool:
				return fmt.Errorf("%s is a bool", name)
			default:
				s.Ints[name] = val
			}
		case float64:
			if isInt || isBool {
				return fmt.Errorf("%s is not a float", name)
			}
			s.Floats[name] = val
		default:
			return fmt.Errorf("unsupported value %v (%T) for %s", v, v, name)
		}
	}
	return nil
}
