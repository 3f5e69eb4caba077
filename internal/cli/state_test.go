package cli_test

import (
	"context"
	"testing"

	"github.com/aretw0/dialoguetree/internal/cli"
	"github.com/aretw0/dialoguetree/pkg/condition"
	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadState(t *testing.T) {
	s, err := cli.LoadState(writeState(t, `ints: {gold: 3}
floats: {reputation: "0.5"}
bools: {has_key: false}
events:
  give_key: {set: {has_key: true}, say: "You receive a rusty key."}
`))
	require.NoError(t, err)

	assert.Equal(t, 3, s.Int("gold"))
	assert.InDelta(t, 0.5, s.Float("reputation"), 1e-9)
	assert.False(t, s.Bool("has_key"))
	assert.Equal(t, "You receive a rusty key.", s.Events["give_key"].Say)
}

func TestLoadState_Errors(t *testing.T) {
	_, err := cli.LoadState(writeState(t, "coins: {gold: 1}\n"))
	assert.Error(t, err, "unknown sections are rejected")

	_, err = cli.LoadState("does-not-exist.yaml")
	assert.Error(t, err)

	s, err := cli.LoadState("")
	require.NoError(t, err)
	assert.Empty(t, s.Ints)
}

func TestState_EventsChangeLiveQueries(t *testing.T) {
	s, err := cli.LoadState(writeState(t, stateYAML))
	require.NoError(t, err)

	var said []string
	reg := s.Registry(func(_ context.Context, msg string) { said = append(said, msg) })

	cond, err := reg.Resolve(condition.Spec{Type: "int", Query: "gold", Op: ">=", Value: 10})
	require.NoError(t, err)
	assert.True(t, cond.IsMet())

	require.NoError(t, reg.Dispatch(context.Background(), "market", domain.EventSpec{Name: "pay"}))
	assert.Equal(t, 5, s.Int("gold"))
	assert.False(t, cond.IsMet(), "queries read the state on every evaluation")
	assert.Equal(t, []string{"You pay five gold."}, said)

	err = reg.Dispatch(context.Background(), "market", domain.EventSpec{Name: "steal"})
	assert.ErrorIs(t, err, registry.ErrUnknownEvent)
}

func TestState_EventTypeMismatch(t *testing.T) {
	s, err := cli.LoadState(writeState(t, `ints: {gold: 1}
events:
  curse: {set: {gold: true}}
`))
	require.NoError(t, err)

	reg := s.Registry(nil)
	err = reg.Dispatch(context.Background(), "any", domain.EventSpec{Name: "curse"})
	assert.ErrorContains(t, err, "gold is not a bool")
	assert.Equal(t, 1, s.Int("gold"))
}

func TestState_ResolverDeclaresUnknownQueries(t *testing.T) {
	s, err := cli.LoadState("")
	require.NoError(t, err)
	reg := s.Registry(nil)
	r := s.Resolver(reg)

	cond, err := r.Resolve(condition.Spec{Type: "bool", Query: "has_key", Op: "==", Value: true})
	require.NoError(t, err)
	assert.True(t, cond.IsValidCondition())
	assert.False(t, cond.IsMet())

	lock, err := r.ResolveLock(&condition.LockSpec{Conditions: []condition.Spec{{Type: "int", Query: "gold", Op: ">=", Value: 5}}})
	require.NoError(t, err)
	assert.True(t, lock.IsValid())
	assert.False(t, lock.IsUnlocked())

	s.Bools["has_key"] = true
	assert.True(t, cond.IsMet(), "declared queries read the live state")
}
