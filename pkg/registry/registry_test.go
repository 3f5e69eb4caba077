package registry_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/dialoguetree/pkg/condition"
	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Dispatch(t *testing.T) {
	reg := registry.New()

	var got map[string]any
	reg.RegisterEvent("give_item", func(ctx context.Context, dialogueID string, args map[string]any) error {
		assert.Equal(t, "shop", dialogueID)
		got = args
		return nil
	})

	err := reg.Dispatch(context.Background(), "shop", domain.EventSpec{Name: "give_item", Args: map[string]any{"item": "sword"}})
	require.NoError(t, err)
	assert.Equal(t, "sword", got["item"])
	assert.True(t, reg.HasEvent("give_item"))
}

func TestRegistry_DispatchUnknown(t *testing.T) {
	reg := registry.New()
	err := reg.Dispatch(context.Background(), "shop", domain.EventSpec{Name: "missing"})
	assert.ErrorIs(t, err, registry.ErrUnknownEvent)
}

func TestRegistry_DispatchPropagatesHandlerError(t *testing.T) {
	reg := registry.New()
	boom := errors.New("boom")
	reg.RegisterEvent("explode", func(context.Context, string, map[string]any) error { return boom })

	assert.ErrorIs(t, reg.Dispatch(context.Background(), "d", domain.EventSpec{Name: "explode"}), boom)
}

func TestRegistry_ResolveInt(t *testing.T) {
	reg := registry.New()
	gold := 3
	reg.RegisterInt("gold", condition.IntFunc(func() int { return gold }))

	c, err := reg.Resolve(condition.Spec{Type: "int", Query: "gold", Op: ">=", Value: json.Number("5")})
	require.NoError(t, err)
	assert.True(t, c.IsValidCondition())
	assert.False(t, c.IsMet())

	gold = 7
	assert.True(t, c.IsMet())
}

func TestRegistry_ResolveFloatFromYAMLValue(t *testing.T) {
	reg := registry.New()
	reg.RegisterFloat("health", condition.FloatFunc(func() float64 { return 0.2 }))

	c, err := reg.Resolve(condition.Spec{Type: "float", Query: "health", Op: "lt", Value: 1})
	require.NoError(t, err)
	assert.True(t, c.IsMet())
}

func TestRegistry_ResolveBoolDefaults(t *testing.T) {
	reg := registry.New()
	reg.RegisterBool("has_key", condition.BoolFunc(func() bool { return true }))

	c, err := reg.Resolve(condition.Spec{Query: "has_key"})
	require.NoError(t, err)
	assert.True(t, c.IsMet(), "an untyped spec without value checks the flag is set")
}

func TestRegistry_UnknownQueryIsInvalid(t *testing.T) {
	reg := registry.New()

	c, err := reg.Resolve(condition.Spec{Type: "int", Query: "reputation", Value: 1})
	require.NoError(t, err)
	assert.False(t, c.IsValidCondition())
	assert.False(t, c.IsMet())

	reg.RegisterInt("reputation", condition.IntFunc(func() int { return 1 }))
	assert.True(t, c.IsValidCondition(), "queries are looked up on evaluation")
	assert.True(t, c.IsMet())
}

func TestRegistry_ResolveRejectsBadSpecs(t *testing.T) {
	reg := registry.New()

	tests := []struct {
		name string
		spec condition.Spec
	}{
		{"unknown type", condition.Spec{Type: "string", Query: "q"}},
		{"bad operator", condition.Spec{Type: "int", Query: "q", Op: "~"}},
		{"fractional int", condition.Spec{Type: "int", Query: "q", Value: 1.5}},
		{"bad bool", condition.Spec{Type: "bool", Query: "q", Value: "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Resolve(tt.spec)
			assert.ErrorIs(t, err, registry.ErrInvalidSpec)
		})
	}
}

func TestRegistry_ResolveLock(t *testing.T) {
	reg := registry.New()
	reg.RegisterBool("a", condition.BoolFunc(func() bool { return false }))
	reg.RegisterBool("b", condition.BoolFunc(func() bool { return true }))

	lock, err := reg.ResolveLock(&condition.LockSpec{
		Mode:       "any",
		Message:    "Requires a or b",
		Conditions: []condition.Spec{{Type: "bool", Query: "a"}, {Type: "bool", Query: "b"}},
	})
	require.NoError(t, err)
	assert.True(t, lock.IsValid())
	assert.True(t, lock.IsUnlocked())
	assert.Equal(t, "Requires a or b", lock.Message)

	empty, err := reg.ResolveLock(nil)
	require.NoError(t, err)
	assert.True(t, empty.IsUnlocked())

	_, err = reg.ResolveLock(&condition.LockSpec{Mode: "some"})
	assert.ErrorIs(t, err, registry.ErrInvalidSpec)
}
