package domain_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/dialoguetree/pkg/condition"
	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialogue_CanPlay(t *testing.T) {
	d := domain.NewDialogue("intro")
	assert.ErrorIs(t, d.CanPlay(), domain.ErrNotCompiled)

	d.Status = domain.StatusCompiled
	assert.ErrorIs(t, d.CanPlay(), domain.ErrNoRoot)

	require.True(t, d.AddNode(&domain.Node{ID: "entry", Kind: domain.KindEntry}))
	assert.NoError(t, d.CanPlay())
	assert.Equal(t, domain.NodeID("entry"), d.Root)

	var missing *domain.Dialogue
	assert.ErrorIs(t, missing.CanPlay(), domain.ErrNotCompiled)
}

func TestDialogue_CanPlayRejectsUnresolvedNodes(t *testing.T) {
	d := domain.NewDialogue("door")
	d.AddNode(&domain.Node{ID: "entry", Kind: domain.KindEntry, Children: []domain.NodeID{"check"}})
	check := &domain.Node{ID: "check", Kind: domain.KindBranch, ConditionSpec: &condition.Spec{Type: "bool", Query: "has_key"}}
	lock := &domain.Node{ID: "lock", Kind: domain.KindOptionLock, LockSpec: &condition.LockSpec{Conditions: []condition.Spec{{Type: "bool", Query: "has_key"}}}}
	d.AddNode(check)
	d.AddNode(lock)
	d.Status = domain.StatusCompiled

	err := d.CanPlay()
	assert.ErrorIs(t, err, domain.ErrNotCompiled)
	assert.Contains(t, err.Error(), "check")

	check.Condition = &condition.Bool{Name: "has_key", Query: condition.BoolFunc(func() bool { return true })}
	err = d.CanPlay()
	assert.ErrorIs(t, err, domain.ErrNotCompiled)
	assert.Contains(t, err.Error(), "lock")

	lock.Lock = &condition.Lock{Mode: condition.ModeAll}
	assert.NoError(t, d.CanPlay())
}

func TestDialogue_JSONDecodesUncompiled(t *testing.T) {
	d := domain.NewDialogue("door")
	d.AddNode(&domain.Node{ID: "entry", Kind: domain.KindEntry, Children: []domain.NodeID{"check"}})
	d.AddNode(&domain.Node{
		ID:            "check",
		Kind:          domain.KindBranch,
		ConditionSpec: &condition.Spec{Type: "bool", Query: "has_key"},
		Condition:     &condition.Bool{Name: "has_key", Query: condition.BoolFunc(func() bool { return true })},
	})
	d.Status = domain.StatusCompiled
	require.NoError(t, d.CanPlay())

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"compiled"`)

	var decoded domain.Dialogue
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, domain.StatusUncompiled, decoded.Status)
	assert.ErrorIs(t, decoded.CanPlay(), domain.ErrNotCompiled)

	check, ok := decoded.Node("check")
	require.True(t, ok)
	assert.Nil(t, check.Condition)
	assert.Equal(t, "has_key", check.ConditionSpec.Query)
	assert.Equal(t, domain.NodeID("entry"), decoded.Root)

	failed := domain.NewDialogue("broken")
	failed.Status = domain.StatusFailed
	data, err = json.Marshal(failed)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, domain.StatusFailed, decoded.Status)
}

func TestDialogue_AddNodeRejectsDuplicates(t *testing.T) {
	d := domain.NewDialogue("intro")
	require.True(t, d.AddNode(&domain.Node{ID: "a", Kind: domain.KindSpeech}))
	assert.False(t, d.AddNode(&domain.Node{ID: "a", Kind: domain.KindEvent}))
	assert.False(t, d.AddNode(&domain.Node{Kind: domain.KindEvent}), "empty IDs are rejected")

	n, ok := d.Node("a")
	require.True(t, ok)
	assert.Equal(t, domain.KindSpeech, n.Kind)
}

func TestDialogue_ResetKeepsRoles(t *testing.T) {
	d := domain.NewDialogue("intro")
	d.Roles = append(d.Roles, "Guard")
	d.AddNode(&domain.Node{ID: "entry", Kind: domain.KindEntry})
	d.AddNode(&domain.Node{ID: "b", Kind: domain.KindEvent})
	d.Status = domain.StatusCompiled
	assert.True(t, d.HasExistingData())

	d.Reset()
	assert.Zero(t, d.NumNodes())
	assert.Empty(t, d.Root)
	assert.Equal(t, domain.StatusUncompiled, d.Status)
	assert.True(t, d.HasRole("Guard"))
}

func TestDialogue_NodeIDsSorted(t *testing.T) {
	d := domain.NewDialogue("intro")
	for _, id := range []domain.NodeID{"c", "a", "b"} {
		d.AddNode(&domain.Node{ID: id, Kind: domain.KindEvent})
	}
	assert.Equal(t, []domain.NodeID{"a", "b", "c"}, d.NodeIDs())
}

func TestNode_DirectChildrenIncludesJumpTarget(t *testing.T) {
	jump := &domain.Node{ID: "j", Kind: domain.KindSetJumpBack, Children: []domain.NodeID{"next"}, Target: "hub"}
	assert.Equal(t, []domain.NodeID{"next", "hub"}, jump.DirectChildren())

	event := &domain.Node{ID: "e", Kind: domain.KindEvent, Target: "ignored"}
	assert.Empty(t, event.DirectChildren())
	assert.Equal(t, domain.NodeID(""), event.Child(3))
}

func TestConnectionLimit(t *testing.T) {
	assert.True(t, domain.LimitSingle.Allows(1))
	assert.False(t, domain.LimitSingle.Allows(2))
	assert.True(t, domain.LimitMultiple.Allows(5))
}

func TestMaxChildren(t *testing.T) {
	assert.Equal(t, 1, domain.MaxChildren(domain.KindSpeech, domain.LimitSingle))
	assert.Equal(t, -1, domain.MaxChildren(domain.KindSpeech, domain.LimitMultiple))
	assert.Equal(t, 2, domain.MaxChildren(domain.KindBranch, domain.LimitMultiple))
	assert.Equal(t, 0, domain.MaxChildren(domain.KindJump, domain.LimitSingle))
	assert.Equal(t, 1, domain.MaxChildren(domain.KindEvent, domain.LimitMultiple))
}

func TestHistories_JSONRoundTrip(t *testing.T) {
	h := domain.Histories{
		"intro": {Speakers: map[string]*domain.SpeakerHistory{
			"guard-1": {Visited: domain.NodeSet{"b": true, "a": true}, ResumeNodeID: "b"},
		}},
	}

	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, `{"intro":{"speakers":{"guard-1":{"visited":["a","b"],"resume_node_id":"b"}}}}`, string(data))

	var decoded domain.Histories
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, h, decoded)
}

func TestHistories_CloneIsDeep(t *testing.T) {
	h := domain.Histories{
		"intro": {Speakers: map[string]*domain.SpeakerHistory{"guard-1": {Visited: domain.NodeSet{"a": true}}}},
	}
	clone := h.Clone()
	clone["intro"].Speakers["guard-1"].Visited.Add("b")

	assert.False(t, h["intro"].Speakers["guard-1"].Visited.Has("b"))
	assert.True(t, clone["intro"].Speakers["guard-1"].Visited.Has("b"))
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	first := domain.LifecycleHooks{
		OnDialogueEnded: func(context.Context, *domain.DialogueEvent) { calls = append(calls, "first") },
	}
	second := domain.LifecycleHooks{
		OnDialogueEnded:  func(context.Context, *domain.DialogueEvent) { calls = append(calls, "second") },
		OnOptionSelected: func(context.Context, *domain.OptionEvent) { calls = append(calls, "option") },
	}

	merged := first.Merge(second)
	merged.OnDialogueEnded(context.Background(), &domain.DialogueEvent{})
	merged.OnOptionSelected(context.Background(), &domain.OptionEvent{})

	assert.Equal(t, []string{"first", "second", "option"}, calls)
	assert.Nil(t, merged.OnSpeechDisplayed)
}
