package dialoguetree_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/dialoguetree"
	"github.com/aretw0/dialoguetree/internal/compiler"
	"github.com/aretw0/dialoguetree/internal/testutils"
	"github.com/aretw0/dialoguetree/pkg/adapters/memory"
	"github.com/aretw0/dialoguetree/pkg/condition"
	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/dsl"
	"github.com/aretw0/dialoguetree/pkg/ports"
	"github.com/aretw0/dialoguetree/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func greeting(t *testing.T) *domain.Dialogue {
	b := dsl.New("greeting")
	b.Add("entry").Entry().Go("hello")
	b.Add("hello").Speech("NPC", "Hello.").Gated().Go("middle")
	b.Add("middle").Speech("NPC", "And so on.").Gated()
	return testutils.MustCompile(t, b)
}

func setup() (*testutils.CallLog, *testutils.Controller, *testutils.Speaker, *testutils.Speaker) {
	log := &testutils.CallLog{}
	return log, testutils.NewController(log), testutils.NewSpeaker(log, "npc-1", domain.RoleNPC), testutils.NewPlayer(log, "player-1")
}

func TestDirector_StartOrder(t *testing.T) {
	log, ctrl, npc, player := setup()
	d := dialoguetree.New(ctrl, dialoguetree.WithHooks(log.Hooks()))

	err := d.Start(context.Background(), greeting(t), []ports.Speaker{npc, player}, false)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"controller.CanOpenDisplay",
		"speaker(npc-1).OnDialogueStarted",
		"speaker(player-1).OnDialogueStarted",
		"controller.OpenDisplay",
		"hook.DialogueStarted:entry",
		"controller.DisplaySpeech:npc-1:Hello.",
		"hook.SpeechDisplayed:hello",
		"speaker(npc-1).Stop",
		"speaker(npc-1).SetGameplayTags:0",
	}, log.Calls())
	assert.True(t, d.IsPlaying())
	assert.Equal(t, domain.NodeID("hello"), d.ActiveNode())
	assert.True(t, d.SpeakerInCurrent(npc))
	assert.False(t, d.SpeakerInCurrent(testutils.NewSpeaker(log, "stranger", "NPC")))
}

func TestDirector_StartFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("display unavailable", func(t *testing.T) {
		log, ctrl, npc, _ := setup()
		ctrl.Closed = true
		d := dialoguetree.New(ctrl)

		err := d.Start(ctx, greeting(t), []ports.Speaker{npc}, false)
		assert.ErrorIs(t, err, domain.ErrDisplayUnavailable)
		assert.Equal(t, []string{"controller.CanOpenDisplay"}, log.Calls())
		assert.False(t, d.IsPlaying())
	})

	t.Run("uncompiled", func(t *testing.T) {
		log, ctrl, npc, _ := setup()
		d := dialoguetree.New(ctrl)

		err := d.Start(ctx, domain.NewDialogue("raw"), []ports.Speaker{npc}, false)
		assert.ErrorIs(t, err, domain.ErrNotCompiled)
		assert.Empty(t, log.Calls())
	})

	t.Run("no speakers", func(t *testing.T) {
		_, ctrl, _, _ := setup()
		d := dialoguetree.New(ctrl)
		assert.ErrorIs(t, d.Start(ctx, greeting(t), nil, false), domain.ErrNoSpeakers)
	})

	t.Run("speaker without name", func(t *testing.T) {
		log, ctrl, _, _ := setup()
		d := dialoguetree.New(ctrl)
		nameless := testutils.NewSpeaker(log, "x", "")
		assert.ErrorIs(t, d.Start(ctx, greeting(t), []ports.Speaker{nameless}, false), domain.ErrInvalidSpeaker)
	})

	t.Run("start at duplicate names", func(t *testing.T) {
		log, ctrl, npc, _ := setup()
		d := dialoguetree.New(ctrl)
		twin := testutils.NewSpeaker(log, "npc-2", domain.RoleNPC)
		err := d.StartAt(ctx, greeting(t), "middle", []ports.Speaker{npc, twin})
		assert.ErrorIs(t, err, domain.ErrDuplicateSpeaker)
	})

	t.Run("start at missing node", func(t *testing.T) {
		_, ctrl, npc, _ := setup()
		d := dialoguetree.New(ctrl)
		err := d.StartAt(ctx, greeting(t), "ghost", []ports.Speaker{npc})
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	})
}

func TestDirector_DuplicateNamesGetSuffixes(t *testing.T) {
	log, ctrl, _, _ := setup()
	b := dsl.New("guards").Roles("Guard", "Guard2", "Guard3")
	b.Add("entry").Entry().Go("third")
	b.Add("third").Speech("Guard3", "Halt!").Gated()
	dlg := testutils.MustCompile(t, b)

	g1 := testutils.NewSpeaker(log, "g1", "Guard")
	g2 := testutils.NewSpeaker(log, "g2", "Guard")
	g3 := testutils.NewSpeaker(log, "g3", "Guard")
	d := dialoguetree.New(ctrl)

	require.NoError(t, d.Start(context.Background(), dlg, []ports.Speaker{g1, g2, g3}, false))
	assert.Equal(t, 1, log.Count("controller.DisplaySpeech:g3:Halt!"))
	assert.True(t, d.SpeakerInCurrent(g2))
}

func TestDirector_GenericSpeakerNames(t *testing.T) {
	log, ctrl, _, _ := setup()
	b := dsl.New("crowd").Roles("Speaker1", "Speaker2").GenericSpeakerNames()
	b.Add("entry").Entry().Go("line")
	b.Add("line").Speech("Speaker2", "Psst.").Gated()
	dlg := testutils.MustCompile(t, b)

	a := testutils.NewSpeaker(log, "a", "Villager")
	c := testutils.NewSpeaker(log, "c", "Villager")
	d := dialoguetree.New(ctrl)

	require.NoError(t, d.Start(context.Background(), dlg, []ports.Speaker{a, c}, false))
	assert.Equal(t, 1, log.Count("controller.DisplaySpeech:c:Psst."))
}

func TestDirector_Resume(t *testing.T) {
	ctx := context.Background()
	log, ctrl, npc, player := setup()
	dlg := greeting(t)
	d := dialoguetree.New(ctrl, dialoguetree.WithHooks(log.Hooks()))

	require.NoError(t, d.Start(ctx, dlg, []ports.Speaker{npc, player}, false))
	d.SetResumeNode("middle")
	d.End(ctx)

	require.NoError(t, d.Start(ctx, dlg, []ports.Speaker{npc, player}, true))
	assert.Equal(t, domain.NodeID("middle"), d.ActiveNode())
	assert.Equal(t, 1, log.Count("hook.DialogueStarted:middle"))

	require.NoError(t, d.Start(ctx, dlg, []ports.Speaker{npc, player}, false))
	assert.Equal(t, domain.NodeID("hello"), d.ActiveNode())
	assert.Equal(t, 2, log.Count("hook.DialogueEnded"), "starting again ends the running dialogue")
}

func TestDirector_ResumeAfterRecompileFallsBackToRoot(t *testing.T) {
	ctx := context.Background()
	_, ctrl, npc, player := setup()
	d := dialoguetree.New(ctrl)

	require.NoError(t, d.Start(ctx, greeting(t), []ports.Speaker{npc, player}, false))
	d.SetResumeNode("middle")
	d.End(ctx)
	records := d.Records()
	require.Equal(t, domain.NodeID("middle"), records["greeting"].Speakers["npc-1"].ResumeNodeID)

	b := dsl.New("greeting")
	b.Add("entry").Entry().Go("hello")
	b.Add("hello").Speech("NPC", "Hello.").Gated()
	trimmed := testutils.MustCompile(t, b)
	require.False(t, trimmed.HasNode("middle"))

	restored := dialoguetree.New(ctrl)
	restored.ImportRecords(records)
	require.NoError(t, restored.Start(ctx, trimmed, []ports.Speaker{npc, player}, true))
	assert.Equal(t, domain.NodeID("hello"), restored.ActiveNode())
}

func doorDialogue(t *testing.T, held *bool) (*domain.Dialogue, *registry.Registry) {
	reg := registry.New()
	reg.RegisterBool("has_key", condition.BoolFunc(func() bool { return *held }))
	b := dsl.New("door")
	b.Add("entry").Entry().Go("check")
	b.Add("check").Branch(condition.Spec{Type: "bool", Query: "has_key"}).Then("welcome").Else("menu")
	b.Add("welcome").Speech("NPC", "Come in.").Gated()
	b.Add("menu").Speech("NPC", "It's locked.").Input().Go("lock").Go("leave")
	b.Add("lock").OptionLock(condition.ModeAll, "Need a key", condition.Spec{Type: "bool", Query: "has_key"}).Go("open")
	b.Add("open").Speech("Player", "Open up.").Gated()
	b.Add("leave").Speech("Player", "Never mind.")
	return testutils.MustCompile(t, b, compiler.WithResolver(reg)), reg
}

func TestDirector_DecodedDialogueNeedsRelink(t *testing.T) {
	ctx := context.Background()
	held := false
	dlg, reg := doorDialogue(t, &held)

	data, err := json.Marshal(dlg)
	require.NoError(t, err)
	var decoded domain.Dialogue
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, domain.StatusUncompiled, decoded.Status)

	log, ctrl, npc, player := setup()
	d := dialoguetree.New(ctrl)
	err = d.Start(ctx, &decoded, []ports.Speaker{npc, player}, false)
	assert.ErrorIs(t, err, domain.ErrNotCompiled)
	assert.False(t, d.IsPlaying())
	assert.Zero(t, log.Count("controller.OpenDisplay"))

	require.NoError(t, dialoguetree.Relink(&decoded, reg))
	require.NoError(t, d.Start(ctx, &decoded, []ports.Speaker{npc, player}, false))
	assert.Equal(t, domain.NodeID("menu"), d.ActiveNode())
	opts := ctrl.LastOptions()
	require.Len(t, opts, 2)
	assert.True(t, opts[0].Locked)
	require.NoError(t, d.SelectOption(ctx, 0))
	assert.Equal(t, domain.NodeID("menu"), d.ActiveNode(), "the lock holds after decoding")
	d.End(ctx)

	held = true
	require.NoError(t, d.Start(ctx, &decoded, []ports.Speaker{npc, player}, false))
	assert.Equal(t, domain.NodeID("welcome"), d.ActiveNode())
}

func TestDirector_InputForwarding(t *testing.T) {
	ctx := context.Background()
	_, ctrl, npc, player := setup()
	d := dialoguetree.New(ctrl)

	assert.ErrorIs(t, d.Continue(ctx), domain.ErrSessionClosed)
	assert.ErrorIs(t, d.SelectOption(ctx, 0), domain.ErrSessionClosed)
	assert.ErrorIs(t, d.Skip(ctx), domain.ErrSessionClosed)
	assert.ErrorIs(t, d.CheckConditions(ctx), domain.ErrSessionClosed)

	require.NoError(t, d.Start(ctx, greeting(t), []ports.Speaker{npc, player}, false))
	require.NoError(t, d.Continue(ctx))
	assert.Equal(t, domain.NodeID("middle"), d.ActiveNode())
	require.NoError(t, d.Continue(ctx))
	assert.False(t, d.IsPlaying())
	assert.Nil(t, d.Current())
	d.End(ctx)
}

func TestDirector_Records(t *testing.T) {
	ctx := context.Background()
	_, ctrl, npc, player := setup()
	dlg := greeting(t)
	d := dialoguetree.New(ctrl)
	require.NoError(t, d.Start(ctx, dlg, []ports.Speaker{npc, player}, false))
	assert.True(t, d.WasVisited("hello"))
	d.MarkVisited("middle", true)
	d.End(ctx)

	store := memory.NewStore()
	require.NoError(t, d.Save(ctx, store, "slot-1"))
	saved := d.Records()

	d.ClearRecords()
	assert.Empty(t, d.Records())

	require.NoError(t, d.Load(ctx, store, "slot-1"))
	assert.Equal(t, saved, d.Records())
	assert.ElementsMatch(t, []domain.NodeID{"entry", "hello", "middle"}, d.Records()["greeting"].Speakers["npc-1"].Visited.Sorted())
	assert.NotContains(t, d.Records()["greeting"].Speakers, "player-1")

	err := d.Load(ctx, store, "missing")
	assert.ErrorIs(t, err, domain.ErrHistoryNotFound)

	other := dialoguetree.New(ctrl)
	other.ImportRecords(saved)
	assert.Equal(t, saved, other.Records())
}

func TestLoad(t *testing.T) {
	loader := memory.NewLoader(map[string]string{
		"gate": `
id: gate
nodes:
  - id: entry
    kind: entry
    children: [check]
  - id: check
    kind: branch
    condition: {type: bool, query: has_key}
    children: [open, shut]
  - id: open
    kind: speech
    transition: auto
    speech: {role: NPC, variations: [{text: Come in.}]}
  - id: shut
    kind: speech
    transition: auto
    speech: {role: NPC, variations: [{text: Go away.}]}
`,
	})
	reg := registry.New()
	reg.RegisterBool("has_key", condition.BoolFunc(func() bool { return true }))

	dlg, err := dialoguetree.Load(context.Background(), loader, "gate", reg, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompiled, dlg.Status)

	_, err = dialoguetree.Load(context.Background(), loader, "gate", nil, nil)
	var cerr *dialoguetree.CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []domain.NodeID{"check"}, cerr.NodeIDs())

	_, err = dialoguetree.Load(context.Background(), loader, "ghost", reg, nil)
	assert.ErrorIs(t, err, ports.ErrGraphNotFound)
}
