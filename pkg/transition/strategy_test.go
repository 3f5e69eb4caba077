package transition_test

import (
	"testing"

	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/transition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	node      *domain.Node
	options   []domain.Option
	displayed [][]domain.Option
}

func (h *fakeHost) Node() *domain.Node { return h.node }
func (h *fakeHost) Options() []domain.Option { return h.options }
func (h *fakeHost) DisplayOptions(options []domain.Option) { h.displayed = append(h.displayed, options) }

func speechHost(children ...domain.NodeID) *fakeHost {
	return &fakeHost{node: &domain.Node{ID: "s", Kind: domain.KindSpeech, Children: children}}
}

func TestAuto(t *testing.T) {
	t.Run("advances to the single child", func(t *testing.T) {
		s := transition.NewAuto()
		assert.Equal(t, transition.Advance("next"), s.Start(speechHost("next")))
	})

	t.Run("ends when childless", func(t *testing.T) {
		s := transition.NewAuto()
		assert.Equal(t, transition.End(), s.Start(speechHost()))
	})

	t.Run("skip after start is ignored", func(t *testing.T) {
		h := speechHost("next")
		s := transition.NewAuto()
		s.Start(h)
		assert.Equal(t, transition.OutcomeWait, s.Skip(h).Outcome)
	})

	assert.Equal(t, domain.LimitSingle, transition.NewAuto().Limit())
}

func TestInput(t *testing.T) {
	options := []domain.Option{
		{Node: "a", Details: domain.SpeechDetails{Title: "A"}},
		{Node: "b", Locked: true, Message: "Need a key"},
		{Node: "c"},
	}

	t.Run("displays options and waits", func(t *testing.T) {
		h := speechHost("a", "b", "c")
		h.options = options
		s := transition.NewInput()

		assert.Equal(t, transition.Wait(), s.Start(h))
		require.Len(t, h.displayed, 1)
		assert.Equal(t, options, h.displayed[0])
	})

	t.Run("selection rules", func(t *testing.T) {
		h := speechHost("a", "b", "c")
		h.options = options
		s := transition.NewInput()
		s.Start(h)

		assert.Equal(t, transition.Wait(), s.SelectOption(h, -1), "negative index")
		assert.Equal(t, transition.Wait(), s.SelectOption(h, 3), "out of range")
		assert.Equal(t, transition.Wait(), s.SelectOption(h, 1), "locked")
		assert.Equal(t, transition.Wait(), s.Skip(h))
		assert.Equal(t, transition.Advance("c"), s.SelectOption(h, 2))
		assert.Equal(t, transition.Wait(), s.SelectOption(h, 0), "already transitioned")
	})

	t.Run("ends without options", func(t *testing.T) {
		h := speechHost()
		s := transition.NewInput()
		assert.Equal(t, transition.End(), s.Start(h))
		assert.Empty(t, h.displayed)
	})

	t.Run("check conditions refreshes the menu", func(t *testing.T) {
		h := speechHost("a", "b")
		h.options = []domain.Option{{Node: "a"}, {Node: "b", Locked: true}}
		s := transition.NewInput()
		s.Start(h)

		h.options = []domain.Option{{Node: "a"}, {Node: "b"}}
		assert.Equal(t, transition.Wait(), s.CheckConditions(h))
		require.Len(t, h.displayed, 2)
		assert.Equal(t, transition.Advance("b"), s.SelectOption(h, 1))
	})

	assert.Equal(t, domain.LimitMultiple, transition.NewInput().Limit())
}

func TestGated(t *testing.T) {
	h := speechHost("next")
	s := transition.NewGated()

	assert.Equal(t, transition.Wait(), s.Start(h))
	assert.Equal(t, transition.Wait(), s.SelectOption(h, 0))
	assert.Equal(t, transition.Advance("next"), s.Continue(h))
	assert.Equal(t, transition.Wait(), s.Skip(h), "only releases once")

	childless := transition.NewGated()
	assert.Equal(t, transition.End(), childless.Skip(speechHost()))
}

func TestFactory(t *testing.T) {
	_, err := transition.New("")
	assert.ErrorIs(t, err, transition.ErrAbstract)
	assert.False(t, transition.IsRegistered("cutscene"))

	require.NoError(t, transition.Register("cutscene", transition.NewGated))
	assert.True(t, transition.IsRegistered("cutscene"))
	assert.Equal(t, domain.LimitSingle, transition.Limit("cutscene"))
	assert.Equal(t, domain.LimitMultiple, transition.Limit(domain.TransitionInput))

	assert.Error(t, transition.Register("", transition.NewAuto))

	a, err := transition.New(domain.TransitionAuto)
	require.NoError(t, err)
	b, err := transition.New(domain.TransitionAuto)
	require.NoError(t, err)
	assert.NotSame(t, a, b, "each entry gets a fresh strategy")
}
