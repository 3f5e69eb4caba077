package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHistories() domain.Histories {
	return domain.Histories{
		"tavern": {Speakers: map[string]*domain.SpeakerHistory{
			"innkeeper": {Visited: domain.NodeSet{"greet": true, "rumours": true}, ResumeNodeID: "rumours"},
			"bard":      {Visited: domain.NodeSet{"greet": true}},
		}},
		"gate": {Speakers: map[string]*domain.SpeakerHistory{
			"guard": {Visited: domain.NodeSet{}},
		}},
	}
}

// RunHistoryStoreContract runs a suite of tests to verify that a HistoryStore implementation
// adheres to the defined interface contract.
func RunHistoryStoreContract(t *testing.T, store HistoryStore) {
	ctx := context.Background()
	slotID := "contract-test-slot-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		want := sampleHistories()

		err := store.Save(ctx, slotID, want)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, slotID)
		require.NoError(t, err, "Load should not return error")

		innkeeper := loaded["tavern"].Speakers["innkeeper"]
		require.NotNil(t, innkeeper)
		assert.ElementsMatch(t, []domain.NodeID{"greet", "rumours"}, innkeeper.Visited.Sorted())
		assert.Equal(t, domain.NodeID("rumours"), innkeeper.ResumeNodeID)
		assert.True(t, loaded["tavern"].Speakers["bard"].Visited.Has("greet"))
		assert.Contains(t, loaded, "gate")
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, slotID)
		require.NoError(t, err)
		loaded["tavern"].Speakers["bard"].Visited.Add("mutated")

		again, err := store.Load(ctx, slotID)
		require.NoError(t, err)
		assert.False(t, again["tavern"].Speakers["bard"].Visited.Has("mutated"))
	})

	t.Run("Save overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, slotID, domain.Histories{}))
		loaded, err := store.Load(ctx, slotID)
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+slotID)
		assert.ErrorIs(t, err, domain.ErrHistoryNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, slotID, sampleHistories()))

		err := store.Delete(ctx, slotID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, slotID)
		assert.ErrorIs(t, err, domain.ErrHistoryNotFound, "Load after Delete should return ErrHistoryNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := slotID + "-1"
		id2 := slotID + "-2"
		_ = store.Save(ctx, id1, sampleHistories())
		_ = store.Save(ctx, id2, sampleHistories())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		slots, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, slots, id1)
		assert.Contains(t, slots, id2)
	})
}
