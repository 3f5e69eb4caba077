package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/dialoguetree/pkg/adapters/file"
	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/ports"
	"github.com/aretw0/dialoguetree/pkg/serialization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Store implements HistoryStore
var _ ports.HistoryStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunHistoryStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_BinaryContract(t *testing.T) {
	ports.RunHistoryStoreContract(t, file.New(t.TempDir(), file.WithSerializer(serialization.Default())))
}

func TestFileStore_WritesReadableJSON(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	h := domain.Histories{"d": {Speakers: map[string]*domain.SpeakerHistory{
		"npc": {Visited: domain.NodeSet{"b": true, "a": true}},
	}}}
	require.NoError(t, store.Save(context.Background(), "slot", h))

	data, err := os.ReadFile(filepath.Join(dir, "slot.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":{"speakers":{"npc":{"visited":["a","b"]}}}}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestFileStore_RejectsEscapingSlots(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()
	for _, slot := range []string{"", "../up", "a/b", ".hidden"} {
		assert.ErrorIs(t, store.Save(ctx, slot, domain.Histories{}), file.ErrInvalidSlot, slot)
		_, err := store.Load(ctx, slot)
		assert.ErrorIs(t, err, file.ErrInvalidSlot, slot)
	}
}

func TestFileStore_ListMissingDirectory(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "never-created"))
	slots, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, slots)
}
