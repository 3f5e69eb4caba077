package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/dialoguetree/pkg/adapters/memory"
	redisadapter "github.com/aretw0/dialoguetree/pkg/adapters/redis"
	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/ports"
	"github.com/aretw0/dialoguetree/pkg/session"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]domain.Histories
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, slotID string, h domain.Histories) error {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]domain.Histories)
	}
	s.data[slotID] = h.Clone()
	return nil
}

func (s *SlowStore) Load(ctx context.Context, slotID string) (domain.Histories, error) {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.data[slotID]; ok {
		return h.Clone(), nil
	}
	return nil, domain.ErrHistoryNotFound
}

func (s *SlowStore) Delete(ctx context.Context, slotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, slotID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func visited(speaker string, nodes ...domain.NodeID) *domain.DialogueHistory {
	set := domain.NodeSet{}
	for _, n := range nodes {
		set.Add(n)
	}
	return &domain.DialogueHistory{Speakers: map[string]*domain.SpeakerHistory{
		speaker: {Visited: set},
	}}
}

func TestManager_Contract(t *testing.T) {
	ports.RunHistoryStoreContract(t, session.NewManager(memory.NewStore()))
}

func TestManager_ConcurrentMergesKeepEveryUpdate(t *testing.T) {
	manager := session.NewManager(&SlowStore{})
	ctx := context.Background()
	id := "race-test"

	var wg sync.WaitGroup
	concurrentWrites := 10

	// Without the slot lock the read-modify-write cycles interleave and updates are lost.
	for i := 0; i < concurrentWrites; i++ {
		wg.Add(1)
		go func(val int) {
			defer wg.Done()
			err := manager.Merge(ctx, id, domain.Histories{
				fmt.Sprintf("dialogue-%d", val): visited("npc", "greet"),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	h, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, h, concurrentWrites)
}

func TestManager_MergeReplacesOnlyIncomingDialogues(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, manager.Save(ctx, "slot", domain.Histories{
		"tavern": visited("innkeeper", "greet"),
		"gate":   visited("guard", "halt"),
	}))
	require.NoError(t, manager.Merge(ctx, "slot", domain.Histories{
		"tavern": visited("innkeeper", "greet", "rumours"),
	}))

	h, err := manager.Load(ctx, "slot")
	require.NoError(t, err)
	assert.True(t, h["tavern"].Speakers["innkeeper"].Visited.Has("rumours"))
	assert.True(t, h["gate"].Speakers["guard"].Visited.Has("halt"))
}

func TestManager_UpdateFailureSavesNothing(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	boom := errors.New("boom")

	err := manager.Update(ctx, "slot", func(h domain.Histories) error {
		h["tavern"] = visited("innkeeper", "greet")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = manager.Load(ctx, "slot")
	assert.ErrorIs(t, err, domain.ErrHistoryNotFound)
}

func TestManager_LoadOrEmpty(t *testing.T) {
	// Verify atomic creation
	manager := session.NewManager(&SlowStore{})
	ctx := context.Background()
	id := "atomic-init"

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := manager.LoadOrEmpty(ctx, id)
			assert.NoError(t, err)
			assert.NotNil(t, h)
		}()
	}
	wg.Wait()

	h, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestManager_DistributedLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := redisadapter.NewFromClient(client)
	locker := redisadapter.NewLocker(client, redisadapter.DefaultPrefix)

	// Two managers stand in for two processes sharing one store.
	a := session.NewManager(store, session.WithLocker(locker), session.WithLockTTL(time.Second))
	b := session.NewManager(store, session.WithLocker(locker), session.WithLockTTL(time.Second))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i, m := range []*session.Manager{a, b, a, b} {
		wg.Add(1)
		go func(i int, m *session.Manager) {
			defer wg.Done()
			err := m.Merge(ctx, "shared", domain.Histories{
				fmt.Sprintf("dialogue-%d", i): visited("npc", "greet"),
			})
			assert.NoError(t, err)
		}(i, m)
	}
	wg.Wait()

	h, err := a.Load(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, h, 4)
}
