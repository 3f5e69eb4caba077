package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/dialoguetree/pkg/adapters/redis"
	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/ports"
	"github.com/aretw0/dialoguetree/pkg/serialization"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunHistoryStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_JSONContract(t *testing.T) {
	_, client := newClient(t)
	ports.RunHistoryStoreContract(t, redis.NewFromClient(client, redis.WithSerializer(serialization.JSON())))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	slotID := "slot-ttl"
	h := domain.Histories{"d": {Speakers: map[string]*domain.SpeakerHistory{
		"npc": {Visited: domain.NodeSet{"a": true}},
	}}}

	require.NoError(t, store.Save(ctx, slotID, h))

	slots, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, slots, slotID)

	// Key expiry is simulated; index pruning relies on wall time.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, slotID)
	assert.ErrorIs(t, err, domain.ErrHistoryNotFound)

	time.Sleep(1200 * time.Millisecond)

	slots, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "my-slot", domain.Histories{}))

	assert.True(t, mr.Exists("custom:app:my-slot"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, "my-slot")
}
