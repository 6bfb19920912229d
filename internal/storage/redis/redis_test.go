package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tavern/internal/config"
	"github.com/cory-johannsen/tavern/internal/game/character"
	"github.com/cory-johannsen/tavern/internal/game/session"
	"github.com/cory-johannsen/tavern/internal/storage"
	"github.com/cory-johannsen/tavern/internal/storage/redis"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func snapshot(name string, level int) session.Snapshot {
	return session.Snapshot{
		Version:   session.SnapshotVersion,
		Character: &character.Character{Name: name, Class: "fighter", Level: level, Health: 10, MaxHealth: 12},
		Relations: map[string]int{"mage": 25},
		Location:  "tower",
	}
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redis.NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()}, time.Second)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = redis.NewClient(context.Background(), config.RedisConfig{}, time.Second)
	assert.Error(t, err)
}

func TestSaveStore_KeyLayout(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewSaveStore(client, "")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "aria", "default", snapshot("Aria", 2)))
	assert.True(t, mr.Exists("tavern:save:aria:default"))
	members, err := mr.Members("tavern:saves:aria")
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, members)
}

func TestSaveStore_RoundTripListDelete(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewSaveStore(client, "test")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "aria", "b", snapshot("Aria", 1)))
	require.NoError(t, store.Save(ctx, "aria", "a", snapshot("Aria", 1)))
	require.NoError(t, store.Save(ctx, "aria", "a", snapshot("Aria", 4)))

	got, err := store.Load(ctx, "aria", "a")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Character.Level)
	assert.Equal(t, "tower", got.Location)
	assert.Equal(t, 25, got.Relations["mage"])

	slots, err := store.List(ctx, "aria")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, slots)

	require.NoError(t, store.Delete(ctx, "aria", "a"))
	_, err = store.Load(ctx, "aria", "a")
	assert.ErrorIs(t, err, session.ErrSaveNotFound)
	slots, err = store.List(ctx, "aria")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, slots)

	slots, err = store.List(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestSaveStore_ServerDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	store := redis.NewSaveStore(client, "")
	mr.Close()

	err = store.Save(context.Background(), "aria", "x", snapshot("Aria", 1))
	assert.Error(t, err)
	_, err = store.Load(context.Background(), "aria", "x")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrSaveNotFound)
}

func TestAccountStore(t *testing.T) {
	mr, client := newClient(t)
	accounts := redis.NewAccountStore(client, "")
	ctx := context.Background()

	acct, err := accounts.Create(ctx, "Aria", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "aria", acct.Username)
	assert.True(t, mr.Exists("tavern:account:aria"))

	_, err = accounts.Create(ctx, "aria", "again")
	assert.ErrorIs(t, err, storage.ErrAccountExists)

	got, err := accounts.Authenticate(ctx, "ARIA", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.ID)

	_, err = accounts.Authenticate(ctx, "aria", "nope")
	assert.ErrorIs(t, err, storage.ErrInvalidCredentials)
	_, err = accounts.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)
	_, err = accounts.Create(ctx, "bad name", "pw")
	assert.ErrorIs(t, err, storage.ErrInvalidUsername)
}
