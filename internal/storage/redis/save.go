package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/tavern/internal/game/session"
)

// SaveStore implements session.Store. A snapshot lives under
// {prefix}:save:{account}:{slot}; the account's slot names live in the set
// {prefix}:saves:{account}.
type SaveStore struct {
	client goredis.Cmdable
	keys   keys
}

// NewSaveStore creates a SaveStore.
//
// Precondition: client must be non-nil.
func NewSaveStore(client goredis.Cmdable, prefix string) *SaveStore {
	if client == nil {
		panic("redis.NewSaveStore: client must not be nil")
	}
	return &SaveStore{client: client, keys: newKeys(prefix)}
}

// Save writes snap and indexes slot in one transaction.
func (s *SaveStore) Save(ctx context.Context, account, slot string, snap session.Snapshot) error {
	data, err := snap.Marshal()
	if err != nil {
		return fmt.Errorf("encoding save %s/%s: %w", account, slot, err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keys.save(account, slot), data, 0)
	pipe.SAdd(ctx, s.keys.slots(account), slot)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing save %s/%s: %w", account, slot, err)
	}
	return nil
}

// Load returns the snapshot in slot, or session.ErrSaveNotFound.
func (s *SaveStore) Load(ctx context.Context, account, slot string) (session.Snapshot, error) {
	data, err := s.client.Get(ctx, s.keys.save(account, slot)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return session.Snapshot{}, fmt.Errorf("loading %s/%s: %w", account, slot, session.ErrSaveNotFound)
		}
		return session.Snapshot{}, fmt.Errorf("reading save %s/%s: %w", account, slot, err)
	}
	return session.UnmarshalSnapshot(data)
}

// List returns the account's slots, sorted.
func (s *SaveStore) List(ctx context.Context, account string) ([]string, error) {
	slots, err := s.client.SMembers(ctx, s.keys.slots(account)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing saves for %s: %w", account, err)
	}
	sort.Strings(slots)
	return slots, nil
}

// Delete removes slot; deleting a missing slot is not an error.
func (s *SaveStore) Delete(ctx context.Context, account, slot string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.keys.save(account, slot))
	pipe.SRem(ctx, s.keys.slots(account), slot)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deleting save %s/%s: %w", account, slot, err)
	}
	return nil
}

var _ session.Store = (*SaveStore)(nil)
