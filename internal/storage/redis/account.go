package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/tavern/internal/storage"
)

// AccountStore implements storage.AccountStore with one JSON value per
// account under {prefix}:account:{username}.
type AccountStore struct {
	client goredis.Cmdable
	keys   keys
}

// NewAccountStore creates an AccountStore.
//
// Precondition: client must be non-nil.
func NewAccountStore(client goredis.Cmdable, prefix string) *AccountStore {
	if client == nil {
		panic("redis.NewAccountStore: client must not be nil")
	}
	return &AccountStore{client: client, keys: newKeys(prefix)}
}

// Create stores a new account. SET NX makes concurrent creates of the same
// username race-free.
func (a *AccountStore) Create(ctx context.Context, username, password string) (storage.Account, error) {
	u, err := storage.NormalizeUsername(username)
	if err != nil {
		return storage.Account{}, err
	}
	hash, err := storage.HashPassword(password)
	if err != nil {
		return storage.Account{}, fmt.Errorf("hashing password: %w", err)
	}
	acct := storage.Account{
		ID:           uuid.NewString(),
		Username:     u,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(acct)
	if err != nil {
		return storage.Account{}, fmt.Errorf("encoding account: %w", err)
	}
	ok, err := a.client.SetNX(ctx, a.keys.account(u), data, 0).Result()
	if err != nil {
		return storage.Account{}, fmt.Errorf("creating account %s: %w", u, err)
	}
	if !ok {
		return storage.Account{}, storage.ErrAccountExists
	}
	return acct, nil
}

// Authenticate implements storage.AccountStore.
func (a *AccountStore) Authenticate(ctx context.Context, username, password string) (storage.Account, error) {
	acct, err := a.GetByUsername(ctx, username)
	if err != nil {
		return storage.Account{}, err
	}
	if !storage.CheckPassword(password, acct.PasswordHash) {
		return storage.Account{}, storage.ErrInvalidCredentials
	}
	return acct, nil
}

// GetByUsername implements storage.AccountStore.
func (a *AccountStore) GetByUsername(ctx context.Context, username string) (storage.Account, error) {
	u, err := storage.NormalizeUsername(username)
	if err != nil {
		return storage.Account{}, storage.ErrAccountNotFound
	}
	data, err := a.client.Get(ctx, a.keys.account(u)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return storage.Account{}, storage.ErrAccountNotFound
		}
		return storage.Account{}, fmt.Errorf("reading account %s: %w", u, err)
	}
	var acct storage.Account
	if err := json.Unmarshal(data, &acct); err != nil {
		return storage.Account{}, fmt.Errorf("decoding account %s: %w", u, err)
	}
	return acct, nil
}

var _ storage.AccountStore = (*AccountStore)(nil)
