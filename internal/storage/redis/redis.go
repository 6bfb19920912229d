// Package redis persists accounts and session snapshots in Redis. Values are
// JSON strings; each account's save slots are indexed in a set.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/tavern/internal/config"
)

// DefaultKeyPrefix namespaces keys when the configuration names none.
const DefaultKeyPrefix = "tavern"

// NewClient connects to the server described by cfg.
//
// Precondition: cfg.Addr must be non-empty.
// Postcondition: Returns a client that answered PING within timeout, or an error.
func NewClient(ctx context.Context, cfg config.RedisConfig, timeout time.Duration) (*goredis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis: addr is required")
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// keys builds the namespaced key layout.
type keys struct {
	prefix string
}

func newKeys(prefix string) keys {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return keys{prefix: prefix}
}

func (k keys) save(account, slot string) string {
	return fmt.Sprintf("%s:save:%s:%s", k.prefix, account, slot)
}

func (k keys) slots(account string) string {
	return fmt.Sprintf("%s:saves:%s", k.prefix, account)
}

func (k keys) account(username string) string {
	return fmt.Sprintf("%s:account:%s", k.prefix, username)
}
