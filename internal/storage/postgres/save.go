package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/tavern/internal/game/session"
)

// SaveRepository stores session snapshots as JSONB, one row per account and
// slot. It implements session.Store.
type SaveRepository struct {
	db *pgxpool.Pool
}

// NewSaveRepository creates a SaveRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSaveRepository(db *pgxpool.Pool) *SaveRepository {
	return &SaveRepository{db: db}
}

// Save upserts snap into slot.
//
// Precondition: snap.Character must be non-nil.
// Postcondition: The row's id is kept across overwrites of the same slot.
func (r *SaveRepository) Save(ctx context.Context, account, slot string, snap session.Snapshot) error {
	if snap.Character == nil {
		return fmt.Errorf("saving %s/%s: snapshot has no character", account, slot)
	}
	data, err := snap.Marshal()
	if err != nil {
		return fmt.Errorf("encoding save %s/%s: %w", account, slot, err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO saves (id, account, slot, character_name, character_level, data, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (account, slot) DO UPDATE SET
			character_name  = EXCLUDED.character_name,
			character_level = EXCLUDED.character_level,
			data            = EXCLUDED.data,
			saved_at        = EXCLUDED.saved_at`,
		uuid.New(), account, slot, snap.Character.Name, snap.Character.Level, data, snap.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting save %s/%s: %w", account, slot, err)
	}
	return nil
}

// Load returns the snapshot in slot, or session.ErrSaveNotFound.
func (r *SaveRepository) Load(ctx context.Context, account, slot string) (session.Snapshot, error) {
	var data []byte
	err := r.db.QueryRow(ctx,
		`SELECT data FROM saves WHERE account = $1 AND slot = $2`,
		account, slot,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.Snapshot{}, fmt.Errorf("loading %s/%s: %w", account, slot, session.ErrSaveNotFound)
		}
		return session.Snapshot{}, fmt.Errorf("querying save %s/%s: %w", account, slot, err)
	}
	return session.UnmarshalSnapshot(data)
}

// List returns the account's slots, sorted.
func (r *SaveRepository) List(ctx context.Context, account string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT slot FROM saves WHERE account = $1 ORDER BY slot`, account)
	if err != nil {
		return nil, fmt.Errorf("listing saves for %s: %w", account, err)
	}
	slots, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning saves for %s: %w", account, err)
	}
	if slots == nil {
		slots = []string{}
	}
	return slots, nil
}

// Delete removes slot; deleting a missing slot is not an error.
func (r *SaveRepository) Delete(ctx context.Context, account, slot string) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM saves WHERE account = $1 AND slot = $2`, account, slot); err != nil {
		return fmt.Errorf("deleting save %s/%s: %w", account, slot, err)
	}
	return nil
}

var _ session.Store = (*SaveRepository)(nil)
