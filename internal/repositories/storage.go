package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/desertthunder/niliflix/internal/session"
)

// StorageRepository implements [session.Storage] on the local_storage table.
type StorageRepository struct {
	db *sql.DB
}

var _ session.Storage = (*StorageRepository)(nil)

// NewStorageRepository creates a new [StorageRepository] with the given database connection
func NewStorageRepository(db *sql.DB) *StorageRepository {
	return &StorageRepository{db: db}
}

// Get returns the value of a slot, or [session.ErrSlotNotFound]
func (r *StorageRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM local_storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", session.ErrSlotNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query slot %s: %w", key, err)
	}
	return value, nil
}

const upsertSlot = `
	INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`

// Set inserts or replaces a slot
func (r *StorageRepository) Set(key, value string) error {
	if _, err := r.db.Exec(upsertSlot, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

// SetMany inserts or replaces the given slots in a single transaction so they change together
func (r *StorageRepository) SetMany(slots map[string]string) error {
	if len(slots) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, key := range slices.Sorted(maps.Keys(slots)) {
		if _, err := tx.Exec(upsertSlot, key, slots[key], now); err != nil {
			return fmt.Errorf("failed to write slot %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit slot writes: %w", err)
	}
	return nil
}

// Delete removes the given slots in a single transaction so they are cleared together
func (r *StorageRepository) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	query := fmt.Sprintf("DELETE FROM local_storage WHERE key IN (%s)", placeholders)
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to delete slots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit slot deletion: %w", err)
	}
	return nil
}

// Keys lists the slot names currently stored, ordered by name
func (r *StorageRepository) Keys() ([]string, error) {
	rows, err := r.db.Query("SELECT key FROM local_storage ORDER BY key ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return keys, nil
}
