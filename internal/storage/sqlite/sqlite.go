// Package sqlite stores saved games in an embedded SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/storyteller/internal/config"
	"github.com/cory-johannsen/storyteller/internal/game/session"
	"github.com/cory-johannsen/storyteller/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS saves (
	slot       TEXT PRIMARY KEY,
	id         TEXT NOT NULL,
	character  TEXT NOT NULL,
	game_state TEXT NOT NULL,
	saved_at   TEXT NOT NULL
);`

// SaveRepository is a storage.Store backed by SQLite.
type SaveRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ storage.Store = (*SaveRepository)(nil)

// Open opens (creating if needed) the database at cfg.Path and ensures the
// schema exists.
//
// Precondition: cfg.Path must be non-empty.
// Postcondition: Returns a ready repository or a non-nil error.
func Open(ctx context.Context, cfg config.SQLiteConfig) (*SaveRepository, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %q: %w", cfg.Path, err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating saves table: %w", err)
	}
	return &SaveRepository{db: db, now: time.Now}, nil
}

// Save upserts d into its slot.
//
// Postcondition: Returns d with ID and Timestamp assigned, or a non-nil error.
func (r *SaveRepository) Save(ctx context.Context, d storage.SaveData) (storage.SaveData, error) {
	d, err := storage.Prepare(d, r.now())
	if err != nil {
		return storage.SaveData{}, err
	}
	record, err := storage.EncodeCharacter(d.Character)
	if err != nil {
		return storage.SaveData{}, err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO saves (slot, id, character, game_state, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET
			id = excluded.id,
			character = excluded.character,
			game_state = excluded.game_state,
			saved_at = excluded.saved_at`,
		d.Slot, d.ID.String(), string(record), string(d.GameState), d.Timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		return storage.SaveData{}, fmt.Errorf("saving slot %q: %w", d.Slot, err)
	}
	return d, nil
}

// Load returns the save in slot.
//
// Postcondition: Returns the save, storage.ErrSaveNotFound, or an error wrapping
// storage.ErrCorruptSave.
func (r *SaveRepository) Load(ctx context.Context, slot string) (storage.SaveData, error) {
	slot, err := storage.CheckSlot(slot)
	if err != nil {
		return storage.SaveData{}, err
	}
	var id, record, state, savedAt string
	err = r.db.QueryRowContext(ctx,
		`SELECT id, character, game_state, saved_at FROM saves WHERE slot = ?`, slot,
	).Scan(&id, &record, &state, &savedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.SaveData{}, storage.ErrSaveNotFound
		}
		return storage.SaveData{}, fmt.Errorf("loading slot %q: %w", slot, err)
	}

	d := storage.SaveData{Slot: slot}
	if d.Character, err = storage.Restore([]byte(record)); err != nil {
		return storage.SaveData{}, fmt.Errorf("loading slot %q: %w", slot, err)
	}
	if d.ID, err = uuid.Parse(id); err != nil {
		return storage.SaveData{}, fmt.Errorf("%w: id: %v", storage.ErrCorruptSave, err)
	}
	if d.GameState, err = session.ParseState(state); err != nil {
		return storage.SaveData{}, fmt.Errorf("%w: %v", storage.ErrCorruptSave, err)
	}
	if d.Timestamp, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
		return storage.SaveData{}, fmt.Errorf("%w: saved_at: %v", storage.ErrCorruptSave, err)
	}
	d.Timestamp = d.Timestamp.UTC()
	return d, nil
}

// Exists reports whether slot holds a save.
func (r *SaveRepository) Exists(ctx context.Context, slot string) (bool, error) {
	slot, err := storage.CheckSlot(slot)
	if err != nil {
		return false, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM saves WHERE slot = ?`, slot).Scan(&n); err != nil {
		return false, fmt.Errorf("checking slot %q: %w", slot, err)
	}
	return n > 0, nil
}

// Delete removes the save in slot.
//
// Postcondition: Returns nil, storage.ErrSaveNotFound, or a non-nil error.
func (r *SaveRepository) Delete(ctx context.Context, slot string) error {
	slot, err := storage.CheckSlot(slot)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM saves WHERE slot = ?`, slot)
	if err != nil {
		return fmt.Errorf("deleting slot %q: %w", slot, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting slot %q: %w", slot, err)
	}
	if n == 0 {
		return storage.ErrSaveNotFound
	}
	return nil
}

// Slots lists the occupied slots in ascending order.
func (r *SaveRepository) Slots(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT slot FROM saves ORDER BY slot ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing slots: %w", err)
	}
	defer rows.Close()

	slots := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning slot row: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// Close closes the database.
func (r *SaveRepository) Close() error {
	return r.db.Close()
}
