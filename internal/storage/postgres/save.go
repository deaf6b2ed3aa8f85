package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/storyteller/internal/game/session"
	"github.com/cory-johannsen/storyteller/internal/storage"
)

// SaveRepository is a storage.Store backed by the saves table.
type SaveRepository struct {
	pool *Pool
	now  func() time.Time
}

var _ storage.Store = (*SaveRepository)(nil)

// NewSaveRepository creates a SaveRepository backed by the given pool. The
// repository owns the pool; Close closes it.
//
// Precondition: pool must be a valid, open connection pool with migrations applied.
func NewSaveRepository(pool *Pool) *SaveRepository {
	return &SaveRepository{pool: pool, now: time.Now}
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
	_, err = r.pool.DB().Exec(ctx, `
		INSERT INTO saves (slot, id, character, game_state, saved_at)
		VALUES ($1, $2::uuid, $3::jsonb, $4, $5)
		ON CONFLICT (slot) DO UPDATE SET
			id = EXCLUDED.id,
			character = EXCLUDED.character,
			game_state = EXCLUDED.game_state,
			saved_at = EXCLUDED.saved_at`,
		d.Slot, d.ID.String(), string(record), string(d.GameState), d.Timestamp,
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
	var (
		id, record, state string
		savedAt           time.Time
	)
	err = r.pool.DB().QueryRow(ctx, `
		SELECT id::text, character::text, game_state, saved_at
		FROM saves WHERE slot = $1`,
		slot,
	).Scan(&id, &record, &state, &savedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.SaveData{}, storage.ErrSaveNotFound
		}
		return storage.SaveData{}, fmt.Errorf("loading slot %q: %w", slot, err)
	}

	d := storage.SaveData{Slot: slot, Timestamp: savedAt.UTC()}
	if d.Character, err = storage.Restore([]byte(record)); err != nil {
		return storage.SaveData{}, fmt.Errorf("loading slot %q: %w", slot, err)
	}
	if d.ID, err = uuid.Parse(id); err != nil {
		return storage.SaveData{}, fmt.Errorf("%w: id: %v", storage.ErrCorruptSave, err)
	}
	if d.GameState, err = session.ParseState(state); err != nil {
		return storage.SaveData{}, fmt.Errorf("%w: %v", storage.ErrCorruptSave, err)
	}
	return d, nil
}

// Exists reports whether slot holds a save.
func (r *SaveRepository) Exists(ctx context.Context, slot string) (bool, error) {
	slot, err := storage.CheckSlot(slot)
	if err != nil {
		return false, err
	}
	var ok bool
	err = r.pool.DB().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM saves WHERE slot = $1)`, slot).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("checking slot %q: %w", slot, err)
	}
	return ok, nil
}

// Delete removes the save in slot.
//
// Postcondition: Returns nil, storage.ErrSaveNotFound, or a non-nil error.
func (r *SaveRepository) Delete(ctx context.Context, slot string) error {
	slot, err := storage.CheckSlot(slot)
	if err != nil {
		return err
	}
	tag, err := r.pool.DB().Exec(ctx, `DELETE FROM saves WHERE slot = $1`, slot)
	if err != nil {
		return fmt.Errorf("deleting slot %q: %w", slot, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrSaveNotFound
	}
	return nil
}

// Slots lists the occupied slots in ascending order.
func (r *SaveRepository) Slots(ctx context.Context) ([]string, error) {
	rows, err := r.pool.DB().Query(ctx, `SELECT slot FROM saves ORDER BY slot ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing slots: %w", err)
	}
	slots, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning slot rows: %w", err)
	}
	return slots, nil
}

// Close closes the pool.
func (r *SaveRepository) Close() error {
	r.pool.Close()
	return nil
}
