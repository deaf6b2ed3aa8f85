package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/storyteller/internal/storage"
)

const (
	saveKeyPrefix = "save:"
	slotIndexKey  = "saves"
)

// SaveRepository is a storage.Store backed by Redis. Each slot is a string key
// holding the encoded record; a set indexes the occupied slots.
type SaveRepository struct {
	client Client
	prefix string
	now    func() time.Time
}

var _ storage.Store = (*SaveRepository)(nil)

// NewSaveRepository creates a repository whose keys all start with prefix.
//
// Precondition: client must be non-nil.
func NewSaveRepository(client Client, prefix string) *SaveRepository {
	return &SaveRepository{client: client, prefix: prefix, now: time.Now}
}

func (r *SaveRepository) key(slot string) string { return r.prefix + saveKeyPrefix + slot }

func (r *SaveRepository) indexKey() string { return r.prefix + slotIndexKey }

// Save writes d and indexes its slot in one transaction.
//
// Postcondition: Returns d with ID and Timestamp assigned, or a non-nil error.
func (r *SaveRepository) Save(ctx context.Context, d storage.SaveData) (storage.SaveData, error) {
	d, err := storage.Prepare(d, r.now())
	if err != nil {
		return storage.SaveData{}, err
	}
	data, err := storage.Encode(d)
	if err != nil {
		return storage.SaveData{}, err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(d.Slot), data, 0)
	pipe.SAdd(ctx, r.indexKey(), d.Slot)
	if _, err := pipe.Exec(ctx); err != nil {
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
	data, err := r.client.Get(ctx, r.key(slot)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return storage.SaveData{}, storage.ErrSaveNotFound
		}
		return storage.SaveData{}, fmt.Errorf("loading slot %q: %w", slot, err)
	}
	d, err := storage.Decode(data)
	if err != nil {
		return storage.SaveData{}, fmt.Errorf("loading slot %q: %w", slot, err)
	}
	d.Slot = slot
	return d, nil
}

// Exists reports whether slot holds a save.
func (r *SaveRepository) Exists(ctx context.Context, slot string) (bool, error) {
	slot, err := storage.CheckSlot(slot)
	if err != nil {
		return false, err
	}
	n, err := r.client.Exists(ctx, r.key(slot)).Result()
	if err != nil {
		return false, fmt.Errorf("checking slot %q: %w", slot, err)
	}
	return n > 0, nil
}

// Delete removes the save in slot and its index entry.
//
// Postcondition: Returns nil, storage.ErrSaveNotFound, or a non-nil error.
func (r *SaveRepository) Delete(ctx context.Context, slot string) error {
	slot, err := storage.CheckSlot(slot)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, r.key(slot))
	pipe.SRem(ctx, r.indexKey(), slot)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deleting slot %q: %w", slot, err)
	}
	if del.Val() == 0 {
		return storage.ErrSaveNotFound
	}
	return nil
}

// Slots lists the occupied slots in ascending order.
func (r *SaveRepository) Slots(ctx context.Context) ([]string, error) {
	slots, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("listing slots: %w", err)
	}
	sort.Strings(slots)
	return slots, nil
}

// Close closes the client.
func (r *SaveRepository) Close() error {
	return r.client.Close()
}
