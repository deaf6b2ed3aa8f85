// Package storagetest holds the behaviour every storage.Store must share.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/storyteller/internal/game/character"
	"github.com/cory-johannsen/storyteller/internal/game/session"
	"github.com/cory-johannsen/storyteller/internal/storage"
)

// Factory returns an empty store and registers its cleanup with t.
type Factory func(t *testing.T) storage.Store

// Sample returns a damaged, equipped character record for slot.
func Sample(slot string) storage.SaveData {
	name, weapon := "Wren", "Rusted Pipe"
	bdy, foc := 3, 4
	c := character.New(character.Config{
		Name:       &name,
		Attributes: &character.AttributeConfig{BDY: &bdy},
		Approaches: &character.ApproachConfig{FOC: &foc},
		Equipment:  &character.EquipmentConfig{Weapon: &weapon},
	})
	_ = c.TakeDamage(character.PoolSTA, 50)
	return storage.NewSaveData(slot, c, session.StatePlaying)
}

// Run exercises the Store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("SaveThenLoad", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		before := time.Now().UTC().Add(-time.Second)

		saved, err := s.Save(ctx, Sample("alpha"))
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, saved.ID)
		assert.WithinDuration(t, time.Now(), saved.Timestamp, time.Minute)
		assert.True(t, saved.Timestamp.After(before))

		got, err := s.Load(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, saved.ID, got.ID)
		assert.Equal(t, "alpha", got.Slot)
		assert.Equal(t, saved.Character, got.Character)
		assert.Equal(t, session.StatePlaying, got.GameState)
		assert.True(t, saved.Timestamp.Equal(got.Timestamp), "timestamp %v != %v", saved.Timestamp, got.Timestamp)
	})

	t.Run("LoadMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Load(context.Background(), "nobody")
		assert.ErrorIs(t, err, storage.ErrSaveNotFound)
	})

	t.Run("SaveOverwritesSlot", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		_, err := s.Save(ctx, Sample("alpha"))
		require.NoError(t, err)

		second := Sample("alpha")
		second.Character.Name = "Ash"
		second.GameState = session.StateMenu
		_, err = s.Save(ctx, second)
		require.NoError(t, err)

		got, err := s.Load(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, "Ash", got.Character.Name)
		assert.Equal(t, session.StateMenu, got.GameState)

		slots, err := s.Slots(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha"}, slots)
	})

	t.Run("ExistsAndDelete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		ok, err := s.Exists(ctx, "alpha")
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = s.Save(ctx, Sample("alpha"))
		require.NoError(t, err)
		ok, err = s.Exists(ctx, "alpha")
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, s.Delete(ctx, "alpha"))
		ok, err = s.Exists(ctx, "alpha")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.ErrorIs(t, s.Delete(ctx, "alpha"), storage.ErrSaveNotFound)
	})

	t.Run("SlotsSorted", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		empty, err := s.Slots(ctx)
		require.NoError(t, err)
		assert.Empty(t, empty)

		for _, slot := range []string{"charlie", "alpha", "bravo"} {
			_, err := s.Save(ctx, Sample(slot))
			require.NoError(t, err)
		}
		slots, err := s.Slots(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "bravo", "charlie"}, slots)
	})

	t.Run("RejectsInvalidInput", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		_, err := s.Save(ctx, Sample(" "))
		assert.ErrorIs(t, err, storage.ErrInvalidSlot)

		bad := Sample("alpha")
		bad.GameState = "combat"
		_, err = s.Save(ctx, bad)
		assert.ErrorIs(t, err, session.ErrUnknownState)

		_, err = s.Load(ctx, "")
		assert.ErrorIs(t, err, storage.ErrInvalidSlot)
	})

	t.Run("ConcurrentSaves", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		const n = 10
		var wg sync.WaitGroup
		errs := make(chan error, n)
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func(i int) {
				defer wg.Done()
				_, err := s.Save(ctx, Sample(fmt.Sprintf("slot%02d", i)))
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}
		slots, err := s.Slots(ctx)
		require.NoError(t, err)
		assert.Len(t, slots, n)
	})
}
