// Package storage defines saved games and the Store contract shared by the
// sqlite, postgres and redis backends.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/cory-johannsen/storyteller/internal/game/character"
	"github.com/cory-johannsen/storyteller/internal/game/session"
)

// DefaultSlot is the slot used when none is configured.
const DefaultSlot = "storyteller_save"

// ErrSaveNotFound is returned when a slot holds no saved game.
var ErrSaveNotFound = errors.New("save not found")

// ErrCorruptSave is returned when a stored record cannot be read back.
var ErrCorruptSave = errors.New("save data corrupted")

// ErrInvalidSlot is returned for an empty slot name.
var ErrInvalidSlot = errors.New("slot must not be empty")

// SaveData is one saved game: the character's status report, the screen the
// player was on and when the save was written.
type SaveData struct {
	ID        uuid.UUID          `json:"id"`
	Slot      string             `json:"slot"`
	Character character.Snapshot `json:"character"`
	GameState session.State      `json:"gameState"`
	Timestamp time.Time          `json:"timestamp"`
}

// Store persists saved games by slot. Implementations are safe for concurrent use.
type Store interface {
	// Save writes d into d.Slot, replacing any earlier save there.
	//
	// Postcondition: Returns d with ID and Timestamp assigned.
	Save(ctx context.Context, d SaveData) (SaveData, error)
	// Load returns the save in slot, or ErrSaveNotFound.
	Load(ctx context.Context, slot string) (SaveData, error)
	// Exists reports whether slot holds a save.
	Exists(ctx context.Context, slot string) (bool, error)
	// Delete removes the save in slot, or returns ErrSaveNotFound.
	Delete(ctx context.Context, slot string) error
	// Slots lists every occupied slot in ascending order.
	Slots(ctx context.Context) ([]string, error)
	// Close releases the store's resources.
	Close() error
}

// NewSaveData builds an unsaved record of c in the given state.
//
// Precondition: c must be non-nil.
func NewSaveData(slot string, c *character.Character, state session.State) SaveData {
	return SaveData{
		Slot:      slot,
		Character: c.StatusReport(),
		GameState: state,
	}
}

// Prepare validates d and assigns the fields a store sets on write. A record
// without an ID receives a new one; the timestamp is always now, in UTC and
// truncated to microseconds so that every backend returns it unchanged.
//
// Postcondition: Returns the stamped record, or an error wrapping ErrInvalidSlot
// or session.ErrUnknownState.
func Prepare(d SaveData, now time.Time) (SaveData, error) {
	d.Slot = strings.TrimSpace(d.Slot)
	if d.Slot == "" {
		return SaveData{}, ErrInvalidSlot
	}
	if !d.GameState.Valid() {
		return SaveData{}, fmt.Errorf("%w: %q", session.ErrUnknownState, d.GameState)
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.Timestamp = now.UTC().Truncate(time.Microsecond)
	return d, nil
}

// CheckSlot trims slot and rejects an empty one.
func CheckSlot(slot string) (string, error) {
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return "", ErrInvalidSlot
	}
	return slot, nil
}

// Encode serialises d as a JSON record.
func Encode(d SaveData) ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encoding save %s: %w", d.Slot, err)
	}
	return data, nil
}

// Decode reads a record written by Encode. The character is rebuilt leniently:
// missing or mistyped character fields take their defaults. A record that is not
// a JSON object, whose character is not a JSON object, or whose id, game state
// or timestamp is unreadable, is corrupt.
//
// Postcondition: Returns the record, or an error wrapping ErrCorruptSave.
func Decode(data []byte) (SaveData, error) {
	if !gjson.ValidBytes(data) {
		return SaveData{}, fmt.Errorf("%w: not valid JSON", ErrCorruptSave)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return SaveData{}, fmt.Errorf("%w: not a JSON object", ErrCorruptSave)
	}

	var d SaveData
	var err error
	if id := root.Get("id"); id.Exists() {
		if d.ID, err = uuid.Parse(id.String()); err != nil {
			return SaveData{}, fmt.Errorf("%w: id: %v", ErrCorruptSave, err)
		}
	}
	d.Slot = root.Get("slot").String()
	if d.GameState, err = session.ParseState(root.Get("gameState").String()); err != nil {
		return SaveData{}, fmt.Errorf("%w: %v", ErrCorruptSave, err)
	}
	if ts := root.Get("timestamp"); ts.Exists() {
		if d.Timestamp, err = time.Parse(time.RFC3339Nano, ts.String()); err != nil {
			return SaveData{}, fmt.Errorf("%w: timestamp: %v", ErrCorruptSave, err)
		}
		d.Timestamp = d.Timestamp.UTC()
	}
	if d.Character, err = Restore([]byte(root.Get("character").Raw)); err != nil {
		return SaveData{}, err
	}
	return d, nil
}

// Restore rebuilds a status report from a stored character record through the
// character constructor, so derived values are always recomputed. Fields inside
// the record are read leniently; the record itself must be a JSON object.
//
// Postcondition: Returns the snapshot, or an error wrapping ErrCorruptSave.
func Restore(record []byte) (character.Snapshot, error) {
	if !gjson.ValidBytes(record) || !gjson.ParseBytes(record).IsObject() {
		return character.Snapshot{}, fmt.Errorf("%w: character is not a JSON object", ErrCorruptSave)
	}
	return character.New(character.ParseConfig(record)).StatusReport(), nil
}

// EncodeCharacter serialises a status report for a character column or key.
func EncodeCharacter(s character.Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding character %s: %w", s.Name, err)
	}
	return data, nil
}
