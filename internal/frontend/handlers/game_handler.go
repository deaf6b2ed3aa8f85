// Package handlers implements the Project Hope text front-end: screens,
// numbered choices, character creation and save/load over a Telnet connection.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/storyteller/internal/frontend/telnet"
	"github.com/cory-johannsen/storyteller/internal/game/character"
	"github.com/cory-johannsen/storyteller/internal/game/ruleset"
	"github.com/cory-johannsen/storyteller/internal/game/session"
	"github.com/cory-johannsen/storyteller/internal/observability"
	"github.com/cory-johannsen/storyteller/internal/storage"
)

// Version is shown on the About screen.
const Version = "0.1.0"

const commandSummary = "new, save, load, sheet, rest, guard, strike, craft, talk, settings, help, about, quit."

// GameHandler runs one Project Hope session per Telnet connection.
type GameHandler struct {
	store       storage.Store
	backgrounds *ruleset.BackgroundRegistry
	sessions    *session.Manager
	slot        string
	logger      *zap.Logger
}

// NewGameHandler creates a GameHandler that saves into slot.
//
// Precondition: store, backgrounds, sessions and logger must be non-nil; slot must be non-empty.
func NewGameHandler(store storage.Store, backgrounds *ruleset.BackgroundRegistry, sessions *session.Manager, slot string, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		store:       store,
		backgrounds: backgrounds,
		sessions:    sessions,
		slot:        slot,
		logger:      logger,
	}
}

// HandleSession shows the welcome screen and processes input until the player
// quits, the connection drops, or ctx is cancelled.
//
// Postcondition: The session is closed in the manager when this returns. A
// quit returns nil; a dropped connection returns the read or write error.
func (h *GameHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	id := uuid.NewString()
	sess, err := h.sessions.Open(id)
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}
	defer func() { _ = h.sessions.Close(id) }()

	p := &player{
		h:    h,
		sess: sess,
		conn: conn,
		log: h.logger.With(
			zap.String("session", id),
			zap.String("remote_addr", conn.RemoteAddr().String()),
		),
	}
	p.log.Info("session opened", zap.Int("open_sessions", h.sessions.Count()))

	if err := p.show(welcomeScreen()); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := conn.WritePrompt("> "); err != nil {
			return err
		}
		line, err := conn.ReadLine()
		if err != nil {
			return err
		}
		quit, err := p.handle(ctx, line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// player is the per-connection state: the session and the screen whose
// buttons are live.
type player struct {
	h      *GameHandler
	sess   *session.Session
	conn   *telnet.Conn
	log    *zap.Logger
	screen Screen
}

func (p *player) show(s Screen) error {
	p.screen = s
	return p.conn.Write([]byte(RenderScreen(s)))
}

func (p *player) say(format string, args ...any) error {
	return p.conn.WriteLine(fmt.Sprintf(format, args...))
}

// handle dispatches one line of input. It reports whether the player quit.
func (p *player) handle(ctx context.Context, line string) (bool, error) {
	input := strings.TrimSpace(line)
	if input == "" {
		return false, nil
	}

	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(p.screen.Buttons) {
			return false, p.say("There is no choice %d.", n)
		}
		return false, p.do(ctx, p.screen.Buttons[n-1].Action)
	}

	switch cmd := strings.ToLower(strings.Fields(input)[0]); cmd {
	case "quit", "exit":
		return true, p.say("Farewell, traveller.")
	case "new", "new-game":
		p.sess.Reset()
		p.log.Info("game reset")
		return false, p.show(welcomeScreen())
	case "menu":
		return false, p.do(ctx, actionMenu)
	case "save":
		return false, p.save(ctx)
	case "load":
		return false, p.loadMenu(ctx)
	case "settings":
		return false, p.show(settingsScreen())
	case "help":
		return false, p.show(helpScreen())
	case "about":
		return false, p.show(aboutScreen(Version))
	case "sheet":
		return false, p.sheet()
	case "rest":
		return false, p.rest()
	case "guard":
		return false, p.guard()
	case "strike", "craft", "talk":
		return false, p.perform(character.ActionKind(cmd))
	default:
		p.log.Debug("user input", zap.String("input", input))
		return false, p.say("Unknown command %q. Type help for a list of commands.", cmd)
	}
}

// do runs a button action.
func (p *player) do(ctx context.Context, action string) error {
	switch action {
	case actionMenu:
		return p.show(welcomeScreen())
	case actionCreate:
		p.sess.BeginCreation()
		return p.show(creationScreen(p.h.backgrounds))
	case actionPregen:
		c := character.New(ruleset.Pregenerated())
		p.sess.Start(c)
		p.log.Info("pregenerated character loaded", observability.CharacterFields(c.StatusReport())...)
		return p.begin()
	case actionPlay:
		if err := p.sess.Play(); err != nil {
			return p.show(welcomeScreen())
		}
		return p.show(gameStartScreen())
	case actionLookBehind:
		return p.show(storyScreen("You turn to see a figure approaching through the mist..."))
	case actionForward:
		return p.show(storyScreen("You step forward onto the cracked stones of the Usual Road..."))
	case actionSatchel:
		return p.show(storyScreen("You open your satchel and find..."))
	case actionLoadSave:
		return p.loadSave(ctx)
	}
	if id, ok := strings.CutPrefix(action, actionBackground); ok {
		return p.create(ctx, id)
	}
	return fmt.Errorf("unhandled action %q", action)
}

// begin shows the character sheet and the opening story screen.
func (p *player) begin() error {
	if err := p.sheet(); err != nil {
		return err
	}
	if err := p.sess.Play(); err != nil {
		return p.show(welcomeScreen())
	}
	return p.show(gameStartScreen())
}

func (p *player) sheet() error {
	snap, ok := p.sess.Snapshot()
	if !ok {
		return p.say("You need to create or load a character first.")
	}
	return p.conn.Write([]byte(RenderCharacterSheet(snap)))
}

func (p *player) rest() error {
	var snap character.Snapshot
	err := p.sess.WithCharacter(func(c *character.Character) error {
		c.Rest()
		snap = c.StatusReport()
		return nil
	})
	if errors.Is(err, session.ErrNoCharacter) {
		return p.say("You need to create or load a character first.")
	}
	r := snap.Resources
	return p.say("You rest a moment. Stamina %d/%d, Concentration %d/%d, Resolve %d/%d.",
		r.STA, r.MaxSTA, r.CON, r.MaxCON, r.RES, r.MaxRES)
}

func (p *player) guard() error {
	var msg string
	err := p.sess.WithCharacter(func(c *character.Character) error {
		var err error
		msg, err = c.Guard()
		return err
	})
	switch {
	case errors.Is(err, session.ErrNoCharacter):
		return p.say("You need to create or load a character first.")
	case errors.Is(err, character.ErrAlreadyGuarded):
		return p.say("You are already guarding.")
	case err != nil:
		return err
	}
	return p.say("%s", msg)
}

func (p *player) perform(kind character.ActionKind) error {
	var (
		a        character.Action
		lowered  bool
		ownGuard int
	)
	err := p.sess.WithCharacter(func(c *character.Character) error {
		var err error
		a, err = c.Perform(kind)
		if err != nil {
			return err
		}
		// an offensive action spends the guard
		if c.Guarded() {
			c.ResetGuard()
			lowered = true
			ownGuard, _ = c.Defense(a.Defense)
		}
		return nil
	})
	if errors.Is(err, session.ErrNoCharacter) {
		return p.say("You need to create or load a character first.")
	}
	if err != nil {
		return err
	}
	if err := p.say("%s", RenderAction(a)); err != nil {
		return err
	}
	if lowered {
		return p.say("You lower your guard. Your %s is back to %d.", a.Defense, ownGuard)
	}
	return nil
}

func (p *player) save(ctx context.Context) error {
	state := p.sess.State()
	var d storage.SaveData
	err := p.sess.WithCharacter(func(c *character.Character) error {
		d = storage.NewSaveData(p.h.slot, c, state)
		return nil
	})
	if errors.Is(err, session.ErrNoCharacter) {
		return p.show(nothingToSaveScreen())
	}

	saved, err := p.h.store.Save(ctx, d)
	if err != nil {
		p.log.Error("saving game", zap.String("slot", p.h.slot), zap.Error(err))
		return p.show(saveFailedScreen())
	}
	p.log.Info("game saved",
		append(observability.CharacterFields(saved.Character),
			zap.String("slot", saved.Slot),
			zap.Stringer("save_id", saved.ID),
		)...)
	return p.show(savedScreen())
}

func (p *player) loadMenu(ctx context.Context) error {
	ok, err := p.h.store.Exists(ctx, p.h.slot)
	if err != nil {
		p.log.Error("checking for save", zap.String("slot", p.h.slot), zap.Error(err))
		return p.show(loadFailedScreen())
	}
	if !ok {
		return p.show(noSaveScreen())
	}
	return p.show(loadMenuScreen())
}

func (p *player) loadSave(ctx context.Context) error {
	d, err := p.h.store.Load(ctx, p.h.slot)
	if errors.Is(err, storage.ErrSaveNotFound) {
		return p.show(noSaveScreen())
	}
	if err == nil {
		err = p.sess.Restore(d.Character, d.GameState)
	}
	if err != nil {
		p.log.Error("loading save", zap.String("slot", p.h.slot), zap.Error(err))
		return p.show(loadFailedScreen())
	}
	p.log.Info("game loaded",
		append(observability.CharacterFields(d.Character),
			zap.String("slot", d.Slot),
			zap.Stringer("save_id", d.ID),
			zap.Time("saved_at", d.Timestamp),
		)...)
	return p.begin()
}
