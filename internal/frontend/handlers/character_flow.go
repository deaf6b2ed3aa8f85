package handlers

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/cory-johannsen/storyteller/internal/frontend/telnet"
	"github.com/cory-johannsen/storyteller/internal/game/character"
	"github.com/cory-johannsen/storyteller/internal/game/ruleset"
	"github.com/cory-johannsen/storyteller/internal/observability"
)

// MaxNameLength bounds a character name in runes.
const MaxNameLength = 32

var (
	// ErrNameTooLong is returned by ValidateName for names over MaxNameLength runes.
	ErrNameTooLong = errors.New("name is too long")
	// ErrNameInvalid is returned by ValidateName for names with control characters.
	ErrNameInvalid = errors.New("name contains invalid characters")
)

// ValidateName trims and checks a player-entered name. An empty result is
// valid and selects the default name.
//
// Postcondition: Returns the trimmed name, or ErrNameTooLong or ErrNameInvalid.
func ValidateName(raw string) (string, error) {
	name := strings.Join(strings.Fields(raw), " ")
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrNameTooLong
	}
	for _, r := range name {
		if unicode.IsControl(r) || r == utf8.RuneError {
			return "", ErrNameInvalid
		}
	}
	return name, nil
}

// create runs the rest of character creation once a background is chosen:
// it asks for a name, builds the character and starts play. Typing "cancel"
// returns to the background choice.
func (p *player) create(ctx context.Context, backgroundID string) error {
	bg, err := p.h.backgrounds.Get(backgroundID)
	if err != nil {
		p.log.Warn("unknown background chosen", zap.String("background", backgroundID))
		return p.show(creationScreen(p.h.backgrounds))
	}

	color, _ := telnet.Palette(bg.Color)
	if err := p.say("%s", telnet.Colorize(color, bg.Name+", "+bg.Archetype)); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.conn.WritePrompt("What is your name? (blank for none, cancel to choose again) "); err != nil {
			return err
		}
		line, err := p.conn.ReadLine()
		if err != nil {
			return err
		}
		if strings.EqualFold(strings.TrimSpace(line), "cancel") {
			return p.show(creationScreen(p.h.backgrounds))
		}
		name, err := ValidateName(line)
		if err != nil {
			if err := p.say("That name won't do: %v.", err); err != nil {
				return err
			}
			continue
		}
		return p.start(bg, name)
	}
}

func (p *player) start(bg *ruleset.Background, name string) error {
	c := character.New(bg.Config(name))
	p.sess.Start(c)
	p.log.Info("character created",
		append(observability.CharacterFields(c.StatusReport()), zap.String("background_id", bg.ID))...)
	return p.begin()
}
