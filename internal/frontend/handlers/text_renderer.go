package handlers

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/storyteller/internal/frontend/telnet"
	"github.com/cory-johannsen/storyteller/internal/game/character"
)

const rule = "----------------------------------------"

// RenderScreen formats a screen as colored Telnet text: the title, each
// paragraph, then the numbered buttons.
func RenderScreen(s Screen) string {
	var b strings.Builder
	b.WriteString("\r\n")
	if s.Title != "" {
		b.WriteString(telnet.Colorize(telnet.BrightYellow, s.Title))
		b.WriteString("\r\n\r\n")
	}
	for _, p := range s.Body {
		b.WriteString(telnet.Colorize(telnet.White, p))
		b.WriteString("\r\n\r\n")
	}
	b.WriteString(RenderButtons(s.Buttons))
	return b.String()
}

// RenderButtons lists buttons as "[n] label", tinting each with its color.
func RenderButtons(buttons []Button) string {
	var b strings.Builder
	for i, btn := range buttons {
		color, _ := telnet.Palette(btn.Color)
		fmt.Fprintf(&b, "  %s %s\r\n",
			telnet.Colorize(telnet.BrightCyan, fmt.Sprintf("[%d]", i+1)),
			telnet.Colorize(color, btn.Label))
	}
	return b.String()
}

// RenderCharacterSheet formats a status report the way the character panel
// lays it out: identity, Hope, experience, core statistics, equipment, combat
// statistics, energy resources and, when any apply, current states.
func RenderCharacterSheet(s character.Snapshot) string {
	var b strings.Builder
	section := func(title string) {
		b.WriteString(telnet.Colorize(telnet.Cyan, title))
		b.WriteString("\r\n")
	}
	row := func(label string, value any) {
		fmt.Fprintf(&b, "  %-24s %v\r\n", label+":", value)
	}

	b.WriteString(rule + "\r\n")
	b.WriteString(telnet.Colorize(telnet.Bold+telnet.BrightWhite, s.Name))
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "%s | %s\r\n", s.Background, s.Archetype)
	b.WriteString(rule + "\r\n")

	section("Hope")
	fmt.Fprintf(&b, "  %s\r\n", telnet.Colorize(hopeColor(s.Resources), fmt.Sprintf("%d / %d", s.Resources.HP, s.Resources.MaxHP)))

	section("Experience")
	row("Current Experience", s.Experience.Current)
	row("Total Experience", s.Experience.Total)

	section("Core Statistics")
	fmt.Fprintf(&b, "  Attributes   Body: %d  Mind: %d  Soul: %d\r\n",
		s.Attributes.BDY, s.Attributes.MND, s.Attributes.SOL)
	fmt.Fprintf(&b, "  Approaches   Force: %d  Focus: %d  Finesse: %d\r\n",
		s.Approaches.FRC, s.Approaches.FOC, s.Approaches.FNS)

	section("Equipment")
	row("Weapon", orNone(s.Equipment.Weapon))
	row("Armor", orNone(s.Equipment.Armor))
	row("Accessory", orNone(s.Equipment.Accessory))

	section("Combat Statistics")
	b.WriteString("  Offensive Power\r\n")
	row("Might (Strike)", s.Stats.MIG)
	row("Technique (Craft)", s.Stats.TEC)
	row("Influence (Talk)", s.Stats.INF)
	b.WriteString("  Defensive Mitigation\r\n")
	row("Agility", s.Stats.AGI)
	row("Wisdom", s.Stats.WIS)
	row("Charisma", s.Stats.CHA)

	section("Energy Resources")
	row("Stamina", fmt.Sprintf("%d / %d", s.Resources.STA, s.Resources.MaxSTA))
	row("Concentration", fmt.Sprintf("%d / %d", s.Resources.CON, s.Resources.MaxCON))
	row("Resolve", fmt.Sprintf("%d / %d", s.Resources.RES, s.Resources.MaxRES))
	b.WriteString("  Recovery Rates\r\n")
	row("Stamina Recovery", s.Recovery.STA)
	row("Concentration Recovery", s.Recovery.CON)
	row("Resolve Recovery", s.Recovery.RES)

	if len(s.States) > 0 {
		section("Current States")
		names := make([]string, len(s.States))
		for i, st := range s.States {
			names[i] = string(st)
		}
		fmt.Fprintf(&b, "  %s\r\n", telnet.Colorize(telnet.BrightRed, strings.Join(names, " ")))
	}
	b.WriteString(rule + "\r\n")
	return b.String()
}

// RenderAction describes how an action would resolve.
func RenderAction(a character.Action) string {
	kind := string(a.Kind)
	if kind != "" {
		kind = strings.ToUpper(kind[:1]) + kind[1:]
	}
	return telnet.Colorize(telnet.Green, fmt.Sprintf("%s: %d against %s, hits %s", kind, a.Attack, a.Defense, a.Target))
}

func orNone(item *string) string {
	if item == nil || *item == "" {
		return "None"
	}
	return *item
}

func hopeColor(r character.Resources) string {
	switch {
	case r.HP <= 0:
		return telnet.BrightRed
	case r.HP*2 <= r.MaxHP:
		return telnet.Yellow
	default:
		return telnet.BrightGreen
	}
}
