package handlers

import (
	"github.com/cory-johannsen/storyteller/internal/game/ruleset"
)

// Button is one numbered choice. Action is the command dispatched when the
// player picks it.
type Button struct {
	Label  string
	Action string
	Color  string
}

// Screen is what the player currently sees: a title, paragraphs and the
// choices that are live until the next screen replaces them.
type Screen struct {
	Title   string
	Body    []string
	Buttons []Button
}

// Button actions. Background choices use actionBackground + the background ID.
const (
	actionCreate     = "create"
	actionPregen     = "pregenerated"
	actionMenu       = "menu"
	actionPlay       = "play"
	actionLookBehind = "look-behind"
	actionForward    = "continue-forward"
	actionSatchel    = "check-satchel"
	actionLoadSave   = "load-save"
	actionBackground = "background:"
)

var backToMenu = Button{Label: "Back to Menu", Action: actionMenu}

var storyButtons = []Button{
	{Label: "Look behind you", Action: actionLookBehind},
	{Label: "Continue forward", Action: actionForward},
	{Label: "Check your satchel", Action: actionSatchel},
}

func welcomeScreen() Screen {
	return Screen{
		Title: "Welcome to Project Hope",
		Body: []string{
			"Before you walked the Usual Road, you lived a quiet life. But something shaped you, more than anyone knew.",
			"Ready to begin your journey?",
		},
		Buttons: []Button{
			{Label: "Start Character Creation", Action: actionCreate},
			{Label: "Load Character", Action: actionPregen},
		},
	}
}

func creationScreen(reg *ruleset.BackgroundRegistry) Screen {
	s := Screen{
		Title: "Character Creation",
		Body:  []string{"What part of you always refused to be ignored?"},
	}
	for _, bg := range reg.All() {
		s.Buttons = append(s.Buttons, Button{
			Label:  `"` + bg.Prompt + `"`,
			Action: actionBackground + bg.ID,
			Color:  bg.Color,
		})
	}
	return s
}

func gameStartScreen() Screen {
	return Screen{
		Title: "The Usual Road",
		Body: []string{
			"You stand at the edge of the Usual Road, where every journey starts the same: a cracked path, a crooked sign, a distant light barely flickering through the morning fog.",
			"A worn satchel rests on your shoulder. The memory of your background presses faintly against your spine.",
			`Footsteps echo behind you. A voice calls out, not unkind, but unfamiliar: "Hey. You coming or what?"`,
		},
		Buttons: storyButtons,
	}
}

func storyScreen(text string) Screen {
	return Screen{Body: []string{text}, Buttons: storyButtons}
}

func savedScreen() Screen {
	return Screen{
		Title:   "Game Saved",
		Body:    []string{"Your progress has been saved successfully."},
		Buttons: []Button{{Label: "Continue", Action: actionPlay}},
	}
}

func nothingToSaveScreen() Screen {
	return Screen{
		Title:   "No Character to Save",
		Body:    []string{"You need to create or load a character first."},
		Buttons: []Button{backToMenu},
	}
}

func saveFailedScreen() Screen {
	return Screen{
		Title:   "Save Failed",
		Body:    []string{"Your progress could not be saved. Please try again."},
		Buttons: []Button{backToMenu},
	}
}

func loadMenuScreen() Screen {
	return Screen{
		Title: "Load Game",
		Body:  []string{"A saved game was found. Would you like to load it?"},
		Buttons: []Button{
			{Label: "Load Save", Action: actionLoadSave},
			backToMenu,
		},
	}
}

func noSaveScreen() Screen {
	return Screen{
		Title:   "No Save Found",
		Body:    []string{"No saved game data was found."},
		Buttons: []Button{backToMenu},
	}
}

func loadFailedScreen() Screen {
	return Screen{
		Title:   "Load Failed",
		Body:    []string{"Failed to load the saved game. The save data may be corrupted."},
		Buttons: []Button{backToMenu},
	}
}

func settingsScreen() Screen {
	return Screen{
		Title:   "Settings",
		Body:    []string{"Settings panel - coming soon!"},
		Buttons: []Button{backToMenu},
	}
}

func helpScreen() Screen {
	return Screen{
		Title: "Help",
		Body: []string{
			"This is Project Hope, a narrative RPG experience.",
			"Use the action buttons to make choices and progress through the story.",
			"Your character sheet shows your stats and progress. Type sheet to see it.",
			"Type a button's number to choose it. Commands: " + commandSummary,
		},
		Buttons: []Button{backToMenu},
	}
}

func aboutScreen(version string) Screen {
	return Screen{
		Title: "About Project Storyteller",
		Body: []string{
			"A narrative RPG framework built for interactive storytelling.",
			"Version " + version,
		},
		Buttons: []Button{backToMenu},
	}
}
