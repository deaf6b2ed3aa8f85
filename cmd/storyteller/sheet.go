package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/storyteller/internal/config"
	"github.com/cory-johannsen/storyteller/internal/frontend/handlers"
	"github.com/cory-johannsen/storyteller/internal/frontend/telnet"
	"github.com/cory-johannsen/storyteller/internal/game/character"
	"github.com/cory-johannsen/storyteller/internal/game/ruleset"
	"github.com/cory-johannsen/storyteller/internal/observability"
)

type sheetOptions struct {
	name         string
	background   string
	pregenerated bool
	asJSON       bool
	color        bool
	scores       map[string]*int
}

var scoreFlags = []struct {
	flag  string
	usage string
}{
	{"bdy", "Body attribute"},
	{"mnd", "Mind attribute"},
	{"sol", "Soul attribute"},
	{"frc", "Force approach"},
	{"foc", "Focus approach"},
	{"fns", "Finesse approach"},
}

func newSheetCmd() *cobra.Command {
	opts := &sheetOptions{scores: make(map[string]*int)}
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Print the derived character sheet for the given scores",
		Long: `sheet builds a character offline and prints its sheet. Start from a
background (--background) or the pregenerated character (--pregenerated) and
override individual scores with --bdy, --mnd, --sol, --frc, --foc and --fns.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSheet(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.name, "name", "", "character name")
	f.StringVar(&opts.background, "background", "", "background ID to start from (body, mind, soul, nameless)")
	f.BoolVar(&opts.pregenerated, "pregenerated", false, "start from the pregenerated character")
	f.BoolVar(&opts.asJSON, "json", false, "print the status report as JSON")
	f.BoolVar(&opts.color, "color", false, "keep ANSI colors")
	for _, s := range scoreFlags {
		opts.scores[s.flag] = f.Int(s.flag, 1, s.usage)
	}
	cmd.MarkFlagsMutuallyExclusive("background", "pregenerated")
	return cmd
}

func runSheet(cmd *cobra.Command, opts *sheetOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	// stdout carries the sheet, so logs go to stderr
	logger, err := observability.NewLoggerTo(cfg.Logging, zapcore.AddSync(cmd.ErrOrStderr()))
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	charCfg, err := sheetConfig(cmd, cfg.Content, opts)
	if err != nil {
		return err
	}
	snap := character.New(charCfg).StatusReport()
	logger.Debug("character sheet built", observability.CharacterFields(snap)...)

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	sheet := handlers.RenderCharacterSheet(snap)
	if !opts.color {
		sheet = telnet.StripANSI(sheet)
	}
	_, err = fmt.Fprint(out, sheet)
	if err != nil {
		logger.Warn("writing sheet", zap.Error(err))
	}
	return err
}

// sheetConfig resolves the starting point and applies explicitly set flags.
func sheetConfig(cmd *cobra.Command, content config.ContentConfig, opts *sheetOptions) (character.Config, error) {
	var cfg character.Config
	switch {
	case opts.pregenerated:
		cfg = ruleset.Pregenerated()
	case opts.background != "":
		reg, err := loadBackgrounds(content)
		if err != nil {
			return character.Config{}, fmt.Errorf("loading backgrounds: %w", err)
		}
		bg, err := reg.Get(opts.background)
		if err != nil {
			return character.Config{}, err
		}
		cfg = bg.Config(opts.name)
	}

	if cmd.Flags().Changed("name") {
		name := opts.name
		cfg.Name = &name
	}

	changed := func(flag string) *int {
		if !cmd.Flags().Changed(flag) {
			return nil
		}
		v := *opts.scores[flag]
		return &v
	}
	if cfg.Attributes == nil {
		cfg.Attributes = &character.AttributeConfig{}
	}
	if cfg.Approaches == nil {
		cfg.Approaches = &character.ApproachConfig{}
	}
	for flag, dst := range map[string]**int{
		"bdy": &cfg.Attributes.BDY,
		"mnd": &cfg.Attributes.MND,
		"sol": &cfg.Attributes.SOL,
		"frc": &cfg.Approaches.FRC,
		"foc": &cfg.Approaches.FOC,
		"fns": &cfg.Approaches.FNS,
	} {
		if v := changed(flag); v != nil {
			*dst = v
		}
	}
	return cfg, nil
}
