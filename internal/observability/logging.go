// Package observability provides structured logging for the storyteller server.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/storyteller/internal/config"
	"github.com/cory-johannsen/storyteller/internal/game/character"
)

// NewLogger creates a structured logger from the given logging configuration.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zapCfg, err := zapConfig(cfg)
	if err != nil {
		return nil, err
	}
	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// NewLoggerTo builds a logger like NewLogger that writes to ws instead of the
// configured output paths. The CLI uses it for commands whose stdout is data.
//
// Precondition: ws must be non-nil.
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLoggerTo(cfg config.LoggingConfig, ws zapcore.WriteSyncer) (*zap.Logger, error) {
	zapCfg, err := zapConfig(cfg)
	if err != nil {
		return nil, err
	}
	var enc zapcore.Encoder
	if cfg.Format == "json" {
		enc = zapcore.NewJSONEncoder(zapCfg.EncoderConfig)
	} else {
		enc = zapcore.NewConsoleEncoder(zapCfg.EncoderConfig)
	}
	return zap.New(zapcore.NewCore(enc, ws, zapCfg.Level)), nil
}

func zapConfig(cfg config.LoggingConfig) (zap.Config, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return zap.Config{}, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return zap.Config{}, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapCfg, nil
}

// CharacterFields returns the log fields identifying a character and its pools.
func CharacterFields(s character.Snapshot) []zap.Field {
	return []zap.Field{
		zap.String("character", s.Name),
		zap.String("background", s.Background),
		zap.Int("hp", s.Resources.HP),
		zap.Int("sta", s.Resources.STA),
		zap.Int("con", s.Resources.CON),
		zap.Int("res", s.Resources.RES),
	}
}
