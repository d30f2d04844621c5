// Package observability provides logging utilities.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/duel/internal/config"
	"github.com/cory-johannsen/duel/internal/game/match"
)

// NewLogger creates a structured logger from the given logging configuration.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
		// Per-tick debug lines must not be sampled away.
		zapCfg.Sampling = nil
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if len(cfg.Output) > 0 {
		zapCfg.OutputPaths = cfg.Output
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// ResultFields renders a match result as log fields.
func ResultFields(r match.Result) []zap.Field {
	return []zap.Field{
		zap.Stringer("outcome", r.Outcome),
		zap.Int("duration_s", r.Duration),
		zap.Int("damage_dealt", r.DamageDealt),
		zap.Int("damage_taken", r.DamageTaken),
		zap.Int("skills_used", r.SkillsUsed),
		zap.Int("melee_hits", r.Stats.MeleeHits),
		zap.Int("melee_blocked", r.Stats.MeleeBlocked),
	}
}

// SnapshotFields renders the vitals of a HUD snapshot as log fields.
func SnapshotFields(s match.Snapshot) []zap.Field {
	return []zap.Field{
		zap.Float64("t", s.Time),
		zap.Float64("player_health", s.Player.Health),
		zap.Float64("player_resource", s.Player.Resource),
		zap.Float64("enemy_health", s.Enemy.Health),
		zap.Float64("enemy_resource", s.Enemy.Resource),
	}
}
