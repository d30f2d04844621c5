package observability

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/duel/internal/config"
	"github.com/cory-johannsen/duel/internal/game/match"
)

func TestNewLogger_JSON(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "json"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_Console(t *testing.T) {
	cfg := config.LoggingConfig{Level: "debug", Format: "console"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := config.LoggingConfig{Level: "trace", Format: "json"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "xml"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_AllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := config.LoggingConfig{Level: level, Format: "json"}
		logger, err := NewLogger(cfg)
		require.NoError(t, err, "level %q should be valid", level)
		assert.NotNil(t, logger)
	}
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duel.log")
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json", Output: []string{path}})
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, logger.Sync())
	assert.FileExists(t, path)
}

func TestResultFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	logger.Info("done", ResultFields(match.Result{Outcome: match.Victory, Duration: 12, DamageDealt: 80, SkillsUsed: 2})...)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "victory", fields["outcome"])
	assert.Equal(t, int64(12), fields["duration_s"])
	assert.Equal(t, int64(80), fields["damage_dealt"])
	assert.Equal(t, int64(2), fields["skills_used"])
}

func TestSnapshotFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := match.Snapshot{Time: 1.5}
	s.Player.Health = 100
	s.Enemy.Health = 40
	zap.New(core).Info("frame", SnapshotFields(s)...)

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, 1.5, fields["t"])
	assert.Equal(t, 100.0, fields["player_health"])
	assert.Equal(t, 40.0, fields["enemy_health"])
}
