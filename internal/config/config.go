// Package config provides Viper-based configuration loading for the duel runner.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output lists log sinks: "stdout", "stderr" or file paths.
	Output []string `mapstructure:"output"`
}

// MatchConfig holds frame loop, combat and combatant settings.
type MatchConfig struct {
	// FrameRate is the number of ticks per second.
	FrameRate int `mapstructure:"frame_rate"`
	// MaxDelta caps the seconds a single tick may advance.
	MaxDelta           float64 `mapstructure:"max_delta"`
	MeleeRange         float64 `mapstructure:"melee_range"`
	MeleeDelay         float64 `mapstructure:"melee_delay"`
	SeparationDistance float64 `mapstructure:"separation_distance"`
	PlayerClass        string  `mapstructure:"player_class"`
	// EnemyClass is empty to fight the player's opposite class.
	EnemyClass  string `mapstructure:"enemy_class"`
	PlayerName  string `mapstructure:"player_name"`
	Environment string `mapstructure:"environment"`
}

// WeightsConfig mirrors the mid-range action weights.
type WeightsConfig struct {
	Move   float64 `mapstructure:"move"`
	Attack float64 `mapstructure:"attack"`
	Skill  float64 `mapstructure:"skill"`
}

// MoveMixConfig mirrors the movement split.
type MoveMixConfig struct {
	Toward float64 `mapstructure:"toward"`
	Away   float64 `mapstructure:"away"`
	Strafe float64 `mapstructure:"strafe"`
}

// AIConfig selects the enemy's profile. The tuning fields define the
// "default" profile; any other name must come from content.ai_dir.
type AIConfig struct {
	Profile          string        `mapstructure:"profile"`
	DecisionCooldown float64       `mapstructure:"decision_cooldown"`
	FarThreshold     float64       `mapstructure:"far_threshold"`
	NearThreshold    float64       `mapstructure:"near_threshold"`
	Weights          WeightsConfig `mapstructure:"weights"`
	MoveMix          MoveMixConfig `mapstructure:"move_mix"`
	BurstMin         float64       `mapstructure:"burst_min"`
	BurstMax         float64       `mapstructure:"burst_max"`
}

// ContentConfig points at optional YAML content directories. Empty means built-ins.
type ContentConfig struct {
	ArchetypesDir string `mapstructure:"archetypes_dir"`
	AIDir         string `mapstructure:"ai_dir"`
}

// SimConfig controls randomness.
type SimConfig struct {
	// Seed makes a run reproducible. 0 selects the crypto source.
	Seed uint64 `mapstructure:"seed"`
	// LogRolls logs every random draw at debug level.
	LogRolls bool `mapstructure:"log_rolls"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Match   MatchConfig   `mapstructure:"match"`
	AI      AIConfig      `mapstructure:"ai"`
	Content ContentConfig `mapstructure:"content"`
	Sim     SimConfig     `mapstructure:"sim"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	for _, err := range []error{
		validateLogging(c.Logging),
		validateMatch(c.Match),
		validateAI(c.AI),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateMatch(m MatchConfig) error {
	var errs []string
	if m.FrameRate < 1 || m.FrameRate > 1000 {
		errs = append(errs, fmt.Sprintf("match.frame_rate must be 1-1000, got %d", m.FrameRate))
	}
	if m.MaxDelta <= 0 {
		errs = append(errs, fmt.Sprintf("match.max_delta must be > 0, got %v", m.MaxDelta))
	}
	if m.MeleeRange <= 0 {
		errs = append(errs, fmt.Sprintf("match.melee_range must be > 0, got %v", m.MeleeRange))
	}
	if m.MeleeDelay < 0 {
		errs = append(errs, fmt.Sprintf("match.melee_delay must be >= 0, got %v", m.MeleeDelay))
	}
	if m.SeparationDistance < 0 {
		errs = append(errs, fmt.Sprintf("match.separation_distance must be >= 0, got %v", m.SeparationDistance))
	}
	if m.PlayerClass == "" {
		errs = append(errs, "match.player_class must not be empty")
	}
	if m.Environment == "" {
		errs = append(errs, "match.environment must not be empty")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateAI(a AIConfig) error {
	var errs []string
	if a.Profile == "" {
		errs = append(errs, "ai.profile must not be empty")
	}
	if a.DecisionCooldown <= 0 {
		errs = append(errs, fmt.Sprintf("ai.decision_cooldown must be > 0, got %v", a.DecisionCooldown))
	}
	if a.NearThreshold < 0 || a.NearThreshold >= a.FarThreshold {
		errs = append(errs, fmt.Sprintf("ai thresholds must satisfy 0 <= near < far, got near %v far %v", a.NearThreshold, a.FarThreshold))
	}
	if sum := a.Weights.Move + a.Weights.Attack + a.Weights.Skill; math.Abs(sum-1) > 1e-9 {
		errs = append(errs, fmt.Sprintf("ai.weights must sum to 1, got %v", sum))
	}
	if sum := a.MoveMix.Toward + a.MoveMix.Away + a.MoveMix.Strafe; math.Abs(sum-1) > 1e-9 {
		errs = append(errs, fmt.Sprintf("ai.move_mix must sum to 1, got %v", sum))
	}
	if a.BurstMin <= 0 || a.BurstMax < a.BurstMin {
		errs = append(errs, fmt.Sprintf("ai burst range must satisfy 0 < min <= max, got %v..%v", a.BurstMin, a.BurstMax))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with DUEL_ prefix
	v.SetEnvPrefix("DUEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", []string{"stderr"})

	v.SetDefault("match.frame_rate", 60)
	v.SetDefault("match.max_delta", 0.1)
	v.SetDefault("match.melee_range", 4.0)
	v.SetDefault("match.melee_delay", 0.3)
	v.SetDefault("match.separation_distance", 0.1)
	v.SetDefault("match.player_class", "warrior")
	v.SetDefault("match.enemy_class", "")
	v.SetDefault("match.player_name", "Player")
	v.SetDefault("match.environment", "arena")

	v.SetDefault("ai.profile", "default")
	v.SetDefault("ai.decision_cooldown", 1.0)
	v.SetDefault("ai.far_threshold", 7.0)
	v.SetDefault("ai.near_threshold", 3.0)
	v.SetDefault("ai.weights.move", 0.6)
	v.SetDefault("ai.weights.attack", 0.3)
	v.SetDefault("ai.weights.skill", 0.1)
	v.SetDefault("ai.move_mix.toward", 0.4)
	v.SetDefault("ai.move_mix.away", 0.4)
	v.SetDefault("ai.move_mix.strafe", 0.2)
	v.SetDefault("ai.burst_min", 0.5)
	v.SetDefault("ai.burst_max", 1.5)

	v.SetDefault("content.archetypes_dir", "")
	v.SetDefault("content.ai_dir", "")

	v.SetDefault("sim.seed", 0)
	v.SetDefault("sim.log_rolls", false)
}
