// Package main provides the headless duel runner: an autopiloted player
// fights the AI enemy in real time until one side falls.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/config"
	"github.com/cory-johannsen/duel/internal/game/ai"
	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/combat"
	"github.com/cory-johannsen/duel/internal/game/dice"
	"github.com/cory-johannsen/duel/internal/game/environment"
	"github.com/cory-johannsen/duel/internal/game/match"
	"github.com/cory-johannsen/duel/internal/gameserver"
	"github.com/cory-johannsen/duel/internal/observability"
	"github.com/cory-johannsen/duel/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = defaults and DUEL_* environment")
	hudInterval := flag.Duration("hud-interval", time.Second, "how often to log combatant vitals")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	m, pilot, err := buildMatch(cfg, logger)
	if err != nil {
		logger.Fatal("building match", zap.Error(err))
	}
	pilot.Bind(m.Clock(), m.Player(), m.Enemy())
	defer m.Close()

	driver, err := gameserver.NewFrameDriver(m, gameserver.DriverConfig{
		FrameRate: cfg.Match.FrameRate,
		MaxDelta:  cfg.Match.MaxDelta,
	}, logger)
	if err != nil {
		logger.Fatal("creating frame driver", zap.Error(err))
	}
	hud := make(chan match.Snapshot, 1)
	driver.Subscribe(hud)

	logger.Info("duel ready",
		zap.String("match", m.ID.String()),
		zap.String("player", string(m.Player().Class())),
		zap.String("enemy", string(m.Enemy().Class())),
		zap.String("environment", cfg.Match.Environment),
		zap.Duration("startup", time.Since(start)),
	)
	if err := m.Start(); err != nil {
		logger.Fatal("starting match", zap.Error(err))
	}

	lc := server.NewLifecycle(logger)
	lc.Add("frame-driver", driver)
	lc.Add("hud", server.ServiceFunc(func(ctx context.Context) error {
		return logVitals(ctx, logger, hud, *hudInterval)
	}))
	if err := lc.Run(context.Background()); err != nil {
		logger.Error("lifecycle error", zap.Error(err))
		os.Exit(1)
	}

	r, ok := <-driver.Done()
	if !ok {
		logger.Info("duel interrupted", observability.SnapshotFields(m.Snapshot())...)
		return
	}
	logger.Info("duel over", observability.ResultFields(r)...)
	fmt.Printf("%s in %ds: dealt %d, took %d, %d skills used\n",
		r.Outcome, r.Duration, r.DamageDealt, r.DamageTaken, r.SkillsUsed)
}

// buildMatch resolves content, randomness and tuning from cfg.
func buildMatch(cfg config.Config, logger *zap.Logger) (*match.Match, *ai.Autopilot, error) {
	archetypes := character.DefaultRegistry()
	if dir := cfg.Content.ArchetypesDir; dir != "" {
		reg, err := character.LoadArchetypes(dir)
		if err != nil {
			return nil, nil, err
		}
		archetypes = reg
		logger.Info("loaded archetypes", zap.String("dir", dir), zap.Int("count", len(reg.Classes())))
	}

	profiles := ai.NewRegistry()
	if dir := cfg.Content.AIDir; dir != "" {
		reg, err := ai.LoadProfiles(dir)
		if err != nil {
			return nil, nil, err
		}
		profiles = reg
	}
	profile, err := resolveProfile(cfg.AI, profiles)
	if err != nil {
		return nil, nil, err
	}

	env, err := environment.DefaultRegistry().New(cfg.Match.Environment)
	if err != nil {
		return nil, nil, err
	}

	var src dice.Source
	if cfg.Sim.Seed != 0 {
		src = dice.NewSeededSource(cfg.Sim.Seed)
		logger.Info("using seeded dice", zap.Uint64("seed", cfg.Sim.Seed))
	} else {
		src = dice.NewCryptoSource()
	}
	if cfg.Sim.LogRolls {
		src = dice.NewLoggedSource(src, logger)
	}

	pilot := ai.NewAutopilot(profile, src, logger)
	m, err := match.New(match.Config{
		PlayerClass: character.Class(cfg.Match.PlayerClass),
		EnemyClass:  character.Class(cfg.Match.EnemyClass),
		PlayerName:  cfg.Match.PlayerName,
		MaxDelta:    cfg.Match.MaxDelta,
		Combat: combat.Config{
			MeleeRange:         cfg.Match.MeleeRange,
			MeleeDelay:         cfg.Match.MeleeDelay,
			SeparationDistance: cfg.Match.SeparationDistance,
		},
		AI: profile,
	}, match.Deps{
		Archetypes:  archetypes,
		Environment: env,
		Input:       pilot,
		Rand:        src,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return m, pilot, nil
}

// resolveProfile builds the "default" profile from config tuning and looks
// any other name up in profiles.
func resolveProfile(c config.AIConfig, profiles *ai.Registry) (ai.Profile, error) {
	if c.Profile == ai.DefaultProfile().ID {
		return ai.Profile{
			ID:               c.Profile,
			DecisionCooldown: c.DecisionCooldown,
			FarThreshold:     c.FarThreshold,
			NearThreshold:    c.NearThreshold,
			Weights:          ai.Weights{Move: c.Weights.Move, Attack: c.Weights.Attack, Skill: c.Weights.Skill},
			MoveMix:          ai.MoveMix{Toward: c.MoveMix.Toward, Away: c.MoveMix.Away, Strafe: c.MoveMix.Strafe},
			BurstMin:         c.BurstMin,
			BurstMax:         c.BurstMax,
		}, nil
	}
	p, ok := profiles.ProfileFor(c.Profile)
	if !ok {
		return ai.Profile{}, fmt.Errorf("unknown ai profile %q", c.Profile)
	}
	return p, nil
}

// logVitals logs every delivered effect request at debug and the latest
// snapshot at most once per interval until ctx ends.
func logVitals(ctx context.Context, logger *zap.Logger, hud <-chan match.Snapshot, interval time.Duration) error {
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-hud:
			if s.Banner != "" && last.IsZero() {
				logger.Info(s.Banner)
			}
			for _, e := range s.Effects {
				logger.Debug("effect",
					zap.String("name", e.Name),
					zap.Stringer("source", e.Source),
				)
			}
			if time.Since(last) < interval {
				continue
			}
			last = time.Now()
			logger.Info("vitals", observability.SnapshotFields(s)...)
		}
	}
}
