package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"flapduel/server/game"
)

// MaxTickRate bounds TickRate so every tick keeps a real wall-clock interval.
const MaxTickRate = 1000

// Config holds the tunables of a match. Values are read from the environment
// (GAME_ prefix when embedded in the process Env) and copied into every
// session at creation time, so updates only affect later matches.
type Config struct {
	TickRate          int           `env:"TICK_RATE,default=60" json:"tickRate"`
	Gravity           float64       `env:"GRAVITY,default=0.5" json:"gravity"`
	FlapImpulse       float64       `env:"FLAP_IMPULSE,default=-10" json:"flapImpulse"`
	MoveSpeed         float64       `env:"MOVE_SPEED,default=5" json:"moveSpeed"`
	ProjectileSpeed   float64       `env:"PROJECTILE_SPEED,default=10" json:"projectileSpeed"`
	ProjectileOffset  float64       `env:"PROJECTILE_OFFSET,default=50" json:"projectileOffset"`
	ProjectileSize    float64       `env:"PROJECTILE_SIZE,default=8" json:"projectileSize"`
	CountdownSteps    int           `env:"COUNTDOWN_STEPS,default=3" json:"countdownSteps"`
	CountdownInterval time.Duration `env:"COUNTDOWN_INTERVAL,default=1s" json:"countdownInterval"`
	ScoreToWin        int           `env:"SCORE_TO_WIN,default=5" json:"scoreToWin"`
	FieldWidth        float64       `env:"FIELD_WIDTH,default=600" json:"fieldWidth"`
	FieldHeight       float64       `env:"FIELD_HEIGHT,default=600" json:"fieldHeight"`
	PlayerWidth       float64       `env:"PLAYER_WIDTH,default=40" json:"playerWidth"`
	PlayerHeight      float64       `env:"PLAYER_HEIGHT,default=40" json:"playerHeight"`
	RequeueAfterMatch bool          `env:"REQUEUE_AFTER_MATCH,default=true" json:"requeueAfterMatch"`
}

// DefaultConfig returns the configuration with every default applied and no
// environment consulted.
func DefaultConfig() Config {
	var c Config
	if err := envconfig.ProcessWith(context.Background(), &c, envconfig.MapLookuper(nil)); err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return c
}

// Validate rejects configurations a session cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.TickRate <= 0 || c.TickRate > MaxTickRate {
		errs = append(errs, fmt.Errorf("tick rate must be in 1..%d, got %d", MaxTickRate, c.TickRate))
	}
	if c.CountdownSteps < 0 {
		errs = append(errs, fmt.Errorf("countdown steps must not be negative, got %d", c.CountdownSteps))
	}
	if c.CountdownSteps > 0 && c.CountdownInterval <= 0 {
		errs = append(errs, fmt.Errorf("countdown interval must be positive, got %v", c.CountdownInterval))
	}
	if c.ScoreToWin <= 0 {
		errs = append(errs, fmt.Errorf("score to win must be positive, got %d", c.ScoreToWin))
	}
	if c.ProjectileSpeed <= 0 {
		errs = append(errs, fmt.Errorf("projectile speed must be positive, got %v", c.ProjectileSpeed))
	}
	if c.ProjectileSize <= 0 || c.PlayerWidth <= 0 || c.PlayerHeight <= 0 {
		errs = append(errs, errors.New("hitbox sizes must be positive"))
	}
	if c.FieldWidth < game.RightSpawnX+c.PlayerWidth || c.FieldHeight < game.SpawnY+c.PlayerHeight {
		errs = append(errs, errors.New("playfield must contain both spawn positions"))
	}
	return errors.Join(errs...)
}

// TickInterval is the wall-clock duration of one gameplay tick.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Rules converts the physical part of the config for the simulation.
func (c Config) Rules() game.Rules {
	return game.Rules{
		Gravity:          c.Gravity,
		FlapImpulse:      c.FlapImpulse,
		MoveSpeed:        c.MoveSpeed,
		ProjectileSpeed:  c.ProjectileSpeed,
		ProjectileOffset: c.ProjectileOffset,
		ProjectileSize:   c.ProjectileSize,
		FieldWidth:       c.FieldWidth,
		FieldHeight:      c.FieldHeight,
		PlayerWidth:      c.PlayerWidth,
		PlayerHeight:     c.PlayerHeight,
	}
}
