package server

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.TickRate != 60 || c.CountdownSteps != 3 || c.CountdownInterval != time.Second {
		t.Fatalf("timing defaults = %+v", c)
	}
	if c.Gravity != 0.5 || c.FlapImpulse != -10 || c.ProjectileSpeed != 10 || c.ProjectileOffset != 50 {
		t.Fatalf("physics defaults = %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if got := c.TickInterval(); got != time.Second/60 {
		t.Fatalf("tick interval = %v", got)
	}
}

func TestConfigFromEnv(t *testing.T) {
	var env struct {
		Game Config `env:",prefix=GAME_"`
	}
	lookuper := envconfig.MapLookuper(map[string]string{
		"GAME_TICK_RATE":           "30",
		"GAME_COUNTDOWN_INTERVAL":  "250ms",
		"GAME_SCORE_TO_WIN":        "3",
		"GAME_REQUEUE_AFTER_MATCH": "false",
	})
	if err := envconfig.ProcessWith(context.Background(), &env, lookuper); err != nil {
		t.Fatal(err)
	}
	c := env.Game
	if c.TickRate != 30 || c.CountdownInterval != 250*time.Millisecond || c.ScoreToWin != 3 || c.RequeueAfterMatch {
		t.Fatalf("config = %+v", c)
	}
	if c.Gravity != 0.5 {
		t.Fatalf("unset gravity = %v, want default", c.Gravity)
	}
	if r := c.Rules(); r.FieldWidth != 600 || r.PlayerHeight != 40 {
		t.Fatalf("rules = %+v", r)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"tick rate":   func(c *Config) { c.TickRate = 0 },
		"fast ticks":  func(c *Config) { c.TickRate = 2_000_000_000 },
		"steps":       func(c *Config) { c.CountdownSteps = -1 },
		"interval":    func(c *Config) { c.CountdownInterval = 0 },
		"score":       func(c *Config) { c.ScoreToWin = 0 },
		"speed":       func(c *Config) { c.ProjectileSpeed = 0 },
		"hitbox":      func(c *Config) { c.ProjectileSize = 0 },
		"small field": func(c *Config) { c.FieldHeight = 10 },
		"narrow":      func(c *Config) { c.FieldWidth = 520 },
	}
	for name, mutate := range cases {
		c := DefaultConfig()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: invalid config accepted", name)
		}
	}

	c := DefaultConfig()
	c.TickRate = MaxTickRate
	if err := c.Validate(); err != nil || c.TickInterval() <= 0 {
		t.Fatalf("max tick rate: %v, interval %v", err, c.TickInterval())
	}

	c = DefaultConfig()
	c.CountdownSteps = 0
	c.CountdownInterval = 0
	if err := c.Validate(); err != nil {
		t.Fatalf("no countdown with no interval rejected: %v", err)
	}
}
