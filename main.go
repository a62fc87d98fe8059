package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sethvargo/go-envconfig"

	"flapduel/server"
)

// Env is the process configuration read from the environment.
type Env struct {
	Port      int           `env:"PORT,default=8080"`
	LogFile   string        `env:"LOG_FILE,default=app.log"`
	LogLevel  string        `env:"LOG_LEVEL,default=debug"`
	StaticDir string        `env:"STATIC_DIR,default=web"`
	Game      server.Config `env:",prefix=GAME_"`
}

func doMain(ctx context.Context) error {
	env := Env{}
	if err := envconfig.Process(ctx, &env); err != nil {
		return fmt.Errorf("load environment: %w", err)
	}
	if err := env.Game.Validate(); err != nil {
		return fmt.Errorf("game config: %w", err)
	}

	if err := server.InitLogger(env.LogFile, env.LogLevel); err != nil {
		return err
	}
	defer server.SyncLogger()
	log := server.Log

	hub := server.NewHub(env.Game, log)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", env.Port),
		Handler: server.Routes(hub, env.StaticDir),
	}

	ec := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", srv.Addr, "tickRate", env.Game.TickRate)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ec <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Warnw("shutdown signal", "signal", sig.String())
	case err := <-ec:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("http shutdown", "err", err)
	}
	hub.Close()
	log.Info("stopped")
	return nil
}

func main() {
	if err := doMain(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "flapduel:", err)
		os.Exit(1)
	}
}
