package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/RedCodeSnoo/Lotm-dle/assets"
	"github.com/RedCodeSnoo/Lotm-dle/internal/config"
	"github.com/RedCodeSnoo/Lotm-dle/internal/httpserver"
	"github.com/RedCodeSnoo/Lotm-dle/internal/logging"
	"github.com/RedCodeSnoo/Lotm-dle/internal/roster"
	"github.com/RedCodeSnoo/Lotm-dle/internal/stats"
	"github.com/RedCodeSnoo/Lotm-dle/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// run wires and serves the game until the listener fails. Everything it opens
// is closed before it returns.
func run(cfg *config.Config) error {
	logFile, err := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer logFile.Close()

	ros, err := loadRoster(cfg.RosterFile)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}

	kv, closeKV, err := openStats(cfg)
	if err != nil {
		return fmt.Errorf("open %s stats backend: %w", cfg.StatsBackend, err)
	}
	defer closeKV.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sessions := store.NewMemoryStore()
	go store.RunJanitor(ctx, sessions, cfg.SessionSweepEvery, cfg.SessionIdleTTL)

	srv := httpserver.New(httpserver.Options{
		Roster:       ros,
		KV:           kv,
		Sessions:     sessions,
		MaxGuesses:   cfg.MaxGuesses,
		JWTSecret:    cfg.JWTSecret,
		CookieName:   cfg.CookieName,
		ClientOrigin: cfg.ClientOrigin,
		Secure:       cfg.Production,
	})
	log.Info().
		Str("port", cfg.Port).
		Int("characters", ros.Len()).
		Str("stats", cfg.StatsBackend).
		Dur("sessionIdleTTL", cfg.SessionIdleTTL).
		Msg("starting go-server")
	return srv.Start(":" + cfg.Port)
}

// loadRoster reads ROSTER_FILE when set, else the embedded roster.
func loadRoster(path string) (*roster.Roster, error) {
	if path != "" {
		return roster.LoadFile(path)
	}
	b, err := assets.Roster()
	if err != nil {
		return nil, err
	}
	return roster.Load(b)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// openStats builds the configured statistics backend.
func openStats(cfg *config.Config) (stats.KV, io.Closer, error) {
	switch cfg.StatsBackend {
	case config.BackendMemory:
		return stats.NewMemoryKV(), closerFunc(func() error { return nil }), nil
	case config.BackendSQLite:
		db, err := openDB(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return stats.NewSQLiteKV(db), db, nil
	case config.BackendValkey:
		client, err := stats.NewValkeyClient(stats.ValkeyConfig{
			Addr:         cfg.ValkeyAddr,
			Password:     cfg.ValkeyPassword,
			DisableCache: cfg.ValkeyDisableCache,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := client.Do(context.Background(), client.B().Ping().Build()).Error(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("valkey ping: %w", err)
		}
		return stats.NewValkeyKV(client, cfg.ValkeyPrefix), closerFunc(func() error { client.Close(); return nil }), nil
	}
	return nil, nil, fmt.Errorf("unknown stats backend %q", cfg.StatsBackend)
}
