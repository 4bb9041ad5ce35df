package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RedCodeSnoo/Lotm-dle/internal/config"
)

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := openDB(filepath.Join(t.TempDir(), "data", "app.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	for i := 0; i < 2; i++ {
		if err := migrate(db); err != nil {
			t.Fatalf("migrate pass %d: %v", i+1, err)
		}
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n == 0 {
		t.Fatalf("expected recorded migrations")
	}
}

func TestOpenStatsSQLite(t *testing.T) {
	cfg := &config.Config{StatsBackend: config.BackendSQLite, DBPath: filepath.Join(t.TempDir(), "app.db")}
	kv, closer, err := openStats(cfg)
	if err != nil {
		t.Fatalf("open stats: %v", err)
	}
	defer closer.Close()

	ctx := context.Background()
	if err := kv.Put(ctx, "p1:globalStats", []byte(`{"totalVisits":3}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := kv.Get(ctx, "p1:globalStats")
	if err != nil || !ok || string(got) != `{"totalVisits":3}` {
		t.Fatalf("get: %q ok=%v err=%v", got, ok, err)
	}
}

func TestLoadEmbeddedRoster(t *testing.T) {
	r, err := loadRoster("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if r.Len() == 0 {
		t.Fatalf("empty roster")
	}
}

func TestRunReturnsStartupErrors(t *testing.T) {
	dir := t.TempDir()
	base := config.Config{
		Port:         "-1",
		LogLevel:     "error",
		StatsBackend: config.BackendSQLite,
		DBPath:       filepath.Join(dir, "app.db"),
		MaxGuesses:   20,
		JWTSecret:    "test-secret",
	}

	missing := base
	missing.RosterFile = filepath.Join(dir, "nope.yaml")
	if err := run(&missing); err == nil || !strings.Contains(err.Error(), "load roster") {
		t.Fatalf("expected roster error, got %v", err)
	}

	// The listener fails after the stats backend is open; run must hand the
	// error back rather than exit.
	if err := run(&base); err == nil {
		t.Fatalf("expected listen error for port %q", base.Port)
	}
}
