package stats

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	json "github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"

	"github.com/RedCodeSnoo/Lotm-dle/assets"
)

func newSQLiteKV(t *testing.T) *SQLiteKV {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	ms, err := assets.Migrations()
	if err != nil {
		t.Fatalf("migrations: %v", err)
	}
	for _, m := range ms {
		if _, err := db.Exec(m.SQL); err != nil {
			t.Fatalf("apply %s: %v", m.Name, err)
		}
	}
	return NewSQLiteKV(db)
}

func newValkeyKV(t *testing.T) *ValkeyKV {
	t.Helper()
	mini := miniredis.RunT(t)
	client, err := NewValkeyClient(ValkeyConfig{Addr: mini.Addr(), DisableCache: true})
	if err != nil {
		t.Fatalf("valkey client: %v", err)
	}
	t.Cleanup(client.Close)
	return NewValkeyKV(client, "lotmdle")
}

func backends(t *testing.T) map[string]KV {
	return map[string]KV{
		"memory": NewMemoryKV(),
		"sqlite": newSQLiteKV(t),
		"valkey": newValkeyKV(t),
	}
}

func TestKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
				t.Fatalf("absent key: ok=%v err=%v", ok, err)
			}
			if err := kv.Put(ctx, "k", []byte(`{"a":1}`)); err != nil {
				t.Fatalf("put: %v", err)
			}
			if err := kv.Put(ctx, "k", []byte(`{"a":2}`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, ok, err := kv.Get(ctx, "k")
			if err != nil || !ok || string(got) != `{"a":2}` {
				t.Fatalf("get: %q ok=%v err=%v", got, ok, err)
			}
		})
	}
}

func TestTrackerFirstRun(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(NewMemoryKV(), "p1")
	tr.Load(ctx, "2024-06-01")
	tr.RecordVisit(ctx)

	s := tr.Snapshot()
	if s.Global.TotalVisits != 1 {
		t.Fatalf("expected 1 visit, got %d", s.Global.TotalVisits)
	}
	if s.Daily != (DailyStats{Date: "2024-06-01"}) {
		t.Fatalf("unexpected daily: %+v", s.Daily)
	}
}

func TestTrackerPersistsAcrossLoads(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			tr := NewTracker(kv, "p1")
			tr.Load(ctx, "2024-06-01")
			tr.RecordVisit(ctx)
			tr.RecordDaily(ctx, "2024-06-01", true)
			tr.RecordDaily(ctx, "2024-06-01", false)
			tr.RecordSession(true)

			again := NewTracker(kv, "p1")
			again.Load(ctx, "2024-06-01")
			again.RecordVisit(ctx)
			s := again.Snapshot()
			if s.Global.TotalVisits != 2 {
				t.Fatalf("expected 2 visits, got %d", s.Global.TotalVisits)
			}
			if s.Daily.Wins != 1 || s.Daily.Losses != 1 {
				t.Fatalf("daily not persisted: %+v", s.Daily)
			}
			if s.Session != (SessionStats{}) {
				t.Fatalf("session tally must reset on load: %+v", s.Session)
			}

			other := NewTracker(kv, "p2")
			other.Load(ctx, "2024-06-01")
			if other.Snapshot().Global.TotalVisits != 0 {
				t.Fatalf("namespaces leaked")
			}
		})
	}
}

func TestTrackerResetsDailyOnNewDate(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	raw, _ := json.Marshal(DailyStats{Date: "2024-05-31", Wins: 3, Losses: 2})
	_ = kv.Put(ctx, "p1:dailyStats", raw)

	tr := NewTracker(kv, "p1")
	tr.Load(ctx, "2024-06-01")
	if got := tr.Snapshot().Daily; got != (DailyStats{Date: "2024-06-01"}) {
		t.Fatalf("expected reset tally, got %+v", got)
	}

	tr.RecordDaily(ctx, "2024-06-02", true)
	if got := tr.Snapshot().Daily; got != (DailyStats{Date: "2024-06-02", Wins: 1}) {
		t.Fatalf("expected rollover before scoring, got %+v", got)
	}
}

func TestTrackerTreatsMalformedAsAbsent(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	_ = kv.Put(ctx, "p1:globalStats", []byte("not json"))
	_ = kv.Put(ctx, "p1:dailyStats", []byte(`{"date":"2024-06-01","wins":-4}`))

	tr := NewTracker(kv, "p1")
	tr.Load(ctx, "2024-06-01")
	tr.RecordVisit(ctx)
	s := tr.Snapshot()
	if s.Global.TotalVisits != 1 {
		t.Fatalf("expected fresh visit count, got %d", s.Global.TotalVisits)
	}
	if s.Daily != (DailyStats{Date: "2024-06-01"}) {
		t.Fatalf("expected fresh daily tally, got %+v", s.Daily)
	}
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("down")
}
func (failingKV) Put(context.Context, string, []byte) error { return errors.New("down") }

func TestTrackerSurvivesStorageFailure(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(failingKV{}, "p1")
	tr.Load(ctx, "2024-06-01")
	tr.RecordVisit(ctx)
	tr.RecordDaily(ctx, "2024-06-01", true)
	tr.RecordSession(false)

	s := tr.Snapshot()
	if s.Global.TotalVisits != 1 || s.Daily.Wins != 1 || s.Session.Losses != 1 {
		t.Fatalf("in-memory counters should still advance: %+v", s)
	}
}
