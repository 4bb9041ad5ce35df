// internal/stats/stats.go
//
// Player statistics and their persistence.
//
// Three independent counters:
//   - GlobalStats:  lifetime visit count (persisted, key "globalStats").
//   - DailyStats:   wins/losses for one calendar day (persisted, key "dailyStats"),
//                   reset whenever the stored date is not today.
//   - SessionStats: random-mode wins/losses, in memory only.
//
// Persistence goes through the KV interface. Absent or malformed records are
// treated as a first run; write failures are logged and never reach gameplay.

package stats

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

const (
	globalKey = "globalStats"
	dailyKey  = "dailyStats"
)

// GlobalStats is the lifetime record.
type GlobalStats struct {
	TotalVisits int `json:"totalVisits"`
}

// DailyStats is the tally for Date (YYYY-MM-DD).
type DailyStats struct {
	Date   string `json:"date"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

// SessionStats is the random-mode tally for the current page load.
type SessionStats struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// Snapshot is a copy of all counters for rendering.
type Snapshot struct {
	Global  GlobalStats  `json:"global"`
	Daily   DailyStats   `json:"daily"`
	Session SessionStats `json:"session"`
}

// KV is the persistent key-value collaborator.
// Get reports ok=false for an absent key; that is not an error.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
}

// Tracker owns one player's counters. It is not safe for concurrent use.
type Tracker struct {
	kv        KV
	namespace string

	global  GlobalStats
	daily   DailyStats
	session SessionStats
}

// NewTracker scopes all keys under namespace (usually the player ID).
func NewTracker(kv KV, namespace string) *Tracker {
	return &Tracker{kv: kv, namespace: namespace}
}

// Load reads the persisted records and rolls the daily tally over to today.
// The session tally starts at zero.
func (t *Tracker) Load(ctx context.Context, today string) {
	t.session = SessionStats{}

	t.global = GlobalStats{}
	if !t.read(ctx, globalKey, &t.global) || t.global.TotalVisits < 0 {
		t.global = GlobalStats{}
	}

	t.daily = DailyStats{}
	if !t.read(ctx, dailyKey, &t.daily) || t.daily.Wins < 0 || t.daily.Losses < 0 {
		t.daily = DailyStats{}
	}
	t.rollDaily(ctx, today)
}

// RecordVisit counts one page load.
func (t *Tracker) RecordVisit(ctx context.Context) {
	t.global.TotalVisits++
	t.write(ctx, globalKey, t.global)
}

// RecordDaily counts a finished daily round.
func (t *Tracker) RecordDaily(ctx context.Context, today string, won bool) {
	t.rollDaily(ctx, today)
	if won {
		t.daily.Wins++
	} else {
		t.daily.Losses++
	}
	t.write(ctx, dailyKey, t.daily)
}

// RecordSession counts a finished random round. Nothing is persisted.
func (t *Tracker) RecordSession(won bool) {
	if won {
		t.session.Wins++
	} else {
		t.session.Losses++
	}
}

// Snapshot returns a copy of the current counters.
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{Global: t.global, Daily: t.daily, Session: t.session}
}

func (t *Tracker) rollDaily(ctx context.Context, today string) {
	if t.daily.Date == today {
		return
	}
	t.daily = DailyStats{Date: today}
	t.write(ctx, dailyKey, t.daily)
}

func (t *Tracker) key(name string) string {
	if t.namespace == "" {
		return name
	}
	return fmt.Sprintf("%s:%s", t.namespace, name)
}

// read decodes a record; it reports false when the record is absent or unusable.
func (t *Tracker) read(ctx context.Context, name string, dst any) bool {
	key := t.key(name)
	raw, ok, err := t.kv.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("stats read failed")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("malformed stats record, resetting")
		return false
	}
	return true
}

func (t *Tracker) write(ctx context.Context, name string, v any) {
	key := t.key(name)
	raw, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("stats encode failed")
		return
	}
	if err := t.kv.Put(ctx, key, raw); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("stats write failed")
	}
}
