// internal/session/session.go
//
// Session-scoped controller: one player's page load.
//
// A Session owns the roster reference, the single live Round, and the
// statistics Tracker. It is what the presentation layer talks to:
//   - New:        load stats, count the visit, start a daily round.
//   - StartRound: replace the round wholesale (daily or random target).
//   - Guess:      submit input; terminal transitions feed the Tracker once.
//   - Suggest:    live suggestion list for the input box.
//   - View:       plain data snapshot for rendering.
//
// Calls are serialised with a mutex so a player's requests are applied one at
// a time, in the order they arrive.

package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RedCodeSnoo/Lotm-dle/internal/game"
	"github.com/RedCodeSnoo/Lotm-dle/internal/roster"
	"github.com/RedCodeSnoo/Lotm-dle/internal/stats"
)

// Clock supplies today's date as YYYY-MM-DD.
type Clock interface {
	Today() string
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Today() string { return roster.DateKey(time.Now()) }

// Deps are the collaborators shared by every session.
type Deps struct {
	Roster     *roster.Roster
	KV         stats.KV
	Clock      Clock
	MaxGuesses int
}

// Session is one player's live game.
type Session struct {
	mu       sync.Mutex
	playerID string
	deps     Deps
	round    *game.Round
	tracker  *stats.Tracker
}

// View is everything the presentation layer renders.
type View struct {
	RoundID    string         `json:"roundId"`
	Mode       game.Mode      `json:"mode"`
	State      game.State     `json:"state"`
	Rows       []game.Row     `json:"rows"` // newest first
	Guesses    int            `json:"guesses"`
	MaxGuesses int            `json:"maxGuesses"`
	Counter    string         `json:"counter"`
	Target     string         `json:"target,omitempty"` // revealed once terminal
	Stats      stats.Snapshot `json:"stats"`
}

// New starts a session for playerID: it loads statistics, records one visit
// and starts today's daily round.
func New(ctx context.Context, playerID string, deps Deps) (*Session, error) {
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.KV == nil {
		deps.KV = stats.NewMemoryKV()
	}
	if deps.Roster == nil {
		return nil, fmt.Errorf("%w: no roster", roster.ErrInvalidRoster)
	}
	s := &Session{
		playerID: playerID,
		deps:     deps,
		tracker:  stats.NewTracker(deps.KV, playerID),
	}
	s.tracker.Load(ctx, deps.Clock.Today())
	s.tracker.RecordVisit(ctx)
	if err := s.StartRound(game.ModeDaily); err != nil {
		return nil, err
	}
	return s, nil
}

// PlayerID returns the owner of this session.
func (s *Session) PlayerID() string { return s.playerID }

// StartRound replaces the live round with a fresh one in mode.
func (s *Session) StartRound(mode game.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entities := s.deps.Roster.Entities()
	var (
		target roster.Entity
		err    error
	)
	switch mode {
	case game.ModeRandom:
		target, err = roster.RandomTarget(entities)
	default:
		mode = game.ModeDaily
		target, err = roster.DailyTarget(s.deps.Clock.Today(), entities)
	}
	if err != nil {
		return err
	}
	s.round = game.New(mode, target, s.deps.Roster, s.deps.MaxGuesses)
	log.Debug().Str("player", s.playerID).Str("round", s.round.ID).Str("mode", string(mode)).Msg("round started")
	return nil
}

// Guess submits raw input to the live round. Advisory errors leave the
// round untouched.
func (s *Session) Guess(ctx context.Context, raw string) (*game.GuessResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.round.Submit(raw)
	if err != nil {
		return nil, err
	}
	if res.State.Terminal() {
		s.recordOutcome(ctx, res.State == game.StateWon)
	}
	return res, nil
}

func (s *Session) recordOutcome(ctx context.Context, won bool) {
	if s.round.Mode == game.ModeDaily {
		s.tracker.RecordDaily(ctx, s.deps.Clock.Today(), won)
	} else {
		s.tracker.RecordSession(won)
	}
	log.Info().
		Str("player", s.playerID).
		Str("round", s.round.ID).
		Str("mode", string(s.round.Mode)).
		Bool("won", won).
		Int("guesses", s.round.Count()).
		Msg("round finished")
}

// Suggest returns the names of up to five unguessed matches.
func (s *Session) Suggest(query string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	es := s.round.Suggestions(query)
	names := make([]string, len(es))
	for i, e := range es {
		names[i] = e.Name
	}
	return names
}

// View snapshots the session for rendering.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.round.Rows()
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	v := View{
		RoundID:    s.round.ID,
		Mode:       s.round.Mode,
		State:      s.round.State(),
		Rows:       rows,
		Guesses:    s.round.Count(),
		MaxGuesses: s.round.MaxGuesses,
		Counter:    fmt.Sprintf("%d/%d", s.round.Count(), s.round.MaxGuesses),
		Stats:      s.tracker.Snapshot(),
	}
	if v.State.Terminal() {
		v.Target = s.round.Target().Name
	}
	return v
}
