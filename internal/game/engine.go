// internal/game/engine.go
//
// Core game engine for a single guessing round.
// Responsibilities:
//   - Create rounds against a fixed roster and a chosen target.
//   - Resolve raw input to a character (exact name, then first suggestion).
//   - Score guesses attribute by attribute (correct/close/incorrect).
//   - Track state transitions: playing → won/lost.
//
// Notes:
//   - The roster and target come from the roster package.
//   - A Round is not safe for concurrent use; the session layer serialises access.
package game

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/RedCodeSnoo/Lotm-dle/internal/roster"
)

const (
	// DefaultMaxGuesses is the guess budget when none is configured.
	DefaultMaxGuesses = 20

	maxSuggestions = 5
)

// Round holds the state of one game: target, guesses in order, lifecycle tag.
type Round struct {
	ID         string
	Mode       Mode
	MaxGuesses int

	roster  *roster.Roster
	target  roster.Entity
	guesses []roster.Entity
	guessed map[int]struct{}
	state   State
}

// New starts a round in StatePlaying.
// A non-positive maxGuesses falls back to DefaultMaxGuesses.
func New(mode Mode, target roster.Entity, r *roster.Roster, maxGuesses int) *Round {
	if maxGuesses <= 0 {
		maxGuesses = DefaultMaxGuesses
	}
	return &Round{
		ID:         randomID(),
		Mode:       mode,
		MaxGuesses: maxGuesses,
		roster:     r,
		target:     target,
		guessed:    make(map[int]struct{}),
		state:      StatePlaying,
	}
}

// Submit resolves, validates and scores a guess, mutating the round.
//
// Validation rules:
//   - Round must still be playing (ErrRoundOver).
//   - Input must resolve to a character (ErrCharacterNotFound).
//   - The character must not have been guessed already (ErrDuplicateGuess).
//
// State transitions:
//   - Guess ID equals target ID → StateWon.
//   - Else guess count reaches MaxGuesses → StateLost.
func (g *Round) Submit(raw string) (*GuessResult, error) {
	if g.state != StatePlaying {
		return nil, ErrRoundOver
	}
	q := roster.Fold(raw)
	if q == "" {
		return nil, ErrCharacterNotFound
	}
	e, ok := g.resolve(q)
	if !ok {
		return nil, ErrCharacterNotFound
	}
	if _, dup := g.guessed[e.ID]; dup {
		return nil, ErrDuplicateGuess
	}

	g.guesses = append(g.guesses, e)
	g.guessed[e.ID] = struct{}{}

	if e.ID == g.target.ID {
		g.state = StateWon
	} else if len(g.guesses) >= g.MaxGuesses {
		g.state = StateLost
	}
	return &GuessResult{Row: scoreRow(e, g.target), State: g.state}, nil
}

// resolve tries an exact name first, then the live suggestion list.
// q is already folded.
func (g *Round) resolve(q string) (roster.Entity, bool) {
	if e, ok := g.roster.Find(q); ok {
		return e, true
	}
	if s := g.suggest(q, 1); len(s) > 0 {
		return s[0], true
	}
	return roster.Entity{}, false
}

// Suggestions returns up to five unguessed characters in roster order whose
// name, or any word of it, starts with query. Blank queries match nothing.
func (g *Round) Suggestions(query string) []roster.Entity {
	q := roster.Fold(query)
	if q == "" {
		return nil
	}
	return g.suggest(q, maxSuggestions)
}

func (g *Round) suggest(q string, limit int) []roster.Entity {
	var out []roster.Entity
	g.roster.Each(func(e roster.Entity, name string) bool {
		if _, done := g.guessed[e.ID]; done {
			return true
		}
		if nameMatches(name, q) {
			out = append(out, e)
		}
		return len(out) < limit
	})
	return out
}

func nameMatches(name, q string) bool {
	if strings.HasPrefix(name, q) {
		return true
	}
	for _, w := range strings.Fields(name) {
		if strings.HasPrefix(w, q) {
			return true
		}
	}
	return false
}

// State reports the lifecycle tag.
func (g *Round) State() State { return g.state }

// Count returns the number of accepted guesses.
func (g *Round) Count() int { return len(g.guesses) }

// Target returns the hidden character.
func (g *Round) Target() roster.Entity { return g.target }

// Rows re-scores every guess in submission order.
func (g *Round) Rows() []Row {
	rows := make([]Row, 0, len(g.guesses))
	for _, e := range g.guesses {
		rows = append(rows, scoreRow(e, g.target))
	}
	return rows
}

// CompareAttribute scores one attribute of a guess against the target.
//
// An empty guess value is correct only against an empty target value and
// never close. Otherwise both values are treated as sets: equal sets are
// correct, intersecting sets are close, disjoint sets are incorrect.
func CompareAttribute(guess, target roster.Value) Status {
	if roster.IsEmptyValue(guess) {
		if roster.IsEmptyValue(target) {
			return StatusCorrect
		}
		return StatusIncorrect
	}
	gs, ts := toSet(guess.Items()), toSet(target.Items())

	shared := 0
	for v := range gs {
		if _, ok := ts[v]; ok {
			shared++
		}
	}
	switch {
	case shared == len(gs) && shared == len(ts):
		return StatusCorrect
	case shared > 0:
		return StatusClose
	}
	return StatusIncorrect
}

func scoreRow(guess, target roster.Entity) Row {
	cells := make([]Cell, len(roster.Attributes))
	for i, a := range roster.Attributes {
		gv := guess.Attr(a.Key)
		cells[i] = Cell{
			Key:    a.Key,
			Label:  a.Label,
			Value:  roster.Display(gv),
			Status: CompareAttribute(gv, target.Attr(a.Key)),
		}
	}
	return Row{ID: guess.ID, Name: guess.Name, Cells: cells}
}

func toSet(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, s := range items {
		m[s] = struct{}{}
	}
	return m
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
