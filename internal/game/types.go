// internal/game/types.go
//
// Core type definitions for the guessing engine.
// Defines:
//   - Status: per-attribute result of a guess (correct/close/incorrect).
//   - State:  round lifecycle tag (playing/won/lost).
//   - Mode:   how the target was chosen (daily/random).
//   - Cell/Row/GuessResult: plain data handed to the presentation layer.

package game

import (
	"fmt"
	"strings"
)

// Status is the comparison result for a single attribute.
type Status string

const (
	StatusCorrect   Status = "correct"
	StatusClose     Status = "close"
	StatusIncorrect Status = "incorrect"
)

// State is the round lifecycle tag.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Terminal reports whether no further guesses are accepted.
func (s State) Terminal() bool { return s == StateWon || s == StateLost }

// Mode selects how a round's target is picked.
type Mode string

const (
	ModeDaily  Mode = "daily"
	ModeRandom Mode = "random"
)

// ParseMode accepts "daily" or "random" (case-insensitive); blank means daily.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeDaily):
		return ModeDaily, nil
	case string(ModeRandom):
		return ModeRandom, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Cell is one rendered attribute of a guess.
type Cell struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Value  string `json:"value"`
	Status Status `json:"status"`
}

// Row is one scored guess in attribute order.
type Row struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Cells []Cell `json:"cells"`
}

// GuessResult is returned by a successful Submit.
type GuessResult struct {
	Row   Row   `json:"row"`
	State State `json:"state"`
}
