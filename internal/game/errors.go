package game

import "errors"

// Advisory errors: the round is left unchanged and the player may retry.
var (
	ErrCharacterNotFound = errors.New("character not found")
	ErrDuplicateGuess    = errors.New("character already guessed")
)

// ErrRoundOver guards against input after the round has finished.
// Hosts should ignore it rather than show it.
var ErrRoundOver = errors.New("round already over")
