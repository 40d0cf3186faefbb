package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every domain error wraps exactly one of these.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
)

// Domain errors
var (
	ErrRoomNotFound   = fmt.Errorf("room %w", ErrNotFound)
	ErrPlayerNotFound = fmt.Errorf("player %w", ErrNotFound)

	ErrNotHost = fmt.Errorf("only host can perform this action: %w", ErrUnauthorized)

	ErrGameAlreadyStarted = fmt.Errorf("game already started: %w", ErrInvalidState)
	ErrGameNotPlaying     = fmt.Errorf("game is not in progress: %w", ErrInvalidState)
	ErrGameNotFinished    = fmt.Errorf("game is not finished: %w", ErrInvalidState)
	ErrWrongWordMode      = fmt.Errorf("action not available in this word mode: %w", ErrInvalidState)
	ErrInvalidPhase       = fmt.Errorf("invalid action for current phase: %w", ErrInvalidState)
	ErrInvalidTurnStatus  = fmt.Errorf("invalid action for current turn status: %w", ErrInvalidState)
	ErrNotYourTurn        = fmt.Errorf("not your turn: %w", ErrInvalidState)
	ErrCannotVoteOwnTurn  = fmt.Errorf("cannot vote on your own turn: %w", ErrInvalidState)
	ErrPlayerEliminated   = fmt.Errorf("player is eliminated: %w", ErrInvalidState)

	ErrNotEnoughPlayers = fmt.Errorf("not enough players to start: %w", ErrValidation)
	ErrNotEnoughWords   = fmt.Errorf("not enough words in category: %w", ErrValidation)
	ErrMissingCategory  = fmt.Errorf("word category is required: %w", ErrValidation)
	ErrMissingWord      = fmt.Errorf("word missing for player: %w", ErrValidation)
	ErrWordsRequired    = fmt.Errorf("words must be submitted for each player: %w", ErrValidation)
	ErrEmptyWord        = fmt.Errorf("word cannot be empty: %w", ErrValidation)
	ErrEmptyGuess       = fmt.Errorf("guess cannot be empty: %w", ErrValidation)
	ErrInvalidVote      = fmt.Errorf("unrecognized vote: %w", ErrValidation)
	ErrInvalidConfig    = fmt.Errorf("invalid room config: %w", ErrValidation)
	ErrUnknownAction    = fmt.Errorf("unknown game action: %w", ErrValidation)
	ErrDuplicateWord    = fmt.Errorf("duplicate word: %w", ErrValidation)
)

// DuplicateWordError is returned when a submitted word clashes with another
// player's pending submission. The clashing submissions have already been
// purged from the room when this is returned.
type DuplicateWordError struct {
	Word    string
	Cleared []string // players whose pending word was purged
}

func (e *DuplicateWordError) Error() string {
	return fmt.Sprintf("duplicate word %q: all matching submissions have been cleared, please submit a different word", e.Word)
}

func (e *DuplicateWordError) Unwrap() error { return ErrDuplicateWord }

// Kind is the error category reported to callers.
type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindInvalidState Kind = "INVALID_STATE"
	KindValidation   Kind = "VALIDATION_FAILED"
	KindInternal     Kind = "INTERNAL"
)

// KindOf classifies err. Errors outside the domain taxonomy are internal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrValidation):
		return KindValidation
	default:
		return KindInternal
	}
}
