package game

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindPhase         ErrorKind = "phase"
	KindTurn          ErrorKind = "turn"
	KindAuthorization ErrorKind = "authorization"
	KindCapacity      ErrorKind = "capacity"
	KindNotFound      ErrorKind = "not_found"
	KindInternal      ErrorKind = "internal"
)

// Error is the failure half of every command result.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

var (
	ErrBetTooSmall      = newError(KindValidation, "minimum bet is 10 chips")
	ErrDuplicateBet     = newError(KindValidation, "bet already placed")
	ErrInvalidVote      = newError(KindValidation, "vote must be continue or leave")
	ErrInvalidTableName = newError(KindValidation, "table name must be at least 2 characters")
	ErrStartChipsTooLow = newError(KindValidation, "tables start with at least 10 chips")
	ErrTableNameTaken   = newError(KindValidation, "a table with this name already exists")
	ErrAlreadySeated    = newError(KindValidation, "already seated at this table")
	ErrAlreadyVoted     = newError(KindValidation, "vote already cast")
	ErrUnknownCommand   = newError(KindValidation, "unknown command")

	ErrNotBetting     = newError(KindPhase, "round is not taking bets")
	ErrNoVote         = newError(KindPhase, "no continue vote is open")
	ErrGameInProgress = newError(KindPhase, "game already started")
	ErrAlreadyBusted  = newError(KindPhase, "hand is busted, cannot draw")

	ErrNotYourTurn = newError(KindTurn, "not your turn")

	ErrNotCreator    = newError(KindAuthorization, "only the table creator can do this")
	ErrWrongPassword = newError(KindAuthorization, "wrong table password")

	ErrTableFull         = newError(KindCapacity, "table is full")
	ErrInsufficientChips = newError(KindCapacity, "insufficient chips")
	ErrTooFewPlayers     = newError(KindCapacity, "at least 2 players are needed")

	ErrTableNotFound = newError(KindNotFound, "table not found")
	ErrNotSeated     = newError(KindNotFound, "not seated at this table")
	ErrNoSession     = newError(KindNotFound, "no game running at this table")
	ErrNoAccount     = newError(KindNotFound, "account not found")
)

// KindOf classifies any error returned by the service.
func KindOf(err error) ErrorKind {
	var gameErr *Error
	if errors.As(err, &gameErr) {
		return gameErr.Kind
	}
	return KindInternal
}
