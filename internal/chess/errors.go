package chess

import "errors"

// Sentinel errors; wrapped with context and checked with errors.Is.
var (
	ErrInvalidSquare   = errors.New("invalid square")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidFEN      = errors.New("invalid FEN")
	ErrIllegalMove     = errors.New("illegal move")
	ErrIllegalDuck     = errors.New("illegal duck placement")
	ErrWrongPhase      = errors.New("wrong phase")
	ErrGameOver        = errors.New("game over")
	ErrNothingToUndo   = errors.New("nothing to undo")
)
