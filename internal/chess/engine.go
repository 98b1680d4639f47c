package chess

import (
	"fmt"
	"strings"
)

// Phase says which half of a turn the engine expects next.
type Phase string

const (
	PhaseMove Phase = "move"
	PhaseDuck Phase = "duck"
)

// ply is one entry of the engine's command log: the move played, the
// duck placement that completed it, and the board as it was before.
type ply struct {
	move   Move
	duck   Square
	before *Board
}

// Engine runs a single game on top of a Board: it parses algebraic
// input, checks it against the generated moves, enforces the
// move-then-duck order and keeps a log so the last ply can be undone.
type Engine struct {
	board    *Board
	phase    Phase
	log      []ply
	resigned Result
}

func NewEngine() *Engine {
	return &Engine{
		board: NewBoard(),
		phase: PhaseMove,
	}
}

func NewEngineFromFEN(fen string) (*Engine, error) {
	board, err := ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return &Engine{
		board: board,
		phase: PhaseMove,
	}, nil
}

// Board returns a copy of the current position.
func (e *Engine) Board() *Board { return e.board.Clone() }

func (e *Engine) Phase() Phase { return e.phase }

// MakeMove plays the piece half of a turn. promotion is one of "n", "b",
// "r", "q" and is required exactly when a pawn reaches the last rank.
func (e *Engine) MakeMove(from, to, promotion string) (*MoveResult, error) {
	if e.GetStatus() != StatusActive {
		return nil, ErrGameOver
	}
	if e.phase != PhaseMove {
		return nil, fmt.Errorf("%w: a duck must be placed first", ErrWrongPhase)
	}
	fromSquare, err := ParseSquare(from)
	if err != nil {
		return nil, err
	}
	toSquare, err := ParseSquare(to)
	if err != nil {
		return nil, err
	}
	promo, err := ParsePromotion(promotion)
	if err != nil {
		return nil, err
	}

	var move Move
	found := false
	for _, m := range e.board.GenerateLegalMoves() {
		if m.From() == fromSquare && m.To() == toSquare && m.Promotion() == promo {
			move, found = m, true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s to %s", ErrIllegalMove, from, to)
	}

	e.log = append(e.log, ply{move: move, duck: NoSquare, before: e.board.Clone()})
	e.board.ApplyMove(move)

	// A captured king ends the game before any duck is placed.
	if result := e.board.Result(); result == WhiteWins || result == BlackWins {
		return e.result(move, NoSquare), nil
	}
	e.phase = PhaseDuck
	return e.result(move, NoSquare), nil
}

// PlaceDuck completes the turn by putting the duck on an empty square.
func (e *Engine) PlaceDuck(square string) (*MoveResult, error) {
	if e.GetStatus() != StatusActive {
		return nil, ErrGameOver
	}
	if e.phase != PhaseDuck {
		return nil, fmt.Errorf("%w: a piece must be moved first", ErrWrongPhase)
	}
	sq, err := ParseSquare(square)
	if err != nil {
		return nil, err
	}
	if e.board.At(sq) != NoPiece {
		return nil, fmt.Errorf("%w: %s is occupied", ErrIllegalDuck, square)
	}

	e.board.ApplyDuck(sq)
	e.board.AdvanceTurn()
	e.phase = PhaseMove

	last := &e.log[len(e.log)-1]
	last.duck = sq
	return e.result(last.move, sq), nil
}

// Play makes both halves of a turn. If the duck placement fails the
// piece move is taken back.
func (e *Engine) Play(from, to, promotion, duck string) (*MoveResult, error) {
	res, err := e.MakeMove(from, to, promotion)
	if err != nil {
		return nil, err
	}
	if res.GameOver {
		return res, nil
	}
	res, err = e.PlaceDuck(duck)
	if err != nil {
		_ = e.Undo()
		return nil, err
	}
	return res, nil
}

// Undo takes back the last logged entry: a complete turn, or a piece
// move still waiting for its duck. A resignation is also withdrawn.
func (e *Engine) Undo() error {
	if len(e.log) == 0 {
		return ErrNothingToUndo
	}
	last := e.log[len(e.log)-1]
	e.log = e.log[:len(e.log)-1]
	e.board = last.before
	e.phase = PhaseMove
	e.resigned = InProgress
	return nil
}

// Resign ends the game in favour of c's opponent.
func (e *Engine) Resign(c Colour) error {
	if e.GetStatus() != StatusActive {
		return ErrGameOver
	}
	e.resigned = Winner(c.Opposite())
	return nil
}

// LastMover is the colour that made the most recent logged move, or
// NoColour when nothing has been played.
func (e *Engine) LastMover() Colour {
	if len(e.log) == 0 {
		return NoColour
	}
	return e.log[len(e.log)-1].move.Piece().Colour()
}

func (e *Engine) result(m Move, duck Square) *MoveResult {
	status := e.GetStatus()
	res := &MoveResult{
		Move:     m.String(),
		From:     m.From().String(),
		To:       m.To().String(),
		FEN:      e.board.FEN(),
		Phase:    e.phase,
		Status:   status,
		GameOver: status != StatusActive,
	}
	if duck != NoSquare {
		res.Duck = duck.String()
	}
	if m.IsCapture() {
		res.Capture = m.Capture().Kind().String()
	}
	if res.GameOver {
		res.Result = e.outcome().String()
	}
	return res
}

func (e *Engine) outcome() Result {
	if e.resigned != InProgress {
		return e.resigned
	}
	if e.phase == PhaseDuck {
		// Mid-turn only a king capture can have ended the game.
		if r := e.board.Result(); r == WhiteWins || r == BlackWins {
			return r
		}
		return InProgress
	}
	return e.board.Result()
}

func (e *Engine) GetStatus() GameStatus {
	return e.outcome().Status()
}

func (e *Engine) GetFEN() string {
	return e.board.FEN()
}

func (e *Engine) GetActiveColor() string {
	return e.board.ToMove().String()
}

// LegalMoves lists the piece moves available now; empty while a duck is
// owed or after the game has ended.
func (e *Engine) LegalMoves() []Move {
	if e.phase != PhaseMove || e.GetStatus() != StatusActive {
		return nil
	}
	return e.board.GenerateLegalMoves()
}

// LegalDuckSquares lists duck destinations; empty unless a duck is owed.
func (e *Engine) LegalDuckSquares() []Square {
	if e.phase != PhaseDuck || e.GetStatus() != StatusActive {
		return nil
	}
	return e.board.LegalDuckMoves()
}

// Moves renders the log, one entry per turn, e.g. "e2e4@e6".
func (e *Engine) Moves() []string {
	out := make([]string, 0, len(e.log))
	for _, p := range e.log {
		s := p.move.String()
		if p.duck != NoSquare {
			s += "@" + p.duck.String()
		}
		out = append(out, s)
	}
	return out
}

func (e *Engine) GetPieceValues() map[string]int {
	values := make(map[string]int, len(StandardPieceValues))
	for k, v := range StandardPieceValues {
		values[k] = v
	}
	return values
}

func (e *Engine) GetMaterialCount() MaterialCount {
	var count MaterialCount
	for _, p := range e.board.Squares() {
		v := StandardPieceValues[p.Kind().String()]
		switch p.Colour() {
		case White:
			count.White += v
		case Black:
			count.Black += v
		}
	}
	return count
}

// GetMaterialBalance is white's material minus black's.
func (e *Engine) GetMaterialBalance() int {
	c := e.GetMaterialCount()
	return c.White - c.Black
}

// ParsePromotion maps "n", "b", "r", "q" (any case) to a Kind; the empty
// string means no promotion.
func ParsePromotion(p string) (Kind, error) {
	switch strings.ToLower(p) {
	case "":
		return Empty, nil
	case "n":
		return Knight, nil
	case "b":
		return Bishop, nil
	case "r":
		return Rook, nil
	case "q":
		return Queen, nil
	default:
		return Empty, fmt.Errorf("%w: unknown promotion %q", ErrIllegalMove, p)
	}
}
