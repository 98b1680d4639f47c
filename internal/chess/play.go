package chess

import "slices"

type generator func(b *Board, sq Square, side Colour) []Move

// generators is indexed by Kind. Empty and Duck have no entry.
var generators = [...]generator{
	Pawn:   (*Board).pawnMoves,
	Knight: (*Board).knightMoves,
	Bishop: (*Board).bishopMoves,
	Rook:   (*Board).rookMoves,
	Queen:  (*Board).queenMoves,
	King:   (*Board).kingMoves,
	Duck:   nil,
}

// GenerateLegalMoves returns every move for the side to move, stably
// sorted by Move.Compare. Every pseudo-legal move is legal here.
func (b *Board) GenerateLegalMoves() []Move {
	var moves []Move
	for i, p := range b.squares {
		if p.Colour() != b.toMove {
			continue
		}
		if gen := generators[p.Kind()]; gen != nil {
			moves = append(moves, gen(b, Square(i), b.toMove)...)
		}
	}
	slices.SortStableFunc(moves, Move.Compare)
	return moves
}

// ApplyMove plays m, which must come from GenerateLegalMoves on this
// board, and updates castling rights and the en-passant target.
func (b *Board) ApplyMove(m Move) {
	mustBeOnBoard(m.from)
	mustBeOnBoard(m.to)
	side := m.piece.Colour()

	switch {
	case m.castle:
		b.squares[m.to] = b.squares[m.from]
		b.squares[m.from] = NoPiece
		if opt, ok := castleFor(side, m.to); ok {
			b.squares[opt.rookTo] = b.squares[opt.rook]
			b.squares[opt.rook] = NoPiece
		}
	case m.IsPromotion():
		b.squares[m.to] = MakePiece(side, m.promotion)
		b.squares[m.from] = NoPiece
	case m.enPassant:
		b.squares[m.to] = b.squares[m.from]
		b.squares[m.from] = NoPiece
		if b.enPassant != NoSquare {
			b.squares[b.enPassant] = NoPiece
		}
	default:
		b.squares[m.to] = b.squares[m.from]
		b.squares[m.from] = NoPiece
	}

	b.updateCastleRights(m)

	if m.piece.Kind() == Pawn && abs(m.to.Row()-m.from.Row()) == 2 {
		b.enPassant = m.to
	} else {
		b.enPassant = NoSquare
	}
}

func (b *Board) updateCastleRights(m Move) {
	if m.piece.Kind() == King {
		b.revokeCastling(m.piece.Colour())
	}
	if m.capture.Kind() == King {
		b.revokeCastling(m.capture.Colour())
	}
	for _, sq := range [2]Square{m.from, m.to} {
		switch sq {
		case whiteKingRookHome:
			b.castle.WhiteKingside = false
		case whiteQueenRookHome:
			b.castle.WhiteQueenside = false
		case blackKingRookHome:
			b.castle.BlackKingside = false
		case blackQueenRookHome:
			b.castle.BlackQueenside = false
		}
	}
}

func (b *Board) revokeCastling(c Colour) {
	if c == White {
		b.castle.WhiteKingside = false
		b.castle.WhiteQueenside = false
	} else {
		b.castle.BlackKingside = false
		b.castle.BlackQueenside = false
	}
}

// ApplyDuck lifts the duck from wherever it stands and puts it on sq.
func (b *Board) ApplyDuck(sq Square) {
	mustBeOnBoard(sq)
	if old := b.DuckSquare(); old != NoSquare {
		b.squares[old] = NoPiece
	}
	b.squares[sq] = DuckPiece
}

// AdvanceTurn hands the move to the other side and records the position.
func (b *Board) AdvanceTurn() {
	b.toMove = b.toMove.Opposite()
	b.history = append(b.history, b.squares)
}

// Repetitions counts earlier occurrences of the current squares. The
// snapshot AdvanceTurn took of the current position is not one of them.
func (b *Board) Repetitions() int {
	past := b.history
	if last := len(past) - 1; last >= 0 && past[last] == b.squares {
		past = past[:last]
	}
	n := 0
	for _, h := range past {
		if h == b.squares {
			n++
		}
	}
	return n
}

// Result reports whether the game has ended. A missing king loses
// regardless of whose turn it is; a side with no moves loses; a position
// seen three times before, so four times in all, is drawn.
func (b *Board) Result() Result {
	if !b.hasPiece(MakePiece(White, King)) {
		return BlackWins
	}
	if !b.hasPiece(MakePiece(Black, King)) {
		return WhiteWins
	}
	if len(b.GenerateLegalMoves()) == 0 {
		return Winner(b.toMove.Opposite())
	}
	if b.Repetitions() >= 3 {
		return Draw
	}
	return InProgress
}
