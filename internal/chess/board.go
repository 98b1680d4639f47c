package chess

import (
	"fmt"
	"strings"
)

// CastleRights holds the four castling permissions. A right only ever
// goes from true to false during play.
type CastleRights struct {
	WhiteKingside  bool
	WhiteQueenside bool
	BlackKingside  bool
	BlackQueenside bool
}

// AllCastleRights is the start-of-game set.
var AllCastleRights = CastleRights{true, true, true, true}

func (cr CastleRights) String() string {
	var sb strings.Builder
	if cr.WhiteKingside {
		sb.WriteByte('K')
	}
	if cr.WhiteQueenside {
		sb.WriteByte('Q')
	}
	if cr.BlackKingside {
		sb.WriteByte('k')
	}
	if cr.BlackQueenside {
		sb.WriteByte('q')
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// Home squares used by castling.
const (
	blackQueenRookHome Square = 0
	blackKingHome      Square = 4
	blackKingRookHome  Square = 7
	whiteQueenRookHome Square = 56
	whiteKingHome      Square = 60
	whiteKingRookHome  Square = 63
)

var backRank = [8]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// StartPosition returns a fresh copy of the standard starting array.
func StartPosition() [64]Piece {
	var sq [64]Piece
	for col := 0; col < 8; col++ {
		sq[col] = MakePiece(Black, backRank[col])
		sq[8+col] = MakePiece(Black, Pawn)
		sq[48+col] = MakePiece(White, Pawn)
		sq[56+col] = MakePiece(White, backRank[col])
	}
	return sq
}

// Board is a mutable Duck Chess position. It is not safe for concurrent
// use; callers exploring several continuations should Clone it.
type Board struct {
	squares   [64]Piece
	castle    CastleRights
	enPassant Square
	toMove    Colour
	history   [][64]Piece
}

// NewBoard returns the standard starting position with white to move.
func NewBoard() *Board {
	return &Board{
		squares:   StartPosition(),
		castle:    AllCastleRights,
		enPassant: NoSquare,
		toMove:    White,
	}
}

// NewBoardFromPosition builds a board from explicit state, for tests and
// for resuming games. enPassant is the square of the pawn that has just
// advanced two rows, or NoSquare.
func NewBoardFromPosition(squares [64]Piece, rights CastleRights, enPassant Square, toMove Colour) (*Board, error) {
	ducks := 0
	for i, p := range squares {
		if !p.Valid() {
			return nil, fmt.Errorf("%w: piece code %d on %s", ErrInvalidPosition, p, Square(i))
		}
		if p == DuckPiece {
			ducks++
		}
	}
	if ducks > 1 {
		return nil, fmt.Errorf("%w: %d ducks", ErrInvalidPosition, ducks)
	}
	if toMove != White && toMove != Black {
		return nil, fmt.Errorf("%w: side to move %d", ErrInvalidPosition, toMove)
	}
	if enPassant != NoSquare && !enPassant.Valid() {
		return nil, fmt.Errorf("%w: en passant square %d", ErrInvalidPosition, enPassant)
	}
	return &Board{
		squares:   squares,
		castle:    rights,
		enPassant: enPassant,
		toMove:    toMove,
	}, nil
}

// Clone returns a deep copy, history included.
func (b *Board) Clone() *Board {
	c := *b
	c.history = make([][64]Piece, len(b.history))
	copy(c.history, b.history)
	return &c
}

func (b *Board) At(sq Square) Piece {
	mustBeOnBoard(sq)
	return b.squares[sq]
}

func (b *Board) Squares() [64]Piece { return b.squares }

func (b *Board) ToMove() Colour { return b.toMove }

func (b *Board) CastleRights() CastleRights { return b.castle }

// EnPassant returns the square of the pawn capturable en passant, or
// NoSquare.
func (b *Board) EnPassant() Square { return b.enPassant }

// Plies is the number of completed turns recorded in history.
func (b *Board) Plies() int { return len(b.history) }

// DuckSquare returns where the duck stands, or NoSquare before the first
// placement.
func (b *Board) DuckSquare() Square {
	for i, p := range b.squares {
		if p == DuckPiece {
			return Square(i)
		}
	}
	return NoSquare
}

func (b *Board) hasPiece(p Piece) bool {
	for _, q := range b.squares {
		if q == p {
			return true
		}
	}
	return false
}

// String draws the board from white's side, one rank per line.
func (b *Board) String() string {
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		sb.WriteByte(byte('8' - row))
		sb.WriteByte(' ')
		for col := 0; col < 8; col++ {
			p := b.squares[row*8+col]
			if p == NoPiece {
				sb.WriteByte('.')
			} else {
				sb.WriteByte(p.Letter())
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  abcdefgh\n")
	return sb.String()
}

func mustBeOnBoard(sq Square) {
	if !sq.Valid() {
		panic(fmt.Sprintf("chess: square %d out of range", sq))
	}
}
