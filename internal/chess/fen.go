package chess

import (
	"fmt"
	"strconv"
	"strings"

	notnil "github.com/notnil/chess"
)

// StartFEN is the starting position. No duck has been placed yet.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// duckMarker marks the duck in the placement field.
const duckMarker = '*'

// ParseFEN decodes a Duck Chess FEN. The placement field may hold one
// '*' for the duck; the half-move and full-move counters are optional.
func ParseFEN(fen string) (*Board, error) {
	fields := strings.Fields(fen)
	switch len(fields) {
	case 4:
		fields = append(fields, "0", "1")
	case 6:
	default:
		return nil, fmt.Errorf("%w: expected 4 or 6 fields, got %d", ErrInvalidFEN, len(fields))
	}

	placement, duck, err := stripDuck(fields[0])
	if err != nil {
		return nil, err
	}
	fields[0] = placement

	var pos notnil.Position
	if err := pos.UnmarshalText([]byte(strings.Join(fields, " "))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}

	var squares [64]Piece
	for sq, p := range pos.Board().SquareMap() {
		squares[fromNotnilSquare(sq)] = MakePiece(fromNotnilColor(p.Color()), fromNotnilType(p.Type()))
	}
	if duck != NoSquare {
		if squares[duck] != NoPiece {
			return nil, fmt.Errorf("%w: duck shares %s with a piece", ErrInvalidFEN, duck)
		}
		squares[duck] = DuckPiece
	}

	rights := pos.CastleRights()
	cr := CastleRights{
		WhiteKingside:  rights.CanCastle(notnil.White, notnil.KingSide),
		WhiteQueenside: rights.CanCastle(notnil.White, notnil.QueenSide),
		BlackKingside:  rights.CanCastle(notnil.Black, notnil.KingSide),
		BlackQueenside: rights.CanCastle(notnil.Black, notnil.QueenSide),
	}

	toMove := fromNotnilColor(pos.Turn())

	// FEN names the passed-over square; the board tracks the pawn itself,
	// one row further along the mover's direction.
	ep := NoSquare
	if s := pos.EnPassantSquare(); s != notnil.NoSquare {
		passed := fromNotnilSquare(s)
		ep = passed + Square(8*int(toMove))
		if !ep.Valid() {
			return nil, fmt.Errorf("%w: en passant square %s", ErrInvalidFEN, passed)
		}
	}

	b, err := NewBoardFromPosition(squares, cr, ep, toMove)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	return b, nil
}

// stripDuck removes the duck marker from a placement field, returning the
// orthodox placement and the duck's square.
func stripDuck(placement string) (string, Square, error) {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return "", NoSquare, fmt.Errorf("%w: expected 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	duck := NoSquare
	for row, rank := range ranks {
		col := 0
		var cells []byte
		for i := 0; i < len(rank); i++ {
			c := rank[i]
			switch {
			case c >= '1' && c <= '8':
				for n := 0; n < int(c-'0'); n++ {
					cells = append(cells, 0)
				}
				col += int(c - '0')
			case c == duckMarker:
				if duck != NoSquare {
					return "", NoSquare, fmt.Errorf("%w: more than one duck", ErrInvalidFEN)
				}
				duck = Square(row*8 + col)
				cells = append(cells, 0)
				col++
			default:
				cells = append(cells, c)
				col++
			}
		}
		if col != 8 {
			return "", NoSquare, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, 8-row, col)
		}
		ranks[row] = compressRank(cells)
	}
	return strings.Join(ranks, "/"), duck, nil
}

// compressRank writes one rank of cells (0 for empty) in FEN form.
func compressRank(cells []byte) string {
	var sb strings.Builder
	run := 0
	for _, c := range cells {
		if c == 0 {
			run++
			continue
		}
		if run > 0 {
			sb.WriteString(strconv.Itoa(run))
			run = 0
		}
		sb.WriteByte(c)
	}
	if run > 0 {
		sb.WriteString(strconv.Itoa(run))
	}
	return sb.String()
}

// FEN encodes the board. The half-move clock is not tracked and is
// always 0; the full-move number is derived from the recorded plies.
func (b *Board) FEN() string {
	ranks := make([]string, 8)
	for row := 0; row < 8; row++ {
		cells := make([]byte, 8)
		for col := 0; col < 8; col++ {
			if p := b.squares[row*8+col]; p != NoPiece {
				cells[col] = p.Letter()
			}
		}
		ranks[row] = compressRank(cells)
	}

	turn := "w"
	if b.toMove == Black {
		turn = "b"
	}

	ep := "-"
	if b.enPassant != NoSquare {
		pawn := b.squares[b.enPassant]
		ep = (b.enPassant + Square(8*int(pawn.Colour()))).String()
	}

	fullMove := b.Plies()/2 + 1
	return fmt.Sprintf("%s %s %s %s 0 %d", strings.Join(ranks, "/"), turn, b.castle, ep, fullMove)
}

func fromNotnilSquare(sq notnil.Square) Square {
	return Square((7-int(sq.Rank()))*8 + int(sq.File()))
}

func fromNotnilColor(c notnil.Color) Colour {
	if c == notnil.Black {
		return Black
	}
	return White
}

func fromNotnilType(t notnil.PieceType) Kind {
	switch t {
	case notnil.Pawn:
		return Pawn
	case notnil.Knight:
		return Knight
	case notnil.Bishop:
		return Bishop
	case notnil.Rook:
		return Rook
	case notnil.Queen:
		return Queen
	case notnil.King:
		return King
	}
	return Empty
}
