package chess

// direction is a one-step displacement in rows and columns. "Up" is
// toward black's back rank (decreasing index).
type direction struct {
	dr, dc int
}

var (
	up        = direction{-1, 0}
	down      = direction{1, 0}
	left      = direction{0, -1}
	right     = direction{0, 1}
	upRight   = direction{-1, 1}
	upLeft    = direction{-1, -1}
	downRight = direction{1, 1}
	downLeft  = direction{1, -1}
)

var (
	diagonals  = []direction{upRight, upLeft, downRight, downLeft}
	orthogonal = []direction{up, down, right, left}
	allRays    = []direction{upRight, upLeft, downRight, downLeft, up, down, right, left}
)

func onBoard(row, col int) bool {
	return row >= 0 && row < 8 && col >= 0 && col < 8
}

// scan walks from sq in direction d for a piece of colour side. Empty
// squares are collected and the walk continues; an enemy piece is
// collected and ends the walk; the duck, an own piece or the edge end it
// without being collected.
func (b *Board) scan(sq Square, d direction, side Colour) []Square {
	var out []Square
	row, col := sq.Row()+d.dr, sq.Col()+d.dc
	for onBoard(row, col) {
		to := Square(row*8 + col)
		p := b.squares[to]
		if p == NoPiece {
			out = append(out, to)
			row += d.dr
			col += d.dc
			continue
		}
		if p.CapturableBy(side) {
			out = append(out, to)
		}
		break
	}
	return out
}

// slide builds moves for a sliding piece on sq along each ray in dirs.
func (b *Board) slide(sq Square, side Colour, dirs []direction) []Move {
	piece := b.squares[sq]
	var moves []Move
	for _, d := range dirs {
		for _, to := range b.scan(sq, d, side) {
			moves = append(moves, NewMove(sq, to, piece, b.squares[to]))
		}
	}
	return moves
}

func (b *Board) bishopMoves(sq Square, side Colour) []Move {
	return b.slide(sq, side, diagonals)
}

func (b *Board) rookMoves(sq Square, side Colour) []Move {
	return b.slide(sq, side, orthogonal)
}

func (b *Board) queenMoves(sq Square, side Colour) []Move {
	return b.slide(sq, side, allRays)
}
