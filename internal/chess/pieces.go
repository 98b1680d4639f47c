package chess

var (
	knightOffsets = []Square{15, 17, -15, -17, 10, 6, -10, -6}
	kingOffsets   = []Square{1, -1, 8, -8, 7, -7, 9, -9}

	promotionKinds = []Kind{Knight, Bishop, Rook, Queen}
)

// jumpMoves emits moves to each offset target that lies on the board
// within maxDist (squared) of sq and is empty or holds an enemy piece.
// The distance bound rejects offsets that wrap around a board edge.
func (b *Board) jumpMoves(sq Square, side Colour, offsets []Square, maxDist int) []Move {
	piece := b.squares[sq]
	var moves []Move
	for _, off := range offsets {
		to := sq + off
		if !to.Valid() || dist(sq, to) > maxDist {
			continue
		}
		target := b.squares[to]
		if target == NoPiece || target.CapturableBy(side) {
			moves = append(moves, NewMove(sq, to, piece, target))
		}
	}
	return moves
}

func (b *Board) knightMoves(sq Square, side Colour) []Move {
	return b.jumpMoves(sq, side, knightOffsets, 5)
}

type castleOption struct {
	side    Colour
	allowed func(CastleRights) bool
	king    Square
	rook    Square
	kingTo  Square
	rookTo  Square
	between []Square
}

var castleOptions = []castleOption{
	{White, func(cr CastleRights) bool { return cr.WhiteKingside }, whiteKingHome, whiteKingRookHome, 62, 61, []Square{61, 62}},
	{White, func(cr CastleRights) bool { return cr.WhiteQueenside }, whiteKingHome, whiteQueenRookHome, 58, 59, []Square{57, 58, 59}},
	{Black, func(cr CastleRights) bool { return cr.BlackKingside }, blackKingHome, blackKingRookHome, 6, 5, []Square{5, 6}},
	{Black, func(cr CastleRights) bool { return cr.BlackQueenside }, blackKingHome, blackQueenRookHome, 2, 3, []Square{1, 2, 3}},
}

// castleFor finds the castling option whose king lands on to.
func castleFor(side Colour, to Square) (castleOption, bool) {
	for _, opt := range castleOptions {
		if opt.side == side && opt.kingTo == to {
			return opt, true
		}
	}
	return castleOption{}, false
}

func (b *Board) kingMoves(sq Square, side Colour) []Move {
	moves := b.jumpMoves(sq, side, kingOffsets, 2)

	// No attacked-square test: there is no check in this variant.
	for _, opt := range castleOptions {
		if opt.side != side || sq != opt.king || !opt.allowed(b.castle) {
			continue
		}
		if b.squares[opt.rook] != MakePiece(side, Rook) {
			continue
		}
		empty := true
		for _, between := range opt.between {
			if b.squares[between] != NoPiece {
				empty = false
				break
			}
		}
		if empty {
			moves = append(moves, newCastle(sq, opt.kingTo, b.squares[sq]))
		}
	}
	return moves
}

func pawnStartRow(side Colour) int {
	if side == White {
		return 6
	}
	return 1
}

func promotionRow(side Colour) int {
	if side == White {
		return 0
	}
	return 7
}

func (b *Board) pawnMoves(sq Square, side Colour) []Move {
	pawn := b.squares[sq]
	dr := -int(side)
	row, col := sq.Row(), sq.Col()
	next := row + dr
	if next < 0 || next > 7 {
		return nil
	}
	promoting := next == promotionRow(side)

	emit := func(moves []Move, to Square, capture Piece) []Move {
		if !promoting {
			return append(moves, NewMove(sq, to, pawn, capture))
		}
		for _, k := range promotionKinds {
			moves = append(moves, newPromotion(sq, to, pawn, capture, k))
		}
		return moves
	}

	var moves []Move
	forward := Square(next*8 + col)
	if b.squares[forward] == NoPiece {
		moves = emit(moves, forward, NoPiece)
		if row == pawnStartRow(side) {
			double := Square((next+dr)*8 + col)
			if b.squares[double] == NoPiece {
				moves = append(moves, NewMove(sq, double, pawn, NoPiece))
			}
		}
	}

	captureCols := []int{-1, 1}
	if promoting && side == White {
		captureCols = []int{1, -1}
	}
	for _, dc := range captureCols {
		c := col + dc
		if c < 0 || c > 7 {
			continue
		}
		to := Square(next*8 + c)
		if target := b.squares[to]; target.CapturableBy(side) {
			moves = emit(moves, to, target)
		}
	}

	if !promoting && b.enPassant != NoSquare {
		ep := b.enPassant
		victim := MakePiece(side.Opposite(), Pawn)
		if ep.Row() == row && abs(ep.Col()-col) == 1 && b.squares[ep] == victim {
			landing := Square(next*8 + ep.Col())
			if b.squares[landing] == NoPiece {
				moves = append(moves, newEnPassant(sq, landing, pawn, victim))
			}
		}
	}
	return moves
}

// LegalDuckMoves lists every empty square. The duck's own square is not
// empty, so the duck always has to move.
func (b *Board) LegalDuckMoves() []Square {
	var out []Square
	for i, p := range b.squares {
		if p == NoPiece {
			out = append(out, Square(i))
		}
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
