package chess

// Move is one piece relocation. It is a value with no reference to the
// board that generated it.
type Move struct {
	from      Square
	to        Square
	piece     Piece
	capture   Piece
	enPassant bool
	castle    bool
	promotion Kind
}

// NewMove builds an ordinary move or capture. capture is NoPiece for a
// quiet move.
func NewMove(from, to Square, piece, capture Piece) Move {
	return Move{from: from, to: to, piece: piece, capture: capture}
}

func newCastle(from, to Square, king Piece) Move {
	return Move{from: from, to: to, piece: king, castle: true}
}

func newEnPassant(from, to Square, pawn, captured Piece) Move {
	return Move{from: from, to: to, piece: pawn, capture: captured, enPassant: true}
}

func newPromotion(from, to Square, pawn, capture Piece, k Kind) Move {
	return Move{from: from, to: to, piece: pawn, capture: capture, promotion: k}
}

func (m Move) From() Square { return m.from }
func (m Move) To() Square { return m.to }
func (m Move) Piece() Piece { return m.piece }
func (m Move) Capture() Piece { return m.capture }
func (m Move) IsEnPassant() bool { return m.enPassant }
func (m Move) IsCastle() bool { return m.castle }
func (m Move) Promotion() Kind { return m.promotion }
func (m Move) IsPromotion() bool { return m.promotion != Empty }
func (m Move) IsCapture() bool { return m.capture != NoPiece }

// String renders the move as start and end squares plus a suffix for
// promotions, castling and en passant.
func (m Move) String() string {
	s := m.from.String() + m.to.String()
	switch {
	case m.IsPromotion():
		return s + string(m.promotion.Letter())
	case m.castle:
		return s + " (castles)"
	case m.enPassant:
		return s + " (en passent)"
	}
	return s
}

func (m Move) orderKey() int {
	return int(m.capture.Kind()) - int(m.piece.Kind())
}

// Compare orders moves ascending by captured kind minus moving kind.
// It fixes generation order only; it is not a strength heuristic.
func (m Move) Compare(o Move) int {
	a, b := m.orderKey(), o.orderKey()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
