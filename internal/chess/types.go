package chess

import "fmt"

// Square indexes the board row-major from a8 (0) to h1 (63).
type Square int8

const NoSquare Square = -1

// ParseSquare converts algebraic notation ("e4") to a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	file := int(s[0]) - 'a'
	rank := int(s[1]) - '1'
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return Square((7-rank)*8 + file), nil
}

func (sq Square) Valid() bool { return sq >= 0 && sq < 64 }

func (sq Square) Row() int { return int(sq) / 8 }

func (sq Square) Col() int { return int(sq) % 8 }

func (sq Square) String() string {
	if !sq.Valid() {
		return "-"
	}
	return string([]byte{"abcdefgh"[sq.Col()], byte('0' + 8 - sq.Row())})
}

// dist is the squared euclidean distance between two squares.
func dist(a, b Square) int {
	dc := a.Col() - b.Col()
	dr := a.Row() - b.Row()
	return dc*dc + dr*dr
}

// Colour is +1 for white and -1 for black so that pawn direction and
// piece codes can be derived by multiplication.
type Colour int8

const (
	Black    Colour = -1
	NoColour Colour = 0
	White    Colour = 1
)

func (c Colour) Opposite() Colour { return -c }

func (c Colour) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

func (c Colour) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Colour) UnmarshalText(text []byte) error {
	switch string(text) {
	case "white":
		*c = White
	case "black":
		*c = Black
	case "none":
		*c = NoColour
	default:
		return fmt.Errorf("unknown colour %q", text)
	}
	return nil
}

// Kind is a piece type without colour.
type Kind int8

const (
	Empty Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
	Duck
)

var kindNames = [...]string{"empty", "pawn", "knight", "bishop", "rook", "queen", "king", "duck"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Letter is the lowercase FEN letter for the kind.
func (k Kind) Letter() byte {
	return " pnbrqk*"[k]
}

// Piece is the signed code stored on a square: magnitude is the Kind,
// sign is the colour. The duck is always +7.
type Piece int8

const (
	NoPiece   Piece = 0
	DuckPiece Piece = Piece(Duck)
)

// MakePiece builds the square code for a coloured piece.
func MakePiece(c Colour, k Kind) Piece {
	if k == Duck {
		return DuckPiece
	}
	return Piece(int8(k) * int8(c))
}

func (p Piece) Kind() Kind {
	if p < 0 {
		return Kind(-p)
	}
	return Kind(p)
}

func (p Piece) Colour() Colour {
	switch {
	case p == NoPiece || p == DuckPiece:
		return NoColour
	case p > 0:
		return White
	default:
		return Black
	}
}

func (p Piece) Valid() bool { return p >= -6 && p <= 7 }

// CapturableBy reports whether a piece of colour c may capture p.
// The duck never qualifies.
func (p Piece) CapturableBy(c Colour) bool {
	return p != NoPiece && p != DuckPiece && p.Colour() == c.Opposite()
}

// Letter is the FEN letter: uppercase white, lowercase black, '*' duck.
func (p Piece) Letter() byte {
	l := p.Kind().Letter()
	if p.Colour() == White {
		return l - 'a' + 'A'
	}
	return l
}

// Result is the outcome reported by Board.Result.
type Result int

const (
	InProgress Result = iota
	WhiteWins
	BlackWins
	Draw
)

func (r Result) String() string {
	switch r {
	case WhiteWins:
		return "white wins"
	case BlackWins:
		return "black wins"
	case Draw:
		return "draw"
	default:
		return "game continues"
	}
}

// Winner returns the result in which c wins.
func Winner(c Colour) Result {
	if c == White {
		return WhiteWins
	}
	return BlackWins
}

type GameStatus string

const (
	StatusActive   GameStatus = "active"
	StatusDraw     GameStatus = "draw"
	StatusWhiteWon GameStatus = "white_won"
	StatusBlackWon GameStatus = "black_won"
)

// Status maps a board result to the game status string.
func (r Result) Status() GameStatus {
	switch r {
	case WhiteWins:
		return StatusWhiteWon
	case BlackWins:
		return StatusBlackWon
	case Draw:
		return StatusDraw
	default:
		return StatusActive
	}
}

type MoveResult struct {
	Move     string     `json:"move"`
	From     string     `json:"from"`
	To       string     `json:"to"`
	Duck     string     `json:"duck,omitempty"`
	Capture  string     `json:"capture,omitempty"`
	FEN      string     `json:"fen"`
	Phase    Phase      `json:"phase"`
	Status   GameStatus `json:"status"`
	GameOver bool       `json:"gameOver"`
	Result   string     `json:"result"`
}

// MaterialCount represents the material count for both sides
type MaterialCount struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// StandardPieceValues maps piece names to their material values.
var StandardPieceValues = map[string]int{
	"pawn":   1,
	"knight": 3,
	"bishop": 3,
	"rook":   5,
	"queen":  9,
	"king":   0,
}
