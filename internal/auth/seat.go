package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/John-Douglas-Hynes/DuckChess/internal/chess"
)

// ErrInvalidSeat is returned for any token that does not verify.
var ErrInvalidSeat = errors.New("invalid seat token")

const seatIssuer = "duckchess"

// SeatClaims bind a bearer to one colour in one game.
type SeatClaims struct {
	GameID string       `json:"gid"`
	Colour chess.Colour `json:"col"`
	jwt.RegisteredClaims
}

// SeatIssuer signs and verifies seat tokens with a shared HMAC secret.
type SeatIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSeatIssuer creates an issuer. A zero ttl issues tokens that never
// expire.
func NewSeatIssuer(secret []byte, ttl time.Duration) *SeatIssuer {
	return &SeatIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// RandomSecret returns 32 random bytes for use when no secret is
// configured. Tokens signed with it do not survive a restart.
func RandomSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}
	return b, nil
}

// Issue returns a signed token for colour's seat in gameID.
func (s *SeatIssuer) Issue(gameID string, colour chess.Colour) (string, error) {
	if colour != chess.White && colour != chess.Black {
		return "", fmt.Errorf("cannot issue a seat for colour %s", colour)
	}
	now := s.now()
	claims := SeatClaims{
		GameID: gameID,
		Colour: colour,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   seatIssuer,
			Subject:  gameID + "/" + colour.String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign seat token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, algorithm, issuer and expiry of token.
func (s *SeatIssuer) Verify(token string) (*SeatClaims, error) {
	var claims SeatClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(seatIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeat, err)
	}
	if claims.GameID == "" || (claims.Colour != chess.White && claims.Colour != chess.Black) {
		return nil, fmt.Errorf("%w: missing seat", ErrInvalidSeat)
	}
	return &claims, nil
}

// Authorize verifies token and checks that it seats colour in gameID.
func (s *SeatIssuer) Authorize(token, gameID string, colour chess.Colour) error {
	claims, err := s.Verify(token)
	if err != nil {
		return err
	}
	if claims.GameID != gameID {
		return fmt.Errorf("%w: token is for another game", ErrInvalidSeat)
	}
	if claims.Colour != colour {
		return fmt.Errorf("%w: token seats %s, not %s", ErrInvalidSeat, claims.Colour, colour)
	}
	return nil
}
