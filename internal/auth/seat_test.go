package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Douglas-Hynes/DuckChess/internal/chess"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewSeatIssuer([]byte("test-secret"), time.Hour)

	token, err := issuer.Issue("game-1", chess.Black)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."), "expected a compact JWS")

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "game-1", claims.GameID)
	assert.Equal(t, chess.Black, claims.Colour)
	assert.Equal(t, "game-1/black", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
}

func TestIssueRejectsNoColour(t *testing.T) {
	issuer := NewSeatIssuer([]byte("test-secret"), time.Hour)
	_, err := issuer.Issue("game-1", chess.NoColour)
	assert.Error(t, err)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	issuer := NewSeatIssuer([]byte("test-secret"), time.Hour)
	other := NewSeatIssuer([]byte("other-secret"), time.Hour)

	foreign, err := other.Issue("game-1", chess.White)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, SeatClaims{
		GameID:           "game-1",
		Colour:           chess.White,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: seatIssuer},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	wrongIssuer := jwt.NewWithClaims(jwt.SigningMethodHS256, SeatClaims{
		GameID:           "game-1",
		Colour:           chess.White,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
	})
	misissued, err := wrongIssuer.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"other secret", foreign},
		{"alg none", unsigned},
		{"wrong issuer", misissued},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.token)
			assert.True(t, errors.Is(err, ErrInvalidSeat), "got %v", err)
		})
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := NewSeatIssuer([]byte("test-secret"), time.Hour)
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return start }

	token, err := issuer.Issue("game-1", chess.White)
	require.NoError(t, err)

	issuer.now = func() time.Time { return start.Add(30 * time.Minute) }
	_, err = issuer.Verify(token)
	assert.NoError(t, err)

	issuer.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSeat)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	issuer := NewSeatIssuer([]byte("test-secret"), 0)
	token, err := issuer.Issue("game-1", chess.White)
	require.NoError(t, err)

	issuer.now = func() time.Time { return time.Now().Add(10 * 365 * 24 * time.Hour) }
	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestAuthorize(t *testing.T) {
	issuer := NewSeatIssuer([]byte("test-secret"), time.Hour)
	token, err := issuer.Issue("game-1", chess.White)
	require.NoError(t, err)

	assert.NoError(t, issuer.Authorize(token, "game-1", chess.White))
	assert.ErrorIs(t, issuer.Authorize(token, "game-1", chess.Black), ErrInvalidSeat)
	assert.ErrorIs(t, issuer.Authorize(token, "game-2", chess.White), ErrInvalidSeat)
}

func TestRandomSecret(t *testing.T) {
	a, err := RandomSecret()
	require.NoError(t, err)
	b, err := RandomSecret()
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
