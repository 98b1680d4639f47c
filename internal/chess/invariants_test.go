package chess

import (
	"encoding/json"
	"testing"
)

// TestMoveResultJSONSerializationAlwaysIncludesRequiredFields ensures that
// MoveResult structs always serialize to JSON with the expected field names
func TestMoveResultJSONSerializationAlwaysIncludesRequiredFields(t *testing.T) {
	moveResult := &MoveResult{
		Move:     "e2e4",
		From:     "e2",
		To:       "e4",
		Duck:     "e5",
		FEN:      "rnbqkbnr/pppppppp/8/4*3/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		Phase:    PhaseMove,
		Status:   StatusActive,
		GameOver: false,
		Result:   "",
	}

	jsonData, err := json.Marshal(moveResult)
	if err != nil {
		t.Fatalf("Failed to marshal MoveResult: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(jsonData, &parsed); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	expectedFields := []string{"move", "from", "to", "duck", "fen", "phase", "status", "gameOver", "result"}
	for _, field := range expectedFields {
		if _, exists := parsed[field]; !exists {
			t.Errorf("Missing field in JSON: %s", field)
		}
	}
	if _, exists := parsed["capture"]; exists {
		t.Error("Expected capture to be omitted for a quiet move")
	}

	if parsed["duck"] != "e5" {
		t.Errorf("Expected duck=e5, got %v", parsed["duck"])
	}
	if parsed["phase"] != "move" {
		t.Errorf("Expected phase=move, got %v", parsed["phase"])
	}
	if parsed["fen"] != moveResult.FEN {
		t.Errorf("Expected fen=%s, got %v", moveResult.FEN, parsed["fen"])
	}
}

// TestFENValidationRejectsInvalidInput ensures that the engine
// properly validates FEN strings and rejects invalid input
func TestFENValidationRejectsInvalidInput(t *testing.T) {
	testCases := []struct {
		name     string
		fen      string
		expected bool // whether it should be valid
	}{
		{
			name:     "Empty FEN should be rejected",
			fen:      "",
			expected: false,
		},
		{
			name:     "Valid starting position should be accepted",
			fen:      StartFEN,
			expected: true,
		},
		{
			name:     "FEN with too few sections should be rejected",
			fen:      "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq",
			expected: false,
		},
		{
			name:     "Valid mid-game position should be accepted",
			fen:      "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
			expected: true,
		},
		{
			name:     "Position with a duck should be accepted",
			fen:      "rnbqkbnr/pppppppp/8/4*3/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
			expected: true,
		},
		{
			name:     "Two ducks should be rejected",
			fen:      "rnbqkbnr/pppppppp/8/4**2/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
			expected: false,
		},
		{
			name:     "Invalid board configuration should be rejected",
			fen:      "invalid/board/config/here w KQkq - 0 1",
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEngineFromFEN(tc.fen)

			if tc.expected && err != nil {
				t.Errorf("Expected valid FEN, got error: %v", err)
			}
			if !tc.expected && err == nil {
				t.Errorf("Expected invalid FEN to return error, got nil")
			}
		})
	}
}

// TestMoveValidationEnforcesRules ensures that the engine only accepts
// generated moves. Each case starts from a fresh game.
func TestMoveValidationEnforcesRules(t *testing.T) {
	testCases := []struct {
		name     string
		from     string
		to       string
		expected bool // whether move should be valid
	}{
		{
			name:     "Valid pawn move should be accepted",
			from:     "e2",
			to:       "e4",
			expected: true,
		},
		{
			name:     "Invalid pawn move should be rejected",
			from:     "e2",
			to:       "e5",
			expected: false,
		},
		{
			name:     "Valid knight move should be accepted",
			from:     "g1",
			to:       "f3",
			expected: true,
		},
		{
			name:     "Invalid knight move should be rejected",
			from:     "g1",
			to:       "e2",
			expected: false,
		},
		{
			name:     "Move to occupied square by same color should be rejected",
			from:     "e2",
			to:       "d1",
			expected: false,
		},
		{
			name:     "Moving from an empty square should be rejected",
			from:     "e4",
			to:       "e5",
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			engine := NewEngine()
			_, err := engine.MakeMove(tc.from, tc.to, "")

			if tc.expected && err != nil {
				t.Errorf("Expected valid move, got error: %v", err)
			}
			if !tc.expected && err == nil {
				t.Errorf("Expected invalid move to return error, got nil")
			}
		})
	}
}

// TestGeneratedMovesNeverTouchTheDuck walks a short fixed game and checks
// after each turn that no generated move ends on the duck.
func TestGeneratedMovesNeverTouchTheDuck(t *testing.T) {
	engine := NewEngine()
	turns := []string{"e2e4@e6", "d7d5@e3", "g1f3@d4", "b8c6@d3"}
	for _, turn := range turns {
		if _, err := engine.Play(turn[0:2], turn[2:4], "", turn[5:7]); err != nil {
			t.Fatalf("Play %s: %v", turn, err)
		}
		duck := engine.Board().DuckSquare()
		for _, m := range engine.LegalMoves() {
			if m.To() == duck {
				t.Errorf("after %s: %s lands on the duck", turn, m)
			}
		}
	}
}
