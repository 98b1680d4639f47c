package chess

import (
	"fmt"
	"sync"
	"time"
)

// TimeControl represents the time control settings for a game
type TimeControl struct {
	Type        string `json:"type"`        // "correspondence" or "none"
	DaysPerMove int    `json:"daysPerMove"` // For correspondence games
}

// Correspondence returns a correspondence time control, or nil when
// days is not positive.
func Correspondence(days int) *TimeControl {
	if days <= 0 {
		return nil
	}
	return &TimeControl{Type: "correspondence", DaysPerMove: days}
}

func (tc TimeControl) perMove() time.Duration {
	return time.Duration(tc.DaysPerMove) * 24 * time.Hour
}

func (tc TimeControl) enforced() bool {
	return tc.Type == "correspondence" && tc.DaysPerMove > 0
}

// TimeViolation represents a time control violation
type TimeViolation struct {
	Colour        Colour    `json:"colour"`
	GameID        string    `json:"gameId"`
	LastMoveAt    time.Time `json:"lastMoveAt"`
	DeadlineAt    time.Time `json:"deadlineAt"`
	ViolationType string    `json:"violationType"` // "timeout", "abandoned"
}

// TimeControlService tracks, per game, when each side's clock started.
// It is safe for concurrent use.
type TimeControlService struct {
	mu               sync.RWMutex
	gameTimeControls map[string]TimeControl
	clockStarts      map[string]map[Colour]time.Time // gameID -> colour -> when that side's clock started
}

// NewTimeControlService creates a new time control service
func NewTimeControlService() *TimeControlService {
	return &TimeControlService{
		gameTimeControls: make(map[string]TimeControl),
		clockStarts:      make(map[string]map[Colour]time.Time),
	}
}

// SetGameTimeControl registers a game; white's clock starts at start.
func (s *TimeControlService) SetGameTimeControl(gameID string, tc TimeControl, start time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameTimeControls[gameID] = tc
	s.clockStarts[gameID] = map[Colour]time.Time{White: start}
}

// RecordMove records that mover completed a turn at moveTime, which
// starts the opponent's clock.
func (s *TimeControlService) RecordMove(gameID string, mover Colour, moveTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clockStarts[gameID] == nil {
		s.clockStarts[gameID] = make(map[Colour]time.Time)
	}
	s.clockStarts[gameID][mover.Opposite()] = moveTime
}

// RemoveGame forgets a finished game.
func (s *TimeControlService) RemoveGame(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.gameTimeControls, gameID)
	delete(s.clockStarts, gameID)
}

// CheckTimeViolation reports whether toMove has let its deadline pass.
// A nil violation with a nil error means no violation.
func (s *TimeControlService) CheckTimeViolation(gameID string, toMove Colour, currentTime time.Time) (*TimeViolation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tc, ok := s.gameTimeControls[gameID]
	if !ok {
		return nil, fmt.Errorf("no time control set for game %s", gameID)
	}
	if !tc.enforced() {
		return nil, nil
	}

	started, ok := s.clockStarts[gameID][toMove]
	if !ok {
		return nil, nil
	}

	deadline := started.Add(tc.perMove())
	if currentTime.After(deadline) {
		return &TimeViolation{
			Colour:        toMove,
			GameID:        gameID,
			LastMoveAt:    started,
			DeadlineAt:    deadline,
			ViolationType: "timeout",
		}, nil
	}
	return nil, nil
}

// GetTimeRemaining returns the time toMove has left for its turn.
func (s *TimeControlService) GetTimeRemaining(gameID string, toMove Colour, currentTime time.Time) (time.Duration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tc, ok := s.gameTimeControls[gameID]
	if !ok {
		return 0, fmt.Errorf("no time control set for game %s", gameID)
	}
	if !tc.enforced() {
		return 0, fmt.Errorf("time control not applicable for game type %s", tc.Type)
	}

	started, ok := s.clockStarts[gameID][toMove]
	if !ok {
		return tc.perMove(), nil
	}

	remaining := started.Add(tc.perMove()).Sub(currentTime)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// CheckAbandonment reports a game in which the running clock has been
// idle for three times the per-move allowance.
func (s *TimeControlService) CheckAbandonment(gameID string, currentTime time.Time) (*TimeViolation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tc, ok := s.gameTimeControls[gameID]
	if !ok {
		return nil, fmt.Errorf("no time control set for game %s", gameID)
	}
	if !tc.enforced() {
		return nil, nil
	}

	var latest time.Time
	idle := NoColour
	for c, started := range s.clockStarts[gameID] {
		if started.After(latest) {
			latest = started
			idle = c
		}
	}
	if latest.IsZero() {
		return nil, nil
	}

	threshold := 3 * tc.perMove()
	if currentTime.Sub(latest) > threshold {
		return &TimeViolation{
			Colour:        idle,
			GameID:        gameID,
			LastMoveAt:    latest,
			DeadlineAt:    latest.Add(threshold),
			ViolationType: "abandoned",
		}, nil
	}
	return nil, nil
}

// FormatTimeRemaining formats time remaining in a human-readable way
func FormatTimeRemaining(remaining time.Duration) string {
	if remaining <= 0 {
		return "Time expired"
	}

	days := int(remaining.Hours() / 24)
	hours := int(remaining.Hours()) % 24
	minutes := int(remaining.Minutes()) % 60

	if days > 0 {
		if hours > 0 {
			return fmt.Sprintf("%d days, %d hours", days, hours)
		}
		return fmt.Sprintf("%d days", days)
	}

	if hours > 0 {
		if minutes > 0 {
			return fmt.Sprintf("%d hours, %d minutes", hours, minutes)
		}
		return fmt.Sprintf("%d hours", hours)
	}

	return fmt.Sprintf("%d minutes", minutes)
}
