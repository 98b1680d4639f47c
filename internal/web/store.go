package web

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/John-Douglas-Hynes/DuckChess/internal/chess"
)

var ErrGameNotFound = errors.New("game not found")

// Game is one hosted game. Its engine is guarded by mu; handlers hold the
// lock for the whole of a read-check-write sequence.
type Game struct {
	ID          string
	CreatedAt   time.Time
	TimeControl *chess.TimeControl

	mu        sync.Mutex
	engine    *chess.Engine
	updatedAt time.Time
}

// GameView is the JSON form of a game.
type GameView struct {
	ID          string              `json:"id"`
	FEN         string              `json:"fen"`
	Status      chess.GameStatus    `json:"status"`
	Result      string              `json:"result,omitempty"`
	Phase       chess.Phase         `json:"phase"`
	ToMove      string              `json:"toMove"`
	Moves       []string            `json:"moves"`
	Material    chess.MaterialCount `json:"material"`
	Balance     int                 `json:"materialBalance"`
	TimeControl *chess.TimeControl  `json:"timeControl,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// view must be called with g.mu held.
func (g *Game) view() GameView {
	v := GameView{
		ID:          g.ID,
		FEN:         g.engine.GetFEN(),
		Status:      g.engine.GetStatus(),
		Phase:       g.engine.Phase(),
		ToMove:      g.engine.GetActiveColor(),
		Moves:       g.engine.Moves(),
		Material:    g.engine.GetMaterialCount(),
		Balance:     g.engine.GetMaterialBalance(),
		TimeControl: g.TimeControl,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.updatedAt,
	}
	if v.Status != chess.StatusActive {
		v.Result = resultText(v.Status)
	}
	return v
}

// View returns a snapshot of the game.
func (g *Game) View() GameView {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.view()
}

func resultText(s chess.GameStatus) string {
	switch s {
	case chess.StatusWhiteWon:
		return chess.WhiteWins.String()
	case chess.StatusBlackWon:
		return chess.BlackWins.String()
	case chess.StatusDraw:
		return chess.Draw.String()
	}
	return ""
}

// Store keeps games in memory, keyed by ID.
type Store struct {
	mu    sync.RWMutex
	games map[string]*Game
}

func NewStore() *Store {
	return &Store{games: make(map[string]*Game)}
}

// Create registers engine under a fresh ID.
func (s *Store) Create(engine *chess.Engine, tc *chess.TimeControl, now time.Time) *Game {
	g := &Game{
		ID:          uuid.NewString(),
		CreatedAt:   now,
		TimeControl: tc,
		engine:      engine,
		updatedAt:   now,
	}
	s.mu.Lock()
	s.games[g.ID] = g
	s.mu.Unlock()
	return g
}

func (s *Store) Get(id string) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return g, nil
}

// Len is the number of games held, finished ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// Active returns the games still in progress, oldest first.
func (s *Store) Active() []*Game {
	s.mu.RLock()
	all := make([]*Game, 0, len(s.games))
	for _, g := range s.games {
		all = append(all, g)
	}
	s.mu.RUnlock()

	active := all[:0]
	for _, g := range all {
		g.mu.Lock()
		ongoing := g.engine.GetStatus() == chess.StatusActive
		g.mu.Unlock()
		if ongoing {
			active = append(active, g)
		}
	}
	slices.SortFunc(active, func(a, b *Game) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return active
}
