package web

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/John-Douglas-Hynes/DuckChess/internal/chess"
)

// GameIndex represents a game available for spectating
type GameIndex struct {
	GameID         string              `json:"gameId"`
	Status         chess.GameStatus    `json:"status"`
	Phase          chess.Phase         `json:"phase"`
	ToMove         string              `json:"toMove"`
	MoveCount      int                 `json:"moveCount"`
	LastMoveAt     *time.Time          `json:"lastMoveAt,omitempty"`
	TimeControl    *chess.TimeControl  `json:"timeControl,omitempty"`
	SpectatorCount int                 `json:"spectatorCount"`
	MaterialCount  chess.MaterialCount `json:"materialCount"`
}

func (s *Service) indexEntry(g *Game) GameIndex {
	g.mu.Lock()
	entry := GameIndex{
		GameID:        g.ID,
		Status:        g.engine.GetStatus(),
		Phase:         g.engine.Phase(),
		ToMove:        g.engine.GetActiveColor(),
		MoveCount:     len(g.engine.Moves()),
		TimeControl:   g.TimeControl,
		MaterialCount: g.engine.GetMaterialCount(),
	}
	if entry.MoveCount > 0 {
		last := g.updatedAt
		entry.LastMoveAt = &last
	}
	g.mu.Unlock()

	if s.hub != nil {
		entry.SpectatorCount = s.hub.SpectatorCount(g.ID)
	}
	return entry
}

// ListGamesHandler returns the games still in progress, oldest first.
func (s *Service) ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	active := s.store.Active()
	games := make([]GameIndex, 0, len(active))
	for _, g := range active {
		games = append(games, s.indexEntry(g))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"games": games,
		"total": len(games),
	})
}

// SpectatorCountHandler reports how many sockets watch a game and pushes
// the count to them.
func (s *Service) SpectatorCountHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	if _, err := s.store.Get(gameID); err != nil {
		s.writeError(w, err, gameID)
		return
	}

	count := 0
	if s.hub != nil {
		count = s.hub.SpectatorCount(gameID)
	}
	s.broadcast(gameID, "spectator_count", map[string]interface{}{
		"count": count,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"gameId":         gameID,
		"spectatorCount": count,
	})
}

// CheckAbandonmentHandler checks if a game has been abandoned: the
// running clock has sat idle for three times the per-move allowance.
func (s *Service) CheckAbandonmentHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	game, err := s.store.Get(gameID)
	if err != nil {
		s.writeError(w, err, gameID)
		return
	}

	game.mu.Lock()
	active := game.engine.GetStatus() == chess.StatusActive
	lastActivity := game.updatedAt
	game.mu.Unlock()

	if !active {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"abandoned": false,
			"reason":    "Game already ended",
		})
		return
	}
	if game.TimeControl == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"abandoned": false,
			"reason":    "Game has no time control",
		})
		return
	}

	now := s.now()
	violation, err := s.clocks.CheckAbandonment(gameID, now)
	if err != nil {
		log.Error().Err(err).Str("gameID", gameID).Msg("Failed to check abandonment")
		http.Error(w, "Failed to check abandonment", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"abandoned":         violation != nil,
		"lastActivity":      lastActivity.Format(time.RFC3339),
		"timeSinceLastMove": now.Sub(lastActivity).Round(time.Second).String(),
		"canClaim":          violation != nil,
	}
	if violation != nil {
		response["idle"] = violation.Colour.String()
		response["deadline"] = violation.DeadlineAt.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, response)
}
