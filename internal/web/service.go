package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/John-Douglas-Hynes/DuckChess/internal/auth"
	"github.com/John-Douglas-Hynes/DuckChess/internal/chess"
	"github.com/John-Douglas-Hynes/DuckChess/internal/config"
)

type Service struct {
	config *config.Config
	store  *Store
	seats  *auth.SeatIssuer
	clocks *chess.TimeControlService
	hub    *Hub
	now    func() time.Time
}

func NewService(cfg *config.Config, seats *auth.SeatIssuer, hub *Hub) *Service {
	return &Service{
		config: cfg,
		store:  NewStore(),
		seats:  seats,
		clocks: chess.NewTimeControlService(),
		hub:    hub,
		now:    time.Now,
	}
}

// Router wires every endpoint behind the CORS middleware.
func (s *Service) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.HealthHandler).Methods("GET")
	api.HandleFunc("/games", s.CreateGameHandler).Methods("POST")
	api.HandleFunc("/games", s.ListGamesHandler).Methods("GET")
	api.HandleFunc("/games/{id}", s.GetGameHandler).Methods("GET")
	api.HandleFunc("/games/{id}/moves", s.LegalMovesHandler).Methods("GET")
	api.HandleFunc("/games/{id}/moves", s.MakeMoveHandler).Methods("POST")
	api.HandleFunc("/games/{id}/undo", s.UndoHandler).Methods("POST")
	api.HandleFunc("/games/{id}/resign", s.ResignGameHandler).Methods("POST")
	api.HandleFunc("/games/{id}/time", s.GetTimeRemainingHandler).Methods("GET")
	api.HandleFunc("/games/{id}/claim", s.ClaimTimeVictoryHandler).Methods("POST")
	api.HandleFunc("/games/{id}/abandonment", s.CheckAbandonmentHandler).Methods("GET")
	api.HandleFunc("/games/{id}/spectators", s.SpectatorCountHandler).Methods("GET")

	// Preflight requests are answered by the middleware.
	api.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	router.HandleFunc("/ws", s.WebSocketHandler)
	return router
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var errMissingToken = errors.New("missing bearer token")

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, errMissingToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrInvalidSeat):
		return http.StatusForbidden
	case errors.Is(err, chess.ErrInvalidSquare),
		errors.Is(err, chess.ErrInvalidFEN),
		errors.Is(err, chess.ErrInvalidPosition):
		return http.StatusBadRequest
	case errors.Is(err, chess.ErrIllegalMove),
		errors.Is(err, chess.ErrIllegalDuck):
		return http.StatusUnprocessableEntity
	case errors.Is(err, chess.ErrWrongPhase),
		errors.Is(err, chess.ErrGameOver),
		errors.Is(err, chess.ErrNothingToUndo):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Service) writeError(w http.ResponseWriter, err error, gameID string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("gameID", gameID).Msg("Request failed")
		http.Error(w, "Internal server error", status)
		return
	}
	log.Debug().Err(err).Str("gameID", gameID).Int("status", status).Msg("Request rejected")
	http.Error(w, err.Error(), status)
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", errMissingToken
	}
	return strings.TrimSpace(token), nil
}

// decodeBody decodes an optional JSON body; an empty body leaves v alone.
func decodeBody(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"games":  s.store.Len(),
	})
}

type CreateGameRequest struct {
	FEN         string `json:"fen,omitempty"`
	DaysPerMove *int   `json:"daysPerMove,omitempty"`
}

type CreateGameResponse struct {
	Game       GameView `json:"game"`
	WhiteToken string   `json:"whiteToken"`
	BlackToken string   `json:"blackToken"`
}

func (s *Service) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	engine := chess.NewEngine()
	if req.FEN != "" {
		var err error
		engine, err = chess.NewEngineFromFEN(req.FEN)
		if err != nil {
			log.Debug().Err(err).Str("fen", req.FEN).Msg("Invalid FEN")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	days := s.config.Game.DaysPerMove
	if req.DaysPerMove != nil {
		days = *req.DaysPerMove
	}
	if days < 0 {
		http.Error(w, "daysPerMove must not be negative", http.StatusBadRequest)
		return
	}
	tc := chess.Correspondence(days)

	now := s.now()
	game := s.store.Create(engine, tc, now)
	if tc != nil {
		s.clocks.SetGameTimeControl(game.ID, *tc, now)
	} else {
		s.clocks.SetGameTimeControl(game.ID, chess.TimeControl{Type: "none"}, now)
	}

	white, err := s.seats.Issue(game.ID, chess.White)
	if err != nil {
		s.writeError(w, err, game.ID)
		return
	}
	black, err := s.seats.Issue(game.ID, chess.Black)
	if err != nil {
		s.writeError(w, err, game.ID)
		return
	}

	view := game.View()
	log.Info().Str("gameID", game.ID).Str("fen", view.FEN).Int("daysPerMove", days).Msg("Game created")

	writeJSON(w, http.StatusCreated, CreateGameResponse{
		Game:       view,
		WhiteToken: white,
		BlackToken: black,
	})
}

func (s *Service) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	game, err := s.store.Get(gameID)
	if err != nil {
		s.writeError(w, err, gameID)
		return
	}
	writeJSON(w, http.StatusOK, game.View())
}

// LegalMove is one generated move in request form.
type LegalMove struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
	Notation  string `json:"notation"`
	Capture   string `json:"capture,omitempty"`
}

func (s *Service) LegalMovesHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	game, err := s.store.Get(gameID)
	if err != nil {
		s.writeError(w, err, gameID)
		return
	}

	game.mu.Lock()
	moves := game.engine.LegalMoves()
	ducks := game.engine.LegalDuckSquares()
	phase := game.engine.Phase()
	toMove := game.engine.GetActiveColor()
	game.mu.Unlock()

	out := make([]LegalMove, 0, len(moves))
	for _, m := range moves {
		lm := LegalMove{
			From:     m.From().String(),
			To:       m.To().String(),
			Notation: m.String(),
		}
		if m.IsPromotion() {
			lm.Promotion = string(m.Promotion().Letter())
		}
		if m.IsCapture() {
			lm.Capture = m.Capture().Kind().String()
		}
		out = append(out, lm)
	}
	duckSquares := make([]string, 0, len(ducks))
	for _, sq := range ducks {
		duckSquares = append(duckSquares, sq.String())
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"phase":       phase,
		"toMove":      toMove,
		"moves":       out,
		"duckSquares": duckSquares,
	})
}

type MakeMoveRequest struct {
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Promotion string `json:"promotion,omitempty"`
	Duck      string `json:"duck,omitempty"`
}

// MakeMoveHandler plays for the side to move. In the move phase from and
// to are required and duck completes the turn when given; in the duck
// phase only duck is read.
func (s *Service) MakeMoveHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	var req MakeMoveRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	token, err := bearerToken(r)
	if err != nil {
		s.writeError(w, err, gameID)
		return
	}
	game, err := s.store.Get(gameID)
	if err != nil {
		s.writeError(w, err, gameID)
		return
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	// After a king capture the winner is still on move; report the
	// finished game rather than a seat mismatch.
	if game.engine.GetStatus() != chess.StatusActive {
		s.writeError(w, chess.ErrGameOver, gameID)
		return
	}
	mover := colourOf(game.engine.GetActiveColor())
	if err := s.seats.Authorize(token, gameID, mover); err != nil {
		s.writeError(w, err, gameID)
		return
	}

	now := s.now()
	violation, err := s.clocks.CheckTimeViolation(gameID, mover, now)
	if err != nil {
		log.Error().Err(err).Str("gameID", gameID).Msg("Failed to check time control")
		http.Error(w, "Failed to check time control", http.StatusInternalServerError)
		return
	}
	if violation != nil {
		http.Error(w, fmt.Sprintf("%s has run out of time", mover), http.StatusConflict)
		return
	}

	var result *chess.MoveResult
	switch game.engine.Phase() {
	case chess.PhaseDuck:
		if req.Duck == "" {
			http.Error(w, "duck is required", http.StatusBadRequest)
			return
		}
		result, err = game.engine.PlaceDuck(req.Duck)
	default:
		if req.From == "" || req.To == "" {
			http.Error(w, "from and to are required", http.StatusBadRequest)
			return
		}
		if req.Duck != "" {
			result, err = game.engine.Play(req.From, req.To, req.Promotion, req.Duck)
		} else {
			result, err = game.engine.MakeMove(req.From, req.To, req.Promotion)
		}
	}
	if err != nil {
		s.writeError(w, err, gameID)
		return
	}
	game.updatedAt = now

	log.Info().
		Str("gameID", gameID).
		Str("move", result.Move).
		Str("duck", result.Duck).
		Str("fen", result.FEN).
		Str("status", string(result.Status)).
		Msg("Move played")

	switch {
	case result.GameOver:
		s.clocks.RemoveGame(gameID)
		s.broadcast(gameID, "game_end", game.view())
	case result.Phase == chess.PhaseMove:
		s.clocks.RecordMove(gameID, mover, now)
		s.broadcast(gameID, "move", result)
	default:
		s.broadcast(gameID, "move", result)
	}

	writeJSON(w, http.StatusOK, result)
}

// UndoHandler takes back the last logged ply. Only the player who made it
// may do so.
func (s *Service) UndoHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	token, err := bearerToken(r)
	if err != nil {
		s.writeError(w, err, gameID)
		return
	}
	game, err := s.store.Get(gameID)
	if err != nil {
		s.writeError(w, err, gameID)
		return
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	mover := game.engine.LastMover()
	if mover == chess.NoColour {
		s.writeError(w, chess.ErrNothingToUndo, gameID)
		return
	}
	if err := s.seats.Authorize(token, gameID, mover); err != nil {
		s.writeError(w, err, gameID)
		return
	}
	if game.engine.GetStatus() != chess.StatusActive {
		s.writeError(w, chess.ErrGameOver, gameID)
		return
	}
	completed := game.engine.Phase() == chess.PhaseMove
	if err := game.engine.Undo(); err != nil {
		s.writeError(w, err, gameID)
		return
	}

	now := s.now()
	game.updatedAt = now
	if completed {
		// The undoing side is on move again; its clock restarts.
		s.clocks.RecordMove(gameID, mover.Opposite(), now)
	}

	view := game.view()
	log.Info().Str("gameID", gameID).Str("colour", mover.String()).Msg("Ply undone")
	s.broadcast(gameID, "undo", view)
	writeJSON(w, http.StatusOK, view)
}

func (s *Service) ResignGameHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	token, err := bearerToken(r)
	if err != nil {
		s.writeError(w, err, gameID)
		return
	}
	claims, err := s.seats.Verify(token)
	if err != nil {
		s.writeError(w, err, gameID)
		return
	}
	if claims.GameID != gameID {
		s.writeError(w, fmt.Errorf("%w: token is for another game", auth.ErrInvalidSeat), gameID)
		return
	}
	game, err := s.store.Get(gameID)
	if err != nil {
		s.writeError(w, err, gameID)
		return
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	if err := game.engine.Resign(claims.Colour); err != nil {
		s.writeError(w, err, gameID)
		return
	}
	game.updatedAt = s.now()
	s.clocks.RemoveGame(gameID)

	view := game.view()
	log.Info().Str("gameID", gameID).Str("colour", claims.Colour.String()).Msg("Player resigned")
	s.broadcast(gameID, "game_end", view)
	writeJSON(w, http.StatusOK, view)
}

func (s *Service) GetTimeRemainingHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	game, err := s.store.Get(gameID)
	if err != nil {
		s.writeError(w, err, gameID)
		return
	}

	game.mu.Lock()
	toMove := colourOf(game.engine.GetActiveColor())
	active := game.engine.GetStatus() == chess.StatusActive
	game.mu.Unlock()

	response := map[string]interface{}{
		"gameId":   gameID,
		"toMove":   toMove.String(),
		"enforced": false,
	}
	if game.TimeControl == nil || !active {
		writeJSON(w, http.StatusOK, response)
		return
	}

	remaining, err := s.clocks.GetTimeRemaining(gameID, toMove, s.now())
	if err != nil {
		log.Error().Err(err).Str("gameID", gameID).Msg("Failed to get time remaining")
		http.Error(w, "Failed to get time remaining", http.StatusInternalServerError)
		return
	}
	response["enforced"] = true
	response["remainingSeconds"] = int(remaining.Seconds())
	response["remainingFormatted"] = chess.FormatTimeRemaining(remaining)
	writeJSON(w, http.StatusOK, response)
}

// ClaimTimeVictoryHandler lets the waiting player win once the side to
// move has overrun its allowance.
func (s *Service) ClaimTimeVictoryHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	token, err := bearerToken(r)
	if err != nil {
		s.writeError(w, err, gameID)
		return
	}
	game, err := s.store.Get(gameID)
	if err != nil {
		s.writeError(w, err, gameID)
		return
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	toMove := colourOf(game.engine.GetActiveColor())
	if err := s.seats.Authorize(token, gameID, toMove.Opposite()); err != nil {
		s.writeError(w, err, gameID)
		return
	}
	if game.engine.GetStatus() != chess.StatusActive {
		s.writeError(w, chess.ErrGameOver, gameID)
		return
	}

	now := s.now()
	violation, err := s.clocks.CheckTimeViolation(gameID, toMove, now)
	if err != nil {
		s.writeError(w, err, gameID)
		return
	}
	if violation == nil {
		http.Error(w, "No time violation to claim", http.StatusConflict)
		return
	}

	// Losing on time is recorded as a forced resignation.
	if err := game.engine.Resign(toMove); err != nil {
		s.writeError(w, err, gameID)
		return
	}
	game.updatedAt = now
	s.clocks.RemoveGame(gameID)

	view := game.view()
	log.Info().Str("gameID", gameID).Str("loser", toMove.String()).Msg("Time victory claimed")
	s.broadcast(gameID, "game_end", view)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"game":      view,
		"violation": violation,
	})
}

func (s *Service) broadcast(gameID, kind string, data interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastGameUpdate(GameUpdate{GameID: gameID, Type: kind, Data: data})
}

func colourOf(name string) chess.Colour {
	switch name {
	case chess.White.String():
		return chess.White
	case chess.Black.String():
		return chess.Black
	}
	return chess.NoColour
}
