package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/John-Douglas-Hynes/DuckChess/internal/auth"
	"github.com/John-Douglas-Hynes/DuckChess/internal/config"
	"github.com/John-Douglas-Hynes/DuckChess/internal/web"
)

func main() {
	// Parse command line flags
	var showHelp bool
	var configPath string
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&showHelp, "h", false, "Show help information")
	flag.StringVar(&configPath, "config", "", "Path to a config file (default: search for config.yaml)")
	flag.Parse()

	if showHelp {
		showHelpMessage()
		return
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setupLogging(cfg.Development)

	secret := []byte(cfg.Game.TokenSecret)
	if len(secret) == 0 {
		secret, err = auth.RandomSecret()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to generate token secret")
		}
		log.Warn().Msg("No game.token_secret configured; seat tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := web.NewHub()
	go hub.Run(ctx)

	service := web.NewService(cfg, auth.NewSeatIssuer(secret, cfg.Game.TokenTTL), hub)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      service.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Int("daysPerMove", cfg.Game.DaysPerMove).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func setupLogging(dev config.DevelopmentConfig) {
	level, err := zerolog.ParseLevel(dev.LogLevel)
	if err != nil || dev.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if dev.Debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		if level > zerolog.DebugLevel {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	}
}

func showHelpMessage() {
	fmt.Println(`Duck Chess Server

DESCRIPTION:
    HTTP and WebSocket server for Duck Chess. Every turn a player moves a
    piece and then places the duck, a blocker no piece may capture or pass.
    There is no check; a game ends when a king is captured, when the side
    to move has no moves, or on the third repetition of a position.

USAGE:
    duckchess [OPTIONS]

OPTIONS:
    -h, --help       Show this help message
    -config PATH     Read PATH instead of searching for config.yaml

CONFIGURATION:
    config.yaml is searched for in the current directory and ./config.
    Any key may be overridden from the environment, e.g.
    DUCKCHESS_SERVER_PORT=9000 or DUCKCHESS_GAME_TOKEN_SECRET=...

    Example config.yaml:
        server:
          host: localhost
          port: 8080

        game:
          token_secret: "change-me"
          token_ttl: 720h       # 0 issues tokens that never expire
          days_per_move: 3      # 0 disables correspondence clocks

        development:
          debug: true
          log_level: debug

API ENDPOINTS:
    GET  /api/health                  - Service health check
    POST /api/games                   - Create a game; returns both seat tokens
    GET  /api/games                   - List games in progress
    GET  /api/games/{id}              - Game state
    GET  /api/games/{id}/moves        - Legal moves or duck squares
    POST /api/games/{id}/moves        - Move and/or place the duck
    POST /api/games/{id}/undo         - Take back your last ply
    POST /api/games/{id}/resign       - Resign
    GET  /api/games/{id}/time         - Time left for the side to move
    POST /api/games/{id}/claim        - Claim a win on time
    GET  /api/games/{id}/abandonment  - Abandonment check
    GET  /api/games/{id}/spectators   - Spectator count
    GET  /ws?gameId={id}              - Live updates over WebSocket

EXAMPLES:
    # Create a game with a two-day clock
    curl -X POST http://localhost:8080/api/games \
      -H "Content-Type: application/json" \
      -d '{"daysPerMove": 2}'

    # Play e2-e4 and put the duck on e6
    curl -X POST http://localhost:8080/api/games/$GAME/moves \
      -H "Authorization: Bearer $WHITE_TOKEN" \
      -d '{"from": "e2", "to": "e4", "duck": "e6"}'`)
}
