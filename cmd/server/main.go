// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/mkarlin/onenight/internal/auth"
	"github.com/mkarlin/onenight/internal/cache"
	"github.com/mkarlin/onenight/internal/database"
	"github.com/mkarlin/onenight/internal/game"
	"github.com/mkarlin/onenight/internal/handlers"
	"github.com/mkarlin/onenight/internal/middleware"
	"github.com/mkarlin/onenight/internal/models"
)

func main() {
	auth.Init()
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("redis unavailable, action log disabled: %v", err)
	}

	srv := handlers.NewGameServer()
	srv.OnGameEnd = persistGameEnd(logger)

	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(logger)

	// user endpoints
	mux.HandleFunc("POST /user/create", handlers.CreateUserHandler)
	mux.HandleFunc("POST /user/login", handlers.LoginHandler)
	mux.HandleFunc("POST /user/claim", handlers.ClaimEphemeralHandler)

	// game lifecycle
	mux.Handle("POST /games", logged(http.HandlerFunc(srv.HandleCreateGame)))
	mux.Handle("GET /games/{gameID}", logged(http.HandlerFunc(srv.HandleGetGame)))
	mux.Handle("GET /games/name/{name}/exists", logged(http.HandlerFunc(srv.HandleGameExists)))
	mux.Handle("PUT /games/{gameID}/players/{playerID}", logged(http.HandlerFunc(srv.HandleJoin)))
	mux.Handle("GET /games/{gameID}/players", logged(http.HandlerFunc(srv.HandleListPlayers)))
	mux.Handle("GET /games/{gameID}/players/{playerID}", logged(http.HandlerFunc(srv.HandleGetPlayer)))
	mux.Handle("GET /games/{gameID}/center/{slot}", logged(http.HandlerFunc(srv.HandleCenter)))
	mux.Handle("POST /games/{gameID}/start", logged(http.HandlerFunc(srv.HandleStart)))

	// night actions
	mux.Handle("GET /games/{gameID}/players/{playerID}/team", logged(http.HandlerFunc(srv.HandleTeam)))
	mux.Handle("POST /games/{gameID}/players/{playerID}/swap", logged(http.HandlerFunc(srv.HandleSwap)))
	mux.Handle("POST /games/{gameID}/players/{playerID}/inspect", logged(http.HandlerFunc(srv.HandleInspect)))
	mux.Handle("POST /games/{gameID}/players/{playerID}/endNightAction", logged(http.HandlerFunc(srv.HandleEndNightAction)))

	// day and voting
	mux.Handle("POST /games/{gameID}/players/{playerID}/vote/{targetID}", logged(http.HandlerFunc(srv.HandleVote)))
	mux.Handle("POST /games/{gameID}/voteNow", logged(http.HandlerFunc(srv.HandleVoteNow)))
	mux.Handle("POST /games/{gameID}/status", logged(http.HandlerFunc(srv.HandleUpdateStatus)))
	mux.Handle("POST /games/{gameID}/rules", logged(http.HandlerFunc(srv.HandleUpdateRules)))
	mux.Handle("POST /games/{gameID}/end", logged(http.HandlerFunc(srv.HandleEnd)))

	// snapshot stream
	mux.Handle("GET /games/ws/{gameID}", logged(http.HandlerFunc(
		handlers.GameWSHandler(logger, srv),
	)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// persistGameEnd records the finished game, final state, and rating changes.
// Runs on its own goroutine after the game reaches endGame.
func persistGameEnd(logger *logrus.Logger) game.OnGameEndFunc {
	return func(g *game.Game, winner game.Team, eliminated []uuid.UUID) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		won := g.WinShares(winner, eliminated)
		snap := g.Snapshot()

		g.Mu.Lock()
		players := make([]*models.Player, len(g.Players))
		copy(players, g.Players)
		g.Mu.Unlock()

		if err := database.RecordGameResults(ctx, g.ID, string(winner), players, won, eliminated); err != nil {
			logger.Errorf("failed to record results for game %s: %v", g.ID, err)
		}
		if err := database.StoreFinalGameStateInDB(ctx, g.ID, snap); err != nil {
			logger.Errorf("failed to store final state for game %s: %v", g.ID, err)
		}
		logger.Infof("game %s persisted, winner=%s", g.ID, winner)
	}
}
