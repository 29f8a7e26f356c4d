// internal/handlers/game_server.go
package handlers

import (
	"log"

	"github.com/mkarlin/onenight/internal/game"
)

// GameServer holds the in-memory game store shared by every HTTP and
// WebSocket handler.
type GameServer struct {
	Store *game.Store
	Logf  func(f string, v ...interface{})

	// OnGameEnd is attached to every game the server creates. Wired to the
	// persistence and rating layer in main; nil in tests.
	OnGameEnd game.OnGameEndFunc
}

func NewGameServer() *GameServer {
	return &GameServer{
		Store: game.NewStore(),
		Logf:  log.Printf,
	}
}
