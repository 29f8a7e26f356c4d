// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mkarlin/onenight/internal/game"
	"github.com/mkarlin/onenight/internal/middleware"
)

// GameWSHandler upgrades the HTTP connection to a WebSocket snapshot stream
// for one game. It authenticates the user (creating an ephemeral guest when
// needed), verifies they are seated, registers the connection as a snapshot
// subscriber, and then idles in a read loop until the client disconnects.
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := uuid.Parse(r.PathValue("gameID"))
		if err != nil {
			http.Error(w, "Invalid game_id format", http.StatusBadRequest)
			return
		}

		g, ok := gs.Store.Get(gameID)
		if !ok {
			http.Error(w, "Game not found", http.StatusNotFound)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for game %s: %v", gameID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "game" {
			logger.Warnf("Client for game %s connected with invalid subprotocol: %s", gameID, c.Subprotocol())
			c.Close(websocket.StatusPolicyViolation, "Client must use the 'game' subprotocol.")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		userID, err := EnsureEphemeralUser(w, r)
		if err != nil {
			logger.Warnf("User authentication failed for game %s: %v", gameID, err)
			c.Close(websocket.StatusPolicyViolation, "Authentication failed.")
			return
		}

		p := g.GetPlayer(userID)
		if p == nil {
			logger.Warnf("User %s is not a player in game %s. Closing connection.", userID, gameID)
			c.Close(websocket.StatusPolicyViolation, "You are not a player in this game.")
			return
		}

		g.Mu.Lock()
		p.Connected = true
		p.Conn = c
		g.Mu.Unlock()

		g.Subscribe(userID, snapshotSink(c, logger, userID, gameID))

		// Push the current state immediately so a late subscriber is not
		// blind until the next mutation.
		sendSnapshot(c, g.Snapshot(), logger)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		readSubscriberMessages(ctx, c, userID, gameID, logger)

		g.Unsubscribe(userID)
		g.Mu.Lock()
		p.Connected = false
		p.Conn = nil
		g.Mu.Unlock()
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
	}
}

// snapshotSink wraps a WebSocket connection as a game.SnapshotSink. The sink
// is invoked while the game lock is held, so the actual network write happens
// on its own goroutine; a failed write poisons the sink and the next
// invocation reports the error so the broadcaster drops it.
func snapshotSink(c *websocket.Conn, logger *logrus.Logger, userID, gameID uuid.UUID) game.SnapshotSink {
	var failed atomic.Bool
	return func(snap game.Snapshot) error {
		if failed.Load() {
			return errors.New("snapshot sink closed")
		}
		data, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		go func() {
			writeCtx, cancelWrite := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancelWrite()
			if werr := c.Write(writeCtx, websocket.MessageText, data); werr != nil {
				failed.Store(true)
				logger.Warnf("Failed to push snapshot to player %s in game %s: %v", userID, gameID, werr)
			}
		}()
		return nil
	}
}

func sendSnapshot(c *websocket.Conn, snap game.Snapshot, logger *logrus.Logger) {
	data, err := json.Marshal(snap)
	if err != nil {
		logger.Errorf("Failed to marshal snapshot: %v", err)
		return
	}
	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Write(writeCtx, websocket.MessageText, data); err != nil {
		logger.Warnf("Failed to write initial snapshot: %v", err)
	}
}

// readSubscriberMessages keeps the connection open. The stream is one-way;
// clients only ever send pings, which get a pong back. Everything else is
// ignored with a warning.
func readSubscriberMessages(ctx context.Context, c *websocket.Conn, userID, gameID uuid.UUID, logger *logrus.Logger) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("WebSocket closed normally for user %s in game %s.", userID, gameID)
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("WebSocket context canceled for user %s in game %s.", userID, gameID)
			} else {
				logger.Warnf("Error reading from WebSocket for user %s in game %s: %v (Status: %d)", userID, gameID, err, status)
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid JSON from user %s in game %s: %s", userID, gameID, string(data))
			continue
		}
		switch msg.Type {
		case "ping":
			writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if werr := c.Write(writeCtx, websocket.MessageText, []byte(`{"type":"pong"}`)); werr != nil {
				cancel()
				return
			}
			cancel()
		default:
			logger.Warnf("Unexpected message type '%s' from subscriber %s in game %s.", msg.Type, userID, gameID)
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}
