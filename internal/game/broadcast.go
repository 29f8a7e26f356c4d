// internal/game/broadcast.go
package game

import (
	"log"

	"github.com/google/uuid"
)

// SnapshotSink receives the full game view after every mutation. Sinks must
// not block; transports that might (a WebSocket write, say) should hand the
// snapshot to their own goroutine and return immediately. A sink that
// returns an error is dropped.
type SnapshotSink func(Snapshot) error

// Subscribe registers a sink for the given viewer, replacing any existing
// sink for the same player id.
func (g *Game) Subscribe(playerID uuid.UUID, sink SnapshotSink) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.subscribers[playerID] = sink
}

// Unsubscribe removes the viewer's sink. Called on transport disconnect.
func (g *Game) Unsubscribe(playerID uuid.UUID) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	delete(g.subscribers, playerID)
}

// SubscriberCount reports how many sinks are registered.
func (g *Game) SubscriberCount() int {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return len(g.subscribers)
}

// broadcastLocked pushes the post-mutation snapshot to every subscriber.
// A failing sink is removed so one dead viewer cannot wedge the rest.
// Assumes the lock is held.
func (g *Game) broadcastLocked() {
	if len(g.subscribers) == 0 {
		return
	}
	snap := g.snapshotLocked()
	var dead []uuid.UUID
	for id, sink := range g.subscribers {
		if err := sink(snap); err != nil {
			log.Printf("Game %s: dropping subscriber %s: %v", g.ID, id, err)
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		delete(g.subscribers, id)
	}
}
