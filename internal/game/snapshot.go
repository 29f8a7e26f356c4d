// internal/game/snapshot.go
package game

import (
	"github.com/google/uuid"
	"github.com/mkarlin/onenight/internal/models"
)

// PlayerView is one seat as serialized in a snapshot.
type PlayerView struct {
	ID          uuid.UUID   `json:"id"`
	Username    string      `json:"username,omitempty"`
	StartRole   models.Role `json:"startRole,omitempty"`
	CurrentRole models.Role `json:"currentRole,omitempty"`
	Alive       bool        `json:"alive"`
	VotedFor    *uuid.UUID  `json:"votedFor,omitempty"`
	Done        bool        `json:"done"`
}

// Snapshot is the full game view pushed to every subscriber after each
// mutation. There is no diffing; each push is the whole state. Withholding
// role values from non-privileged viewers is the presentation layer's job.
type Snapshot struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Status    Status         `json:"status"`
	Players   []PlayerView   `json:"players"`
	Center    Center         `json:"center"`
	VoteTally map[SeatID]int `json:"voteTally"`
	Rules     Rules          `json:"rules"`
	Winner    Team           `json:"winner,omitempty"`
}

// Snapshot returns a consistent copy of the current game view.
func (g *Game) Snapshot() Snapshot {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.snapshotLocked()
}

// PlayerState returns a copy of a single seat's view, safe to serialize
// while the game keeps mutating. ok is false for an unknown player.
func (g *Game) PlayerState(playerID uuid.UUID) (PlayerView, bool) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	for _, p := range g.Players {
		if p.ID == playerID {
			return playerViewLocked(p), true
		}
	}
	return PlayerView{}, false
}

// snapshotLocked builds the view without copying any live pointers, so
// callers may hand it to another goroutine. Assumes the lock is held.
func (g *Game) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:        g.ID,
		Name:      g.Name,
		Status:    g.Status,
		Center:    g.Center,
		VoteTally: make(map[SeatID]int, len(g.VoteTally)),
		Rules:     g.Rules,
		Winner:    g.Winner,
		Players:   make([]PlayerView, len(g.Players)),
	}
	for seat, n := range g.VoteTally {
		snap.VoteTally[seat] = n
	}
	for i, p := range g.Players {
		snap.Players[i] = playerViewLocked(p)
	}
	return snap
}

func playerViewLocked(p *models.Player) PlayerView {
	view := PlayerView{
		ID:          p.ID,
		Username:    p.Username,
		StartRole:   p.StartRole,
		CurrentRole: p.CurrentRole,
		Alive:       p.Alive,
		Done:        p.Done,
	}
	if p.VotedFor != nil {
		target := *p.VotedFor
		view.VotedFor = &target
	}
	return view
}
