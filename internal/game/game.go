// internal/game/game.go
package game

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mkarlin/onenight/internal/cache"
	"github.com/mkarlin/onenight/internal/models"
)

// Status is the single forward-moving lifecycle of a game. The host may
// force a transition through UpdateStatus; the engine never walks backwards
// on its own.
type Status string

const (
	StatusBeforeGame Status = "beforeGame"
	StatusPreGame    Status = "preGame"
	StatusNight      Status = "night"
	StatusDay        Status = "day"
	StatusVoting     Status = "voting"
	StatusEndGame    Status = "endGame"
)

var knownStatus = map[Status]bool{
	StatusBeforeGame: true,
	StatusPreGame:    true,
	StatusNight:      true,
	StatusDay:        true,
	StatusVoting:     true,
	StatusEndGame:    true,
}

// Team is the faction credited with the win once the game ends.
type Team string

const (
	TeamNone     Team = ""
	TeamVillage  Team = "village"
	TeamWerewolf Team = "werewolf"
	TeamTanner   Team = "tanner"
)

// OnGameEndFunc handles a finished game: persisting results, updating
// ratings, notifying a dashboard.
type OnGameEndFunc func(g *Game, winner Team, eliminated []uuid.UUID)

// Game holds the entire authoritative state for one table in memory. All
// exported methods lock g.Mu; no method blocks while holding it.
type Game struct {
	ID   uuid.UUID
	Name string

	Status    Status
	Players   []*models.Player // join order
	Center    Center
	Deck      []models.Role // the multiset supplied at start
	VoteTally map[SeatID]int
	Winner    Team
	Rules     Rules

	Mu sync.Mutex

	// OnGameEnd is invoked (on its own goroutine) when the game reaches
	// endGame. May be nil.
	OnGameEnd OnGameEndFunc

	subscribers map[uuid.UUID]SnapshotSink
	actionIndex int
	rng         *rand.Rand
}

// NewGame builds an empty table in the beforeGame status.
func NewGame(name string) *Game {
	id, _ := uuid.NewRandom()
	return &Game{
		ID:          id,
		Name:        name,
		Status:      StatusBeforeGame,
		VoteTally:   make(map[SeatID]int),
		Rules:       DefaultRules(),
		subscribers: make(map[uuid.UUID]SnapshotSink),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Join seats a new player. Only allowed before the deck is dealt.
func (g *Game) Join(p *models.Player) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Status != StatusBeforeGame && g.Status != StatusPreGame {
		return ErrWrongStatus
	}
	for _, seated := range g.Players {
		if seated.ID == p.ID {
			return ErrDuplicatePlayer
		}
	}
	p.Alive = true
	g.Players = append(g.Players, p)
	if g.Status == StatusBeforeGame {
		g.Status = StatusPreGame
	}
	log.Printf("Game %s: player %s joined (%d seated).", g.ID, p.ID, len(g.Players))
	g.logAction(p.ID, "player_join", nil)
	g.broadcastLocked()
	return nil
}

// Start deals the supplied deck and opens the night phase. A failed start
// leaves the game exactly as it was.
func (g *Game) Start(deck []models.Role) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Status != StatusPreGame {
		return ErrWrongStatus
	}
	if len(g.Players) < 3 {
		return ErrNotEnoughPlayers
	}

	ids := make([]uuid.UUID, len(g.Players))
	for i, p := range g.Players {
		ids[i] = p.ID
	}
	assigned, center, err := Deal(ids, deck, g.rng)
	if err != nil {
		return err
	}

	for _, p := range g.Players {
		role := assigned[p.ID]
		p.StartRole = role
		p.CurrentRole = role
		p.Acted = false
		p.Done = false
		p.VotedFor = nil
	}
	g.Center = center
	g.Deck = append([]models.Role(nil), deck...)
	g.VoteTally = make(map[SeatID]int)
	g.Status = StatusNight

	log.Printf("Game %s: dealt %d cards to %d players, night begins.", g.ID, len(deck), len(g.Players))
	g.logAction(uuid.Nil, "game_start", map[string]interface{}{"players": len(g.Players)})
	g.broadcastLocked()
	return nil
}

// UpdateStatus is the host-forced transition used for "call the vote now"
// and similar controls. The engine does not second-guess the host beyond
// rejecting statuses it does not know; forcing endGame routes through the
// normal outcome computation.
func (g *Game) UpdateStatus(s Status) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if !knownStatus[s] {
		return ErrUnknownStatus
	}
	if s == StatusEndGame {
		g.endLocked()
	} else {
		g.Status = s
		g.logAction(uuid.Nil, "status_update", map[string]interface{}{"status": string(s)})
	}
	g.broadcastLocked()
	return nil
}

// UpdateRules applies host rule overrides to a live table. Keys absent
// from overrides keep their current value.
func (g *Game) UpdateRules(overrides map[string]interface{}) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if err := g.Rules.Update(overrides); err != nil {
		return err
	}
	log.Printf("Game %s: rules updated.", g.ID)
	g.logAction(uuid.Nil, "rules_update", overrides)
	g.broadcastLocked()
	return nil
}

// VoteAction records voterID's vote against targetID, overwriting any
// earlier vote from the same seat, and recomputes the tally.
func (g *Game) VoteAction(voterID, targetID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Rules.VoteRequiresVoting && g.Status != StatusVoting {
		return ErrWrongStatus
	}
	voter := g.playerByID(voterID)
	target := g.playerByID(targetID)
	if voter == nil || target == nil {
		return ErrUnknownPlayer
	}

	tid := targetID
	voter.VotedFor = &tid
	g.retallyLocked()
	g.logAction(voterID, "vote", map[string]interface{}{"target": targetID.String()})
	g.broadcastLocked()
	return nil
}

func (g *Game) retallyLocked() {
	tally := make(map[SeatID]int)
	for _, p := range g.Players {
		if p.VotedFor != nil {
			tally[PlayerSeat(*p.VotedFor)]++
		}
	}
	g.VoteTally = tally
}

// EndNightAction records that the player dismissed their night prompt.
// It never touches role state and is safe to repeat.
func (g *Game) EndNightAction(playerID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.playerByID(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	if p.Done {
		return nil
	}
	p.Done = true
	g.logAction(playerID, "night_done", nil)
	g.broadcastLocked()
	return nil
}

// End finalizes the vote and closes the game.
func (g *Game) End() error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Status == StatusEndGame {
		return ErrWrongStatus
	}
	g.endLocked()
	g.broadcastLocked()
	return nil
}

// endLocked computes the vote outcome, marks eliminated seats dead, and
// moves to endGame. Assumes the lock is held.
func (g *Game) endLocked() {
	if g.Status == StatusEndGame {
		return
	}

	eliminated := g.eliminatedLocked()
	for _, id := range eliminated {
		if p := g.playerByID(id); p != nil {
			p.Alive = false
		}
	}
	g.Winner = g.winnerLocked(eliminated)
	g.Status = StatusEndGame

	log.Printf("Game %s: ended, winner=%s, eliminated=%d seat(s).", g.ID, g.Winner, len(eliminated))
	g.logAction(uuid.Nil, "game_end", map[string]interface{}{
		"winner":     string(g.Winner),
		"eliminated": uuidStrings(eliminated),
	})

	if g.OnGameEnd != nil {
		go g.OnGameEnd(g, g.Winner, eliminated)
	}
}

// eliminatedLocked returns the seat(s) carrying the highest vote count, or
// nothing when no votes were cast at all.
func (g *Game) eliminatedLocked() []uuid.UUID {
	max := 0
	for _, n := range g.VoteTally {
		if n > max {
			max = n
		}
	}
	if max == 0 {
		return nil
	}
	var out []uuid.UUID
	for _, p := range g.Players {
		if g.VoteTally[PlayerSeat(p.ID)] == max {
			out = append(out, p.ID)
		}
	}
	return out
}

// winnerLocked applies the One Night outcome rules to the final layout.
// Outcomes key off CurrentRole: the card you hold at dawn is who you are.
func (g *Game) winnerLocked(eliminated []uuid.UUID) Team {
	for _, id := range eliminated {
		if p := g.playerByID(id); p != nil && p.CurrentRole == models.RoleTanner {
			return TeamTanner
		}
	}
	for _, id := range eliminated {
		if p := g.playerByID(id); p != nil && p.CurrentRole == models.RoleWerewolf {
			return TeamVillage
		}
	}
	for _, p := range g.Players {
		if p.CurrentRole == models.RoleWerewolf {
			return TeamWerewolf
		}
	}
	return TeamVillage
}

// WinShares reports, for each seated player, whether their dawn faction won
// the game. Used by persistence and rating wiring after endGame. A tanner
// only shares the tanner win when they were themselves eliminated.
func (g *Game) WinShares(winner Team, eliminated []uuid.UUID) map[uuid.UUID]bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	elim := make(map[uuid.UUID]bool, len(eliminated))
	for _, id := range eliminated {
		elim[id] = true
	}
	won := make(map[uuid.UUID]bool, len(g.Players))
	for _, p := range g.Players {
		f := Faction(p.CurrentRole)
		if f == TeamTanner {
			won[p.ID] = winner == TeamTanner && elim[p.ID]
			continue
		}
		won[p.ID] = f == winner
	}
	return won
}

// GetPlayer returns the seated player with the given id, or nil.
func (g *Game) GetPlayer(id uuid.UUID) *models.Player {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.playerByID(id)
}

func (g *Game) playerByID(id uuid.UUID) *models.Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// seatPlayer resolves a player seat id; center seats resolve to nil.
func (g *Game) seatPlayer(s SeatID) *models.Player {
	id, ok := s.PlayerID()
	if !ok {
		return nil
	}
	return g.playerByID(id)
}

// logAction pushes an audit record for the historian onto the Redis queue.
// Best-effort: a missing or slow Redis never affects game state.
func (g *Game) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec cache.GameActionRecord) {
		if cache.Rdb == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			log.Printf("Game %s: failed to publish action %d: %v", g.ID, rec.ActionIndex, err)
		}
	}(record)
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
