// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/mkarlin/onenight/internal/database"
	"github.com/mkarlin/onenight/internal/game"
	"github.com/mkarlin/onenight/internal/models"
)

// failStatus maps engine errors onto HTTP status codes. Anything the engine
// rejects is a client mistake unless the referenced entity does not exist.
func failStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrUnknownPlayer):
		return http.StatusNotFound
	case errors.Is(err, game.ErrNameTaken):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// lookupGame resolves the {gameID} path segment. Writes the failure envelope
// itself so callers can just return on !ok.
func (s *GameServer) lookupGame(w http.ResponseWriter, r *http.Request) (*game.Game, bool) {
	gameID, err := uuid.Parse(r.PathValue("gameID"))
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid game id")
		return nil, false
	}
	g, ok := s.Store.Get(gameID)
	if !ok {
		writeFail(w, http.StatusNotFound, "game not found")
		return nil, false
	}
	return g, true
}

func pathPlayerID(w http.ResponseWriter, r *http.Request, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(key))
	if err != nil {
		writeFail(w, http.StatusBadRequest, "invalid player id")
		return uuid.Nil, false
	}
	return id, true
}

// parseSeats converts raw seat strings (player uuids or center slot names)
// without validating them; the engine owns seat legality.
func parseSeats(raw []string) []game.SeatID {
	seats := make([]game.SeatID, 0, len(raw))
	for _, s := range raw {
		seats = append(seats, game.SeatID(s))
	}
	return seats
}

// HandleCreateGame creates an empty game with a store-unique name.
func (s *GameServer) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeFail(w, http.StatusBadRequest, "game name is required")
		return
	}
	g, err := s.Store.Create(req.Name)
	if err != nil {
		writeFail(w, failStatus(err), err.Error())
		return
	}
	g.OnGameEnd = s.OnGameEnd
	s.Logf("created game %s (%s)", g.Name, g.ID)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"ok":   true,
		"game": g.Snapshot(),
	})
}

// HandleGetGame returns the full snapshot of one game.
func (s *GameServer) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookupGame(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, g.Snapshot())
}

// HandleGameExists answers name-based lookups so clients can check a table
// name before creating or joining.
func (s *GameServer) HandleGameExists(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	g, ok := s.Store.GetByName(name)
	resp := map[string]interface{}{
		"ok":     true,
		"exists": ok,
	}
	if ok {
		resp["id"] = g.ID.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleJoin seats a player at the table.
func (s *GameServer) HandleJoin(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookupGame(w, r)
	if !ok {
		return
	}
	playerID, ok := pathPlayerID(w, r, "playerID")
	if !ok {
		return
	}
	var req struct {
		Username string `json:"username"`
	}
	// body is optional; a bare join keeps an empty username
	_ = json.NewDecoder(r.Body).Decode(&req)

	p := &models.Player{ID: playerID, Username: req.Username}
	if err := g.Join(p); err != nil {
		writeFail(w, failStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// HandleListPlayers returns the seated players in join order.
func (s *GameServer) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookupGame(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, g.Snapshot().Players)
}

// HandleGetPlayer returns one player's record, dealt roles included.
func (s *GameServer) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookupGame(w, r)
	if !ok {
		return
	}
	playerID, ok := pathPlayerID(w, r, "playerID")
	if !ok {
		return
	}
	view, ok := g.PlayerState(playerID)
	if !ok {
		writeFail(w, http.StatusNotFound, "player not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleCenter exposes a single center slot. Host and debug use only; the
// engine does not treat this as a night action.
func (s *GameServer) HandleCenter(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookupGame(w, r)
	if !ok {
		return
	}
	slot := game.SeatID(r.PathValue("slot"))
	if !slot.IsCenter() {
		writeFail(w, http.StatusBadRequest, "slot must be left, center, or right")
		return
	}
	g.Mu.Lock()
	role, _ := g.Center.RoleAt(slot)
	g.Mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"slot": string(slot),
		"role": string(role),
	})
}

// HandleStart deals the submitted deck and opens the night phase.
func (s *GameServer) HandleStart(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookupGame(w, r)
	if !ok {
		return
	}
	var req struct {
		Deck []string `json:"deck"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid start payload")
		return
	}
	deck := make([]models.Role, 0, len(req.Deck))
	for _, roleName := range req.Deck {
		deck = append(deck, models.Role(roleName))
	}
	if err := g.Start(deck); err != nil {
		writeFail(w, failStatus(err), err.Error())
		return
	}
	if database.DB != nil {
		go database.UpsertInitialGameState(g.ID, g.Snapshot())
	}
	s.Logf("game %s started with %d players", g.ID, len(req.Deck)-3)
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// HandleTeam answers a team-reveal night query for werewolves, minions,
// and masons.
func (s *GameServer) HandleTeam(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookupGame(w, r)
	if !ok {
		return
	}
	playerID, ok := pathPlayerID(w, r, "playerID")
	if !ok {
		return
	}
	teammates, err := g.TeamReveal(playerID)
	if err != nil {
		writeFail(w, failStatus(err), err.Error())
		return
	}
	seats := make([]string, 0, len(teammates))
	for _, id := range teammates {
		seats = append(seats, id.String())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"seats": seats,
	})
}

// HandleSwap performs the caller's swap night action. An empty target list
// is a deliberate skip.
func (s *GameServer) HandleSwap(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookupGame(w, r)
	if !ok {
		return
	}
	playerID, ok := pathPlayerID(w, r, "playerID")
	if !ok {
		return
	}
	var req struct {
		Targets []string `json:"targets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid swap payload")
		return
	}
	if err := g.NightSwap(playerID, parseSeats(req.Targets)); err != nil {
		writeFail(w, failStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// HandleInspect performs a seer or insomniac inspection and returns the
// current role at each inspected seat.
func (s *GameServer) HandleInspect(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookupGame(w, r)
	if !ok {
		return
	}
	playerID, ok := pathPlayerID(w, r, "playerID")
	if !ok {
		return
	}
	var req struct {
		Targets []string `json:"targets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid inspect payload")
		return
	}
	seen, err := g.Inspect(playerID, parseSeats(req.Targets))
	if err != nil {
		writeFail(w, failStatus(err), err.Error())
		return
	}
	roles := make(map[string]string, len(seen))
	for seat, role := range seen {
		roles[string(seat)] = string(role)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"roles": roles,
	})
}

// HandleEndNightAction marks the caller's night prompt as finished.
func (s *GameServer) HandleEndNightAction(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookupGame(w, r)
	if !ok {
		return
	}
	playerID, ok := pathPlayerID(w, r, "playerID")
	if !ok {
		return
	}
	if err := g.EndNightAction(playerID); err != nil {
		writeFail(w, failStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// HandleVote records or overwrites the caller's elimination vote.
func (s *GameServer) HandleVote(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookupGame(w, r)
	if !ok {
		return
	}
	voterID, ok := pathPlayerID(w, r, "playerID")
	if !ok {
		return
	}
	targetID, ok := pathPlayerID(w, r, "targetID")
	if !ok {
		return
	}
	if err := g.VoteAction(voterID, targetID); err != nil {
		writeFail(w, failStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// HandleVoteNow forces the table into the voting phase.
func (s *GameServer) HandleVoteNow(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookupGame(w, r)
	if !ok {
		return
	}
	if err := g.UpdateStatus(game.StatusVoting); err != nil {
		writeFail(w, failStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// HandleUpdateStatus is the host override for any lifecycle transition.
func (s *GameServer) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookupGame(w, r)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid status payload")
		return
	}
	if err := g.UpdateStatus(game.Status(req.Status)); err != nil {
		writeFail(w, failStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// HandleUpdateRules lets the host override table rules mid-game. Keys
// absent from the payload keep their current value.
func (s *GameServer) HandleUpdateRules(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookupGame(w, r)
	if !ok {
		return
	}
	var overrides map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&overrides); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid rules payload")
		return
	}
	if err := g.UpdateRules(overrides); err != nil {
		writeFail(w, failStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// HandleEnd finalizes votes, eliminates the most-voted seats, and settles
// the winner.
func (s *GameServer) HandleEnd(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookupGame(w, r)
	if !ok {
		return
	}
	if err := g.End(); err != nil {
		writeFail(w, failStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, g.Snapshot())
}
