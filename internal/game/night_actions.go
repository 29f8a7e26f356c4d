// internal/game/night_actions.go
package game

import (
	"github.com/google/uuid"
	"github.com/mkarlin/onenight/internal/models"
)

// Night actions dispatch on the caller's StartRole, never CurrentRole: a
// robbed robber still acts once as the robber, and a villager handed the
// werewolf card gains nothing. All mutation targets CurrentRole.

// TeamReveal returns the seats whose start role matches the caller's night
// team: werewolves see werewolves, the minion sees werewolves, masons see
// masons. Team membership is fixed at deal time, so later swaps never change
// the answer.
func (g *Game) TeamReveal(playerID uuid.UUID) ([]uuid.UUID, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.playerByID(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if g.Status != StatusNight {
		return nil, ErrWrongStatus
	}
	info, ok := catalog[p.StartRole]
	if !ok || info.Behavior != BehaviorTeamReveal {
		return nil, ErrWrongRole
	}

	var team []uuid.UUID
	for _, seated := range g.Players {
		if seated.StartRole == info.Team {
			team = append(team, seated.ID)
		}
	}
	g.logAction(playerID, "night_team_reveal", map[string]interface{}{"team": string(info.Team)})
	return team, nil
}

// NightSwap performs the caller's swap action. An empty target list is a
// deliberate skip: it spends the action but changes nothing. Validation runs
// in full before any mutation, so a failed swap leaves the layout untouched.
func (g *Game) NightSwap(playerID uuid.UUID, targets []SeatID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.playerByID(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	if g.Status != StatusNight {
		return ErrWrongStatus
	}
	behavior := BehaviorOf(p.StartRole)
	switch behavior {
	case BehaviorSwapSelfOther, BehaviorSwapOtherOther, BehaviorSwapSelfCenter:
	default:
		return ErrWrongRole
	}
	if g.Rules.SingleNightAction && p.Acted {
		return ErrActionSpent
	}

	if len(targets) == 0 {
		p.Acted = true
		g.logAction(playerID, "night_swap_skip", nil)
		g.broadcastLocked()
		return nil
	}

	switch behavior {
	case BehaviorSwapSelfOther:
		if len(targets) != 1 {
			return ErrIllegalSwap
		}
		target := g.seatPlayer(targets[0])
		if target == nil || target.ID == playerID {
			return ErrIllegalSwap
		}
		p.CurrentRole, target.CurrentRole = target.CurrentRole, p.CurrentRole

	case BehaviorSwapOtherOther:
		if len(targets) != 2 || targets[0] == targets[1] {
			return ErrIllegalSwap
		}
		a := g.seatPlayer(targets[0])
		b := g.seatPlayer(targets[1])
		if a == nil || b == nil || a.ID == playerID || b.ID == playerID {
			return ErrIllegalSwap
		}
		a.CurrentRole, b.CurrentRole = b.CurrentRole, a.CurrentRole

	case BehaviorSwapSelfCenter:
		if len(targets) != 1 || !targets[0].IsCenter() {
			return ErrIllegalSwap
		}
		slot := targets[0]
		centerRole, _ := g.Center.RoleAt(slot)
		g.Center.setRole(slot, p.CurrentRole)
		p.CurrentRole = centerRole
	}

	p.Acted = true
	g.logAction(playerID, "night_swap", map[string]interface{}{"targets": seatStrings(targets)})
	g.broadcastLocked()
	return nil
}

// Inspect reveals current roles without mutating them. The seer may look at
// one other player's card or at two of the three center cards; the insomniac
// may only check their own seat.
func (g *Game) Inspect(playerID uuid.UUID, targets []SeatID) (map[SeatID]models.Role, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.playerByID(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if g.Status != StatusNight {
		return nil, ErrWrongStatus
	}
	if BehaviorOf(p.StartRole) != BehaviorInspect {
		return nil, ErrWrongRole
	}
	if g.Rules.SingleNightAction && p.Acted {
		return nil, ErrActionSpent
	}

	revealed := make(map[SeatID]models.Role)
	switch p.StartRole {
	case models.RoleSeer:
		switch len(targets) {
		case 1:
			target := g.seatPlayer(targets[0])
			if target == nil || target.ID == playerID {
				return nil, ErrIllegalInspection
			}
			revealed[targets[0]] = target.CurrentRole
		case 2:
			if !targets[0].IsCenter() || !targets[1].IsCenter() || targets[0] == targets[1] {
				return nil, ErrIllegalInspection
			}
			for _, s := range targets {
				role, _ := g.Center.RoleAt(s)
				revealed[s] = role
			}
		default:
			return nil, ErrIllegalInspection
		}

	case models.RoleInsomniac:
		if len(targets) != 1 || targets[0] != PlayerSeat(playerID) {
			return nil, ErrIllegalInspection
		}
		revealed[targets[0]] = p.CurrentRole

	default:
		return nil, ErrIllegalInspection
	}

	p.Acted = true
	g.logAction(playerID, "night_inspect", map[string]interface{}{"targets": seatStrings(targets)})
	return revealed, nil
}
