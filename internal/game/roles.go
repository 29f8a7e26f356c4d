// internal/game/roles.go
package game

import "github.com/mkarlin/onenight/internal/models"

// Behavior classifies what a role does during the night phase. Dispatch is
// data-driven off this closed set rather than per-role code paths.
type Behavior string

const (
	BehaviorNone           Behavior = "none"
	BehaviorTeamReveal     Behavior = "team-reveal"
	BehaviorSwapSelfOther  Behavior = "swap-self-other"
	BehaviorSwapOtherOther Behavior = "swap-other-other"
	BehaviorSwapSelfCenter Behavior = "swap-self-center"
	BehaviorInspect        Behavior = "inspect"
)

// roleInfo describes one catalog entry. Team is the start role revealed to
// team-reveal callers: the minion learns who the werewolves are, not who the
// other minions are.
type roleInfo struct {
	Behavior Behavior
	Team     models.Role
}

var catalog = map[models.Role]roleInfo{
	models.RoleWerewolf:     {Behavior: BehaviorTeamReveal, Team: models.RoleWerewolf},
	models.RoleMinion:       {Behavior: BehaviorTeamReveal, Team: models.RoleWerewolf},
	models.RoleMason:        {Behavior: BehaviorTeamReveal, Team: models.RoleMason},
	models.RoleSeer:         {Behavior: BehaviorInspect},
	models.RoleRobber:       {Behavior: BehaviorSwapSelfOther},
	models.RoleTroublemaker: {Behavior: BehaviorSwapOtherOther},
	models.RoleDrunk:        {Behavior: BehaviorSwapSelfCenter},
	models.RoleInsomniac:    {Behavior: BehaviorInspect},
	models.RoleVillager:     {Behavior: BehaviorNone},
	models.RoleHunter:       {Behavior: BehaviorNone},
	models.RoleTanner:       {Behavior: BehaviorNone},
}

// KnownRole reports whether r is part of the role catalog.
func KnownRole(r models.Role) bool {
	_, ok := catalog[r]
	return ok
}

// BehaviorOf returns the night behavior for a role. Unknown roles report
// BehaviorNone; decks are validated against the catalog before any unknown
// role can reach game state.
func BehaviorOf(r models.Role) Behavior {
	info, ok := catalog[r]
	if !ok {
		return BehaviorNone
	}
	return info.Behavior
}

// Faction returns the team a role scores with at dawn. The minion counts
// for the werewolves even though no werewolf knows them.
func Faction(r models.Role) Team {
	switch r {
	case models.RoleWerewolf, models.RoleMinion:
		return TeamWerewolf
	case models.RoleTanner:
		return TeamTanner
	default:
		return TeamVillage
	}
}
