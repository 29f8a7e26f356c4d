package models

// Role identifies a card in the One Night deck. Roles travel as plain
// strings so decks can come straight off the wire.
type Role string

const (
	RoleWerewolf     Role = "werewolf"
	RoleMinion       Role = "minion"
	RoleMason        Role = "mason"
	RoleSeer         Role = "seer"
	RoleRobber       Role = "robber"
	RoleTroublemaker Role = "troublemaker"
	RoleDrunk        Role = "drunk"
	RoleInsomniac    Role = "insomniac"
	RoleVillager     Role = "villager"
	RoleHunter       Role = "hunter"
	RoleTanner       Role = "tanner"
)
