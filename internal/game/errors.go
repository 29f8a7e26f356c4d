// internal/game/errors.go
package game

import "errors"

// Business-rule failures. The engine returns these rather than panicking;
// the HTTP layer maps them onto a {ok:false, message} response.
var (
	ErrDuplicatePlayer   = errors.New("player already seated in this game")
	ErrNotEnoughPlayers  = errors.New("at least 3 players required to start")
	ErrBadDeckSize       = errors.New("deck must hold one role per player plus three center cards")
	ErrUnknownRole       = errors.New("deck contains an unrecognized role")
	ErrUnknownPlayer     = errors.New("player is not seated in this game")
	ErrWrongRole         = errors.New("player's start role does not allow this action")
	ErrWrongStatus       = errors.New("action not allowed in the game's current status")
	ErrUnknownStatus     = errors.New("unrecognized game status")
	ErrIllegalSwap       = errors.New("illegal swap target selection")
	ErrIllegalInspection = errors.New("illegal inspection target selection")
	ErrActionSpent       = errors.New("night action already used")
	ErrNameTaken         = errors.New("game name already in use")
)
