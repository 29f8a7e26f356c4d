// internal/game/deal.go
package game

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/mkarlin/onenight/internal/models"
)

// Center holds the three face-down cards that were not dealt to a player.
type Center struct {
	Left   models.Role `json:"left"`
	Center models.Role `json:"center"`
	Right  models.Role `json:"right"`
}

// RoleAt returns the role in the given center slot.
func (c Center) RoleAt(s SeatID) (models.Role, bool) {
	switch s {
	case SeatLeft:
		return c.Left, true
	case SeatCenter:
		return c.Center, true
	case SeatRight:
		return c.Right, true
	}
	return "", false
}

func (c *Center) setRole(s SeatID, r models.Role) {
	switch s {
	case SeatLeft:
		c.Left = r
	case SeatCenter:
		c.Center = r
	case SeatRight:
		c.Right = r
	}
}

// Deal shuffles deck with r and maps it onto the players in join order, the
// final three cards going to the left, center and right slots. The input
// deck is never modified; the caller applies the returned assignment.
//
// Fails with ErrBadDeckSize unless len(deck) == len(playerIDs)+3, and with
// ErrUnknownRole if any card is not in the role catalog.
func Deal(playerIDs []uuid.UUID, deck []models.Role, r *rand.Rand) (map[uuid.UUID]models.Role, Center, error) {
	if len(deck) != len(playerIDs)+3 {
		return nil, Center{}, ErrBadDeckSize
	}
	for _, role := range deck {
		if !KnownRole(role) {
			return nil, Center{}, ErrUnknownRole
		}
	}

	shuffled := make([]models.Role, len(deck))
	copy(shuffled, deck)
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	assigned := make(map[uuid.UUID]models.Role, len(playerIDs))
	for i, id := range playerIDs {
		assigned[id] = shuffled[i]
	}
	n := len(playerIDs)
	center := Center{Left: shuffled[n], Center: shuffled[n+1], Right: shuffled[n+2]}
	return assigned, center, nil
}
