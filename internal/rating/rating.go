// Package rating applies Glicko-2 updates to player ratings after a
// finished game. One Night games are scored by team, so each player is
// rated against the averaged strength of the opposing side.
package rating

import (
	"github.com/google/uuid"

	"github.com/mkarlin/onenight/internal/models"
)

// FinalizeRatings updates the rating, deviation, and volatility of every
// user in place. won maps each user ID to whether their team won the game.
// Users absent from won (spectating or unresolved) are left untouched.
// If either side is empty there is no opponent pool and nothing changes.
func FinalizeRatings(users []*models.User, won map[uuid.UUID]bool) {
	var winners, losers []glicko2Rating
	for _, u := range users {
		w, ok := won[u.ID]
		if !ok {
			continue
		}
		r := toGlicko2(u.Rating, u.Phi, u.Sigma)
		if w {
			winners = append(winners, r)
		} else {
			losers = append(losers, r)
		}
	}
	if len(winners) == 0 || len(losers) == 0 {
		return
	}

	winPool := averageRating(winners)
	losePool := averageRating(losers)

	for _, u := range users {
		w, ok := won[u.ID]
		if !ok {
			continue
		}
		player := toGlicko2(u.Rating, u.Phi, u.Sigma)
		var next glicko2Rating
		if w {
			next = updateGlicko(player, losePool, 1.0)
		} else {
			next = updateGlicko(player, winPool, 0.0)
		}
		u.Rating, u.Phi = next.display()
		u.Sigma = next.sigma
	}
}

// averageRating collapses a team into a single synthetic opponent.
func averageRating(rs []glicko2Rating) glicko2Rating {
	var mu, phi, sigma float64
	for _, r := range rs {
		mu += r.mu
		phi += r.phi
		sigma += r.sigma
	}
	n := float64(len(rs))
	return glicko2Rating{mu: mu / n, phi: phi / n, sigma: sigma / n}
}
