package game

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlin/onenight/internal/models"
)

func playerIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func roleCounts(roles []models.Role) map[models.Role]int {
	counts := make(map[models.Role]int)
	for _, r := range roles {
		counts[r]++
	}
	return counts
}

func TestDealPreservesRoleMultiset(t *testing.T) {
	ids := playerIDs(5)
	deck := []models.Role{
		models.RoleWerewolf, models.RoleWerewolf, models.RoleSeer,
		models.RoleRobber, models.RoleTroublemaker, models.RoleVillager,
		models.RoleVillager, models.RoleTanner,
	}

	for seed := int64(0); seed < 20; seed++ {
		assigned, center, err := Deal(ids, deck, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		require.Len(t, assigned, 5)

		var dealt []models.Role
		for _, id := range ids {
			dealt = append(dealt, assigned[id])
		}
		dealt = append(dealt, center.Left, center.Center, center.Right)
		assert.Equal(t, roleCounts(deck), roleCounts(dealt), "seed %d", seed)
	}
}

func TestDealRejectsWrongDeckSize(t *testing.T) {
	ids := playerIDs(3)
	deck := []models.Role{
		models.RoleWerewolf, models.RoleSeer, models.RoleRobber,
		models.RoleVillager, models.RoleVillager,
	}
	_, _, err := Deal(ids, deck, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrBadDeckSize)

	deck = append(deck, models.RoleTanner)
	_, _, err = Deal(ids, deck, rand.New(rand.NewSource(1)))
	assert.NoError(t, err)
}

func TestDealRejectsUnknownRole(t *testing.T) {
	ids := playerIDs(3)
	deck := []models.Role{
		models.RoleWerewolf, models.RoleSeer, models.RoleRobber,
		models.RoleVillager, models.RoleVillager, models.Role("bogeyman"),
	}
	_, _, err := Deal(ids, deck, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestDealLeavesInputDeckUntouched(t *testing.T) {
	ids := playerIDs(3)
	deck := []models.Role{
		models.RoleWerewolf, models.RoleSeer, models.RoleRobber,
		models.RoleVillager, models.RoleVillager, models.RoleTanner,
	}
	original := append([]models.Role(nil), deck...)

	_, _, err := Deal(ids, deck, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	assert.Equal(t, original, deck)
}
