package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlin/onenight/internal/models"
)

func TestTeamRevealWerewolvesSeeEachOther(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleWerewolf, models.RoleWerewolf, models.RoleSeer, models.RoleVillager,
	}, vilCenter())

	team, err := g.TeamReveal(ids[0])
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{ids[0], ids[1]}, team)
}

func TestTeamRevealMinionSeesWerewolvesNotMinions(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleWerewolf, models.RoleMinion, models.RoleMinion, models.RoleVillager,
	}, vilCenter())

	team, err := g.TeamReveal(ids[1])
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{ids[0]}, team)
}

func TestTeamRevealMasonsSeeMasons(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleMason, models.RoleMason, models.RoleWerewolf, models.RoleVillager,
	}, vilCenter())

	team, err := g.TeamReveal(ids[0])
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{ids[0], ids[1]}, team)
}

func TestTeamRevealRejectsOtherRoles(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleWerewolf, models.RoleSeer, models.RoleVillager,
	}, vilCenter())

	_, err := g.TeamReveal(ids[2])
	assert.ErrorIs(t, err, ErrWrongRole)

	_, err = g.TeamReveal(uuid.New())
	assert.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestTeamRevealKeysOffStartRoleDespiteSwaps(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleWerewolf, models.RoleWerewolf, models.RoleTroublemaker, models.RoleVillager,
	}, vilCenter())

	// the troublemaker moves a werewolf card onto the villager
	require.NoError(t, g.NightSwap(ids[2], []SeatID{PlayerSeat(ids[0]), PlayerSeat(ids[3])}))

	team, err := g.TeamReveal(ids[1])
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{ids[0], ids[1]}, team,
		"membership was fixed at deal time")
}

func TestTeamRevealDoesNotSpendTheAction(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleWerewolf, models.RoleWerewolf, models.RoleVillager,
	}, vilCenter())

	_, err := g.TeamReveal(ids[0])
	require.NoError(t, err)
	_, err = g.TeamReveal(ids[0])
	assert.NoError(t, err)
}

func TestRobberSwapTakesTargetCard(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleRobber, models.RoleWerewolf, models.RoleVillager,
	}, vilCenter())

	require.NoError(t, g.NightSwap(ids[0], []SeatID{PlayerSeat(ids[1])}))

	assert.Equal(t, models.RoleWerewolf, g.GetPlayer(ids[0]).CurrentRole)
	assert.Equal(t, models.RoleRobber, g.GetPlayer(ids[1]).CurrentRole)
	assert.Equal(t, models.RoleRobber, g.GetPlayer(ids[0]).StartRole, "start role never changes")
}

func TestRobberIllegalTargets(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleRobber, models.RoleWerewolf, models.RoleVillager,
	}, vilCenter())

	assert.ErrorIs(t, g.NightSwap(ids[0], []SeatID{PlayerSeat(ids[0])}), ErrIllegalSwap)
	assert.ErrorIs(t, g.NightSwap(ids[0], []SeatID{PlayerSeat(ids[1]), PlayerSeat(ids[2])}), ErrIllegalSwap)
	assert.ErrorIs(t, g.NightSwap(ids[0], []SeatID{SeatLeft}), ErrIllegalSwap)

	// failed attempts leave the layout intact and the action unspent
	assert.Equal(t, models.RoleRobber, g.GetPlayer(ids[0]).CurrentRole)
	assert.NoError(t, g.NightSwap(ids[0], []SeatID{PlayerSeat(ids[1])}))
}

func TestTroublemakerDoubleSwapRestoresLayout(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleTroublemaker, models.RoleWerewolf, models.RoleSeer,
	}, vilCenter())
	g.Rules.SingleNightAction = false

	targets := []SeatID{PlayerSeat(ids[1]), PlayerSeat(ids[2])}
	require.NoError(t, g.NightSwap(ids[0], targets))
	assert.Equal(t, models.RoleSeer, g.GetPlayer(ids[1]).CurrentRole)
	assert.Equal(t, models.RoleWerewolf, g.GetPlayer(ids[2]).CurrentRole)

	require.NoError(t, g.NightSwap(ids[0], targets))
	assert.Equal(t, models.RoleWerewolf, g.GetPlayer(ids[1]).CurrentRole)
	assert.Equal(t, models.RoleSeer, g.GetPlayer(ids[2]).CurrentRole)
}

func TestTroublemakerCannotIncludeSelfOrRepeatSeat(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleTroublemaker, models.RoleWerewolf, models.RoleSeer,
	}, vilCenter())

	assert.ErrorIs(t, g.NightSwap(ids[0], []SeatID{PlayerSeat(ids[0]), PlayerSeat(ids[1])}), ErrIllegalSwap)
	assert.ErrorIs(t, g.NightSwap(ids[0], []SeatID{PlayerSeat(ids[1]), PlayerSeat(ids[1])}), ErrIllegalSwap)
	assert.ErrorIs(t, g.NightSwap(ids[0], []SeatID{PlayerSeat(ids[1])}), ErrIllegalSwap)
}

func TestDrunkSwapsWithCenter(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleDrunk, models.RoleWerewolf, models.RoleSeer,
	}, Center{Left: models.RoleTanner, Center: models.RoleVillager, Right: models.RoleVillager})

	require.NoError(t, g.NightSwap(ids[0], []SeatID{SeatLeft}))

	assert.Equal(t, models.RoleTanner, g.GetPlayer(ids[0]).CurrentRole)
	left, _ := g.Center.RoleAt(SeatLeft)
	assert.Equal(t, models.RoleDrunk, left)
}

func TestDrunkCannotTargetPlayers(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleDrunk, models.RoleWerewolf, models.RoleSeer,
	}, vilCenter())

	assert.ErrorIs(t, g.NightSwap(ids[0], []SeatID{PlayerSeat(ids[1])}), ErrIllegalSwap)
}

func TestSwapSkipSpendsTheAction(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleRobber, models.RoleWerewolf, models.RoleSeer,
	}, vilCenter())

	require.NoError(t, g.NightSwap(ids[0], nil))
	assert.Equal(t, models.RoleRobber, g.GetPlayer(ids[0]).CurrentRole)

	err := g.NightSwap(ids[0], []SeatID{PlayerSeat(ids[1])})
	assert.ErrorIs(t, err, ErrActionSpent)
}

func TestSecondSwapRejectedUnderSingleActionRule(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleRobber, models.RoleWerewolf, models.RoleSeer,
	}, vilCenter())

	require.NoError(t, g.NightSwap(ids[0], []SeatID{PlayerSeat(ids[1])}))
	assert.ErrorIs(t, g.NightSwap(ids[0], []SeatID{PlayerSeat(ids[2])}), ErrActionSpent)

	g.Rules.SingleNightAction = false
	assert.NoError(t, g.NightSwap(ids[0], []SeatID{PlayerSeat(ids[2])}))
}

func TestNightActionsRejectedOutsideNight(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleRobber, models.RoleWerewolf, models.RoleSeer,
	}, vilCenter())
	require.NoError(t, g.UpdateStatus(StatusDay))

	assert.ErrorIs(t, g.NightSwap(ids[0], []SeatID{PlayerSeat(ids[1])}), ErrWrongStatus)
	_, err := g.TeamReveal(ids[1])
	assert.ErrorIs(t, err, ErrWrongStatus)
	_, err = g.Inspect(ids[2], []SeatID{PlayerSeat(ids[0])})
	assert.ErrorIs(t, err, ErrWrongStatus)
}

func TestSeerInspectsOnePlayer(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleSeer, models.RoleWerewolf, models.RoleVillager,
	}, vilCenter())

	seen, err := g.Inspect(ids[0], []SeatID{PlayerSeat(ids[1])})
	require.NoError(t, err)
	assert.Equal(t, map[SeatID]models.Role{
		PlayerSeat(ids[1]): models.RoleWerewolf,
	}, seen)

	// inspection never mutates
	assert.Equal(t, models.RoleWerewolf, g.GetPlayer(ids[1]).CurrentRole)
	assert.Equal(t, models.RoleSeer, g.GetPlayer(ids[0]).CurrentRole)
}

func TestSeerInspectsTwoCenterCards(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleSeer, models.RoleWerewolf, models.RoleVillager,
	}, Center{Left: models.RoleTanner, Center: models.RoleDrunk, Right: models.RoleVillager})

	seen, err := g.Inspect(ids[0], []SeatID{SeatLeft, SeatCenter})
	require.NoError(t, err)
	assert.Equal(t, map[SeatID]models.Role{
		SeatLeft:   models.RoleTanner,
		SeatCenter: models.RoleDrunk,
	}, seen)
}

func TestSeerIllegalInspections(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleSeer, models.RoleWerewolf, models.RoleVillager,
	}, vilCenter())

	_, err := g.Inspect(ids[0], []SeatID{PlayerSeat(ids[0])})
	assert.ErrorIs(t, err, ErrIllegalInspection)
	_, err = g.Inspect(ids[0], []SeatID{SeatLeft})
	assert.ErrorIs(t, err, ErrIllegalInspection)
	_, err = g.Inspect(ids[0], []SeatID{SeatLeft, SeatLeft})
	assert.ErrorIs(t, err, ErrIllegalInspection)
	_, err = g.Inspect(ids[0], nil)
	assert.ErrorIs(t, err, ErrIllegalInspection)

	// nothing above spent the action
	_, err = g.Inspect(ids[0], []SeatID{PlayerSeat(ids[1])})
	assert.NoError(t, err)
}

func TestInsomniacChecksOwnSeatOnly(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleInsomniac, models.RoleRobber, models.RoleVillager,
	}, vilCenter())

	// the robber takes the insomniac card first
	require.NoError(t, g.NightSwap(ids[1], []SeatID{PlayerSeat(ids[0])}))

	seen, err := g.Inspect(ids[0], []SeatID{PlayerSeat(ids[0])})
	require.NoError(t, err)
	assert.Equal(t, models.RoleRobber, seen[PlayerSeat(ids[0])],
		"insomniac sees the card currently at their seat")

	_, err = g.Inspect(ids[0], []SeatID{PlayerSeat(ids[1])})
	assert.ErrorIs(t, err, ErrIllegalInspection)
}

func TestInspectSpendsTheAction(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleSeer, models.RoleWerewolf, models.RoleVillager,
	}, vilCenter())

	_, err := g.Inspect(ids[0], []SeatID{PlayerSeat(ids[1])})
	require.NoError(t, err)
	_, err = g.Inspect(ids[0], []SeatID{PlayerSeat(ids[2])})
	assert.ErrorIs(t, err, ErrActionSpent)
}

func TestVillagerHasNoNightAction(t *testing.T) {
	g, ids := setupNight(t, []models.Role{
		models.RoleVillager, models.RoleWerewolf, models.RoleSeer,
	}, vilCenter())

	assert.ErrorIs(t, g.NightSwap(ids[0], nil), ErrWrongRole)
	_, err := g.Inspect(ids[0], []SeatID{PlayerSeat(ids[0])})
	assert.ErrorIs(t, err, ErrWrongRole)
}
