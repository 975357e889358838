package partners

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/partnerz-backend/internal/goals"
	"github.com/angelmondragon/partnerz-backend/pkg/enums"
)

func TestAddGoalVisibleToBothSides(t *testing.T) {
	d := connected(t)

	g, err := d.AddGoal("alice", "bob", "take out trash", 15)
	require.NoError(t, err)

	assigned, err := d.AssignedGoals("alice", "bob")
	require.NoError(t, err)
	mine, err := d.MyGoals("bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, []goals.Goal{g}, assigned)
	assert.Equal(t, assigned, mine)

	reverse, _ := d.AssignedGoals("bob", "alice")
	assert.Empty(t, reverse)
}

func TestAddGoalFailures(t *testing.T) {
	d := connected(t)
	require.NoError(t, d.Register("carol", "Carol"))

	_, err := d.AddGoal("alice", "bob", "", 1)
	assert.ErrorIs(t, err, goals.ErrInvalidDescription)
	_, err = d.AddGoal("alice", "bob", "x", -5)
	assert.ErrorIs(t, err, goals.ErrInvalidReward)
	_, err = d.AddGoal("alice", "carol", "x", 1)
	assert.ErrorIs(t, err, ErrNoConnection)
	_, err = d.AddGoal("ghost", "bob", "x", 1)
	assert.ErrorIs(t, err, ErrUnknownMember)
}

func TestApproveCreditsRecipientOnce(t *testing.T) {
	d := connected(t)
	g, _ := d.AddGoal("alice", "bob", "laundry", 40)

	require.NoError(t, d.CompleteGoal("bob", "alice", g.ID))
	credit, err := d.ApproveGoal("alice", "bob", g.ID)
	require.NoError(t, err)
	assert.Equal(t, Credit{Amount: 40, Balance: 40}, credit)

	_, err = d.ApproveGoal("alice", "bob", g.ID)
	assert.ErrorIs(t, err, goals.ErrAlreadyApproved)

	bob, _ := d.Connection("bob", "alice")
	alice, _ := d.Connection("alice", "bob")
	assert.Equal(t, int64(40), bob.Me.Points)
	assert.Equal(t, int64(0), alice.Me.Points)
}

func TestApproveDirectlyFromInProgress(t *testing.T) {
	d := connected(t)
	g, _ := d.AddGoal("alice", "bob", "plan trip", 12)

	credit, err := d.ApproveGoal("alice", "bob", g.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), credit.Amount)
}

func TestRewardChangeBeforeApprovalIsCredited(t *testing.T) {
	d := connected(t)
	g, _ := d.AddGoal("alice", "bob", "cook", 5)

	require.NoError(t, d.SetGoalReward("alice", "bob", g.ID, 25))
	credit, err := d.ApproveGoal("alice", "bob", g.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(25), credit.Amount)
}

func TestGoalLifecycleErrors(t *testing.T) {
	d := connected(t)
	g, _ := d.AddGoal("alice", "bob", "gym", 3)

	assert.ErrorIs(t, d.IncompleteGoal("alice", "bob", g.ID), goals.ErrNotCompleted)
	require.NoError(t, d.CompleteGoal("bob", "alice", g.ID))
	assert.ErrorIs(t, d.CompleteGoal("bob", "alice", g.ID), goals.ErrAlreadyCompleted)
	require.NoError(t, d.IncompleteGoal("alice", "bob", g.ID))

	mine, _ := d.MyGoals("bob", "alice")
	assert.Equal(t, enums.GoalStatusInProgress, mine[0].Status)

	_, err := d.ApproveGoal("alice", "bob", g.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, d.CompleteGoal("bob", "alice", g.ID), goals.ErrAlreadyApproved)
	assert.ErrorIs(t, d.IncompleteGoal("alice", "bob", g.ID), goals.ErrAlreadyApproved)

	assert.ErrorIs(t, d.CompleteGoal("bob", "alice", "missing"), goals.ErrGoalNotFound)
	assert.ErrorIs(t, d.SetGoalReward("alice", "bob", "missing", 1), goals.ErrGoalNotFound)
	assert.ErrorIs(t, d.SetGoalReward("alice", "bob", g.ID, -1), goals.ErrInvalidReward)
}

func TestCompleteOnlyReachesGoalsAssignedToCaller(t *testing.T) {
	d := connected(t)
	g, _ := d.AddGoal("alice", "bob", "walk dog", 3)

	assert.ErrorIs(t, d.CompleteGoal("alice", "bob", g.ID), goals.ErrGoalNotFound)
}

func TestRemoveApprovedGoalKeepsCredit(t *testing.T) {
	d := connected(t)
	g, _ := d.AddGoal("alice", "bob", "paint", 9)
	_, err := d.ApproveGoal("alice", "bob", g.ID)
	require.NoError(t, err)

	require.NoError(t, d.RemoveGoal("alice", "bob", g.ID))
	assert.ErrorIs(t, d.RemoveGoal("alice", "bob", g.ID), goals.ErrGoalNotFound)

	view, _ := d.Connection("bob", "alice")
	assert.Equal(t, int64(9), view.Me.Points)
	mine, _ := d.MyGoals("bob", "alice")
	assert.Empty(t, mine)
}

func TestApproveFailureLeavesStateUntouched(t *testing.T) {
	d := connected(t)
	g, _ := d.AddGoal("alice", "bob", "vacuum", 7)
	require.NoError(t, d.LeavePartner("bob", "alice"))

	_, err := d.ApproveGoal("alice", "bob", g.ID)
	assert.ErrorIs(t, err, ErrNoConnection)

	require.NoError(t, d.LeavePartner("alice", "bob"))
	_, err = d.ApproveGoal("alice", "bob", g.ID)
	assert.ErrorIs(t, err, ErrNoConnection)
}
