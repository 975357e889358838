package partners

import "github.com/angelmondragon/partnerz-backend/internal/goals"

// Goals live on the assigner's record for the recipient. The recipient only
// completes them; every other change is issued by the assigner.

func (d *Directory) AddGoal(assignerID, recipientID, description string, reward int64) (goals.Goal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	assigned, _, err := d.link(assignerID, recipientID)
	if err != nil {
		return goals.Goal{}, err
	}
	return assigned.goals.Add(description, reward)
}

// RemoveGoal deletes a goal in any status. Points already credited stay.
func (d *Directory) RemoveGoal(assignerID, recipientID, goalID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	assigned, _, err := d.link(assignerID, recipientID)
	if err != nil {
		return err
	}
	return assigned.goals.Remove(goalID)
}

func (d *Directory) SetGoalReward(assignerID, recipientID, goalID string, reward int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	assigned, _, err := d.link(assignerID, recipientID)
	if err != nil {
		return err
	}
	return assigned.goals.SetReward(goalID, reward)
}

// CompleteGoal is issued by the recipient of the goal.
func (d *Directory) CompleteGoal(recipientID, assignerID, goalID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, assigned, err := d.link(recipientID, assignerID)
	if err != nil {
		return err
	}
	_, err = assigned.goals.Apply(goalID, goals.ActionComplete)
	return err
}

// IncompleteGoal sends a completed goal back to in progress.
func (d *Directory) IncompleteGoal(assignerID, recipientID, goalID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	assigned, _, err := d.link(assignerID, recipientID)
	if err != nil {
		return err
	}
	_, err = assigned.goals.Apply(goalID, goals.ActionIncomplete)
	return err
}

// ApproveGoal marks the goal approved and credits its reward to the recipient's
// record for the assigner.
func (d *Directory) ApproveGoal(assignerID, recipientID, goalID string) (Credit, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	assigned, recipient, err := d.link(assignerID, recipientID)
	if err != nil {
		return Credit{}, err
	}
	before, to, err := assigned.goals.Peek(goalID, goals.ActionApprove)
	if err != nil {
		return Credit{}, err
	}
	var amount int64
	if goals.Credits(before.Status, to) {
		amount = before.Reward
	}
	if err := recipient.canCredit(amount); err != nil {
		return Credit{}, err
	}
	if _, err := assigned.goals.Apply(goalID, goals.ActionApprove); err != nil {
		return Credit{}, err
	}
	recipient.points += amount
	return Credit{Amount: amount, Balance: recipient.points}, nil
}

// MyGoals lists the goals assignerID gave recipientID.
func (d *Directory) MyGoals(recipientID, assignerID string) ([]goals.Goal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, assigned, err := d.link(recipientID, assignerID)
	if err != nil {
		return nil, err
	}
	return assigned.goals.List(), nil
}

// AssignedGoals lists the goals assignerID gave recipientID, from the assigner's side.
func (d *Directory) AssignedGoals(assignerID, recipientID string) ([]goals.Goal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	assigned, _, err := d.link(assignerID, recipientID)
	if err != nil {
		return nil, err
	}
	return assigned.goals.List(), nil
}
