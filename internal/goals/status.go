package goals

import (
	"github.com/angelmondragon/partnerz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"
)

var (
	ErrAlreadyCompleted = pkgerrors.Define(pkgerrors.CodeStateConflict, "ALREADY_COMPLETED", "goal is already completed")
	ErrAlreadyApproved  = pkgerrors.Define(pkgerrors.CodeStateConflict, "ALREADY_APPROVED", "goal is already approved")
	ErrNotCompleted     = pkgerrors.Define(pkgerrors.CodeStateConflict, "NOT_COMPLETED", "goal is not completed")
)

// Action is a lifecycle command applied to a goal.
type Action string

const (
	ActionComplete   Action = "complete"
	ActionIncomplete Action = "incomplete"
	ActionApprove    Action = "approve"
)

type transitionKey struct {
	from   enums.GoalStatus
	action Action
}

type transitionResult struct {
	to  enums.GoalStatus
	err error
}

var transitions = map[transitionKey]transitionResult{
	{enums.GoalStatusInProgress, ActionComplete}:   {to: enums.GoalStatusCompleted},
	{enums.GoalStatusCompleted, ActionComplete}:    {err: ErrAlreadyCompleted},
	{enums.GoalStatusApproved, ActionComplete}:     {err: ErrAlreadyApproved},
	{enums.GoalStatusInProgress, ActionApprove}:    {to: enums.GoalStatusApproved},
	{enums.GoalStatusCompleted, ActionApprove}:     {to: enums.GoalStatusApproved},
	{enums.GoalStatusApproved, ActionApprove}:      {err: ErrAlreadyApproved},
	{enums.GoalStatusCompleted, ActionIncomplete}:  {to: enums.GoalStatusInProgress},
	{enums.GoalStatusInProgress, ActionIncomplete}: {err: ErrNotCompleted},
	{enums.GoalStatusApproved, ActionIncomplete}:   {err: ErrAlreadyApproved},
}

// Transition returns the status reached by applying action to from. It has no side effects.
func Transition(from enums.GoalStatus, action Action) (enums.GoalStatus, error) {
	result, ok := transitions[transitionKey{from: from, action: action}]
	if !ok {
		return from, pkgerrors.New(pkgerrors.CodeInternal, "unknown goal transition "+string(from)+"/"+string(action))
	}
	if result.err != nil {
		return from, result.err
	}
	return result.to, nil
}

// Credits reports whether reaching to from from releases the goal reward.
func Credits(from, to enums.GoalStatus) bool {
	return from != enums.GoalStatusApproved && to == enums.GoalStatusApproved
}
