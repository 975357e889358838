// Package goals implements reward-bearing partner goals and their lifecycle.
package goals

import (
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/partnerz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"
)

var (
	ErrGoalNotFound       = pkgerrors.Define(pkgerrors.CodeNotFound, "GOAL_NOT_FOUND", "there is no goal corresponding to the given id")
	ErrInvalidDescription = pkgerrors.Define(pkgerrors.CodeValidation, "INVALID_DESCRIPTION", "goal description can not be empty")
	ErrInvalidReward      = pkgerrors.Define(pkgerrors.CodeValidation, "INVALID_REWARD", "goal reward must be a non-negative whole number")
)

var newID = uuid.NewString

// Goal is a value copy of a goal held on a board.
type Goal struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	Reward      int64            `json:"reward"`
	Status      enums.GoalStatus `json:"status"`
}

// ValidateReward rejects negative rewards.
func ValidateReward(reward int64) error {
	if reward < 0 {
		return ErrInvalidReward
	}
	return nil
}

// Board holds the goals one member assigned to one partner, in insertion order.
// It is not safe for concurrent use.
type Board struct {
	byID  map[string]*Goal
	order []string
}

func NewBoard() *Board {
	return &Board{byID: map[string]*Goal{}}
}

// Add creates an in-progress goal and returns it.
func (b *Board) Add(description string, reward int64) (Goal, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Goal{}, ErrInvalidDescription
	}
	if err := ValidateReward(reward); err != nil {
		return Goal{}, err
	}
	g := &Goal{
		ID:          newID(),
		Description: description,
		Reward:      reward,
		Status:      enums.GoalStatusInProgress,
	}
	b.byID[g.ID] = g
	b.order = append(b.order, g.ID)
	return *g, nil
}

// Put inserts a fully formed goal, replacing any goal with the same id.
func (b *Board) Put(g Goal) {
	if _, exists := b.byID[g.ID]; !exists {
		b.order = append(b.order, g.ID)
	}
	stored := g
	b.byID[g.ID] = &stored
}

// Get returns a copy of the goal.
func (b *Board) Get(id string) (Goal, error) {
	g, ok := b.byID[id]
	if !ok {
		return Goal{}, ErrGoalNotFound
	}
	return *g, nil
}

// Remove deletes the goal regardless of its status.
func (b *Board) Remove(id string) error {
	if _, ok := b.byID[id]; !ok {
		return ErrGoalNotFound
	}
	delete(b.byID, id)
	for i, candidate := range b.order {
		if candidate == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return nil
}

// SetReward replaces the reward of an existing goal.
func (b *Board) SetReward(id string, reward int64) error {
	g, ok := b.byID[id]
	if !ok {
		return ErrGoalNotFound
	}
	if err := ValidateReward(reward); err != nil {
		return err
	}
	g.Reward = reward
	return nil
}

// Peek reports the outcome of applying action without changing the board.
func (b *Board) Peek(id string, action Action) (Goal, enums.GoalStatus, error) {
	g, ok := b.byID[id]
	if !ok {
		return Goal{}, "", ErrGoalNotFound
	}
	to, err := Transition(g.Status, action)
	if err != nil {
		return *g, g.Status, err
	}
	return *g, to, nil
}

// Apply moves the goal through the lifecycle and returns its previous state.
func (b *Board) Apply(id string, action Action) (Goal, error) {
	before, to, err := b.Peek(id, action)
	if err != nil {
		return before, err
	}
	b.byID[id].Status = to
	return before, nil
}

// List returns copies of all goals in insertion order.
func (b *Board) List() []Goal {
	out := make([]Goal, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.byID[id])
	}
	return out
}

func (b *Board) Len() int {
	return len(b.order)
}
