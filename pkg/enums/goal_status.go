package enums

import "fmt"

// GoalStatus tracks where a partner goal sits in its lifecycle.
type GoalStatus string

const (
	GoalStatusInProgress GoalStatus = "in_progress"
	GoalStatusCompleted  GoalStatus = "completed"
	GoalStatusApproved   GoalStatus = "approved"
)

var validGoalStatuses = []GoalStatus{
	GoalStatusInProgress,
	GoalStatusCompleted,
	GoalStatusApproved,
}

// String implements fmt.Stringer.
func (s GoalStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches a known goal status.
func (s GoalStatus) IsValid() bool {
	for _, candidate := range validGoalStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseGoalStatus converts raw input into GoalStatus.
func ParseGoalStatus(value string) (GoalStatus, error) {
	for _, candidate := range validGoalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid goal status %q", value)
}
