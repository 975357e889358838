package enums

import "fmt"

// LedgerEventType classifies a points balance movement.
type LedgerEventType string

const (
	LedgerEventTypeGoalReward LedgerEventType = "goal_reward"
	LedgerEventTypeCouponDraw LedgerEventType = "coupon_draw"
	LedgerEventTypePointsGift LedgerEventType = "points_gift"
)

var validLedgerEventTypes = []LedgerEventType{
	LedgerEventTypeGoalReward,
	LedgerEventTypeCouponDraw,
	LedgerEventTypePointsGift,
}

// IsValid reports whether the value matches the canonical ledger event enum.
func (t LedgerEventType) IsValid() bool {
	for _, candidate := range validLedgerEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsDebit reports whether the event removes points from the member's balance.
func (t LedgerEventType) IsDebit() bool {
	return t == LedgerEventTypeCouponDraw
}

// ParseLedgerEventType converts raw input into LedgerEventType.
func ParseLedgerEventType(value string) (LedgerEventType, error) {
	for _, candidate := range validLedgerEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger event type %q", value)
}
