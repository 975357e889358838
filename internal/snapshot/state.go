// Package snapshot persists point-in-time copies of the member directory.
package snapshot

import (
	"context"
	"time"

	"github.com/angelmondragon/partnerz-backend/internal/coupons"
	"github.com/angelmondragon/partnerz-backend/internal/goals"
	"github.com/angelmondragon/partnerz-backend/internal/ledger"
	pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"
)

// CurrentVersion is written into every new State.
const CurrentVersion = 1

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = pkgerrors.Define(pkgerrors.CodeNotFound, "NO_SNAPSHOT", "no directory snapshot has been saved")

// State is a deep copy of the directory plus the ledger that explains its balances.
type State struct {
	Version int            `json:"version"`
	TakenAt time.Time      `json:"taken_at"`
	Members []Member       `json:"members"`
	Ledger  []ledger.Event `json:"ledger,omitempty"`
}

type Member struct {
	ID          string       `json:"id"`
	DisplayName string       `json:"display_name"`
	Invitations []Invitation `json:"invitations,omitempty"`
	Connections []Connection `json:"connections,omitempty"`
}

type Invitation struct {
	SenderID          string `json:"sender_id"`
	SenderDisplayName string `json:"sender_display_name"`
}

// Connection is one member's record of one partner.
type Connection struct {
	PartnerID          string           `json:"partner_id"`
	PartnerDisplayName string           `json:"partner_display_name"`
	Points             int64            `json:"points"`
	DrawPrice          int64            `json:"draw_price"`
	Offered            []coupons.Coupon `json:"offered,omitempty"`
	Goals              []goals.Goal     `json:"goals,omitempty"`
	Earned             []coupons.Coupon `json:"earned,omitempty"`
}

// Store saves and loads the latest State.
type Store interface {
	Save(ctx context.Context, state State) error
	Load(ctx context.Context) (State, error)
}
