package partners

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/partnerz-backend/internal/coupons"
	"github.com/angelmondragon/partnerz-backend/internal/goals"
	"github.com/angelmondragon/partnerz-backend/internal/snapshot"
	pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"
)

// ErrInvalidSnapshot wraps every problem found while restoring a snapshot.
var ErrInvalidSnapshot = pkgerrors.Define(pkgerrors.CodeValidation, "INVALID_SNAPSHOT", "snapshot does not describe a consistent directory")

// Snapshot returns a deep copy of the directory, members ordered by id.
func (d *Directory) Snapshot() snapshot.State {
	d.mu.Lock()
	defer d.mu.Unlock()

	state := snapshot.State{
		Version: snapshot.CurrentVersion,
		TakenAt: time.Now().UTC(),
		Members: make([]snapshot.Member, 0, len(d.members)),
	}
	for _, id := range slices.Sorted(maps.Keys(d.members)) {
		m := d.members[id]
		out := snapshot.Member{ID: m.id, DisplayName: m.displayName}
		for _, inv := range m.invitationList() {
			out.Invitations = append(out.Invitations, snapshot.Invitation(inv))
		}
		for _, partnerID := range slices.Sorted(maps.Keys(m.connections)) {
			c := m.connections[partnerID]
			out.Connections = append(out.Connections, snapshot.Connection{
				PartnerID:          c.partnerID,
				PartnerDisplayName: c.partnerName,
				Points:             c.points,
				DrawPrice:          c.drawPrice,
				Offered:            c.offered.List(),
				Goals:              c.goals.List(),
				Earned:             slices.Clone(c.earned),
			})
		}
		state.Members = append(state.Members, out)
	}
	return state
}

// Restore replaces the directory contents with state. Nothing changes unless
// the whole state is consistent; every problem found is reported together.
func (d *Directory) Restore(state snapshot.State) error {
	members, err := d.build(state)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "restore snapshot").WithDetails(multierrStrings(err))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.members = members
	return nil
}

func multierrStrings(err error) []string {
	errs := multierr.Errors(err)
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}

func (d *Directory) build(state snapshot.State) (map[string]*member, error) {
	var errs error
	invalid := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf("%w: %s", ErrInvalidSnapshot, fmt.Sprintf(format, args...)))
	}

	if state.Version != snapshot.CurrentVersion {
		invalid("unsupported version %d", state.Version)
	}

	members := make(map[string]*member, len(state.Members))
	for _, sm := range state.Members {
		if sm.ID == "" || sm.DisplayName == "" {
			invalid("member %q has an empty identity", sm.ID)
			continue
		}
		if _, dup := members[sm.ID]; dup {
			invalid("member %q listed twice", sm.ID)
			continue
		}
		members[sm.ID] = newMember(sm.ID, sm.DisplayName)
	}

	for _, sm := range state.Members {
		m, ok := members[sm.ID]
		if !ok || m.displayName != sm.DisplayName {
			continue
		}
		for _, inv := range sm.Invitations {
			if _, known := members[inv.SenderID]; !known || inv.SenderID == sm.ID {
				invalid("member %q has an invitation from unknown sender %q", sm.ID, inv.SenderID)
				continue
			}
			m.invitations[inv.SenderID] = Invitation(inv)
		}
		for _, sc := range sm.Connections {
			if c := d.buildConnection(sm.ID, sc, members, invalid); c != nil {
				if _, dup := m.connections[sc.PartnerID]; dup {
					invalid("member %q lists partner %q twice", sm.ID, sc.PartnerID)
					continue
				}
				m.connections[sc.PartnerID] = c
			}
		}
	}

	for _, id := range slices.Sorted(maps.Keys(members)) {
		m := members[id]
		for partnerID := range m.connections {
			if _, mirrored := members[partnerID].connections[id]; !mirrored {
				invalid("connection %q -> %q has no mirror", id, partnerID)
			}
			if _, pending := m.invitations[partnerID]; pending {
				invalid("member %q has a pending invitation from partner %q", id, partnerID)
			}
		}
	}

	if errs != nil {
		return nil, errs
	}
	return members, nil
}

func (d *Directory) buildConnection(ownerID string, sc snapshot.Connection, members map[string]*member, invalid func(string, ...any)) *connection {
	if _, known := members[sc.PartnerID]; !known || sc.PartnerID == ownerID {
		invalid("member %q is connected to unknown partner %q", ownerID, sc.PartnerID)
		return nil
	}
	ok := true
	if sc.Points < 0 || sc.DrawPrice < 0 {
		invalid("connection %q -> %q has a negative balance or price", ownerID, sc.PartnerID)
		ok = false
	}

	c := &connection{
		partnerID:   sc.PartnerID,
		partnerName: sc.PartnerDisplayName,
		points:      sc.Points,
		drawPrice:   sc.DrawPrice,
		offered:     coupons.NewBank(),
		goals:       goals.NewBoard(),
	}
	for _, coupon := range sc.Offered {
		if !d.validCoupon(coupon) {
			invalid("connection %q -> %q has an invalid offered coupon %q", ownerID, sc.PartnerID, coupon.ID)
			ok = false
			continue
		}
		c.offered.Put(coupon)
	}
	for _, coupon := range sc.Earned {
		if !d.validCoupon(coupon) {
			invalid("connection %q -> %q has an invalid earned coupon %q", ownerID, sc.PartnerID, coupon.ID)
			ok = false
			continue
		}
		c.earned = append(c.earned, coupon)
	}
	for _, g := range sc.Goals {
		if g.ID == "" || g.Description == "" || g.Reward < 0 || !g.Status.IsValid() {
			invalid("connection %q -> %q has an invalid goal %q", ownerID, sc.PartnerID, g.ID)
			ok = false
			continue
		}
		c.goals.Put(g)
	}
	if !ok {
		return nil
	}
	return c
}

func (d *Directory) validCoupon(c coupons.Coupon) bool {
	if c.ID == "" || c.Content == "" {
		return false
	}
	_, err := d.catalog.Lookup(c.Rarity)
	return err == nil
}
