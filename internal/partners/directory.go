// Package partners implements the relationship engine: members, invitations,
// and the mirrored connection records two partners keep about each other.
package partners

import (
	"maps"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/angelmondragon/partnerz-backend/internal/coupons"
	"github.com/angelmondragon/partnerz-backend/internal/goals"
	"github.com/angelmondragon/partnerz-backend/internal/rarity"
)

// Invitation is a pending partner request, stored under the receiver.
type Invitation struct {
	SenderID          string `json:"sender_id"`
	SenderDisplayName string `json:"sender_display_name"`
}

// PartnerView names one partner of a member.
type PartnerView struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// MemberView is a read-only copy of a member.
type MemberView struct {
	ID          string        `json:"id"`
	DisplayName string        `json:"display_name"`
	Invitations []Invitation  `json:"invitations"`
	Partners    []PartnerView `json:"partners"`
}

// Side holds the balance fields of one connection record.
type Side struct {
	Points    int64 `json:"points"`
	DrawPrice int64 `json:"draw_price"`
}

// ConnectionView shows both records of a relationship from the caller's point of view.
// Me.DrawPrice is what the caller pays to draw from the partner's bank.
type ConnectionView struct {
	PartnerID          string `json:"partner_id"`
	PartnerDisplayName string `json:"partner_display_name"`
	Me                 Side   `json:"me"`
	Partner            Side   `json:"partner"`
}

// connection is one member's private record of a relationship.
type connection struct {
	partnerID   string
	partnerName string
	points      int64
	drawPrice   int64
	offered     *coupons.Bank
	goals       *goals.Board
	earned      []coupons.Coupon
}

func newConnection(partner *member) *connection {
	return &connection{
		partnerID:   partner.id,
		partnerName: partner.displayName,
		offered:     coupons.NewBank(),
		goals:       goals.NewBoard(),
	}
}

func (c *connection) side() Side {
	return Side{Points: c.points, DrawPrice: c.drawPrice}
}

func (c *connection) canCredit(amount int64) error {
	if amount > math.MaxInt64-c.points {
		return ErrPointsOverflow
	}
	return nil
}

type member struct {
	id          string
	displayName string
	invitations map[string]Invitation
	connections map[string]*connection
}

func newMember(id, displayName string) *member {
	return &member{
		id:          id,
		displayName: displayName,
		invitations: map[string]Invitation{},
		connections: map[string]*connection{},
	}
}

func (m *member) view() MemberView {
	return MemberView{
		ID:          m.id,
		DisplayName: m.displayName,
		Invitations: m.invitationList(),
		Partners:    m.partnerList(),
	}
}

func (m *member) invitationList() []Invitation {
	out := make([]Invitation, 0, len(m.invitations))
	for _, id := range slices.Sorted(maps.Keys(m.invitations)) {
		out = append(out, m.invitations[id])
	}
	return out
}

func (m *member) partnerList() []PartnerView {
	out := make([]PartnerView, 0, len(m.connections))
	for _, id := range slices.Sorted(maps.Keys(m.connections)) {
		out = append(out, PartnerView{ID: id, DisplayName: m.connections[id].partnerName})
	}
	return out
}

// Option customises a Directory.
type Option func(*Directory)

// WithSelector replaces the coupon selection policy used by draws.
func WithSelector(sel coupons.Selector) Option {
	return func(d *Directory) {
		if sel != nil {
			d.selector = sel
		}
	}
}

// Directory is the registry of members. Every operation runs under one lock,
// so no caller observes a partially applied two-sided change.
type Directory struct {
	mu       sync.Mutex
	catalog  *rarity.Catalog
	selector coupons.Selector
	members  map[string]*member
}

// NewDirectory builds an empty directory. A nil catalog falls back to the default tiers.
func NewDirectory(catalog *rarity.Catalog, opts ...Option) *Directory {
	if catalog == nil {
		catalog = rarity.Default()
	}
	d := &Directory{
		catalog: catalog,
		members: map[string]*member{},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.selector == nil {
		d.selector = coupons.NewUniformSelector(nil)
	}
	return d
}

func (d *Directory) Catalog() *rarity.Catalog {
	return d.catalog
}

// Register adds a member.
func (d *Directory) Register(id, displayName string) error {
	id = strings.TrimSpace(id)
	displayName = strings.TrimSpace(displayName)
	if id == "" || displayName == "" {
		return ErrInvalidIdentity
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.members[id]; exists {
		return ErrDuplicateIdentity
	}
	d.members[id] = newMember(id, displayName)
	return nil
}

// Member returns a copy of the member's public state.
func (d *Directory) Member(id string) (MemberView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, err := d.resolve(id)
	if err != nil {
		return MemberView{}, err
	}
	return m.view(), nil
}

// Len reports the number of registered members.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.members)
}

func (d *Directory) resolve(id string) (*member, error) {
	m, ok := d.members[id]
	if !ok {
		return nil, ErrUnknownMember
	}
	return m, nil
}

// pair resolves two members before anything is mutated.
func (d *Directory) pair(firstID, secondID string) (*member, *member, error) {
	first, err := d.resolve(firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := d.resolve(secondID)
	if err != nil {
		return nil, nil, err
	}
	return first, second, nil
}

// link resolves both members and both records of their relationship.
// mine is memberID's record for partnerID; theirs is the mirror.
func (d *Directory) link(memberID, partnerID string) (mine, theirs *connection, err error) {
	me, partner, err := d.pair(memberID, partnerID)
	if err != nil {
		return nil, nil, err
	}
	mine, ok := me.connections[partnerID]
	if !ok {
		return nil, nil, ErrNoConnection
	}
	theirs, ok = partner.connections[memberID]
	if !ok {
		return nil, nil, ErrNoConnection
	}
	return mine, theirs, nil
}

// Invite records a pending invitation from sender under receiver. Re-inviting is a no-op.
func (d *Directory) Invite(senderID, receiverID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	sender, receiver, err := d.pair(senderID, receiverID)
	if err != nil {
		return err
	}
	if senderID == receiverID {
		return ErrSelfInvitation
	}
	if _, connected := sender.connections[receiverID]; connected {
		return ErrAlreadyConnected
	}
	// A record left behind by a one-sided leave still counts as a connection.
	if _, connected := receiver.connections[senderID]; connected {
		return ErrAlreadyConnected
	}
	receiver.invitations[senderID] = Invitation{SenderID: sender.id, SenderDisplayName: sender.displayName}
	return nil
}

// AcceptInvitation connects receiver and sender with fresh records on both sides.
// Invitations in either direction between the two are cleared.
func (d *Directory) AcceptInvitation(receiverID, senderID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	receiver, sender, err := d.pair(receiverID, senderID)
	if err != nil {
		return err
	}
	if _, ok := receiver.invitations[senderID]; !ok {
		return ErrNoInvitation
	}
	if _, connected := receiver.connections[senderID]; connected {
		return ErrAlreadyConnected
	}

	receiver.connections[senderID] = newConnection(sender)
	sender.connections[receiverID] = newConnection(receiver)
	delete(receiver.invitations, senderID)
	delete(sender.invitations, receiverID)
	return nil
}

func (d *Directory) RejectInvitation(receiverID, senderID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	receiver, _, err := d.pair(receiverID, senderID)
	if err != nil {
		return err
	}
	if _, ok := receiver.invitations[senderID]; !ok {
		return ErrNoInvitation
	}
	delete(receiver.invitations, senderID)
	return nil
}

// LeavePartner removes only the caller's record. Use EndPartnership to remove both.
func (d *Directory) LeavePartner(memberID, partnerID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	me, _, err := d.pair(memberID, partnerID)
	if err != nil {
		return err
	}
	if _, ok := me.connections[partnerID]; !ok {
		return ErrNoConnection
	}
	delete(me.connections, partnerID)
	return nil
}

// EndPartnership removes both records of a relationship in one step. A record
// left behind by an earlier one-sided leave is removed too.
func (d *Directory) EndPartnership(memberID, partnerID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	me, partner, err := d.pair(memberID, partnerID)
	if err != nil {
		return err
	}
	_, mine := me.connections[partnerID]
	_, theirs := partner.connections[memberID]
	if !mine && !theirs {
		return ErrNoConnection
	}
	delete(me.connections, partnerID)
	delete(partner.connections, memberID)
	return nil
}

// Invitations lists pending invitations addressed to the member, ordered by sender id.
func (d *Directory) Invitations(memberID string) ([]Invitation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, err := d.resolve(memberID)
	if err != nil {
		return nil, err
	}
	return m.invitationList(), nil
}

// Partners lists the member's partners ordered by id.
func (d *Directory) Partners(memberID string) ([]PartnerView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, err := d.resolve(memberID)
	if err != nil {
		return nil, err
	}
	return m.partnerList(), nil
}

// Connection returns both sides of a relationship as seen by memberID.
func (d *Directory) Connection(memberID, partnerID string) (ConnectionView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	mine, theirs, err := d.link(memberID, partnerID)
	if err != nil {
		return ConnectionView{}, err
	}
	return ConnectionView{
		PartnerID:          mine.partnerID,
		PartnerDisplayName: mine.partnerName,
		Me:                 mine.side(),
		Partner:            theirs.side(),
	}, nil
}

// Credit reports points added to a balance and the balance afterwards.
type Credit struct {
	Amount  int64 `json:"amount"`
	Balance int64 `json:"balance"`
}

// SendPoints credits receiver's balance toward sender. The sender is not debited.
func (d *Directory) SendPoints(senderID, receiverID string, points int64) (Credit, error) {
	if points < 0 {
		return Credit{}, ErrInvalidPoints
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	received, _, err := d.link(receiverID, senderID)
	if err != nil {
		return Credit{}, err
	}
	if err := received.canCredit(points); err != nil {
		return Credit{}, err
	}
	received.points += points
	return Credit{Amount: points, Balance: received.points}, nil
}
