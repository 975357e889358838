package partners

import (
	"context"
	"fmt"

	"github.com/angelmondragon/partnerz-backend/internal/coupons"
	"github.com/angelmondragon/partnerz-backend/internal/goals"
	"github.com/angelmondragon/partnerz-backend/internal/ledger"
	"github.com/angelmondragon/partnerz-backend/internal/rarity"
	"github.com/angelmondragon/partnerz-backend/internal/snapshot"
	"github.com/angelmondragon/partnerz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"
	"github.com/angelmondragon/partnerz-backend/pkg/logger"
	"github.com/angelmondragon/partnerz-backend/pkg/metrics"
)

// Service exposes the directory to transports with logging, metrics, and a points ledger.
type Service interface {
	Register(ctx context.Context, memberID, displayName string) (MemberView, error)
	Member(ctx context.Context, memberID string) (MemberView, error)

	Invite(ctx context.Context, senderID, receiverID string) error
	AcceptInvitation(ctx context.Context, receiverID, senderID string) error
	RejectInvitation(ctx context.Context, receiverID, senderID string) error
	EndPartnership(ctx context.Context, memberID, partnerID string) error
	Invitations(ctx context.Context, memberID string) ([]Invitation, error)
	Partners(ctx context.Context, memberID string) ([]PartnerView, error)
	Connection(ctx context.Context, memberID, partnerID string) (ConnectionView, error)
	SendPoints(ctx context.Context, senderID, receiverID string, points int64) (Credit, error)

	AddGoal(ctx context.Context, assignerID, recipientID, description string, reward int64) (goals.Goal, error)
	RemoveGoal(ctx context.Context, assignerID, recipientID, goalID string) error
	SetGoalReward(ctx context.Context, assignerID, recipientID, goalID string, reward int64) error
	CompleteGoal(ctx context.Context, recipientID, assignerID, goalID string) error
	IncompleteGoal(ctx context.Context, assignerID, recipientID, goalID string) error
	ApproveGoal(ctx context.Context, assignerID, recipientID, goalID string) (Credit, error)
	MyGoals(ctx context.Context, recipientID, assignerID string) ([]goals.Goal, error)
	AssignedGoals(ctx context.Context, assignerID, recipientID string) ([]goals.Goal, error)

	CreateCoupon(ctx context.Context, ownerID, partnerID, content string) (coupons.Coupon, error)
	RemoveCoupon(ctx context.Context, ownerID, partnerID, couponID string) error
	EditCoupon(ctx context.Context, ownerID, partnerID, couponID, content string) error
	SetCouponRarity(ctx context.Context, ownerID, partnerID, couponID, rarityName string) error
	SetRandomCouponPrice(ctx context.Context, ownerID, partnerID string, price int64) error
	DrawCoupon(ctx context.Context, drawerID, offererID string) (DrawReceipt, error)
	SendCoupon(ctx context.Context, senderID, receiverID, content string) (coupons.Coupon, error)
	OfferedCoupons(ctx context.Context, ownerID, partnerID string) ([]coupons.Coupon, error)
	EarnedCoupons(ctx context.Context, memberID, partnerID string) ([]coupons.Coupon, error)
	Rarities(ctx context.Context) []rarity.Rarity

	Ledger(ctx context.Context, memberID, partnerID string) ([]ledger.Event, error)

	Snapshot(ctx context.Context) (snapshot.State, error)
	Restore(ctx context.Context, state snapshot.State) error
}

// ServiceParams wires the partners service.
type ServiceParams struct {
	Directory *Directory
	Ledger    ledger.Service
	Metrics   *metrics.EngineMetrics
	Logger    *logger.Logger
}

type service struct {
	dir     *Directory
	ledger  ledger.Service
	metrics *metrics.EngineMetrics
	logg    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Directory == nil {
		return nil, fmt.Errorf("directory required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		dir:     params.Directory,
		ledger:  params.Ledger,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

func (s *service) scope(ctx context.Context, memberID, partnerID string) context.Context {
	ctx = s.logg.WithMemberID(ctx, memberID)
	if partnerID != "" {
		ctx = s.logg.WithPartnerID(ctx, partnerID)
	}
	return ctx
}

// finish records the outcome of a mutating operation.
func (s *service) finish(ctx context.Context, op string, err error) error {
	s.metrics.Observe(op, err)
	msg := "partners." + op
	if err == nil {
		s.logg.Info(ctx, msg)
		return nil
	}
	if !isRejection(err) {
		s.logg.Error(ctx, msg+" failed", err)
		return err
	}
	s.logg.Warn(s.logg.WithField(ctx, "reason", pkgerrors.ReasonOf(err)), msg+" rejected")
	return err
}

// isRejection reports whether err is a caller mistake rather than a fault.
func isRejection(err error) bool {
	switch pkgerrors.As(err).Code() {
	case pkgerrors.CodeValidation, pkgerrors.CodeNotFound, pkgerrors.CodeConflict, pkgerrors.CodeStateConflict:
		return true
	}
	return false
}

func (s *service) record(ctx context.Context, input ledger.RecordEventInput) {
	if input.Amount <= 0 {
		return
	}
	s.metrics.AddPoints(string(input.Type), input.Amount)
	if _, err := s.ledger.RecordEvent(ctx, input); err != nil {
		s.logg.Error(ctx, "ledger record failed", err)
	}
}

func (s *service) Register(ctx context.Context, memberID, displayName string) (MemberView, error) {
	ctx = s.scope(ctx, memberID, "")
	if err := s.finish(ctx, "register", s.dir.Register(memberID, displayName)); err != nil {
		return MemberView{}, err
	}
	s.metrics.SetMembers(s.dir.Len())
	return s.dir.Member(memberID)
}

func (s *service) Member(ctx context.Context, memberID string) (MemberView, error) {
	return s.dir.Member(memberID)
}

func (s *service) Invite(ctx context.Context, senderID, receiverID string) error {
	ctx = s.scope(ctx, senderID, receiverID)
	return s.finish(ctx, "invite", s.dir.Invite(senderID, receiverID))
}

func (s *service) AcceptInvitation(ctx context.Context, receiverID, senderID string) error {
	ctx = s.scope(ctx, receiverID, senderID)
	return s.finish(ctx, "accept_invitation", s.dir.AcceptInvitation(receiverID, senderID))
}

func (s *service) RejectInvitation(ctx context.Context, receiverID, senderID string) error {
	ctx = s.scope(ctx, receiverID, senderID)
	return s.finish(ctx, "reject_invitation", s.dir.RejectInvitation(receiverID, senderID))
}

func (s *service) EndPartnership(ctx context.Context, memberID, partnerID string) error {
	ctx = s.scope(ctx, memberID, partnerID)
	return s.finish(ctx, "end_partnership", s.dir.EndPartnership(memberID, partnerID))
}

func (s *service) Invitations(ctx context.Context, memberID string) ([]Invitation, error) {
	return s.dir.Invitations(memberID)
}

func (s *service) Partners(ctx context.Context, memberID string) ([]PartnerView, error) {
	return s.dir.Partners(memberID)
}

func (s *service) Connection(ctx context.Context, memberID, partnerID string) (ConnectionView, error) {
	return s.dir.Connection(memberID, partnerID)
}

func (s *service) SendPoints(ctx context.Context, senderID, receiverID string, points int64) (Credit, error) {
	ctx = s.scope(ctx, senderID, receiverID)
	credit, err := s.dir.SendPoints(senderID, receiverID, points)
	if err := s.finish(ctx, "send_points", err); err != nil {
		return Credit{}, err
	}
	s.record(ctx, ledger.RecordEventInput{
		MemberID:  receiverID,
		PartnerID: senderID,
		Type:      enums.LedgerEventTypePointsGift,
		Amount:    credit.Amount,
		Balance:   credit.Balance,
	})
	return credit, nil
}

func (s *service) AddGoal(ctx context.Context, assignerID, recipientID, description string, reward int64) (goals.Goal, error) {
	ctx = s.scope(ctx, assignerID, recipientID)
	g, err := s.dir.AddGoal(assignerID, recipientID, description, reward)
	if err := s.finish(s.logg.WithField(ctx, "goal_id", g.ID), "add_goal", err); err != nil {
		return goals.Goal{}, err
	}
	return g, nil
}

func (s *service) RemoveGoal(ctx context.Context, assignerID, recipientID, goalID string) error {
	ctx = s.logg.WithField(s.scope(ctx, assignerID, recipientID), "goal_id", goalID)
	return s.finish(ctx, "remove_goal", s.dir.RemoveGoal(assignerID, recipientID, goalID))
}

func (s *service) SetGoalReward(ctx context.Context, assignerID, recipientID, goalID string, reward int64) error {
	ctx = s.logg.WithField(s.scope(ctx, assignerID, recipientID), "goal_id", goalID)
	return s.finish(ctx, "set_goal_reward", s.dir.SetGoalReward(assignerID, recipientID, goalID, reward))
}

func (s *service) CompleteGoal(ctx context.Context, recipientID, assignerID, goalID string) error {
	ctx = s.logg.WithField(s.scope(ctx, recipientID, assignerID), "goal_id", goalID)
	return s.finish(ctx, "complete_goal", s.dir.CompleteGoal(recipientID, assignerID, goalID))
}

func (s *service) IncompleteGoal(ctx context.Context, assignerID, recipientID, goalID string) error {
	ctx = s.logg.WithField(s.scope(ctx, assignerID, recipientID), "goal_id", goalID)
	return s.finish(ctx, "incomplete_goal", s.dir.IncompleteGoal(assignerID, recipientID, goalID))
}

func (s *service) ApproveGoal(ctx context.Context, assignerID, recipientID, goalID string) (Credit, error) {
	ctx = s.logg.WithField(s.scope(ctx, assignerID, recipientID), "goal_id", goalID)
	credit, err := s.dir.ApproveGoal(assignerID, recipientID, goalID)
	if err := s.finish(ctx, "approve_goal", err); err != nil {
		return Credit{}, err
	}
	s.record(ctx, ledger.RecordEventInput{
		MemberID:    recipientID,
		PartnerID:   assignerID,
		Type:        enums.LedgerEventTypeGoalReward,
		Amount:      credit.Amount,
		Balance:     credit.Balance,
		ReferenceID: goalID,
	})
	return credit, nil
}

func (s *service) MyGoals(ctx context.Context, recipientID, assignerID string) ([]goals.Goal, error) {
	return s.dir.MyGoals(recipientID, assignerID)
}

func (s *service) AssignedGoals(ctx context.Context, assignerID, recipientID string) ([]goals.Goal, error) {
	return s.dir.AssignedGoals(assignerID, recipientID)
}

func (s *service) CreateCoupon(ctx context.Context, ownerID, partnerID, content string) (coupons.Coupon, error) {
	ctx = s.scope(ctx, ownerID, partnerID)
	c, err := s.dir.CreateCoupon(ownerID, partnerID, content)
	if err := s.finish(s.logg.WithField(ctx, "coupon_id", c.ID), "create_coupon", err); err != nil {
		return coupons.Coupon{}, err
	}
	return c, nil
}

func (s *service) RemoveCoupon(ctx context.Context, ownerID, partnerID, couponID string) error {
	ctx = s.logg.WithField(s.scope(ctx, ownerID, partnerID), "coupon_id", couponID)
	return s.finish(ctx, "remove_coupon", s.dir.RemoveCoupon(ownerID, partnerID, couponID))
}

func (s *service) EditCoupon(ctx context.Context, ownerID, partnerID, couponID, content string) error {
	ctx = s.logg.WithField(s.scope(ctx, ownerID, partnerID), "coupon_id", couponID)
	return s.finish(ctx, "edit_coupon", s.dir.EditCoupon(ownerID, partnerID, couponID, content))
}

func (s *service) SetCouponRarity(ctx context.Context, ownerID, partnerID, couponID, rarityName string) error {
	ctx = s.logg.WithFields(s.scope(ctx, ownerID, partnerID), map[string]any{"coupon_id": couponID, "rarity": rarityName})
	return s.finish(ctx, "set_coupon_rarity", s.dir.SetCouponRarity(ownerID, partnerID, couponID, rarityName))
}

func (s *service) SetRandomCouponPrice(ctx context.Context, ownerID, partnerID string, price int64) error {
	ctx = s.logg.WithField(s.scope(ctx, ownerID, partnerID), "price", price)
	return s.finish(ctx, "set_coupon_price", s.dir.SetRandomCouponPrice(ownerID, partnerID, price))
}

func (s *service) DrawCoupon(ctx context.Context, drawerID, offererID string) (DrawReceipt, error) {
	ctx = s.scope(ctx, drawerID, offererID)
	receipt, err := s.dir.DrawCoupon(drawerID, offererID)
	if err := s.finish(s.logg.WithField(ctx, "coupon_id", receipt.Coupon.ID), "draw_coupon", err); err != nil {
		return DrawReceipt{}, err
	}
	s.record(ctx, ledger.RecordEventInput{
		MemberID:    drawerID,
		PartnerID:   offererID,
		Type:        enums.LedgerEventTypeCouponDraw,
		Amount:      receipt.Price,
		Balance:     receipt.Balance,
		ReferenceID: receipt.Coupon.ID,
	})
	return receipt, nil
}

func (s *service) SendCoupon(ctx context.Context, senderID, receiverID, content string) (coupons.Coupon, error) {
	ctx = s.scope(ctx, senderID, receiverID)
	c, err := s.dir.SendCoupon(senderID, receiverID, content)
	if err := s.finish(s.logg.WithField(ctx, "coupon_id", c.ID), "send_coupon", err); err != nil {
		return coupons.Coupon{}, err
	}
	return c, nil
}

func (s *service) OfferedCoupons(ctx context.Context, ownerID, partnerID string) ([]coupons.Coupon, error) {
	return s.dir.OfferedCoupons(ownerID, partnerID)
}

func (s *service) EarnedCoupons(ctx context.Context, memberID, partnerID string) ([]coupons.Coupon, error) {
	return s.dir.EarnedCoupons(memberID, partnerID)
}

func (s *service) Rarities(ctx context.Context) []rarity.Rarity {
	return s.dir.Rarities()
}

// Ledger lists the point movements on memberID's balance toward partnerID.
func (s *service) Ledger(ctx context.Context, memberID, partnerID string) ([]ledger.Event, error) {
	if _, err := s.dir.Connection(memberID, partnerID); err != nil {
		return nil, err
	}
	events, err := s.ledger.List(ctx, memberID, partnerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list ledger events")
	}
	return events, nil
}

// Snapshot copies the directory together with the ledger events behind its balances.
func (s *service) Snapshot(ctx context.Context) (snapshot.State, error) {
	state := s.dir.Snapshot()
	events, err := s.ledger.Export(ctx)
	if err != nil {
		return snapshot.State{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "export ledger events")
	}
	state.Ledger = events
	return state, nil
}

// Restore loads state into the directory and the ledger. An inconsistent
// directory or ledger leaves both untouched.
func (s *service) Restore(ctx context.Context, state snapshot.State) error {
	previous, err := s.ledger.Export(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "export ledger events")
	}
	if err := s.ledger.Import(ctx, state.Ledger); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "restore ledger")
	}
	if err := s.dir.Restore(state); err != nil {
		if rollbackErr := s.ledger.Import(ctx, previous); rollbackErr != nil {
			s.logg.Error(ctx, "ledger rollback failed", rollbackErr)
		}
		return err
	}
	s.metrics.SetMembers(s.dir.Len())
	return nil
}
