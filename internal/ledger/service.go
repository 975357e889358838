package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/partnerz-backend/pkg/enums"
)

// Service defines operations that record and read ledger events.
type Service interface {
	RecordEvent(ctx context.Context, input RecordEventInput) (*Event, error)
	List(ctx context.Context, memberID, partnerID string) ([]Event, error)
	Export(ctx context.Context) ([]Event, error)
	Import(ctx context.Context, events []Event) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

// RecordEventInput captures the immutable data a ledger event requires.
// Amount is always positive; the type says which way the points moved.
type RecordEventInput struct {
	MemberID    string                `json:"member_id"`
	PartnerID   string                `json:"partner_id"`
	Type        enums.LedgerEventType `json:"type"`
	Amount      int64                 `json:"amount"`
	Balance     int64                 `json:"balance"`
	ReferenceID string                `json:"reference_id"`
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) RecordEvent(ctx context.Context, input RecordEventInput) (*Event, error) {
	if input.MemberID == "" {
		return nil, fmt.Errorf("member id is required")
	}
	if input.PartnerID == "" {
		return nil, fmt.Errorf("partner id is required")
	}
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("invalid ledger event type %q", input.Type)
	}
	if input.Amount < 0 {
		return nil, fmt.Errorf("ledger amount must not be negative")
	}

	event := &Event{
		ID:          uuid.New(),
		MemberID:    input.MemberID,
		PartnerID:   input.PartnerID,
		Type:        input.Type,
		Amount:      input.Amount,
		Balance:     input.Balance,
		ReferenceID: input.ReferenceID,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *service) List(ctx context.Context, memberID, partnerID string) ([]Event, error) {
	if memberID == "" || partnerID == "" {
		return nil, fmt.Errorf("member and partner ids are required")
	}
	return s.repo.ListByPair(ctx, memberID, partnerID)
}

// Export returns every stored event, oldest first.
func (s *service) Export(ctx context.Context) ([]Event, error) {
	return s.repo.All(ctx)
}

// Import replaces the stored events. Events with an unknown type or a negative
// amount are rejected and nothing is replaced.
func (s *service) Import(ctx context.Context, events []Event) error {
	for i, event := range events {
		if !event.Type.IsValid() {
			return fmt.Errorf("ledger event %d: invalid type %q", i, event.Type)
		}
		if event.Amount < 0 {
			return fmt.Errorf("ledger event %d: amount must not be negative", i)
		}
	}
	return s.repo.Replace(ctx, events)
}
