package ledger

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/partnerz-backend/pkg/enums"
)

const defaultCapacity = 10000

// Event records one movement of a member's points toward one partner.
type Event struct {
	ID          uuid.UUID             `json:"id"`
	MemberID    string                `json:"member_id"`
	PartnerID   string                `json:"partner_id"`
	Type        enums.LedgerEventType `json:"type"`
	Amount      int64                 `json:"amount"`
	Balance     int64                 `json:"balance"`
	ReferenceID string                `json:"reference_id,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// Repository manages storage for ledger events.
type Repository interface {
	Create(ctx context.Context, event *Event) error
	ListByPair(ctx context.Context, memberID, partnerID string) ([]Event, error)
	All(ctx context.Context) ([]Event, error)
	Replace(ctx context.Context, events []Event) error
}

type memoryRepository struct {
	mu       sync.RWMutex
	capacity int
	events   []Event
}

// NewMemoryRepository keeps at most capacity events, dropping the oldest first.
func NewMemoryRepository(capacity int) Repository {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &memoryRepository{capacity: capacity}
}

func (r *memoryRepository) Create(ctx context.Context, event *Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.events) >= r.capacity {
		drop := len(r.events) - r.capacity + 1
		r.events = append(r.events[:0], r.events[drop:]...)
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *memoryRepository) ListByPair(ctx context.Context, memberID, partnerID string) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Event, 0)
	for _, event := range r.events {
		if event.MemberID == memberID && event.PartnerID == partnerID {
			out = append(out, event)
		}
	}
	return out, nil
}

func (r *memoryRepository) All(ctx context.Context) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.events), nil
}

// Replace swaps the stored events for events, keeping the newest when over capacity.
func (r *memoryRepository) Replace(ctx context.Context, events []Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(events) > r.capacity {
		events = events[len(events)-r.capacity:]
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = slices.Clone(events)
	return nil
}
