package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/partnerz-backend/pkg/enums"
)

type fakeRepository struct {
	createFn func(ctx context.Context, event *Event) error
}

func (f *fakeRepository) Create(ctx context.Context, event *Event) error {
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	return nil
}

func (f *fakeRepository) ListByPair(ctx context.Context, memberID, partnerID string) ([]Event, error) {
	return nil, nil
}

func (f *fakeRepository) All(ctx context.Context) ([]Event, error) {
	return nil, nil
}

func (f *fakeRepository) Replace(ctx context.Context, events []Event) error {
	return nil
}

func TestService_RecordEvent(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	require.NoError(t, err)

	var created *Event
	repo.createFn = func(ctx context.Context, event *Event) error {
		created = event
		return nil
	}

	input := RecordEventInput{
		MemberID:    "bob",
		PartnerID:   "alice",
		Type:        enums.LedgerEventTypeCouponDraw,
		Amount:      20,
		Balance:     980,
		ReferenceID: "coupon-1",
	}
	got, err := svc.RecordEvent(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Same(t, created, got)
	assert.Equal(t, "bob", created.MemberID)
	assert.Equal(t, "alice", created.PartnerID)
	assert.Equal(t, int64(20), created.Amount)
	assert.Equal(t, int64(980), created.Balance)
	assert.Equal(t, "coupon-1", created.ReferenceID)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestService_RecordEventValidation(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	require.NoError(t, err)

	valid := RecordEventInput{MemberID: "a", PartnerID: "b", Type: enums.LedgerEventTypeGoalReward, Amount: 1}
	cases := map[string]func(in *RecordEventInput){
		"missing member":  func(in *RecordEventInput) { in.MemberID = "" },
		"missing partner": func(in *RecordEventInput) { in.PartnerID = "" },
		"invalid type":    func(in *RecordEventInput) { in.Type = "refund" },
		"negative amount": func(in *RecordEventInput) { in.Amount = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := svc.RecordEvent(context.Background(), in)
			assert.Error(t, err)
		})
	}
}

func TestService_RecordEventRepositoryError(t *testing.T) {
	repo := &fakeRepository{createFn: func(context.Context, *Event) error { return errors.New("boom") }}
	svc, _ := NewService(repo)

	_, err := svc.RecordEvent(context.Background(), RecordEventInput{MemberID: "a", PartnerID: "b", Type: enums.LedgerEventTypePointsGift})
	assert.Error(t, err)
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil)
	assert.Error(t, err)
}

func TestMemoryRepositoryBoundedAndFiltered(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(3)
	svc, err := NewService(repo)
	require.NoError(t, err)

	for i := int64(1); i <= 4; i++ {
		_, err := svc.RecordEvent(ctx, RecordEventInput{MemberID: "a", PartnerID: "b", Type: enums.LedgerEventTypePointsGift, Amount: i})
		require.NoError(t, err)
	}
	_, err = svc.RecordEvent(ctx, RecordEventInput{MemberID: "b", PartnerID: "a", Type: enums.LedgerEventTypePointsGift, Amount: 9})
	require.NoError(t, err)

	events, err := svc.List(ctx, "a", "b")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(3), events[0].Amount)
	assert.Equal(t, int64(4), events[1].Amount)

	_, err = svc.List(ctx, "", "b")
	assert.Error(t, err)
}

func TestServiceExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, err := NewService(NewMemoryRepository(10))
	require.NoError(t, err)
	for _, amount := range []int64{5, 7} {
		_, err := src.RecordEvent(ctx, RecordEventInput{MemberID: "a", PartnerID: "b", Type: enums.LedgerEventTypeGoalReward, Amount: amount, Balance: amount})
		require.NoError(t, err)
	}
	exported, err := src.Export(ctx)
	require.NoError(t, err)
	require.Len(t, exported, 2)

	dst, err := NewService(NewMemoryRepository(10))
	require.NoError(t, err)
	require.NoError(t, dst.Import(ctx, exported))

	events, err := dst.List(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, exported, events)
}

func TestServiceImportKeepsNewestWithinCapacity(t *testing.T) {
	ctx := context.Background()
	svc, err := NewService(NewMemoryRepository(2))
	require.NoError(t, err)

	events := []Event{
		{MemberID: "a", PartnerID: "b", Type: enums.LedgerEventTypePointsGift, Amount: 1},
		{MemberID: "a", PartnerID: "b", Type: enums.LedgerEventTypePointsGift, Amount: 2},
		{MemberID: "a", PartnerID: "b", Type: enums.LedgerEventTypePointsGift, Amount: 3},
	}
	require.NoError(t, svc.Import(ctx, events))

	got, err := svc.Export(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].Amount)
	assert.Equal(t, int64(3), got[1].Amount)
}

func TestServiceImportRejectsInvalidEvents(t *testing.T) {
	ctx := context.Background()
	svc, err := NewService(NewMemoryRepository(10))
	require.NoError(t, err)
	_, err = svc.RecordEvent(ctx, RecordEventInput{MemberID: "a", PartnerID: "b", Type: enums.LedgerEventTypePointsGift, Amount: 4})
	require.NoError(t, err)

	assert.Error(t, svc.Import(ctx, []Event{{MemberID: "a", PartnerID: "b", Type: "refund", Amount: 1}}))
	assert.Error(t, svc.Import(ctx, []Event{{MemberID: "a", PartnerID: "b", Type: enums.LedgerEventTypePointsGift, Amount: -1}}))

	kept, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}
