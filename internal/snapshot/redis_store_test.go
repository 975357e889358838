package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"
)

type fakeKV struct {
	data   map[string]string
	getErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (f *fakeKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.data[key] = value.(string)
	return nil
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store, err := NewRedisStore(kv, "pz:snapshot:latest")
	require.NoError(t, err)

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	state := sampleState(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, state))
	assert.Contains(t, kv.data["pz:snapshot:latest"], `"partner_id":"bob"`)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Members, 2)
	assert.Equal(t, "dinner", got.Members[0].Connections[0].Offered[0].Content)
}

func TestRedisStoreWrapsFailures(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store, _ := NewRedisStore(kv, "k")

	kv.getErr = errors.New("connection refused")
	_, err := store.Load(ctx)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())

	kv.getErr = nil
	kv.data["k"] = "{not json"
	_, err = store.Load(ctx)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeInternal, pkgerrors.As(err).Code())
}

func TestNewRedisStoreValidates(t *testing.T) {
	_, err := NewRedisStore(nil, "k")
	assert.Error(t, err)
	_, err = NewRedisStore(newFakeKV(), "")
	assert.Error(t, err)
}
