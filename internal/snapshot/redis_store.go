package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/partnerz-backend/pkg/redis"
	pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"
)

type kv interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

// RedisStore keeps only the latest snapshot under one key.
type RedisStore struct {
	client kv
	key    string
}

func NewRedisStore(client kv, key string) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if key == "" {
		return nil, fmt.Errorf("snapshot key is required")
	}
	return &RedisStore{client: client, key: key}, nil
}

func (s *RedisStore) Save(ctx context.Context, state State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode snapshot")
	}
	if err := s.client.Set(ctx, s.key, string(payload), 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save snapshot")
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (State, error) {
	raw, err := s.client.Get(ctx, s.key)
	if redis.IsNil(err) {
		return State{}, ErrNoSnapshot
	}
	if err != nil {
		return State{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load snapshot")
	}
	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return State{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode snapshot")
	}
	return state, nil
}
