package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"
)

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	str, _ := value.(string)
	f.data[key] = str
	return nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func memberRequest(method, url, body, key string) *http.Request {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req.WithContext(WithMemberID(req.Context(), "alice"))
}

func TestRouteTTLSelection(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		want   time.Duration
		ok     bool
	}{
		{"draw", http.MethodPost, "/api/v1/partners/bob/coupons/draw", drawTTL, true},
		{"send coupon", http.MethodPost, "/api/v1/partners/bob/coupons/send", transferTTL, true},
		{"points", http.MethodPost, "/api/v1/partners/bob/points", transferTTL, true},
		{"points trailing slash", http.MethodPost, "/api/v1/partners/bob/points/", transferTTL, true},
		{"approve", http.MethodPost, "/api/v1/partners/bob/goals/g-1/approve", transferTTL, true},
		{"approve without goal", http.MethodPost, "/api/v1/partners/bob/goals/approve", 0, false},
		{"complete", http.MethodPost, "/api/v1/partners/bob/goals/g-1/complete", 0, false},
		{"offered listing", http.MethodGet, "/api/v1/partners/bob/coupons/offered", 0, false},
		{"invite", http.MethodPost, "/api/v1/partners/invite", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ttl, ok := routeTTL(tt.method, tt.path)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, ttl)
			}
		})
	}
}

func TestIdempotencyMiddlewareRequiresHeader(t *testing.T) {
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	resp := httptest.NewRecorder()
	Idempotency(newFakeStore(), nil)(handler).ServeHTTP(resp, memberRequest(http.MethodPost, "/api/v1/partners/bob/points", `{"points":5}`, ""))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.False(t, handlerCalled, "handler should not run without idempotency key")
}

func TestIdempotencyMiddlewarePassesThroughWithoutStore(t *testing.T) {
	resp := httptest.NewRecorder()
	Idempotency(nil, nil)(okHandler()).ServeHTTP(resp, memberRequest(http.MethodPost, "/api/v1/partners/bob/points", `{}`, ""))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestIdempotencyMiddlewareReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":{"balance":980}}`))
	})

	first := httptest.NewRecorder()
	mw(handler).ServeHTTP(first, memberRequest(http.MethodPost, "/api/v1/partners/bob/coupons/draw", `{}`, "abc"))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Empty(t, first.Header().Get(replayedHeader))

	replay := httptest.NewRecorder()
	mw(handler).ServeHTTP(replay, memberRequest(http.MethodPost, "/api/v1/partners/bob/coupons/draw", `{}`, "abc"))
	require.Equal(t, http.StatusOK, replay.Code)
	assert.Equal(t, "application/json", replay.Header().Get("Content-Type"))
	assert.Equal(t, "true", replay.Header().Get(replayedHeader))
	assert.Equal(t, `{"data":{"balance":980}}`, strings.TrimSpace(replay.Body.String()))
	assert.Equal(t, 1, calls)
}

func TestIdempotencyMiddlewareDoesNotStoreServerErrors(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	mw(handler).ServeHTTP(httptest.NewRecorder(), memberRequest(http.MethodPost, "/api/v1/partners/bob/points", `{"points":1}`, "k"))
	mw(handler).ServeHTTP(httptest.NewRecorder(), memberRequest(http.MethodPost, "/api/v1/partners/bob/points", `{"points":1}`, "k"))

	assert.Equal(t, 2, calls)
	assert.Empty(t, store.data)
}

func TestIdempotencyMiddlewareDetectsBodyChange(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)

	mw(okHandler()).ServeHTTP(httptest.NewRecorder(), memberRequest(http.MethodPost, "/api/v1/partners/bob/points", `{"points":5}`, "xyz"))

	resp := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(resp, memberRequest(http.MethodPost, "/api/v1/partners/bob/points", `{"points":50}`, "xyz"))

	require.Equal(t, http.StatusConflict, resp.Code)
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.Equal(t, string(pkgerrors.CodeIdempotency), payload.Error.Code)
}

func TestIdempotencyKeysAreScopedPerMember(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	mw(handler).ServeHTTP(httptest.NewRecorder(), memberRequest(http.MethodPost, "/api/v1/partners/bob/points", `{}`, "same"))

	other := httptest.NewRequest(http.MethodPost, "/api/v1/partners/bob/points", strings.NewReader(`{}`))
	other.Header.Set("Idempotency-Key", "same")
	other = other.WithContext(WithMemberID(other.Context(), "carol"))
	mw(handler).ServeHTTP(httptest.NewRecorder(), other)

	assert.Equal(t, 2, calls)
}

func TestIdempotencyMiddlewareRejectsInFlightDuplicate(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	var inner *httptest.ResponseRecorder
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			inner = httptest.NewRecorder()
			mw(okHandler()).ServeHTTP(inner, memberRequest(http.MethodPost, "/api/v1/partners/bob/coupons/draw", `{}`, "dup"))
		}
		w.WriteHeader(http.StatusOK)
	})

	mw(handler).ServeHTTP(httptest.NewRecorder(), memberRequest(http.MethodPost, "/api/v1/partners/bob/coupons/draw", `{}`, "dup"))

	require.NotNil(t, inner)
	assert.Equal(t, http.StatusConflict, inner.Code)
	assert.Contains(t, inner.Body.String(), "REQUEST_IN_PROGRESS")
	assert.Equal(t, 1, calls)
}

func TestIdempotencyMiddlewareRejectsOversizedBody(t *testing.T) {
	store := newFakeStore()
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	body := `{"points":1,"pad":"` + strings.Repeat("x", 70<<10) + `"}`
	resp := httptest.NewRecorder()
	Idempotency(store, nil)(handler).ServeHTTP(resp, memberRequest(http.MethodPost, "/api/v1/partners/bob/points", body, "key-big"))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.False(t, handlerCalled)
	assert.Empty(t, store.data, "oversized requests must not reserve a key")
}
