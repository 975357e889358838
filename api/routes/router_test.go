package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/partnerz-backend/internal/ledger"
	"github.com/angelmondragon/partnerz-backend/internal/partners"
	pkgAuth "github.com/angelmondragon/partnerz-backend/pkg/auth"
	"github.com/angelmondragon/partnerz-backend/pkg/config"
	"github.com/angelmondragon/partnerz-backend/pkg/logger"
	"github.com/angelmondragon/partnerz-backend/pkg/metrics"
)

type testAPI struct {
	t       *testing.T
	cfg     *config.Config
	handler http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Env: "dev"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "partnerz", ExpirationMinutes: 60},
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	reg := prometheus.NewRegistry()

	led, err := ledger.NewService(ledger.NewMemoryRepository(100))
	require.NoError(t, err)
	svc, err := partners.NewService(partners.ServiceParams{
		Directory: partners.NewDirectory(nil),
		Ledger:    led,
		Metrics:   metrics.NewEngineMetrics(reg),
		Logger:    logg,
	})
	require.NoError(t, err)

	return &testAPI{
		t:   t,
		cfg: cfg,
		handler: NewRouter(RouterParams{
			Config:   cfg,
			Logger:   logg,
			Partners: svc,
			Gatherer: reg,
		}),
	}
}

func (a *testAPI) token(member string) string {
	a.t.Helper()
	token, err := pkgAuth.MintAccessToken(a.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{MemberID: member})
	require.NoError(a.t, err)
	return token
}

// do sends a request as member (empty for anonymous) and decodes the data field into out.
func (a *testAPI) do(member, method, path, body string, out any) int {
	a.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if member != "" {
		req.Header.Set("Authorization", "Bearer "+a.token(member))
	}
	resp := httptest.NewRecorder()
	a.handler.ServeHTTP(resp, req)

	if out != nil && resp.Code < 300 {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		require.NoError(a.t, json.Unmarshal(resp.Body.Bytes(), &env))
		require.NoError(a.t, json.Unmarshal(env.Data, out))
	}
	return resp.Code
}

func TestPublicRoutes(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusOK, api.do("", http.MethodGet, "/health/live", "", nil))
	assert.Equal(t, http.StatusOK, api.do("", http.MethodGet, "/health/ready", "", nil))
	assert.Equal(t, http.StatusOK, api.do("", http.MethodGet, "/api/public/ping", "", nil))

	var tiers []struct {
		Name string `json:"name"`
		Rank int    `json:"rank"`
	}
	require.Equal(t, http.StatusOK, api.do("", http.MethodGet, "/api/public/rarities", "", &tiers))
	require.Len(t, tiers, 4)
	assert.Equal(t, "Common", tiers[0].Name)
	assert.Equal(t, "Legendary", tiers[3].Name)
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	api := newTestAPI(t)
	assert.Equal(t, http.StatusUnauthorized, api.do("", http.MethodGet, "/api/ping", "", nil))
	assert.Equal(t, http.StatusUnauthorized, api.do("", http.MethodGet, "/api/v1/members/me", "", nil))
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	api := newTestAPI(t)
	var payload map[string]string
	require.Equal(t, http.StatusOK, api.do("alice", http.MethodGet, "/api/ping", "", &payload))
	assert.Equal(t, "alice", payload["member_id"])
}

func TestPartnershipFlow(t *testing.T) {
	api := newTestAPI(t)

	require.Equal(t, http.StatusCreated, api.do("alice", http.MethodPost, "/api/v1/members", `{"display_name":"Alice"}`, nil))
	require.Equal(t, http.StatusCreated, api.do("bob", http.MethodPost, "/api/v1/members", `{"display_name":"Bob"}`, nil))

	require.Equal(t, http.StatusNoContent, api.do("alice", http.MethodPost, "/api/v1/partners/invite", `{"partner_id":"bob"}`, nil))

	var invitations []partners.Invitation
	require.Equal(t, http.StatusOK, api.do("bob", http.MethodGet, "/api/v1/partners/invitations", "", &invitations))
	require.Len(t, invitations, 1)
	assert.Equal(t, "Alice", invitations[0].SenderDisplayName)

	require.Equal(t, http.StatusNoContent, api.do("bob", http.MethodPost, "/api/v1/partners/accept", `{"partner_id":"alice"}`, nil))

	var me partners.MemberView
	require.Equal(t, http.StatusOK, api.do("alice", http.MethodGet, "/api/v1/members/me", "", &me))
	require.Len(t, me.Partners, 1)
	assert.Equal(t, "bob", me.Partners[0].ID)

	// alice assigns bob a goal worth 1000 and offers him a coupon at 20 points a draw
	var goal struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusCreated, api.do("alice", http.MethodPost, "/api/v1/partners/bob/goals", `{"description":"fix the bike","reward":1000}`, &goal))
	require.Equal(t, http.StatusCreated, api.do("alice", http.MethodPost, "/api/v1/partners/bob/coupons", `{"content":"movie night"}`, nil))
	require.Equal(t, http.StatusNoContent, api.do("alice", http.MethodPut, "/api/v1/partners/bob/coupons/price", `{"price":20}`, nil))

	require.Equal(t, http.StatusNoContent, api.do("bob", http.MethodPost, "/api/v1/partners/alice/goals/"+goal.ID+"/complete", "", nil))

	var credit partners.Credit
	require.Equal(t, http.StatusOK, api.do("alice", http.MethodPost, "/api/v1/partners/bob/goals/"+goal.ID+"/approve", "", &credit))
	assert.EqualValues(t, 1000, credit.Balance)

	var receipt partners.DrawReceipt
	require.Equal(t, http.StatusOK, api.do("bob", http.MethodPost, "/api/v1/partners/alice/coupons/draw", "", &receipt))
	assert.Equal(t, "movie night", receipt.Coupon.Content)
	assert.EqualValues(t, 20, receipt.Price)
	assert.EqualValues(t, 980, receipt.Balance)

	assert.Equal(t, http.StatusUnprocessableEntity, api.do("bob", http.MethodPost, "/api/v1/partners/alice/coupons/draw", "", nil))

	var conn partners.ConnectionView
	require.Equal(t, http.StatusOK, api.do("bob", http.MethodGet, "/api/v1/partners/alice", "", &conn))
	assert.EqualValues(t, 980, conn.Me.Points)
	assert.EqualValues(t, 20, conn.Me.DrawPrice)
	assert.EqualValues(t, 0, conn.Partner.Points)

	var events []ledger.Event
	require.Equal(t, http.StatusOK, api.do("bob", http.MethodGet, "/api/v1/partners/alice/ledger", "", &events))
	require.Len(t, events, 2)
	assert.EqualValues(t, 1000, events[0].Balance)
	assert.EqualValues(t, 980, events[1].Balance)

	require.Equal(t, http.StatusNoContent, api.do("bob", http.MethodPost, "/api/v1/partners/leave", `{"partner_id":"alice"}`, nil))
	assert.Equal(t, http.StatusNotFound, api.do("alice", http.MethodGet, "/api/v1/partners/bob", "", nil))
}

func TestMetricsEndpointExposesEngineCounters(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.do("alice", http.MethodPost, "/api/v1/members", `{"display_name":"Alice"}`, nil))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	api.handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "partnerz_engine_operations_total")
	assert.Contains(t, resp.Body.String(), "partnerz_members 1")
}
