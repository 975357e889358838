package validators

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"
)

type pointsBody struct {
	PartnerID string `json:"partner_id" validate:"required,notblank,max=8"`
	Points    int64  `json:"points"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	var dest pointsBody
	require.NoError(t, DecodeJSONBody(post(`{"partner_id":"bob","points":15}`), &dest))
	assert.Equal(t, "bob", dest.PartnerID)
	assert.EqualValues(t, 15, dest.Points)
}

func TestDecodeJSONBodyRejects(t *testing.T) {
	cases := map[string]string{
		"fractional points": `{"partner_id":"bob","points":1.5}`,
		"string points":     `{"partner_id":"bob","points":"15"}`,
		"overflowing":       `{"partner_id":"bob","points":9223372036854775808}`,
		"unknown field":     `{"partner_id":"bob","points":1,"extra":true}`,
		"trailing object":   `{"partner_id":"bob"}{"partner_id":"eve"}`,
		"empty":             ``,
		"blank partner":     `{"partner_id":"   "}`,
		"missing partner":   `{"points":3}`,
		"long partner":      `{"partner_id":"abcdefghijk"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var dest pointsBody
			err := DecodeJSONBody(post(body), &dest)
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}
}

func TestDecodeJSONBodyReportsFieldDetails(t *testing.T) {
	var dest pointsBody
	err := DecodeJSONBody(post(`{"points":3}`), &dest)
	require.Error(t, err)
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["partner_id"])
}

func TestQueryInt(t *testing.T) {
	bounds := IntRange{Default: 50, Min: 1, Max: 100}
	query := func(raw string) *http.Request {
		return httptest.NewRequest(http.MethodGet, "/ledger"+raw, nil)
	}

	got, err := QueryInt(query("?limit=20"), "limit", bounds)
	require.NoError(t, err)
	assert.Equal(t, 20, got)

	got, err = QueryInt(query(""), "limit", bounds)
	require.NoError(t, err)
	assert.Equal(t, 50, got)

	for _, raw := range []string{"?limit=0", "?limit=101", "?limit=abc"} {
		_, err = QueryInt(query(raw), "limit", bounds)
		require.Error(t, err, raw)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Alice", SanitizeString("  Alice  ", 64))
	assert.Equal(t, "Zoë", SanitizeString("Zoë Smith", 3))
	assert.Equal(t, "no cap", SanitizeString(" no cap ", 0))
}

func TestWholeNumber(t *testing.T) {
	errInvalid := errors.New("invalid amount")

	valid := map[json.Number]int64{
		"":    0,
		"0":   0,
		"42":  42,
		"-3":  -3,
		"5.0": 5,
		"1e3": 1000,
	}
	valid["9223372036854775807"] = math.MaxInt64
	for raw, want := range valid {
		got, err := WholeNumber(raw, errInvalid)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []json.Number{"5.4", "-0.5", "1e-2", "9223372036854775808", "1e30"} {
		_, err := WholeNumber(raw, errInvalid)
		assert.ErrorIs(t, err, errInvalid, raw)
	}
}

func TestWholeNumberDecodedFromBody(t *testing.T) {
	var dest struct {
		Price json.Number `json:"price"`
	}
	require.NoError(t, DecodeJSONBody(post(`{"price":5.4}`), &dest))
	errInvalid := errors.New("invalid price")
	_, err := WholeNumber(dest.Price, errInvalid)
	assert.ErrorIs(t, err, errInvalid)
}
