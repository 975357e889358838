package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataFor(t *testing.T) {
	tests := map[Code]Metadata{
		CodeValidation:    {HTTPStatus: http.StatusBadRequest, PublicMessage: "validation failed", DetailsAllowed: true},
		CodeUnauthorized:  {HTTPStatus: http.StatusUnauthorized, PublicMessage: "authentication required"},
		CodeNotFound:      {HTTPStatus: http.StatusNotFound, PublicMessage: "resource not found"},
		CodeConflict:      {HTTPStatus: http.StatusConflict, PublicMessage: "conflict detected"},
		CodeStateConflict: {HTTPStatus: http.StatusUnprocessableEntity, Retryable: true, PublicMessage: "state transition disallowed", DetailsAllowed: true},
		CodeDependency:    {HTTPStatus: http.StatusServiceUnavailable, Retryable: true, PublicMessage: "dependency unavailable", DetailsAllowed: true},
	}
	for code, want := range tests {
		assert.Equal(t, want, MetadataFor(code), string(code))
	}
	assert.Equal(t, http.StatusInternalServerError, MetadataFor("SOMETHING_UNKNOWN").HTTPStatus)
}

func TestWithDetailsLeavesSentinelUntouched(t *testing.T) {
	errInvalidPoints := Define(CodeValidation, "INVALID_POINTS", "points must not be negative")

	detailed := errInvalidPoints.WithDetails(map[string]any{"field": "points"})

	assert.Nil(t, errInvalidPoints.Details())
	assert.NotNil(t, detailed.Details())
	assert.ErrorIs(t, detailed, errInvalidPoints)
	assert.Equal(t, "INVALID_POINTS", detailed.Reason())
}

func TestDefinedErrorsMatchThroughWrapping(t *testing.T) {
	errNoConnection := Define(CodeNotFound, "NO_CONNECTION", "no connection with the given member")
	errEmptyBank := Define(CodeStateConflict, "EMPTY_BANK", "partner has no coupons to draw")

	wrapped := fmt.Errorf("draw coupon: %w", errNoConnection)
	assert.ErrorIs(t, wrapped, errNoConnection)
	assert.NotErrorIs(t, wrapped, errEmptyBank)
	assert.Equal(t, "NO_CONNECTION", ReasonOf(wrapped))

	typed := Wrap(CodeDependency, errNoConnection, "outer")
	assert.Equal(t, "NO_CONNECTION", typed.Reason())
	assert.Equal(t, CodeDependency, typed.Code())
	assert.Empty(t, ReasonOf(stdErrors.New("plain")))
}

func TestUntypedErrorsNeverMatchByCode(t *testing.T) {
	a := New(CodeValidation, "first")
	b := New(CodeValidation, "second")
	assert.False(t, stdErrors.Is(a, b))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stdErrors.New("connection refused")
	wrapped := Wrap(CodeDependency, cause, "save snapshot")

	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Error(), "save snapshot")
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestAs(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeForbidden, "no entry"))
	typed := As(err)
	require.NotNil(t, typed)
	assert.Equal(t, CodeForbidden, typed.Code())

	assert.Nil(t, As(nil))
	assert.Nil(t, As(stdErrors.New("plain")))
	assert.Equal(t, CodeInternal, As(nil).Code())
}
