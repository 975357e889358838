package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"
	"github.com/angelmondragon/partnerz-backend/pkg/logger"
	"github.com/angelmondragon/partnerz-backend/pkg/types"
)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError maps err to the public envelope. Client-side failures are logged
// at warn, everything else at error with the flattened chain.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if clientFacing(typed.Code()) {
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(typed.Code()),
			Reason:  typed.Reason(),
			Message: msg,
		},
	}

	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	if logg != nil {
		ctx = logg.WithField(ctx, "status", meta.HTTPStatus)
		if clientFacing(typed.Code()) {
			ctx = logg.WithFields(ctx, map[string]any{
				"error_code":   typed.Code(),
				"error_reason": typed.Reason(),
			})
			logg.Warn(ctx, "request.rejected")
		} else {
			dump := pkgerrors.Dump(err)
			ctx = logg.WithFields(ctx, map[string]any{
				"error_chain":   dump.Chain,
				"pg_code":       dump.PGCode,
				"pg_constraint": dump.PGConstraint,
				"pg_table":      dump.PGTable,
			})
			logg.Error(ctx, "request.error", typed)
		}
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

func clientFacing(code pkgerrors.Code) bool {
	switch code {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeForbidden,
		pkgerrors.CodeUnauthorized,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict,
		pkgerrors.CodeStateConflict,
		pkgerrors.CodeIdempotency:
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
