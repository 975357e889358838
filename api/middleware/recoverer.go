package middleware

import (
	"fmt"
	"net/http"

	"github.com/angelmondragon/partnerz-backend/api/responses"
	pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"
	"github.com/angelmondragon/partnerz-backend/pkg/logger"
)

// Recoverer turns a handler panic into an internal error response.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := fmt.Errorf("panic: %v", rec)
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithField(ctx, "panic", fmt.Sprint(rec))
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
