package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/partnerz-backend/api/responses"
	pkgAuth "github.com/angelmondragon/partnerz-backend/pkg/auth"
	"github.com/angelmondragon/partnerz-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"
	"github.com/angelmondragon/partnerz-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the acting member.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithMemberID(r.Context(), claims.MemberID())
			if claims.DisplayName != "" {
				ctx = context.WithValue(ctx, ctxDisplayName, claims.DisplayName)
			}
			if logg != nil {
				ctx = logg.WithMemberID(ctx, claims.MemberID())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	token := strings.TrimSpace(header)
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
