package controllers

import (
	"net/http"

	"github.com/angelmondragon/partnerz-backend/api/middleware"
	"github.com/angelmondragon/partnerz-backend/api/responses"
	"github.com/angelmondragon/partnerz-backend/api/validators"
	"github.com/angelmondragon/partnerz-backend/internal/partners"
	"github.com/angelmondragon/partnerz-backend/pkg/logger"
)

const maxDisplayNameLength = 64

type registerMemberRequest struct {
	DisplayName string `json:"display_name" validate:"max=128"`
}

// RegisterMember registers the acting member. The display name falls back to the token's claim.
func RegisterMember(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, err := actingMember(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body registerMemberRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		name := validators.SanitizeString(body.DisplayName, maxDisplayNameLength)
		if name == "" {
			name = validators.SanitizeString(middleware.DisplayNameFromContext(r.Context()), maxDisplayNameLength)
		}

		view, err := svc.Register(r.Context(), memberID, name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// GetMe returns the acting member with pending invitations and partners.
func GetMe(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, err := actingMember(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Member(r.Context(), memberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
