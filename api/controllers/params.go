package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/partnerz-backend/api/middleware"
	pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"
)

func actingMember(r *http.Request) (string, error) {
	id := middleware.MemberIDFromContext(r.Context())
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "member context missing")
	}
	return id, nil
}

func pathParam(r *http.Request, name string) (string, error) {
	value := strings.TrimSpace(chi.URLParam(r, name))
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, name+" is required").WithDetails(map[string]string{"field": name})
	}
	return value, nil
}

// pairFromRequest returns the acting member and the {partnerId} path parameter.
func pairFromRequest(r *http.Request) (memberID, partnerID string, err error) {
	if memberID, err = actingMember(r); err != nil {
		return "", "", err
	}
	if partnerID, err = pathParam(r, "partnerId"); err != nil {
		return "", "", err
	}
	return memberID, partnerID, nil
}
