package controllers

import (
	"net/http"

	"github.com/angelmondragon/partnerz-backend/api/middleware"
	"github.com/angelmondragon/partnerz-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{
			"scope":     "private",
			"status":    "ok",
			"member_id": middleware.MemberIDFromContext(r.Context()),
		})
	}
}
