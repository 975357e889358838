package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/angelmondragon/partnerz-backend/api/responses"
	"github.com/angelmondragon/partnerz-backend/api/validators"
	"github.com/angelmondragon/partnerz-backend/internal/partners"
	"github.com/angelmondragon/partnerz-backend/pkg/logger"
)

type partnerRequest struct {
	PartnerID string `json:"partner_id" validate:"required,notblank,max=128"`
}

type sendPointsRequest struct {
	Points json.Number `json:"points"`
}

// partnerAction decodes {"partner_id"} and applies fn from the acting member's side.
func partnerAction(logg *logger.Logger, fn func(ctx context.Context, memberID, partnerID string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, err := actingMember(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body partnerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := fn(r.Context(), memberID, body.PartnerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// InvitePartner sends an invitation from the acting member.
func InvitePartner(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return partnerAction(logg, svc.Invite)
}

// AcceptInvitation accepts the invitation partner_id sent to the acting member.
func AcceptInvitation(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return partnerAction(logg, svc.AcceptInvitation)
}

// RejectInvitation discards the invitation partner_id sent to the acting member.
func RejectInvitation(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return partnerAction(logg, svc.RejectInvitation)
}

// LeavePartner ends the partnership for both members.
func LeavePartner(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return partnerAction(logg, svc.EndPartnership)
}

func ListPartners(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, err := actingMember(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.Partners(r.Context(), memberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ListInvitations(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, err := actingMember(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.Invitations(r.Context(), memberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetConnection returns both sides' balances and draw prices for one partnership.
func GetConnection(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, partnerID, err := pairFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Connection(r.Context(), memberID, partnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// SendPoints gifts points to the partner's balance toward the acting member.
func SendPoints(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, partnerID, err := pairFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body sendPointsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		points, err := validators.WholeNumber(body.Points, partners.ErrInvalidPoints)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		credit, err := svc.SendPoints(r.Context(), memberID, partnerID, points)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, credit)
	}
}

var ledgerLimit = validators.IntRange{Default: 50, Min: 1, Max: 500}

// ListLedger returns the most recent balance movements of the acting member toward the partner.
func ListLedger(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, partnerID, err := pairFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.QueryInt(r, "limit", ledgerLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		events, err := svc.Ledger(r.Context(), memberID, partnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(events) > limit {
			events = events[len(events)-limit:]
		}
		responses.WriteSuccess(w, events)
	}
}

func ListRarities(svc partners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Rarities(r.Context()))
	}
}
