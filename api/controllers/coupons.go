package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/angelmondragon/partnerz-backend/api/responses"
	"github.com/angelmondragon/partnerz-backend/api/validators"
	"github.com/angelmondragon/partnerz-backend/internal/partners"
	"github.com/angelmondragon/partnerz-backend/pkg/logger"
)

type couponContentRequest struct {
	Content string `json:"content" validate:"max=500"`
}

type couponRarityRequest struct {
	Rarity string `json:"rarity" validate:"required,max=64"`
}

type couponPriceRequest struct {
	Price json.Number `json:"price"`
}

// CreateCoupon adds a coupon to the bank the acting member offers the partner.
func CreateCoupon(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, partnerID, err := pairFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body couponContentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		coupon, err := svc.CreateCoupon(r.Context(), ownerID, partnerID, body.Content)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

func OfferedCoupons(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, partnerID, err := pairFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.OfferedCoupons(r.Context(), ownerID, partnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// EarnedCoupons lists coupons the acting member won from, or was sent by, the partner.
func EarnedCoupons(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, partnerID, err := pairFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.EarnedCoupons(r.Context(), memberID, partnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func EditCoupon(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, partnerID, couponID, err := couponFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body couponContentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.EditCoupon(r.Context(), ownerID, partnerID, couponID, body.Content); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func RemoveCoupon(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, partnerID, couponID, err := couponFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.RemoveCoupon(r.Context(), ownerID, partnerID, couponID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func SetCouponRarity(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, partnerID, couponID, err := couponFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body couponRarityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetCouponRarity(r.Context(), ownerID, partnerID, couponID, body.Rarity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// SetCouponPrice sets what the partner pays per draw from the acting member's bank.
func SetCouponPrice(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, partnerID, err := pairFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body couponPriceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		price, err := validators.WholeNumber(body.Price, partners.ErrInvalidPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetRandomCouponPrice(r.Context(), ownerID, partnerID, price); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// DrawCoupon spends the acting member's points on a random coupon from the partner's bank.
func DrawCoupon(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drawerID, offererID, err := pairFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		receipt, err := svc.DrawCoupon(r.Context(), drawerID, offererID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, receipt)
	}
}

// SendCoupon gives the partner a coupon directly, free of charge.
func SendCoupon(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		senderID, receiverID, err := pairFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body couponContentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		coupon, err := svc.SendCoupon(r.Context(), senderID, receiverID, body.Content)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

func couponFromRequest(r *http.Request) (memberID, partnerID, couponID string, err error) {
	if memberID, partnerID, err = pairFromRequest(r); err != nil {
		return "", "", "", err
	}
	if couponID, err = pathParam(r, "couponId"); err != nil {
		return "", "", "", err
	}
	return memberID, partnerID, couponID, nil
}
