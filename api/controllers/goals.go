package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/angelmondragon/partnerz-backend/api/responses"
	"github.com/angelmondragon/partnerz-backend/api/validators"
	"github.com/angelmondragon/partnerz-backend/internal/goals"
	"github.com/angelmondragon/partnerz-backend/internal/partners"
	"github.com/angelmondragon/partnerz-backend/pkg/logger"
)

type addGoalRequest struct {
	Description string      `json:"description" validate:"max=500"`
	Reward      json.Number `json:"reward"`
}

type goalRewardRequest struct {
	Reward json.Number `json:"reward"`
}

// AddGoal assigns a goal to the partner. The acting member is the assigner.
func AddGoal(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignerID, recipientID, err := pairFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body addGoalRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reward, err := validators.WholeNumber(body.Reward, goals.ErrInvalidReward)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		goal, err := svc.AddGoal(r.Context(), assignerID, recipientID, body.Description, reward)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, goal)
	}
}

// MyGoals lists goals the partner assigned to the acting member.
func MyGoals(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recipientID, assignerID, err := pairFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.MyGoals(r.Context(), recipientID, assignerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AssignedGoals lists goals the acting member assigned to the partner.
func AssignedGoals(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignerID, recipientID, err := pairFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.AssignedGoals(r.Context(), assignerID, recipientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func RemoveGoal(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignerID, recipientID, goalID, err := goalFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.RemoveGoal(r.Context(), assignerID, recipientID, goalID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func SetGoalReward(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignerID, recipientID, goalID, err := goalFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body goalRewardRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reward, err := validators.WholeNumber(body.Reward, goals.ErrInvalidReward)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetGoalReward(r.Context(), assignerID, recipientID, goalID, reward); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// CompleteGoal marks a goal the partner assigned to the acting member as done.
func CompleteGoal(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recipientID, assignerID, goalID, err := goalFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.CompleteGoal(r.Context(), recipientID, assignerID, goalID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// IncompleteGoal sends a completed goal back to the partner.
func IncompleteGoal(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignerID, recipientID, goalID, err := goalFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.IncompleteGoal(r.Context(), assignerID, recipientID, goalID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// ApproveGoal approves a completed goal and credits the partner with its reward.
func ApproveGoal(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignerID, recipientID, goalID, err := goalFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		credit, err := svc.ApproveGoal(r.Context(), assignerID, recipientID, goalID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, credit)
	}
}

func goalFromRequest(r *http.Request) (memberID, partnerID, goalID string, err error) {
	if memberID, partnerID, err = pairFromRequest(r); err != nil {
		return "", "", "", err
	}
	if goalID, err = pathParam(r, "goalId"); err != nil {
		return "", "", "", err
	}
	return memberID, partnerID, goalID, nil
}
