package handler

import (
	"errors"
	"net/http"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/policy"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/usecase"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/response"
)

type AlertHandler struct {
	alertUsecase usecase.AlertUsecase
}

func NewAlertHandler(alertUsecase usecase.AlertUsecase) *AlertHandler {
	return &AlertHandler{
		alertUsecase: alertUsecase,
	}
}

// List accepts ?status=active or ?status=all (default active) and an optional ?severity.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	onlyUnresolved := true
	switch r.URL.Query().Get("status") {
	case "", "active":
	case "all":
		onlyUnresolved = false
	default:
		response.BadRequest(w, "status must be active or all")
		return
	}

	severity := entity.AlertSeverity(r.URL.Query().Get("severity"))
	if severity != "" && !severity.IsValid() {
		response.BadRequest(w, "severity must be one of: low, medium, high, critical")
		return
	}

	alerts, err := h.alertUsecase.List(r.Context(), identity, onlyUnresolved, severity)
	if err != nil {
		if policy.IsDenial(err) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalServerError(w, "Failed to get alerts")
		return
	}

	response.Success(w, http.StatusOK, "Alerts retrieved successfully", alerts)
}

func (h *AlertHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	alertID, ok := pathUUID(w, r, "id", "alert")
	if !ok {
		return
	}

	alert, err := h.alertUsecase.Resolve(r.Context(), identity, alertID)
	if err != nil {
		switch {
		case policy.IsDenial(err):
			response.Forbidden(w, err.Error())
		case errors.Is(err, usecase.ErrAlertNotFound):
			response.NotFound(w, "Alert not found")
		case errors.Is(err, usecase.ErrAlertAlreadyResolved):
			response.BadRequest(w, "Alert is already resolved")
		default:
			response.InternalServerError(w, "Failed to resolve alert")
		}
		return
	}

	response.Success(w, http.StatusOK, "Alert resolved successfully", alert)
}

func (h *AlertHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	alerts, err := h.alertUsecase.ListMine(r.Context(), identity)
	if err != nil {
		if policy.IsDenial(err) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalServerError(w, "Failed to get alerts")
		return
	}

	response.Success(w, http.StatusOK, "Alerts retrieved successfully", alerts)
}

func (h *AlertHandler) MarkMineRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	alertID, ok := pathUUID(w, r, "id", "alert")
	if !ok {
		return
	}

	if err := h.alertUsecase.MarkMineRead(r.Context(), identity, alertID); err != nil {
		switch {
		case policy.IsDenial(err):
			response.Forbidden(w, err.Error())
		case errors.Is(err, usecase.ErrAlertNotFound):
			response.NotFound(w, "Alert not found")
		default:
			response.InternalServerError(w, "Failed to update alert")
		}
		return
	}

	response.Success(w, http.StatusOK, "Alert marked as read", nil)
}
