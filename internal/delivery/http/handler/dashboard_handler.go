package handler

import (
	"net/http"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/policy"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/usecase"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/response"
)

type DashboardHandler struct {
	dashboardUsecase usecase.DashboardUsecase
}

func NewDashboardHandler(dashboardUsecase usecase.DashboardUsecase) *DashboardHandler {
	return &DashboardHandler{
		dashboardUsecase: dashboardUsecase,
	}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	stats, err := h.dashboardUsecase.Stats(r.Context(), identity)
	if err != nil {
		if policy.IsDenial(err) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalServerError(w, "Failed to get dashboard stats")
		return
	}

	response.Success(w, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}

func (h *DashboardHandler) TopPerformers(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	performers, err := h.dashboardUsecase.TopPerformers(r.Context(), identity, queryInt(r, "limit"))
	if err != nil {
		if policy.IsDenial(err) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalServerError(w, "Failed to get top performers")
		return
	}

	response.Success(w, http.StatusOK, "Top performers retrieved successfully", performers)
}
