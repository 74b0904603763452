package handler

import (
	"errors"
	"net/http"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/policy"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/usecase"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/response"
)

// RaceLostMessage is shown when another clinician claimed the patient first.
// It is an expected outcome, not a system error.
const RaceLostMessage = "This patient was just claimed by another clinician. Please choose another patient."

type PatientClaimHandler struct {
	claimUsecase usecase.PatientClaimUsecase
}

func NewPatientClaimHandler(claimUsecase usecase.PatientClaimUsecase) *PatientClaimHandler {
	return &PatientClaimHandler{
		claimUsecase: claimUsecase,
	}
}

// ListUnassigned returns the patients waiting for a clinician in the caller's scope.
// @Summary List unassigned patients
// @Tags Patients
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /patients/unassigned [get]
func (h *PatientClaimHandler) ListUnassigned(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	patients, err := h.claimUsecase.ListUnassigned(r.Context(), identity)
	if err != nil {
		if policy.IsDenial(err) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalServerError(w, "Failed to get unassigned patients")
		return
	}

	response.Success(w, http.StatusOK, "Unassigned patients retrieved successfully", patients)
}

// Claim assigns the patient to the calling clinician.
// @Summary Claim a patient
// @Tags Patients
// @Security BearerAuth
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patients/{id}/claim [post]
func (h *PatientClaimHandler) Claim(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	patientID, ok := pathUUID(w, r, "id", "patient")
	if !ok {
		return
	}

	result, err := h.claimUsecase.Claim(r.Context(), identity, patientID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrOnlyClinicians),
			errors.Is(err, usecase.ErrCrossTenantClaim),
			policy.IsDenial(err):
			response.Forbidden(w, err.Error())
		case errors.Is(err, usecase.ErrPatientNotFound):
			response.NotFound(w, "Patient not found")
		case errors.Is(err, usecase.ErrPatientAlreadyAssigned):
			response.BadRequest(w, "This patient is already assigned to a clinician")
		case errors.Is(err, usecase.ErrClaimRaceLost):
			response.BadRequest(w, RaceLostMessage)
		default:
			response.InternalServerError(w, "Failed to claim patient")
		}
		return
	}

	response.Success(w, http.StatusOK, result.Message, result)
}
