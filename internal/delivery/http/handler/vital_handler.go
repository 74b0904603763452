package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/dto"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/policy"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/usecase"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/response"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/validator"
)

type VitalHandler struct {
	vitalUsecase usecase.VitalUsecase
	validator    *validator.CustomValidator
}

func NewVitalHandler(vitalUsecase usecase.VitalUsecase, validator *validator.CustomValidator) *VitalHandler {
	return &VitalHandler{
		vitalUsecase: vitalUsecase,
		validator:    validator,
	}
}

func (h *VitalHandler) ListForPatient(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	patientID, ok := pathUUID(w, r, "id", "patient")
	if !ok {
		return
	}

	readings, err := h.vitalUsecase.ListForPatient(r.Context(), identity, patientID, r.URL.Query().Get("type"), queryInt(r, "limit"))
	if err != nil {
		switch {
		case policy.IsDenial(err):
			response.Forbidden(w, err.Error())
		case errors.Is(err, usecase.ErrPatientNotFound):
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to get vitals")
		}
		return
	}

	response.Success(w, http.StatusOK, "Vitals retrieved successfully", readings)
}

func (h *VitalHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	readings, err := h.vitalUsecase.ListMine(r.Context(), identity, r.URL.Query().Get("type"), queryInt(r, "limit"))
	if err != nil {
		if policy.IsDenial(err) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalServerError(w, "Failed to get vitals")
		return
	}

	response.Success(w, http.StatusOK, "Vitals retrieved successfully", readings)
}

func (h *VitalHandler) RecordMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var req dto.RecordVitalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	reading, err := h.vitalUsecase.RecordMine(r.Context(), identity, &req)
	if err != nil {
		switch {
		case policy.IsDenial(err):
			response.Forbidden(w, err.Error())
		case errors.Is(err, usecase.ErrInvalidVitalValue), errors.Is(err, usecase.ErrFutureVitalReading):
			response.BadRequest(w, err.Error())
		case errors.Is(err, usecase.ErrPatientNotFound):
			response.NotFound(w, "Patient record not found")
		default:
			response.InternalServerError(w, "Failed to record vital")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Vital recorded successfully", reading)
}
