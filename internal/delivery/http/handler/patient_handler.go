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

type PatientHandler struct {
	patientUsecase usecase.PatientUsecase
	validator      *validator.CustomValidator
}

func NewPatientHandler(patientUsecase usecase.PatientUsecase, validator *validator.CustomValidator) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
		validator:      validator,
	}
}

func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	patients, err := h.patientUsecase.List(r.Context(), identity)
	if err != nil {
		if policy.IsDenial(err) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalServerError(w, "Failed to get patients")
		return
	}

	response.Success(w, http.StatusOK, "Patients retrieved successfully", patients)
}

func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	patientID, ok := pathUUID(w, r, "id", "patient")
	if !ok {
		return
	}

	patient, err := h.patientUsecase.Get(r.Context(), identity, patientID)
	if err != nil {
		switch {
		case policy.IsDenial(err):
			response.Forbidden(w, err.Error())
		case errors.Is(err, usecase.ErrPatientNotFound):
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to get patient")
		}
		return
	}

	response.Success(w, http.StatusOK, "Patient retrieved successfully", patient)
}

func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var req dto.CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	patient, err := h.patientUsecase.Create(r.Context(), identity, &req)
	if err != nil {
		switch {
		case policy.IsDenial(err), errors.Is(err, usecase.ErrInstitutionOutsideScope):
			response.Forbidden(w, err.Error())
		case errors.Is(err, usecase.ErrInstitutionNotFound),
			errors.Is(err, usecase.ErrNoDefaultInstitution),
			errors.Is(err, usecase.ErrInvalidDateFormat):
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to create patient")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Patient created successfully", patient)
}

// GetMine returns the patient record linked to the calling patient account.
func (h *PatientHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	patient, err := h.patientUsecase.GetMine(r.Context(), identity)
	if err != nil {
		switch {
		case policy.IsDenial(err):
			response.Forbidden(w, err.Error())
		case errors.Is(err, usecase.ErrPatientNotFound):
			response.NotFound(w, "Patient record not found")
		default:
			response.InternalServerError(w, "Failed to get patient record")
		}
		return
	}

	response.Success(w, http.StatusOK, "Patient record retrieved successfully", patient)
}
