package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/dto"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/usecase"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/response"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/validator"
)

type InstitutionHandler struct {
	institutionUsecase usecase.InstitutionUsecase
	validator          *validator.CustomValidator
}

func NewInstitutionHandler(institutionUsecase usecase.InstitutionUsecase, validator *validator.CustomValidator) *InstitutionHandler {
	return &InstitutionHandler{
		institutionUsecase: institutionUsecase,
		validator:          validator,
	}
}

func (h *InstitutionHandler) List(w http.ResponseWriter, r *http.Request) {
	institutions, err := h.institutionUsecase.List(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get institutions")
		return
	}

	response.Success(w, http.StatusOK, "Institutions retrieved successfully", institutions)
}

func (h *InstitutionHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var req dto.CreateInstitutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	institution, err := h.institutionUsecase.Create(r.Context(), identity, &req)
	if err != nil {
		if errors.Is(err, usecase.ErrInstitutionNameTaken) {
			response.Conflict(w, "Institution name already exists")
			return
		}
		response.InternalServerError(w, "Failed to create institution")
		return
	}

	response.Success(w, http.StatusCreated, "Institution created successfully", institution)
}

func (h *InstitutionHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	institutionID, ok := pathUUID(w, r, "id", "institution")
	if !ok {
		return
	}

	institution, err := h.institutionUsecase.SetDefault(r.Context(), identity, institutionID)
	if err != nil {
		if errors.Is(err, usecase.ErrInstitutionNotFound) {
			response.NotFound(w, "Institution not found")
			return
		}
		response.InternalServerError(w, "Failed to set default institution")
		return
	}

	response.Success(w, http.StatusOK, "Default institution updated successfully", institution)
}

func (h *InstitutionHandler) GetDefault(w http.ResponseWriter, r *http.Request) {
	institution, err := h.institutionUsecase.GetDefault(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrNoDefaultInstitution) {
			response.NotFound(w, "No default institution configured")
			return
		}
		response.InternalServerError(w, "Failed to get default institution")
		return
	}

	response.Success(w, http.StatusOK, "Default institution retrieved successfully", institution)
}
