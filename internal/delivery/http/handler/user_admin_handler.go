package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/dto"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/policy"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/usecase"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/response"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/validator"
)

type UserAdminHandler struct {
	userAdminUsecase usecase.UserAdminUsecase
	validator        *validator.CustomValidator
}

func NewUserAdminHandler(userAdminUsecase usecase.UserAdminUsecase, validator *validator.CustomValidator) *UserAdminHandler {
	return &UserAdminHandler{
		userAdminUsecase: userAdminUsecase,
		validator:        validator,
	}
}

func (h *UserAdminHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case policy.IsDenial(err),
		errors.Is(err, usecase.ErrUserOutsideInstitution),
		errors.Is(err, usecase.ErrCannotGrantAdmin),
		errors.Is(err, usecase.ErrCannotChangeOwnAccount):
		response.Forbidden(w, err.Error())
	case errors.Is(err, usecase.ErrUserNotFound):
		response.NotFound(w, "User not found")
	case errors.Is(err, usecase.ErrInvalidRole),
		errors.Is(err, usecase.ErrInvalidApprovalStatus),
		errors.Is(err, usecase.ErrInstitutionRequired),
		errors.Is(err, usecase.ErrInstitutionNotFound),
		errors.Is(err, usecase.ErrApprovalNotApplicable),
		errors.Is(err, usecase.ErrUserProfileNotAvailable):
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}

func (h *UserAdminHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	users, err := h.userAdminUsecase.ListPending(r.Context(), identity)
	if err != nil {
		h.writeError(w, err, "Failed to get pending users")
		return
	}

	response.Success(w, http.StatusOK, "Pending users retrieved successfully", users)
}

func (h *UserAdminHandler) SetApproval(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	userID, ok := pathUUID(w, r, "id", "user")
	if !ok {
		return
	}

	var req dto.ApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.userAdminUsecase.SetApproval(r.Context(), identity, userID, entity.ApprovalStatus(req.Status))
	if err != nil {
		h.writeError(w, err, "Failed to update approval")
		return
	}

	response.Success(w, http.StatusOK, "Approval updated successfully", user)
}

func (h *UserAdminHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	userID, ok := pathUUID(w, r, "id", "user")
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.userAdminUsecase.UpdateProfile(r.Context(), identity, userID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", user)
}
