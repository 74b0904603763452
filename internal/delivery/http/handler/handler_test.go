package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/dto"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/http/middleware"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/policy"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/usecase"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/response"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClaimUsecase struct {
	patients []dto.PatientResponse
	err      error
	claimed  uuid.UUID
}

func (f *fakeClaimUsecase) ListUnassigned(context.Context, *entity.Identity) ([]dto.PatientResponse, error) {
	return f.patients, f.err
}

func (f *fakeClaimUsecase) Claim(_ context.Context, _ *entity.Identity, id uuid.UUID) (*dto.ClaimPatientResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.claimed = id
	return &dto.ClaimPatientResponse{Message: "You are now the assigned clinician for Jane Roe", PatientID: id}, nil
}

type fakeAlertUsecase struct {
	onlyUnresolved bool
	severity       entity.AlertSeverity
	calls          int
}

func (f *fakeAlertUsecase) List(_ context.Context, _ *entity.Identity, onlyUnresolved bool, severity entity.AlertSeverity) ([]dto.AlertResponse, error) {
	f.calls++
	f.onlyUnresolved, f.severity = onlyUnresolved, severity
	return []dto.AlertResponse{}, nil
}

func (f *fakeAlertUsecase) Resolve(context.Context, *entity.Identity, uuid.UUID) (*dto.AlertResponse, error) {
	return nil, usecase.ErrAlertAlreadyResolved
}

func (f *fakeAlertUsecase) ListMine(context.Context, *entity.Identity) ([]dto.AlertResponse, error) {
	return nil, policy.ErrDenied
}

func (f *fakeAlertUsecase) MarkMineRead(context.Context, *entity.Identity, uuid.UUID) error {
	return usecase.ErrAlertNotFound
}

type fakeAuditLogUsecase struct {
	page, limit int
}

func (f *fakeAuditLogUsecase) GetAllAuditLogs(_ context.Context, page, limit int) ([]dto.AuditLogResponse, *response.Meta, error) {
	f.page, f.limit = page, limit
	return []dto.AuditLogResponse{{ID: 1}}, response.NewMeta(2, 10, 11), nil
}

func (f *fakeAuditLogUsecase) GetAuditLog(_ context.Context, id int64) (*dto.AuditLogResponse, error) {
	if id != 1 {
		return nil, usecase.ErrAuditLogNotFound
	}
	return &dto.AuditLogResponse{ID: 1}, nil
}

func withCaller(r *http.Request, identity *entity.Identity) *http.Request {
	return r.WithContext(middleware.WithIdentity(r.Context(), identity))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func clinicianIdentity() *entity.Identity {
	inst := uuid.New()
	approved := entity.ApprovalApproved
	return &entity.Identity{UserID: uuid.New(), Role: entity.RoleClinician, InstitutionID: &inst, ApprovalStatus: &approved}
}

func TestClaim_Success(t *testing.T) {
	uc := &fakeClaimUsecase{}
	h := NewPatientClaimHandler(uc)
	id := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients/"+id.String()+"/claim", nil)
	req = mux.SetURLVars(withCaller(req, clinicianIdentity()), map[string]string{"id": id.String()})
	rec := httptest.NewRecorder()
	h.Claim(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, "You are now the assigned clinician for Jane Roe", body.Message)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, id.String(), data["patientId"])
	assert.Equal(t, id, uc.claimed)
}

func TestClaim_ErrorMapping(t *testing.T) {
	tests := []struct {
		err     error
		code    int
		message string
	}{
		{usecase.ErrClaimRaceLost, http.StatusBadRequest, RaceLostMessage},
		{usecase.ErrPatientAlreadyAssigned, http.StatusBadRequest, "This patient is already assigned to a clinician"},
		{usecase.ErrPatientNotFound, http.StatusNotFound, "Patient not found"},
		{usecase.ErrCrossTenantClaim, http.StatusForbidden, usecase.ErrCrossTenantClaim.Error()},
		{usecase.ErrOnlyClinicians, http.StatusForbidden, usecase.ErrOnlyClinicians.Error()},
		{policy.ErrNotLinkedToInstitution, http.StatusForbidden, policy.ErrNotLinkedToInstitution.Error()},
		{fmt.Errorf("claim: %w", errors.New("connection reset")), http.StatusInternalServerError, "Failed to claim patient"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := NewPatientClaimHandler(&fakeClaimUsecase{err: tt.err})
			id := uuid.New().String()
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req = mux.SetURLVars(withCaller(req, clinicianIdentity()), map[string]string{"id": id})
			rec := httptest.NewRecorder()
			h.Claim(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.message, decode(t, rec).Message)
		})
	}
}

func TestClaim_InvalidID(t *testing.T) {
	h := NewPatientClaimHandler(&fakeClaimUsecase{})
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = mux.SetURLVars(withCaller(req, clinicianIdentity()), map[string]string{"id": "not-a-uuid"})
	rec := httptest.NewRecorder()
	h.Claim(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClaim_Unauthenticated(t *testing.T) {
	h := NewPatientClaimHandler(&fakeClaimUsecase{})
	rec := httptest.NewRecorder()
	h.Claim(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListUnassigned(t *testing.T) {
	h := NewPatientClaimHandler(&fakeClaimUsecase{patients: []dto.PatientResponse{}})
	rec := httptest.NewRecorder()
	h.ListUnassigned(rec, withCaller(httptest.NewRequest(http.MethodGet, "/", nil), clinicianIdentity()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)

	h = NewPatientClaimHandler(&fakeClaimUsecase{err: policy.ErrNotLinkedToInstitution})
	rec = httptest.NewRecorder()
	h.ListUnassigned(rec, withCaller(httptest.NewRequest(http.MethodGet, "/", nil), &entity.Identity{Role: entity.RoleInstitutionAdmin}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAlertList_QueryParsing(t *testing.T) {
	uc := &fakeAlertUsecase{}
	h := NewAlertHandler(uc)

	rec := httptest.NewRecorder()
	h.List(rec, withCaller(httptest.NewRequest(http.MethodGet, "/alerts?status=all&severity=critical", nil), clinicianIdentity()))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, uc.onlyUnresolved)
	assert.Equal(t, entity.SeverityCritical, uc.severity)

	rec = httptest.NewRecorder()
	h.List(rec, withCaller(httptest.NewRequest(http.MethodGet, "/alerts", nil), clinicianIdentity()))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, uc.onlyUnresolved)

	rec = httptest.NewRecorder()
	h.List(rec, withCaller(httptest.NewRequest(http.MethodGet, "/alerts?severity=apocalyptic", nil), clinicianIdentity()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 2, uc.calls)
}

func TestAlertHandler_ErrorMapping(t *testing.T) {
	h := NewAlertHandler(&fakeAlertUsecase{})
	id := uuid.New().String()

	rec := httptest.NewRecorder()
	h.Resolve(rec, mux.SetURLVars(withCaller(httptest.NewRequest(http.MethodPatch, "/", nil), clinicianIdentity()), map[string]string{"id": id}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ListMine(rec, withCaller(httptest.NewRequest(http.MethodGet, "/", nil), clinicianIdentity()))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.MarkMineRead(rec, mux.SetURLVars(withCaller(httptest.NewRequest(http.MethodPatch, "/", nil), &entity.Identity{Role: entity.RolePatient}), map[string]string{"id": id}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuditLogs_Paging(t *testing.T) {
	uc := &fakeAuditLogUsecase{}
	h := NewAuditLogHandler(uc)

	rec := httptest.NewRecorder()
	h.GetAllAuditLogs(rec, httptest.NewRequest(http.MethodGet, "/admin/audit-logs?page=2&limit=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, uc.page)
	assert.Equal(t, 10, uc.limit)
	body := decode(t, rec)
	require.NotNil(t, body.Meta)
	assert.Equal(t, 2, body.Meta.TotalPages)

	rec = httptest.NewRecorder()
	h.GetAuditLog(rec, mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "9"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.GetAuditLog(rec, mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "abc"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeAuthUsecase struct {
	usecase.AuthUsecase
	registerErr error
}

func (f *fakeAuthUsecase) RegisterClinician(_ context.Context, req *dto.RegisterClinicianRequest) (*dto.UserResponse, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	pending := "pending"
	return &dto.UserResponse{ID: uuid.New(), Email: req.Email, Role: "clinician", ApprovalStatus: &pending}, nil
}

func TestRegisterClinician(t *testing.T) {
	inst := uuid.New()
	valid := `{"email":"doc@example.com","password":"secret123","fullName":"Dr. Doc","institutionId":"` + inst.String() + `"}`

	tests := []struct {
		name string
		body string
		err  error
		code int
	}{
		{"created", valid, nil, http.StatusCreated},
		{"malformed json", `{"email":`, nil, http.StatusBadRequest},
		{"validation", `{"email":"nope","password":"x"}`, nil, http.StatusBadRequest},
		{"duplicate email", valid, usecase.ErrEmailAlreadyExists, http.StatusConflict},
		{"unknown institution", valid, usecase.ErrInstitutionNotFound, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&fakeAuthUsecase{registerErr: tt.err}, validator.NewValidator())
			rec := httptest.NewRecorder()
			h.RegisterClinician(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
