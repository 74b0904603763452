package converter

import (
	"time"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/dto"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
)

const (
	PatientStatusAssigned   = "assigned"
	PatientStatusUnassigned = "unassigned"
)

// PatientToResponse converts a Patient entity, computing age at now.
func PatientToResponse(patient *entity.Patient, now time.Time) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	response := &dto.PatientResponse{
		ID:                  patient.ID,
		Name:                patient.Name,
		Age:                 patient.Age(now),
		Gender:              patient.Gender,
		Condition:           patient.Condition,
		RiskLevel:           patient.RiskLevel,
		Status:              PatientStatusUnassigned,
		InstitutionID:       patient.InstitutionID,
		AssignedClinicianID: patient.AssignedClinicianID,
		CreatedAt:           patient.CreatedAt,
	}

	if patient.IsAssigned() {
		response.Status = PatientStatusAssigned
	}
	if patient.Institution != nil {
		response.InstitutionName = patient.Institution.Name
	}

	return response
}

func PatientsToResponses(patients []entity.Patient, now time.Time) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, len(patients))
	for i := range patients {
		responses[i] = *PatientToResponse(&patients[i], now)
	}
	return responses
}
