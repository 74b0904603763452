package entity

import "github.com/google/uuid"

// ClinicianPerformance is an aggregate row for the top-performers board.
type ClinicianPerformance struct {
	ClinicianID      uuid.UUID `json:"clinician_id"`
	FullName         string    `json:"full_name"`
	InstitutionID    uuid.UUID `json:"institution_id"`
	AssignedPatients int64     `json:"assigned_patients"`
	ResolvedAlerts   int64     `json:"resolved_alerts"`
}
