package dto

import "github.com/google/uuid"

type DashboardStatsResponse struct {
	TotalPatients      int64  `json:"totalPatients"`
	UnassignedPatients int64  `json:"unassignedPatients"`
	ActiveAlerts       int64  `json:"activeAlerts"`
	CriticalAlerts     int64  `json:"criticalAlerts"`
	Scope              string `json:"scope"`
}

type TopPerformerResponse struct {
	ClinicianID      uuid.UUID `json:"clinicianId"`
	FullName         string    `json:"fullName"`
	InstitutionID    uuid.UUID `json:"institutionId"`
	AssignedPatients int64     `json:"assignedPatients"`
	ResolvedAlerts   int64     `json:"resolvedAlerts"`
}
