package repository

import (
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/policy"

	"gorm.io/gorm"
)

// scopePatients bounds a query over the patients table. An unrecognised scope matches nothing.
func scopePatients(db *gorm.DB, scope policy.Scope) *gorm.DB {
	switch scope.Kind {
	case policy.KindGlobal:
		return db
	case policy.KindInstitution:
		return db.Where("patients.institution_id = ?", scope.InstitutionID)
	case policy.KindAssignedClinician:
		return db.Where("patients.assigned_clinician_id = ?", scope.ClinicianID)
	case policy.KindOwner:
		return db.Where("patients.user_id = ?", scope.OwnerUserID)
	}
	return db.Where("1 = 0")
}

// scopeOwnedRows bounds a table keyed by the patient's login (user_id) through the owning patient row.
func scopeOwnedRows(db *gorm.DB, table string, scope policy.Scope) *gorm.DB {
	switch scope.Kind {
	case policy.KindGlobal:
		return db
	case policy.KindOwner:
		return db.Where(table+".user_id = ?", scope.OwnerUserID)
	case policy.KindInstitution, policy.KindAssignedClinician:
		joined := db.Joins("JOIN patients ON patients.user_id = " + table + ".user_id")
		return scopePatients(joined, scope)
	}
	return db.Where("1 = 0")
}
