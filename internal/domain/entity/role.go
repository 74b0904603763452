package entity

// Role is the canonical role stored on a user's profile.
type Role string

const (
	RolePatient          Role = "patient"
	RoleClinician        Role = "clinician"
	RoleAdmin            Role = "admin"
	RoleInstitutionAdmin Role = "institution_admin"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RoleClinician, RoleAdmin, RoleInstitutionAdmin:
		return true
	}
	return false
}

// RequiresInstitution reports whether accounts with this role must be bound to an institution.
func (r Role) RequiresInstitution() bool {
	return r == RoleClinician || r == RoleInstitutionAdmin
}

// IsStaff reports whether r is a dashboard (non-patient) role.
func (r Role) IsStaff() bool {
	return r == RoleClinician || r == RoleAdmin || r == RoleInstitutionAdmin
}
