// Package policy derives the row-visibility scope of a caller for each dashboard resource.
//
// Resolution is a pure lookup keyed by (resource, role). A caller whose tenant binding is broken
// is denied outright rather than narrowed to an empty result, so "no institution" and "no rows"
// stay distinguishable.
package policy

import (
	"errors"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrDenied is returned when the caller's role may not access the resource at all.
	ErrDenied = errors.New("role is not permitted to access this resource")
	// ErrNotLinkedToInstitution is returned when an institution-bound scope is required
	// but the caller's profile has no institution.
	ErrNotLinkedToInstitution = errors.New("account is not linked to an institution")
)

// Resource names a family of rows guarded by the resolver.
type Resource string

const (
	ResourcePatients           Resource = "patients"
	ResourceUnassignedPatients Resource = "unassigned-patients"
	ResourceAlerts             Resource = "alerts"
	ResourceVitals             Resource = "vitals"
	ResourceDashboardStats     Resource = "dashboard-stats"
	ResourceTopPerformers      Resource = "top-performers"
)

// Kind is the shape of the filter a Scope applies.
type Kind int

const (
	KindGlobal Kind = iota + 1
	KindInstitution
	KindAssignedClinician
	KindOwner
)

func (k Kind) String() string {
	switch k {
	case KindGlobal:
		return "global"
	case KindInstitution:
		return "institution"
	case KindAssignedClinician:
		return "assigned_clinician"
	case KindOwner:
		return "owner"
	}
	return "unknown"
}

// Caller is the subset of an identity the resolver needs.
type Caller struct {
	UserID        uuid.UUID
	Role          entity.Role
	InstitutionID *uuid.UUID
}

// CallerFromIdentity adapts an authenticated identity.
func CallerFromIdentity(id *entity.Identity) Caller {
	return Caller{
		UserID:        id.UserID,
		Role:          id.Role,
		InstitutionID: id.InstitutionID,
	}
}

// Scope bounds the rows a caller may read or write.
// Exactly one of the id fields is meaningful, selected by Kind.
type Scope struct {
	Kind          Kind
	InstitutionID uuid.UUID
	ClinicianID   uuid.UUID
	OwnerUserID   uuid.UUID
}

// Global reports whether the scope applies no filter.
func (s Scope) Global() bool {
	return s.Kind == KindGlobal
}

// PermitsPatient reports whether p lies inside the scope.
func (s Scope) PermitsPatient(p *entity.Patient) bool {
	if p == nil {
		return false
	}
	switch s.Kind {
	case KindGlobal:
		return true
	case KindInstitution:
		return p.InstitutionID == s.InstitutionID
	case KindAssignedClinician:
		return p.AssignedClinicianID != nil && *p.AssignedClinicianID == s.ClinicianID
	case KindOwner:
		return p.UserID != nil && *p.UserID == s.OwnerUserID
	}
	return false
}

type rule func(c Caller) (Scope, error)

func global(Caller) (Scope, error) {
	return Scope{Kind: KindGlobal}, nil
}

func institution(c Caller) (Scope, error) {
	if c.InstitutionID == nil {
		return Scope{}, ErrNotLinkedToInstitution
	}
	return Scope{Kind: KindInstitution, InstitutionID: *c.InstitutionID}, nil
}

func assignedClinician(c Caller) (Scope, error) {
	return Scope{Kind: KindAssignedClinician, ClinicianID: c.UserID}, nil
}

// table lists every permitted (resource, role) pair. Missing pairs are denied.
// Alerts deliberately omit institution_admin: alerts are clinical-response data.
var table = map[Resource]map[entity.Role]rule{
	ResourcePatients: {
		entity.RoleAdmin:            global,
		entity.RoleInstitutionAdmin: institution,
		entity.RoleClinician:        assignedClinician,
	},
	ResourceUnassignedPatients: {
		entity.RoleAdmin:            global,
		entity.RoleInstitutionAdmin: institution,
		entity.RoleClinician:        institution,
	},
	ResourceAlerts: {
		entity.RoleAdmin:     global,
		entity.RoleClinician: assignedClinician,
	},
	ResourceVitals: {
		entity.RoleAdmin:            global,
		entity.RoleInstitutionAdmin: institution,
		entity.RoleClinician:        assignedClinician,
	},
	ResourceDashboardStats: {
		entity.RoleAdmin:            global,
		entity.RoleInstitutionAdmin: institution,
		entity.RoleClinician:        assignedClinician,
	},
	ResourceTopPerformers: {
		entity.RoleAdmin:            global,
		entity.RoleInstitutionAdmin: institution,
	},
}

// Resolve returns the scope for caller on resource, or ErrDenied / ErrNotLinkedToInstitution.
func Resolve(resource Resource, c Caller) (Scope, error) {
	rules, ok := table[resource]
	if !ok {
		return Scope{}, ErrDenied
	}
	r, ok := rules[c.Role]
	if !ok {
		return Scope{}, ErrDenied
	}
	return r(c)
}

// ResolveSelf returns the identity-keyed scope used by a patient reading their own rows.
func ResolveSelf(c Caller) (Scope, error) {
	if c.Role != entity.RolePatient {
		return Scope{}, ErrDenied
	}
	return Scope{Kind: KindOwner, OwnerUserID: c.UserID}, nil
}

// IsDenial reports whether err is one of the resolver's denial outcomes.
func IsDenial(err error) bool {
	return errors.Is(err, ErrDenied) || errors.Is(err, ErrNotLinkedToInstitution)
}
