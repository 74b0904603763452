package middleware

import (
	"net/http"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/response"
)

// RequireRole creates a middleware that checks if the caller has any of the given roles.
// It must run after AuthMiddleware.Authenticate.
func RequireRole(roles ...entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			allowed := false
			for _, role := range roles {
				if identity.Role == role {
					allowed = true
					break
				}
			}

			if !allowed {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireApproved rejects staff accounts whose approval is pending or rejected.
// Patients are never gated and admins count as approved.
func RequireApproved(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			response.Unauthorized(w, "Role information not found")
			return
		}

		if identity.Role != entity.RolePatient && !identity.IsApproved() {
			response.Forbidden(w, "Your account is awaiting approval")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireStaff admits clinicians, institution admins and admins.
func RequireStaff(next http.Handler) http.Handler {
	return RequireRole(entity.RoleClinician, entity.RoleInstitutionAdmin, entity.RoleAdmin)(next)
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleAdmin)(next)
}

func RequirePatient(next http.Handler) http.Handler {
	return RequireRole(entity.RolePatient)(next)
}
