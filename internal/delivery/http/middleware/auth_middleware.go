package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/service"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/response"

	"github.com/sirupsen/logrus"
)

type contextKey string

const identityKey contextKey = "identity"

type AuthMiddleware struct {
	identity service.IdentityService
	log      *logrus.Logger
}

func NewAuthMiddleware(identity service.IdentityService, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		identity: identity,
		log:      log,
	}
}

// Authenticate resolves the bearer token into an Identity and stores it in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		identity, err := m.identity.Verify(r.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidToken),
				errors.Is(err, service.ErrTokenRevoked),
				errors.Is(err, service.ErrAccountMissing):
				response.Unauthorized(w, err.Error())
			case errors.Is(err, service.ErrProfileNotFound):
				response.Forbidden(w, err.Error())
			default:
				m.log.Errorf("Failed to verify identity: %+v", err)
				response.InternalServerError(w, "Failed to validate token")
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func WithIdentity(ctx context.Context, identity *entity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the caller set by Authenticate.
func IdentityFromContext(ctx context.Context) (*entity.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*entity.Identity)
	return identity, ok && identity != nil
}
