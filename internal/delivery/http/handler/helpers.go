package handler

import (
	"net/http"
	"strconv"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/http/middleware"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// caller writes 401 and returns false when the route was not behind Authenticate.
func caller(w http.ResponseWriter, r *http.Request) (*entity.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return nil, false
	}
	return identity, true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// queryInt returns 0 for a missing or malformed value so usecases apply their defaults.
func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}
