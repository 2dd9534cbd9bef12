package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/stylemate/platform/internal/api/middleware"
	"github.com/stylemate/platform/internal/errors"
	"github.com/stylemate/platform/internal/models"
	"github.com/stylemate/platform/internal/utils/response"
)

// claimsOrFail pulls the authenticated claims out of the request context and
// writes the 401 itself when they are missing.
func claimsOrFail(w http.ResponseWriter, r *http.Request) (*models.Claims, bool) {

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		middleware.LoggerFromContext(r.Context()).Warn("Unauthenticated request reached a protected handler")
		response.Error(w, errors.UnauthorizedError("Authentication required"))
		return nil, false
	}

	return claims, true
}

// pathUUID parses the named path segment as a UUID, writing the 400 itself.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {

	raw := r.PathValue(name)

	id, err := uuid.Parse(raw)
	if err != nil {
		response.Error(w, errors.BadRequestError("Invalid "+name))
		return uuid.Nil, false
	}

	return id, true
}
