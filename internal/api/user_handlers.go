package api

import (
	"net/http"

	_ "photolog/internal/models"
)

// @Summary      Get current user info
// @Description  Returns the user the session cookie belongs to.
// @Tags         users
// @Produce      json
// @Success      200  {object}  models.User
// @Failure      401  {object}  ErrorResponse
// @Router       /api/v1/me [get]
func (s *Server) GetCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusInternalServerError, "Could not retrieve user from session")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
