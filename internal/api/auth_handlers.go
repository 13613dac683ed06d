package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const loginFailedMessage = "Incorrect username or password"

// @Summary      Logs a user in
// @Description  Verifies form credentials and sets an HttpOnly session cookie holding a signed token.
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      200  {object}  ResultResponse
// @Failure      401  {object}  ResultResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /token [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		writeFailure(w, http.StatusUnauthorized, loginFailedMessage)
		return
	}

	user, err := s.credentials.Verify(r.Context(), username, password)
	if err != nil {
		s.log.Error("failed to verify credentials", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		s.log.Info("login failed", zap.String("remote", r.RemoteAddr))
		writeFailure(w, http.StatusUnauthorized, loginFailedMessage)
		return
	}

	token, expiresAt, err := s.codec.Issue(user.Username, s.config.JWT.TTL)
	if err != nil {
		s.log.Error("failed to issue session token", zap.Int64("user_id", user.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.Cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(s.config.JWT.TTL / time.Second),
		HttpOnly: true,
		Secure:   s.config.Cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})

	s.log.Info("user logged in", zap.Int64("user_id", user.ID))

	w.Header().Set("HX-Redirect", "/upload")
	writeJSON(w, http.StatusOK, ResultResponse{Success: true})
}

// @Summary      Logs the current user out
// @Description  Clears the session cookie and redirects to the gallery. The token itself stays valid until it expires.
// @Tags         auth
// @Success      302
// @Router       /logout [get]
func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.Cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.Cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})

	http.Redirect(w, r, "/", http.StatusFound)
}
