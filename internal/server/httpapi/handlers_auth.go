package httpapi

import (
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
)

const msgMissingFields = "Please add all fields"

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *credentialsRequest) fromForm(v url.Values) {
	c.Email = v.Get("email")
	c.Password = v.Get("password")
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (c *refreshRequest) fromForm(v url.Values) {
	c.RefreshToken = v.Get("refresh_token")
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	res, err := s.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeAuthError(w, r, "register", err, http.StatusBadRequest)
		return
	}

	s.logger.Info(r.Context(), "user registered", "user_id", res.User.ID)
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	res, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeAuthError(w, r, "login", err, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	if req.RefreshToken == "" {
		writeMessage(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	res, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeAuthError(w, r, "refresh", err, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, IdentityFrom(r.Context()))
}

// handleLogout is open: a missing or stale token still logs out.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := bearerToken(r)

	if err := s.auth.Logout(r.Context(), token); err != nil {
		s.logError(r, "logout failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

// writeAuthError reports provider rejections with status and their own
// message; infrastructure failures become 500.
func (s *Server) writeAuthError(w http.ResponseWriter, r *http.Request, op string, err error, status int) {
	if auth.IsInternal(err) {
		s.logError(r, "auth provider failure", "op", op, "error", err)
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Debug(r.Context(), "auth rejected", "op", op, "reason", err.Error())
	writeMessage(w, status, err.Error())
}
