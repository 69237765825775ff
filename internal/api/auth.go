package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/loanledger/loanledger/internal/auth"
)

// loginRequest is the request body for POST /api/auth.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response body for a successful login.
//
// The session cookie on the response is what authenticates subsequent
// requests; the token is also included in the body for clients that
// inspect or store it themselves.
type loginResponse struct {
	Message string     `json:"message"`
	User    *auth.User `json:"user"`
	Token   string     `json:"token"`
}

// sessionUser is the response body for GET /api/auth/check.
type sessionUser struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Role     auth.Role `json:"role"`
}

// changePasswordRequest is the request body for POST /api/auth/change-password.
// The camelCase keys are the published wire contract.
type changePasswordRequest struct {
	Username    string `json:"username"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// handleLogin authenticates a user and establishes the session cookie.
//
// Unknown username and wrong password produce the identical response so
// the endpoint cannot be used to enumerate accounts.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "Username and password are required")
		return
	}

	user, err := s.userRepo.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeUnauthorized(w, "Invalid credentials")
			return
		}
		s.logger.Error("login lookup failed", "error", err)
		writeInternalError(w, "Login failed")
		return
	}

	if !user.PasswordMatches(req.Password) {
		writeUnauthorized(w, "Invalid credentials")
		return
	}

	token, err := auth.SignSessionToken(user, s.secCfg.JWT.Secret)
	if err != nil {
		s.logger.Error("token signing failed", "error", err, "user_id", user.ID)
		writeInternalError(w, "Login failed")
		return
	}

	http.SetCookie(w, auth.NewSessionCookie(token, s.production))

	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)
	s.auditLog("login", "user", user.ID, user.ID, nil)

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		User:    user,
		Token:   token,
	})
}

// handleAuthCheck reports whether the request carries a valid session.
//
// Not behind authMiddleware: it reads the cookie itself so a missing
// token and an invalid one get distinct messages.
func (s *Server) handleAuthCheck(w http.ResponseWriter, r *http.Request) {
	tokenString, ok := auth.ReadSessionToken(r)
	if !ok {
		writeUnauthorized(w, "No token provided")
		return
	}

	claims, err := auth.ParseSessionToken(tokenString, s.secCfg.JWT.Secret)
	if err != nil {
		writeUnauthorized(w, "Invalid or expired token")
		return
	}

	writeJSON(w, http.StatusOK, sessionUser{
		ID:       claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
	})
}

// handleLogout clears the session cookie.
//
// Sessions are stateless, so logout is purely a client-side operation:
// the cleared cookie is the whole effect, and it succeeds whether or
// not a valid session existed.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearSessionCookie(s.production))

	// Best effort: attribute the logout if the cookie was still valid.
	if tokenString, ok := auth.ReadSessionToken(r); ok {
		if claims, err := auth.ParseSessionToken(tokenString, s.secCfg.JWT.Secret); err == nil {
			s.auditLog("logout", "user", claims.Subject, claims.Subject, nil)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Logout successful",
	})
}

// handleChangePassword updates a user's password after verifying the old one.
//
// The old password in the body is the credential; no session cookie is
// required. Existing session tokens remain valid until expiry; only new
// logins are checked against the new password.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	if req.Username == "" || req.OldPassword == "" || req.NewPassword == "" {
		writeBadRequest(w, "Username, old password, and new password are required")
		return
	}

	user, err := s.userRepo.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "User not found")
			return
		}
		s.logger.Error("change password lookup failed", "error", err)
		writeInternalError(w, "Password change failed")
		return
	}

	if !user.PasswordMatches(req.OldPassword) {
		writeUnauthorized(w, "Invalid credentials")
		return
	}

	if err := s.userRepo.UpdatePassword(r.Context(), user.ID, req.NewPassword); err != nil {
		s.logger.Error("password update failed", "error", err, "user_id", user.ID)
		writeInternalError(w, "Password change failed")
		return
	}

	// Attribute to the session if one rode along, otherwise to the
	// account itself (the old password already proved ownership).
	actor := user.ID
	if tokenString, ok := auth.ReadSessionToken(r); ok {
		if claims, err := auth.ParseSessionToken(tokenString, s.secCfg.JWT.Secret); err == nil {
			actor = claims.Subject
		}
	}

	s.logger.Info("password changed", "user_id", user.ID, "changed_by", actor)
	s.auditLog("password_change", "user", user.ID, actor, nil)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Password changed successfully",
	})
}
