package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/account-service/internal/apperror"
	"github.com/sakif/account-service/internal/auth"
	"github.com/sakif/account-service/internal/model"
	"github.com/sakif/account-service/internal/service"
)

// AccountHandler exposes the account service over HTTP.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister → POST /users/register: create an account, 201 + profile
//   - HandleLogin    → POST /users/login: verify credentials, 200 + token
//   - HandleProfile  → GET /users/profile: return the caller's own profile
//
// Handlers decode JSON, call the service, and translate the result —
// nothing else. All credential rules live in the service; all status-code
// mapping lives in writeError.
type AccountHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

// NewAccountHandler creates an AccountHandler. Dependencies are injected;
// the handler has no knowledge of how they're constructed.
func NewAccountHandler(accounts *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// registerRequest is the expected body for POST /users/register.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest is the expected body for POST /users/login.
// The identifier may be an email or a username.
type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// registerResponse is the 201 body: the redacted profile, never the hash.
type registerResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	User    *model.PublicProfile `json:"user"`
}

// loginResponse is the 200 body. Login returns a token, not a profile —
// the profile endpoint is reached with the token.
type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

// HandleRegister creates a new user account.
//
// HTTP: POST /users/register
// Body: {"username": ..., "email": ..., "password": ...}
//
// Responses: 201 with the public profile; 400 on missing fields; 409 when
// username or email is taken (the message names which); 500 otherwise.
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "request body must be valid JSON"))
		return
	}

	profile, err := h.accounts.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.logError("register failed", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		Success: true,
		Message: "user registered successfully",
		User:    profile,
	})
}

// HandleLogin authenticates a user and issues a session token.
//
// HTTP: POST /users/login
// Body: {"identifier": ..., "password": ...}
//
// Responses: 200 with a token; 400 on missing fields; 401 on bad
// credentials. The 401 is identical whether the identifier was unknown or
// the password wrong.
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "request body must be valid JSON"))
		return
	}

	token, err := h.accounts.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		h.logError("login failed", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Message: "login successful",
		Token:   token,
	})
}

// HandleProfile returns the authenticated caller's public profile.
//
// HTTP: GET /users/profile
// Auth: required — RequireAuth has already verified the bearer token and
// put the identity in the context.
//
// Responses: 200 with the profile; 401 handled by the middleware; 404 if
// the token's subject no longer exists.
func (h *AccountHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		// Unreachable on a RequireAuth-protected route, but be safe.
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	profile, err := h.accounts.Profile(r.Context(), ident.UserID)
	if err != nil {
		h.logError("profile lookup failed", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// logError records failures server-side. Expected domain errors log at
// Debug so normal traffic (wrong passwords, taken usernames) doesn't spam
// the log; everything else is a real Error.
func (h *AccountHandler) logError(msg string, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		h.logger.Debug(msg, slog.String("error", err.Error()))
		return
	}
	h.logger.Error(msg, slog.String("error", err.Error()))
}
