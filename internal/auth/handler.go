package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/directory/entity"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/rbac"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/token"
)

// Handler exposes the auth operations over HTTP.
type Handler struct {
	svc    *Service
	tokens *token.Manager
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, tokens *token.Manager, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, tokens: tokens, logger: logger}
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token and the sanitized user.
type LoginResponse struct {
	Token string      `json:"token"`
	User  entity.User `json:"user"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	user, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Debugw("login failed", "username", req.Username, "err", err)
		switch {
		case errors.Is(err, ErrMissingCredentials):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		case errors.Is(err, ErrInvalidCredentials):
			h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		case errors.Is(err, ErrAccountInactive):
			h.writeJSON(w, http.StatusForbidden, map[string]string{"error": "account inactive"})
		case errors.Is(err, ErrLoginInFlight):
			h.writeJSON(w, http.StatusConflict, map[string]string{"error": "login already in progress"})
		default:
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		}
		return
	}

	signed, err := h.tokens.Generate(user.ID, user.Username, user.Role)
	if err != nil {
		h.logger.Errorw("token generation failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, LoginResponse{Token: signed, User: *user})
}

// LogoutRequest requires the caller to assert the user confirmed.
type LogoutRequest struct {
	Confirm bool `json:"confirm"`
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid logout payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := h.svc.Logout(r.Context(), req.Confirm); err != nil {
		if errors.Is(err, ErrNotConfirmed) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "confirmation required"})
			return
		}
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "logout failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

// SessionResponse reports the lifecycle state and, when signed in, the user.
type SessionResponse struct {
	State State        `json:"state"`
	User  *entity.User `json:"user,omitempty"`
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	user := h.svc.CurrentUser()
	if user == nil {
		h.writeJSON(w, http.StatusUnauthorized, SessionResponse{State: h.svc.State()})
		return
	}
	h.writeJSON(w, http.StatusOK, SessionResponse{State: h.svc.State(), User: user})
}

// PermissionsResponse lists what the active role may see and do.
type PermissionsResponse struct {
	Role     rbac.Role      `json:"role"`
	Sections []rbac.Section `json:"sections"`
	Actions  []rbac.Action  `json:"actions"`
}

func (h *Handler) Permissions(w http.ResponseWriter, r *http.Request) {
	user := h.svc.CurrentUser()
	if user == nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no active session"})
		return
	}
	h.writeJSON(w, http.StatusOK, PermissionsResponse{
		Role:     user.Role,
		Sections: rbac.SectionsFor(user.Role),
		Actions:  rbac.ActionsFor(user.Role),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
