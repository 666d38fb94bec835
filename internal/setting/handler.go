package setting

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/auth"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/session"
)

// Handler exposes the settings panel over HTTP.
type Handler struct {
	svc      *Service
	sessions *session.Store
	logger   *zap.SugaredLogger
}

func NewHandler(svc *Service, sessions *session.Store, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, sessions: sessions, logger: logger}
}

// PreferencesResponse carries the stored preferences plus the session
// lifetime actually in force; a saved lifetime applies at the next start.
type PreferencesResponse struct {
	Preferences
	EffectiveSessionTTLHours int `json:"effective_session_ttl_hours"`
}

// Get returns the current preferences (defaults when nothing is stored)
// and the effective session lifetime.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	resp := PreferencesResponse{Preferences: h.svc.Preferences()}
	if h.sessions != nil {
		resp.EffectiveSessionTTLHours = int(h.sessions.TTL().Hours())
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Put replaces the preferences.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	var prefs Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		h.logger.Debugw("invalid preferences payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := h.svc.SavePreferences(prefs); err != nil {
		if errors.Is(err, ErrInvalidPreferences) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		h.logger.Warnw("preferences save failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "save failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, prefs)
}

// PutProfile applies a partial profile edit to the signed-in user.
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var patch ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.logger.Debugw("invalid profile payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	user, err := h.svc.UpdateProfile(r.Context(), patch)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNoSession):
			h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no active session"})
		case errors.Is(err, ErrInvalidProfile):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			h.logger.Warnw("profile update failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "update failed"})
		}
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
