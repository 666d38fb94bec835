package i18n

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Handler exposes the catalog and the language switch.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// TranslationsResponse is the dictionary payload for one language.
type TranslationsResponse struct {
	Language  string            `json:"language"`
	Languages []string          `json:"languages"`
	Table     map[string]string `json:"table"`
}

// Translations returns the dictionary for ?lang= (default: active language).
func (h *Handler) Translations(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	table, err := h.svc.Table(lang)
	if err != nil {
		if errors.Is(err, ErrUnknownLanguage) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown language"})
			return
		}
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "translations unavailable"})
		return
	}
	if lang == "" {
		lang = h.svc.Language()
	}
	h.writeJSON(w, http.StatusOK, TranslationsResponse{
		Language:  lang,
		Languages: h.svc.Languages(),
		Table:     table,
	})
}

// LanguageRequest is the language-switch payload.
type LanguageRequest struct {
	Language string `json:"language"`
}

// PutLanguage switches and persists the active language.
func (h *Handler) PutLanguage(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid language payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := h.svc.SetLanguage(req.Language); err != nil {
		if errors.Is(err, ErrUnknownLanguage) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown language"})
			return
		}
		h.logger.Warnw("language switch failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "language switch failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"language": req.Language})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
