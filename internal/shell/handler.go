package shell

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/rbac"
)

// Handler exposes the shell state to the front-end.
type Handler struct {
	mgr    *Manager
	logger *zap.SugaredLogger
}

func NewHandler(mgr *Manager, logger *zap.SugaredLogger) *Handler {
	return &Handler{mgr: mgr, logger: logger}
}

// State returns the current shell snapshot.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.mgr.Snapshot())
}

// NavigateRequest body for the navigate endpoint.
type NavigateRequest struct {
	Section string `json:"section"`
}

func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid navigate payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := h.mgr.Navigate(rbac.Section(req.Section)); err != nil {
		if errors.Is(err, ErrSectionDenied) {
			h.writeJSON(w, http.StatusForbidden, map[string]string{"error": "section not permitted"})
			return
		}
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "navigation failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"section": string(h.mgr.ActiveSection())})
}

// Toasts drains and returns the pending toast queue.
func (h *Handler) Toasts(w http.ResponseWriter, r *http.Request) {
	toasts := h.mgr.DrainToasts()
	if toasts == nil {
		toasts = []Toast{}
	}
	h.writeJSON(w, http.StatusOK, toasts)
}

// TableRequest describes the rows to project into a table view-model.
type TableRequest struct {
	Columns  []Column         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Filter   string           `json:"filter"`
}

func (h *Handler) Table(w http.ResponseWriter, r *http.Request) {
	var req TableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid table payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	h.writeJSON(w, http.StatusOK, BuildTable(req.Columns, req.Rows, req.Page, req.PageSize, req.Filter))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
