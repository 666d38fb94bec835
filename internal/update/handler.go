package update

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Handler exposes the version status.
type Handler struct {
	checker *Checker
	logger  *zap.SugaredLogger
}

func NewHandler(checker *Checker, logger *zap.SugaredLogger) *Handler {
	return &Handler{checker: checker, logger: logger}
}

// Version reports the running version and the latest release seen.
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(h.checker.Status())
}
