// Package shell holds the presentation-side state the dashboard front-end
// renders: the toast queue, the loading overlay counter, the modal stack,
// the active section, and table view-models. It is deliberately dumb about
// identity; section access is delegated to a gate the caller injects.
package shell

import (
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/events"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/rbac"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/pkg/utilities"
)

// Toast severities.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// ErrSectionDenied is returned by Navigate when the gate refuses the section.
var ErrSectionDenied = errors.New("section not permitted for current user")

// maxToasts bounds the queue; the oldest toast is dropped past this.
const maxToasts = 32

// Toast is a transient notification for the front-end to display.
type Toast struct {
	ID       string    `json:"id"`
	Message  string    `json:"message"`
	Severity string    `json:"severity"`
	At       time.Time `json:"at"`
}

// Modal is one entry on the modal stack.
type Modal struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Payload any    `json:"payload,omitempty"`
}

// SectionGate decides whether the current identity may enter a section.
// The auth service satisfies this.
type SectionGate interface {
	CanAccessSection(section rbac.Section) bool
}

// State is a point-in-time snapshot for the front-end.
type State struct {
	Section        rbac.Section `json:"section"`
	Loading        bool         `json:"loading"`
	LoadingMessage string       `json:"loadingMessage,omitempty"`
	ActiveModal    *Modal       `json:"activeModal,omitempty"`
	PendingToasts  int          `json:"pendingToasts"`
}

// Manager is the single mutable holder of shell state.
type Manager struct {
	mu         sync.Mutex
	gate       SectionGate
	bus        *events.Bus
	logger     *zap.SugaredLogger
	toasts     []Toast
	loading    int
	loadingMsg string
	modals     []Modal
	section    rbac.Section
}

func NewManager(gate SectionGate, bus *events.Bus, logger *zap.SugaredLogger) *Manager {
	return &Manager{
		gate:    gate,
		bus:     bus,
		logger:  logger,
		section: rbac.SectionDashboard,
	}
}

// ShowToast queues a notification. Unknown severities degrade to info.
func (m *Manager) ShowToast(message, severity string) {
	switch severity {
	case SeverityInfo, SeveritySuccess, SeverityWarning, SeverityError:
	default:
		severity = SeverityInfo
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = append(m.toasts, Toast{
		ID:       utilities.NewKSUID(),
		Message:  message,
		Severity: severity,
		At:       time.Now(),
	})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
}

// DrainToasts returns all queued toasts and empties the queue.
func (m *Manager) DrainToasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.toasts
	m.toasts = nil
	return out
}

// ShowLoading raises the loading overlay. Calls nest; each ShowLoading
// needs a matching HideLoading before the overlay drops.
func (m *Manager) ShowLoading(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading++
	if message != "" {
		m.loadingMsg = message
	}
}

// HideLoading lowers the overlay one level. The counter never goes negative.
func (m *Manager) HideLoading() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loading > 0 {
		m.loading--
	}
	if m.loading == 0 {
		m.loadingMsg = ""
	}
}

// Loading reports whether the overlay is up and its current message.
func (m *Manager) Loading() (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading > 0, m.loadingMsg
}

// OpenModal pushes a modal onto the stack and returns its ID.
func (m *Manager) OpenModal(kind string, payload any) string {
	id := utilities.NewKSUID()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modals = append(m.modals, Modal{ID: id, Kind: kind, Payload: payload})
	return id
}

// CloseModal pops the top modal. Closing with an empty stack is a no-op.
func (m *Manager) CloseModal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.modals) > 0 {
		m.modals = m.modals[:len(m.modals)-1]
	}
}

// ActiveModal returns the top of the modal stack, or nil.
func (m *Manager) ActiveModal() *Modal {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.modals) == 0 {
		return nil
	}
	top := m.modals[len(m.modals)-1]
	return &top
}

// Navigate switches the active section after consulting the gate. A denied
// navigation queues a warning toast and publishes nothing.
func (m *Manager) Navigate(section rbac.Section) error {
	if m.gate != nil && !m.gate.CanAccessSection(section) {
		m.ShowToast("You do not have access to "+string(section), SeverityWarning)
		if m.logger != nil {
			m.logger.Infow("navigation denied", "section", section)
		}
		return ErrSectionDenied
	}
	m.mu.Lock()
	m.section = section
	m.mu.Unlock()
	if m.bus != nil {
		m.bus.Publish(events.TopicSectionChanged, string(section))
	}
	return nil
}

// ActiveSection returns the section the shell currently shows.
func (m *Manager) ActiveSection() rbac.Section {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.section
}

// Snapshot captures the current shell state for the front-end.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := State{
		Section:        m.section,
		Loading:        m.loading > 0,
		LoadingMessage: m.loadingMsg,
		PendingToasts:  len(m.toasts),
	}
	if len(m.modals) > 0 {
		top := m.modals[len(m.modals)-1]
		s.ActiveModal = &top
	}
	return s
}

// Column describes one table column the front-end renders.
type Column struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// Table is the paged, filtered projection of a row set.
type Table struct {
	Columns  []Column         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Total    int              `json:"total"`
	Pages    int              `json:"pages"`
}

// BuildTable filters rows by a case-insensitive substring over string cells,
// then pages the result. Page numbers are 1-based; out-of-range pages yield
// empty rows, not an error.
func BuildTable(columns []Column, rows []map[string]any, page, pageSize int, filter string) Table {
	if pageSize <= 0 {
		pageSize = 10
	}
	if page <= 0 {
		page = 1
	}

	filtered := rows
	if needle := strings.ToLower(strings.TrimSpace(filter)); needle != "" {
		filtered = make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			for _, col := range columns {
				cell, ok := row[col.Key].(string)
				if ok && strings.Contains(strings.ToLower(cell), needle) {
					filtered = append(filtered, row)
					break
				}
			}
		}
	}

	total := len(filtered)
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	// Huge page values overflow the offsets; clamp both ends into range.
	start := (page - 1) * pageSize
	if start < 0 || start > total {
		start = total
	}
	end := start + pageSize
	if end < start || end > total {
		end = total
	}

	return Table{
		Columns:  columns,
		Rows:     filtered[start:end],
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Pages:    pages,
	}
}
