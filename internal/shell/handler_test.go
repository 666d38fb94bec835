package shell

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/rbac"
)

func newTestHandler(allowed ...rbac.Section) (*Handler, *Manager) {
	gate := &stubGate{allowed: map[rbac.Section]bool{}}
	for _, s := range allowed {
		gate.allowed[s] = true
	}
	mgr := NewManager(gate, nil, nil)
	return NewHandler(mgr, zap.NewNop().Sugar()), mgr
}

func TestNavigateEndpoint(t *testing.T) {
	h, mgr := newTestHandler(rbac.SectionCustomers)

	req := httptest.NewRequest(http.MethodPost, "/dashboard-core/ui/navigate",
		strings.NewReader(`{"section":"customers"}`))
	rec := httptest.NewRecorder()
	h.Navigate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := mgr.ActiveSection(); got != rbac.SectionCustomers {
		t.Fatalf("ActiveSection = %q", got)
	}
}

func TestNavigateEndpointDenied(t *testing.T) {
	h, _ := newTestHandler() // nothing allowed

	req := httptest.NewRequest(http.MethodPost, "/dashboard-core/ui/navigate",
		strings.NewReader(`{"section":"salary-payments"}`))
	rec := httptest.NewRecorder()
	h.Navigate(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestTableEndpoint(t *testing.T) {
	h, _ := newTestHandler()

	body := `{"columns":[{"key":"name","title":"Name"}],` +
		`"rows":[{"name":"Acme"},{"name":"Zenith"}],` +
		`"page":1,"pageSize":10,"filter":"acme"}`
	req := httptest.NewRequest(http.MethodPost, "/dashboard-core/ui/table", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Table(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var table Table
	if err := json.Unmarshal(rec.Body.Bytes(), &table); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if table.Total != 1 || len(table.Rows) != 1 {
		t.Fatalf("table = %+v", table)
	}
}

func TestToastsEndpointDrains(t *testing.T) {
	h, mgr := newTestHandler()
	mgr.ShowToast("welcome back", SeveritySuccess)

	rec := httptest.NewRecorder()
	h.Toasts(rec, httptest.NewRequest(http.MethodGet, "/dashboard-core/ui/toasts", nil))

	var toasts []Toast
	if err := json.Unmarshal(rec.Body.Bytes(), &toasts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(toasts) != 1 || toasts[0].Message != "welcome back" {
		t.Fatalf("toasts = %+v", toasts)
	}

	rec = httptest.NewRecorder()
	h.Toasts(rec, httptest.NewRequest(http.MethodGet, "/dashboard-core/ui/toasts", nil))
	if err := json.Unmarshal(rec.Body.Bytes(), &toasts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(toasts) != 0 {
		t.Fatalf("second drain returned %+v", toasts)
	}
}
