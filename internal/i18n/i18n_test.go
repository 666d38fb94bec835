package i18n

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/auth"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/events"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/session"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/setting"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/pkg/localstore"
)

func newTestI18n(t *testing.T, bus *events.Bus) *Service {
	t.Helper()
	kv, err := localstore.Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("open localstore: %v", err)
	}
	logger := zap.NewNop().Sugar()
	authSvc := auth.NewService(nil, session.NewStore(kv, 0, logger), events.NewBus(nil), logger)
	prefs := setting.NewService(kv, nil, authSvc, logger)
	return NewService(NewCatalog(), prefs, bus, logger)
}

func TestCatalogFallbackChain(t *testing.T) {
	c := NewCatalog()

	cases := []struct {
		name string
		lang string
		key  string
		want string
	}{
		{"direct hit", "es", "nav.sales", "Ventas"},
		{"default hit", "en", "nav.sales", "Sales"},
		{"unknown language falls back to default", "fr", "nav.sales", "Sales"},
		{"unknown key falls back to key", "en", "no.such.key", "no.such.key"},
		{"unknown language and key", "fr", "no.such.key", "no.such.key"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.T(tc.lang, tc.key); got != tc.want {
				t.Fatalf("T(%q, %q) = %q, want %q", tc.lang, tc.key, got, tc.want)
			}
		})
	}
}

func TestCatalogLanguages(t *testing.T) {
	c := NewCatalog()
	langs := c.Languages()
	if len(langs) != 2 || langs[0] != "en" {
		t.Fatalf("Languages() = %v", langs)
	}
	if !c.Has("es") || c.Has("fr") {
		t.Error("Has() misreports catalog contents")
	}
}

func TestEveryNavSectionIsTranslated(t *testing.T) {
	c := NewCatalog()
	for _, key := range []string{
		"nav.dashboard", "nav.employees", "nav.customers", "nav.suppliers",
		"nav.inventory", "nav.sales", "nav.invoices", "nav.salary-payments",
		"nav.reports", "nav.settings",
	} {
		for _, lang := range c.Languages() {
			if got := c.T(lang, key); got == key {
				t.Errorf("no %s translation for %s", lang, key)
			}
		}
	}
}

func TestSetLanguagePersistsAndPublishes(t *testing.T) {
	bus := events.NewBus(nil)
	ch := bus.Subscribe(events.TopicLanguageChanged)
	svc := newTestI18n(t, bus)

	if err := svc.SetLanguage("es"); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}
	if got := svc.Language(); got != "es" {
		t.Fatalf("Language() = %q", got)
	}
	if got := svc.T("nav.customers"); got != "Clientes" {
		t.Fatalf("T(nav.customers) = %q", got)
	}
	select {
	case ev := <-ch:
		if ev.Payload != "es" {
			t.Fatalf("event payload = %v", ev.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no language.changed event")
	}
}

func TestSetLanguageRejectsUnknownCode(t *testing.T) {
	bus := events.NewBus(nil)
	ch := bus.Subscribe(events.TopicLanguageChanged)
	svc := newTestI18n(t, bus)

	if err := svc.SetLanguage("de"); !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("SetLanguage = %v, want ErrUnknownLanguage", err)
	}
	if got := svc.Language(); got != "en" {
		t.Fatalf("Language() = %q after rejected switch", got)
	}
	select {
	case ev := <-ch:
		t.Fatalf("rejected switch published %+v", ev)
	default:
	}
}

func TestTableOverlaysDefault(t *testing.T) {
	c := NewCatalog()
	table, err := c.Table("es")
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if table["nav.sales"] != "Ventas" {
		t.Errorf("table[nav.sales] = %q", table["nav.sales"])
	}
	// Every default key must resolve through the overlay.
	for key := range tableEN {
		if _, ok := table[key]; !ok {
			t.Errorf("key %s missing from overlaid table", key)
		}
	}

	if _, err := c.Table("fr"); !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("Table(fr) = %v, want ErrUnknownLanguage", err)
	}
}
