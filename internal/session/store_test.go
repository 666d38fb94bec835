package session

import (
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/directory/entity"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/rbac"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/pkg/localstore"
)

func newTestStore(t *testing.T) (*Store, *localstore.Store) {
	t.Helper()
	kv, err := localstore.Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("open localstore: %v", err)
	}
	return NewStore(kv, 0, zap.NewNop().Sugar()), kv
}

func demoUser() entity.User {
	return entity.User{
		ID:          "2abcDEFghiJKLmnopQRstuvwx",
		Username:    "admin",
		DisplayName: "System Administrator",
		Role:        rbac.RoleAdministrator,
		Email:       "admin@example.com",
		Status:      entity.StatusActive,
		Password:    "admin123",
	}
}

func TestSaveLoadRoundTripStripsPassword(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.Save(demoUser()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	rec, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if rec == nil {
		t.Fatal("Load() = nil after Save")
	}
	if rec.User.Password != "" {
		t.Error("persisted session retained the password")
	}
	if rec.User.Username != "admin" || rec.User.Role != rbac.RoleAdministrator {
		t.Errorf("round-trip user = %+v", rec.User)
	}
	if !rec.ExpiresAt.After(time.Now()) {
		t.Error("expiry must be in the future after Save")
	}
}

func TestSaveUsesConfiguredTTL(t *testing.T) {
	kv, err := localstore.Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("open localstore: %v", err)
	}
	s := NewStore(kv, time.Hour, zap.NewNop().Sugar())
	if err := s.Save(demoUser()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	rec, err := s.Load()
	if err != nil || rec == nil {
		t.Fatalf("Load() = %v, %v", rec, err)
	}
	remaining := time.Until(rec.ExpiresAt)
	if remaining > time.Hour || remaining < 55*time.Minute {
		t.Errorf("ttl = %v, want about one hour", remaining)
	}
}

func TestLoadExpiredSessionClearsRecord(t *testing.T) {
	s, kv := newTestStore(t)
	if err := s.Save(demoUser()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	// Rewind the expiry to one millisecond in the past.
	past := time.Now().Add(-time.Millisecond).UnixMilli()
	if err := kv.Set(KeySessionExpiry, strconv.FormatInt(past, 10)); err != nil {
		t.Fatalf("rewind expiry: %v", err)
	}

	rec, err := s.Load()
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("Load() error = %v, want ErrExpired", err)
	}
	if rec != nil {
		t.Fatal("Load() returned an expired session")
	}
	// The stale record must have been cleared, not just skipped.
	if _, err := kv.Get(KeyCurrentUser); err != localstore.ErrNotFound {
		t.Errorf("currentUser still present after expiry: %v", err)
	}
	if rec, err := s.Load(); rec != nil || err != nil {
		t.Errorf("second Load() = %v, %v after lazy expiry", rec, err)
	}
}

func TestLoadMalformedRecordIsTreatedAsAbsent(t *testing.T) {
	tests := []struct {
		name   string
		user   string
		expiry string
	}{
		{"garbage user", "{nope", strconv.FormatInt(time.Now().Add(time.Hour).UnixMilli(), 10)},
		{"garbage expiry", `{"id":"u1","username":"admin"}`, "soon"},
		{"missing expiry", `{"id":"u1","username":"admin"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, kv := newTestStore(t)
			if err := kv.Set(KeyCurrentUser, tt.user); err != nil {
				t.Fatal(err)
			}
			if tt.expiry != "" {
				if err := kv.Set(KeySessionExpiry, tt.expiry); err != nil {
					t.Fatal(err)
				}
			}
			rec, err := s.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if rec != nil {
				t.Fatal("Load() returned a session from malformed storage")
			}
			if _, err := kv.Get(KeyCurrentUser); err != localstore.ErrNotFound {
				t.Error("malformed record must be cleared")
			}
		})
	}
}

func TestClearIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Save(demoUser()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear() error = %v", err)
	}
	if rec, _ := s.Load(); rec != nil {
		t.Error("Load() found a session after Clear")
	}
}
