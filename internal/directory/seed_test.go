package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/directory/entity"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/rbac"
)

func TestSeedRosterShape(t *testing.T) {
	users, err := NewSeedSource().GetUsers(context.Background())
	if err != nil {
		t.Fatalf("GetUsers() error = %v", err)
	}
	if len(users) == 0 {
		t.Fatal("seed roster is empty")
	}

	byName := make(map[string]entity.User, len(users))
	for _, u := range users {
		if u.ID == "" {
			t.Errorf("seed user %q has empty id", u.Username)
		}
		if _, ok := rbac.ParseRole(string(u.Role)); !ok {
			t.Errorf("seed user %q carries unknown role %q", u.Username, u.Role)
		}
		byName[u.Username] = u
	}

	admin, ok := byName["admin"]
	if !ok {
		t.Fatal("demo admin account missing")
	}
	if admin.Role != rbac.RoleAdministrator || admin.Password != "admin123" || !admin.Active() {
		t.Errorf("demo admin = %+v, want active administrator with documented password", admin)
	}

	inactive, ok := byName["payroll"]
	if !ok {
		t.Fatal("seed must include one inactive account")
	}
	if inactive.Active() {
		t.Error("payroll seed account must be inactive")
	}
}

func TestSeedUpdateAppliesPatch(t *testing.T) {
	s := NewSeedSource()
	ctx := context.Background()

	users, _ := s.GetUsers(ctx)
	id := users[0].ID

	err := s.Update(ctx, CollectionUsers, id, map[string]any{
		"display_name": "Renamed",
		"email":        "renamed@example.com",
		"avatar":       "avatars/renamed.png",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	users, _ = s.GetUsers(ctx)
	if users[0].DisplayName != "Renamed" || users[0].Email != "renamed@example.com" {
		t.Errorf("patch not applied: %+v", users[0])
	}
	if !users[0].UpdatedAt.After(users[0].CreatedAt) {
		t.Error("Update must advance UpdatedAt")
	}
}

func TestSeedUpdateUnknownTargets(t *testing.T) {
	s := NewSeedSource()
	ctx := context.Background()

	if err := s.Update(ctx, "invoices", "x", nil); !errors.Is(err, ErrUnknownCollection) {
		t.Errorf("Update(invoices) error = %v, want ErrUnknownCollection", err)
	}
	if err := s.Update(ctx, CollectionUsers, "no-such-id", map[string]any{"email": "x@y.z"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing id) error = %v, want ErrNotFound", err)
	}
}

func TestSeedCreateAssignsID(t *testing.T) {
	s := NewSeedSource()
	ctx := context.Background()

	err := s.Create(ctx, CollectionUsers, map[string]any{
		"username":     "newcomer",
		"display_name": "New Comer",
		"role":         "user",
		"password":     "welcome1",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	users, _ := s.GetUsers(ctx)
	var created *entity.User
	for i := range users {
		if users[i].Username == "newcomer" {
			created = &users[i]
		}
	}
	if created == nil {
		t.Fatal("created record not found")
	}
	if created.ID == "" || created.Status != entity.StatusActive {
		t.Errorf("created record = %+v, want generated id and active status", created)
	}
}

func TestEntityValidators(t *testing.T) {
	if !entity.ValidEmail("") || !entity.ValidPhone("") {
		t.Error("optional fields must accept empty values")
	}
	if !entity.ValidEmail("a@b.co") {
		t.Error("ValidEmail rejected a plausible address")
	}
	if entity.ValidEmail("not-an-email") {
		t.Error("ValidEmail accepted junk")
	}
	if !entity.ValidPhone("+1 555-0100") {
		t.Error("ValidPhone rejected a plausible number")
	}
	if entity.ValidPhone("abc") {
		t.Error("ValidPhone accepted junk")
	}
	if entity.ValidUsername("ab") || !entity.ValidUsername("abc") {
		t.Error("ValidUsername must enforce the three-character minimum")
	}
}
