package directory

import (
	"context"
	"sync"
	"time"

	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/directory/entity"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/rbac"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/pkg/utilities"
)

// SeedSource is the built-in demo account table. It backs the dashboard when
// no external store is configured and is the fallback when the configured
// store is unreachable. Mutations touch only the in-memory copy.
type SeedSource struct {
	mu    sync.RWMutex
	users []entity.User
}

// NewSeedSource builds the demo roster. Passwords here are deliberately
// plain: these are the documented demo logins, not real credentials.
func NewSeedSource() *SeedSource {
	now := time.Now()
	mk := func(username, password, display string, role rbac.Role, email, status string) entity.User {
		return entity.User{
			ID:          utilities.NewKSUID(),
			Username:    username,
			DisplayName: display,
			Role:        role,
			Email:       email,
			Status:      status,
			Password:    password,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}
	return &SeedSource{users: []entity.User{
		mk("admin", "admin123", "System Administrator", rbac.RoleAdministrator, "admin@example.com", entity.StatusActive),
		mk("manager", "manager123", "Store Manager", rbac.RoleManager, "manager@example.com", entity.StatusActive),
		mk("supervisor", "super456", "Floor Supervisor", rbac.RoleSupervisor, "supervisor@example.com", entity.StatusActive),
		mk("clerk", "clerk789", "Sales Clerk", rbac.RoleUser, "clerk@example.com", entity.StatusActive),
		mk("payroll", "payroll321", "Payroll Officer", rbac.RoleManager, "payroll@example.com", entity.StatusInactive),
	}}
}

// GetUsers returns a copy of the demo roster.
func (s *SeedSource) GetUsers(ctx context.Context) ([]entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

// Create appends a record to the in-memory roster.
func (s *SeedSource) Create(ctx context.Context, collection string, record map[string]any) error {
	if collection != CollectionUsers {
		return ErrUnknownCollection
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u := entity.User{
		ID:        stringField(record, "id"),
		Status:    entity.StatusActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if u.ID == "" {
		u.ID = utilities.NewKSUID()
	}
	applyPatch(&u, record)
	s.users = append(s.users, u)
	return nil
}

// Update applies a partial record to the user with the given id.
func (s *SeedSource) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	if collection != CollectionUsers {
		return ErrUnknownCollection
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == id {
			applyPatch(&s.users[i], patch)
			s.users[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrNotFound
}

// applyPatch copies the whitelisted partial-record keys onto u.
func applyPatch(u *entity.User, patch map[string]any) {
	if v := stringField(patch, "username"); v != "" {
		u.Username = v
	}
	if v := stringField(patch, "display_name"); v != "" {
		u.DisplayName = v
	}
	if v := stringField(patch, "role"); v != "" {
		u.Role = rbac.Role(v)
	}
	if v, ok := patch["email"]; ok {
		u.Email, _ = v.(string)
	}
	if v, ok := patch["phone"]; ok {
		u.Phone, _ = v.(string)
	}
	if v, ok := patch["avatar"]; ok {
		u.Avatar, _ = v.(string)
	}
	if v := stringField(patch, "status"); v != "" {
		u.Status = v
	}
	if v := stringField(patch, "password"); v != "" {
		u.Password = v
	}
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
