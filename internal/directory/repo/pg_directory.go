package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/directory"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/directory/entity"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/pkg/utilities"
)

// PGDirectory is the Postgres implementation of directory.RecordSource,
// for deployments where dashboard accounts live in a shared database.
// Passwords stored here may be bcrypt hashes; the auth core handles both.
type PGDirectory struct {
	db *sqlx.DB
}

func NewPGDirectory(db *sqlx.DB) *PGDirectory { return &PGDirectory{db: db} }

// EnsureTable creates the dashboard_users table if not exists (idempotent).
// Convenience for early development; prefer migrations in production.
func (r *PGDirectory) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS dashboard_users (
  id varchar(32) PRIMARY KEY,
  username TEXT UNIQUE NOT NULL,
  display_name TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'user',
  email TEXT DEFAULT '',
  phone TEXT DEFAULT '',
  status TEXT NOT NULL DEFAULT 'active',
  avatar TEXT DEFAULT '',
  password TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_dashboard_users_username ON dashboard_users(username);
CREATE INDEX IF NOT EXISTS idx_dashboard_users_role ON dashboard_users(role);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// GetUsers returns every dashboard account. Query failures are wrapped in
// directory.ErrUnavailable so callers fall back to the seed table.
func (r *PGDirectory) GetUsers(ctx context.Context) ([]entity.User, error) {
	const q = `SELECT id, username, display_name, role, email, phone, status, avatar, password, created_at, updated_at
	  FROM dashboard_users ORDER BY username`
	var users []entity.User
	if err := r.db.SelectContext(ctx, &users, q); err != nil {
		return nil, fmt.Errorf("%w: %v", directory.ErrUnavailable, err)
	}
	return users, nil
}

// patchColumns whitelists the partial-record keys Update will write.
var patchColumns = map[string]string{
	"username":     "username",
	"display_name": "display_name",
	"role":         "role",
	"email":        "email",
	"phone":        "phone",
	"status":       "status",
	"avatar":       "avatar",
	"password":     "password",
}

// Create inserts a new record built from the partial-record map. A missing
// id gets a freshly minted snowflake ID.
func (r *PGDirectory) Create(ctx context.Context, collection string, record map[string]any) error {
	if collection != directory.CollectionUsers {
		return directory.ErrUnknownCollection
	}
	id, _ := record["id"].(string)
	if id == "" {
		id = utilities.NewSnowflakeID()
	}
	q := `INSERT INTO dashboard_users (id, username, display_name, role, email, phone, status, avatar, password)
	  VALUES (:id, :username, :display_name, :role, :email, :phone, :status, :avatar, :password)`
	params := map[string]any{
		"id":           id,
		"username":     record["username"],
		"display_name": orEmpty(record, "display_name"),
		"role":         orDefault(record, "role", "user"),
		"email":        orEmpty(record, "email"),
		"phone":        orEmpty(record, "phone"),
		"status":       orDefault(record, "status", entity.StatusActive),
		"avatar":       orEmpty(record, "avatar"),
		"password":     orEmpty(record, "password"),
	}
	if _, err := r.db.NamedExecContext(ctx, q, params); err != nil {
		return fmt.Errorf("%w: %v", directory.ErrUnavailable, err)
	}
	return nil
}

// Update applies whitelisted patch keys to the record with the given id.
func (r *PGDirectory) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	if collection != directory.CollectionUsers {
		return directory.ErrUnknownCollection
	}
	sets := make([]string, 0, len(patch)+1)
	params := map[string]any{"id": id}
	for key, col := range patchColumns {
		if v, ok := patch[key]; ok {
			sets = append(sets, fmt.Sprintf("%s=:%s", col, key))
			params[key] = v
		}
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at=NOW()")
	q := fmt.Sprintf("UPDATE dashboard_users SET %s WHERE id=:id", strings.Join(sets, ", "))
	res, err := r.db.NamedExecContext(ctx, q, params)
	if err != nil {
		return fmt.Errorf("%w: %v", directory.ErrUnavailable, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return directory.ErrNotFound
	}
	return nil
}

// Bootstrap registers the given accounts when the table is empty, so a
// fresh database accepts the demo logins without manual setup. Row IDs are
// minted here; the seed IDs belong to the in-memory table.
func (r *PGDirectory) Bootstrap(ctx context.Context, accounts []entity.User) error {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM dashboard_users"); err != nil {
		return fmt.Errorf("%w: %v", directory.ErrUnavailable, err)
	}
	if n > 0 {
		return nil
	}
	for _, u := range accounts {
		record := map[string]any{
			"username":     u.Username,
			"display_name": u.DisplayName,
			"role":         string(u.Role),
			"email":        u.Email,
			"phone":        u.Phone,
			"status":       u.Status,
			"avatar":       u.Avatar,
			"password":     u.Password,
		}
		if err := r.Create(ctx, directory.CollectionUsers, record); err != nil {
			return err
		}
	}
	return nil
}

func orEmpty(m map[string]any, key string) any {
	if v, ok := m[key]; ok {
		return v
	}
	return ""
}

func orDefault(m map[string]any, key, def string) any {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}
