package entity

import (
	"regexp"
	"strings"
	"time"

	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/rbac"
)

// Account status values. Anything other than active blocks login.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User is a dashboard account record. Password is transient: directory
// sources carry it for authentication, but it is stripped before a record
// is persisted to the session store or returned to a caller.
type User struct {
	ID          string    `json:"id" db:"id"`
	Username    string    `json:"username" db:"username"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Role        rbac.Role `json:"role" db:"role"`
	Email       string    `json:"email,omitempty" db:"email"`
	Phone       string    `json:"phone,omitempty" db:"phone"`
	Status      string    `json:"status" db:"status"`
	Avatar      string    `json:"avatar,omitempty" db:"avatar"`
	Password    string    `json:"password,omitempty" db:"password"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Sanitized returns a copy with the password removed, suitable for
// persisting or returning to the UI shell.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

// Active reports whether the account may log in.
func (u User) Active() bool {
	return u.Status == StatusActive
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-()]{5,19}$`)
)

// ValidUsername requires at least three non-space characters.
func ValidUsername(username string) bool {
	return len(strings.TrimSpace(username)) >= 3
}

// ValidEmail accepts an empty value (email is optional) or a plausible address.
func ValidEmail(email string) bool {
	return email == "" || emailPattern.MatchString(email)
}

// ValidPhone accepts an empty value (phone is optional) or a plausible number.
func ValidPhone(phone string) bool {
	return phone == "" || phonePattern.MatchString(phone)
}
