// Package session owns the single persisted login session. The layout in
// local storage mirrors what the dashboard front-end kept in the browser:
// one key with the serialized user (never the password) and one with the
// absolute expiry in milliseconds. Expiry is enforced lazily on Load; there
// is no background sweeper.
package session

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/directory/entity"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/pkg/localstore"
)

// Storage keys. Other components must treat these as opaque.
const (
	KeyCurrentUser   = "currentUser"
	KeySessionExpiry = "sessionExpiry"
)

// ErrExpired reports that a persisted session existed but its expiry had
// elapsed. The record is already cleared when this is returned; callers
// treat it as "no session" with a reason attached.
var ErrExpired = errors.New("session expired")

// DefaultTTL is the documented default session lifetime.
const DefaultTTL = 24 * time.Hour

// Record is what Load returns: the sanitized user plus the absolute expiry.
type Record struct {
	User      entity.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Store persists at most one session record.
type Store struct {
	kv     *localstore.Store
	ttl    time.Duration
	logger *zap.SugaredLogger
}

// NewStore wraps the local store. A non-positive ttl selects DefaultTTL.
func NewStore(kv *localstore.Store, ttl time.Duration, logger *zap.SugaredLogger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{kv: kv, ttl: ttl, logger: logger}
}

// TTL reports the configured session lifetime.
func (s *Store) TTL() time.Duration { return s.ttl }

// Save overwrites the persisted session with a sanitized copy of u and a
// fresh expiry of now + TTL.
func (s *Store) Save(u entity.User) error {
	raw, err := json.Marshal(u.Sanitized())
	if err != nil {
		return err
	}
	expiry := time.Now().Add(s.ttl).UnixMilli()
	if err := s.kv.Set(KeyCurrentUser, string(raw)); err != nil {
		return err
	}
	return s.kv.Set(KeySessionExpiry, strconv.FormatInt(expiry, 10))
}

// Load returns the persisted session, or nil when none exists. A record
// that cannot be parsed is cleared as a side effect and reported as
// absent; one past its expiry is cleared and reported with ErrExpired.
func (s *Store) Load() (*Record, error) {
	rawUser, err := s.kv.Get(KeyCurrentUser)
	if errors.Is(err, localstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rawExpiry, err := s.kv.Get(KeySessionExpiry)
	if errors.Is(err, localstore.ErrNotFound) {
		s.discard("session record has no expiry")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	millis, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil {
		s.discard("session expiry is not a timestamp")
		return nil, nil
	}
	expiresAt := time.UnixMilli(millis)
	if !expiresAt.After(time.Now()) {
		s.discard("session expired")
		return nil, ErrExpired
	}

	var u entity.User
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
		s.discard("session record is not valid JSON")
		return nil, nil
	}
	return &Record{User: u.Sanitized(), ExpiresAt: expiresAt}, nil
}

// Clear removes the persisted session. Clearing an absent session is a no-op.
func (s *Store) Clear() error {
	return s.kv.Delete(KeyCurrentUser, KeySessionExpiry)
}

func (s *Store) discard(reason string) {
	if s.logger != nil {
		s.logger.Debugw("clearing persisted session", "reason", reason)
	}
	_ = s.Clear()
}
