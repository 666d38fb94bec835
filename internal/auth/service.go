// Package auth owns the login session lifecycle: authenticating against
// the user directory, persisting and restoring the session record, and
// answering the permission queries the rest of the dashboard gates on.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/directory"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/directory/entity"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/events"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/rbac"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/session"
)

// State is the auth lifecycle position. Authenticating and SessionExpired
// are transitional; every operation settles in Unauthenticated or
// Authenticated before returning.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
	StateSessionExpired  State = "session-expired"
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrNotConfirmed       = errors.New("logout requires confirmation")
	ErrLoginInFlight      = errors.New("a login attempt is already in progress")
	ErrNoSession          = errors.New("no active session")
)

// Shell is the presentation surface the auth flow drives opportunistically.
// The service must work with no shell attached; calls then degrade to log
// lines.
type Shell interface {
	ShowLoading(message string)
	HideLoading()
	ShowToast(message, severity string)
}

// Service is the session owner. There is exactly one session per process;
// collaborators receive the service itself rather than reading identity
// from shared state.
type Service struct {
	source   directory.RecordSource
	seeds    *directory.SeedSource
	sessions *session.Store
	bus      *events.Bus
	logger   *zap.SugaredLogger

	mu      sync.Mutex
	state   State
	current *entity.User
	shell   Shell
	busy    bool
}

// NewService wires the auth core. source may be nil; the demo seed table
// then backs every login.
func NewService(source directory.RecordSource, sessions *session.Store, bus *events.Bus, logger *zap.SugaredLogger) *Service {
	return &Service{
		source:   source,
		seeds:    directory.NewSeedSource(),
		sessions: sessions,
		bus:      bus,
		logger:   logger,
		state:    StateUnauthenticated,
	}
}

// AttachShell connects the presentation surface after construction (the
// shell needs the service for section gating, so wiring is two-phase).
func (s *Service) AttachShell(sh Shell) {
	s.mu.Lock()
	s.shell = sh
	s.mu.Unlock()
}

// Login authenticates the credentials and, on success, persists the
// session and returns the sanitized user record. At most one attempt runs
// at a time; a second concurrent call fails with ErrLoginInFlight.
func (s *Service) Login(ctx context.Context, username, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	if err := s.beginLogin(); err != nil {
		return nil, err
	}
	defer s.endLogin()

	s.showLoading("Signing in...")
	defer s.hideLoading()

	var match *entity.User
	for _, u := range s.candidates(ctx) {
		if u.Username == username && passwordMatches(u.Password, password) {
			match = &u
			break
		}
	}
	if match == nil {
		s.toast("Invalid username or password", "error")
		return nil, ErrInvalidCredentials
	}
	if !match.Active() {
		s.toast("This account has been deactivated", "warning")
		return nil, ErrAccountInactive
	}

	clean := match.Sanitized()
	clean.UpdatedAt = time.Now()

	if err := s.sessions.Save(clean); err != nil {
		// Not fatal: the in-memory session stands, it just will not
		// survive a restart.
		s.logger.Warnw("session not persisted", "err", err)
	}
	s.writeBack(ctx, clean)

	s.mu.Lock()
	s.current = &clean
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(events.TopicUserLoggedIn, clean)
	}
	s.toast("Welcome back, "+clean.DisplayName, "success")
	s.logger.Infow("user logged in", "username", clean.Username, "role", clean.Role)

	out := clean
	return &out, nil
}

// Logout ends the session. The caller must have obtained an affirmative
// confirmation; without it nothing changes. Logging out while already
// signed out is a no-op.
func (s *Service) Logout(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := s.sessions.Clear(); err != nil {
		s.logger.Warnw("session clear failed", "err", err)
	}

	s.mu.Lock()
	wasAuthenticated := s.current != nil
	s.current = nil
	s.settle()
	s.mu.Unlock()

	if wasAuthenticated {
		if s.bus != nil {
			s.bus.Publish(events.TopicUserLoggedOut, nil)
		}
		s.toast("You have been signed out", "info")
		s.logger.Infow("user logged out")
	}
	return nil
}

// RestoreSession loads the persisted session on startup. A missing,
// malformed, or expired record resolves to no session (nil, nil); a
// reachable directory is cross-checked so deleted accounts do not ride a
// stale cache back in, while an unreachable one trusts the cache.
func (s *Service) RestoreSession(ctx context.Context) (*entity.User, error) {
	rec, err := s.sessions.Load()
	if errors.Is(err, session.ErrExpired) {
		s.setState(StateSessionExpired)
		s.toast("Your session has expired, please sign in again", "warning")
		s.logger.Infow("stored session expired")
		s.setState(StateUnauthenticated)
		return nil, nil
	}
	if err != nil {
		s.logger.Warnw("session load failed", "err", err)
		return nil, nil
	}
	if rec == nil {
		return nil, nil
	}

	if rec.User.ID == "" {
		s.logger.Debugw("discarding session record without identifier")
		_ = s.sessions.Clear()
		return nil, nil
	}

	if s.staleAgainstSource(ctx, rec.User.ID) {
		s.logger.Infow("cached session no longer matches the directory", "user_id", rec.User.ID)
		_ = s.sessions.Clear()
		return nil, nil
	}

	u := rec.User.Sanitized()
	s.mu.Lock()
	s.current = &u
	s.settle()
	s.mu.Unlock()

	s.logger.Infow("session restored", "username", u.Username, "expires_at", rec.ExpiresAt)
	out := u
	return &out, nil
}

// MutateCurrentUser applies mutate to a copy of the active user, persists
// the result as the session record, and installs it as the current user.
// The stored copy is re-sanitized, so a mutation cannot smuggle a password
// into the session. Fails with ErrNoSession when signed out.
func (s *Service) MutateCurrentUser(mutate func(u *entity.User)) (*entity.User, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, ErrNoSession
	}
	u := *s.current
	s.mu.Unlock()

	mutate(&u)
	u = u.Sanitized()
	u.UpdatedAt = time.Now()

	if err := s.sessions.Save(u); err != nil {
		s.logger.Warnw("session not persisted", "err", err)
	}

	s.mu.Lock()
	s.current = &u
	s.mu.Unlock()

	out := u
	return &out, nil
}

// CurrentUser returns a copy of the active user, or nil.
func (s *Service) CurrentUser() *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	u := *s.current
	return &u
}

// State reports the lifecycle position.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HasPermission reports whether the active user's role allows the action.
// Always false with no session.
func (s *Service) HasPermission(action rbac.Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return false
	}
	return rbac.Allows(s.current.Role, action)
}

// CanAccessSection reports whether the active user's role may open the
// section. Always false with no session.
func (s *Service) CanAccessSection(section rbac.Section) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return false
	}
	return rbac.CanAccess(s.current.Role, section)
}

// HasRole reports whether the active user's role ranks at or above minimum.
// Always false with no session.
func (s *Service) HasRole(minimum rbac.Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return false
	}
	return rbac.AtLeast(s.current.Role, minimum)
}

// candidates returns the roster to authenticate against: the injected
// source when it answers with records, the demo table otherwise.
func (s *Service) candidates(ctx context.Context) []entity.User {
	if s.source != nil {
		users, err := s.source.GetUsers(ctx)
		switch {
		case err != nil:
			s.logger.Warnw("record source unavailable, using demo accounts", "err", err)
		case len(users) == 0:
			s.logger.Debugw("record source empty, using demo accounts")
		default:
			return users
		}
	}
	users, _ := s.seeds.GetUsers(ctx)
	return users
}

// writeBack mirrors the freshly stamped record to the external store.
// Failures are logged and swallowed; the source is not authoritative for
// the session.
func (s *Service) writeBack(ctx context.Context, u entity.User) {
	if s.source == nil {
		return
	}
	patch := map[string]any{
		"display_name": u.DisplayName,
		"email":        u.Email,
		"phone":        u.Phone,
		"avatar":       u.Avatar,
		"status":       u.Status,
	}
	if err := s.source.Update(ctx, directory.CollectionUsers, u.ID, patch); err != nil {
		s.logger.Debugw("login write-back skipped", "err", err)
	}
}

// staleAgainstSource reports whether the directory answered and no longer
// lists id. An unreachable directory is not evidence of staleness.
func (s *Service) staleAgainstSource(ctx context.Context, id string) bool {
	if s.source == nil {
		return false
	}
	users, err := s.source.GetUsers(ctx)
	if err != nil {
		s.logger.Debugw("directory unreachable, trusting cached session", "err", err)
		return false
	}
	for i := range users {
		if users[i].ID == id {
			return false
		}
	}
	return true
}

func (s *Service) beginLogin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrLoginInFlight
	}
	s.busy = true
	s.state = StateAuthenticating
	return nil
}

func (s *Service) endLogin() {
	s.mu.Lock()
	s.busy = false
	s.settle()
	s.mu.Unlock()
}

// settle derives the resting state from the session. Callers hold mu.
func (s *Service) settle() {
	if s.current != nil {
		s.state = StateAuthenticated
	} else {
		s.state = StateUnauthenticated
	}
}

func (s *Service) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Service) currentShell() Shell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shell
}

func (s *Service) showLoading(message string) {
	if sh := s.currentShell(); sh != nil {
		sh.ShowLoading(message)
		return
	}
	s.logger.Debugw("loading", "message", message)
}

func (s *Service) hideLoading() {
	if sh := s.currentShell(); sh != nil {
		sh.HideLoading()
		return
	}
	s.logger.Debugw("loading done")
}

func (s *Service) toast(message, severity string) {
	if sh := s.currentShell(); sh != nil {
		sh.ShowToast(message, severity)
		return
	}
	s.logger.Infow("notice", "severity", severity, "message", message)
}

// passwordMatches verifies a presented password against a stored
// credential. External stores may hold bcrypt hashes; the demo table holds
// plain values, compared in constant time.
func passwordMatches(stored, presented string) bool {
	if stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
