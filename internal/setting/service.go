// Package setting backs the settings panel: the persisted preference
// record (language, theme, lifetimes) and profile edits for the signed-in
// user.
package setting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/auth"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/directory"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/directory/entity"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/pkg/localstore"
)

// KeyPreferences is the local-store key holding the serialized preferences.
const KeyPreferences = "appSettings"

// Themes the front-end knows how to render.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

var (
	ErrInvalidPreferences = errors.New("invalid preferences")
	ErrInvalidProfile     = errors.New("invalid profile")
)

// Preferences is the settings-panel record. Durations are plain numbers so
// the stored JSON stays editable by hand.
type Preferences struct {
	Language          string `json:"language"`
	Theme             string `json:"theme"`
	SessionTTLHours   int    `json:"session_ttl_hours"`
	UpdatePollMinutes int    `json:"update_poll_minutes"`
}

// DefaultPreferences are the documented defaults for a fresh install.
func DefaultPreferences() Preferences {
	return Preferences{
		Language:          "en",
		Theme:             ThemeLight,
		SessionTTLHours:   24,
		UpdatePollMinutes: 30,
	}
}

// Service reads and writes preferences and forwards profile edits.
type Service struct {
	kv     *localstore.Store
	source directory.RecordSource
	auth   *auth.Service
	logger *zap.SugaredLogger
}

func NewService(kv *localstore.Store, source directory.RecordSource, authSvc *auth.Service, logger *zap.SugaredLogger) *Service {
	return &Service{kv: kv, source: source, auth: authSvc, logger: logger}
}

// ReadPreferences returns the panel settings persisted in kv, plus whether a
// stored record was found. Absent or unreadable records degrade to the
// defaults rather than failing, so startup can consult stored settings
// before the service graph exists; only a found record counts as a saved
// choice that may override configured defaults.
func ReadPreferences(kv *localstore.Store, logger *zap.SugaredLogger) (Preferences, bool) {
	raw, err := kv.Get(KeyPreferences)
	if errors.Is(err, localstore.ErrNotFound) {
		return DefaultPreferences(), false
	}
	if err != nil {
		logger.Warnw("preferences unreadable, using defaults", "err", err)
		return DefaultPreferences(), false
	}
	prefs := DefaultPreferences()
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		logger.Warnw("preferences corrupt, using defaults", "err", err)
		return DefaultPreferences(), false
	}
	return prefs, true
}

// Preferences returns the persisted panel settings.
func (s *Service) Preferences() Preferences {
	prefs, _ := ReadPreferences(s.kv, s.logger)
	return prefs
}

// SavePreferences validates and persists the panel settings.
func (s *Service) SavePreferences(prefs Preferences) error {
	if strings.TrimSpace(prefs.Language) == "" {
		return fmt.Errorf("%w: language is required", ErrInvalidPreferences)
	}
	if prefs.Theme != ThemeLight && prefs.Theme != ThemeDark {
		return fmt.Errorf("%w: unknown theme %q", ErrInvalidPreferences, prefs.Theme)
	}
	if prefs.SessionTTLHours <= 0 {
		return fmt.Errorf("%w: session lifetime must be positive", ErrInvalidPreferences)
	}
	if prefs.UpdatePollMinutes <= 0 {
		return fmt.Errorf("%w: update poll interval must be positive", ErrInvalidPreferences)
	}

	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	if err := s.kv.Set(KeyPreferences, string(raw)); err != nil {
		return err
	}
	s.logger.Infow("preferences saved", "language", prefs.Language, "theme", prefs.Theme)
	return nil
}

// SetLanguage persists just the language field, keeping the rest of the
// preferences intact.
func (s *Service) SetLanguage(lang string) error {
	prefs := s.Preferences()
	prefs.Language = lang
	return s.SavePreferences(prefs)
}

// ProfilePatch is a partial profile edit; nil fields stay unchanged.
type ProfilePatch struct {
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Avatar      *string `json:"avatar"`
}

// UpdateProfile validates and applies a profile edit to the signed-in
// user: best-effort to the external record source, authoritatively to the
// session copy. Only name, email, phone, and avatar may change here.
func (s *Service) UpdateProfile(ctx context.Context, patch ProfilePatch) (*entity.User, error) {
	current := s.auth.CurrentUser()
	if current == nil {
		return nil, auth.ErrNoSession
	}

	if patch.DisplayName != nil && strings.TrimSpace(*patch.DisplayName) == "" {
		return nil, fmt.Errorf("%w: display name cannot be empty", ErrInvalidProfile)
	}
	if patch.Email != nil && !entity.ValidEmail(*patch.Email) {
		return nil, fmt.Errorf("%w: email format", ErrInvalidProfile)
	}
	if patch.Phone != nil && !entity.ValidPhone(*patch.Phone) {
		return nil, fmt.Errorf("%w: phone format", ErrInvalidProfile)
	}

	if s.source != nil {
		fields := map[string]any{}
		if patch.DisplayName != nil {
			fields["display_name"] = *patch.DisplayName
		}
		if patch.Email != nil {
			fields["email"] = *patch.Email
		}
		if patch.Phone != nil {
			fields["phone"] = *patch.Phone
		}
		if patch.Avatar != nil {
			fields["avatar"] = *patch.Avatar
		}
		if len(fields) > 0 {
			if err := s.source.Update(ctx, directory.CollectionUsers, current.ID, fields); err != nil {
				s.logger.Warnw("profile not written to record source", "err", err)
			}
		}
	}

	return s.auth.MutateCurrentUser(func(u *entity.User) {
		if patch.DisplayName != nil {
			u.DisplayName = *patch.DisplayName
		}
		if patch.Email != nil {
			u.Email = *patch.Email
		}
		if patch.Phone != nil {
			u.Phone = *patch.Phone
		}
		if patch.Avatar != nil {
			u.Avatar = *patch.Avatar
		}
	})
}
