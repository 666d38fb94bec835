package i18n

import (
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/events"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/setting"
)

// Service ties the catalog to the persisted language preference and the
// event bus.
type Service struct {
	catalog *Catalog
	prefs   *setting.Service
	bus     *events.Bus
	logger  *zap.SugaredLogger
}

func NewService(catalog *Catalog, prefs *setting.Service, bus *events.Bus, logger *zap.SugaredLogger) *Service {
	return &Service{catalog: catalog, prefs: prefs, bus: bus, logger: logger}
}

// Language returns the active language code, falling back to the default
// when the stored preference names a language the catalog lacks.
func (s *Service) Language() string {
	lang := s.prefs.Preferences().Language
	if !s.catalog.Has(lang) {
		return s.catalog.defaultLang
	}
	return lang
}

// T translates key in the active language.
func (s *Service) T(key string) string {
	return s.catalog.T(s.Language(), key)
}

// Languages lists the selectable language codes.
func (s *Service) Languages() []string {
	return s.catalog.Languages()
}

// Table returns the dictionary for lang (empty means the active language).
func (s *Service) Table(lang string) (map[string]string, error) {
	if lang == "" {
		lang = s.Language()
	}
	return s.catalog.Table(lang)
}

// SetLanguage validates the code, persists it, and announces the change.
func (s *Service) SetLanguage(lang string) error {
	if !s.catalog.Has(lang) {
		return ErrUnknownLanguage
	}
	if err := s.prefs.SetLanguage(lang); err != nil {
		return err
	}
	if s.bus != nil {
		s.bus.Publish(events.TopicLanguageChanged, lang)
	}
	s.logger.Infow("language changed", "language", lang)
	return nil
}
