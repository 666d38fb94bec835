// Package config maps the process environment onto a typed struct. Every
// field has a default so a bare `go run ./cmd/dashboard` comes up in demo
// mode (seed accounts, file-backed state, no database).
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type App struct {
	// HTTP
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// Local state file (the browser-local-storage analogue)
	StatePath string `envconfig:"STATE_PATH" default:"data/dashboard-state.json"`

	// Optional Postgres user directory; empty means seed accounts only
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`

	// Session
	SessionTTLHours int `envconfig:"SESSION_TTL_HOURS" default:"24"`

	// Bearer tokens for the HTTP surface
	JWTSecret    string `envconfig:"JWT_SECRET" default:"dashboard-dev-secret"`
	JWTIssuer    string `envconfig:"JWT_ISSUER" default:"dashboard-core"`
	JWTExpireMin int    `envconfig:"JWT_EXPIRE_MIN" default:"1440"`

	// Release update checker; empty endpoint disables polling
	UpdateEndpoint    string `envconfig:"UPDATE_ENDPOINT" default:""`
	UpdatePollMinutes int    `envconfig:"UPDATE_POLL_MINUTES" default:"30"`
	AppVersion        string `envconfig:"APP_VERSION" default:"1.0.0"`

	// CORS allow-list for the browser front-end
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}

// SessionTTL returns the configured session lifetime as a duration.
func (c App) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// JWTTTL returns the bearer-token lifetime as a duration.
func (c App) JWTTTL() time.Duration {
	return time.Duration(c.JWTExpireMin) * time.Minute
}

// UpdateInterval returns the poll cadence as a duration.
func (c App) UpdateInterval() time.Duration {
	return time.Duration(c.UpdatePollMinutes) * time.Minute
}
