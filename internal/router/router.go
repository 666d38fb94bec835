// Package router wires the HTTP surface: route table, request logging,
// security headers, CORS, and the bearer-token guard for mutating routes.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/auth"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/i18n"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/session"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/setting"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/shell"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/token"
	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/update"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware logs each request at debug level.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware adds Access-Control headers for allowed origins and
// short-circuits OPTIONS preflights.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := false
	normalized := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
		normalized = append(normalized, strings.ToLower(origin))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || containsOrigin(normalized, origin)) {
				if allowAll {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
				}
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func containsOrigin(allowed []string, origin string) bool {
	origin = strings.ToLower(origin)
	for _, candidate := range allowed {
		if candidate == origin {
			return true
		}
	}
	return false
}

type claimsKey struct{}

// ClaimsFrom returns the verified token claims placed by BearerMiddleware.
func ClaimsFrom(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*token.Claims)
	return claims, ok
}

// BearerMiddleware rejects requests that do not carry a valid bearer token
// and stores the verified claims on the request context.
func BearerMiddleware(tokens *token.Manager, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const prefix = "Bearer "
			raw := r.Header.Get("Authorization")
			if !strings.HasPrefix(raw, prefix) {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := tokens.Parse(strings.TrimPrefix(raw, prefix))
			if err != nil {
				logger.Debugw("rejected bearer token", "err", err)
				writeError(w, http.StatusUnauthorized, "invalid bearer token")
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// introspectToken echoes the verified claims of the presented bearer token
// so the front-end can check whose token it is holding and when it lapses.
func introspectToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	resp := map[string]any{
		"subject":  claims.UserID,
		"username": claims.Username,
		"role":     claims.Role,
	}
	if claims.ExpiresAt != nil {
		resp["expires_at"] = claims.ExpiresAt.Time
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// Deps carries the wired services the route table needs.
type Deps struct {
	Auth     *auth.Service
	Tokens   *token.Manager
	Settings *setting.Service
	Sessions *session.Store
	I18n     *i18n.Service
	Shell    *shell.Manager
	Updates  *update.Checker
	Origins  []string
}

// RegisterRoutes mounts the HTTP surface on the standard library mux and
// wraps it with the middleware chain.
func RegisterRoutes(deps Deps, logger *zap.SugaredLogger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /dashboard-core/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	protect := BearerMiddleware(deps.Tokens, logger)

	authHandler := auth.NewHandler(deps.Auth, deps.Tokens, logger)
	mux.HandleFunc("POST /dashboard-core/auth/login", authHandler.Login)
	mux.Handle("POST /dashboard-core/auth/logout", protect(http.HandlerFunc(authHandler.Logout)))
	mux.HandleFunc("GET /dashboard-core/auth/session", authHandler.Session)
	mux.HandleFunc("GET /dashboard-core/auth/permissions", authHandler.Permissions)
	mux.Handle("GET /dashboard-core/auth/token", protect(http.HandlerFunc(introspectToken)))

	settingHandler := setting.NewHandler(deps.Settings, deps.Sessions, logger)
	mux.Handle("GET /dashboard-core/settings", protect(http.HandlerFunc(settingHandler.Get)))
	mux.Handle("PUT /dashboard-core/settings", protect(http.HandlerFunc(settingHandler.Put)))
	mux.Handle("PUT /dashboard-core/settings/profile", protect(http.HandlerFunc(settingHandler.PutProfile)))

	i18nHandler := i18n.NewHandler(deps.I18n, logger)
	mux.HandleFunc("GET /dashboard-core/i18n/translations", i18nHandler.Translations)
	mux.HandleFunc("PUT /dashboard-core/i18n/language", i18nHandler.PutLanguage)

	shellHandler := shell.NewHandler(deps.Shell, logger)
	mux.Handle("GET /dashboard-core/ui/state", protect(http.HandlerFunc(shellHandler.State)))
	mux.Handle("POST /dashboard-core/ui/navigate", protect(http.HandlerFunc(shellHandler.Navigate)))
	mux.Handle("GET /dashboard-core/ui/toasts", protect(http.HandlerFunc(shellHandler.Toasts)))
	mux.Handle("POST /dashboard-core/ui/table", protect(http.HandlerFunc(shellHandler.Table)))

	updateHandler := update.NewHandler(deps.Updates, logger)
	mux.HandleFunc("GET /dashboard-core/version", updateHandler.Version)

	handler := LoggingMiddleware(logger)(
		SecurityHeadersMiddleware()(
			CORSMiddleware(deps.Origins)(mux)))
	return handler
}
