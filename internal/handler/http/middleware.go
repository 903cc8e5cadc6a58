package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nrehal/gatepass/internal/domain"
)

type contextKey string

const userContextKey contextKey = "authenticated_user"

// UserFromContext returns the authenticated user attached by Authenticate or
// OptionalAuthenticate, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *domain.PublicUser {
	user, _ := ctx.Value(userContextKey).(*domain.PublicUser)
	return user
}

// resolveUser turns the auth cookies into an identity. It first tries the
// access token; when that fails it falls back to the refresh token, and on a
// successful refresh rotates BOTH cookies on the response before resolving the
// identity from the fresh access token. Returns nil when neither cookie is
// usable.
func resolveUser(w http.ResponseWriter, r *http.Request, auth AuthService, cookies CookieConfig) *domain.PublicUser {
	if c, err := r.Cookie(accessTokenCookie); err == nil && c.Value != "" {
		if user, err := auth.VerifyAccessToken(r.Context(), c.Value); err == nil {
			return user
		}
	}

	c, err := r.Cookie(refreshTokenCookie)
	if err != nil || c.Value == "" {
		return nil
	}

	pair, err := auth.Refresh(r.Context(), c.Value)
	if err != nil {
		return nil
	}

	user, err := auth.VerifyAccessToken(r.Context(), pair.AccessToken)
	if err != nil {
		return nil
	}

	setAuthCookies(w, cookies, pair)
	return user
}

// Authenticate requires a signed-in user. Expired access tokens are refreshed
// silently when the refresh cookie is still valid; otherwise the request is
// rejected with 401 and both cookies are cleared.
func Authenticate(auth AuthService, cookies CookieConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := resolveUser(w, r, auth, cookies)
			if user == nil {
				clearAuthCookies(w, cookies)
				writeJSON(w, http.StatusUnauthorized, response{
					Error: &errorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
				})
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthenticate resolves an identity when the cookies allow it but
// never rejects the request. Anonymous requests proceed without a user in
// context.
func OptionalAuthenticate(auth AuthService, cookies CookieConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := resolveUser(w, r, auth, cookies); user != nil {
				r = r.WithContext(context.WithValue(r.Context(), userContextKey, user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin must run after Authenticate. Authenticated non-admins get 403,
// distinct from the 401 an anonymous request gets.
func RequireAdmin(auth AuthService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				writeJSON(w, http.StatusUnauthorized, response{
					Error: &errorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
				})
				return
			}

			isAdmin, err := auth.IsAdmin(r.Context(), user.ID)
			if err != nil {
				logger.Error("admin check failed", "error", err, "user_id", user.ID)
				writeAppError(w, r, err)
				return
			}
			if !isAdmin {
				writeJSON(w, http.StatusForbidden, response{
					Error: &errorResponse{Code: "FORBIDDEN", Message: "admin role required"},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ContentTypeJSON enforces that requests with a body have Content-Type:
// application/json. Bodyless requests pass through untouched; logout and
// refresh carry only cookies.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength != 0 {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// CORSConfig holds configuration for the CORS middleware.
type CORSConfig struct {
	AllowedOrigins []string
	Environment    string
}

// CORS sets Cross-Origin Resource Sharing headers. Because auth rides on
// cookies, credentials are always allowed and the response echoes the request
// Origin rather than a wildcard (browsers reject "*" with credentials). In
// development any origin is echoed back; otherwise the Origin header must
// match the configured list.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	allowAny := cfg.Environment == "development"
	originSet := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			allowAny = true
		}
		originSet[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" {
				_, listed := originSet[origin]
				if allowAny || listed {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Credentials", "true")
					w.Header().Set("Vary", "Origin")
				}
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, X-Correlation-ID")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
