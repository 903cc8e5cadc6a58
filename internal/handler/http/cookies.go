package http

import (
	"net/http"
	"time"

	"github.com/nrehal/gatepass/internal/domain"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// CookieConfig controls the attributes of the auth cookies. Secure should be
// true everywhere except local development so browsers refuse to send the
// tokens over plain HTTP.
type CookieConfig struct {
	Domain string
	Secure bool
	MaxAge time.Duration
}

func setAuthCookies(w http.ResponseWriter, cfg CookieConfig, pair *domain.TokenPair) {
	http.SetCookie(w, authCookie(cfg, accessTokenCookie, pair.AccessToken, int(cfg.MaxAge.Seconds())))
	http.SetCookie(w, authCookie(cfg, refreshTokenCookie, pair.RefreshToken, int(cfg.MaxAge.Seconds())))
}

func clearAuthCookies(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, authCookie(cfg, accessTokenCookie, "", -1))
	http.SetCookie(w, authCookie(cfg, refreshTokenCookie, "", -1))
}

func authCookie(cfg CookieConfig, name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
