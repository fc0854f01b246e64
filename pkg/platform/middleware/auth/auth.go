// Package auth carries the session token transport: where a token is read from on
// inbound requests and how the session cookie is written and cleared.
package auth

import (
	"net/http"
	"strings"
	"time"

	dErrors "baiki/pkg/domain-errors"
	"baiki/pkg/platform/httputil"
)

// SessionCookieName is the cookie carrying the session token across tenant subdomains.
const SessionCookieName = "baiki_session"

// CookieOptions scopes the session cookie.
type CookieOptions struct {
	Domain string
	Secure bool
}

// TokenFromRequest returns the bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		const bearerPrefix = "Bearer "
		if len(h) > len(bearerPrefix) && strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
			return strings.TrimSpace(h[len(bearerPrefix):])
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// SetSessionCookie writes the session cookie expiring at expiresAt.
func SetSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   opts.Domain,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   opts.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireTrustedOrigin rejects credential-issuing requests whose Origin header is
// present and not in origins. Requests without an Origin header are not from a
// browser and pass through.
func RequireTrustedOrigin(origins []string) func(http.Handler) http.Handler {
	trusted := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		trusted[strings.TrimRight(strings.ToLower(strings.TrimSpace(o)), "/")] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				if _, ok := trusted[strings.TrimRight(strings.ToLower(origin), "/")]; !ok {
					httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "origin is not trusted"))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
