package auth

import "net/http"

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "token"

// sessionCookieMaxAge mirrors SessionTokenTTL in seconds. The cookie
// and the token it carries expire together.
const sessionCookieMaxAge = 3600

// NewSessionCookie builds the session cookie for a freshly signed token.
// The cookie is HttpOnly and SameSite=Lax; the Secure attribute follows
// the deployment's production flag.
func NewSessionCookie(token string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   sessionCookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie builds a cookie that removes the session from the
// client. MaxAge -1 serialises as Max-Age=0, which browsers treat as
// delete-immediately.
func ClearSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ReadSessionToken extracts the raw session token from an incoming
// request's cookies. A missing cookie is a valid, non-error outcome:
// it means the request is simply not authenticated.
func ReadSessionToken(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
