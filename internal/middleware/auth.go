package middleware

import (
	"log/slog"
	"net/http"

	"github.com/drywaters/tasbih/internal/session"
)

// Session attaches a tasbih session to every request, starting a new one
// when the cookie is missing or stale.
func Session(sessions *session.Store, secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(session.CookieName); err == nil && sessions.Valid(cookie.Value) {
				sessions.Refresh(cookie.Value)
				next.ServeHTTP(w, r.WithContext(session.WithToken(r.Context(), cookie.Value)))
				return
			}

			token, err := sessions.Create()
			if err != nil {
				slog.Error("failed to create session", "error", err)
				http.Error(w, "Failed to start session", http.StatusInternalServerError)
				return
			}
			SetSessionCookie(w, token, secureCookies)

			next.ServeHTTP(w, r.WithContext(session.WithToken(r.Context(), token)))
		})
	}
}

// Auth middleware validates the session token cookie and sends visitors
// without one to the login page
func Auth(sessions *session.Store, secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(session.CookieName)
			if err != nil {
				redirectToLogin(w, r)
				return
			}

			if !sessions.Valid(cookie.Value) {
				// Invalid/expired session, clear cookie and redirect
				ClearSessionCookie(w, secureCookies)
				redirectToLogin(w, r)
				return
			}

			// Refresh session TTL on activity
			sessions.Refresh(cookie.Value)

			next.ServeHTTP(w, r.WithContext(session.WithToken(r.Context(), cookie.Value)))
		})
	}
}

// redirectToLogin uses HX-Redirect for htmx requests so the whole page
// navigates instead of swapping the login form into a fragment
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// SetSessionCookie writes the session cookie. No MaxAge, so it ends with the browser session.
func SetSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie expires the session cookie
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
