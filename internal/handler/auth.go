package handler

import (
	"net/http"

	"github.com/drywaters/tasbih/internal/middleware"
	"github.com/drywaters/tasbih/internal/session"
	"github.com/drywaters/tasbih/internal/ui/pages"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles the optional access key login
type AuthHandler struct {
	accessKeyHash string
	sessions      *session.Store
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(accessKeyHash string, sessions *session.Store, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		accessKeyHash: accessKeyHash,
		sessions:      sessions,
		secureCookies: secureCookies,
	}
}

// LoginPage renders the login page
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	// If already authenticated via valid session, redirect to home
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		if h.sessions.Valid(cookie.Value) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}

	errorType := r.URL.Query().Get("error")
	pages.LoginPage(errorType).Render(r.Context(), w)
}

// Login handles the login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/login?error=invalid_request", http.StatusSeeOther)
		return
	}

	accessKey := r.FormValue("access_key")
	if accessKey == "" {
		http.Redirect(w, r, "/login?error=missing_key", http.StatusSeeOther)
		return
	}

	// Validate the key with bcrypt (only happens once at login)
	if err := bcrypt.CompareHashAndPassword([]byte(h.accessKeyHash), []byte(accessKey)); err != nil {
		http.Redirect(w, r, "/login?error=invalid_key", http.StatusSeeOther)
		return
	}

	// Each login starts a fresh counting session
	token, err := h.sessions.Create()
	if err != nil {
		http.Redirect(w, r, "/login?error=server_error", http.StatusSeeOther)
		return
	}

	middleware.SetSessionCookie(w, token, h.secureCookies)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout ends the session; its counters are discarded
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		h.sessions.Delete(cookie.Value)
	}

	middleware.ClearSessionCookie(w, h.secureCookies)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
