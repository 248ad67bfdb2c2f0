package server

import (
	"net/http"

	"github.com/drywaters/tasbih/internal/config"
	"github.com/drywaters/tasbih/internal/handler"
	"github.com/drywaters/tasbih/internal/middleware"
	"github.com/drywaters/tasbih/internal/session"
	"github.com/drywaters/tasbih/internal/slideshow"
	"github.com/drywaters/tasbih/internal/ui"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Server represents the HTTP server
type Server struct {
	cfg      *config.Config
	sessions *session.Store
	images   *slideshow.ImageSet
	renderer *slideshow.Renderer
}

// New creates a new Server
func New(cfg *config.Config, sessions *session.Store, images *slideshow.ImageSet, renderer *slideshow.Renderer) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		images:   images,
		renderer: renderer,
	}
}

// Router returns the configured chi router
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)

	// Static files
	fileServer := http.FileServer(http.FS(ui.StaticFS()))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Sessions: behind the access key when one is configured, otherwise
	// started on first visit
	sessionMiddleware := middleware.Session(s.sessions, s.cfg.SecureCookies)
	if s.cfg.LoginRequired() {
		authHandler := handler.NewAuthHandler(s.cfg.AccessKeyHash, s.sessions, s.cfg.SecureCookies)
		r.Get("/login", authHandler.LoginPage)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		sessionMiddleware = middleware.Auth(s.sessions, s.cfg.SecureCookies)
	}

	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware)

		tasbihHandler := handler.NewTasbihHandler(s.sessions, s.images, s.renderer, ui.Options{
			AutoplayInterval: s.cfg.AutoplayInterval,
			LoginEnabled:     s.cfg.LoginRequired(),
		})

		r.Get("/", tasbihHandler.Page)
		r.Post("/count", tasbihHandler.Count)
		r.Post("/reset", tasbihHandler.Reset)
		r.Post("/dhikr", tasbihHandler.SelectDhikr)

		r.Post("/slides/next", tasbihHandler.NextSlide)
		r.Post("/slides/prev", tasbihHandler.PrevSlide)
		r.Post("/slides/advance", tasbihHandler.Advance)
		r.Post("/slides/autoplay", tasbihHandler.SetAutoplay)
		r.Get("/slides/{index}/image", tasbihHandler.SlideImage)

		r.Get("/api/state", tasbihHandler.State)
	})

	return r
}
