package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/drywaters/tasbih/internal/session"
	"github.com/drywaters/tasbih/internal/slideshow"
	"github.com/drywaters/tasbih/internal/tasbih"
	"github.com/drywaters/tasbih/internal/ui"
	"github.com/drywaters/tasbih/internal/ui/pages"
	"github.com/drywaters/tasbih/internal/ui/partials"
	"github.com/drywaters/tasbih/internal/validate"
	"github.com/go-chi/chi/v5"
)

var stepRule = fmt.Sprintf("oneof=%d %d", tasbih.StepCount, tasbih.StepAddTen)

// TasbihHandler maps counter and slideshow actions onto the session state
type TasbihHandler struct {
	sessions *session.Store
	images   *slideshow.ImageSet
	renderer *slideshow.Renderer
	opts     ui.Options
}

// NewTasbihHandler creates a new TasbihHandler
func NewTasbihHandler(sessions *session.Store, images *slideshow.ImageSet, renderer *slideshow.Renderer, opts ui.Options) *TasbihHandler {
	return &TasbihHandler{
		sessions: sessions,
		images:   images,
		renderer: renderer,
		opts:     opts,
	}
}

// Page renders the full counter page
func (h *TasbihHandler) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	state, ok := h.currentState(w, r)
	if !ok {
		return
	}

	if err := pages.TasbihPage(h.view(state)).Render(ctx, w); err != nil {
		// Log only - response may already be partially written, can't send clean http.Error
		slog.Error("failed to render page", "handler", "Page", "error", err)
	}
}

// Count adds the submitted step (1 or 10) to the counters
func (h *TasbihHandler) Count(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, "Invalid form data", http.StatusBadRequest)
		return
	}

	step, err := parseStep(r.FormValue("step"))
	if err != nil {
		h.fail(w, r, "Invalid step", http.StatusBadRequest)
		return
	}

	h.apply(w, r, "Count", func(s tasbih.State) (tasbih.State, error) {
		return s.Increment(step)
	})
}

// Reset clears the current count
func (h *TasbihHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "Reset", func(s tasbih.State) (tasbih.State, error) {
		return s.Reset(), nil
	})
}

// SelectDhikr changes the current dhikr
func (h *TasbihHandler) SelectDhikr(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, "Invalid form data", http.StatusBadRequest)
		return
	}

	phrase := strings.TrimSpace(r.FormValue("dhikr"))
	h.apply(w, r, "SelectDhikr", func(s tasbih.State) (tasbih.State, error) {
		return s.SelectDhikr(phrase)
	})
}

// NextSlide shows the next image
func (h *TasbihHandler) NextSlide(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, "NextSlide", 1)
}

// PrevSlide shows the previous image
func (h *TasbihHandler) PrevSlide(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, "PrevSlide", -1)
}

// Advance is the auto-play step, posted by the "Advance (Auto)" button
// or by the client-side auto-play trigger
func (h *TasbihHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, "Advance", 1)
}

// SetAutoplay records the auto-play checkbox
func (h *TasbihHandler) SetAutoplay(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, "Invalid form data", http.StatusBadRequest)
		return
	}

	on := r.FormValue("autoplay") == "on"
	h.apply(w, r, "SetAutoplay", func(s tasbih.State) (tasbih.State, error) {
		return s.SetAutoplay(on), nil
	})
}

// SlideImage serves the resized image for a slide index
func (h *TasbihHandler) SlideImage(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "Invalid slide index", http.StatusBadRequest)
		return
	}

	path, ok := h.images.At(index)
	if !ok {
		http.Error(w, "No slideshow images", http.StatusNotFound)
		return
	}

	img, err := h.renderer.Render(path)
	if err != nil {
		slog.Warn("failed to load slide", "handler", "SlideImage", "path", path, "error", err)
		http.Error(w, "Error loading image", http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	_, _ = w.Write(img.Data)
}

// stateResponse is the JSON shape of GET /api/state
type stateResponse struct {
	tasbih.State
	Translation       string `json:"translation"`
	ChallengeGoal     int    `json:"challenge_goal"`
	ChallengeComplete bool   `json:"challenge_complete"`
	ImageCount        int    `json:"image_count"`
	CurrentImage      string `json:"current_image,omitempty"`
}

// State returns the session state as JSON
func (h *TasbihHandler) State(w http.ResponseWriter, r *http.Request) {
	state, ok := h.currentState(w, r)
	if !ok {
		return
	}

	resp := stateResponse{
		State:             state,
		Translation:       state.CurrentDhikr().Translation,
		ChallengeGoal:     tasbih.ChallengeGoal,
		ChallengeComplete: state.ChallengeComplete(),
		ImageCount:        h.images.Len(),
	}
	if path, ok := h.images.At(state.SlideIndex); ok {
		resp.CurrentImage = path
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *TasbihHandler) advance(w http.ResponseWriter, r *http.Request, name string, delta int) {
	length := h.images.Len()
	h.apply(w, r, name, func(s tasbih.State) (tasbih.State, error) {
		return s.AdvanceSlide(delta, length)
	})
}

// apply runs one transition against the caller's session and re-renders
func (h *TasbihHandler) apply(w http.ResponseWriter, r *http.Request, name string, fn func(tasbih.State) (tasbih.State, error)) {
	token, ok := session.TokenFrom(r.Context())
	if !ok {
		slog.Error("request without session", "handler", name)
		http.Error(w, "Missing session", http.StatusInternalServerError)
		return
	}

	state, err := h.sessions.Update(token, fn)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			// Expired between middleware and handler; start over
			http.Redirect(w, r, "/", http.StatusSeeOther)
		case errors.Is(err, tasbih.ErrNoImages):
			h.fail(w, r, "No slideshow images", http.StatusConflict)
		case errors.Is(err, tasbih.ErrUnknownDhikr):
			h.fail(w, r, "Unknown dhikr", http.StatusBadRequest)
		case errors.Is(err, tasbih.ErrInvalidStep):
			h.fail(w, r, "Invalid step", http.StatusBadRequest)
		default:
			slog.Error("failed to update session", "handler", name, "error", err)
			h.fail(w, r, "Something went wrong", http.StatusInternalServerError)
		}
		return
	}

	slog.Debug("session updated", "handler", name, "count", state.Count, "total", state.TotalCount, "slide", state.SlideIndex)

	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := partials.App(h.view(state)).Render(r.Context(), w); err != nil {
		slog.Error("failed to render partial", "handler", name, "error", err)
	}
}

func (h *TasbihHandler) currentState(w http.ResponseWriter, r *http.Request) (tasbih.State, bool) {
	token, ok := session.TokenFrom(r.Context())
	if !ok {
		http.Error(w, "Missing session", http.StatusInternalServerError)
		return tasbih.State{}, false
	}

	state, err := h.sessions.State(token)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return tasbih.State{}, false
	}
	return state, true
}

// view builds the page view, loading the current slide so a broken
// image is reported inline instead of as a broken <img>
func (h *TasbihHandler) view(state tasbih.State) ui.PageView {
	var slideErr error
	if path, ok := h.images.At(state.SlideIndex); ok {
		if _, err := h.renderer.Render(path); err != nil {
			slog.Warn("failed to load slide", "path", path, "error", err)
			slideErr = err
		}
	}
	return ui.NewPageView(state, h.images, h.opts, slideErr)
}

func (h *TasbihHandler) fail(w http.ResponseWriter, r *http.Request, msg string, status int) {
	if isHTMX(r) {
		htmxError(w, msg, status)
		return
	}
	http.Error(w, msg, status)
}

func parseStep(raw string) (int, error) {
	step, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if err := validate.Var(step, stepRule); err != nil {
		return 0, err
	}
	return step, nil
}
