package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/drywaters/tasbih/internal/tasbih"
	"github.com/google/uuid"
)

// CookieName is the cookie carrying the session token
const CookieName = "tasbih_session"

// ErrNotFound is returned for unknown or expired tokens
var ErrNotFound = errors.New("session not found")

type entry struct {
	state   tasbih.State
	expires time.Time
}

// Store keeps per-session tasbih state in memory with automatic expiration.
// Nothing survives a restart.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewStore creates a new session store with the given TTL
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	// Start background cleanup goroutine
	s.wg.Add(1)
	go s.cleanup()
	return s
}

// Create starts a fresh session and returns its token
func (s *Store) Create() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	token := id.String()

	s.mu.Lock()
	s.sessions[token] = &entry{
		state:   tasbih.NewState(),
		expires: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()

	return token, nil
}

// Valid checks if a session token is valid (exists and not expired)
func (s *Store) Valid(token string) bool {
	_, err := s.State(token)
	return err == nil
}

// State returns a snapshot of the session's state
func (s *Store) State(token string) (tasbih.State, error) {
	s.mu.RLock()
	e, exists := s.sessions[token]
	var (
		state   tasbih.State
		expires time.Time
	)
	if exists {
		state, expires = e.state, e.expires
	}
	s.mu.RUnlock()

	if !exists || !time.Now().Before(expires) {
		return tasbih.State{}, ErrNotFound
	}
	return state, nil
}

// Update applies fn to the session's state and stores the result. When fn
// fails the stored state is left as it was and the current state is
// returned along with the error.
func (s *Store) Update(token string, fn func(tasbih.State) (tasbih.State, error)) (tasbih.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.sessions[token]
	if !exists || !time.Now().Before(e.expires) {
		return tasbih.State{}, ErrNotFound
	}

	next, err := fn(e.state)
	if err != nil {
		return e.state, err
	}
	e.state = next
	return next, nil
}

// Delete removes a session token
func (s *Store) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Refresh extends the expiration of a valid token
func (s *Store) Refresh(token string) {
	s.mu.Lock()
	if e, exists := s.sessions[token]; exists && time.Now().Before(e.expires) {
		e.expires = time.Now().Add(s.ttl)
	}
	s.mu.Unlock()
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.sessions {
		if now.Before(e.expires) {
			n++
		}
	}
	return n
}

// cleanup periodically removes expired sessions
func (s *Store) cleanup() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for token, e := range s.sessions {
				if now.After(e.expires) {
					delete(s.sessions, token)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Close signals the cleanup goroutine to stop and waits for it to finish
func (s *Store) Close() {
	close(s.done)
	s.wg.Wait()
}

type tokenKey struct{}

// WithToken returns a context carrying the session token
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom extracts the session token placed by the session middleware
func TokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}
