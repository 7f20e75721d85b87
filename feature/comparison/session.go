package comparison

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// sessionTTL bounds the lifetime of a pagination session.
const sessionTTL = 10 * time.Minute

// sweepInterval is how often the background sweep removes expired sessions.
const sweepInterval = time.Minute

var (
	// ErrSessionNotFound is returned for unknown or expired sessions.
	ErrSessionNotFound = errors.New("comparison session not found or expired")
	// ErrSessionDenied is returned when a user who does not own a session
	// tries to navigate it.
	ErrSessionDenied = errors.New("comparison session belongs to another user")
)

// Navigation actions accepted by SessionStore.Navigate.
const (
	ActionNone  = "none"
	ActionFirst = "first"
	ActionPrev  = "prev"
	ActionNext  = "next"
	ActionLast  = "last"
)

// Session associates a comparison result with its owner and the current
// pagination position. Sessions live in process memory only.
type Session struct {
	UserID      string
	Rows        []Row
	FileNames   []string
	CurrentPage int
	ExpiresAt   time.Time
}

// SessionStore is a concurrency-safe map of pagination sessions with a fixed
// TTL. The clock is injectable so expiry can be tested without real timers.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates an empty session store with the default TTL.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      sessionTTL,
		now:      time.Now,
	}
}

// Create registers a new session for the given owner and returns its id.
func (s *SessionStore) Create(userID string, rows []Row, fileNames []string) string {
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &Session{
		UserID:      userID,
		Rows:        rows,
		FileNames:   fileNames,
		CurrentPage: 1,
		ExpiresAt:   s.now().Add(s.ttl),
	}
	s.mu.Unlock()

	return id
}

// Navigate applies a pagination action for the given user and returns the
// re-rendered page. Expired sessions are removed on access; foreign users
// are rejected without mutating the session.
func (s *SessionStore) Navigate(id, userID, action string) (TablePage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return TablePage{}, ErrSessionNotFound
	}

	if s.now().After(session.ExpiresAt) {
		delete(s.sessions, id)
		return TablePage{}, ErrSessionNotFound
	}

	if session.UserID != userID {
		return TablePage{}, ErrSessionDenied
	}

	switch action {
	case ActionFirst:
		session.CurrentPage = 1
	case ActionPrev:
		if session.CurrentPage > 1 {
			session.CurrentPage--
		}
	case ActionNext:
		// Total pages depends on the derived rows-per-page, so consult the
		// renderer before clamping.
		current := RenderPage(session.Rows, session.FileNames, session.CurrentPage, 0)
		if session.CurrentPage < current.TotalPages {
			session.CurrentPage++
		}
	case ActionLast:
		current := RenderPage(session.Rows, session.FileNames, session.CurrentPage, 0)
		session.CurrentPage = current.TotalPages
	case ActionNone, "":
		// Render the current page without moving.
	default:
		// Unknown actions fall through to a plain re-render.
	}

	page := RenderPage(session.Rows, session.FileNames, session.CurrentPage, 0)
	session.CurrentPage = page.PageNumber
	return page, nil
}

// Peek returns a live session's rows and file names for exporting. Peek does
// not mutate pagination state and is not restricted to the owner.
func (s *SessionStore) Peek(id string) ([]Row, []string, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || s.now().After(session.ExpiresAt) {
		return nil, nil, ErrSessionNotFound
	}

	return session.Rows, session.FileNames, nil
}

// Sweep removes all expired sessions and returns how many were dropped.
func (s *SessionStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on a fixed interval until the context is canceled.
func (s *SessionStore) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// Len returns the number of live entries (including not-yet-swept expired
// ones); used by tests and diagnostics.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
