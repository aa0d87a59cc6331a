package services

import (
	"context"
	"sync"
	"time"

	"github.com/epeers/shortpositions/internal/metrics"
	"github.com/epeers/shortpositions/internal/models"
	log "github.com/sirupsen/logrus"
)

// Session is one client's view: its report window and whether the latest
// report has been auto-loaded for it.
type Session struct {
	ID         string
	Window     *Window
	AutoLoaded bool
	UpdatedAt  time.Time
}

// SessionService owns every session's window. Each change swaps the session's
// window for a new value under the lock, so readers always see a whole window.
type SessionService struct {
	mu       sync.Mutex
	sessions map[string]*Session
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionService creates a store whose windows hold capacity datasets.
// Sessions idle longer than ttl are dropped the next time the store is touched.
func NewSessionService(capacity int, ttl time.Duration) *SessionService {
	return &SessionService{
		sessions: make(map[string]*Session),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns a copy of the session, creating an empty one if needed.
func (s *SessionService) Get(id string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.getLocked(id)
}

// Upsert adds ds to the session's window and returns the new window.
func (s *SessionService) Upsert(ctx context.Context, id string, ds *models.ReportDataset) *Window {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getLocked(id)
	next, evicted := sess.Window.Upsert(ds)
	for _, date := range evicted {
		Warnf(ctx, models.WarnDatasetEvicted, "report %s removed to keep at most %d dates", date, s.capacity)
	}
	sess.Window = next
	sess.UpdatedAt = s.now()
	log.WithField("session", id).Debugf("Window now holds %v", next.Dates())
	return next
}

// MarkAutoLoaded records that the latest report was loaded for the session.
func (s *SessionService) MarkAutoLoaded(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getLocked(id)
	sess.AutoLoaded = true
	sess.UpdatedAt = s.now()
}

// Evict removes one report date from the session's window.
func (s *SessionService) Evict(id, date string) *Window {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getLocked(id)
	sess.Window = sess.Window.Evict(date)
	sess.UpdatedAt = s.now()
	return sess.Window
}

// Clear empties the session's window.
func (s *SessionService) Clear(id string) *Window {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getLocked(id)
	sess.Window = sess.Window.Clear()
	sess.UpdatedAt = s.now()
	return sess.Window
}

// Len returns the number of live sessions.
func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	return len(s.sessions)
}

func (s *SessionService) getLocked(id string) *Session {
	s.pruneLocked()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{ID: id, Window: NewWindow(s.capacity), UpdatedAt: s.now()}
		s.sessions[id] = sess
		metrics.ActiveSessions.Set(float64(len(s.sessions)))
	}
	return sess
}

func (s *SessionService) pruneLocked() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	for id, sess := range s.sessions {
		if now.Sub(sess.UpdatedAt) > s.ttl {
			delete(s.sessions, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
}
