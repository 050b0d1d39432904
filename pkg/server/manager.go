package server

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/renatoruis/oh-institutional/pkg/middleware"
)

// SessionManager tracks all live sessions.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	site        *Site
	config      *SessionConfig
	maxSessions int

	totalCreated atomic.Uint64
	totalClosed  atomic.Uint64
	peakSessions int

	logger        *slog.Logger
	sessionLogger *slog.Logger
}

// ManagerStats is a snapshot of session counters.
type ManagerStats struct {
	Active       int
	Peak         int
	TotalCreated uint64
	TotalClosed  uint64
}

// NewSessionManager creates a manager. maxSessions of 0 means no limit.
func NewSessionManager(site *Site, config *SessionConfig, maxSessions int, logger *slog.Logger) *SessionManager {
	if config == nil {
		config = DefaultSessionConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		sessions:      make(map[string]*Session),
		site:          site,
		config:        config,
		maxSessions:   maxSessions,
		logger:        logger.With("component", "session_manager"),
		sessionLogger: logger.With("component", "session"),
	}
}

// Full reports whether the session limit is reached.
func (sm *SessionManager) Full() bool {
	if sm.maxSessions <= 0 {
		return false
	}
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions) >= sm.maxSessions
}

// Create registers a new session for conn.
func (sm *SessionManager) Create(conn *websocket.Conn, origin, ip string) (*Session, error) {
	sm.mu.Lock()
	if sm.maxSessions > 0 && len(sm.sessions) >= sm.maxSessions {
		sm.mu.Unlock()
		return nil, ErrMaxSessionsReached
	}

	session := newSession(conn, sm.site, sm.config, origin, ip, sm.sessionLogger)
	session.onClose = sm.remove
	sm.sessions[session.ID] = session
	if n := len(sm.sessions); n > sm.peakSessions {
		sm.peakSessions = n
	}
	active := len(sm.sessions)
	sm.mu.Unlock()

	sm.totalCreated.Add(1)
	middleware.RecordSessionCreate()

	sm.logger.Info("session created",
		"session_id", session.ID,
		"ip", ip,
		"active_sessions", active)

	return session, nil
}

func (sm *SessionManager) remove(session *Session) {
	sm.mu.Lock()
	_, ok := sm.sessions[session.ID]
	delete(sm.sessions, session.ID)
	sm.mu.Unlock()

	if ok {
		sm.totalClosed.Add(1)
		middleware.RecordSessionDestroy()
	}
}

// Get returns the session with id, or nil.
func (sm *SessionManager) Get(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// Stats returns the manager counters.
func (sm *SessionManager) Stats() ManagerStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return ManagerStats{
		Active:       len(sm.sessions),
		Peak:         sm.peakSessions,
		TotalCreated: sm.totalCreated.Load(),
		TotalClosed:  sm.totalClosed.Load(),
	}
}

// CloseAll closes every live session.
func (sm *SessionManager) CloseAll() {
	sm.mu.RLock()
	sessions := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		sessions = append(sessions, s)
	}
	sm.mu.RUnlock()

	for _, s := range sessions {
		s.Close()
	}
	if len(sessions) > 0 {
		sm.logger.Info("closed all sessions", "count", len(sessions))
	}
}
