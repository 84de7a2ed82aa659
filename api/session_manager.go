package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/lookbusy1344/slox/service"
)

var (
	// ErrSessionNotFound is returned when a session is not found
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionAlreadyExists is returned when trying to create a session with an existing ID
	ErrSessionAlreadyExists = errors.New("session already exists")
)

// Session represents an active debug session wrapping one compiled chunk
// and VM, plus the output captured for it so far.
type Session struct {
	ID        string
	Service   *service.DebuggerService
	CreatedAt time.Time
	Stdout    *EventWriter
	Stderr    *EventWriter
}

// SessionManager manages multiple debug sessions
type SessionManager struct {
	sessions    map[string]*Session
	broadcaster *Broadcaster
	mu          sync.RWMutex
}

// NewSessionManager creates a new session manager
func NewSessionManager(broadcaster *Broadcaster) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		broadcaster: broadcaster,
	}
}

// CreateSession compiles source and creates a new debug session with a
// unique ID, wiring its output through an EventWriter so WebSocket
// subscribers see stdout as the program runs.
func (sm *SessionManager) CreateSession(opts SessionCreateRequest) (*Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	// EventWriter buffers everything written to it regardless of whether a
	// broadcaster is attached, so console output retrieval works the same
	// way whether or not WebSocket subscribers are watching.
	stdout := NewEventWriter(sm.broadcaster, sessionID, "stdout")
	stderr := NewEventWriter(sm.broadcaster, sessionID, "stderr")
	if sm.broadcaster == nil {
		debugLog("Session %s: WARNING - no broadcaster available for output", sessionID)
	}

	svc, err := service.NewDebuggerService(opts.Source, stdout, stderr)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:        sessionID,
		Service:   svc,
		CreatedAt: time.Now(),
		Stdout:    stdout,
		Stderr:    stderr,
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[sessionID]; exists {
		return nil, ErrSessionAlreadyExists
	}

	sm.sessions[sessionID] = session
	return session, nil
}

// GetSession retrieves a session by ID
func (sm *SessionManager) GetSession(sessionID string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// DestroySession removes a session by ID
func (sm *SessionManager) DestroySession(sessionID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[sessionID]; !exists {
		return ErrSessionNotFound
	}

	delete(sm.sessions, sessionID)
	return nil
}

// ListSessions returns a list of all session IDs
func (sm *SessionManager) ListSessions() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of active sessions
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return len(sm.sessions)
}

// generateSessionID generates a unique session ID
func generateSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
