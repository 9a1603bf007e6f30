package verification

import (
	"sync"
	"time"
)

// Step is the position of a viewing session in the verification flow.
type Step string

const (
	StepAwaitingEmail Step = "awaiting_email"
	StepAwaitingCode  Step = "awaiting_code"
	StepVerified      Step = "verified"
)

// Session is the per-viewer verification state for one invoice.
type Session struct {
	Step       Step      `json:"step"`
	Email      string    `json:"email,omitempty"`
	LastSentAt time.Time `json:"lastSentAt,omitempty"`
}

type sessionKey struct {
	sessionID string
	invoiceID string
}

type sessionEntry struct {
	session Session
	touched time.Time
}

// DefaultSessionTTL is used when NewSessionManager gets a non-positive TTL.
const DefaultSessionTTL = 24 * time.Hour

// SessionManager holds viewer sessions in memory. Sessions are lost on restart,
// and an entry not updated within the TTL reads as a fresh session and is
// dropped by the next sweep.
type SessionManager struct {
	sessions  map[sessionKey]sessionEntry
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
	mu        sync.RWMutex
}

// NewSessionManager creates a new session manager that forgets idle sessions after ttl.
func NewSessionManager(ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		sessions: make(map[sessionKey]sessionEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// GetSession retrieves the current state, defaulting to awaiting email.
func (sm *SessionManager) GetSession(sessionID, invoiceID string) Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if entry, exists := sm.sessions[sessionKey{sessionID, invoiceID}]; exists && !sm.expired(entry, sm.now()) {
		return entry.session
	}
	return Session{Step: StepAwaitingEmail}
}

// UpdateSession stores the state for a viewer. Expired entries are swept at
// most twice per TTL.
func (sm *SessionManager) UpdateSession(sessionID, invoiceID string, state Session) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	now := sm.now()
	sm.sessions[sessionKey{sessionID, invoiceID}] = sessionEntry{session: state, touched: now}
	if now.Sub(sm.lastSweep) >= sm.ttl/2 {
		sm.sweep(now)
	}
}

// Sweep removes every expired session and returns how many were dropped.
func (sm *SessionManager) Sweep() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.sweep(sm.now())
}

// Len reports the number of stored sessions, expired ones included.
func (sm *SessionManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// ClearInvoice drops every session attached to an invoice.
func (sm *SessionManager) ClearInvoice(invoiceID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for key := range sm.sessions {
		if key.invoiceID == invoiceID {
			delete(sm.sessions, key)
		}
	}
}

func (sm *SessionManager) sweep(now time.Time) int {
	dropped := 0
	for key, entry := range sm.sessions {
		if sm.expired(entry, now) {
			delete(sm.sessions, key)
			dropped++
		}
	}
	sm.lastSweep = now
	return dropped
}

func (sm *SessionManager) expired(entry sessionEntry, now time.Time) bool {
	return now.Sub(entry.touched) > sm.ttl
}
