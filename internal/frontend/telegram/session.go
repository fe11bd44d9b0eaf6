package telegram

import (
	"sync"
	"sync/atomic"

	"github.com/vadimtrunov/filmes/internal/store"
)

// session is one user's pair of stores. Detail cards are delivered by store
// subscriptions to the chat the user last wrote from.
type session struct {
	movies *store.MovieStore
	shows  *store.TVStore
	chatID atomic.Int64
	stop   []func()
}

func (s *session) close() {
	for _, unsubscribe := range s.stop {
		unsubscribe()
	}
}

// sessionFactory creates a new session for a user.
type sessionFactory func() *session

// sessionManager manages per-user sessions and access control.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[int64]*session
	allowed  map[int64]bool // nil or empty = allow all
}

// newSessionManager creates a session manager.
// If allowedUserIDs is empty, all users are allowed.
func newSessionManager(allowedUserIDs []int64) *sessionManager {
	allowed := make(map[int64]bool, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = true
	}
	return &sessionManager{
		sessions: make(map[int64]*session),
		allowed:  allowed,
	}
}

// isAllowed checks if a user is authorized to use the bot.
func (sm *sessionManager) isAllowed(userID int64) bool {
	if len(sm.allowed) == 0 {
		return true
	}
	return sm.allowed[userID]
}

// getOrCreate returns the user's session, creating it with factory on first use,
// and points it at chatID.
func (sm *sessionManager) getOrCreate(userID, chatID int64, factory sessionFactory) *session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	s, ok := sm.sessions[userID]
	if !ok {
		s = factory()
		sm.sessions[userID] = s
	}
	s.chatID.Store(chatID)
	return s
}

// reset drops a user's session and its subscriptions.
func (sm *sessionManager) reset(userID int64) {
	sm.mu.Lock()
	s, ok := sm.sessions[userID]
	delete(sm.sessions, userID)
	sm.mu.Unlock()

	if ok {
		s.close()
	}
}

// count returns the number of live sessions.
func (sm *sessionManager) count() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.sessions)
}
