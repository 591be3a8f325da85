package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hemlix/simkb/pkg/domain/interfaces"
	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
)

// SessionStore is an in-memory SessionStore. Conversation state is
// process-local regardless of which repository backend is configured.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[types.SessionID]*model.ChatSession
}

var _ interfaces.SessionStore = &SessionStore{}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[types.SessionID]*model.ChatSession),
	}
}

func copySession(s *model.ChatSession) *model.ChatSession {
	copied := *s
	return &copied
}

func (s *SessionStore) Get(ctx context.Context, id types.SessionID) (*model.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[id]
	if !exists {
		return nil, nil
	}

	return copySession(session), nil
}

func (s *SessionStore) Put(ctx context.Context, session *model.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copySession(session)
	stored.UpdatedAt = time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = stored.UpdatedAt
	}
	s.sessions[stored.ID] = stored

	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id types.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)

	return nil
}
