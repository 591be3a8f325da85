package interfaces

import (
	"context"

	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
)

// SessionStore maps an opaque session ID to its conversation state. There is
// no process-wide singleton; the dialogue loop receives an instance.
//
// The store itself does not serialize access per key: callers must ensure one
// logical owner per session at a time.
type SessionStore interface {
	// Get retrieves a session by ID. Returns nil (no error) when none exists.
	Get(ctx context.Context, id types.SessionID) (*model.ChatSession, error)

	// Put stores or replaces a session
	Put(ctx context.Context, session *model.ChatSession) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id types.SessionID) error
}
