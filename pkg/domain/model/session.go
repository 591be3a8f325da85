package model

import (
	"time"

	"github.com/m-mizutani/gollem"

	"github.com/hemlix/simkb/pkg/domain/types"
)

// ChatSession holds one conversation's accumulated history. The LLM is
// stateless between calls, so the full history is replayed on every turn.
// Sessions live only in memory and never expire on their own; the clear and
// exit commands remove them.
type ChatSession struct {
	ID        types.SessionID
	History   *gollem.History
	Turns     int
	CreatedAt time.Time
	UpdatedAt time.Time
}
