package interfaces

import (
	"context"

	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
)

// ChunkRepository defines the interface for chunk and embedding persistence
type ChunkRepository interface {
	// Put stores chunks for a document. Chunks keep their insertion order.
	Put(ctx context.Context, chunks []*model.Chunk) error

	// DeleteByDocument removes all chunks of a document. Used by the
	// replace-on-reindex policy before Put.
	DeleteByDocument(ctx context.Context, docID types.DocumentID) error

	// List retrieves all chunks in insertion order. The similarity search
	// engine does a full linear scan over this.
	List(ctx context.Context) ([]*model.Chunk, error)

	// Count returns the number of stored chunks
	Count(ctx context.Context) (int, error)
}
