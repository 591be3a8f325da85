package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
)

type chunkRepository struct {
	mu     sync.RWMutex
	chunks []*model.Chunk
	seq    int64
}

func newChunkRepository() *chunkRepository {
	return &chunkRepository{}
}

func copyChunk(c *model.Chunk) *model.Chunk {
	copied := *c
	copied.Embedding = slices.Clone(c.Embedding)
	return &copied
}

func (r *chunkRepository) Put(ctx context.Context, chunks []*model.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, chunk := range chunks {
		stored := copyChunk(chunk)
		r.seq++
		stored.Seq = r.seq
		r.chunks = append(r.chunks, stored)
	}

	return nil
}

func (r *chunkRepository) DeleteByDocument(ctx context.Context, docID types.DocumentID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.chunks[:0]
	for _, chunk := range r.chunks {
		if chunk.DocumentID != docID {
			kept = append(kept, chunk)
		}
	}
	r.chunks = kept

	return nil
}

func (r *chunkRepository) List(ctx context.Context) ([]*model.Chunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Chunk, 0, len(r.chunks))
	for _, chunk := range r.chunks {
		result = append(result, copyChunk(chunk))
	}

	return result, nil
}

func (r *chunkRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.chunks), nil
}
