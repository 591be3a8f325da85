package model

import "github.com/hemlix/simkb/pkg/domain/types"

// EmbeddingDimension is the dimensionality of all stored embedding vectors
// (text-embedding-3-small / gemini text-embedding-004 compatible).
const EmbeddingDimension = 1536

// Chunk is a contiguous slice of a document's content together with its
// embedding vector. Chunks are derived data: re-indexing a document replaces
// all of its chunks.
//
// Every stored embedding must have the same dimensionality; vectors are only
// comparable under that invariant.
type Chunk struct {
	DocumentID types.DocumentID
	Index      int // position within the parent document
	Text       string
	Embedding  []float32
	Seq        int64 // global insertion order, used for stable ranking ties
}
