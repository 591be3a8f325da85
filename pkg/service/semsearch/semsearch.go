package semsearch

import (
	"context"
	"math"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/hemlix/simkb/pkg/domain/interfaces"
	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
	"github.com/hemlix/simkb/pkg/utils/logging"
)

const (
	DefaultChunkSize     = 1000
	DefaultOverlap       = 200
	DefaultLimit         = 5
	DefaultMinSimilarity = 0.5
)

// Result is one ranked hit from Search, joined with its parent document.
type Result struct {
	DocumentID   types.DocumentID
	Title        string
	DocumentType types.DocumentType
	ChunkIndex   int
	ChunkText    string
	Similarity   float64
	Metadata     map[string]any
}

// Service chunks documents, embeds the chunks and ranks them against query
// embeddings with a brute-force cosine scan. The corpus is small enough that
// a linear pass beats maintaining an index.
type Service struct {
	repo      interfaces.Repository
	llm       gollem.LLMClient
	chunkSize int
	overlap   int
	dimension int
}

type Option func(*Service)

func WithChunkSize(size int) Option {
	return func(s *Service) {
		s.chunkSize = size
	}
}

func WithOverlap(overlap int) Option {
	return func(s *Service) {
		s.overlap = overlap
	}
}

func WithDimension(dimension int) Option {
	return func(s *Service) {
		s.dimension = dimension
	}
}

func New(repo interfaces.Repository, llm gollem.LLMClient, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		llm:       llm,
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
		dimension: model.EmbeddingDimension,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// IndexDocument chunks and embeds one document. Existing chunks of the
// document are replaced, never merged.
func (s *Service) IndexDocument(ctx context.Context, docID types.DocumentID) error {
	doc, err := s.repo.Document().Get(ctx, docID)
	if err != nil {
		return goerr.Wrap(err, "failed to load document for indexing", goerr.V("id", docID))
	}

	texts := chunkText(doc.Content, s.chunkSize, s.overlap)

	embeddings, err := s.llm.GenerateEmbedding(ctx, s.dimension, texts)
	if err != nil {
		return goerr.Wrap(err, "failed to generate embeddings", goerr.V("id", docID))
	}
	if len(embeddings) != len(texts) {
		return goerr.New("embedding count mismatch",
			goerr.V("chunks", len(texts)), goerr.V("embeddings", len(embeddings)))
	}

	chunks := make([]*model.Chunk, 0, len(texts))
	for i, text := range texts {
		vec := make([]float32, len(embeddings[i]))
		for j, v := range embeddings[i] {
			vec[j] = float32(v)
		}
		chunks = append(chunks, &model.Chunk{
			DocumentID: docID,
			Index:      i,
			Text:       text,
			Embedding:  vec,
		})
	}

	if err := s.repo.Chunk().DeleteByDocument(ctx, docID); err != nil {
		return goerr.Wrap(err, "failed to delete stale chunks", goerr.V("id", docID))
	}
	if err := s.repo.Chunk().Put(ctx, chunks); err != nil {
		return goerr.Wrap(err, "failed to store chunks", goerr.V("id", docID))
	}

	return nil
}

// IndexAll indexes every document. A failure on one document is logged and
// skipped so a single bad record does not abort a full reindex. It returns
// the number of documents successfully indexed.
func (s *Service) IndexAll(ctx context.Context) (int, error) {
	docs, err := s.repo.Document().List(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list documents")
	}

	logger := logging.From(ctx)
	indexed := 0
	for _, doc := range docs {
		if err := s.IndexDocument(ctx, doc.ID); err != nil {
			logger.Warn("failed to index document",
				"id", doc.ID, "title", doc.Title, "error", err)
			continue
		}
		indexed++
	}

	return indexed, nil
}

// Search embeds the query and ranks all stored chunks by cosine similarity.
// Hits below minSimilarity are dropped; ties keep chunk insertion order.
func (s *Service) Search(ctx context.Context, query string, limit int, minSimilarity float64) ([]*Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	chunks, err := s.repo.Chunk().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list chunks")
	}
	if len(chunks) == 0 {
		return nil, goerr.Wrap(ErrNotIndexed, "no chunks stored")
	}

	embeddings, err := s.llm.GenerateEmbedding(ctx, s.dimension, []string{query})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query", goerr.V("query", query))
	}
	if len(embeddings) == 0 {
		return nil, goerr.New("no embedding returned for query")
	}

	queryVec := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		queryVec[i] = float32(v)
	}

	type scored struct {
		chunk      *model.Chunk
		similarity float64
	}

	var hits []scored
	for _, chunk := range chunks {
		similarity := cosineSimilarity(queryVec, chunk.Embedding)
		if similarity >= minSimilarity {
			hits = append(hits, scored{chunk: chunk, similarity: similarity})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].similarity > hits[j].similarity
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	docCache := make(map[types.DocumentID]*model.Document)
	results := make([]*Result, 0, len(hits))
	for _, hit := range hits {
		doc, ok := docCache[hit.chunk.DocumentID]
		if !ok {
			doc, err = s.repo.Document().Get(ctx, hit.chunk.DocumentID)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to load document for search result",
					goerr.V("id", hit.chunk.DocumentID))
			}
			docCache[hit.chunk.DocumentID] = doc
		}

		results = append(results, &Result{
			DocumentID:   doc.ID,
			Title:        doc.Title,
			DocumentType: doc.Type,
			ChunkIndex:   hit.chunk.Index,
			ChunkText:    hit.chunk.Text,
			Similarity:   hit.similarity,
			Metadata:     doc.Metadata,
		})
	}

	return results, nil
}

// Available reports whether any chunks have been indexed.
func (s *Service) Available(ctx context.Context) (bool, error) {
	count, err := s.repo.Chunk().Count(ctx)
	if err != nil {
		return false, goerr.Wrap(err, "failed to count chunks")
	}
	return count > 0, nil
}

// cosineSimilarity returns 0.0 when either vector has zero norm, so an
// unembedded chunk never matches anything.
func cosineSimilarity(a, b []float32) float64 {
	n := min(len(a), len(b))

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
