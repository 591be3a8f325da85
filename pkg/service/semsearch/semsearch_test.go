package semsearch_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
	"github.com/hemlix/simkb/pkg/repository/memory"
	"github.com/hemlix/simkb/pkg/service/semsearch"
)

// mockLLMClient embeds texts on two axes: mentions of "underwriting" map to
// one direction, everything else to the other. That makes ranking
// deterministic without a real embedding model.
type mockLLMClient struct {
	embeddingCalls int
}

func (m *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return nil, nil
}

func (m *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	m.embeddingCalls++

	vecs := make([][]float64, 0, len(input))
	for _, text := range input {
		if strings.Contains(strings.ToLower(text), "underwriting") {
			vecs = append(vecs, []float64{1, 0})
		} else {
			vecs = append(vecs, []float64{0, 1})
		}
	}
	return vecs, nil
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*semsearch.Service, *memory.Memory, types.DocumentID) {
		repo := memory.New()
		svc := semsearch.New(repo, &mockLLMClient{}, semsearch.WithDimension(2))

		doc := gt.R1(repo.Document().Create(ctx, &model.Document{
			Title:   "Meridian Life Scorecard",
			Type:    types.DocumentTypeCarrierScorecard,
			Content: "Strong underwriting discipline across the portfolio.",
		})).NoError(t)
		gt.NoError(t, svc.IndexDocument(ctx, doc.ID))

		other := gt.R1(repo.Document().Create(ctx, &model.Document{
			Title:   "Claims Handling Review",
			Type:    types.DocumentTypeResearch,
			Content: "Claims turnaround times improved last quarter.",
		})).NoError(t)
		gt.NoError(t, svc.IndexDocument(ctx, other.ID))

		return svc, repo, doc.ID
	}

	t.Run("ranks matching chunk first", func(t *testing.T) {
		svc, _, docID := setup(t)

		results := gt.R1(svc.Search(ctx, "underwriting strengths", 5, 0.5)).NoError(t)
		gt.A(t, results).Length(1)
		gt.V(t, results[0].DocumentID).Equal(docID)
		gt.V(t, results[0].Title).Equal("Meridian Life Scorecard")
		gt.V(t, results[0].DocumentType).Equal(types.DocumentTypeCarrierScorecard)
		gt.N(t, results[0].Similarity).Greater(0.99)
	})

	t.Run("minimum similarity filters weak matches", func(t *testing.T) {
		svc, _, _ := setup(t)

		results := gt.R1(svc.Search(ctx, "underwriting", 5, 0.0)).NoError(t)
		gt.A(t, results).Length(2)

		filtered := gt.R1(svc.Search(ctx, "underwriting", 5, 0.5)).NoError(t)
		gt.A(t, filtered).Length(1)
	})

	t.Run("limit truncates after ranking", func(t *testing.T) {
		svc, _, docID := setup(t)

		results := gt.R1(svc.Search(ctx, "underwriting", 1, 0.0)).NoError(t)
		gt.A(t, results).Length(1)
		gt.V(t, results[0].DocumentID).Equal(docID)
	})

	t.Run("unindexed store returns ErrNotIndexed", func(t *testing.T) {
		repo := memory.New()
		svc := semsearch.New(repo, &mockLLMClient{}, semsearch.WithDimension(2))

		_, err := svc.Search(ctx, "anything", 5, 0.5)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, semsearch.ErrNotIndexed))
	})
}

func TestIndexDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("reindex replaces existing chunks", func(t *testing.T) {
		repo := memory.New()
		svc := semsearch.New(repo, &mockLLMClient{}, semsearch.WithDimension(2))

		doc := gt.R1(repo.Document().Create(ctx, &model.Document{
			Title:   "Reindex Target",
			Type:    types.DocumentTypeResearch,
			Content: "Some research content.",
		})).NoError(t)

		gt.NoError(t, svc.IndexDocument(ctx, doc.ID))
		first := gt.R1(repo.Chunk().Count(ctx)).NoError(t)

		gt.NoError(t, svc.IndexDocument(ctx, doc.ID))
		second := gt.R1(repo.Chunk().Count(ctx)).NoError(t)

		gt.V(t, first).Equal(second)
	})

	t.Run("missing document fails", func(t *testing.T) {
		repo := memory.New()
		svc := semsearch.New(repo, &mockLLMClient{}, semsearch.WithDimension(2))

		gt.Error(t, svc.IndexDocument(ctx, types.NewDocumentID()))
	})

	t.Run("IndexAll indexes every document", func(t *testing.T) {
		repo := memory.New()
		svc := semsearch.New(repo, &mockLLMClient{}, semsearch.WithDimension(2))

		for _, title := range []string{"Doc A", "Doc B", "Doc C"} {
			gt.R1(repo.Document().Create(ctx, &model.Document{
				Title:   title,
				Type:    types.DocumentTypeResearch,
				Content: "content of " + title,
			})).NoError(t)
		}

		indexed := gt.R1(svc.IndexAll(ctx)).NoError(t)
		gt.V(t, indexed).Equal(3)

		available := gt.R1(svc.Available(ctx)).NoError(t)
		gt.True(t, available)
	})
}
