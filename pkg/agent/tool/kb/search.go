package kb

import (
	"context"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/hemlix/simkb/pkg/agent/tool"
	"github.com/hemlix/simkb/pkg/service/semsearch"
)

const excerptChars = 300

type semanticSearchTool struct {
	search        *semsearch.Service
	limit         int
	minSimilarity float64
}

func (t *semanticSearchTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "semantic_search",
		Description: "Search all documents using semantic similarity (finds meaning, not just keywords)",
		Parameters: map[string]*gollem.Parameter{
			"query": {
				Type:        gollem.TypeString,
				Description: "Search query describing what you're looking for",
				Required:    true,
			},
			"limit": {
				Type:        gollem.TypeInteger,
				Description: "Maximum number of results to return (default: 5)",
				Required:    false,
			},
		},
	}
}

func (t *semanticSearchTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return errorResult("query is required"), nil
	}

	limit := t.limit
	if v, err := extractInt64(args, "limit"); err == nil && v > 0 {
		limit = int(v)
	}

	tool.Update(ctx, fmt.Sprintf("Searching: %s", query))

	results, err := t.search.Search(ctx, query, limit, t.minSimilarity)
	if err != nil {
		if errors.Is(err, semsearch.ErrNotIndexed) {
			return map[string]any{
				"error": "Semantic search not available - embeddings not generated",
				"hint":  "Run: simkb index",
			}, nil
		}
		return nil, goerr.Wrap(err, "semantic search failed", goerr.V("query", query))
	}

	items := make([]map[string]any, len(results))
	for i, result := range results {
		excerpt := result.ChunkText
		if len(excerpt) > excerptChars {
			excerpt = excerpt[:excerptChars]
		}
		items[i] = map[string]any{
			"title":            result.Title,
			"document_type":    string(result.DocumentType),
			"similarity_score": fmt.Sprintf("%.1f%%", result.Similarity*100),
			"excerpt":          excerpt,
		}
	}

	return map[string]any{
		"query":        query,
		"result_count": len(items),
		"results":      items,
	}, nil
}
