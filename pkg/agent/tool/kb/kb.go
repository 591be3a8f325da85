package kb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/hemlix/simkb/pkg/domain/interfaces"
	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/service/semsearch"
)

// maxContentChars caps document content returned to the LLM so a single
// tool response cannot blow the context window.
const maxContentChars = 8000

const truncationNotice = "\n\n[Content truncated - document is very long]"

type options struct {
	limit         int
	minSimilarity float64
}

type Option func(*options)

// WithSearchTuning overrides the semantic_search result limit and similarity
// threshold, e.g. from a TOML profile.
func WithSearchTuning(limit int, minSimilarity float64) Option {
	return func(o *options) {
		o.limit = limit
		o.minSimilarity = minSimilarity
	}
}

// New builds the knowledge base navigation tools. Lookup failures are
// reported as an "error" field in the tool result rather than a Go error, so
// the model can recover by rephrasing instead of aborting the turn.
func New(repo interfaces.Repository, search *semsearch.Service, opts ...Option) []gollem.Tool {
	o := options{
		limit:         semsearch.DefaultLimit,
		minSimilarity: semsearch.DefaultMinSimilarity,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return []gollem.Tool{
		&listOrganizationsTool{repo: repo},
		&listProductsTool{repo: repo},
		&listRolesTool{repo: repo},
		&getCarrierDocumentsTool{repo: repo},
		&getScorecardTool{repo: repo},
		&getQuestionScorecardTool{repo: repo},
		&getProductionHistoryTool{repo: repo},
		&getRolePerspectiveTool{repo: repo},
		&getDocumentContentTool{repo: repo},
		&semanticSearchTool{search: search, limit: o.limit, minSimilarity: o.minSimilarity},
	}
}

func errorResult(format string, args ...any) map[string]any {
	return map[string]any{"error": fmt.Sprintf(format, args...)}
}

// findCarrier resolves a carrier by case-insensitive substring match on the
// display name, returning the first hit in insertion order.
func findCarrier(ctx context.Context, repo interfaces.Repository, name string) (*model.Organization, error) {
	orgs, err := repo.Organization().FindByDisplayName(ctx, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find carrier", goerr.V("name", name))
	}
	if len(orgs) == 0 {
		return nil, nil
	}
	return orgs[0], nil
}

func findProduct(ctx context.Context, repo interfaces.Repository, name string) (*model.Product, error) {
	products, err := repo.Product().FindByName(ctx, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find product", goerr.V("name", name))
	}
	if len(products) == 0 {
		return nil, nil
	}
	return products[0], nil
}

// parseJSONContent decodes a JSON document body. Scorecard and production
// history content is stored verbatim as it was ingested.
func parseJSONContent(content string) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, goerr.Wrap(err, "failed to parse document content")
	}
	return payload, nil
}

func extractInt64(args map[string]any, key string) (int64, error) {
	switch v := args[key].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%s is not a number", key)
	}
}

func truncateContent(content string) string {
	if len(content) > maxContentChars {
		return content[:maxContentChars] + truncationNotice
	}
	return content
}
