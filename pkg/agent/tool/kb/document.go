package kb

import (
	"context"
	"fmt"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/hemlix/simkb/pkg/agent/tool"
	"github.com/hemlix/simkb/pkg/domain/interfaces"
)

type getCarrierDocumentsTool struct {
	repo interfaces.Repository
}

func (t *getCarrierDocumentsTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "get_carrier_documents",
		Description: "Get all documents (scorecards, research) for a specific carrier",
		Parameters: map[string]*gollem.Parameter{
			"carrier_name": {
				Type:        gollem.TypeString,
				Description: "Name of the carrier (e.g., 'Protective Life', 'Lincoln Financial')",
				Required:    true,
			},
		},
	}
}

func (t *getCarrierDocumentsTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	carrierName, _ := args["carrier_name"].(string)
	if carrierName == "" {
		return errorResult("carrier_name is required"), nil
	}

	tool.Update(ctx, fmt.Sprintf("Listing documents for %s", carrierName))

	org, err := findCarrier(ctx, t.repo, carrierName)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return errorResult("No carrier found matching '%s'", carrierName), nil
	}

	docs, err := t.repo.Document().Find(ctx, interfaces.DocumentQuery{
		OrganizationID: org.ID,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list carrier documents", goerr.V("carrier", org.DisplayName))
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Type != docs[j].Type {
			return docs[i].Type < docs[j].Type
		}
		return docs[i].Title < docs[j].Title
	})

	items := make([]map[string]any, len(docs))
	for i, doc := range docs {
		item := map[string]any{
			"title": doc.Title,
			"type":  string(doc.Type),
		}
		if len(doc.Metadata) > 0 {
			item["metadata"] = doc.Metadata
		}
		items[i] = item
	}

	return map[string]any{
		"carrier":        org.DisplayName,
		"document_count": len(items),
		"documents":      items,
	}, nil
}

type getDocumentContentTool struct {
	repo interfaces.Repository
}

func (t *getDocumentContentTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "get_document_content",
		Description: "Get the full content of a specific document by title. Use this when user asks 'what does [document] say' or wants details from a specific document.",
		Parameters: map[string]*gollem.Parameter{
			"document_title": {
				Type:        gollem.TypeString,
				Description: "Full or partial title of the document (e.g., 'DR2', 'Protective Life DR2', 'underwriting')",
				Required:    true,
			},
			"carrier_name": {
				Type:        gollem.TypeString,
				Description: "Optional carrier name to narrow search if title is ambiguous",
				Required:    false,
			},
		},
	}
}

func (t *getDocumentContentTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	documentTitle, _ := args["document_title"].(string)
	if documentTitle == "" {
		return errorResult("document_title is required"), nil
	}
	carrierName, _ := args["carrier_name"].(string)

	tool.Update(ctx, fmt.Sprintf("Reading document: %s", documentTitle))

	query := interfaces.DocumentQuery{TitleContains: documentTitle}
	if carrierName != "" {
		org, err := findCarrier(ctx, t.repo, carrierName)
		if err != nil {
			return nil, err
		}
		if org == nil {
			return errorResult("No carrier found matching '%s'", carrierName), nil
		}
		query.OrganizationID = org.ID
	}

	doc, err := t.repo.Document().FindOne(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find document", goerr.V("title", documentTitle))
	}
	if doc == nil {
		return errorResult("No document found matching '%s'", documentTitle), nil
	}

	metadata := doc.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	return map[string]any{
		"title":    doc.Title,
		"type":     string(doc.Type),
		"content":  truncateContent(doc.Content),
		"metadata": metadata,
	}, nil
}
