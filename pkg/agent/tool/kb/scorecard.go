package kb

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/hemlix/simkb/pkg/agent/tool"
	"github.com/hemlix/simkb/pkg/domain/interfaces"
	"github.com/hemlix/simkb/pkg/domain/types"
)

type getScorecardTool struct {
	repo interfaces.Repository
}

func (t *getScorecardTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "get_scorecard",
		Description: "Get performance scorecard for a specific carrier and product combination",
		Parameters: map[string]*gollem.Parameter{
			"carrier_name": {
				Type:        gollem.TypeString,
				Description: "Name of the carrier",
				Required:    true,
			},
			"product_type": {
				Type:        gollem.TypeString,
				Description: "Product type (Life, Annuity, ABLTC, or Disability)",
				Required:    true,
			},
		},
	}
}

func (t *getScorecardTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	carrierName, _ := args["carrier_name"].(string)
	if carrierName == "" {
		return errorResult("carrier_name is required"), nil
	}
	productType, _ := args["product_type"].(string)
	if productType == "" {
		return errorResult("product_type is required"), nil
	}

	tool.Update(ctx, fmt.Sprintf("Getting scorecard: %s / %s", carrierName, productType))

	org, err := findCarrier(ctx, t.repo, carrierName)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return errorResult("No carrier found matching '%s'", carrierName), nil
	}

	product, err := findProduct(ctx, t.repo, productType)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return errorResult("No product found matching '%s'", productType), nil
	}

	doc, err := t.repo.Document().FindOne(ctx, interfaces.DocumentQuery{
		Type:           types.DocumentTypeCarrierScorecard,
		OrganizationID: org.ID,
		ProductID:      product.ID,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find scorecard")
	}
	if doc == nil {
		return errorResult("No scorecard found for %s - %s", org.DisplayName, product.Name), nil
	}

	scorecard, err := parseJSONContent(doc.Content)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse scorecard", goerr.V("id", doc.ID))
	}

	return map[string]any{
		"carrier":   org.DisplayName,
		"product":   product.Name,
		"scorecard": scorecard,
	}, nil
}

type getQuestionScorecardTool struct {
	repo interfaces.Repository
}

func (t *getQuestionScorecardTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "get_question_scorecard",
		Description: "Get question scorecard showing how all carriers performed on a specific question (used in Mode 2: role-based question analysis)",
		Parameters: map[string]*gollem.Parameter{
			"question_name": {
				Type:        gollem.TypeString,
				Description: "The question name (e.g., 'Business Confidence', 'Compensation', 'Underwriting - Medical')",
				Required:    true,
			},
			"product_type": {
				Type:        gollem.TypeString,
				Description: "Product type (Life, Annuity, ABLTC, Disability)",
				Required:    true,
			},
		},
	}
}

func (t *getQuestionScorecardTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	questionName, _ := args["question_name"].(string)
	if questionName == "" {
		return errorResult("question_name is required"), nil
	}
	productType, _ := args["product_type"].(string)
	if productType == "" {
		return errorResult("product_type is required"), nil
	}

	tool.Update(ctx, fmt.Sprintf("Getting question scorecard: %s / %s", questionName, productType))

	product, err := findProduct(ctx, t.repo, productType)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return errorResult("No product found matching '%s'", productType), nil
	}

	doc, err := t.repo.Document().FindOne(ctx, interfaces.DocumentQuery{
		Type:          types.DocumentTypeQuestionScorecard,
		ProductID:     product.ID,
		TitleContains: questionName,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find question scorecard")
	}
	if doc == nil {
		return errorResult("No question scorecard found for '%s' - %s", questionName, product.Name), nil
	}

	scorecard, err := parseJSONContent(doc.Content)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse question scorecard", goerr.V("id", doc.ID))
	}

	return map[string]any{
		"question":  questionName,
		"product":   product.Name,
		"scorecard": scorecard,
	}, nil
}

type getProductionHistoryTool struct {
	repo interfaces.Repository
}

func (t *getProductionHistoryTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "get_production_history",
		Description: "Get production history data for a specific carrier (used in Mode 1: carrier performance analysis)",
		Parameters: map[string]*gollem.Parameter{
			"carrier_name": {
				Type:        gollem.TypeString,
				Description: "Name of the carrier to get production history for",
				Required:    true,
			},
		},
	}
}

func (t *getProductionHistoryTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	carrierName, _ := args["carrier_name"].(string)
	if carrierName == "" {
		return errorResult("carrier_name is required"), nil
	}

	tool.Update(ctx, fmt.Sprintf("Getting production history: %s", carrierName))

	org, err := findCarrier(ctx, t.repo, carrierName)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return errorResult("No carrier found matching '%s'", carrierName), nil
	}

	doc, err := t.repo.Document().FindOne(ctx, interfaces.DocumentQuery{
		Type:           types.DocumentTypeProductionHistory,
		OrganizationID: org.ID,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find production history")
	}
	if doc == nil {
		return errorResult("No production history found for %s", org.DisplayName), nil
	}

	payload, err := parseJSONContent(doc.Content)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse production history", goerr.V("id", doc.ID))
	}

	// The production history document covers all carriers; extract this one.
	var carrierData map[string]any
	if carriers, ok := payload["carriers"].([]any); ok {
		for _, entry := range carriers {
			data, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			display, _ := data["carrier_display"].(string)
			if strings.EqualFold(display, org.DisplayName) {
				carrierData = data
				break
			}
		}
	}
	if carrierData == nil {
		return errorResult("No production history data found for %s", org.DisplayName), nil
	}

	metadata, _ := payload["metadata"].(map[string]any)
	if metadata == nil {
		metadata = map[string]any{}
	}

	return map[string]any{
		"carrier":            org.DisplayName,
		"production_history": carrierData,
		"metadata":           metadata,
	}, nil
}
