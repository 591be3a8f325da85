package kb

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/hemlix/simkb/pkg/agent/tool"
	"github.com/hemlix/simkb/pkg/domain/interfaces"
)

type listOrganizationsTool struct {
	repo interfaces.Repository
}

func (t *listOrganizationsTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "list_organizations",
		Description: "List all insurance carrier organizations in the knowledge base",
		Parameters:  map[string]*gollem.Parameter{},
	}
}

func (t *listOrganizationsTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	tool.Update(ctx, "Listing carriers...")

	orgs, err := t.repo.Organization().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list organizations")
	}

	names := make([]string, len(orgs))
	for i, org := range orgs {
		names[i] = org.DisplayName
	}

	return map[string]any{
		"count":         len(names),
		"organizations": names,
	}, nil
}

type listProductsTool struct {
	repo interfaces.Repository
}

func (t *listProductsTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "list_products",
		Description: "List all insurance product types available",
		Parameters:  map[string]*gollem.Parameter{},
	}
}

func (t *listProductsTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	tool.Update(ctx, "Listing products...")

	products, err := t.repo.Product().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list products")
	}

	items := make([]map[string]any, len(products))
	for i, product := range products {
		items[i] = map[string]any{
			"name":        product.Name,
			"description": product.Description,
		}
	}

	return map[string]any{"products": items}, nil
}

type listRolesTool struct {
	repo interfaces.Repository
}

func (t *listRolesTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "list_roles",
		Description: "List BPSer team roles (CPO, COO, CDO, CFO, CEO, Pitch Bitch)",
		Parameters:  map[string]*gollem.Parameter{},
	}
}

func (t *listRolesTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	tool.Update(ctx, "Listing roles...")

	roles, err := t.repo.Role().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list roles")
	}

	items := make([]map[string]any, len(roles))
	for i, role := range roles {
		items[i] = map[string]any{
			"role":       role.Name,
			"short_name": role.ShortName,
			"goal":       role.Goal,
		}
	}

	return map[string]any{"roles": items}, nil
}
