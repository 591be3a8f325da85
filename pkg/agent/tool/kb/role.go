package kb

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/hemlix/simkb/pkg/agent/tool"
	"github.com/hemlix/simkb/pkg/domain/interfaces"
)

type getRolePerspectiveTool struct {
	repo interfaces.Repository
}

func (t *getRolePerspectiveTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "get_role_perspective",
		Description: "Get role information to assume that role's perspective (used in Mode 2: role-based analysis)",
		Parameters: map[string]*gollem.Parameter{
			"role_name": {
				Type:        gollem.TypeString,
				Description: "Role short name (CPO, COO, CDO, CFO, CEO, PB)",
				Required:    true,
			},
		},
	}
}

func (t *getRolePerspectiveTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	roleName, _ := args["role_name"].(string)
	if roleName == "" {
		return errorResult("role_name is required"), nil
	}

	tool.Update(ctx, fmt.Sprintf("Assuming role: %s", roleName))

	roles, err := t.repo.Role().FindByShortName(ctx, roleName)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find role", goerr.V("role", roleName))
	}
	if len(roles) == 0 {
		return errorResult("No role found matching '%s'", roleName), nil
	}

	role := roles[0]
	return map[string]any{
		"role":        role.Name,
		"short_name":  role.ShortName,
		"goal":        role.Goal,
		"backstory":   role.Backstory,
		"temperature": role.Temperature,
	}, nil
}
