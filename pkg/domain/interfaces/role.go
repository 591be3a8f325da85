package interfaces

import (
	"context"

	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
)

// RoleRepository defines the interface for Role persistence
type RoleRepository interface {
	// Create creates a new role
	Create(ctx context.Context, role *model.Role) (*model.Role, error)

	// Get retrieves a role by ID
	Get(ctx context.Context, id types.RoleID) (*model.Role, error)

	// List retrieves all roles in insertion order
	List(ctx context.Context) ([]*model.Role, error)

	// FindByShortName retrieves roles whose short name contains the given
	// string (case-insensitive), in insertion order.
	FindByShortName(ctx context.Context, shortName string) ([]*model.Role, error)

	// Count returns the number of roles
	Count(ctx context.Context) (int, error)
}
