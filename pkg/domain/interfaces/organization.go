package interfaces

import (
	"context"

	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
)

// OrganizationRepository defines the interface for Organization persistence
type OrganizationRepository interface {
	// Create creates a new organization
	Create(ctx context.Context, org *model.Organization) (*model.Organization, error)

	// Get retrieves an organization by ID
	Get(ctx context.Context, id types.OrganizationID) (*model.Organization, error)

	// GetByName retrieves an organization by its exact normalized name.
	// Returns nil (no error) when none exists.
	GetByName(ctx context.Context, name string) (*model.Organization, error)

	// List retrieves all organizations ordered by display name
	List(ctx context.Context) ([]*model.Organization, error)

	// FindByDisplayName retrieves organizations whose display name contains
	// the given string (case-insensitive), in insertion order. Callers that
	// need a single carrier take the first match; ambiguity is not resolved.
	FindByDisplayName(ctx context.Context, name string) ([]*model.Organization, error)

	// Count returns the number of organizations
	Count(ctx context.Context) (int, error)
}
