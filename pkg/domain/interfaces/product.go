package interfaces

import (
	"context"

	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
)

// ProductRepository defines the interface for Product persistence
type ProductRepository interface {
	// Create creates a new product
	Create(ctx context.Context, product *model.Product) (*model.Product, error)

	// Get retrieves a product by ID
	Get(ctx context.Context, id types.ProductID) (*model.Product, error)

	// List retrieves all products ordered by name
	List(ctx context.Context) ([]*model.Product, error)

	// FindByName retrieves products whose name contains the given string
	// (case-insensitive), in insertion order.
	FindByName(ctx context.Context, name string) ([]*model.Product, error)

	// Count returns the number of products
	Count(ctx context.Context) (int, error)
}
