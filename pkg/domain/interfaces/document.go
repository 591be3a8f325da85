package interfaces

import (
	"context"

	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
)

// DocumentQuery filters document lookups. Zero-value fields are ignored.
// TitleContains matches case-insensitively on a substring of the title.
type DocumentQuery struct {
	Type           types.DocumentType
	OrganizationID types.OrganizationID
	ProductID      types.ProductID
	TitleContains  string
}

// DocumentRepository defines the interface for Document persistence
type DocumentRepository interface {
	// Create creates a new document. Documents are immutable once created.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Get retrieves a document by ID
	Get(ctx context.Context, id types.DocumentID) (*model.Document, error)

	// List retrieves all documents in insertion order
	List(ctx context.Context) ([]*model.Document, error)

	// Find retrieves documents matching the query, in insertion order
	Find(ctx context.Context, q DocumentQuery) ([]*model.Document, error)

	// FindOne returns the first document matching the query, or nil (no
	// error) when nothing matches
	FindOne(ctx context.Context, q DocumentQuery) (*model.Document, error)

	// Count returns the number of documents
	Count(ctx context.Context) (int, error)
}
