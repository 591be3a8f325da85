package firestore

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hemlix/simkb/pkg/domain/interfaces"
)

// Firestore is the persistent Repository implementation. Conversation
// sessions are not stored here; they stay in process memory.
type Firestore struct {
	client       *firestore.Client
	organization *organizationRepository
	product      *productRepository
	role         *roleRepository
	document     *documentRepository
	chunk        *chunkRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, mainly for tests sharing
// a project.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.organization.collectionPrefix = prefix
		f.product.collectionPrefix = prefix
		f.role.collectionPrefix = prefix
		f.document.collectionPrefix = prefix
		f.chunk.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:       client,
		organization: newOrganizationRepository(client),
		product:      newProductRepository(client),
		role:         newRoleRepository(client),
		document:     newDocumentRepository(client),
		chunk:        newChunkRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Organization() interfaces.OrganizationRepository {
	return f.organization
}

func (f *Firestore) Product() interfaces.ProductRepository {
	return f.product
}

func (f *Firestore) Role() interfaces.RoleRepository {
	return f.role
}

func (f *Firestore) Document() interfaces.DocumentRepository {
	return f.document
}

func (f *Firestore) Chunk() interfaces.ChunkRepository {
	return f.chunk
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// containsFold reports whether s contains substr, ignoring case. Firestore
// has no case-insensitive substring query, so name matching filters
// client-side after listing.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
