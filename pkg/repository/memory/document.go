package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hemlix/simkb/pkg/domain/interfaces"
	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
)

type documentRepository struct {
	mu    sync.RWMutex
	docs  map[types.DocumentID]*model.Document
	order []types.DocumentID
}

func newDocumentRepository() *documentRepository {
	return &documentRepository{
		docs: make(map[types.DocumentID]*model.Document),
	}
}

func copyDocument(doc *model.Document) *model.Document {
	copied := *doc

	if doc.Metadata != nil {
		copied.Metadata = make(map[string]any, len(doc.Metadata))
		for k, v := range doc.Metadata {
			copied.Metadata[k] = v
		}
	}
	copied.OrganizationIDs = slices.Clone(doc.OrganizationIDs)
	copied.ProductIDs = slices.Clone(doc.ProductIDs)

	return &copied
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyDocument(doc)
	if created.ID == "" {
		created.ID = types.NewDocumentID()
	}
	created.CreatedAt = time.Now().UTC()

	r.docs[created.ID] = created
	r.order = append(r.order, created.ID)
	return copyDocument(created), nil
}

func (r *documentRepository) Get(ctx context.Context, id types.DocumentID) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, exists := r.docs[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "document not found", goerr.V("id", id))
	}

	return copyDocument(doc), nil
}

func (r *documentRepository) List(ctx context.Context) ([]*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Document, 0, len(r.docs))
	for _, id := range r.order {
		result = append(result, copyDocument(r.docs[id]))
	}

	return result, nil
}

func matchQuery(doc *model.Document, q interfaces.DocumentQuery) bool {
	if q.Type != "" && doc.Type != q.Type {
		return false
	}
	if q.OrganizationID != "" && !slices.Contains(doc.OrganizationIDs, q.OrganizationID) {
		return false
	}
	if q.ProductID != "" && !slices.Contains(doc.ProductIDs, q.ProductID) {
		return false
	}
	if q.TitleContains != "" && !containsFold(doc.Title, q.TitleContains) {
		return false
	}
	return true
}

func (r *documentRepository) Find(ctx context.Context, q interfaces.DocumentQuery) ([]*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Document
	for _, id := range r.order {
		if matchQuery(r.docs[id], q) {
			result = append(result, copyDocument(r.docs[id]))
		}
	}

	return result, nil
}

func (r *documentRepository) FindOne(ctx context.Context, q interfaces.DocumentQuery) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if matchQuery(r.docs[id], q) {
			return copyDocument(r.docs[id]), nil
		}
	}

	return nil, nil
}

func (r *documentRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.docs), nil
}
