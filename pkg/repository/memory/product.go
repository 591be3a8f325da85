package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
)

type productRepository struct {
	mu       sync.RWMutex
	products map[types.ProductID]*model.Product
	order    []types.ProductID
}

func newProductRepository() *productRepository {
	return &productRepository{
		products: make(map[types.ProductID]*model.Product),
	}
}

func copyProduct(p *model.Product) *model.Product {
	copied := *p
	return &copied
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyProduct(product)
	if created.ID == "" {
		created.ID = types.NewProductID()
	}
	created.CreatedAt = time.Now().UTC()

	r.products[created.ID] = created
	r.order = append(r.order, created.ID)
	return copyProduct(created), nil
}

func (r *productRepository) Get(ctx context.Context, id types.ProductID) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "product not found", goerr.V("id", id))
	}

	return copyProduct(product), nil
}

func (r *productRepository) List(ctx context.Context) ([]*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Product, 0, len(r.products))
	for _, id := range r.order {
		result = append(result, copyProduct(r.products[id]))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

func (r *productRepository) FindByName(ctx context.Context, name string) ([]*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Product
	for _, id := range r.order {
		if containsFold(r.products[id].Name, name) {
			result = append(result, copyProduct(r.products[id]))
		}
	}

	return result, nil
}

func (r *productRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.products), nil
}
