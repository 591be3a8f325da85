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

type organizationRepository struct {
	mu    sync.RWMutex
	orgs  map[types.OrganizationID]*model.Organization
	order []types.OrganizationID
}

func newOrganizationRepository() *organizationRepository {
	return &organizationRepository{
		orgs: make(map[types.OrganizationID]*model.Organization),
	}
}

func copyOrganization(o *model.Organization) *model.Organization {
	copied := *o
	return &copied
}

func (r *organizationRepository) Create(ctx context.Context, org *model.Organization) (*model.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyOrganization(org)
	if created.ID == "" {
		created.ID = types.NewOrganizationID()
	}
	created.CreatedAt = time.Now().UTC()

	r.orgs[created.ID] = created
	r.order = append(r.order, created.ID)
	return copyOrganization(created), nil
}

func (r *organizationRepository) Get(ctx context.Context, id types.OrganizationID) (*model.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, exists := r.orgs[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "organization not found", goerr.V("id", id))
	}

	return copyOrganization(org), nil
}

func (r *organizationRepository) GetByName(ctx context.Context, name string) (*model.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if r.orgs[id].Name == name {
			return copyOrganization(r.orgs[id]), nil
		}
	}

	return nil, nil
}

func (r *organizationRepository) List(ctx context.Context) ([]*model.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Organization, 0, len(r.orgs))
	for _, id := range r.order {
		result = append(result, copyOrganization(r.orgs[id]))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].DisplayName < result[j].DisplayName
	})

	return result, nil
}

func (r *organizationRepository) FindByDisplayName(ctx context.Context, name string) ([]*model.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Organization
	for _, id := range r.order {
		if containsFold(r.orgs[id].DisplayName, name) {
			result = append(result, copyOrganization(r.orgs[id]))
		}
	}

	return result, nil
}

func (r *organizationRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.orgs), nil
}
