package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
)

type roleRepository struct {
	mu    sync.RWMutex
	roles map[types.RoleID]*model.Role
	order []types.RoleID
}

func newRoleRepository() *roleRepository {
	return &roleRepository{
		roles: make(map[types.RoleID]*model.Role),
	}
}

func copyRole(role *model.Role) *model.Role {
	copied := *role
	return &copied
}

func (r *roleRepository) Create(ctx context.Context, role *model.Role) (*model.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyRole(role)
	if created.ID == "" {
		created.ID = types.NewRoleID()
	}
	created.CreatedAt = time.Now().UTC()

	r.roles[created.ID] = created
	r.order = append(r.order, created.ID)
	return copyRole(created), nil
}

func (r *roleRepository) Get(ctx context.Context, id types.RoleID) (*model.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role, exists := r.roles[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "role not found", goerr.V("id", id))
	}

	return copyRole(role), nil
}

func (r *roleRepository) List(ctx context.Context) ([]*model.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Role, 0, len(r.roles))
	for _, id := range r.order {
		result = append(result, copyRole(r.roles[id]))
	}

	return result, nil
}

func (r *roleRepository) FindByShortName(ctx context.Context, shortName string) ([]*model.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Role
	for _, id := range r.order {
		if containsFold(r.roles[id].ShortName, shortName) {
			result = append(result, copyRole(r.roles[id]))
		}
	}

	return result, nil
}

func (r *roleRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.roles), nil
}
