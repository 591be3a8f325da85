package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
)

type roleDoc struct {
	ID          types.RoleID `firestore:"ID"`
	Name        string       `firestore:"Name"`
	ShortName   string       `firestore:"ShortName"`
	Goal        string       `firestore:"Goal"`
	Backstory   string       `firestore:"Backstory"`
	Temperature float64      `firestore:"Temperature"`
	CreatedAt   time.Time    `firestore:"CreatedAt"`
}

func toRoleDoc(role *model.Role) *roleDoc {
	return &roleDoc{
		ID:          role.ID,
		Name:        role.Name,
		ShortName:   role.ShortName,
		Goal:        role.Goal,
		Backstory:   role.Backstory,
		Temperature: role.Temperature,
		CreatedAt:   role.CreatedAt,
	}
}

func fromRoleDoc(d *roleDoc) *model.Role {
	return &model.Role{
		ID:          d.ID,
		Name:        d.Name,
		ShortName:   d.ShortName,
		Goal:        d.Goal,
		Backstory:   d.Backstory,
		Temperature: d.Temperature,
		CreatedAt:   d.CreatedAt,
	}
}

func docToRole(doc *firestore.DocumentSnapshot) (*model.Role, error) {
	var d roleDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromRoleDoc(&d), nil
}

type roleRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRoleRepository(client *firestore.Client) *roleRepository {
	return &roleRepository{
		client: client,
	}
}

func (r *roleRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "roles")
}

func (r *roleRepository) Create(ctx context.Context, role *model.Role) (*model.Role, error) {
	created := *role
	if created.ID == "" {
		created.ID = types.NewRoleID()
	}
	created.CreatedAt = time.Now().UTC()

	docRef := r.collection().Doc(created.ID.String())
	if _, err := docRef.Set(ctx, toRoleDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create role", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *roleRepository) Get(ctx context.Context, id types.RoleID) (*model.Role, error) {
	doc, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "role not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get role", goerr.V("id", id))
	}

	role, err := docToRole(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal role", goerr.V("id", id))
	}

	return role, nil
}

func (r *roleRepository) List(ctx context.Context) ([]*model.Role, error) {
	iter := r.collection().
		OrderBy("CreatedAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	roles := make([]*model.Role, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate roles")
		}

		role, err := docToRole(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal role")
		}

		roles = append(roles, role)
	}

	return roles, nil
}

func (r *roleRepository) FindByShortName(ctx context.Context, shortName string) ([]*model.Role, error) {
	iter := r.collection().
		OrderBy("CreatedAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var roles []*model.Role
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate roles", goerr.V("shortName", shortName))
		}

		role, err := docToRole(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal role")
		}

		if containsFold(role.ShortName, shortName) {
			roles = append(roles, role)
		}
	}

	return roles, nil
}

func (r *roleRepository) Count(ctx context.Context) (int, error) {
	docs, err := r.collection().Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count roles")
	}

	return len(docs), nil
}
