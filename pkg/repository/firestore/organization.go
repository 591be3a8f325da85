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

type organizationDoc struct {
	ID          types.OrganizationID `firestore:"ID"`
	Name        string               `firestore:"Name"`
	DisplayName string               `firestore:"DisplayName"`
	CreatedAt   time.Time            `firestore:"CreatedAt"`
}

func toOrganizationDoc(o *model.Organization) *organizationDoc {
	return &organizationDoc{
		ID:          o.ID,
		Name:        o.Name,
		DisplayName: o.DisplayName,
		CreatedAt:   o.CreatedAt,
	}
}

func fromOrganizationDoc(d *organizationDoc) *model.Organization {
	return &model.Organization{
		ID:          d.ID,
		Name:        d.Name,
		DisplayName: d.DisplayName,
		CreatedAt:   d.CreatedAt,
	}
}

func docToOrganization(doc *firestore.DocumentSnapshot) (*model.Organization, error) {
	var d organizationDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromOrganizationDoc(&d), nil
}

type organizationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newOrganizationRepository(client *firestore.Client) *organizationRepository {
	return &organizationRepository{
		client: client,
	}
}

func (r *organizationRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "organizations")
}

func (r *organizationRepository) Create(ctx context.Context, org *model.Organization) (*model.Organization, error) {
	created := *org
	if created.ID == "" {
		created.ID = types.NewOrganizationID()
	}
	created.CreatedAt = time.Now().UTC()

	docRef := r.collection().Doc(created.ID.String())
	if _, err := docRef.Set(ctx, toOrganizationDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create organization", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *organizationRepository) Get(ctx context.Context, id types.OrganizationID) (*model.Organization, error) {
	doc, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "organization not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get organization", goerr.V("id", id))
	}

	org, err := docToOrganization(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal organization", goerr.V("id", id))
	}

	return org, nil
}

func (r *organizationRepository) GetByName(ctx context.Context, name string) (*model.Organization, error) {
	iter := r.collection().
		Where("Name", "==", name).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query organization by name", goerr.V("name", name))
	}

	org, err := docToOrganization(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal organization", goerr.V("name", name))
	}

	return org, nil
}

func (r *organizationRepository) List(ctx context.Context) ([]*model.Organization, error) {
	iter := r.collection().
		OrderBy("DisplayName", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	orgs := make([]*model.Organization, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate organizations")
		}

		org, err := docToOrganization(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal organization")
		}

		orgs = append(orgs, org)
	}

	return orgs, nil
}

func (r *organizationRepository) FindByDisplayName(ctx context.Context, name string) ([]*model.Organization, error) {
	iter := r.collection().
		OrderBy("CreatedAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var orgs []*model.Organization
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate organizations", goerr.V("name", name))
		}

		org, err := docToOrganization(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal organization")
		}

		if containsFold(org.DisplayName, name) {
			orgs = append(orgs, org)
		}
	}

	return orgs, nil
}

func (r *organizationRepository) Count(ctx context.Context) (int, error) {
	docs, err := r.collection().Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count organizations")
	}

	return len(docs), nil
}
