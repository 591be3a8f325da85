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

type productDoc struct {
	ID          types.ProductID `firestore:"ID"`
	Name        string          `firestore:"Name"`
	Description string          `firestore:"Description"`
	CreatedAt   time.Time       `firestore:"CreatedAt"`
}

func toProductDoc(p *model.Product) *productDoc {
	return &productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

func fromProductDoc(d *productDoc) *model.Product {
	return &model.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
}

func docToProduct(doc *firestore.DocumentSnapshot) (*model.Product, error) {
	var d productDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromProductDoc(&d), nil
}

type productRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newProductRepository(client *firestore.Client) *productRepository {
	return &productRepository{
		client: client,
	}
}

func (r *productRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "products")
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	created := *product
	if created.ID == "" {
		created.ID = types.NewProductID()
	}
	created.CreatedAt = time.Now().UTC()

	docRef := r.collection().Doc(created.ID.String())
	if _, err := docRef.Set(ctx, toProductDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create product", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *productRepository) Get(ctx context.Context, id types.ProductID) (*model.Product, error) {
	doc, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "product not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get product", goerr.V("id", id))
	}

	product, err := docToProduct(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal product", goerr.V("id", id))
	}

	return product, nil
}

func (r *productRepository) List(ctx context.Context) ([]*model.Product, error) {
	iter := r.collection().
		OrderBy("Name", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	products := make([]*model.Product, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate products")
		}

		product, err := docToProduct(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal product")
		}

		products = append(products, product)
	}

	return products, nil
}

func (r *productRepository) FindByName(ctx context.Context, name string) ([]*model.Product, error) {
	iter := r.collection().
		OrderBy("CreatedAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var products []*model.Product
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate products", goerr.V("name", name))
		}

		product, err := docToProduct(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal product")
		}

		if containsFold(product.Name, name) {
			products = append(products, product)
		}
	}

	return products, nil
}

func (r *productRepository) Count(ctx context.Context) (int, error) {
	docs, err := r.collection().Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count products")
	}

	return len(docs), nil
}
