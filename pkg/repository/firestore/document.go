package firestore

import (
	"context"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hemlix/simkb/pkg/domain/interfaces"
	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
)

type documentDoc struct {
	ID              types.DocumentID   `firestore:"ID"`
	Title           string             `firestore:"Title"`
	Type            types.DocumentType `firestore:"Type"`
	Content         string             `firestore:"Content"`
	Metadata        map[string]any     `firestore:"Metadata,omitempty"`
	OrganizationIDs []string           `firestore:"OrganizationIDs"`
	ProductIDs      []string           `firestore:"ProductIDs"`
	CreatedAt       time.Time          `firestore:"CreatedAt"`
}

func toDocumentDoc(doc *model.Document) *documentDoc {
	d := &documentDoc{
		ID:        doc.ID,
		Title:     doc.Title,
		Type:      doc.Type,
		Content:   doc.Content,
		Metadata:  doc.Metadata,
		CreatedAt: doc.CreatedAt,
	}
	for _, id := range doc.OrganizationIDs {
		d.OrganizationIDs = append(d.OrganizationIDs, id.String())
	}
	for _, id := range doc.ProductIDs {
		d.ProductIDs = append(d.ProductIDs, id.String())
	}
	return d
}

func fromDocumentDoc(d *documentDoc) *model.Document {
	doc := &model.Document{
		ID:        d.ID,
		Title:     d.Title,
		Type:      d.Type,
		Content:   d.Content,
		Metadata:  d.Metadata,
		CreatedAt: d.CreatedAt,
	}
	for _, id := range d.OrganizationIDs {
		doc.OrganizationIDs = append(doc.OrganizationIDs, types.OrganizationID(id))
	}
	for _, id := range d.ProductIDs {
		doc.ProductIDs = append(doc.ProductIDs, types.ProductID(id))
	}
	return doc
}

func docToDocument(doc *firestore.DocumentSnapshot) (*model.Document, error) {
	var d documentDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromDocumentDoc(&d), nil
}

type documentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newDocumentRepository(client *firestore.Client) *documentRepository {
	return &documentRepository{
		client: client,
	}
}

func (r *documentRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "documents")
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	created := *doc
	if created.ID == "" {
		created.ID = types.NewDocumentID()
	}
	created.CreatedAt = time.Now().UTC()

	docRef := r.collection().Doc(created.ID.String())
	if _, err := docRef.Set(ctx, toDocumentDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create document", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *documentRepository) Get(ctx context.Context, id types.DocumentID) (*model.Document, error) {
	doc, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "document not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get document", goerr.V("id", id))
	}

	d, err := docToDocument(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal document", goerr.V("id", id))
	}

	return d, nil
}

func (r *documentRepository) List(ctx context.Context) ([]*model.Document, error) {
	return r.listMatching(ctx, interfaces.DocumentQuery{})
}

// listMatching pushes the Type filter to Firestore and applies the remaining
// DocumentQuery fields client-side: array membership plus substring matching
// would need composite indexes the data volume does not justify.
func (r *documentRepository) listMatching(ctx context.Context, q interfaces.DocumentQuery) ([]*model.Document, error) {
	query := r.collection().Query
	if q.Type != "" {
		query = query.Where("Type", "==", string(q.Type))
	}

	iter := query.OrderBy("CreatedAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	docs := make([]*model.Document, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents")
		}

		d, err := docToDocument(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal document")
		}

		if q.OrganizationID != "" && !slices.Contains(d.OrganizationIDs, q.OrganizationID) {
			continue
		}
		if q.ProductID != "" && !slices.Contains(d.ProductIDs, q.ProductID) {
			continue
		}
		if q.TitleContains != "" && !containsFold(d.Title, q.TitleContains) {
			continue
		}

		docs = append(docs, d)
	}

	return docs, nil
}

func (r *documentRepository) Find(ctx context.Context, q interfaces.DocumentQuery) ([]*model.Document, error) {
	return r.listMatching(ctx, q)
}

func (r *documentRepository) FindOne(ctx context.Context, q interfaces.DocumentQuery) (*model.Document, error) {
	docs, err := r.listMatching(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	return docs[0], nil
}

func (r *documentRepository) Count(ctx context.Context) (int, error) {
	docs, err := r.collection().Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count documents")
	}

	return len(docs), nil
}
