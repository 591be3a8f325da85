package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
)

// chunkDoc is the Firestore representation of model.Chunk. Embedding is
// stored as firestore.Vector32 so the field stays eligible for native vector
// search, though similarity ranking is computed by the search service.
type chunkDoc struct {
	DocumentID types.DocumentID   `firestore:"DocumentID"`
	Index      int                `firestore:"Index"`
	Text       string             `firestore:"Text"`
	Embedding  firestore.Vector32 `firestore:"Embedding,omitempty"`
	Seq        int64              `firestore:"Seq"`
}

func toChunkDoc(c *model.Chunk) *chunkDoc {
	doc := &chunkDoc{
		DocumentID: c.DocumentID,
		Index:      c.Index,
		Text:       c.Text,
		Seq:        c.Seq,
	}
	if len(c.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(c.Embedding)
	}
	return doc
}

func fromChunkDoc(d *chunkDoc) *model.Chunk {
	c := &model.Chunk{
		DocumentID: d.DocumentID,
		Index:      d.Index,
		Text:       d.Text,
		Seq:        d.Seq,
	}
	if len(d.Embedding) > 0 {
		c.Embedding = []float32(d.Embedding)
	}
	return c
}

func docToChunk(doc *firestore.DocumentSnapshot) (*model.Chunk, error) {
	var d chunkDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromChunkDoc(&d), nil
}

type chunkRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newChunkRepository(client *firestore.Client) *chunkRepository {
	return &chunkRepository{
		client: client,
	}
}

func (r *chunkRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "chunks")
}

func (r *chunkRepository) Put(ctx context.Context, chunks []*model.Chunk) error {
	// Seq is derived from the write timestamp; a nanosecond base plus the
	// slice offset keeps ordering stable within and across batches.
	base := time.Now().UTC().UnixNano()

	bw := r.client.BulkWriter(ctx)
	for i, chunk := range chunks {
		stored := *chunk
		stored.Seq = base + int64(i)

		docID := fmt.Sprintf("%s_%06d", stored.DocumentID, stored.Index)
		if _, err := bw.Set(r.collection().Doc(docID), toChunkDoc(&stored)); err != nil {
			return goerr.Wrap(err, "failed to enqueue chunk write",
				goerr.V("documentID", stored.DocumentID), goerr.V("index", stored.Index))
		}
	}
	bw.End()

	return nil
}

func (r *chunkRepository) DeleteByDocument(ctx context.Context, docID types.DocumentID) error {
	iter := r.collection().
		Where("DocumentID", "==", docID.String()).
		Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate chunks", goerr.V("documentID", docID))
		}

		if _, err := bw.Delete(doc.Ref); err != nil {
			return goerr.Wrap(err, "failed to enqueue chunk delete", goerr.V("documentID", docID))
		}
	}
	bw.End()

	return nil
}

func (r *chunkRepository) List(ctx context.Context) ([]*model.Chunk, error) {
	iter := r.collection().
		OrderBy("Seq", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	chunks := make([]*model.Chunk, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate chunks")
		}

		chunk, err := docToChunk(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal chunk")
		}

		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

func (r *chunkRepository) Count(ctx context.Context) (int, error) {
	docs, err := r.collection().Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count chunks")
	}

	return len(docs), nil
}
