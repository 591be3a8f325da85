package model

import (
	"time"

	"github.com/hemlix/simkb/pkg/domain/types"
)

// Document is an immutable text artifact in the knowledge base: a carrier
// scorecard, question scorecard, research note or production history record.
// Content is raw JSON for scorecards and production history, markdown for
// research documents.
type Document struct {
	ID              types.DocumentID
	Title           string
	Type            types.DocumentType
	Content         string
	Metadata        map[string]any
	OrganizationIDs []types.OrganizationID
	ProductIDs      []types.ProductID
	CreatedAt       time.Time
}
