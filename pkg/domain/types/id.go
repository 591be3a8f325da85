package types

import (
	"fmt"

	"github.com/google/uuid"
)

// OrganizationID identifies an insurance carrier organization
type OrganizationID string

// ProductID identifies an insurance product type
type ProductID string

// RoleID identifies a team role profile
type RoleID string

// DocumentID identifies a knowledge base document
type DocumentID string

// SessionID identifies a chat session. Opaque to the system; callers pick it.
type SessionID string

func (x OrganizationID) String() string { return string(x) }
func (x ProductID) String() string      { return string(x) }
func (x RoleID) String() string         { return string(x) }
func (x DocumentID) String() string     { return string(x) }
func (x SessionID) String() string      { return string(x) }

// newID generates a hemlix-style entity ID such as "hmx_doc_5f2a...".
func newID(kind string) string {
	return fmt.Sprintf("hmx_%s_%s", kind, uuid.New().String())
}

// NewOrganizationID generates a new OrganizationID
func NewOrganizationID() OrganizationID {
	return OrganizationID(newID("org"))
}

// NewProductID generates a new ProductID
func NewProductID() ProductID {
	return ProductID(newID("prod"))
}

// NewRoleID generates a new RoleID
func NewRoleID() RoleID {
	return RoleID(newID("role"))
}

// NewDocumentID generates a new DocumentID
func NewDocumentID() DocumentID {
	return DocumentID(newID("doc"))
}

// NewSessionID generates a random SessionID for callers that do not provide one
func NewSessionID() SessionID {
	return SessionID(newID("session"))
}
