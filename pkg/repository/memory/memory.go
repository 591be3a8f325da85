package memory

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hemlix/simkb/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = goerr.New("not found")

// Memory is an in-memory Repository implementation for development and tests
type Memory struct {
	organization *organizationRepository
	product      *productRepository
	role         *roleRepository
	document     *documentRepository
	chunk        *chunkRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		organization: newOrganizationRepository(),
		product:      newProductRepository(),
		role:         newRoleRepository(),
		document:     newDocumentRepository(),
		chunk:        newChunkRepository(),
	}
}

func (m *Memory) Organization() interfaces.OrganizationRepository {
	return m.organization
}

func (m *Memory) Product() interfaces.ProductRepository {
	return m.product
}

func (m *Memory) Role() interfaces.RoleRepository {
	return m.role
}

func (m *Memory) Document() interfaces.DocumentRepository {
	return m.document
}

func (m *Memory) Chunk() interfaces.ChunkRepository {
	return m.chunk
}

func (m *Memory) Close() error {
	return nil
}

// containsFold reports whether s contains substr, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
