package interfaces

// Repository defines the interface for knowledge base persistence
type Repository interface {
	Organization() OrganizationRepository
	Product() ProductRepository
	Role() RoleRepository
	Document() DocumentRepository
	Chunk() ChunkRepository

	Close() error
}
