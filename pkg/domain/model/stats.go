package model

// Stats holds entity counts for the knowledge base
type Stats struct {
	Organizations int
	Products      int
	Roles         int
	Documents     int
	Chunks        int
}

// SearchAvailable reports whether semantic search can run (any embeddings exist)
func (s Stats) SearchAvailable() bool {
	return s.Chunks > 0
}
