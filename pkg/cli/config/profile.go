package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/service/semsearch"
)

// Profile is an optional TOML file overriding search tuning and the product
// catalog:
//
//	[search]
//	chunk_size = 1000
//	overlap = 200
//	min_similarity = 0.5
//	limit = 5
//
//	[[product]]
//	name = "Life"
//	description = "Life Insurance"
type Profile struct {
	path string

	Search   SearchProfile    `toml:"search"`
	Products []ProductProfile `toml:"product"`
}

// SearchProfile tunes chunking and retrieval
type SearchProfile struct {
	ChunkSize     int     `toml:"chunk_size"`
	Overlap       int     `toml:"overlap"`
	MinSimilarity float64 `toml:"min_similarity"`
	Limit         int     `toml:"limit"`
}

// ProductProfile is a product catalog entry
type ProductProfile struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// Flags returns CLI flags for profile configuration
func (p *Profile) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "profile",
			Usage:       "Path to a TOML profile (search tuning, product catalog)",
			Sources:     cli.EnvVars("SIMKB_PROFILE"),
			Destination: &p.path,
		},
	}
}

// Configure loads and validates the profile when a path is set. Without a
// path all defaults stay in effect.
func (p *Profile) Configure() error {
	p.Search = SearchProfile{
		ChunkSize:     semsearch.DefaultChunkSize,
		Overlap:       semsearch.DefaultOverlap,
		MinSimilarity: semsearch.DefaultMinSimilarity,
		Limit:         semsearch.DefaultLimit,
	}

	if p.path == "" {
		return nil
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return goerr.Wrap(err, "failed to read profile", goerr.V("path", p.path))
	}
	if err := toml.Unmarshal(data, p); err != nil {
		return goerr.Wrap(err, "failed to parse TOML profile", goerr.V("path", p.path))
	}

	return p.Validate()
}

// Validate checks the profile values
func (p *Profile) Validate() error {
	if p.Search.ChunkSize <= 0 {
		return goerr.New("chunk_size must be positive", goerr.V("chunk_size", p.Search.ChunkSize))
	}
	if p.Search.Overlap < 0 || p.Search.Overlap >= p.Search.ChunkSize {
		return goerr.New("overlap must be in [0, chunk_size)",
			goerr.V("overlap", p.Search.Overlap), goerr.V("chunk_size", p.Search.ChunkSize))
	}
	if p.Search.MinSimilarity < 0 || p.Search.MinSimilarity > 1 {
		return goerr.New("min_similarity must be in [0, 1]",
			goerr.V("min_similarity", p.Search.MinSimilarity))
	}
	if p.Search.Limit <= 0 {
		return goerr.New("limit must be positive", goerr.V("limit", p.Search.Limit))
	}

	seen := map[string]bool{}
	for _, prod := range p.Products {
		if prod.Name == "" {
			return goerr.New("product name is required")
		}
		if seen[prod.Name] {
			return goerr.New("duplicate product name", goerr.V("name", prod.Name))
		}
		seen[prod.Name] = true
	}

	return nil
}

// SearchOptions returns semsearch options derived from the profile
func (p *Profile) SearchOptions() []semsearch.Option {
	return []semsearch.Option{
		semsearch.WithChunkSize(p.Search.ChunkSize),
		semsearch.WithOverlap(p.Search.Overlap),
	}
}

// ProductCatalog returns the configured product catalog, empty when the
// profile does not override it.
func (p *Profile) ProductCatalog() []model.Product {
	products := make([]model.Product, len(p.Products))
	for i, prod := range p.Products {
		products[i] = model.Product{Name: prod.Name, Description: prod.Description}
	}
	return products
}
