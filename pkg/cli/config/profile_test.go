package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/hemlix/simkb/pkg/cli/config"
	"github.com/hemlix/simkb/pkg/service/semsearch"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.toml")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func loadProfile(t *testing.T, body string) (*config.Profile, error) {
	t.Helper()
	p := config.NewProfileForTest(writeProfile(t, body))
	return p, p.Configure()
}

func TestProfileDefaults(t *testing.T) {
	var p config.Profile
	gt.NoError(t, p.Configure())

	gt.V(t, p.Search.ChunkSize).Equal(semsearch.DefaultChunkSize)
	gt.V(t, p.Search.Overlap).Equal(semsearch.DefaultOverlap)
	gt.V(t, p.Search.MinSimilarity).Equal(semsearch.DefaultMinSimilarity)
	gt.V(t, p.Search.Limit).Equal(semsearch.DefaultLimit)
	gt.A(t, p.ProductCatalog()).Length(0)
}

func TestProfileLoad(t *testing.T) {
	p, err := loadProfile(t, `
[search]
chunk_size = 500
overlap = 100
min_similarity = 0.4
limit = 3

[[product]]
name = "Life"
description = "Life Insurance"

[[product]]
name = "Annuity"
description = "Annuity Products"
`)
	gt.NoError(t, err)

	gt.V(t, p.Search.ChunkSize).Equal(500)
	gt.V(t, p.Search.Overlap).Equal(100)
	gt.V(t, p.Search.MinSimilarity).Equal(0.4)
	gt.V(t, p.Search.Limit).Equal(3)

	products := p.ProductCatalog()
	gt.A(t, products).Length(2)
	gt.V(t, products[0].Name).Equal("Life")
	gt.V(t, products[1].Description).Equal("Annuity Products")
}

func TestProfilePartialOverride(t *testing.T) {
	p, err := loadProfile(t, `
[search]
chunk_size = 800
`)
	gt.NoError(t, err)

	gt.V(t, p.Search.ChunkSize).Equal(800)
	gt.V(t, p.Search.Overlap).Equal(semsearch.DefaultOverlap)
	gt.V(t, p.Search.Limit).Equal(semsearch.DefaultLimit)
}

func TestProfileValidation(t *testing.T) {
	t.Run("overlap must be below chunk size", func(t *testing.T) {
		_, err := loadProfile(t, `
[search]
chunk_size = 100
overlap = 100
`)
		gt.Error(t, err)
	})

	t.Run("min_similarity range", func(t *testing.T) {
		_, err := loadProfile(t, `
[search]
min_similarity = 1.5
`)
		gt.Error(t, err)
	})

	t.Run("duplicate product", func(t *testing.T) {
		_, err := loadProfile(t, `
[[product]]
name = "Life"

[[product]]
name = "Life"
`)
		gt.Error(t, err)
	})

	t.Run("product name required", func(t *testing.T) {
		_, err := loadProfile(t, `
[[product]]
description = "no name"
`)
		gt.Error(t, err)
	})
}

func TestProfileMissingFile(t *testing.T) {
	p := config.NewProfileForTest("/no/such/profile.toml")
	gt.Error(t, p.Configure())
}
