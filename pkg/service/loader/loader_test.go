package loader_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/hemlix/simkb/pkg/domain/interfaces"
	"github.com/hemlix/simkb/pkg/domain/types"
	"github.com/hemlix/simkb/pkg/repository/memory"
	"github.com/hemlix/simkb/pkg/service/loader"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	gt.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func setupKB(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	year := filepath.Join(root, "2026")

	writeFile(t, filepath.Join(year, "carrier_scorecards", "json", "meridian_life.json"), `{
		"metadata": {"carrier_display": "Meridian Life", "product": "Life"},
		"scores": {"n_score": 0.82, "rank_current": 3}
	}`)
	writeFile(t, filepath.Join(year, "carrier_scorecards", "json", "pacific_shield.json"), `{
		"metadata": {"carrier_display": "Pacific Shield & Trust", "product": "Annuity"},
		"scores": {"n_score": 0.74, "rank_current": 7}
	}`)

	writeFile(t, filepath.Join(year, "question_scorecards", "json", "q_financial_strength.json"), `{
		"metadata": {"question": "Financial Strength", "product": "Life"},
		"results": []
	}`)

	writeFile(t, filepath.Join(year, "research", "Meridian_Life_DR1_underwriting_quality.md"),
		"# Underwriting Quality\n\nMeridian Life shows strong underwriting discipline.")

	writeFile(t, filepath.Join(year, "production_history", "json", "production_history_2026.json"), `{
		"metadata": {"year": 2026},
		"carriers": [{"carrier_display": "Meridian Life", "volumes": [100, 120]}]
	}`)

	writeFile(t, filepath.Join(year, "agents", "BPSer_team.json"), `{
		"employees": [
			{
				"role": "Chief Product Officer",
				"role_short_name": "CPO",
				"profile": {"temperature": 0.3, "goal": "maximize portfolio fit", "backstory": "veteran"}
			}
		]
	}`)

	return root
}

func TestLoadAll(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := loader.New(repo, setupKB(t))

	stats := gt.R1(svc.LoadAll(ctx)).NoError(t)

	t.Run("counts cover every section", func(t *testing.T) {
		gt.V(t, stats.Organizations).Equal(2)
		// 4 defaults, scorecard products already exist
		gt.V(t, stats.Products).Equal(4)
		gt.V(t, stats.Roles).Equal(1)
		// 2 carrier scorecards + 1 question scorecard + 1 research + 1 production history
		gt.V(t, stats.Documents).Equal(5)
	})

	t.Run("carrier names are normalized for storage", func(t *testing.T) {
		org := gt.R1(repo.Organization().GetByName(ctx, "pacific_shield_and_trust")).NoError(t)
		gt.V(t, org).NotNil()
		gt.V(t, org.DisplayName).Equal("Pacific Shield & Trust")
	})

	t.Run("scorecard document links organization and product", func(t *testing.T) {
		doc := gt.R1(repo.Document().FindOne(ctx, interfaces.DocumentQuery{
			Type:          types.DocumentTypeCarrierScorecard,
			TitleContains: "meridian",
		})).NoError(t)
		gt.V(t, doc).NotNil()
		gt.V(t, doc.Title).Equal("Meridian Life Life Scorecard 2026")
		gt.A(t, doc.OrganizationIDs).Length(1)
		gt.A(t, doc.ProductIDs).Length(1)
		gt.V(t, doc.Metadata["carrier_display"]).Equal("Meridian Life")
	})

	t.Run("research title derives from filename", func(t *testing.T) {
		doc := gt.R1(repo.Document().FindOne(ctx, interfaces.DocumentQuery{
			Type: types.DocumentTypeResearch,
		})).NoError(t)
		gt.V(t, doc).NotNil()
		gt.V(t, doc.Title).Equal("Meridian Life - DR1: Underwriting Quality")
	})

	t.Run("production history links mentioned carriers", func(t *testing.T) {
		doc := gt.R1(repo.Document().FindOne(ctx, interfaces.DocumentQuery{
			Type: types.DocumentTypeProductionHistory,
		})).NoError(t)
		gt.V(t, doc).NotNil()
		gt.A(t, doc.OrganizationIDs).Length(1)
	})

	t.Run("role profile fields survive", func(t *testing.T) {
		roles := gt.R1(repo.Role().FindByShortName(ctx, "CPO")).NoError(t)
		gt.A(t, roles).Length(1)
		gt.V(t, roles[0].Name).Equal("Chief Product Officer")
		gt.V(t, roles[0].Temperature).Equal(0.3)
	})
}

func TestLoadAllMissingSections(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := loader.New(repo, t.TempDir())

	stats := gt.R1(svc.LoadAll(ctx)).NoError(t)
	gt.V(t, stats.Organizations).Equal(0)
	gt.V(t, stats.Products).Equal(4)
	gt.V(t, stats.Documents).Equal(0)
}
