package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hemlix/simkb/pkg/domain/interfaces"
	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
	"github.com/hemlix/simkb/pkg/utils/logging"
)

const DefaultYear = 2026

// defaultProducts are the product lines every knowledge base starts with.
var defaultProducts = []struct {
	name        string
	description string
}{
	{"Life", "Life Insurance"},
	{"Annuity", "Annuity Products"},
	{"ABLTC", "Asset-Based Long-Term Care"},
	{"Disability", "Disability Insurance"},
}

var researchFileRe = regexp.MustCompile(`^(.+)_DR(\d)_(.+)$`)

// Service imports a knowledge base directory into the repository. The layout
// under <kbPath>/<year>/ is:
//
//	carrier_scorecards/json/*.json
//	question_scorecards/json/*.json
//	research/*.md
//	production_history/json/production_history_<year>.json
//	agents/BPSer_team.json
type Service struct {
	repo     interfaces.Repository
	kbPath   string
	year     int
	products []model.Product
}

type Option func(*Service)

func WithYear(year int) Option {
	return func(s *Service) {
		s.year = year
	}
}

// WithProducts replaces the default product catalog, e.g. from a TOML profile.
func WithProducts(products []model.Product) Option {
	return func(s *Service) {
		if len(products) > 0 {
			s.products = products
		}
	}
}

func New(repo interfaces.Repository, kbPath string, opts ...Option) *Service {
	products := make([]model.Product, len(defaultProducts))
	for i, p := range defaultProducts {
		products[i] = model.Product{Name: p.name, Description: p.description}
	}

	s := &Service{
		repo:     repo,
		kbPath:   kbPath,
		year:     DefaultYear,
		products: products,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) yearDir(parts ...string) string {
	return filepath.Join(append([]string{s.kbPath, fmt.Sprintf("%d", s.year)}, parts...)...)
}

// LoadAll imports the whole knowledge base in dependency order and returns
// the resulting entity counts.
func (s *Service) LoadAll(ctx context.Context) (*model.Stats, error) {
	logger := logging.From(ctx)

	if err := s.loadProducts(ctx); err != nil {
		return nil, err
	}
	if err := s.loadOrganizations(ctx); err != nil {
		return nil, err
	}
	if err := s.loadRoles(ctx); err != nil {
		return nil, err
	}
	if err := s.loadCarrierScorecards(ctx); err != nil {
		return nil, err
	}
	if err := s.loadResearchDocuments(ctx); err != nil {
		return nil, err
	}
	if err := s.loadQuestionScorecards(ctx); err != nil {
		return nil, err
	}
	if err := s.loadProductionHistory(ctx); err != nil {
		return nil, err
	}

	stats, err := s.stats(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info("knowledge base loaded",
		"organizations", stats.Organizations,
		"products", stats.Products,
		"roles", stats.Roles,
		"documents", stats.Documents,
	)
	return stats, nil
}

func (s *Service) stats(ctx context.Context) (*model.Stats, error) {
	stats := &model.Stats{}
	var err error

	if stats.Organizations, err = s.repo.Organization().Count(ctx); err != nil {
		return nil, err
	}
	if stats.Products, err = s.repo.Product().Count(ctx); err != nil {
		return nil, err
	}
	if stats.Roles, err = s.repo.Role().Count(ctx); err != nil {
		return nil, err
	}
	if stats.Documents, err = s.repo.Document().Count(ctx); err != nil {
		return nil, err
	}
	if stats.Chunks, err = s.repo.Chunk().Count(ctx); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *Service) loadProducts(ctx context.Context) error {
	for _, p := range s.products {
		if _, err := s.getOrCreateProduct(ctx, p.Name, p.Description); err != nil {
			return goerr.Wrap(err, "failed to create product", goerr.V("name", p.Name))
		}
	}
	return nil
}

func (s *Service) loadOrganizations(ctx context.Context) error {
	files, err := s.readJSONFiles(ctx, s.yearDir("carrier_scorecards", "json"))
	if err != nil {
		return err
	}

	seen := map[string]bool{}
	var carriers []string
	for _, f := range files {
		display, _ := metadataField(f.payload, "carrier_display")
		if display == "" || seen[display] {
			continue
		}
		seen[display] = true
		carriers = append(carriers, display)
	}
	sort.Strings(carriers)

	for _, display := range carriers {
		if _, err := s.getOrCreateOrganization(ctx, display); err != nil {
			return goerr.Wrap(err, "failed to create organization", goerr.V("displayName", display))
		}
	}

	return nil
}

func (s *Service) loadRoles(ctx context.Context) error {
	path := s.yearDir("agents", "BPSer_team.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.From(ctx).Warn("team file not found, skipping roles", "path", path)
			return nil
		}
		return goerr.Wrap(err, "failed to read team file", goerr.V("path", path))
	}

	var team struct {
		Employees []struct {
			Role          string `json:"role"`
			RoleShortName string `json:"role_short_name"`
			Profile       struct {
				Temperature float64 `json:"temperature"`
				Goal        string  `json:"goal"`
				Backstory   string  `json:"backstory"`
			} `json:"profile"`
		} `json:"employees"`
	}
	if err := json.Unmarshal(raw, &team); err != nil {
		return goerr.Wrap(err, "failed to parse team file", goerr.V("path", path))
	}

	for _, employee := range team.Employees {
		if _, err := s.repo.Role().Create(ctx, &model.Role{
			Name:        employee.Role,
			ShortName:   employee.RoleShortName,
			Goal:        employee.Profile.Goal,
			Backstory:   employee.Profile.Backstory,
			Temperature: employee.Profile.Temperature,
		}); err != nil {
			return goerr.Wrap(err, "failed to create role", goerr.V("role", employee.Role))
		}
	}

	return nil
}

func (s *Service) loadCarrierScorecards(ctx context.Context) error {
	files, err := s.readJSONFiles(ctx, s.yearDir("carrier_scorecards", "json"))
	if err != nil {
		return err
	}

	for _, f := range files {
		display, metadata := metadataField(f.payload, "carrier_display")
		product, _ := metadataField(f.payload, "product")
		if display == "" || product == "" {
			continue
		}

		org, err := s.getOrCreateOrganization(ctx, display)
		if err != nil {
			return err
		}
		prod, err := s.getOrCreateProduct(ctx, product, product)
		if err != nil {
			return err
		}

		title := fmt.Sprintf("%s %s Scorecard %d", display, product, s.year)
		if _, err := s.repo.Document().Create(ctx, &model.Document{
			Title:           title,
			Type:            types.DocumentTypeCarrierScorecard,
			Content:         string(f.raw),
			Metadata:        metadata,
			OrganizationIDs: []types.OrganizationID{org.ID},
			ProductIDs:      []types.ProductID{prod.ID},
		}); err != nil {
			return goerr.Wrap(err, "failed to create scorecard document", goerr.V("title", title))
		}
	}

	return nil
}

func (s *Service) loadResearchDocuments(ctx context.Context) error {
	dir := s.yearDir("research")
	paths, err := globSorted(dir, "*.md")
	if err != nil {
		return err
	}
	if paths == nil {
		logging.From(ctx).Warn("research directory not found, skipping", "dir", dir)
		return nil
	}

	for _, path := range paths {
		stem := strings.TrimSuffix(filepath.Base(path), ".md")
		m := researchFileRe.FindStringSubmatch(stem)
		if m == nil {
			continue
		}

		carrier := strings.ReplaceAll(m[1], "_", " ")
		drNumber := m[2]
		topic := strings.ReplaceAll(m[3], "_", " ")
		display := displayCarrierName(carrier)

		raw, err := os.ReadFile(path)
		if err != nil {
			return goerr.Wrap(err, "failed to read research document", goerr.V("path", path))
		}

		org, err := s.getOrCreateOrganization(ctx, display)
		if err != nil {
			return err
		}

		title := fmt.Sprintf("%s - DR%s: %s", display, drNumber, titleWords(topic))
		if _, err := s.repo.Document().Create(ctx, &model.Document{
			Title:   title,
			Type:    types.DocumentTypeResearch,
			Content: string(raw),
			Metadata: map[string]any{
				"carrier":   display,
				"dr_number": drNumber,
				"topic":     topic,
				"year":      s.year,
			},
			OrganizationIDs: []types.OrganizationID{org.ID},
		}); err != nil {
			return goerr.Wrap(err, "failed to create research document", goerr.V("title", title))
		}
	}

	return nil
}

func (s *Service) loadQuestionScorecards(ctx context.Context) error {
	files, err := s.readJSONFiles(ctx, s.yearDir("question_scorecards", "json"))
	if err != nil {
		return err
	}

	for _, f := range files {
		question, metadata := metadataField(f.payload, "question")
		product, _ := metadataField(f.payload, "product")
		if question == "" || product == "" {
			continue
		}

		prod, err := s.getOrCreateProduct(ctx, product, product)
		if err != nil {
			return err
		}

		title := fmt.Sprintf("%s - %s (%d)", question, product, s.year)
		if _, err := s.repo.Document().Create(ctx, &model.Document{
			Title:      title,
			Type:       types.DocumentTypeQuestionScorecard,
			Content:    string(f.raw),
			Metadata:   metadata,
			ProductIDs: []types.ProductID{prod.ID},
		}); err != nil {
			return goerr.Wrap(err, "failed to create question scorecard", goerr.V("title", title))
		}
	}

	return nil
}

func (s *Service) loadProductionHistory(ctx context.Context) error {
	path := s.yearDir("production_history", "json", fmt.Sprintf("production_history_%d.json", s.year))
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.From(ctx).Warn("production history not found, skipping", "path", path)
			return nil
		}
		return goerr.Wrap(err, "failed to read production history", goerr.V("path", path))
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return goerr.Wrap(err, "failed to parse production history", goerr.V("path", path))
	}

	metadata, _ := payload["metadata"].(map[string]any)

	var orgIDs []types.OrganizationID
	if carriers, ok := payload["carriers"].([]any); ok {
		for _, entry := range carriers {
			carrier, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			display, _ := carrier["carrier_display"].(string)
			if display == "" {
				continue
			}
			org, err := s.getOrCreateOrganization(ctx, display)
			if err != nil {
				return err
			}
			orgIDs = append(orgIDs, org.ID)
		}
	}

	title := fmt.Sprintf("Production History %d", s.year)
	if _, err := s.repo.Document().Create(ctx, &model.Document{
		Title:           title,
		Type:            types.DocumentTypeProductionHistory,
		Content:         string(raw),
		Metadata:        metadata,
		OrganizationIDs: orgIDs,
	}); err != nil {
		return goerr.Wrap(err, "failed to create production history document", goerr.V("title", title))
	}

	return nil
}

func (s *Service) getOrCreateOrganization(ctx context.Context, display string) (*model.Organization, error) {
	name := normalizeCarrierName(display)

	existing, err := s.repo.Organization().GetByName(ctx, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up organization", goerr.V("name", name))
	}
	if existing != nil {
		return existing, nil
	}

	return s.repo.Organization().Create(ctx, &model.Organization{
		Name:        name,
		DisplayName: display,
	})
}

func (s *Service) getOrCreateProduct(ctx context.Context, name, description string) (*model.Product, error) {
	candidates, err := s.repo.Product().FindByName(ctx, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up product", goerr.V("name", name))
	}
	for _, candidate := range candidates {
		if candidate.Name == name {
			return candidate, nil
		}
	}

	return s.repo.Product().Create(ctx, &model.Product{
		Name:        name,
		Description: description,
	})
}

type kbFile struct {
	path    string
	raw     []byte
	payload map[string]any
}

// readJSONFiles parses every *.json in dir concurrently, preserving filename
// order in the result. A missing directory yields an empty slice with a
// warning, matching the other optional sections.
func (s *Service) readJSONFiles(ctx context.Context, dir string) ([]*kbFile, error) {
	paths, err := globSorted(dir, "*.json")
	if err != nil {
		return nil, err
	}
	if paths == nil {
		logging.From(ctx).Warn("directory not found, skipping", "dir", dir)
		return nil, nil
	}

	files := make([]*kbFile, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			raw, err := os.ReadFile(path)
			if err != nil {
				return goerr.Wrap(err, "failed to read file", goerr.V("path", path))
			}

			var payload map[string]any
			if err := json.Unmarshal(raw, &payload); err != nil {
				return goerr.Wrap(err, "failed to parse JSON", goerr.V("path", path))
			}

			files[i] = &kbFile{path: path, raw: raw, payload: payload}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return files, nil
}

// globSorted returns nil (no error) when dir does not exist.
func globSorted(dir, pattern string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to stat directory", goerr.V("dir", dir))
	}

	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to glob directory", goerr.V("dir", dir))
	}
	sort.Strings(paths)
	if paths == nil {
		paths = []string{}
	}

	return paths, nil
}

func metadataField(payload map[string]any, key string) (string, map[string]any) {
	metadata, _ := payload["metadata"].(map[string]any)
	if metadata == nil {
		return "", nil
	}
	value, _ := metadata[key].(string)
	return value, metadata
}

// normalizeCarrierName converts a display name to its storage key:
// lowercase, spaces to underscores, "&" spelled out.
func normalizeCarrierName(name string) string {
	normalized := strings.ToLower(name)
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "&", "and")
	return normalized
}

// displayCarrierName maps a filename-derived carrier name to its canonical
// display form. A couple of carriers have spellings that title casing alone
// would mangle.
func displayCarrierName(name string) string {
	switch strings.ToLower(name) {
	case "augusta financial", "augustar financial":
		return "Augusta Financial"
	case "protective life":
		return "Protective Life"
	}
	return titleWords(name)
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
