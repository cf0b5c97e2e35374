package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

//go:embed data/catalog.toml
var defaultCatalog []byte

// Per-workshop limits on referential entries included in prompts
const (
	maxPromptRiskSources = 10
	maxPromptAssets      = 12
	maxPromptValues      = 10
	maxPromptEvents      = 12
	maxPromptObjectives  = 8
	maxDescription       = 150
)

type service struct {
	data       Data
	categories map[string]bool
}

var _ Service = &service{}

// New loads the embedded default catalog
func New() (Service, error) {
	return load(defaultCatalog)
}

// NewFromFile loads a catalog from a TOML file
func NewFromFile(path string) (Service, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read catalog file", goerr.V("path", path))
	}
	return load(data)
}

func load(raw []byte) (Service, error) {
	var data Data
	if err := toml.Unmarshal(raw, &data); err != nil {
		return nil, goerr.Wrap(err, "failed to parse catalog TOML")
	}
	if err := data.Validate(); err != nil {
		return nil, goerr.Wrap(err, "catalog validation failed")
	}

	categories := make(map[string]bool, len(data.RiskSources))
	for _, sr := range data.RiskSources {
		categories[sr.Code] = true
	}

	return &service{data: data, categories: categories}, nil
}

func (s *service) Categories() []string {
	out := make([]string, 0, len(s.data.RiskSources))
	for _, sr := range s.data.RiskSources {
		out = append(out, sr.Code)
	}
	return out
}

func (s *service) IsStandardCategory(category string) bool {
	return s.categories[strings.ToUpper(strings.TrimSpace(category))]
}

// Bundle assembles the referential sections for one workshop, matching
// the method's guidance: scoping needs value/asset/event references,
// risk sources need actor and objective references, strategic scenarios
// need all three of sources, assets and events, the rest need only the
// methodology excerpts.
func (s *service) Bundle(kind types.WorkshopKind) Bundle {
	b := Bundle{Guides: s.guides(kind)}
	switch kind {
	case types.WorkshopScoping:
		b.BusinessValues = s.businessValues()
		b.Assets = s.assets()
		b.FearedEvents = s.fearedEvents()
	case types.WorkshopRiskSources:
		b.RiskSources = s.riskSources()
		b.Objectives = s.objectives()
	case types.WorkshopStrategic:
		b.RiskSources = s.riskSources()
		b.Assets = s.assets()
		b.FearedEvents = s.fearedEvents()
	}
	return b
}

func truncateDescription(s string) string {
	if len(s) <= maxDescription {
		return s
	}
	return s[:maxDescription] + "..."
}

func (s *service) riskSources() string {
	var sb strings.Builder
	for i, sr := range s.data.RiskSources {
		if i >= maxPromptRiskSources {
			break
		}
		motivations := "N/A"
		if len(sr.Motivations) > 0 {
			n := len(sr.Motivations)
			if n > 3 {
				n = 3
			}
			motivations = strings.Join(sr.Motivations[:n], ", ")
		}
		fmt.Fprintf(&sb, "- %s (%s): %s Motivations: %s\n",
			sr.Label, sr.Code, truncateDescription(sr.Description), motivations)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (s *service) assets() string {
	var sb strings.Builder
	for i, a := range s.data.AssetKinds {
		if i >= maxPromptAssets {
			break
		}
		examples := ""
		if len(a.Examples) > 0 {
			examples = " Examples: " + strings.Join(a.Examples, ", ")
		}
		fmt.Fprintf(&sb, "- %s (%s): %s%s\n", a.Label, a.Code, truncateDescription(a.Description), examples)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (s *service) businessValues() string {
	var sb strings.Builder
	for i, v := range s.data.BusinessValues {
		if i >= maxPromptValues {
			break
		}
		sector := ""
		if v.Sector != "" {
			sector = fmt.Sprintf(" [%s]", v.Sector)
		}
		fmt.Fprintf(&sb, "- %s%s: %s\n", v.Label, sector, truncateDescription(v.Description))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (s *service) fearedEvents() string {
	var sb strings.Builder
	for i, e := range s.data.FearedEvents {
		if i >= maxPromptEvents {
			break
		}
		fmt.Fprintf(&sb, "- %s (%s)\n", e.Label, e.Criterion)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (s *service) objectives() string {
	var sb strings.Builder
	for i, o := range s.data.Objectives {
		if i >= maxPromptObjectives {
			break
		}
		fmt.Fprintf(&sb, "- %s: %s\n", o.Label, truncateDescription(o.Description))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (s *service) guides(kind types.WorkshopKind) string {
	var sb strings.Builder
	for _, g := range s.data.Guides {
		if g.Workshop != string(kind) && g.Workshop != GuideWorkshopCommon {
			continue
		}
		fmt.Fprintf(&sb, "[%s]\n%s\n\n", g.Title, g.Excerpt)
	}
	return strings.TrimRight(sb.String(), "\n")
}
