package catalog

import (
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Service provides the read-only ANSSI referentials used to ground
// prompts and to validate closed vocabularies.
type Service interface {
	// Bundle returns the formatted referential sections for one workshop
	Bundle(kind types.WorkshopKind) Bundle

	// Categories returns the closed list of standard risk source categories
	Categories() []string

	// IsStandardCategory reports whether a category belongs to the catalog
	IsStandardCategory(category string) bool
}

// Bundle carries the prompt-ready referential sections of one workshop.
// Empty sections are omitted from prompts.
type Bundle struct {
	BusinessValues  string
	Assets          string
	FearedEvents    string
	RiskSources     string
	Objectives      string
	Guides          string
}

// RiskSourceEntry is one standard threat actor profile
type RiskSourceEntry struct {
	Code           string   `toml:"code"`
	Label          string   `toml:"label"`
	Description    string   `toml:"description"`
	Motivations    []string `toml:"motivations"`
	Resources      string   `toml:"resources"`
	Sophistication int      `toml:"sophistication"`
}

// Validate checks the entry fields
func (e *RiskSourceEntry) Validate() error {
	if e.Code == "" {
		return goerr.New("risk source entry code is required")
	}
	if e.Label == "" {
		return goerr.New("risk source entry label is required", goerr.V("code", e.Code))
	}
	return nil
}

// AssetKindEntry is one standard supporting asset kind
type AssetKindEntry struct {
	Code        string   `toml:"code"`
	Label       string   `toml:"label"`
	Description string   `toml:"description"`
	Examples    []string `toml:"examples"`
}

// Validate checks the entry fields
func (e *AssetKindEntry) Validate() error {
	if e.Code == "" {
		return goerr.New("asset kind entry code is required")
	}
	if e.Label == "" {
		return goerr.New("asset kind entry label is required", goerr.V("code", e.Code))
	}
	return nil
}

// BusinessValueEntry is one typical business value of the method
type BusinessValueEntry struct {
	Label       string `toml:"label"`
	Description string `toml:"description"`
	Sector      string `toml:"sector"`
}

// Validate checks the entry fields
func (e *BusinessValueEntry) Validate() error {
	if e.Label == "" {
		return goerr.New("business value entry label is required")
	}
	return nil
}

// FearedEventEntry is one typical feared event of the method
type FearedEventEntry struct {
	Label     string `toml:"label"`
	Criterion string `toml:"criterion"`
}

// Validate checks the entry fields
func (e *FearedEventEntry) Validate() error {
	if e.Label == "" {
		return goerr.New("feared event entry label is required")
	}
	if _, err := types.ParseSecurityCriterion(e.Criterion); err != nil {
		return goerr.Wrap(err, "feared event entry criterion", goerr.V("label", e.Label))
	}
	return nil
}

// ObjectiveEntry is one typical targeted objective
type ObjectiveEntry struct {
	Label       string `toml:"label"`
	Description string `toml:"description"`
}

// Validate checks the entry fields
func (e *ObjectiveEntry) Validate() error {
	if e.Label == "" {
		return goerr.New("objective entry label is required")
	}
	return nil
}

// GuideEntry is one methodology guide excerpt, keyed by workshop.
// Workshop COMMON applies to every workshop.
type GuideEntry struct {
	Workshop string `toml:"workshop"`
	Title    string `toml:"title"`
	Excerpt  string `toml:"excerpt"`
}

// GuideWorkshopCommon marks a guide excerpt shared by all workshops
const GuideWorkshopCommon = "COMMON"

// Validate checks the entry fields
func (e *GuideEntry) Validate() error {
	if e.Title == "" {
		return goerr.New("guide entry title is required")
	}
	if e.Workshop != GuideWorkshopCommon {
		if _, err := types.ParseWorkshopKind(e.Workshop); err != nil {
			return goerr.Wrap(err, "guide entry workshop", goerr.V("title", e.Title))
		}
	}
	return nil
}

// Data is the full referential catalog as loaded from TOML
type Data struct {
	RiskSources    []RiskSourceEntry    `toml:"risk_source"`
	AssetKinds     []AssetKindEntry     `toml:"asset_kind"`
	BusinessValues []BusinessValueEntry `toml:"business_value"`
	FearedEvents   []FearedEventEntry   `toml:"feared_event"`
	Objectives     []ObjectiveEntry     `toml:"objective"`
	Guides         []GuideEntry         `toml:"guide"`
}

// Validate checks every entry and rejects duplicate risk source codes
func (d *Data) Validate() error {
	codes := make(map[string]bool)
	for i := range d.RiskSources {
		if err := d.RiskSources[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid risk source entry")
		}
		if codes[d.RiskSources[i].Code] {
			return goerr.New("duplicate risk source entry code", goerr.V("code", d.RiskSources[i].Code))
		}
		codes[d.RiskSources[i].Code] = true
	}
	for i := range d.AssetKinds {
		if err := d.AssetKinds[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid asset kind entry")
		}
	}
	for i := range d.BusinessValues {
		if err := d.BusinessValues[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid business value entry")
		}
	}
	for i := range d.FearedEvents {
		if err := d.FearedEvents[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid feared event entry")
		}
	}
	for i := range d.Objectives {
		if err := d.Objectives[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid objective entry")
		}
	}
	for i := range d.Guides {
		if err := d.Guides[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid guide entry")
		}
	}
	return nil
}
