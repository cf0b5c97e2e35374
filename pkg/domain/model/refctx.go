package model

import (
	"sort"

	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// ReferentialContext is the read-only index of one project's validated
// entities, keyed by reference code. Each workshop receives the context
// built from the committed state of its predecessors and resolves every
// cross-reference against it. A context never mixes projects and is
// not mutated after construction; newly validated entities only become
// visible through the next stage's context.
type ReferentialContext struct {
	projectID      types.ProjectID
	businessValues map[types.RefCode]*BusinessValue
	assets         map[types.RefCode]*SupportingAsset
	fearedEvents   map[types.RefCode]*FearedEvent
	riskSources    map[types.RefCode]*RiskSource
	strategic      map[types.RefCode]*StrategicScenario
	operational    map[types.RefCode]*OperationalScenario
}

// NewReferentialContext creates an empty context for one project
func NewReferentialContext(projectID types.ProjectID) *ReferentialContext {
	return &ReferentialContext{
		projectID:      projectID,
		businessValues: map[types.RefCode]*BusinessValue{},
		assets:         map[types.RefCode]*SupportingAsset{},
		fearedEvents:   map[types.RefCode]*FearedEvent{},
		riskSources:    map[types.RefCode]*RiskSource{},
		strategic:      map[types.RefCode]*StrategicScenario{},
		operational:    map[types.RefCode]*OperationalScenario{},
	}
}

// ProjectID returns the owning project of the context
func (c *ReferentialContext) ProjectID() types.ProjectID {
	return c.projectID
}

func (c *ReferentialContext) guard(projectID types.ProjectID, code types.RefCode) error {
	if projectID != c.projectID {
		return goerr.Wrap(types.ErrReferentialIntegrity, "entity belongs to another project",
			goerr.V("project_id", c.projectID), goerr.V("entity_project_id", projectID), goerr.V("code", code))
	}
	return nil
}

// AddBusinessValue indexes a committed business value
func (c *ReferentialContext) AddBusinessValue(v *BusinessValue) error {
	if err := c.guard(v.ProjectID, v.Code); err != nil {
		return err
	}
	c.businessValues[v.Code] = v
	return nil
}

// AddSupportingAsset indexes a committed supporting asset
func (c *ReferentialContext) AddSupportingAsset(a *SupportingAsset) error {
	if err := c.guard(a.ProjectID, a.Code); err != nil {
		return err
	}
	c.assets[a.Code] = a
	return nil
}

// AddFearedEvent indexes a committed feared event
func (c *ReferentialContext) AddFearedEvent(e *FearedEvent) error {
	if err := c.guard(e.ProjectID, e.Code); err != nil {
		return err
	}
	c.fearedEvents[e.Code] = e
	return nil
}

// AddRiskSource indexes a committed risk source
func (c *ReferentialContext) AddRiskSource(s *RiskSource) error {
	if err := c.guard(s.ProjectID, s.Code); err != nil {
		return err
	}
	c.riskSources[s.Code] = s
	return nil
}

// AddStrategicScenario indexes a committed strategic scenario
func (c *ReferentialContext) AddStrategicScenario(s *StrategicScenario) error {
	if err := c.guard(s.ProjectID, s.Code); err != nil {
		return err
	}
	c.strategic[s.Code] = s
	return nil
}

// AddOperationalScenario indexes a committed operational scenario
func (c *ReferentialContext) AddOperationalScenario(o *OperationalScenario) error {
	if err := c.guard(o.ProjectID, o.Code); err != nil {
		return err
	}
	c.operational[o.Code] = o
	return nil
}

// BusinessValue resolves a business value code
func (c *ReferentialContext) BusinessValue(code types.RefCode) (*BusinessValue, bool) {
	v, ok := c.businessValues[code]
	return v, ok
}

// SupportingAsset resolves a supporting asset code
func (c *ReferentialContext) SupportingAsset(code types.RefCode) (*SupportingAsset, bool) {
	a, ok := c.assets[code]
	return a, ok
}

// FearedEvent resolves a feared event code
func (c *ReferentialContext) FearedEvent(code types.RefCode) (*FearedEvent, bool) {
	e, ok := c.fearedEvents[code]
	return e, ok
}

// RiskSource resolves a risk source code
func (c *ReferentialContext) RiskSource(code types.RefCode) (*RiskSource, bool) {
	s, ok := c.riskSources[code]
	return s, ok
}

// StrategicScenario resolves a strategic scenario code
func (c *ReferentialContext) StrategicScenario(code types.RefCode) (*StrategicScenario, bool) {
	s, ok := c.strategic[code]
	return s, ok
}

// OperationalScenario resolves an operational scenario code
func (c *ReferentialContext) OperationalScenario(code types.RefCode) (*OperationalScenario, bool) {
	o, ok := c.operational[code]
	return o, ok
}

// StrategicScenarios returns all indexed strategic scenarios in code order
func (c *ReferentialContext) StrategicScenarios() []*StrategicScenario {
	out := make([]*StrategicScenario, 0, len(c.strategic))
	for _, s := range c.strategic {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code.Seq() < out[j].Code.Seq() })
	return out
}

// OperationalScenarios returns all indexed operational scenarios in code order
func (c *ReferentialContext) OperationalScenarios() []*OperationalScenario {
	out := make([]*OperationalScenario, 0, len(c.operational))
	for _, o := range c.operational {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code.Seq() < out[j].Code.Seq() })
	return out
}

// RiskSources returns all indexed risk sources in code order
func (c *ReferentialContext) RiskSources() []*RiskSource {
	out := make([]*RiskSource, 0, len(c.riskSources))
	for _, s := range c.riskSources {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code.Seq() < out[j].Code.Seq() })
	return out
}

// FearedEvents returns all indexed feared events in code order
func (c *ReferentialContext) FearedEvents() []*FearedEvent {
	out := make([]*FearedEvent, 0, len(c.fearedEvents))
	for _, e := range c.fearedEvents {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code.Seq() < out[j].Code.Seq() })
	return out
}

// SupportingAssets returns all indexed supporting assets in code order
func (c *ReferentialContext) SupportingAssets() []*SupportingAsset {
	out := make([]*SupportingAsset, 0, len(c.assets))
	for _, a := range c.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code.Seq() < out[j].Code.Seq() })
	return out
}

// BusinessValues returns all indexed business values in code order
func (c *ReferentialContext) BusinessValues() []*BusinessValue {
	out := make([]*BusinessValue, 0, len(c.businessValues))
	for _, v := range c.businessValues {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code.Seq() < out[j].Code.Seq() })
	return out
}
