package usecase

import (
	"strings"

	"github.com/cybergard/ebiosgard/pkg/domain/model"
	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// The generator may reference upstream entities by their code (ER03)
// or by their exact label. Resolution always goes through the
// referential context; anything that does not resolve is a referential
// integrity error, never a schema error.

func resolveAsset(rc *model.ReferentialContext, ref string) (types.RefCode, error) {
	ref = strings.TrimSpace(ref)
	if a, ok := rc.SupportingAsset(types.RefCode(ref)); ok {
		return a.Code, nil
	}
	for _, a := range rc.SupportingAssets() {
		if a.Label == ref {
			return a.Code, nil
		}
	}
	return "", goerr.Wrap(types.ErrReferentialIntegrity, "supporting asset reference does not resolve",
		goerr.V("ref", ref))
}

func resolveAssets(rc *model.ReferentialContext, refs []string) ([]types.RefCode, error) {
	codes := make([]types.RefCode, 0, len(refs))
	seen := make(map[types.RefCode]bool, len(refs))
	for _, ref := range refs {
		code, err := resolveAsset(rc, ref)
		if err != nil {
			return nil, err
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes, nil
}

func resolveFearedEvent(rc *model.ReferentialContext, ref string) (*model.FearedEvent, error) {
	ref = strings.TrimSpace(ref)
	if e, ok := rc.FearedEvent(types.RefCode(ref)); ok {
		return e, nil
	}
	for _, e := range rc.FearedEvents() {
		if e.Label == ref {
			return e, nil
		}
	}
	return nil, goerr.Wrap(types.ErrReferentialIntegrity, "feared event reference does not resolve",
		goerr.V("ref", ref))
}

func resolveRiskSource(rc *model.ReferentialContext, ref string) (*model.RiskSource, error) {
	ref = strings.TrimSpace(ref)
	if s, ok := rc.RiskSource(types.RefCode(ref)); ok {
		return s, nil
	}
	for _, s := range rc.RiskSources() {
		if s.Label == ref {
			return s, nil
		}
	}
	return nil, goerr.Wrap(types.ErrReferentialIntegrity, "risk source reference does not resolve",
		goerr.V("ref", ref))
}

func resolveStrategicScenario(rc *model.ReferentialContext, ref string) (*model.StrategicScenario, error) {
	ref = strings.TrimSpace(ref)
	if s, ok := rc.StrategicScenario(types.RefCode(ref)); ok {
		return s, nil
	}
	for _, s := range rc.StrategicScenarios() {
		if s.Title == ref {
			return s, nil
		}
	}
	return nil, goerr.Wrap(types.ErrReferentialIntegrity, "strategic scenario reference does not resolve",
		goerr.V("ref", ref))
}
