package catalog_test

import (
	"strings"
	"testing"

	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/cybergard/ebiosgard/pkg/service/catalog"
	"github.com/m-mizutani/gt"
)

func TestNew_EmbeddedCatalog(t *testing.T) {
	svc, err := catalog.New()
	gt.NoError(t, err)
	gt.Value(t, svc).NotNil()

	categories := svc.Categories()
	gt.Array(t, categories).Length(10)
	gt.B(t, svc.IsStandardCategory("CYBERCRIMINELS")).True()
	gt.B(t, svc.IsStandardCategory("apt")).True()
	gt.B(t, svc.IsStandardCategory("ALIEN")).False()
}

func TestBundle_PerWorkshopSections(t *testing.T) {
	svc, err := catalog.New()
	gt.NoError(t, err)

	at1 := svc.Bundle(types.WorkshopScoping)
	gt.B(t, at1.BusinessValues != "").True()
	gt.B(t, at1.Assets != "").True()
	gt.B(t, at1.FearedEvents != "").True()
	gt.B(t, at1.RiskSources == "").True()
	gt.B(t, strings.Contains(at1.Guides, "Scoping")).True()

	at2 := svc.Bundle(types.WorkshopRiskSources)
	gt.B(t, at2.RiskSources != "").True()
	gt.B(t, at2.Objectives != "").True()
	gt.B(t, at2.BusinessValues == "").True()

	at3 := svc.Bundle(types.WorkshopStrategic)
	gt.B(t, at3.RiskSources != "").True()
	gt.B(t, at3.Assets != "").True()
	gt.B(t, at3.FearedEvents != "").True()

	at5 := svc.Bundle(types.WorkshopMatrix)
	gt.B(t, at5.RiskSources == "").True()
	gt.B(t, at5.Guides != "").True()
}

func TestBundle_CommonGuideEverywhere(t *testing.T) {
	svc, err := catalog.New()
	gt.NoError(t, err)

	for _, kind := range types.AllWorkshopKinds() {
		bundle := svc.Bundle(kind)
		gt.B(t, strings.Contains(bundle.Guides, "Scales")).True()
	}
}
