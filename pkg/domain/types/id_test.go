package types_test

import (
	"testing"

	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestNewRefCode(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		seq    int
		want   types.RefCode
	}{
		{"first business value", types.PrefixBusinessValue, 1, "VM01"},
		{"ninth asset", types.PrefixSupportingAsset, 9, "BS09"},
		{"two digit", types.PrefixFearedEvent, 42, "ER42"},
		{"past ninety nine", types.PrefixStrategicScenario, 120, "SS120"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := types.NewRefCode(tt.prefix, tt.seq)
			gt.Value(t, got).Equal(tt.want)
			gt.NoError(t, got.Validate())
		})
	}
}

func TestRefCode_Validate(t *testing.T) {
	tests := []struct {
		name    string
		code    types.RefCode
		wantErr bool
	}{
		{"valid VM", "VM01", false},
		{"valid SO", "SO11", false},
		{"valid long sequence", "SR100", false},
		{"empty", "", true},
		{"unknown prefix", "XX01", true},
		{"single digit", "VM1", true},
		{"lowercase", "vm01", true},
		{"trailing garbage", "VM01x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.code.Validate()
			if tt.wantErr {
				gt.Error(t, err)
			} else {
				gt.NoError(t, err)
			}
		})
	}
}

func TestRefCode_PrefixSeq(t *testing.T) {
	code := types.RefCode("SS07")
	gt.Value(t, code.Prefix()).Equal("SS")
	gt.Number(t, code.Seq()).Equal(7)

	bad := types.RefCode("broken")
	gt.Value(t, bad.Prefix()).Equal("")
	gt.Number(t, bad.Seq()).Equal(0)
}

func TestProjectID(t *testing.T) {
	id := types.NewProjectID()
	gt.NoError(t, id.Validate())

	gt.Error(t, types.ProjectID("").Validate())
	gt.Error(t, types.ProjectID("not-a-uuid").Validate())
}
