package types_test

import (
	"errors"
	"testing"

	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestNewScore(t *testing.T) {
	tests := []struct {
		name       string
		gravity    types.Gravity
		likelihood types.Likelihood
		want       types.Score
		wantErr    bool
	}{
		{"minimum", 1, 1, 1, false},
		{"mixed", 2, 3, 6, false},
		{"maximum", 4, 4, 16, false},
		{"gravity out of range low", 0, 2, 0, true},
		{"gravity out of range high", 5, 2, 0, true},
		{"likelihood out of range low", 2, 0, 0, true},
		{"likelihood out of range high", 2, 5, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.NewScore(tt.gravity, tt.likelihood)
			if tt.wantErr {
				gt.Error(t, err)
				gt.B(t, errors.Is(err, types.ErrInvariantBreach)).True()
				return
			}
			gt.NoError(t, err)
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestBandOf(t *testing.T) {
	tests := []struct {
		score types.Score
		want  types.RiskBand
	}{
		{1, types.BandLow},
		{2, types.BandLow},
		{3, types.BandLow},
		{4, types.BandModerate},
		{6, types.BandModerate},
		{7, types.BandModerate},
		{8, types.BandSignificant},
		{9, types.BandSignificant},
		{11, types.BandSignificant},
		{12, types.BandCritical},
		{16, types.BandCritical},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			got, err := types.BandOf(tt.score)
			gt.NoError(t, err)
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestBandOf_FactorBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		gravity    types.Gravity
		likelihood types.Likelihood
		want       types.RiskBand
	}{
		{"1x3 stays low", 1, 3, types.BandLow},
		{"1x4 crosses to moderate", 1, 4, types.BandModerate},
		{"2x2 moderate", 2, 2, types.BandModerate},
		{"2x4 significant", 2, 4, types.BandSignificant},
		{"3x3 significant", 3, 3, types.BandSignificant},
		{"3x4 critical", 3, 4, types.BandCritical},
		{"4x4 critical", 4, 4, types.BandCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := types.NewScore(tt.gravity, tt.likelihood)
			gt.NoError(t, err)
			band, err := types.BandOf(score)
			gt.NoError(t, err)
			gt.Value(t, band).Equal(tt.want)
		})
	}
}

func TestBandOf_OutOfRange(t *testing.T) {
	for _, s := range []types.Score{0, -1, 17, 100} {
		_, err := types.BandOf(s)
		gt.Error(t, err)
		gt.B(t, errors.Is(err, types.ErrInvariantBreach)).True()
	}
}

func TestGravityValidate(t *testing.T) {
	gt.NoError(t, types.Gravity(1).Validate())
	gt.NoError(t, types.Gravity(4).Validate())

	err := types.Gravity(0).Validate()
	gt.Error(t, err)
	gt.B(t, errors.Is(err, types.ErrSchemaViolation)).True()

	err = types.Gravity(5).Validate()
	gt.Error(t, err)
	gt.B(t, errors.Is(err, types.ErrSchemaViolation)).True()
}

func TestRiskBandColor(t *testing.T) {
	gt.Value(t, types.BandLow.Color()).Equal("#22c55e")
	gt.Value(t, types.BandModerate.Color()).Equal("#eab308")
	gt.Value(t, types.BandSignificant.Color()).Equal("#f97316")
	gt.Value(t, types.BandCritical.Color()).Equal("#ef4444")
}
