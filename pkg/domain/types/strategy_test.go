package types_test

import (
	"testing"

	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestStrategyAdmissible(t *testing.T) {
	tests := []struct {
		band     types.RiskBand
		strategy types.Strategy
		want     bool
	}{
		{types.BandCritical, types.StrategyReduce, true},
		{types.BandCritical, types.StrategyAccept, false},
		{types.BandCritical, types.StrategyTransfer, false},
		{types.BandCritical, types.StrategyAvoid, false},
		{types.BandSignificant, types.StrategyReduce, true},
		{types.BandSignificant, types.StrategyTransfer, true},
		{types.BandSignificant, types.StrategyAccept, false},
		{types.BandSignificant, types.StrategyAvoid, false},
		{types.BandModerate, types.StrategyReduce, true},
		{types.BandModerate, types.StrategyAccept, true},
		{types.BandModerate, types.StrategyTransfer, false},
		{types.BandLow, types.StrategyAccept, true},
		{types.BandLow, types.StrategyReduce, true},
		{types.BandLow, types.StrategyAvoid, true},
		{types.BandLow, types.StrategyTransfer, true},
	}

	for _, tt := range tests {
		t.Run(tt.band.String()+"_"+tt.strategy.String(), func(t *testing.T) {
			if tt.want {
				gt.B(t, tt.strategy.Admissible(tt.band)).True()
			} else {
				gt.B(t, tt.strategy.Admissible(tt.band)).False()
			}
		})
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    types.Strategy
		wantErr bool
	}{
		{"REDUCE", types.StrategyReduce, false},
		{"REDUIRE", types.StrategyReduce, false},
		{"accepter", types.StrategyAccept, false},
		{"Transfer", types.StrategyTransfer, false},
		{"TRANSFERER", types.StrategyTransfer, false},
		{"EVITER", types.StrategyAvoid, false},
		{" avoid ", types.StrategyAvoid, false},
		{"IGNORE", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := types.ParseStrategy(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestParseStepKind(t *testing.T) {
	got, err := types.ParseStepKind("initial_access")
	gt.NoError(t, err)
	gt.Value(t, got).Equal(types.StepInitialAccess)

	_, err = types.ParseStepKind("LATERAL_MOVEMENT")
	gt.Error(t, err)

	_, err = types.ParseStepKind("")
	gt.Error(t, err)
}

func TestParseSecurityCriterion(t *testing.T) {
	tests := []struct {
		input string
		want  types.SecurityCriterion
	}{
		{"CONFIDENTIALITY", types.CriterionConfidentiality},
		{"confidentialite", types.CriterionConfidentiality},
		{"INTEGRITE", types.CriterionIntegrity},
		{"disponibilite", types.CriterionAvailability},
		{"TRACABILITE", types.CriterionTraceability},
	}
	for _, tt := range tests {
		got, err := types.ParseSecurityCriterion(tt.input)
		gt.NoError(t, err)
		gt.Value(t, got).Equal(tt.want)
	}

	_, err := types.ParseSecurityCriterion("SAFETY")
	gt.Error(t, err)
}

func TestParseActionCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    types.ActionCategory
		wantErr bool
	}{
		{"PREVENTIVE", types.ActionPreventive, false},
		{"PREVENTIF", types.ActionPreventive, false},
		{"préventif", types.ActionPreventive, false},
		{"detectif", types.ActionDetective, false},
		{"Detective", types.ActionDetective, false},
		{"CORRECTIF", types.ActionCorrective, false},
		{" corrective ", types.ActionCorrective, false},
		{"CURATIF", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := types.ParseActionCategory(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.Value(t, got).Equal(tt.want)
		})
	}
}
