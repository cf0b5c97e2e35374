package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Strategy is a risk treatment strategy
type Strategy string

const (
	StrategyReduce   Strategy = "REDUCE"
	StrategyAccept   Strategy = "ACCEPT"
	StrategyTransfer Strategy = "TRANSFER"
	StrategyAvoid    Strategy = "AVOID"
)

// AllStrategies returns all valid strategies
func AllStrategies() []Strategy {
	return []Strategy{
		StrategyReduce,
		StrategyAccept,
		StrategyTransfer,
		StrategyAvoid,
	}
}

// IsValid checks if the strategy is one of the known values
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyReduce, StrategyAccept, StrategyTransfer, StrategyAvoid:
		return true
	default:
		return false
	}
}

// String returns the string representation of the strategy
func (s Strategy) String() string {
	return string(s)
}

// ParseStrategy parses a wire value into a strategy, accepting the
// French treatment vocabulary as produced by the generator.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "REDUCE", "REDUIRE", "RÉDUIRE":
		return StrategyReduce, nil
	case "ACCEPT", "ACCEPTER":
		return StrategyAccept, nil
	case "TRANSFER", "TRANSFERER", "TRANSFÉRER":
		return StrategyTransfer, nil
	case "AVOID", "EVITER", "ÉVITER":
		return StrategyAvoid, nil
	default:
		return "", goerr.Wrap(ErrSchemaViolation, "unknown treatment strategy", goerr.V("strategy", s))
	}
}

// admissibleStrategies maps each risk band to the strategies the method
// permits for it. A critical risk can only be reduced; acceptance of a
// significant risk is never admissible.
var admissibleStrategies = map[RiskBand][]Strategy{
	BandCritical:    {StrategyReduce},
	BandSignificant: {StrategyReduce, StrategyTransfer},
	BandModerate:    {StrategyReduce, StrategyAccept},
	BandLow:         {StrategyReduce, StrategyAvoid, StrategyTransfer, StrategyAccept},
}

// AdmissibleStrategies returns the strategies permitted for a band
func AdmissibleStrategies(b RiskBand) []Strategy {
	return admissibleStrategies[b]
}

// Admissible reports whether the strategy is permitted for the band
func (s Strategy) Admissible(b RiskBand) bool {
	for _, a := range admissibleStrategies[b] {
		if s == a {
			return true
		}
	}
	return false
}
