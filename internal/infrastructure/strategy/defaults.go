package strategy

import (
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared/strategy"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/strategy/scoring"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/strategy/validation"
)

// NewRegistryWithDefaults creates a new registry with the built-in strategies
// registered. The weighted scorer and the standard validator become the
// defaults; organizations can select another registered strategy by name in
// their configuration.
func NewRegistryWithDefaults() (*StrategyRegistry, error) {
	r := NewStrategyRegistry()

	// Register scoring strategies
	weighted := scoring.NewWeightedScoringStrategy()
	if err := r.RegisterScoringStrategy(weighted); err != nil {
		return nil, err
	}

	strict := scoring.NewStrictScoringStrategy()
	if err := r.RegisterScoringStrategy(strict); err != nil {
		return nil, err
	}

	// Register validation strategies
	standardValidator := validation.NewStandardDataPointValidator()
	if err := r.RegisterValidationStrategy(standardValidator); err != nil {
		return nil, err
	}

	// Set defaults
	if err := r.SetDefault(strategy.StrategyTypeScoring, weighted.Name()); err != nil {
		return nil, err
	}
	if err := r.SetDefault(strategy.StrategyTypeValidation, standardValidator.Name()); err != nil {
		return nil, err
	}

	return r, nil
}
