package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared/strategy"
)

// StrategyRegistry manages strategy registrations
type StrategyRegistry struct {
	mu                   sync.RWMutex
	scoringStrategies    map[string]strategy.CompletenessScoringStrategy
	validationStrategies map[string]strategy.DataPointValidationStrategy
	defaults             map[strategy.StrategyType]string
}

// NewStrategyRegistry creates a new strategy registry
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		scoringStrategies:    make(map[string]strategy.CompletenessScoringStrategy),
		validationStrategies: make(map[string]strategy.DataPointValidationStrategy),
		defaults:             make(map[strategy.StrategyType]string),
	}
}

// RegisterScoringStrategy registers a completeness scoring strategy
func (r *StrategyRegistry) RegisterScoringStrategy(s strategy.CompletenessScoringStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.scoringStrategies[name]; exists {
		return fmt.Errorf("%w: scoring strategy '%s' already registered", shared.ErrAlreadyExists, name)
	}
	r.scoringStrategies[name] = s
	return nil
}

// GetScoringStrategy returns a scoring strategy by name, or the default if name is empty
func (r *StrategyRegistry) GetScoringStrategy(name string) (strategy.CompletenessScoringStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaults[strategy.StrategyTypeScoring]
		if name == "" {
			return nil, fmt.Errorf("%w: no default scoring strategy set", shared.ErrNotFound)
		}
	}

	s, exists := r.scoringStrategies[name]
	if !exists {
		return nil, fmt.Errorf("%w: scoring strategy '%s' not found", shared.ErrNotFound, name)
	}
	return s, nil
}

// GetScoringStrategyOrDefault returns a scoring strategy by name, or the default if not found
func (r *StrategyRegistry) GetScoringStrategyOrDefault(name string) strategy.CompletenessScoringStrategy {
	s, err := r.GetScoringStrategy(name)
	if err != nil {
		s, _ = r.GetScoringStrategy("")
	}
	return s
}

// ListScoringStrategies returns all registered scoring strategy names
func (r *StrategyRegistry) ListScoringStrategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.scoringStrategies))
	for name := range r.scoringStrategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnregisterScoringStrategy removes a scoring strategy
func (r *StrategyRegistry) UnregisterScoringStrategy(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scoringStrategies[name]; !exists {
		return fmt.Errorf("%w: scoring strategy '%s' not found", shared.ErrNotFound, name)
	}
	delete(r.scoringStrategies, name)

	// Clear default if it was this strategy
	if r.defaults[strategy.StrategyTypeScoring] == name {
		delete(r.defaults, strategy.StrategyTypeScoring)
	}
	return nil
}

// RegisterValidationStrategy registers a data point validation strategy
func (r *StrategyRegistry) RegisterValidationStrategy(s strategy.DataPointValidationStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.validationStrategies[name]; exists {
		return fmt.Errorf("%w: validation strategy '%s' already registered", shared.ErrAlreadyExists, name)
	}
	r.validationStrategies[name] = s
	return nil
}

// GetValidationStrategy returns a validation strategy by name, or the default if name is empty
func (r *StrategyRegistry) GetValidationStrategy(name string) (strategy.DataPointValidationStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaults[strategy.StrategyTypeValidation]
		if name == "" {
			return nil, fmt.Errorf("%w: no default validation strategy set", shared.ErrNotFound)
		}
	}

	s, exists := r.validationStrategies[name]
	if !exists {
		return nil, fmt.Errorf("%w: validation strategy '%s' not found", shared.ErrNotFound, name)
	}
	return s, nil
}

// GetValidationStrategyOrDefault returns a validation strategy by name, or the default if not found
func (r *StrategyRegistry) GetValidationStrategyOrDefault(name string) strategy.DataPointValidationStrategy {
	s, err := r.GetValidationStrategy(name)
	if err != nil {
		s, _ = r.GetValidationStrategy("")
	}
	return s
}

// ListValidationStrategies returns all registered validation strategy names
func (r *StrategyRegistry) ListValidationStrategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.validationStrategies))
	for name := range r.validationStrategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnregisterValidationStrategy removes a validation strategy
func (r *StrategyRegistry) UnregisterValidationStrategy(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.validationStrategies[name]; !exists {
		return fmt.Errorf("%w: validation strategy '%s' not found", shared.ErrNotFound, name)
	}
	delete(r.validationStrategies, name)

	if r.defaults[strategy.StrategyTypeValidation] == name {
		delete(r.defaults, strategy.StrategyTypeValidation)
	}
	return nil
}

// SetDefault sets the default strategy for a strategy type
func (r *StrategyRegistry) SetDefault(strategyType strategy.StrategyType, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isRegisteredLocked(strategyType, name) {
		return fmt.Errorf("%w: strategy '%s' of type '%s' not found", shared.ErrNotFound, name, strategyType)
	}

	r.defaults[strategyType] = name
	return nil
}

// GetDefault returns the default strategy name for a strategy type
func (r *StrategyRegistry) GetDefault(strategyType strategy.StrategyType) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaults[strategyType]
}

// HasDefault returns true if a default is set for the strategy type
func (r *StrategyRegistry) HasDefault(strategyType strategy.StrategyType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaults[strategyType] != ""
}

// IsRegistered returns true if a strategy with the given name is registered for the type
func (r *StrategyRegistry) IsRegistered(strategyType strategy.StrategyType, name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isRegisteredLocked(strategyType, name)
}

// isRegisteredLocked checks registration without locking (caller must hold lock)
func (r *StrategyRegistry) isRegisteredLocked(strategyType strategy.StrategyType, name string) bool {
	switch strategyType {
	case strategy.StrategyTypeScoring:
		_, exists := r.scoringStrategies[name]
		return exists
	case strategy.StrategyTypeValidation:
		_, exists := r.validationStrategies[name]
		return exists
	default:
		return false
	}
}

// Stats returns registration counts for each strategy type
func (r *StrategyRegistry) Stats() map[strategy.StrategyType]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[strategy.StrategyType]int{
		strategy.StrategyTypeScoring:    len(r.scoringStrategies),
		strategy.StrategyTypeValidation: len(r.validationStrategies),
	}
}
