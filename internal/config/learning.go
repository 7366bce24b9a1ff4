package config

import (
	"fmt"
	"time"
)

// LearningConfig tunes the pattern learning engine.
type LearningConfig struct {
	// Threshold is the minimum selection confidence before a success is
	// trusted enough to reinforce its pattern weight.
	Threshold float64 `yaml:"threshold"` // default 0.75

	// SuccessIncrement and FailurePenalty are asymmetric on purpose:
	// a wrong high-confidence selection costs more than a right one earns.
	SuccessIncrement float64 `yaml:"success_increment"` // default 0.1
	FailurePenalty   float64 `yaml:"failure_penalty"`   // default 0.3

	// MinWeight and MaxWeight bound every pattern weight.
	MinWeight float64 `yaml:"min_weight"` // default 0.3
	MaxWeight float64 `yaml:"max_weight"` // default 2.0

	// DecayWindow is the age at which a learned weight has decayed as far
	// toward neutral as it ever will (decay = max(0.5, 1 - age/window)).
	DecayWindow time.Duration `yaml:"decay_window"` // default 720h (30 days)

	// HistoryCap bounds the rolling observation window per signature.
	HistoryCap int `yaml:"history_cap"` // default 1000

	// SimilarityFloor is the minimum keyword overlap before a stored
	// signature can back a suggestion.
	SimilarityFloor float64 `yaml:"similarity_floor"` // default 0.3

	// StorePath, when set, persists pattern weights to a SQLite file.
	// Empty means pure in-memory learning.
	StorePath string `yaml:"store_path"`
}

// DefaultLearning returns the production learning defaults.
func DefaultLearning() LearningConfig {
	return LearningConfig{
		Threshold:        0.75,
		SuccessIncrement: 0.1,
		FailurePenalty:   0.3,
		MinWeight:        0.3,
		MaxWeight:        2.0,
		DecayWindow:      30 * 24 * time.Hour,
		HistoryCap:       1000,
		SimilarityFloor:  0.3,
	}
}

// Validate checks the learning invariants.
func (l *LearningConfig) Validate() error {
	if l.MinWeight <= 0 || l.MinWeight >= l.MaxWeight {
		return fmt.Errorf("weight bounds [%.2f, %.2f] are invalid", l.MinWeight, l.MaxWeight)
	}
	if l.Threshold < 0 || l.Threshold > 1 {
		return fmt.Errorf("threshold %.2f outside [0,1]", l.Threshold)
	}
	if l.SuccessIncrement <= 0 || l.FailurePenalty <= 0 {
		return fmt.Errorf("learning rates must be positive")
	}
	if l.DecayWindow <= 0 {
		return fmt.Errorf("decay_window must be positive")
	}
	if l.HistoryCap <= 0 {
		return fmt.Errorf("history_cap must be positive")
	}
	return nil
}
