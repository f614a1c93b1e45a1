// Package matcher provides the field comparators and the matching engine.
//
// The engine joins two normalized datasets on the document number and
// classifies every record as one of:
//   - matched: the key exists in both sets and every field is within tolerance
//   - partial: the key exists in both sets and at least one field is not
//   - unmatchedA: the key exists only in dataset A
//   - unmatchedB: the key exists only in dataset B
//
// Comparison rules:
//   - Party names are compared after lower-casing and removing everything
//     except letters and digits
//   - Dates are parsed from several formats and compared within a day tolerance,
//     falling back to string equality when either side cannot be parsed
//   - Amounts and tax are compared within a percentage of the larger magnitude
//
// When dataset B repeats a document number only the last occurrence takes
// part in the join.
//
// Example usage:
//
//	config := matcher.DefaultEngineConfig()
//	config.Comparison.AmountTolerancePercent = 2
//	config.Workers = 4
//
//	engine := matcher.NewEngine(config)
//	results, err := engine.Reconcile(ctx, recordsA, recordsB)
package matcher

import (
	"fmt"
	"runtime"

	"dataset-reconciler/internal/models"
	"dataset-reconciler/pkg/errors"
)

// MaxWorkers caps the number of matching goroutines
const MaxWorkers = 64

// EngineConfig holds the comparison tolerances and execution settings
type EngineConfig struct {
	// Comparison holds the amount and date tolerances
	Comparison models.ComparisonConfig `json:"comparison"`

	// Workers is the number of goroutines classifying dataset A.
	// Values <= 1 run sequentially.
	Workers int `json:"workers"`

	// MinShardSize is the smallest slice of dataset A handed to a worker
	MinShardSize int `json:"min_shard_size"`
}

// DefaultEngineConfig returns the default tolerances with sequential matching
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Comparison:   models.DefaultComparisonConfig(),
		Workers:      1,
		MinShardSize: 256,
	}
}

// StrictEngineConfig returns a configuration that only accepts exact amounts and dates
func StrictEngineConfig() *EngineConfig {
	config := DefaultEngineConfig()
	config.Comparison = models.ComparisonConfig{
		AmountTolerancePercent: 0,
		DateToleranceDays:      0,
	}
	return config
}

// RelaxedEngineConfig returns a configuration with loose tolerances
func RelaxedEngineConfig() *EngineConfig {
	config := DefaultEngineConfig()
	config.Comparison = models.ComparisonConfig{
		AmountTolerancePercent: 10,
		DateToleranceDays:      7,
	}
	return config
}

// ParallelEngineConfig returns the default tolerances with one worker per CPU
func ParallelEngineConfig() *EngineConfig {
	config := DefaultEngineConfig()
	config.Workers = runtime.NumCPU()
	if config.Workers > MaxWorkers {
		config.Workers = MaxWorkers
	}
	return config
}

// PresetConfig returns the named preset: default, strict, relaxed or parallel
func PresetConfig(name string) (*EngineConfig, error) {
	switch name {
	case "", "default":
		return DefaultEngineConfig(), nil
	case "strict":
		return StrictEngineConfig(), nil
	case "relaxed":
		return RelaxedEngineConfig(), nil
	case "parallel":
		return ParallelEngineConfig(), nil
	default:
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "preset", name, nil).
			WithSuggestion("use one of default, strict, relaxed, parallel")
	}
}

// Validate checks if the engine configuration is valid
func (c *EngineConfig) Validate() error {
	if err := c.Comparison.Validate(); err != nil {
		return err
	}

	if c.Workers < 0 || c.Workers > MaxWorkers {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "workers", c.Workers,
			fmt.Errorf("workers must be between 0 and %d", MaxWorkers))
	}

	if c.MinShardSize < 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "min_shard_size", c.MinShardSize,
			fmt.Errorf("min shard size cannot be negative"))
	}

	return nil
}

// Clone creates a copy of the engine configuration
func (c *EngineConfig) Clone() *EngineConfig {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// String returns a human-readable description of the configuration
func (c *EngineConfig) String() string {
	return fmt.Sprintf("EngineConfig{AmountTolerance: %s%%, DateTolerance: %d days, Workers: %d}",
		c.Comparison.AmountTolerance().String(), c.Comparison.DateToleranceDays, c.Workers)
}
