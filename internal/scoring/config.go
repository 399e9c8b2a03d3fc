package scoring

import (
	"fmt"
	"strings"
)

// Config is the immutable set of weights and thresholds for one Scorer.
//
// Weights are applied as a literal weighted sum. They are not renormalised,
// so weights summing to 1 keep the overall score on a 0-100 scale.
// MinBedrooms and MinBathrooms are carried for configuration fidelity; no
// factor reads them.
type Config struct {
	WeightCapRate      float64 `mapstructure:"weight_cap_rate" json:"weight_cap_rate" yaml:"weight_cap_rate"`
	WeightPricePerSqft float64 `mapstructure:"weight_price_per_sqft" json:"weight_price_per_sqft" yaml:"weight_price_per_sqft"`
	WeightUnitDensity  float64 `mapstructure:"weight_unit_density" json:"weight_unit_density" yaml:"weight_unit_density"`
	WeightSize         float64 `mapstructure:"weight_size" json:"weight_size" yaml:"weight_size"`
	WeightPropertyType float64 `mapstructure:"weight_property_type" json:"weight_property_type" yaml:"weight_property_type"`

	TargetPricePerSqft float64 `mapstructure:"target_price_per_sqft" json:"target_price_per_sqft" yaml:"target_price_per_sqft"`
	TargetCapRate      float64 `mapstructure:"target_cap_rate" json:"target_cap_rate" yaml:"target_cap_rate"` // fraction, 0.08 = 8%
	MinSqft            float64 `mapstructure:"min_sqft" json:"min_sqft" yaml:"min_sqft"`
	IdealSqft          float64 `mapstructure:"ideal_sqft" json:"ideal_sqft" yaml:"ideal_sqft"`
	MinBedrooms        float64 `mapstructure:"min_bedrooms" json:"min_bedrooms" yaml:"min_bedrooms"`
	MinBathrooms       float64 `mapstructure:"min_bathrooms" json:"min_bathrooms" yaml:"min_bathrooms"`
}

// DefaultConfig returns the balanced investor profile.
func DefaultConfig() Config {
	return Config{
		WeightCapRate:      0.40,
		WeightPricePerSqft: 0.25,
		WeightUnitDensity:  0.20,
		WeightSize:         0.10,
		WeightPropertyType: 0.05,
		TargetPricePerSqft: 200,
		TargetCapRate:      0.08,
		MinSqft:            800,
		IdealSqft:          2000,
		MinBedrooms:        1,
		MinBathrooms:       1,
	}
}

// Validate checks that the configuration keeps every factor well defined.
func (c Config) Validate() error {
	weights := map[string]float64{
		"weight_cap_rate":       c.WeightCapRate,
		"weight_price_per_sqft": c.WeightPricePerSqft,
		"weight_unit_density":   c.WeightUnitDensity,
		"weight_size":           c.WeightSize,
		"weight_property_type":  c.WeightPropertyType,
	}
	for name, w := range weights {
		if w < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if c.TargetPricePerSqft <= 0 {
		return fmt.Errorf("target_price_per_sqft must be positive")
	}
	if c.TargetCapRate <= 0 {
		return fmt.Errorf("target_cap_rate must be positive")
	}
	if c.MinSqft < 0 {
		return fmt.Errorf("min_sqft must not be negative")
	}
	if c.IdealSqft < c.MinSqft {
		return fmt.Errorf("ideal_sqft must be at least min_sqft")
	}
	if c.MinBedrooms < 0 || c.MinBathrooms < 0 {
		return fmt.Errorf("min_bedrooms and min_bathrooms must not be negative")
	}
	return nil
}

// ProfileName normalises a profile name for lookup. Config keys are
// case-insensitive, so names compare in lower case.
func ProfileName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// WeightSum returns the sum of all factor weights.
func (c Config) WeightSum() float64 {
	return c.WeightCapRate + c.WeightPricePerSqft + c.WeightUnitDensity + c.WeightSize + c.WeightPropertyType
}
