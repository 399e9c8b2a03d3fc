package models

import (
	"errors"
	"strings"
)

// Factor keys used in InvestmentScore.Factors.
const (
	FactorCapRate      = "cap_rate"
	FactorPricePerSqft = "price_per_sqft"
	FactorUnitDensity  = "unit_density"
	FactorSize         = "property_size"
	FactorPropertyType = "property_type"
)

// FactorOrder is the display order of factors in explanations and reports.
var FactorOrder = []string{
	FactorCapRate,
	FactorPricePerSqft,
	FactorUnitDensity,
	FactorSize,
	FactorPropertyType,
}

// Rating is the star label attached to a rounded overall score.
type Rating struct {
	Label string `json:"label" yaml:"label"`
	Stars int    `json:"stars" yaml:"stars"`
}

// String renders the rating as stars followed by its label, e.g. "★★★☆☆ Good".
func (r Rating) String() string {
	return strings.Repeat("★", r.Stars) + strings.Repeat("☆", 5-r.Stars) + " " + r.Label
}

// Rating labels, best first.
const (
	RatingExcellent = "Excellent"
	RatingVeryGood  = "Very Good"
	RatingGood      = "Good"
	RatingFair      = "Fair"
	RatingPoor      = "Poor"
)

// RatingFor maps a rounded overall score to its rating band.
func RatingFor(score float64) Rating {
	switch {
	case score >= 85:
		return Rating{Label: RatingExcellent, Stars: 5}
	case score >= 70:
		return Rating{Label: RatingVeryGood, Stars: 4}
	case score >= 50:
		return Rating{Label: RatingGood, Stars: 3}
	case score >= 30:
		return Rating{Label: RatingFair, Stars: 2}
	default:
		return Rating{Label: RatingPoor, Stars: 1}
	}
}

// InvestmentScore is the scoring result for one property under one configuration.
//
// OverallScore is nominally 0-100 but is not clamped: a cap rate far above
// target pushes it past 100. Use BoundedScore for a [0,100] presentation value.
type InvestmentScore struct {
	PropertyID   string             `json:"property_id" yaml:"property_id"`
	Address      string             `json:"address,omitempty" yaml:"address,omitempty"`
	OverallScore float64            `json:"overall_score" yaml:"overall_score"`
	Factors      map[string]float64 `json:"factors" yaml:"factors"`
	Rating       Rating             `json:"rating" yaml:"rating"`
	Explanation  string             `json:"explanation" yaml:"explanation"`
}

// BoundedScore returns OverallScore clamped to [0,100] for display.
func (s *InvestmentScore) BoundedScore() float64 {
	if s.OverallScore < 0 {
		return 0
	}
	if s.OverallScore > 100 {
		return 100
	}
	return s.OverallScore
}

// Validate checks that all score fields are valid.
func (s *InvestmentScore) Validate() error {
	if s.PropertyID == "" {
		return errors.New("property ID must not be empty")
	}
	if len(s.Factors) == 0 {
		return errors.New("factors must not be empty")
	}
	for name, v := range s.Factors {
		if v < 0 {
			return errors.New("factor " + name + " must not be negative")
		}
	}
	return nil
}
