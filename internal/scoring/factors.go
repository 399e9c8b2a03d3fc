// Package scoring turns property listings into rental investment scores.
//
// Each property is scored on five factors, each nominally in [0,100]:
//
//	cap_rate        annual rent / last sale price against a target yield
//	price_per_sqft  last sale price per square foot against a target price
//	unit_density    (bedrooms + bathrooms) per 100 sqft against 0.35
//	property_size   square footage between a minimum and an ideal size
//	property_type   fixed lookup by listing type
//
// The overall score is the literal weighted sum of the factors. It is not
// clamped: cap rates above target earn 2 points per excess percentage point,
// so strong yields can push both the factor and the overall score past 100.
//
// Use Rank to order scored properties best first.
package scoring

import "math"

const (
	// neutralScore stands in for factors whose inputs are missing.
	neutralScore = 50.0

	// perBedroomMonthlyRent approximates rent when no estimate is available.
	perBedroomMonthlyRent = 800.0

	// targetUnitDensity is the ideal bedrooms+bathrooms per 100 sqft.
	targetUnitDensity = 0.35

	// maxDensityRatio caps the density ratio before scoring.
	maxDensityRatio = 1.5

	// undersizedScore is the flat score for properties below the minimum size.
	undersizedScore = 20.0
)

// propertyTypeScores is matched case-sensitively against the listing type.
var propertyTypeScores = map[string]float64{
	"Apartment":    95,
	"Multi-Family": 95,
	"Condo":        90,
	"Townhouse":    85,
	"Mobile Home":  75,
	"House":        70,
	"Commercial":   60,
	"Land":         40,
}

// AnnualIncome returns yearly rental income. A known monthly rent is
// annualised; otherwise bedrooms × 800 × 12 is used as a rough proxy.
func AnnualIncome(monthlyRent *float64, bedrooms int) float64 {
	if monthlyRent != nil {
		return *monthlyRent * 12
	}
	return float64(bedrooms) * perBedroomMonthlyRent * 12
}

// CapRateScore scores annual income over price against targetCapRate (a fraction).
// Up to the target the score rises linearly to 100. Above it the score is
// 100 + 2 × excess percentage points with no upper bound.
// price must be positive; callers use the neutral score otherwise.
func CapRateScore(annualIncome, price, targetCapRate float64) float64 {
	ratePct := annualIncome / price * 100
	targetPct := targetCapRate * 100

	if ratePct < 0 {
		return 0
	}
	if ratePct <= targetPct {
		return ratePct / targetPct * 100
	}
	excessPct := ratePct - targetPct
	return 100 + excessPct*2
}

// PricePerSqftScore scores a unit price against target. Cheaper than target
// is capped at 100; pricier decays as target/price.
func PricePerSqftScore(pricePerSqft, target float64) float64 {
	if pricePerSqft <= target {
		ratio := pricePerSqft / target
		return math.Min(100, ratio*100)
	}
	ratio := target / pricePerSqft
	return math.Max(0, ratio*100)
}

// UnitDensityScore scores bedrooms+bathrooms per 100 sqft. Unknown size scores 0.
func UnitDensityScore(bedrooms int, bathrooms float64, sqft int) float64 {
	if sqft == 0 {
		return 0
	}

	unitsPer100 := (float64(bedrooms) + bathrooms) / float64(sqft) * 100
	if unitsPer100 == 0 {
		return 0
	}

	ratio := math.Min(unitsPer100/targetUnitDensity, maxDensityRatio)
	if ratio <= maxDensityRatio {
		return ratio / maxDensityRatio * 100
	}
	// Unreachable: ratio is capped above. Left inert until the decay above
	// 1.5× target density is defined.
	return math.Max(0, 100-(ratio-maxDensityRatio)*100)
}

// SizeScore scores square footage: 20 below minSqft, 100 at or above
// idealSqft, linear in between.
func SizeScore(sqft int, minSqft, idealSqft float64) float64 {
	size := float64(sqft)
	if size < minSqft {
		return undersizedScore
	}
	if size >= idealSqft {
		return 100
	}
	return undersizedScore + (size-minSqft)/(idealSqft-minSqft)*(100-undersizedScore)
}

// PropertyTypeScore looks up the listing type. Unknown types score 50.
func PropertyTypeScore(propertyType string) float64 {
	if s, ok := propertyTypeScores[propertyType]; ok {
		return s
	}
	return neutralScore
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
