package scoring

import (
	"fmt"
	"math"

	"github.com/rewired-gh/rentscore/internal/logger"
	"github.com/rewired-gh/rentscore/internal/models"
)

// weightSumTolerance absorbs float noise when checking that weights sum to 1.
const weightSumTolerance = 1e-9

// Scorer scores properties under one Config. It holds no mutable state and
// is safe for concurrent use.
type Scorer struct {
	cfg Config
}

// New creates a Scorer after validating cfg.
func New(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	if sum := cfg.WeightSum(); math.Abs(sum-1) > weightSumTolerance {
		logger.Debug("Scoring weights sum to %.3f; overall scores leave the 0-100 scale", sum)
	}
	return &Scorer{cfg: cfg}, nil
}

// Config returns a copy of the scorer's configuration.
func (s *Scorer) Config() Config {
	return s.cfg
}

// Score computes the investment score for p.
//
// monthlyRent, when non-nil, takes precedence over p.EstimatedRent. Without
// a positive sale price the cap-rate and price-per-sqft factors fall back to
// the neutral 50. The overall score is the weighted sum of the unrounded
// factors, rounded to one decimal, and may exceed 100.
func (s *Scorer) Score(p models.Property, monthlyRent *float64) models.InvestmentScore {
	rent := monthlyRent
	if rent == nil {
		rent = p.EstimatedRent
	}

	capRate := neutralScore
	if p.HasSalePrice() {
		capRate = CapRateScore(AnnualIncome(rent, p.Bedrooms), *p.LastSalePrice, s.cfg.TargetCapRate)
	}

	pricePerSqft := neutralScore
	if pps, ok := p.PricePerSqft(); ok {
		pricePerSqft = PricePerSqftScore(pps, s.cfg.TargetPricePerSqft)
	}

	density := UnitDensityScore(p.Bedrooms, p.Bathrooms, p.SquareFootage)
	size := SizeScore(p.SquareFootage, s.cfg.MinSqft, s.cfg.IdealSqft)
	propertyType := PropertyTypeScore(p.PropertyType)

	overall := capRate*s.cfg.WeightCapRate +
		pricePerSqft*s.cfg.WeightPricePerSqft +
		density*s.cfg.WeightUnitDensity +
		size*s.cfg.WeightSize +
		propertyType*s.cfg.WeightPropertyType
	overall = round1(overall)

	factors := map[string]float64{
		models.FactorCapRate:      round1(capRate),
		models.FactorPricePerSqft: round1(pricePerSqft),
		models.FactorUnitDensity:  round1(density),
		models.FactorSize:         round1(size),
		models.FactorPropertyType: round1(propertyType),
	}
	rating := models.RatingFor(overall)

	return models.InvestmentScore{
		PropertyID:   p.ID,
		Address:      p.Address,
		OverallScore: overall,
		Factors:      factors,
		Rating:       rating,
		Explanation:  explain(p, overall, rating, factors),
	}
}

// ScoreProperties scores every property and returns them ranked best first.
func (s *Scorer) ScoreProperties(props []models.Property) []models.InvestmentScore {
	scores := make([]models.InvestmentScore, 0, len(props))
	for _, p := range props {
		scores = append(scores, s.Score(p, nil))
	}
	Rank(scores)
	return scores
}

// ScoreProperties scores props with a one-off Scorer built from cfg.
// The only error is an invalid cfg.
func ScoreProperties(props []models.Property, cfg Config) ([]models.InvestmentScore, error) {
	s, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return s.ScoreProperties(props), nil
}
