package scoring

import (
	"sort"

	"github.com/rewired-gh/rentscore/internal/models"
)

// Rank sorts scores in place by OverallScore descending. The sort is stable,
// so equal scores keep their input order.
func Rank(scores []models.InvestmentScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].OverallScore > scores[j].OverallScore
	})
}

// TopK returns at most k scores from the front of a ranked slice.
// k <= 0 returns all of them.
func TopK(scores []models.InvestmentScore, k int) []models.InvestmentScore {
	if k <= 0 || k >= len(scores) {
		return scores
	}
	return scores[:k]
}

// FilterByRange keeps scores with lo <= OverallScore < hi, preserving order.
// hi <= 0 means no upper bound. Returns a non-nil slice.
func FilterByRange(scores []models.InvestmentScore, lo, hi float64) []models.InvestmentScore {
	result := make([]models.InvestmentScore, 0, len(scores))
	for _, s := range scores {
		if s.OverallScore < lo {
			continue
		}
		if hi > 0 && s.OverallScore >= hi {
			continue
		}
		result = append(result, s)
	}
	return result
}

// Summary counts scores per rating band.
type Summary struct {
	Total  int            `json:"total" yaml:"total"`
	Counts map[string]int `json:"counts" yaml:"counts"` // keyed by rating label
}

// Summarize counts how many scores fall in each rating band.
// Every band is present in Counts, even when empty.
func Summarize(scores []models.InvestmentScore) Summary {
	counts := map[string]int{
		models.RatingExcellent: 0,
		models.RatingVeryGood:  0,
		models.RatingGood:      0,
		models.RatingFair:      0,
		models.RatingPoor:      0,
	}
	for _, s := range scores {
		counts[models.RatingFor(s.OverallScore).Label]++
	}
	return Summary{Total: len(scores), Counts: counts}
}
