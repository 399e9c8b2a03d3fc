package models

import (
	"errors"
	"time"
)

// Report is one ranked scoring run over a set of properties, e.g. a zip code.
type Report struct {
	ID          string            `json:"id" yaml:"id"`
	ZipCode     string            `json:"zip_code,omitempty" yaml:"zip_code,omitempty"`
	Profile     string            `json:"profile" yaml:"profile"`
	Fetched     int               `json:"fetched" yaml:"fetched"` // properties returned by the provider
	Scores      []InvestmentScore `json:"scores" yaml:"scores"`   // ranked, best first
	GeneratedAt time.Time         `json:"generated_at" yaml:"generated_at"`
}

// Validate checks that all report fields are valid.
func (r *Report) Validate() error {
	if r.ID == "" {
		return errors.New("report ID must not be empty")
	}
	if r.Profile == "" {
		return errors.New("profile must not be empty")
	}
	if len(r.Scores) > r.Fetched {
		return errors.New("report cannot hold more scores than fetched properties")
	}
	for i := 1; i < len(r.Scores); i++ {
		if r.Scores[i].OverallScore > r.Scores[i-1].OverallScore {
			return errors.New("scores must be ordered by overall score descending")
		}
	}
	if r.GeneratedAt.After(time.Now()) {
		return errors.New("generated at must not be in the future")
	}
	return nil
}
