// Package analyzer runs the end-to-end scoring pipeline: fetch properties for a
// zip code, optionally fill in missing rents from rent estimates, score them under
// a named profile and return a ranked report.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rewired-gh/rentscore/internal/cache"
	"github.com/rewired-gh/rentscore/internal/logger"
	"github.com/rewired-gh/rentscore/internal/models"
	"github.com/rewired-gh/rentscore/internal/rentcast"
	"github.com/rewired-gh/rentscore/internal/scoring"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownProfile is returned when a request names a profile that is not configured.
var ErrUnknownProfile = errors.New("unknown scoring profile")

// Provider supplies property records and rent estimates. Failures are reported
// as no data, matching the lenient methods of rentcast.Client.
type Provider interface {
	Properties(ctx context.Context, q rentcast.Query) []models.Property
	RentEstimate(ctx context.Context, address, city, state string) *float64
}

// Request describes one zip code scoring run.
type Request struct {
	Query         rentcast.Query
	Profile       string // empty selects the default profile
	TopK          int    // <= 0 keeps every score
	RentEstimates bool
	MinScore      float64
	MaxScore      float64 // <= 0 means no upper bound
}

// Comparison is one property scored under one profile.
type Comparison struct {
	Profile string                 `json:"profile" yaml:"profile"`
	Score   models.InvestmentScore `json:"score" yaml:"score"`
}

// Analyzer wires a provider, an optional rent cache and the configured profiles.
type Analyzer struct {
	provider       Provider
	cache          cache.RentCache
	scorers        map[string]*scoring.Scorer
	defaultProfile string
	concurrency    int
	now            func() time.Time
}

// New creates an Analyzer. rentCache may be nil. Every profile is validated up front.
func New(provider Provider, rentCache cache.RentCache, profiles map[string]scoring.Config, defaultProfile string, concurrency int) (*Analyzer, error) {
	if provider == nil {
		return nil, errors.New("provider is required")
	}
	if concurrency < 1 {
		concurrency = 1
	}

	scorers := make(map[string]*scoring.Scorer, len(profiles))
	for name, cfg := range profiles {
		s, err := scoring.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
		scorers[scoring.ProfileName(name)] = s
	}
	defaultProfile = scoring.ProfileName(defaultProfile)
	if _, ok := scorers[defaultProfile]; !ok {
		return nil, fmt.Errorf("%w: default %q", ErrUnknownProfile, defaultProfile)
	}

	return &Analyzer{
		provider:       provider,
		cache:          rentCache,
		scorers:        scorers,
		defaultProfile: defaultProfile,
		concurrency:    concurrency,
		now:            time.Now,
	}, nil
}

// Profiles returns the configured profile names in sorted order.
func (a *Analyzer) Profiles() []string {
	names := make([]string, 0, len(a.scorers))
	for name := range a.scorers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultProfile returns the name used when a request leaves the profile empty.
func (a *Analyzer) DefaultProfile() string {
	return a.defaultProfile
}

// ProfileConfig returns the scoring configuration of a profile.
func (a *Analyzer) ProfileConfig(name string) (scoring.Config, error) {
	s, _, err := a.scorer(name)
	if err != nil {
		return scoring.Config{}, err
	}
	return s.Config(), nil
}

func (a *Analyzer) scorer(name string) (*scoring.Scorer, string, error) {
	name = scoring.ProfileName(name)
	if name == "" {
		name = a.defaultProfile
	}
	s, ok := a.scorers[name]
	if !ok {
		return nil, name, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return s, name, nil
}

// ScoreZip fetches, scores and ranks the properties of one zip code.
// Provider failures produce an empty report, not an error.
func (a *Analyzer) ScoreZip(ctx context.Context, req Request) (models.Report, error) {
	s, profile, err := a.scorer(req.Profile)
	if err != nil {
		return models.Report{}, err
	}

	props := a.provider.Properties(ctx, req.Query)
	logger.Info("Fetched %d properties for zip %s", len(props), req.Query.ZipCode)

	if req.RentEstimates {
		if err := a.enrichRents(ctx, props); err != nil {
			return models.Report{}, err
		}
	}

	scores := s.ScoreProperties(props)
	scores = scoring.FilterByRange(scores, req.MinScore, req.MaxScore)
	scores = scoring.TopK(scores, req.TopK)

	report := models.Report{
		ID:          uuid.NewString(),
		ZipCode:     req.Query.ZipCode,
		Profile:     profile,
		Fetched:     len(props),
		Scores:      scores,
		GeneratedAt: a.now(),
	}
	logger.Debug("Report %s: %d of %d properties kept (profile %s)", report.ID, len(scores), len(props), profile)
	return report, nil
}

// Score scores a single property under a profile.
func (a *Analyzer) Score(p models.Property, monthlyRent *float64, profile string) (models.InvestmentScore, error) {
	s, _, err := a.scorer(profile)
	if err != nil {
		return models.InvestmentScore{}, err
	}
	return s.Score(p, monthlyRent), nil
}

// Compare scores one property under each named profile, in the order given.
// No names means every configured profile.
func (a *Analyzer) Compare(p models.Property, profiles []string) ([]Comparison, error) {
	if len(profiles) == 0 {
		profiles = a.Profiles()
	}

	out := make([]Comparison, 0, len(profiles))
	for _, name := range profiles {
		s, resolved, err := a.scorer(name)
		if err != nil {
			return nil, err
		}
		out = append(out, Comparison{Profile: resolved, Score: s.Score(p, nil)})
	}
	return out, nil
}

// enrichRents fills EstimatedRent on properties that lack one. Lookups run
// concurrently, bounded by the configured concurrency, and go to the cache first.
func (a *Analyzer) enrichRents(ctx context.Context, props []models.Property) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i := range props {
		if props[i].EstimatedRent != nil {
			continue
		}
		g.Go(func() error {
			props[i].EstimatedRent = a.lookupRent(gctx, props[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (a *Analyzer) lookupRent(ctx context.Context, p models.Property) *float64 {
	key := cache.Key(p.Street(), p.City, p.State)

	if a.cache != nil {
		rent, ok, err := a.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("Rent cache read failed for %s: %v", p.Address, err)
		} else if ok {
			return models.Float(rent)
		}
	}

	rent := a.provider.RentEstimate(ctx, p.Street(), p.City, p.State)
	if rent == nil {
		return nil
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, key, *rent); err != nil {
			logger.Warn("Rent cache write failed for %s: %v", p.Address, err)
		}
	}
	return rent
}
