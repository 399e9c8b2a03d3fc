package analyzer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rewired-gh/rentscore/internal/cache"
	"github.com/rewired-gh/rentscore/internal/models"
	"github.com/rewired-gh/rentscore/internal/rentcast"
	"github.com/rewired-gh/rentscore/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu        sync.Mutex
	props     []models.Property
	rents     map[string]float64 // keyed by street
	queries   []rentcast.Query
	rentCalls int
}

func (f *fakeProvider) Properties(_ context.Context, q rentcast.Query) []models.Property {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	out := make([]models.Property, len(f.props))
	copy(out, f.props)
	return out
}

func (f *fakeProvider) RentEstimate(_ context.Context, address, _, _ string) *float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rentCalls++
	if rent, ok := f.rents[address]; ok {
		return models.Float(rent)
	}
	return nil
}

func sampleProperties() []models.Property {
	return []models.Property{
		{
			ID:            "apt",
			Address:       "1 Unit Way, San Antonio, TX 78244",
			City:          "San Antonio",
			State:         "TX",
			ZipCode:       "78244",
			PropertyType:  models.TypeApartment,
			Bedrooms:      2,
			Bathrooms:     1,
			SquareFootage: 1000,
		},
		{
			ID:            "house",
			Address:       "5500 Grand Lake Dr, San Antonio, TX 78244",
			City:          "San Antonio",
			State:         "TX",
			ZipCode:       "78244",
			PropertyType:  models.TypeHouse,
			Bedrooms:      2,
			Bathrooms:     1,
			SquareFootage: 1000,
			LastSalePrice: models.Float(200000),
		},
		{
			ID:           "lot",
			Address:      "0 Empty Rd, San Antonio, TX 78244",
			City:         "San Antonio",
			State:        "TX",
			ZipCode:      "78244",
			PropertyType: models.TypeLand,
		},
	}
}

func testProfiles() map[string]scoring.Config {
	growth := scoring.DefaultConfig()
	growth.WeightCapRate = 0.10
	growth.WeightSize = 0.40
	return map[string]scoring.Config{
		"balanced": scoring.DefaultConfig(),
		"growth":   growth,
	}
}

func newAnalyzer(t *testing.T, p Provider, c cache.RentCache) *Analyzer {
	t.Helper()
	a, err := New(p, c, testProfiles(), "balanced", 2)
	require.NoError(t, err)
	return a
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, nil, testProfiles(), "balanced", 1)
	assert.Error(t, err)

	_, err = New(&fakeProvider{}, nil, testProfiles(), "aggressive", 1)
	assert.ErrorIs(t, err, ErrUnknownProfile)

	bad := scoring.DefaultConfig()
	bad.TargetCapRate = 0
	_, err = New(&fakeProvider{}, nil, map[string]scoring.Config{"bad": bad}, "bad", 1)
	assert.Error(t, err)
}

func TestScoreZip(t *testing.T) {
	provider := &fakeProvider{props: sampleProperties()}
	a := newAnalyzer(t, provider, nil)

	report, err := a.ScoreZip(context.Background(), Request{
		Query: rentcast.Query{ZipCode: "78244", Limit: 10},
	})
	require.NoError(t, err)
	require.NoError(t, report.Validate())

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "78244", report.ZipCode)
	assert.Equal(t, "balanced", report.Profile)
	assert.Equal(t, 3, report.Fetched)
	require.Len(t, report.Scores, 3)

	assert.Equal(t, "house", report.Scores[0].PropertyID)
	assert.Equal(t, 103.2, report.Scores[0].Factors[models.FactorCapRate])
	assert.Equal(t, "apt", report.Scores[1].PropertyID)
	assert.Equal(t, 52.0, report.Scores[1].OverallScore)
	assert.Equal(t, "lot", report.Scores[2].PropertyID)

	require.Len(t, provider.queries, 1)
	assert.Equal(t, 10, provider.queries[0].Limit)
	assert.Zero(t, provider.rentCalls)
}

func TestScoreZip_UniqueReportIDs(t *testing.T) {
	a := newAnalyzer(t, &fakeProvider{props: sampleProperties()}, nil)

	r1, err := a.ScoreZip(context.Background(), Request{Query: rentcast.Query{ZipCode: "78244"}})
	require.NoError(t, err)
	r2, err := a.ScoreZip(context.Background(), Request{Query: rentcast.Query{ZipCode: "78244"}})
	require.NoError(t, err)
	assert.NotEqual(t, r1.ID, r2.ID)
}

func TestScoreZip_TopKAndRange(t *testing.T) {
	a := newAnalyzer(t, &fakeProvider{props: sampleProperties()}, nil)

	report, err := a.ScoreZip(context.Background(), Request{
		Query: rentcast.Query{ZipCode: "78244"},
		TopK:  1,
	})
	require.NoError(t, err)
	require.Len(t, report.Scores, 1)
	assert.Equal(t, "house", report.Scores[0].PropertyID)
	assert.Equal(t, 3, report.Fetched)

	report, err = a.ScoreZip(context.Background(), Request{
		Query:    rentcast.Query{ZipCode: "78244"},
		MinScore: 50,
		MaxScore: 70,
	})
	require.NoError(t, err)
	require.Len(t, report.Scores, 1)
	assert.Equal(t, "apt", report.Scores[0].PropertyID)
}

func TestScoreZip_EmptyProvider(t *testing.T) {
	a := newAnalyzer(t, &fakeProvider{}, nil)

	report, err := a.ScoreZip(context.Background(), Request{Query: rentcast.Query{ZipCode: "00000"}})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Fetched)
	assert.Empty(t, report.Scores)
	assert.NoError(t, report.Validate())
}

func TestScoreZip_UnknownProfile(t *testing.T) {
	a := newAnalyzer(t, &fakeProvider{props: sampleProperties()}, nil)

	_, err := a.ScoreZip(context.Background(), Request{
		Query:   rentcast.Query{ZipCode: "78244"},
		Profile: "aggressive",
	})
	assert.True(t, errors.Is(err, ErrUnknownProfile))
}

func TestScoreZip_RentEstimates(t *testing.T) {
	provider := &fakeProvider{
		props: sampleProperties(),
		rents: map[string]float64{"5500 Grand Lake Dr": 2000},
	}
	rentCache := cache.NewMemory(time.Hour, 100)
	a := newAnalyzer(t, provider, rentCache)

	report, err := a.ScoreZip(context.Background(), Request{
		Query:         rentcast.Query{ZipCode: "78244"},
		RentEstimates: true,
	})
	require.NoError(t, err)

	// 24000 / 200000 = 12% yield, 4 points over target.
	assert.Equal(t, "house", report.Scores[0].PropertyID)
	assert.Equal(t, 108.0, report.Scores[0].Factors[models.FactorCapRate])
	assert.Equal(t, 3, provider.rentCalls)

	rent, ok, err := rentCache.Get(context.Background(), cache.Key("5500 Grand Lake Dr", "San Antonio", "TX"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2000.0, rent)

	// The cached estimate is reused; misses are looked up again.
	_, err = a.ScoreZip(context.Background(), Request{
		Query:         rentcast.Query{ZipCode: "78244"},
		RentEstimates: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, provider.rentCalls)
}

func TestScoreZip_KeepsExistingRent(t *testing.T) {
	props := sampleProperties()
	props[1].EstimatedRent = models.Float(1600)
	provider := &fakeProvider{props: props, rents: map[string]float64{"5500 Grand Lake Dr": 9999}}
	a := newAnalyzer(t, provider, nil)

	report, err := a.ScoreZip(context.Background(), Request{
		Query:         rentcast.Query{ZipCode: "78244"},
		RentEstimates: true,
	})
	require.NoError(t, err)

	// 19200 / 200000 = 9.6% yield.
	assert.Equal(t, 103.2, report.Scores[0].Factors[models.FactorCapRate])
	assert.Equal(t, 2, provider.rentCalls)
}

func TestScore(t *testing.T) {
	a := newAnalyzer(t, &fakeProvider{}, nil)
	p := sampleProperties()[1]

	withRent, err := a.Score(p, models.Float(2000), "")
	require.NoError(t, err)
	assert.Equal(t, 108.0, withRent.Factors[models.FactorCapRate])

	_, err = a.Score(p, nil, "aggressive")
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestCompare(t *testing.T) {
	a := newAnalyzer(t, &fakeProvider{}, nil)
	p := sampleProperties()[0]

	all, err := a.Compare(p, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "balanced", all[0].Profile)
	assert.Equal(t, "growth", all[1].Profile)
	assert.Equal(t, 52.0, all[0].Score.OverallScore)
	assert.NotEqual(t, all[0].Score.OverallScore, all[1].Score.OverallScore)

	ordered, err := a.Compare(p, []string{"growth", ""})
	require.NoError(t, err)
	assert.Equal(t, "growth", ordered[0].Profile)
	assert.Equal(t, "balanced", ordered[1].Profile)

	_, err = a.Compare(p, []string{"balanced", "nope"})
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestProfiles(t *testing.T) {
	a := newAnalyzer(t, &fakeProvider{}, nil)
	assert.Equal(t, []string{"balanced", "growth"}, a.Profiles())
	assert.Equal(t, "balanced", a.DefaultProfile())

	cfg, err := a.ProfileConfig("growth")
	require.NoError(t, err)
	assert.Equal(t, 0.40, cfg.WeightSize)
}

func TestProfileNamesAreCaseInsensitive(t *testing.T) {
	profiles := map[string]scoring.Config{"Aggressive": scoring.DefaultConfig()}
	a, err := New(&fakeProvider{props: sampleProperties()}, nil, profiles, "AGGRESSIVE", 1)
	require.NoError(t, err)
	assert.Equal(t, "aggressive", a.DefaultProfile())
	assert.Equal(t, []string{"aggressive"}, a.Profiles())

	report, err := a.ScoreZip(context.Background(), Request{
		Query:   rentcast.Query{ZipCode: "78244"},
		Profile: "Aggressive",
	})
	require.NoError(t, err)
	assert.Equal(t, "aggressive", report.Profile)

	comparisons, err := a.Compare(sampleProperties()[0], []string{" aggressive "})
	require.NoError(t, err)
	assert.Equal(t, 52.0, comparisons[0].Score.OverallScore)
}
