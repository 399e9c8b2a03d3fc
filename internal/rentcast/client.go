// Package rentcast provides access to the RentCast property data API.
// It fetches property listings by zip code and long-term rent estimates by address,
// converting API payloads into models.Property records.
//
// The Fetch* methods return errors. Properties and RentEstimate are the lenient
// variants used by the scoring pipeline: any failure is logged and reported as
// "no data" (an empty slice or a nil estimate) so one bad response never stops scoring.
package rentcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rewired-gh/rentscore/internal/logger"
	"github.com/rewired-gh/rentscore/internal/models"
	"golang.org/x/time/rate"
)

// Client provides access to the RentCast API
type Client struct {
	apiBaseURL     string
	apiKey         string
	httpClient     *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryDelayBase time.Duration
}

// ClientConfig holds optional tuning for the client. Zero values select defaults.
type ClientConfig struct {
	MaxRetries        int
	RetryDelayBase    time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Query selects the properties to fetch. Zero-valued filters are not sent.
type Query struct {
	ZipCode       string
	Limit         int
	Bedrooms      int
	Bathrooms     float64
	SquareFootage int
	Price         int
}

// StatusError is returned for non-success HTTP responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code: %d: %s", e.StatusCode, e.Body)
}

// apiProperty is a property record as returned by GET /properties.
type apiProperty struct {
	ID               string                   `json:"id"`
	FormattedAddress string                   `json:"formattedAddress"`
	AddressLine1     string                   `json:"addressLine1"`
	City             string                   `json:"city"`
	State            string                   `json:"state"`
	ZipCode          string                   `json:"zipCode"`
	PropertyType     string                   `json:"propertyType"`
	Bedrooms         float64                  `json:"bedrooms"`
	Bathrooms        float64                  `json:"bathrooms"`
	SquareFootage    float64                  `json:"squareFootage"`
	LastSalePrice    *float64                 `json:"lastSalePrice"`
	LastSaleDate     string                   `json:"lastSaleDate"`
	TaxAssessments   map[string]taxAssessment `json:"taxAssessments"`
	Latitude         *float64                 `json:"latitude"`
	Longitude        *float64                 `json:"longitude"`
}

type taxAssessment struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// apiRentEstimate is the response of GET /avm/rent/long-term.
type apiRentEstimate struct {
	Rent         *float64 `json:"rent"`
	RentRangeLow float64  `json:"rentRangeLow"`
	RentRangeHi  float64  `json:"rentRangeHigh"`
}

// NewClient creates a new RentCast client
func NewClient(apiBaseURL, apiKey string, timeout time.Duration, cfg ClientConfig) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelayBase <= 0 {
		cfg.RetryDelayBase = time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	return &Client{
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		maxRetries:     cfg.MaxRetries,
		retryDelayBase: cfg.RetryDelayBase,
	}
}

// FetchProperties retrieves property records for a zip code.
func (c *Client) FetchProperties(ctx context.Context, q Query) ([]models.Property, error) {
	if q.ZipCode == "" {
		return nil, errors.New("zip code is required")
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}

	params := url.Values{}
	params.Set("zipCode", q.ZipCode)
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.Bedrooms > 0 {
		params.Set("bedrooms", strconv.Itoa(q.Bedrooms))
	}
	if q.Bathrooms > 0 {
		params.Set("bathrooms", strconv.FormatFloat(q.Bathrooms, 'f', -1, 64))
	}
	if q.SquareFootage > 0 {
		params.Set("squareFootage", strconv.Itoa(q.SquareFootage))
	}
	if q.Price > 0 {
		params.Set("price", strconv.Itoa(q.Price))
	}

	body, err := c.doRequest(ctx, c.apiBaseURL+"/properties?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch properties: %w", err)
	}

	var raw []apiProperty
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}

	properties := make([]models.Property, 0, len(raw))
	for _, ap := range raw {
		p := ap.toModel()
		if err := p.Validate(); err != nil {
			logger.Warn("Skipping property %q: %v", ap.ID, err)
			continue
		}
		properties = append(properties, p)
	}

	logger.Debug("Fetched %d properties for zip %s (%d returned by API)", len(properties), q.ZipCode, len(raw))
	return properties, nil
}

// FetchRentEstimate retrieves the long-term monthly rent estimate for an address.
// A nil estimate with a nil error means the API had no rent figure for it.
func (c *Client) FetchRentEstimate(ctx context.Context, address, city, state string) (*float64, error) {
	full := strings.Join(nonEmpty(address, city, state), ", ")
	if full == "" {
		return nil, errors.New("address is required")
	}

	params := url.Values{}
	params.Set("address", full)

	body, err := c.doRequest(ctx, c.apiBaseURL+"/avm/rent/long-term?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rent estimate: %w", err)
	}

	var est apiRentEstimate
	if err := json.Unmarshal(body, &est); err != nil {
		return nil, fmt.Errorf("failed to decode rent estimate: %w", err)
	}
	if est.Rent == nil || *est.Rent <= 0 {
		return nil, nil
	}
	return est.Rent, nil
}

// Properties is the lenient form of FetchProperties: failures yield an empty slice.
func (c *Client) Properties(ctx context.Context, q Query) []models.Property {
	props, err := c.FetchProperties(ctx, q)
	if err != nil {
		logger.Warn("Treating property fetch for zip %s as empty: %v", q.ZipCode, err)
		return []models.Property{}
	}
	return props
}

// RentEstimate is the lenient form of FetchRentEstimate: failures yield nil.
func (c *Client) RentEstimate(ctx context.Context, address, city, state string) *float64 {
	rent, err := c.FetchRentEstimate(ctx, address, city, state)
	if err != nil {
		logger.Warn("Rent estimate unavailable for %s: %v", address, err)
		return nil
	}
	return rent
}

// doRequest performs an HTTP GET with rate limiting and retry logic and returns the body.
// Transport errors and 5xx responses are retried; other non-2xx responses are not.
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelayBase * time.Duration(i)):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Api-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			logger.Debug("Request attempt %d/%d failed: %v", i+1, c.maxRetries, err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 500 {
			lastErr = &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
			logger.Debug("Request attempt %d/%d got server error: %d", i+1, c.maxRetries, resp.StatusCode)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
		}
		if readErr != nil {
			return nil, fmt.Errorf("failed to read response: %w", readErr)
		}

		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// toModel converts an API record, applying defaults for missing fields.
func (ap apiProperty) toModel() models.Property {
	address := ap.FormattedAddress
	if address == "" {
		address = ap.AddressLine1
	}

	p := models.Property{
		ID:            ap.ID,
		Address:       address,
		City:          ap.City,
		State:         ap.State,
		ZipCode:       ap.ZipCode,
		PropertyType:  normalizeType(ap.PropertyType),
		Bedrooms:      int(ap.Bedrooms),
		Bathrooms:     ap.Bathrooms,
		SquareFootage: int(ap.SquareFootage),
		LastSalePrice: ap.LastSalePrice,
		LastSaleDate:  ap.LastSaleDate,
		Latitude:      ap.Latitude,
		Longitude:     ap.Longitude,
	}
	if v, ok := latestAssessment(ap.TaxAssessments); ok {
		p.TaxAssessment = models.Float(v)
	}
	return p
}

// apiTypeAliases maps RentCast property types onto the scoring vocabulary.
var apiTypeAliases = map[string]string{
	"Single Family": models.TypeHouse,
	"Manufactured":  models.TypeMobileHome,
}

func normalizeType(t string) string {
	if alias, ok := apiTypeAliases[t]; ok {
		return alias
	}
	return t
}

// latestAssessment returns the value of the most recent tax assessment year.
func latestAssessment(assessments map[string]taxAssessment) (float64, bool) {
	if len(assessments) == 0 {
		return 0, false
	}
	years := make([]string, 0, len(assessments))
	for y := range assessments {
		years = append(years, y)
	}
	sort.Strings(years)
	return assessments[years[len(years)-1]].Value, true
}

func nonEmpty(parts ...string) []string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
