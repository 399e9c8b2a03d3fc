package api

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/rewired-gh/rentscore/internal/analyzer"
	"github.com/rewired-gh/rentscore/internal/models"
	"github.com/rewired-gh/rentscore/internal/rentcast"
	"github.com/rewired-gh/rentscore/internal/scoring"
)

const (
	msgInvalidRequest = "invalid request"
	msgInvalidZip     = "invalid zip code"
	msgInvalidProp    = "invalid property"
)

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ProfilesResponse lists the configured scoring profiles.
type ProfilesResponse struct {
	Default  string                    `json:"default"`
	Profiles map[string]scoring.Config `json:"profiles"`
}

// ZipScoresQuery holds the query parameters of GET /v1/zip/:zip/scores.
type ZipScoresQuery struct {
	Limit         int     `form:"limit" binding:"omitempty,min=1,max=500"`
	Profile       string  `form:"profile"`
	Top           int     `form:"top" binding:"omitempty,min=0"`
	RentEstimates bool    `form:"rent_estimates"`
	Bedrooms      int     `form:"bedrooms" binding:"omitempty,min=0"`
	Bathrooms     float64 `form:"bathrooms" binding:"omitempty,min=0"`
	MinScore      float64 `form:"min_score"`
	MaxScore      float64 `form:"max_score"`
}

// ScoreRequest is the body of POST /v1/score.
type ScoreRequest struct {
	Property    *models.Property `json:"property" binding:"required"`
	MonthlyRent *float64         `json:"monthly_rent"`
	Profile     string           `json:"profile"`
}

// CompareRequest is the body of POST /v1/compare. No profiles means all of them.
type CompareRequest struct {
	Property *models.Property `json:"property" binding:"required"`
	Profiles []string         `json:"profiles"`
}

// Handler handles scoring requests.
type Handler struct {
	analyzer *analyzer.Analyzer
}

// NewHandler creates a new handler.
func NewHandler(a *analyzer.Analyzer) *Handler {
	return &Handler{analyzer: a}
}

// Health reports liveness.
// GET /healthz
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Profiles lists the scoring profiles and their weights.
// GET /v1/profiles
func (h *Handler) Profiles(c *gin.Context) {
	resp := ProfilesResponse{
		Default:  h.analyzer.DefaultProfile(),
		Profiles: make(map[string]scoring.Config),
	}
	for _, name := range h.analyzer.Profiles() {
		cfg, err := h.analyzer.ProfileConfig(name)
		if handleError(c, err) {
			return
		}
		resp.Profiles[name] = cfg
	}
	c.JSON(http.StatusOK, resp)
}

// ZipScores fetches and ranks the properties of a zip code.
// GET /v1/zip/:zip/scores
func (h *Handler) ZipScores(c *gin.Context) {
	zip := c.Param("zip")
	if !zipPattern.MatchString(zip) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidZip})
		return
	}

	var q ZipScoresQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidRequest, Details: err.Error()})
		return
	}

	report, err := h.analyzer.ScoreZip(c.Request.Context(), analyzer.Request{
		Query: rentcast.Query{
			ZipCode:   zip,
			Limit:     q.Limit,
			Bedrooms:  q.Bedrooms,
			Bathrooms: q.Bathrooms,
		},
		Profile:       q.Profile,
		TopK:          q.Top,
		RentEstimates: q.RentEstimates,
		MinScore:      q.MinScore,
		MaxScore:      q.MaxScore,
	})
	if handleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, report)
}

// Score scores a posted property.
// POST /v1/score
func (h *Handler) Score(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidRequest, Details: err.Error()})
		return
	}
	if err := req.Property.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidProp, Details: err.Error()})
		return
	}
	if req.MonthlyRent != nil && *req.MonthlyRent < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidRequest, Details: "monthly_rent must not be negative"})
		return
	}

	score, err := h.analyzer.Score(*req.Property, req.MonthlyRent, req.Profile)
	if handleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, score)
}

// Compare scores a posted property under several profiles.
// POST /v1/compare
func (h *Handler) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidRequest, Details: err.Error()})
		return
	}
	if err := req.Property.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidProp, Details: err.Error()})
		return
	}

	comparisons, err := h.analyzer.Compare(*req.Property, req.Profiles)
	if handleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, comparisons)
}

// handleError maps pipeline errors to HTTP responses.
// Returns true if an error was handled, false otherwise.
func handleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, analyzer.ErrUnknownProfile) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return true
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	return true
}
