// Package report renders scoring reports for terminals and files.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/rewired-gh/rentscore/internal/analyzer"
	"github.com/rewired-gh/rentscore/internal/models"
	"github.com/rewired-gh/rentscore/internal/scoring"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ParseFormat validates a format name. Empty selects the table format.
func ParseFormat(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", name)
	}
}

// Render writes report to w in the given format.
func Render(w io.Writer, r models.Report, format string) error {
	format, err := ParseFormat(format)
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, r)
	case FormatYAML:
		return writeYAML(w, r)
	default:
		return writeTable(w, r)
	}
}

// RenderExplanations writes the multi-line explanation of every score, in rank order.
func RenderExplanations(w io.Writer, r models.Report) error {
	for i, s := range r.Scores {
		if _, err := fmt.Fprintf(w, "#%d %s\n\n", i+1, s.Explanation); err != nil {
			return err
		}
	}
	return nil
}

// RenderSummary writes the number of scores per rating band, best band first.
func RenderSummary(w io.Writer, summary scoring.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "RATING\tCOUNT\n")
	for _, label := range ratingOrder {
		fmt.Fprintf(tw, "%s\t%d\n", label, summary.Counts[label])
	}
	fmt.Fprintf(tw, "Total\t%d\n", summary.Total)
	return tw.Flush()
}

var ratingOrder = []string{
	models.RatingExcellent,
	models.RatingVeryGood,
	models.RatingGood,
	models.RatingFair,
	models.RatingPoor,
}

// RenderComparisons writes one property's scores under several profiles.
func RenderComparisons(w io.Writer, comparisons []analyzer.Comparison, format string) error {
	format, err := ParseFormat(format)
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, comparisons)
	case FormatYAML:
		return writeYAML(w, comparisons)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROFILE\tSCORE\tRATING\t"+factorHeader())
	for _, c := range comparisons {
		fmt.Fprintf(tw, "%s\t%.1f\t%s\t%s\n", c.Profile, c.Score.OverallScore, c.Score.Rating, factorCells(c.Score))
	}
	return tw.Flush()
}

func writeTable(w io.Writer, r models.Report) error {
	fmt.Fprintf(w, "Zip %s | profile %s | %d of %d properties | %s\n\n",
		orDash(r.ZipCode), r.Profile, len(r.Scores), r.Fetched, humanize.Time(r.GeneratedAt))

	if len(r.Scores) == 0 {
		_, err := fmt.Fprintln(w, "No properties to show.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tRATING\t"+factorHeader()+"\tADDRESS")
	for i, s := range r.Scores {
		fmt.Fprintf(tw, "%d\t%.1f\t%s\t%s\t%s\n", i+1, s.OverallScore, s.Rating, factorCells(s), orDash(s.Address))
	}
	return tw.Flush()
}

var factorColumns = []struct {
	key    string
	header string
}{
	{models.FactorCapRate, "CAP"},
	{models.FactorPricePerSqft, "$/SQFT"},
	{models.FactorUnitDensity, "DENSITY"},
	{models.FactorSize, "SIZE"},
	{models.FactorPropertyType, "TYPE"},
}

func factorHeader() string {
	headers := make([]string, len(factorColumns))
	for i, c := range factorColumns {
		headers[i] = c.header
	}
	return strings.Join(headers, "\t")
}

func factorCells(s models.InvestmentScore) string {
	cells := make([]string, len(factorColumns))
	for i, c := range factorColumns {
		if v, ok := s.Factors[c.key]; ok {
			cells[i] = fmt.Sprintf("%.1f", v)
		} else {
			cells[i] = "-"
		}
	}
	return strings.Join(cells, "\t")
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
