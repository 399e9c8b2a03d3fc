package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rewired-gh/rentscore/internal/models"
)

var factorLabels = map[string]string{
	models.FactorCapRate:      "Cap rate",
	models.FactorPricePerSqft: "Price per sqft",
	models.FactorUnitDensity:  "Unit density",
	models.FactorSize:         "Property size",
	models.FactorPropertyType: "Property type",
}

// FactorLabel returns the human-readable name of a factor key.
func FactorLabel(key string) string {
	if l, ok := factorLabels[key]; ok {
		return l
	}
	return key
}

// explain renders the multi-line breakdown stored in InvestmentScore.Explanation.
func explain(p models.Property, overall float64, rating models.Rating, factors map[string]float64) string {
	var b strings.Builder

	address := p.Address
	if address == "" {
		address = p.ID
	}
	fmt.Fprintf(&b, "%s\n", address)

	propertyType := p.PropertyType
	if propertyType == "" {
		propertyType = "Unknown type"
	}
	sqft := "unknown sqft"
	if p.SquareFootage > 0 {
		sqft = humanize.Comma(int64(p.SquareFootage)) + " sqft"
	}
	fmt.Fprintf(&b, "  %dbd/%sba | %s | %s\n", p.Bedrooms, formatBaths(p.Bathrooms), sqft, propertyType)

	if p.HasSalePrice() {
		line := "  Last sale: " + Money(*p.LastSalePrice)
		if pps, ok := p.PricePerSqft(); ok {
			line += fmt.Sprintf(" (%s/sqft)", Money(pps))
		}
		b.WriteString(line + "\n")
	}

	fmt.Fprintf(&b, "  Score: %.1f/100 %s\n", overall, rating)
	for _, key := range models.FactorOrder {
		v, ok := factors[key]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "    %-15s %5.1f\n", FactorLabel(key)+":", v)
	}

	return strings.TrimRight(b.String(), "\n")
}

// Money formats a dollar amount without cents, e.g. "$250,000".
func Money(v float64) string {
	return "$" + humanize.Commaf(math.Round(v))
}

func formatBaths(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
