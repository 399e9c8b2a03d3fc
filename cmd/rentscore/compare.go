package main

import (
	"context"

	"github.com/rewired-gh/rentscore/internal/models"
	"github.com/rewired-gh/rentscore/internal/report"
	"github.com/urfave/cli/v3"
)

func compareCommand() *cli.Command {
	return &cli.Command{
		Name:  "compare",
		Usage: "Score one property under several scoring profiles",
		UsageText: `rentscore compare --type Apartment --bedrooms 2 --bathrooms 1 --sqft 1000
   rentscore compare --type House --bedrooms 3 --bathrooms 2 --sqft 1878 --price 270000 --rent 1650 --profile balanced --profile growth`,
		Action: cmdCompare,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "address", Usage: "Property address", Value: "Manual entry"},
			&cli.StringFlag{Name: "type", Usage: "Property type (e.g. Apartment, Condo, House)"},
			&cli.IntFlag{Name: "bedrooms", Usage: "Number of bedrooms"},
			&cli.FloatFlag{Name: "bathrooms", Usage: "Number of bathrooms"},
			&cli.IntFlag{Name: "sqft", Usage: "Living area in square feet (0 if unknown)"},
			&cli.FloatFlag{Name: "price", Usage: "Last sale price (0 if unknown)"},
			&cli.FloatFlag{Name: "rent", Usage: "Monthly rent (0 to estimate from bedrooms)"},
			&cli.StringSliceFlag{
				Name:  "profile",
				Usage: "Profile to score with (can be specified multiple times, default: all profiles)",
			},
			formatFlag(),
		},
	}
}

func cmdCompare(_ context.Context, cmd *cli.Command) error {
	p := models.Property{
		ID:            "manual",
		Address:       cmd.String("address"),
		PropertyType:  cmd.String("type"),
		Bedrooms:      cmd.Int("bedrooms"),
		Bathrooms:     cmd.Float("bathrooms"),
		SquareFootage: cmd.Int("sqft"),
	}
	if price := cmd.Float("price"); price > 0 {
		p.LastSalePrice = models.Float(price)
	}
	if rent := cmd.Float("rent"); rent > 0 {
		p.EstimatedRent = models.Float(rent)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	a, err := newAnalyzer(getState(cmd))
	if err != nil {
		return err
	}

	comparisons, err := a.Compare(p, cmd.StringSlice("profile"))
	if err != nil {
		return err
	}
	return report.RenderComparisons(cmd.Root().Writer, comparisons, cmd.String("format"))
}
