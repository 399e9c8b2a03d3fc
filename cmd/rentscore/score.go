package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rewired-gh/rentscore/internal/analyzer"
	"github.com/rewired-gh/rentscore/internal/logger"
	"github.com/rewired-gh/rentscore/internal/rentcast"
	"github.com/rewired-gh/rentscore/internal/report"
	"github.com/rewired-gh/rentscore/internal/scoring"
	"github.com/urfave/cli/v3"
)

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"o"},
		Usage:   "Output format [table, json, yaml]",
		Value:   report.FormatTable,
	}
}

func profileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "profile",
		Aliases: []string{"p"},
		Usage:   "Scoring profile (default: the configured default profile)",
	}
}

func scoreCommand() *cli.Command {
	return &cli.Command{
		Name:      "score",
		Aliases:   []string{"s"},
		Usage:     "Fetch, score and rank the properties of a zip code",
		ArgsUsage: "<zip code>",
		UsageText: `rentscore score 78244
   rentscore score 78244 --bedrooms 3 --top 5 --explain
   rentscore score 78244 --profile conservative --rent-estimates -o json`,
		Action: cmdScore,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Maximum number of properties to fetch", Value: 20},
			&cli.IntFlag{Name: "bedrooms", Usage: "Only fetch properties with this many bedrooms"},
			&cli.FloatFlag{Name: "bathrooms", Usage: "Only fetch properties with this many bathrooms"},
			&cli.IntFlag{Name: "sqft", Usage: "Only fetch properties with this square footage"},
			&cli.IntFlag{Name: "price", Usage: "Only fetch properties at this price"},
			profileFlag(),
			&cli.IntFlag{Name: "top", Usage: "Show only the N best properties (0 shows all)"},
			&cli.BoolFlag{Name: "rent-estimates", Usage: "Look up rent estimates for properties without one (uses API quota)"},
			&cli.FloatFlag{Name: "min-score", Usage: "Drop properties scoring below this value"},
			&cli.FloatFlag{Name: "max-score", Usage: "Drop properties scoring at or above this value (0 means no bound)"},
			formatFlag(),
			&cli.BoolFlag{Name: "explain", Usage: "Print the factor breakdown of every property (table format only)"},
			&cli.BoolFlag{Name: "summary", Usage: "Print the number of properties per rating (table format only)"},
		},
	}
}

func cmdScore(ctx context.Context, cmd *cli.Command) error {
	zip := cmd.Args().First()
	if zip == "" {
		return errors.New("zip code argument is required")
	}

	format, err := report.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	a, err := newAnalyzer(getState(cmd))
	if err != nil {
		return err
	}

	r, err := a.ScoreZip(ctx, analyzer.Request{
		Query: rentcast.Query{
			ZipCode:       zip,
			Limit:         cmd.Int("limit"),
			Bedrooms:      cmd.Int("bedrooms"),
			Bathrooms:     cmd.Float("bathrooms"),
			SquareFootage: cmd.Int("sqft"),
			Price:         cmd.Int("price"),
		},
		Profile:       cmd.String("profile"),
		TopK:          cmd.Int("top"),
		RentEstimates: cmd.Bool("rent-estimates"),
		MinScore:      cmd.Float("min-score"),
		MaxScore:      cmd.Float("max-score"),
	})
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	if err := report.Render(w, r, format); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	if format != report.FormatTable {
		return nil
	}

	if cmd.Bool("summary") {
		fmt.Fprintln(w)
		if err := report.RenderSummary(w, scoring.Summarize(r.Scores)); err != nil {
			return err
		}
	}
	if cmd.Bool("explain") && len(r.Scores) > 0 {
		fmt.Fprintln(w)
		if err := report.RenderExplanations(w, r); err != nil {
			return err
		}
	}

	logger.Debug("Report %s rendered", r.ID)
	return nil
}
