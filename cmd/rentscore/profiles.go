package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
)

func profilesCommand() *cli.Command {
	return &cli.Command{
		Name:   "profiles",
		Usage:  "List the configured scoring profiles (* marks the default)",
		Action: cmdProfiles,
	}
}

func cmdProfiles(_ context.Context, cmd *cli.Command) error {
	cfg := getState(cmd).cfg

	tw := tabwriter.NewWriter(cmd.Root().Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROFILE\tCAP\t$/SQFT\tDENSITY\tSIZE\tTYPE\tTARGET CAP\tTARGET $/SQFT")
	for _, name := range cfg.ProfileNames() {
		p := cfg.Scoring.Profiles[name]
		if name == cfg.Scoring.DefaultProfile {
			name += " *"
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.1f%%\t%.0f\n",
			name,
			p.WeightCapRate, p.WeightPricePerSqft, p.WeightUnitDensity, p.WeightSize, p.WeightPropertyType,
			p.TargetCapRate*100, p.TargetPricePerSqft)
	}
	return tw.Flush()
}
