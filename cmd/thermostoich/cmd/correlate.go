package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/ThermoStoich/pkg/analysis"
)

func runCorrelate(cmd *cobra.Command, args []string) error {
	cfg, _, res, err := compute(cmd, args[0])
	if err != nil {
		return err
	}
	rt, err := cfg.ReactionType()
	if err != nil {
		return err
	}

	corrs, err := analysis.RateCorrelations(res.Table(rt), res.Lambdas(), cfg.Correlation.VhCS, cfg.Correlation.VhO2)
	if err != nil {
		return err
	}

	fmt.Printf("Rate correlations with lambda_O2 (%s, %d compounds)\n\n", rt, res.Len())
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "vh_cs\tvh_o2\tr_biom\tp_biom\tr_o2\tp_o2\tr_hco3\tp_hco3")
	for _, c := range corrs {
		fmt.Fprintf(tw, "%v\t%v\t%.4f\t%.4g\t%.4f\t%.4g\t%.4f\t%.4g\n", c.VhCS, c.VhO2,
			c.Biomass.R, c.Biomass.P, c.Oxygen.R, c.Oxygen.P, c.Bicarbonate.R, c.Bicarbonate.P)
	}
	return tw.Flush()
}
