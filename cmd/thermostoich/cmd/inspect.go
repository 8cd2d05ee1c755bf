package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/ThermoStoich/pkg/core"
	"github.com/ChrisMcGann/ThermoStoich/pkg/fticr"
)

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]

	tbl, err := readTable(path)
	if err != nil {
		return err
	}

	fmt.Printf("Validating %s\n", path)
	fmt.Printf("  Rows:    %s\n", humanize.Comma(int64(tbl.Len())))
	fmt.Printf("  Columns: %d\n", len(tbl.Columns))

	if err := fticr.ValidateSchema(tbl); err != nil {
		var se *fticr.SchemaError
		if errors.As(err, &se) {
			fmt.Printf("  Missing: %v\n", se.Missing)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	for _, col := range []string{core.ColumnC13, core.ColumnNa} {
		if !tbl.HasColumn(col) {
			fmt.Fprintf(os.Stderr, "Warning: no %s column, rows are not filtered on it\n", col)
		}
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ds, err := fticr.NewDataset(tbl, logger)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	report := ds.FilterReport()
	fmt.Printf("  Duplicates: %s\n", humanize.Comma(int64(ds.NumDuplicates())))
	fmt.Printf("  Invalid:    %s\n", humanize.Comma(int64(report.Invalid)))
	fmt.Printf("  Unassigned: %s\n", humanize.Comma(int64(report.Unassigned)))
	fmt.Printf("  Isotopes:   %s\n", humanize.Comma(int64(report.Isotopes)))
	fmt.Printf("  Adducts:    %s\n", humanize.Comma(int64(report.Adducts)))
	fmt.Printf("  Compounds:  %s\n", humanize.Comma(int64(ds.NumCompounds())))
	fmt.Println("Validation passed")

	return nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, _, res, err := compute(cmd, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Summary of %s (%s compounds, %d failed)\n\n",
		args[0], humanize.Comma(int64(res.Len())), len(res.Failed))

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "property\tmean\tstd\tmedian")
	for _, col := range core.ThermoColumns {
		s, err := res.Summary(col)
		if err != nil {
			return err
		}
		if !s.Computed() {
			fmt.Fprintf(tw, "%s\t-\t-\t-\n", col)
			continue
		}
		fmt.Fprintf(tw, "%s\t%v\t%v\t%v\n", col,
			core.RoundFloat(s.Mean, 4), core.RoundFloat(s.Std, 4), core.RoundFloat(s.Median, 4))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	bins, err := res.AverageByLambdaBins(cfg.Binning.Method, cfg.Binning.Bins, cfg.Binning.Cutoff)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: lambda binning skipped: %v\n", err)
		return nil
	}

	fmt.Printf("\nLambda bins (%s, cutoff %v%%)\n\n", bins.Method, bins.Cutoff)
	tw = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "bin\tlower\tupper\tcompounds\tlambda\tformula")
	for _, bin := range bins.Bins {
		fmt.Fprintf(tw, "%s\t%v\t%v\t%d\t%v\t%s\n", bin.Label,
			core.RoundFloat(bin.Lower, 4), core.RoundFloat(bin.Upper, 4), len(bin.Members),
			core.RoundFloat(bin.Lambda, 4), bin.Composition.Formula())
	}
	return tw.Flush()
}
