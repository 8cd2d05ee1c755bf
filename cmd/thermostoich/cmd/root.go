// Package cmd provides CLI command implementations
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Flags shared by every command
	configFile string
	verbose    bool

	// Input flags
	inputFiles  []string
	inputFormat string
	sheetName   string

	// Flags for run command
	outputDir   string
	modelPrefix string
	reaction    string
	writeDB     bool
	rerunBins   bool
	threads     int

	// Binning flags
	binMethod string
	nBins     int
	cutoff    float64

	// Flags for correlate command
	vhCS []float64
	vhO2 []float64
)

var rootCmd = &cobra.Command{
	Use:   "thermostoich",
	Short: "ThermoStoich - thermodynamic stoichiometry of FT-ICR compound tables",
	Long: `ThermoStoich derives electron donor, acceptor, catabolic, anabolic and
metabolic reactions for every assigned formula of an FT-ICR peak table, together
with their Gibbs energies and TEEM lambda values.

Results can be exported as:
- CSV tables of every reaction type and the thermodynamic properties
- Flux-balance model files (compounds, reactions, media)
- Lambda-binned average compositions
- A SQLite result database`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(correlateCmd)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML parameter file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose (debug) logging")

	for _, c := range []*cobra.Command{runCmd, summarizeCmd, correlateCmd} {
		c.Flags().StringVar(&inputFormat, "from", "", "Input format: csv, tsv, xlsx (auto-detect if not specified)")
		c.Flags().StringVar(&sheetName, "sheet", "", "Worksheet of an xlsx input (first sheet if not specified)")
	}
	validateCmd.Flags().StringVar(&inputFormat, "from", "", "Input format: csv, tsv, xlsx (auto-detect if not specified)")
	validateCmd.Flags().StringVar(&sheetName, "sheet", "", "Worksheet of an xlsx input (first sheet if not specified)")

	// Run command flags
	runCmd.Flags().StringSliceVarP(&inputFiles, "in", "i", nil, "Input peak table(s) (required, repeatable)")
	runCmd.Flags().StringVarP(&outputDir, "out", "o", "", "Output directory (required)")
	runCmd.Flags().StringVar(&modelPrefix, "model-prefix", "", "Prefix of the flux-balance model files (default from config: temp)")
	runCmd.Flags().StringVar(&reaction, "reaction", "", "Reaction type of the model files: D, A, Cat, An_O2, An_HCO3, Met_O2, Met_HCO3")
	runCmd.Flags().BoolVar(&writeDB, "db", false, "Also write a SQLite result database")
	runCmd.Flags().BoolVar(&rerunBins, "rerun-bins", false, "Re-run the bin averages as synthetic compounds (bins_ prefix)")
	runCmd.Flags().IntVar(&threads, "threads", 1, "Number of input files processed concurrently")
	addBinningFlags(runCmd)

	runCmd.MarkFlagRequired("in")
	runCmd.MarkFlagRequired("out")

	addBinningFlags(summarizeCmd)

	// Correlate command flags
	correlateCmd.Flags().StringVar(&reaction, "reaction", "", "Reaction type the rates are derived from (default Met_O2)")
	correlateCmd.Flags().Float64SliceVar(&vhCS, "vh-cs", nil, "Carbon source rate scales (default from config: 1)")
	correlateCmd.Flags().Float64SliceVar(&vhO2, "vh-o2", nil, "Oxygen rate scales (default from config: 1)")
}

func addBinningFlags(c *cobra.Command) {
	c.Flags().StringVar(&binMethod, "bin-method", "", "Lambda binning method: cumulative, uniform (default cumulative)")
	c.Flags().IntVar(&nBins, "bins", 0, "Number of lambda bins (default 10)")
	c.Flags().Float64Var(&cutoff, "cutoff", 0, "Two-sided lambda percentile cutoff, 0 <= cutoff < 100 (default 5)")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute stoichiometries and write result files",
	Long: `Compute the thermodynamic stoichiometry of every assigned compound of one or
more peak tables and write the result tables, model files and lambda bins.

Examples:
  # Process a Formularity report with default settings
  thermostoich run --in report.csv --out results/

  # Ten uniform bins without tail trimming, and a result database
  thermostoich run --in report.csv --out results/ --bin-method uniform --cutoff 0 --db

  # Several samples at once, re-running the bin averages
  thermostoich run --in a.csv --in b.xlsx --out results/ --threads 2 --rerun-bins`,
	RunE: runRun,
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate an input peak table",
	Long: `Validate that a peak table has the C, H, N, O, P and S columns and report how
many rows are duplicates, unassigned, isotope peaks or sodium adducts.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize the thermodynamic properties of a peak table",
	Long: `Print the mean, standard deviation and median of every thermodynamic property,
and the population of each lambda bin.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

var correlateCmd = &cobra.Command{
	Use:   "correlate [file]",
	Short: "Correlate lambda with stoichiometry-derived rates",
	Long: `For every pair of carbon-source and oxygen scales, derive biomass, O2 and HCO3
rates from the metabolic stoichiometry and correlate each with lambda_O2.

Example:
  thermostoich correlate report.csv --vh-cs 1,10,100 --vh-o2 1,10`,
	Args: cobra.ExactArgs(1),
	RunE: runCorrelate,
}
