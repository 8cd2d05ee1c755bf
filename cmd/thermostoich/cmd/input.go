package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChrisMcGann/ThermoStoich/pkg/config"
	"github.com/ChrisMcGann/ThermoStoich/pkg/core"
	"github.com/ChrisMcGann/ThermoStoich/pkg/fticr"
	"github.com/ChrisMcGann/ThermoStoich/pkg/reader/formularity"
	"github.com/ChrisMcGann/ThermoStoich/pkg/reader/xlsx"
)

// newLogger builds the process logger
func newLogger() (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		logger, err = cfg.Build()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger.Sugar(), nil
}

// loadConfig reads the parameter file, if any, and applies the flags that
// were set explicitly
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("bin-method") {
		cfg.Binning.Method = binMethod
	}
	if flags.Changed("bins") {
		cfg.Binning.Bins = nBins
	}
	if flags.Changed("cutoff") {
		cfg.Binning.Cutoff = cutoff
	}
	if flags.Changed("model-prefix") {
		cfg.Model.Prefix = modelPrefix
	}
	if flags.Changed("reaction") {
		cfg.Model.Reaction = reaction
	}
	if flags.Changed("vh-cs") {
		cfg.Correlation.VhCS = vhCS
	}
	if flags.Changed("vh-o2") {
		cfg.Correlation.VhO2 = vhO2
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// detectFormat returns the input format, from --from or the file extension
func detectFormat(path string) (string, error) {
	format := strings.ToLower(inputFormat)
	if format == "" {
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".csv":
			format = "csv"
		case ".tsv", ".tab", ".txt":
			format = "tsv"
		case ".xlsx", ".xlsm":
			format = "xlsx"
		default:
			return "", fmt.Errorf("cannot auto-detect format from extension '%s', please specify --from", ext)
		}
	}

	if format != "csv" && format != "tsv" && format != "xlsx" {
		return "", fmt.Errorf("invalid input format '%s', must be csv, tsv, or xlsx", format)
	}
	return format, nil
}

// readTable reads a raw peak table in any supported format
func readTable(path string) (core.PeakTable, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return core.PeakTable{}, fmt.Errorf("input file does not exist: %s", path)
	}

	format, err := detectFormat(path)
	if err != nil {
		return core.PeakTable{}, err
	}

	if format == "xlsx" {
		return xlsx.ReadFile(path, sheetName)
	}

	f, err := os.Open(path)
	if err != nil {
		return core.PeakTable{}, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	comma := ','
	if format == "tsv" {
		comma = '\t'
	}
	return formularity.NewReaderComma(f, comma).ReadAll()
}

// loadDataset reads and validates one input file
func loadDataset(path string, logger *zap.SugaredLogger) (*fticr.Dataset, error) {
	tbl, err := readTable(path)
	if err != nil {
		return nil, err
	}
	ds, err := fticr.NewDataset(tbl, logger.With("input", filepath.Base(path)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// compute loads one input file and derives its stoichiometries
func compute(cmd *cobra.Command, path string) (*config.Config, *fticr.Dataset, *fticr.Result, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := newLogger()
	if err != nil {
		return nil, nil, nil, err
	}
	defer logger.Sync()

	calc, err := cfg.Calculator()
	if err != nil {
		return nil, nil, nil, err
	}
	ds, err := loadDataset(path, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, ds, ds.Run(calc), nil
}
