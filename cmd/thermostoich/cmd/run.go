package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ChrisMcGann/ThermoStoich/pkg/config"
	"github.com/ChrisMcGann/ThermoStoich/pkg/core"
	"github.com/ChrisMcGann/ThermoStoich/pkg/fticr"
	"github.com/ChrisMcGann/ThermoStoich/pkg/writer/delimited"
	"github.com/ChrisMcGann/ThermoStoich/pkg/writer/sqlite"
)

const (
	// DBFile is the result database written with --db
	DBFile = "thermostoich.db"
	// BinsPrefix marks the files of a bin re-run
	BinsPrefix = "bins_"
)

// job is one input file and the directory its results go to
type job struct {
	input string
	dir   string
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rt, err := cfg.ReactionType()
	if err != nil {
		return err
	}
	calc, err := cfg.Calculator()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	jobs, err := planJobs(inputFiles, outputDir)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	if threads > 0 {
		g.SetLimit(threads)
	}
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			report, err := processInput(j, cfg, rt, calc, logger)
			if err != nil {
				return fmt.Errorf("%s: %w", j.input, err)
			}
			mu.Lock()
			fmt.Print(report)
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// planJobs assigns each input its output directory. A single input writes
// into outDir directly, several inputs get one sub-directory each.
func planJobs(inputs []string, outDir string) ([]job, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input files given")
	}

	jobs := make([]job, len(inputs))
	seen := make(map[string]string)
	for i, in := range inputs {
		dir := outDir
		if len(inputs) > 1 {
			name := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
			if prev, ok := seen[name]; ok {
				return nil, fmt.Errorf("inputs %s and %s would write to the same directory", prev, in)
			}
			seen[name] = in
			dir = filepath.Join(outDir, name)
		}
		jobs[i] = job{input: in, dir: dir}
	}
	return jobs, nil
}

// processInput runs the full pipeline for one input and returns the report
// printed once it is done
func processInput(j job, cfg *config.Config, rt core.ReactionType, calc *core.Calculator, logger *zap.SugaredLogger) (string, error) {
	if err := os.MkdirAll(j.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	ds, err := loadDataset(j.input, logger)
	if err != nil {
		return "", err
	}
	res := ds.Run(calc)

	var b strings.Builder
	fmt.Fprintf(&b, "Processing %s\n", j.input)
	fmt.Fprintf(&b, "  Peaks:      %s\n", humanize.Comma(int64(ds.NumPeaks())))
	fmt.Fprintf(&b, "  Duplicates: %s\n", humanize.Comma(int64(ds.NumDuplicates())))
	fmt.Fprintf(&b, "  Removed:    %s (%s)\n", humanize.Comma(int64(ds.FilterReport().Removed())), ds.FilterReport())
	fmt.Fprintf(&b, "  Compounds:  %s\n", humanize.Comma(int64(res.Len())))
	if len(res.Failed) > 0 {
		fmt.Fprintf(&b, "  Failed:     %s\n", humanize.Comma(int64(len(res.Failed))))
	}

	bins, err := writeAll(&b, j.dir, "", cfg.Model.Prefix, res, &cfg.Binning, rt)
	if err != nil {
		return "", err
	}
	if writeDB {
		if err := writeDatabase(&b, filepath.Join(j.dir, DBFile), j.input, ds.NumPeaks(), res, bins); err != nil {
			return "", err
		}
	}

	if rerunBins && bins != nil {
		binDS, err := fticr.NewDataset(bins.PeakTable(), logger.With("input", BinsPrefix+filepath.Base(j.input)))
		if err != nil {
			return "", fmt.Errorf("failed to load bin averages: %w", err)
		}
		binRes := binDS.Run(calc)
		fmt.Fprintf(&b, "  Bin re-run:  %d compounds\n", binRes.Len())

		// Bin averages are not binned again
		if _, err := writeAll(&b, j.dir, BinsPrefix, cfg.Model.Prefix, binRes, nil, rt); err != nil {
			return "", err
		}
		if writeDB {
			path := filepath.Join(j.dir, BinsPrefix+DBFile)
			if err := writeDatabase(&b, path, "bin averages of "+j.input, bins.Len(), binRes, nil); err != nil {
				return "", err
			}
		}
	}

	return b.String(), nil
}

// writeAll writes the result tables and model files. Bins are computed and
// written only when binning is non-nil; a dataset too small to bin is
// reported and skipped.
func writeAll(b *strings.Builder, dir, prefix, model string, res *fticr.Result, binning *config.Binning, rt core.ReactionType) (*fticr.BinTable, error) {
	exp := &delimited.Exporter{Dir: dir, Prefix: prefix}

	paths, err := exp.Results(res)
	if err != nil {
		return nil, err
	}
	modelPaths, err := exp.Model(res, model, rt)
	if err != nil {
		return nil, err
	}
	paths = append(paths, modelPaths...)

	var bins *fticr.BinTable
	if binning != nil {
		bins, err = res.AverageByLambdaBins(binning.Method, binning.Bins, binning.Cutoff)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: lambda binning skipped: %v\n", err)
			bins = nil
		} else {
			path, err := exp.Bins(bins)
			if err != nil {
				return nil, err
			}
			paths = append(paths, path)
			fmt.Fprintf(b, "  Lambda bins: %d (%s)\n", bins.Len(), strings.Join(bins.Labels(), ", "))
		}
	}

	for _, p := range paths {
		fmt.Fprintf(b, "  Wrote %s\n", p)
	}
	return bins, nil
}

// writeDatabase writes a result database; bins may be nil
func writeDatabase(b *strings.Builder, path, description string, numPeaks int, res *fticr.Result, bins *fticr.BinTable) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	w, err := sqlite.NewWriter(path)
	if err != nil {
		return err
	}
	w.SetSource(description, numPeaks)

	if err := w.WriteResult(res); err != nil {
		w.Close()
		return err
	}
	if bins != nil {
		if err := w.WriteBins(bins); err != nil {
			w.Close()
			return err
		}
	}
	if err := w.Finalize(res.Constants()); err != nil {
		return err
	}

	fmt.Fprintf(b, "  Wrote %s (run %s)\n", path, w.RunID())
	return nil
}
