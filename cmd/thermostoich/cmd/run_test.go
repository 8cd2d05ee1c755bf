package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/ChrisMcGann/ThermoStoich/pkg/config"
	"github.com/ChrisMcGann/ThermoStoich/pkg/core"
)

const sampleCSV = `Mass,C,H,O,N,C13,S,P,Na
180.06,6,12,6,0,0,0,0,0
612.17,35,32,6,0,0,2,0,0
237.03,10,10,3,2,0,0,1,0
16.03,1,4,0,0,0,0,0,0
181.07,5,12,6,0,1,0,0,0
0,0,0,0,0,0,0,0,0
`

func TestPlanJobs(t *testing.T) {
	jobs, err := planJobs([]string{"data/a.csv"}, "out")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]job{{input: "data/a.csv", dir: "out"}}, jobs, cmp.AllowUnexported(job{})); diff != "" {
		t.Errorf("single input mismatch (-want +got):\n%s", diff)
	}

	jobs, err = planJobs([]string{"data/a.csv", "b.xlsx"}, "out")
	if err != nil {
		t.Fatal(err)
	}
	want := []job{
		{input: "data/a.csv", dir: filepath.Join("out", "a")},
		{input: "b.xlsx", dir: filepath.Join("out", "b")},
	}
	if diff := cmp.Diff(want, jobs, cmp.AllowUnexported(job{})); diff != "" {
		t.Errorf("several inputs mismatch (-want +got):\n%s", diff)
	}

	if _, err := planJobs([]string{"x/a.csv", "y/a.tsv"}, "out"); err == nil {
		t.Error("inputs with the same base name should be rejected")
	}
	if _, err := planJobs(nil, "out"); err == nil {
		t.Error("no inputs should be rejected")
	}
}

func TestDetectFormat(t *testing.T) {
	defer func() { inputFormat = "" }()

	tests := []struct {
		path    string
		from    string
		want    string
		wantErr bool
	}{
		{path: "report.csv", want: "csv"},
		{path: "report.TSV", want: "tsv"},
		{path: "report.txt", want: "tsv"},
		{path: "report.xlsx", want: "xlsx"},
		{path: "report.dat", from: "csv", want: "csv"},
		{path: "report.dat", wantErr: true},
		{path: "report.csv", from: "json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.from, func(t *testing.T) {
			inputFormat = tt.from
			got, err := detectFormat(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("detectFormat(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("detectFormat(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestLoadConfigFlags(t *testing.T) {
	defer func() {
		summarizeCmd.Flags().Set("bins", "0")
		summarizeCmd.Flags().Lookup("bins").Changed = false
		nBins = 0
	}()

	cfg, err := loadConfig(summarizeCmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Binning.Bins != 10 {
		t.Errorf("Bins = %d without flag, want 10", cfg.Binning.Bins)
	}

	if err := summarizeCmd.Flags().Set("bins", "4"); err != nil {
		t.Fatal(err)
	}
	cfg, err = loadConfig(summarizeCmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Binning.Bins != 4 {
		t.Errorf("Bins = %d with --bins 4, want 4", cfg.Binning.Bins)
	}
}

func TestProcessInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sample.csv")
	if err := os.WriteFile(input, []byte(sampleCSV), 0644); err != nil {
		t.Fatal(err)
	}

	writeDB, rerunBins = true, true
	defer func() { writeDB, rerunBins = false, false }()

	cfg := config.Default()
	cfg.Binning.Bins = 2
	cfg.Binning.Cutoff = 0
	rt, err := cfg.ReactionType()
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out")
	report, err := processInput(job{input: input, dir: out}, cfg, rt, core.DefaultCalculator(), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("processInput() error = %v", err)
	}
	if !strings.Contains(report, "Compounds:  4") {
		t.Errorf("report does not list 4 compounds:\n%s", report)
	}

	for _, name := range []string{
		"stoichD.csv",
		"stoichMet_HCO3.csv",
		"thermodynamic_props.csv",
		"lambda_bins.csv",
		"temp_comps.tsv",
		"temp_stoichMet_O2.tsv",
		"temp_media.tsv",
		DBFile,
		"bins_thermodynamic_props.csv",
		"bins_temp_stoichMet_O2.tsv",
		BinsPrefix + DBFile,
	} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("%s was not written: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "bins_lambda_bins.csv")); err == nil {
		t.Error("bin re-run should not be binned again")
	}
}
