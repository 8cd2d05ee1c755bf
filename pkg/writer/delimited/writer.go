// Package delimited writes result tables and flux-balance model files as
// comma- or tab-separated text
package delimited

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ChrisMcGann/ThermoStoich/pkg/core"
	"github.com/ChrisMcGann/ThermoStoich/pkg/fba"
	"github.com/ChrisMcGann/ThermoStoich/pkg/fticr"
)

// File names of the exported tables
const (
	ThermoFile = "thermodynamic_props.csv"
	BinsFile   = "lambda_bins.csv"
)

// Writer writes a header and records with a fixed delimiter
type Writer struct {
	csv *csv.Writer
}

// NewCSV creates a comma-separated writer
func NewCSV(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// NewTSV creates a tab-separated writer
func NewTSV(w io.Writer) *Writer {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return &Writer{csv: cw}
}

// Write writes the header followed by every record and flushes
func (w *Writer) Write(header []string, records [][]string) error {
	if err := w.csv.Write(header); err != nil {
		return err
	}
	if err := w.csv.WriteAll(records); err != nil {
		return err
	}
	return w.csv.Error()
}

// StoichRecords renders a stoichiometric table with the molecular formula
// as unnamed index column
func StoichRecords(t *fticr.StoichTable) ([]string, [][]string) {
	header := append([]string{""}, t.Columns()...)
	records := make([][]string, t.Len())
	for i, v := range t.Rows {
		records[i] = append([]string{t.Formulas[i]}, formatFloats(v[:])...)
	}
	return header, records
}

// ThermoRecords renders the thermodynamic table with the molecular formula
// as unnamed index column
func ThermoRecords(t *fticr.ThermoTable) ([]string, [][]string) {
	header := append([]string{""}, t.Columns()...)
	records := make([][]string, t.Len())
	for i, row := range t.Rows {
		records[i] = append([]string{t.Formulas[i]}, formatFloats(row.Values())...)
	}
	return header, records
}

// BinRecords renders bin averages with their label, mean lambda and
// zeroed flags
func BinRecords(t *fticr.BinTable) ([]string, [][]string) {
	header := append(append([]string{"Class"}, fticr.RequiredColumns...), "lambda", core.ColumnNa, core.ColumnC13)
	records := make([][]string, t.Len())
	for i, bin := range t.Bins {
		rec := []string{bin.Label}
		for _, el := range fticr.RequiredColumns {
			v, _ := bin.Composition.Get(el)
			rec = append(rec, core.FormatFloat(v))
		}
		rec = append(rec, core.FormatFloat(bin.Lambda), "0", "0")
		records[i] = rec
	}
	return header, records
}

func formatFloats(values []float64) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = core.FormatFloat(v)
	}
	return out
}

// Exporter writes files into a directory. Prefix is prepended to every
// file name.
type Exporter struct {
	Dir    string
	Prefix string
}

func (e *Exporter) path(name string) string {
	return filepath.Join(e.Dir, e.Prefix+name)
}

func (e *Exporter) writeFile(name string, tsv bool, header []string, records [][]string) (string, error) {
	path := e.path(name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := NewCSV(f)
	if tsv {
		w = NewTSV(f)
	}
	if err := w.Write(header, records); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

// Results writes stoich<Type>.csv for every reaction type and the
// thermodynamic properties, returning the written paths
func (e *Exporter) Results(res *fticr.Result) ([]string, error) {
	var paths []string
	for _, t := range res.Tables() {
		header, records := StoichRecords(t)
		path, err := e.writeFile(t.Name()+".csv", false, header, records)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	header, records := ThermoRecords(res.Thermo())
	path, err := e.writeFile(ThermoFile, false, header, records)
	if err != nil {
		return paths, err
	}
	return append(paths, path), nil
}

// Bins writes the bin averages
func (e *Exporter) Bins(t *fticr.BinTable) (string, error) {
	header, records := BinRecords(t)
	return e.writeFile(BinsFile, false, header, records)
}

// Model writes the flux-balance compound, reaction and media files for one
// reaction type: <model>_comps.tsv, <model>_stoich<Type>.tsv and
// <model>_media.tsv
func (e *Exporter) Model(res *fticr.Result, model string, rt core.ReactionType) ([]string, error) {
	var paths []string

	compounds := fba.Compounds(res.Compounds, res.Constants().Biomass)
	records := make([][]string, len(compounds))
	for i, c := range compounds {
		records[i] = c.Record()
	}
	path, err := e.writeFile(model+"_comps.tsv", true, fba.CompoundColumns, records)
	if err != nil {
		return paths, err
	}
	paths = append(paths, path)

	table := res.Table(rt)
	reactions := fba.Reactions(table)
	records = make([][]string, len(reactions))
	for i, r := range reactions {
		records[i] = r.Record()
	}
	path, err = e.writeFile(model+"_"+table.Name()+".tsv", true, fba.ReactionColumns, records)
	if err != nil {
		return paths, err
	}
	paths = append(paths, path)

	media := fba.Media(res.Compounds)
	records = make([][]string, len(media))
	for i, m := range media {
		records[i] = m.Record()
	}
	path, err = e.writeFile(model+"_media.tsv", true, fba.MediaColumns, records)
	if err != nil {
		return paths, err
	}
	return append(paths, path), nil
}
