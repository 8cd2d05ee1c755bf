package sqlite

import (
	"database/sql"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/ChrisMcGann/ThermoStoich/pkg/core"
	"github.com/ChrisMcGann/ThermoStoich/pkg/fticr"
)

func testResult(t *testing.T) *fticr.Result {
	t.Helper()
	tbl := core.PeakTable{
		Columns: []string{"C", "H", "N", "O", "P", "S"},
		Rows: [][]float64{
			{6, 12, 0, 6, 0, 0},
			{0, 2, 0, 1, 0, 0},
			{1, 4, 0, 0, 0, 0},
		},
	}
	ds, err := fticr.NewDataset(tbl, nil)
	if err != nil {
		t.Fatalf("NewDataset() error = %v", err)
	}
	return ds.Run(nil)
}

func count(t *testing.T, db *sql.DB, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("%s: %v", query, err)
	}
	return n
}

func TestWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	res := testResult(t)

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	runID := w.RunID()
	if _, err := uuid.Parse(runID); err != nil {
		t.Errorf("RunID() = %q is not a UUID", runID)
	}

	w.SetSource("peaks.csv", 3)
	if err := w.WriteResult(res); err != nil {
		t.Fatalf("WriteResult() error = %v", err)
	}

	bt, err := res.AverageByLambdaBins(fticr.BinCumulative, 2, 0)
	if err != nil {
		t.Fatalf("AverageByLambdaBins() error = %v", err)
	}
	if err := w.WriteBins(bt); err != nil {
		t.Fatalf("WriteBins() error = %v", err)
	}
	if err := w.Finalize(res.Constants()); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if n := count(t, db, `SELECT COUNT(*) FROM CompoundTable`); n != 2 {
		t.Errorf("CompoundTable has %d rows, want 2", n)
	}
	if n := count(t, db, `SELECT COUNT(*) FROM ThermoTable`); n != 2 {
		t.Errorf("ThermoTable has %d rows, want 2", n)
	}
	if n := count(t, db, `SELECT COUNT(*) FROM StoichiometryTable`); n != 2*len(core.ReactionTypes) {
		t.Errorf("StoichiometryTable has %d rows, want %d", n, 2*len(core.ReactionTypes))
	}
	if n := count(t, db, `SELECT COUNT(*) FROM FailedTable WHERE Formula = 'H2O'`); n != 1 {
		t.Errorf("FailedTable has %d H2O rows, want 1", n)
	}
	if n := count(t, db, `SELECT COUNT(*) FROM BinTable`); n != bt.Len() {
		t.Errorf("BinTable has %d rows, want %d", n, bt.Len())
	}

	var lambda float64
	err = db.QueryRow(`SELECT t."lambda_O2" FROM ThermoTable t
		JOIN CompoundTable c ON c.CompoundId = t.CompoundId WHERE c.Formula = 'CH4'`).Scan(&lambda)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(lambda-0.12727246941173737) > 1e-12 {
		t.Errorf("lambda_O2 of CH4 = %v", lambda)
	}

	var equation string
	err = db.QueryRow(`SELECT Equation FROM StoichiometryTable
		WHERE CompoundId = 'xcpd__2' AND Reaction = 'Cat'`).Scan(&equation)
	if err != nil {
		t.Fatal(err)
	}
	want := "(1.0)  xcpd__2[c0] + (2.0)  acceptor[c0] <=> (1.0)  h2o[c0] + (1.0)  hco3[c0] + (1.0)  h[c0]"
	if equation != want {
		t.Errorf("Equation = %q, want %q", equation, want)
	}

	var gotRunID string
	var numPeaks, numCompounds int
	err = db.QueryRow(`SELECT RunId, NumPeaks, NumCompounds FROM HeaderTable`).Scan(&gotRunID, &numPeaks, &numCompounds)
	if err != nil {
		t.Fatal(err)
	}
	if gotRunID != runID || numPeaks != 3 || numCompounds != 2 {
		t.Errorf("HeaderTable = %s %d %d", gotRunID, numPeaks, numCompounds)
	}
	if n := count(t, db, `SELECT NoofCompoundsFailed FROM MaintenanceTable`); n != 1 {
		t.Errorf("NoofCompoundsFailed = %d, want 1", n)
	}
}

func TestWriterDuplicateCompound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	res := testResult(t)

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	defer w.Close()

	if err := w.WriteResult(res); err != nil {
		t.Fatalf("WriteResult() error = %v", err)
	}
	if err := w.WriteResult(res); err == nil {
		t.Error("writing the same compounds twice should fail")
	}
}
