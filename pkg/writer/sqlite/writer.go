// Package sqlite provides SQLite database writing for stoichiometry results
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/ThermoStoich/pkg/core"
	"github.com/ChrisMcGann/ThermoStoich/pkg/fba"
	"github.com/ChrisMcGann/ThermoStoich/pkg/fticr"
)

const (
	// Schema version stored in HeaderTable
	schemaVersion = 1
	// Date format for HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02"
	// Date format for MaintenanceTable
	maintenanceDateFormat = "2006 01 02"
)

// Writer handles writing results to SQLite database files
type Writer struct {
	db         *sql.DB
	outputPath string
	runID      string

	description string
	numPeaks    int
	numFailed   int

	compoundStmt *sql.Stmt
	thermoStmt   *sql.Stmt
	stoichStmt   *sql.Stmt
	failedStmt   *sql.Stmt
	binStmt      *sql.Stmt
}

// NewWriter creates a new SQLite writer
func NewWriter(outputPath string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		runID:      uuid.NewString(),
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// RunID returns the identifier stored in HeaderTable
func (w *Writer) RunID() string {
	return w.runID
}

// SetSource records the input description and raw row count for HeaderTable
func (w *Writer) SetSource(description string, numPeaks int) {
	w.description = description
	w.numPeaks = numPeaks
}

func thermoColumnsSQL(typ string) string {
	cols := make([]string, len(core.ThermoColumns))
	for i, c := range core.ThermoColumns {
		cols[i] = fmt.Sprintf("%q %s", c, typ)
	}
	return strings.Join(cols, ",\n\t\t")
}

func componentColumnsSQL(typ string) string {
	names := core.ComponentNames()
	cols := make([]string, len(names))
	for i, c := range names {
		cols[i] = fmt.Sprintf("%q %s", c, typ)
	}
	return strings.Join(cols, ",\n\t\t")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS CompoundTable (
		CompoundId TEXT PRIMARY KEY,
		Formula TEXT UNIQUE,
		C DOUBLE,
		H DOUBLE,
		N DOUBLE,
		O DOUBLE,
		P DOUBLE,
		S DOUBLE,
		MonoisotopicMass DOUBLE,
		HC DOUBLE,
		OC DOUBLE,
		NOSC DOUBLE,
		SourceRow INTEGER
	);

	CREATE TABLE IF NOT EXISTS ThermoTable (
		CompoundId TEXT PRIMARY KEY REFERENCES CompoundTable(CompoundId),
		%s
	);

	CREATE TABLE IF NOT EXISTS StoichiometryTable (
		CompoundId TEXT REFERENCES CompoundTable(CompoundId),
		Reaction TEXT,
		%s,
		Equation TEXT,
		PRIMARY KEY (CompoundId, Reaction)
	);

	CREATE TABLE IF NOT EXISTS FailedTable (
		CompoundId TEXT PRIMARY KEY,
		Formula TEXT,
		Error TEXT
	);

	CREATE TABLE IF NOT EXISTS BinTable (
		Label TEXT PRIMARY KEY,
		Method TEXT,
		Cutoff DOUBLE,
		Lower DOUBLE,
		Upper DOUBLE,
		C DOUBLE,
		H DOUBLE,
		N DOUBLE,
		O DOUBLE,
		P DOUBLE,
		S DOUBLE,
		Lambda DOUBLE,
		Members BLOB_TEXT
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		RunId TEXT,
		CreationDate TEXT,
		Description TEXT,
		Constants TEXT,
		NumPeaks INTEGER,
		NumCompounds INTEGER
	);

	CREATE TABLE IF NOT EXISTS MaintenanceTable (
		CreationDate TEXT,
		NoofCompoundsFailed INTEGER,
		Description TEXT
	);
	`, thermoColumnsSQL("DOUBLE"), componentColumnsSQL("DOUBLE"))

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.compoundStmt, err = w.db.Prepare(`
		INSERT INTO CompoundTable (
			CompoundId, Formula, C, H, N, O, P, S,
			MonoisotopicMass, HC, OC, NOSC, SourceRow
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare compound statement: %w", err)
	}

	w.thermoStmt, err = w.db.Prepare(fmt.Sprintf(
		`INSERT INTO ThermoTable VALUES (%s)`, placeholders(1+len(core.ThermoColumns))))
	if err != nil {
		return fmt.Errorf("failed to prepare thermo statement: %w", err)
	}

	w.stoichStmt, err = w.db.Prepare(fmt.Sprintf(
		`INSERT INTO StoichiometryTable VALUES (%s)`, placeholders(3+int(core.NumComponents))))
	if err != nil {
		return fmt.Errorf("failed to prepare stoichiometry statement: %w", err)
	}

	w.failedStmt, err = w.db.Prepare(`INSERT INTO FailedTable (CompoundId, Formula, Error) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare failed statement: %w", err)
	}

	w.binStmt, err = w.db.Prepare(`
		INSERT INTO BinTable (
			Label, Method, Cutoff, Lower, Upper, C, H, N, O, P, S, Lambda, Members
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare bin statement: %w", err)
	}

	return nil
}

// WriteResult writes every processed compound, its thermodynamics and
// reactions, and the compounds that failed, in one transaction
func (w *Writer) WriteResult(res *fticr.Result) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmts := txStatements{
		compound: tx.Stmt(w.compoundStmt),
		thermo:   tx.Stmt(w.thermoStmt),
		stoich:   tx.Stmt(w.stoichStmt),
	}
	for i, c := range res.Compounds {
		if err := stmts.writeCompound(c, res.Stoichiometries[i]); err != nil {
			tx.Rollback()
			return err
		}
	}

	failed := tx.Stmt(w.failedStmt)
	for _, f := range res.Failed {
		if _, err := failed.Exec(f.ID, f.Formula, f.Err.Error()); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert failed compound %s: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit results: %w", err)
	}
	w.numFailed += len(res.Failed)
	return nil
}

// txStatements are the insert statements bound to one transaction
type txStatements struct {
	compound *sql.Stmt
	thermo   *sql.Stmt
	stoich   *sql.Stmt
}

// writeCompound writes a single compound with its thermodynamics and reactions
func (st txStatements) writeCompound(c fticr.Compound, s *core.Stoichiometry) error {
	comp := c.Composition

	// Insert into CompoundTable
	_, err := st.compound.Exec(
		c.ID,      // CompoundId
		c.Formula, // Formula
		comp.C,
		comp.H,
		comp.N,
		comp.O,
		comp.P,
		comp.S,
		comp.MonoisotopicMass(), // MonoisotopicMass
		comp.HC(),               // HC
		comp.OC(),               // OC
		core.NOSC(comp),         // NOSC
		c.Row,                   // SourceRow
	)
	if err != nil {
		return fmt.Errorf("failed to insert compound %s: %w", c.ID, err)
	}

	// Insert into ThermoTable
	args := []interface{}{c.ID}
	for _, v := range s.Thermo.Values() {
		args = append(args, v)
	}
	if _, err := st.thermo.Exec(args...); err != nil {
		return fmt.Errorf("failed to insert thermodynamics of %s: %w", c.ID, err)
	}

	// Insert one StoichiometryTable row per reaction type
	for _, rt := range core.ReactionTypes {
		v := s.Vector(rt)
		args := []interface{}{c.ID, rt.String()}
		for _, coef := range v {
			args = append(args, coef)
		}
		args = append(args, fba.Equation(v, c.ID))
		if _, err := st.stoich.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert %s reaction of %s: %w", rt, c.ID, err)
		}
	}

	return nil
}

// WriteBins writes the bin averages of a binning run
func (w *Writer) WriteBins(t *fticr.BinTable) error {
	for _, bin := range t.Bins {
		comp := bin.Composition
		_, err := w.binStmt.Exec(
			bin.Label,
			t.Method,
			t.Cutoff,
			bin.Lower,
			bin.Upper,
			comp.C,
			comp.H,
			comp.N,
			comp.O,
			comp.P,
			comp.S,
			bin.Lambda,
			strings.Join(bin.Members, ","),
		)
		if err != nil {
			return fmt.Errorf("failed to insert bin %s: %w", bin.Label, err)
		}
	}
	return nil
}

// Finalize writes the header and maintenance tables and closes the database
func (w *Writer) Finalize(constants core.Constants) error {
	var numCompounds int
	if err := w.db.QueryRow(`SELECT COUNT(*) FROM CompoundTable`).Scan(&numCompounds); err != nil {
		return fmt.Errorf("failed to count compounds: %w", err)
	}

	now := time.Now()

	// Write HeaderTable
	_, err := w.db.Exec(`
		INSERT INTO HeaderTable (version, RunId, CreationDate, Description, Constants, NumPeaks, NumCompounds)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, schemaVersion, w.runID, now.Format(headerDateFormat), w.description, constants.String(), w.numPeaks, numCompounds)
	if err != nil {
		return fmt.Errorf("failed to insert header: %w", err)
	}

	// Write MaintenanceTable
	_, err = w.db.Exec(`
		INSERT INTO MaintenanceTable (CreationDate, NoofCompoundsFailed, Description)
		VALUES (?, ?, ?)
	`, now.Format(maintenanceDateFormat), w.numFailed, "")
	if err != nil {
		return fmt.Errorf("failed to insert maintenance: %w", err)
	}

	return w.Close()
}

// Close closes prepared statements and the database without writing the
// header
func (w *Writer) Close() error {
	for _, stmt := range []*sql.Stmt{w.compoundStmt, w.thermoStmt, w.stoichStmt, w.failedStmt, w.binStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
