package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"journey-times/internal/platform/db"
	"journey-times/internal/platform/obs"
)

// Initialize the results schema for the given driver.
func InitSchema(ctx context.Context, conn *sql.DB, driver string) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == db.DriverPostgres {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createResultsQuery := `
	CREATE TABLE IF NOT EXISTS results (
		id ` + idColumn + `,
		run_id TEXT NOT NULL,
		country_code TEXT NOT NULL,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		duration_s DOUBLE PRECISION NOT NULL,
		distance_m DOUBLE PRECISION NOT NULL,
		v_ave_kmph DOUBLE PRECISION NOT NULL,
		date TEXT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_results_country_code
	ON results(country_code, id);
	`

	statements := []string{
		createResultsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// ImportResultsFiles copies every results file of files into the results
// table. Rows already stored for an imported country are replaced, so the
// import can be repeated. Returns the number of rows inserted.
func ImportResultsFiles(ctx context.Context, conn *sql.DB, driver string, files *FileResultsStore) (int, error) {
	if conn == nil {
		return 0, errors.New("import results: DB is nil")
	}

	codes, err := files.Countries(ctx)
	if err != nil {
		return 0, fmt.Errorf("import results: %w", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("import results: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, rebind(driver, insertResultQuery))
	if err != nil {
		return 0, fmt.Errorf("import results: prepare insert: %w", err)
	}
	defer stmt.Close()

	runID := obs.RunID(ctx)
	total := 0
	for _, cc := range codes {
		records, err := files.LoadAll(ctx, cc)
		if err != nil {
			return 0, fmt.Errorf("import results: %w", err)
		}

		if _, err := tx.ExecContext(ctx, rebind(driver, `DELETE FROM results WHERE country_code = ?;`), cc); err != nil {
			return 0, fmt.Errorf("import results: clear cc=%s: %w", cc, err)
		}

		for _, r := range records {
			_, err := stmt.ExecContext(ctx, runID, cc, r.Origin, r.Destination,
				r.DurationSeconds, r.DistanceMeters, r.AvgSpeedKmph, r.Date)
			if err != nil {
				return 0, fmt.Errorf("import results: insert cc=%s: %w", cc, err)
			}
			total++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("import results: commit tx: %w", err)
	}

	return total, nil
}
