package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"journey-times/internal/domain"
	"journey-times/internal/platform/obs"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// SQLResultsStore mirrors sampled journeys into the results table of a
// Postgres (pgx) or SQLite database.
type SQLResultsStore struct {
	DB     *sql.DB
	driver string
	logger logrus.FieldLogger
}

func NewSQLResultsStore(conn *sql.DB, driver string, logger logrus.FieldLogger) *SQLResultsStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SQLResultsStore{DB: conn, driver: driver, logger: logger}
}

// rebind rewrites ? placeholders to $n for Postgres. SQLite takes the query
// as written.
func rebind(driver, q string) string {
	return sqlx.Rebind(sqlx.BindType(driver), q)
}

const insertResultQuery = `
	INSERT INTO results (
		run_id,
		country_code,
		origin,
		destination,
		duration_s,
		distance_m,
		v_ave_kmph,
		date
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`

// Append inserts one row tagged with the run ID carried by ctx.
func (s *SQLResultsStore) Append(ctx context.Context, countryCode string, r domain.ResultRecord) (err error) {
	defer obs.Time(ctx, s.logger, "results.sql.Append")(&err)

	if s.DB == nil {
		return errors.New("sql results store: DB is nil")
	}
	if err := validCountryCode(countryCode); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, rebind(s.driver, insertResultQuery),
		obs.RunID(ctx), countryCode, r.Origin, r.Destination,
		r.DurationSeconds, r.DistanceMeters, r.AvgSpeedKmph, r.Date)
	if err != nil {
		return fmt.Errorf("insert result cc=%s: %w", countryCode, err)
	}

	return nil
}

func (s *SQLResultsStore) LoadAll(ctx context.Context, countryCode string) (_ []domain.ResultRecord, err error) {
	defer obs.Time(ctx, s.logger, "results.sql.LoadAll")(&err)

	if s.DB == nil {
		return nil, errors.New("sql results store: DB is nil")
	}

	query := `
	SELECT
		origin,
		destination,
		duration_s,
		distance_m,
		v_ave_kmph,
		date
	FROM results
	WHERE country_code = ?
	ORDER BY id;
	`
	rows, err := s.DB.QueryContext(ctx, rebind(s.driver, query), countryCode)
	if err != nil {
		return nil, fmt.Errorf("load results: query results table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ResultRecord, 0, 128)
	for rows.Next() {
		var r domain.ResultRecord
		if err := rows.Scan(&r.Origin, &r.Destination, &r.DurationSeconds, &r.DistanceMeters, &r.AvgSpeedKmph, &r.Date); err != nil {
			return nil, fmt.Errorf("load results: scan row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load results: row iteration: %w", err)
	}

	return out, nil
}

func (s *SQLResultsStore) Countries(ctx context.Context) ([]string, error) {
	if s.DB == nil {
		return nil, errors.New("sql results store: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT DISTINCT country_code FROM results ORDER BY country_code;`)
	if err != nil {
		return nil, fmt.Errorf("list countries: query results table: %w", err)
	}
	defer rows.Close()

	codes := make([]string, 0, 16)
	for rows.Next() {
		var cc string
		if err := rows.Scan(&cc); err != nil {
			return nil, fmt.Errorf("list countries: scan row: %w", err)
		}
		codes = append(codes, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list countries: row iteration: %w", err)
	}

	return codes, nil
}
