package main

import (
	"context"
	"database/sql"
	"journey-times/internal/adapters/repositories"
	"journey-times/internal/config"
	"journey-times/internal/platform/db"
	"journey-times/internal/platform/obs"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// dbtool prepares the SQL mirror of the results files: it creates the schema
// and, unless --schema-only is given, imports every Results_<CC>.txt file.
func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found (using environment variables)")
	}

	schemaOnly := pflag.Bool("schema-only", false, "Create the results schema without importing results files")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}

	logger, err := obs.NewLogger(obs.LogSettings{
		Level:      cfg.LogLevel,
		FilePath:   cfg.LogFile,
		MaxAgeDays: cfg.LogMaxAgeDays,
	}, os.Stderr)
	if err != nil {
		logrus.Fatal(err)
	}

	if cfg.ResultsDBDriver == "" {
		logger.Fatal("RESULTS_DB_DRIVER and RESULTS_DB_DSN are required")
	}

	conn, err := db.Open(cfg.ResultsDBDriver, cfg.ResultsDBDSN)
	if err != nil {
		logger.Fatal(err)
	}
	defer conn.Close()

	ctx := obs.WithRunID(context.Background(), "import-"+uuid.NewString())
	files := repositories.NewFileResultsStore(cfg.ResultsDir, logger)
	if err := initAndImport(ctx, conn, cfg.ResultsDBDriver, files, *schemaOnly, logger); err != nil {
		logger.Fatal(err)
	}
}

func initAndImport(
	ctx context.Context,
	conn *sql.DB,
	driver string,
	files *repositories.FileResultsStore,
	schemaOnly bool,
	logger logrus.FieldLogger,
) error {
	logger.Info("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn, driver); err != nil {
		return err
	}
	logger.Info("Schema ready.")

	if schemaOnly {
		return nil
	}

	logger.WithField("dir", files.Dir).Info("Importing results files...")
	n, err := repositories.ImportResultsFiles(ctx, conn, driver, files)
	if err != nil {
		return err
	}
	logger.WithField("rows", n).Info("Import complete.")

	return nil
}
