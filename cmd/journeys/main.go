package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"journey-times/internal/adapters/charts"
	"journey-times/internal/adapters/distance"
	"journey-times/internal/adapters/locations"
	"journey-times/internal/adapters/repositories"
	"journey-times/internal/config"
	"journey-times/internal/platform/db"
	"journey-times/internal/platform/obs"
	"journey-times/internal/ports"
	"journey-times/internal/services"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// main is the composition root. It wires the location table, the distance
// matrix client and the results stores behind ports and runs the requested
// actions in a fixed order.
func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	var log logrus.FieldLogger = logrus.StandardLogger()
	defer func() {
		if err != nil {
			log.WithError(err).Error("journeys failed")
		}
	}()

	opts, err := parseFlags(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := obs.NewLogger(obs.LogSettings{
		Level:      cfg.LogLevel,
		FilePath:   cfg.LogFile,
		MaxAgeDays: cfg.LogMaxAgeDays,
	}, stderr)
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	ctx = obs.WithRunID(ctx, runID)
	log = logger.WithField("run_id", runID)

	metrics := obs.NewMetrics()
	defer func() {
		if werr := metrics.WriteTextfile(cfg.MetricsTextfile); werr != nil {
			log.WithError(werr).Warn("metrics not written")
		}
	}()

	store, closeStore, err := openResultsStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	a := &app{cfg: cfg, opts: opts, logger: logger, metrics: metrics, store: store, stdout: stdout}
	return a.execute(ctx)
}

// openResultsStore returns the file store, fanned out to the SQL mirror when
// one is configured.
func openResultsStore(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (ports.ResultsRepository, func(), error) {
	files := repositories.NewFileResultsStore(cfg.ResultsDir, logger)
	if cfg.ResultsDBDriver == "" {
		return files, func() {}, nil
	}

	conn, err := db.Open(cfg.ResultsDBDriver, cfg.ResultsDBDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := repositories.InitSchema(ctx, conn, cfg.ResultsDBDriver); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	mirror := repositories.NewSQLResultsStore(conn, cfg.ResultsDBDriver, logger)
	return repositories.NewFanOutResultsStore(files, mirror), func() { _ = conn.Close() }, nil
}

type app struct {
	cfg     *config.Config
	opts    options
	logger  *logrus.Logger
	metrics *obs.Metrics
	store   ports.ResultsRepository
	stdout  io.Writer

	locations *locations.TSVLocationStore
}

// loadLocations reads the reference table once, on first use.
func (a *app) loadLocations() (*locations.TSVLocationStore, error) {
	if a.locations != nil {
		return a.locations, nil
	}
	s := locations.NewTSVLocationStore(a.cfg.LocationsFile, a.logger)
	if err := s.Load(); err != nil {
		return nil, err
	}
	a.logger.WithField("rows", s.Len()).Debug("reference table loaded")
	a.locations = s
	return s, nil
}

func (a *app) execute(ctx context.Context) error {
	opts := a.opts

	if opts.GetCountryCodes {
		locs, err := a.loadLocations()
		if err != nil {
			return err
		}
		if err := services.WriteCountryCodes(a.stdout, locs.CountryCounts()); err != nil {
			return fmt.Errorf("print country codes: %w", err)
		}
	}

	if opts.CollectResults {
		if err := a.collect(ctx); err != nil {
			return err
		}
	}

	reporter := services.NewReporter(a.store, charts.NewPNGRenderer(a.cfg.PlotsDir, a.logger), a.stdout, a.logger)

	if opts.PlotDistanceTime {
		if _, err := reporter.PlotDistanceTime(ctx, opts.Countries); err != nil {
			return err
		}
	}
	if opts.PlotVelocities {
		if err := reporter.PlotVelocities(ctx, opts.Countries, opts.VelocityStyle); err != nil {
			return err
		}
	}
	if opts.PlotAveragedVelocity {
		if _, err := reporter.PlotAveragedVelocity(ctx, opts.Countries); err != nil {
			return err
		}
	}
	if opts.ListDownloadedData {
		if _, err := reporter.ListDownloaded(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (a *app) collect(ctx context.Context) error {
	locs, err := a.loadLocations()
	if err != nil {
		return err
	}

	provider, err := distance.NewDistanceMatrixProvider(a.cfg.DistanceMatrixURL, a.cfg.RoutingTimeout, a.logger, a.metrics)
	if err != nil {
		return err
	}

	collector := services.NewCollector(locs, provider, a.store, a.logger, a.metrics)
	collector.RandomMinRows = a.cfg.RandomMinRows

	_, err = collector.Collect(ctx, services.CollectRequest{
		N:           a.opts.N,
		CountryCode: a.opts.Countries[0],
		KeyFile:     a.opts.KeyFile,
	})
	return err
}
