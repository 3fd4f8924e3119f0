package services

import (
	"context"
	"errors"
	"fmt"
	"journey-times/internal/domain"
	"journey-times/internal/platform/obs"
	"journey-times/internal/ports"
	"math/rand/v2"
	"sort"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// Country codes that ask the collector to pick a country itself.
const (
	RandomCountry      = "R"
	RandomCountryLong  = "Random"
	DefaultMinRandRows = 1000
)

var (
	ErrInvalidCountryCode = errors.New("not a valid Country Code (CC)")
	ErrNoEligibleCountry  = errors.New("no country has enough reference rows for random selection")
)

type CollectRequest struct {
	N           int
	CountryCode string
	// Optional; the first line is sent as the key query parameter.
	KeyFile string
}

type CollectSummary struct {
	RunID       string
	CountryCode string
	Requested   int
	Attempted   int
	Stored      int
	Skipped     int
}

// Collector samples random postal-code pairs of one country, queries the
// routing provider for each pair and appends the results to the store.
type Collector struct {
	Locations ports.LocationSource
	Provider  ports.DistanceProvider
	Store     ports.ResultsRepository

	Clock   clockwork.Clock
	Rand    *rand.Rand
	Logger  logrus.FieldLogger
	Metrics *obs.Metrics

	// Minimum reference rows a country needs to be picked at random.
	RandomMinRows int
}

func NewCollector(
	locations ports.LocationSource,
	provider ports.DistanceProvider,
	store ports.ResultsRepository,
	logger logrus.FieldLogger,
	metrics *obs.Metrics,
) *Collector {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Collector{
		Locations:     locations,
		Provider:      provider,
		Store:         store,
		Clock:         clockwork.NewRealClock(),
		Rand:          rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		Logger:        logger,
		Metrics:       metrics,
		RandomMinRows: DefaultMinRandRows,
	}
}

// Collect stores up to req.N samples. Samples the provider reports as bad are
// logged and skipped without being retried. Any other provider or store
// error ends the run and is returned with the summary so far.
func (c *Collector) Collect(ctx context.Context, req CollectRequest) (CollectSummary, error) {
	runID := obs.RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = obs.WithRunID(ctx, runID)
	}
	log := c.Logger.WithField("run_id", runID)

	summary := CollectSummary{RunID: runID, CountryCode: req.CountryCode, Requested: req.N}
	if req.N < 0 {
		return summary, fmt.Errorf("collect: sample count must not be negative, got %d", req.N)
	}

	cc := req.CountryCode
	n := req.N
	var rows []domain.Location

	if cc == RandomCountry || cc == RandomCountryLong {
		picked, err := c.pickRandomCountry()
		if err != nil {
			return summary, fmt.Errorf("collect: %w", err)
		}
		cc = picked
		rows = c.Locations.Subset(cc)
		log.WithField("country", cc).Infof("Country picked at random is: %s", cc)
	} else {
		rows = c.Locations.Subset(cc)
		if len(rows) == 0 {
			return summary, fmt.Errorf("collect: %s is %w", cc, ErrInvalidCountryCode)
		}
		if len(rows) < n {
			log.WithFields(logrus.Fields{
				"country":   cc,
				"requested": n,
				"available": len(rows),
			}).Warnf("Number of data rows for CC=%s is less than the requested number of data points N=%d. Reducing data rows to N=%d", cc, n, len(rows))
			n = len(rows)
		}
	}
	summary.CountryCode = cc

	params := ports.QueryParams{}
	if req.KeyFile != "" {
		key, err := ReadAPIKey(req.KeyFile)
		if err != nil {
			return summary, fmt.Errorf("collect: %w", err)
		}
		params["key"] = key
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("collect %s: stopped after %d samples: %w", cc, summary.Attempted, err)
		}

		origin := rows[c.Rand.IntN(len(rows))].Coordinates.String()
		destination := rows[c.Rand.IntN(len(rows))].Coordinates.String()
		summary.Attempted++

		res, err := c.Provider.GetDistance(ctx, origin, destination, params)
		if errors.Is(err, ports.ErrBadSample) {
			log.WithError(err).Warnf("Bad data for %s %s", origin, destination)
			summary.Skipped++
			if c.Metrics != nil {
				c.Metrics.SamplesSkipped.WithLabelValues(skipReason(err)).Inc()
			}
			continue
		}
		if err != nil {
			return summary, fmt.Errorf("collect %s: sample %d: %w", cc, i+1, err)
		}

		record := domain.ResultRecord{
			Origin:          origin,
			Destination:     destination,
			DurationSeconds: res.DurationSeconds,
			DistanceMeters:  res.DistanceMeters,
			AvgSpeedKmph:    res.AvgSpeedKmph,
			Date:            domain.DateStamp(c.Clock.Now()),
		}
		if err := c.Store.Append(ctx, cc, record); err != nil {
			return summary, fmt.Errorf("collect %s: store sample %d: %w", cc, i+1, err)
		}
		summary.Stored++
		if c.Metrics != nil {
			c.Metrics.SamplesStored.Inc()
		}
	}

	log.WithFields(logrus.Fields{
		"country":   cc,
		"attempted": summary.Attempted,
		"stored":    summary.Stored,
		"skipped":   summary.Skipped,
	}).Info("collection finished")

	return summary, nil
}

// pickRandomCountry draws uniformly among the countries with at least
// RandomMinRows reference rows.
func (c *Collector) pickRandomCountry() (string, error) {
	minRows := c.RandomMinRows
	if minRows <= 0 {
		minRows = DefaultMinRandRows
	}

	eligible := make([]string, 0, 64)
	for cc, n := range c.Locations.CountryCounts() {
		if n >= minRows {
			eligible = append(eligible, cc)
		}
	}
	if len(eligible) == 0 {
		return "", fmt.Errorf("%w (minimum %d rows)", ErrNoEligibleCountry, minRows)
	}
	sort.Strings(eligible)

	return eligible[c.Rand.IntN(len(eligible))], nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, ports.ErrZeroDuration):
		return "zero_duration"
	case errors.Is(err, ports.ErrMissingField):
		return "missing_field"
	case errors.Is(err, ports.ErrMalformedResponse):
		return "malformed"
	default:
		return "other"
	}
}
