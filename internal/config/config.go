package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const DefaultDistanceMatrixURL = "https://maps.googleapis.com/maps/api/distancematrix/json"

// Config holds every path, endpoint and tuning value of the tool. Values come
// from the environment (optionally seeded from a .env file by the caller).
type Config struct {
	LocationsFile string
	ResultsDir    string
	PlotsDir      string

	DistanceMatrixURL string
	// Zero means no timeout.
	RoutingTimeout time.Duration
	// Minimum reference rows a country needs to be picked at random.
	RandomMinRows int

	LogLevel      string
	LogFile       string
	LogMaxAgeDays int

	MetricsTextfile string

	// Optional SQL mirror of the results files ("pgx" or "sqlite").
	ResultsDBDriver string
	ResultsDBDSN    string
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	routingTimeout, err := time.ParseDuration(Get("ROUTING_TIMEOUT", "0s"))
	if err != nil || routingTimeout < 0 {
		return nil, fmt.Errorf("load config: invalid ROUTING_TIMEOUT %q", os.Getenv("ROUTING_TIMEOUT"))
	}

	randomMinRows, err := strconv.Atoi(Get("RANDOM_MIN_ROWS", "1000"))
	if err != nil || randomMinRows < 1 {
		return nil, fmt.Errorf("load config: invalid RANDOM_MIN_ROWS %q", os.Getenv("RANDOM_MIN_ROWS"))
	}

	logMaxAge, err := strconv.Atoi(Get("LOG_MAX_AGE_DAYS", "30"))
	if err != nil || logMaxAge < 0 {
		return nil, fmt.Errorf("load config: invalid LOG_MAX_AGE_DAYS %q", os.Getenv("LOG_MAX_AGE_DAYS"))
	}

	cfg := &Config{
		LocationsFile:     Get("LOCATIONS_FILE", "./Location_database/allCountries.txt"),
		ResultsDir:        Get("RESULTS_DIR", "./Results_database"),
		PlotsDir:          Get("PLOTS_DIR", "./plots"),
		DistanceMatrixURL: Get("DISTANCE_MATRIX_URL", DefaultDistanceMatrixURL),
		RoutingTimeout:    routingTimeout,
		RandomMinRows:     randomMinRows,
		LogLevel:          Get("LOG_LEVEL", "INFO"),
		LogFile:           Get("LOG_FILE", ""),
		LogMaxAgeDays:     logMaxAge,
		MetricsTextfile:   Get("METRICS_TEXTFILE", ""),
		ResultsDBDriver:   Get("RESULTS_DB_DRIVER", ""),
		ResultsDBDSN:      Get("RESULTS_DB_DSN", ""),
	}

	switch cfg.ResultsDBDriver {
	case "", "pgx", "sqlite":
	default:
		return nil, fmt.Errorf("load config: unsupported RESULTS_DB_DRIVER %q (want pgx or sqlite)", cfg.ResultsDBDriver)
	}
	if cfg.ResultsDBDriver != "" && cfg.ResultsDBDSN == "" {
		return nil, fmt.Errorf("load config: RESULTS_DB_DRIVER is %q but RESULTS_DB_DSN is not set", cfg.ResultsDBDriver)
	}

	return cfg, nil
}
