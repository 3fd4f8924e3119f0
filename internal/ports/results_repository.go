package ports

import (
	"context"
	"errors"
	"journey-times/internal/domain"
)

// ErrNoResults is returned by LoadAll when nothing was ever stored for a country.
var ErrNoResults = errors.New("no stored results")

// Port: persistence of sampled journeys, partitioned by country code.
type ResultsRepository interface {
	// Append one record to the country's results.
	Append(ctx context.Context, countryCode string, record domain.ResultRecord) error
	// Load every record stored for the country, in insertion order.
	LoadAll(ctx context.Context, countryCode string) ([]domain.ResultRecord, error)
	// Country codes that have stored results.
	Countries(ctx context.Context) ([]string, error)
}
