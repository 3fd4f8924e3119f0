package ports

import (
	"context"
	"errors"
	"fmt"
)

// Sample-level failures. Every variant wraps ErrBadSample so callers can skip
// the sample with a single errors.Is check.
var (
	ErrBadSample = errors.New("bad sample")

	// The response carried no rows or no elements.
	ErrMalformedResponse = fmt.Errorf("%w: response does not match expectations", ErrBadSample)
	// The first element lacks a duration or distance value.
	ErrMissingField = fmt.Errorf("%w: missing duration or distance", ErrBadSample)
	// The route has a zero duration, so no average speed exists.
	ErrZeroDuration = fmt.Errorf("%w: zero duration", ErrBadSample)
)

// Distance, travel duration and the implied average speed between two locations.
type DistanceResult struct {
	DistanceMeters  float64
	DurationSeconds float64
	AvgSpeedKmph    float64
}

// Extra query parameters sent with a routing request (e.g. the API key).
type QueryParams map[string]string

// Contract for retrieving travel distance and duration between locations.
type DistanceProvider interface {
	// Return travel distance, duration and average speed between two "lat,lon" locations.
	GetDistance(ctx context.Context, origin string, destination string, params QueryParams) (DistanceResult, error)
}
