package domain

import (
	"fmt"
	"time"
)

// Represents one sampled journey between two locations of the same country.
// A ResultRecord is created after a successful routing query and is
// never mutated afterwards.
type ResultRecord struct {
	Origin          string
	Destination     string
	DurationSeconds float64
	DistanceMeters  float64
	AvgSpeedKmph    float64
	Date            string
}

// MpsToKmph converts a speed in metres per second to kilometres per hour.
func MpsToKmph(v float64) float64 {
	return v * 1e-3 * (60.0 * 60.0)
}

// DateStamp formats t in UTC as YEAR_MONTH_DAY without zero padding.
func DateStamp(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%d_%d_%d", t.Year(), int(t.Month()), t.Day())
}
