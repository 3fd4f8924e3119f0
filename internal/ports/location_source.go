package ports

import "journey-times/internal/domain"

// Read-only access to the postal-code reference table.
type LocationSource interface {
	// Number of reference rows per country code.
	CountryCounts() map[string]int
	// All rows of one country, indexed densely from 0. Empty for unknown codes.
	Subset(countryCode string) []domain.Location
}
