package domain

// Represents a single row of the postal-code reference table.
// Locations are loaded once and never modified.
type Location struct {
	CountryCode string
	PostalCode  string
	Coordinates
}
