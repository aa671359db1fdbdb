package model

// Service is a bookable catalog entry. The catalog is externally managed
// and read-only from this service's perspective.
type Service struct {
	ID          string
	Name        string
	Description string
	ImageURL    string
	Price       float64 // non-negative by catalog contract
	Available   bool
}
