package contracts

import (
	"fmt"
	"time"
)

// Listing is the normalized, source-agnostic listing schema.
// Connectors are responsible for producing it; the underwriting
// pipeline never mutates it.
type Listing struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	Province     string    `json:"province"`
	PostalCode   string    `json:"postal_code"`
	Price        float64   `json:"price"`
	Bedrooms     int       `json:"bedrooms"`
	Bathrooms    float64   `json:"bathrooms"`
	PropertyType string    `json:"property_type"`
	Description  string    `json:"description"`
	URL          string    `json:"url"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// ValidationError marks a listing that must not reach the finance model.
// It is surfaced per listing and never aborts a batch.
type ValidationError struct {
	ListingID string
	Field     string
	Message   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("listing %s: %s: %s", e.ListingID, e.Field, e.Message)
}

// Validate checks the invariants connectors must guarantee.
func (l *Listing) Validate() error {
	if l.ID == "" {
		return ValidationError{ListingID: l.ID, Field: "id", Message: "required"}
	}
	if l.Price <= 0 {
		return ValidationError{ListingID: l.ID, Field: "price", Message: "must be > 0"}
	}
	if l.Bedrooms < 0 {
		return ValidationError{ListingID: l.ID, Field: "bedrooms", Message: "must be >= 0"}
	}
	return nil
}
