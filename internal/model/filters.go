package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFilters marks a filter combination that can never be satisfied.
// It is raised before any cache or upstream access.
var ErrInvalidFilters = errors.New("invalid filters")

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Filters is the query specification for a property listing. All fields are
// optional and AND-combined; the zero value matches everything.
type Filters struct {
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`

	MinEquity        *float64 `json:"min_equity,omitempty"`
	MinScore         *float64 `json:"min_score,omitempty"`
	MinValueGap      *float64 `json:"min_value_gap,omitempty"`
	MinMarketValue   *float64 `json:"min_market_value,omitempty"`
	MaxMarketValue   *float64 `json:"max_market_value,omitempty"`
	MinAssessedValue *float64 `json:"min_assessed_value,omitempty"`
	MaxAssessedValue *float64 `json:"max_assessed_value,omitempty"`

	OwnerOccupancy Occupancy `json:"owner_occupancy,omitempty"`

	CenterLatitude  *float64 `json:"center_latitude,omitempty"`
	CenterLongitude *float64 `json:"center_longitude,omitempty"`
	RadiusMiles     *float64 `json:"radius_miles,omitempty"`

	Search string `json:"search,omitempty"`

	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// HasRadius reports whether a radius search was requested
func (f *Filters) HasRadius() bool {
	return f.RadiusMiles != nil
}

// HasCenter reports whether both center coordinates are present
func (f *Filters) HasCenter() bool {
	return f.CenterLatitude != nil && f.CenterLongitude != nil
}

// Normalize trims text filters, clamps pagination, resolves occupancy aliases
// and validates the radius invariant. Returns an error wrapping
// ErrInvalidFilters for combinations that can never be valid.
func (f *Filters) Normalize() error {
	f.City = strings.TrimSpace(f.City)
	f.State = strings.TrimSpace(f.State)
	f.PostalCode = strings.TrimSpace(f.PostalCode)
	f.Search = strings.TrimSpace(f.Search)

	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	if f.OwnerOccupancy != "" {
		occ, err := ParseOccupancy(string(f.OwnerOccupancy))
		if err != nil {
			return err
		}
		f.OwnerOccupancy = occ
	}

	if f.RadiusMiles != nil && *f.RadiusMiles <= 0 {
		return fmt.Errorf("%w: radius_miles must be > 0", ErrInvalidFilters)
	}
	if f.HasRadius() && !f.HasCenter() {
		return fmt.Errorf("%w: center_latitude and center_longitude are required with radius_miles", ErrInvalidFilters)
	}

	return nil
}

// ParseOccupancy maps user-facing occupancy labels onto the canonical values
func ParseOccupancy(value string) (Occupancy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "owner", "owner_occupied", "owner-occupied":
		return OccupancyOwnerOccupied, nil
	case "absentee", "investor", "non_owner":
		return OccupancyAbsentee, nil
	default:
		return OccupancyUnknown, fmt.Errorf("%w: unsupported owner_occupancy value %q", ErrInvalidFilters, value)
	}
}
