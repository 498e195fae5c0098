// Package filter applies the composable listing predicate over scored
// properties. All constraints are optional and AND-combined; the input order
// is preserved.
package filter

import (
	"strings"

	"github.com/ppiankov/leadradar/internal/model"
)

// Apply filters the scored batch in place and returns the matches. When a
// radius filter is active, matching properties are annotated with their
// distance from the search center; otherwise the distance annotation is
// cleared on every property so stale values never leak between requests.
func Apply(properties []model.ScoredProperty, filters model.Filters) []model.ScoredProperty {
	matched := make([]model.ScoredProperty, 0, len(properties))
	for i := range properties {
		p := &properties[i]
		if !filters.HasRadius() {
			p.DistanceFromSearchCenterMiles = nil
		}
		if matches(p, &filters) {
			matched = append(matched, *p)
		}
	}
	return matched
}

func matches(p *model.ScoredProperty, f *model.Filters) bool {
	if f.City != "" && !containsFold(p.City, f.City) {
		return false
	}
	if f.State != "" && !hasPrefixFold(p.State, f.State) {
		return false
	}
	if f.PostalCode != "" && !hasPrefixFold(p.PostalCode, f.PostalCode) {
		return false
	}
	if f.OwnerOccupancy != "" && p.OwnerOccupancy != f.OwnerOccupancy {
		return false
	}

	// Absent numeric signals count as zero, so positive minimums exclude them.
	if f.MinEquity != nil && orZero(p.EquityAvailable) < *f.MinEquity {
		return false
	}
	if f.MinValueGap != nil && orZero(p.ValueGap) < *f.MinValueGap {
		return false
	}
	if f.MinMarketValue != nil || f.MaxMarketValue != nil {
		market := orZero(p.MarketValue())
		if f.MinMarketValue != nil && market < *f.MinMarketValue {
			return false
		}
		if f.MaxMarketValue != nil && market > *f.MaxMarketValue {
			return false
		}
	}
	if f.MinAssessedValue != nil || f.MaxAssessedValue != nil {
		assessed := orZero(p.TotalAssessedValue)
		if f.MinAssessedValue != nil && assessed < *f.MinAssessedValue {
			return false
		}
		if f.MaxAssessedValue != nil && assessed > *f.MaxAssessedValue {
			return false
		}
	}
	if f.MinScore != nil && p.ListingScore < *f.MinScore {
		return false
	}

	if f.HasRadius() {
		if p.Latitude == nil || p.Longitude == nil {
			return false
		}
		distance := Haversine(*f.CenterLatitude, *f.CenterLongitude, *p.Latitude, *p.Longitude)
		p.DistanceFromSearchCenterMiles = model.Float(distance)
		if distance > *f.RadiusMiles {
			return false
		}
	}

	if f.Search != "" && !matchesSearch(p, f.Search) {
		return false
	}
	return true
}

// matchesSearch scans a fixed haystack of address, owner and identifier
// fields for the needle, case-insensitively
func matchesSearch(p *model.ScoredProperty, needle string) bool {
	haystacks := []string{
		p.Address,
		p.City,
		p.State,
		p.Owner.Name,
		p.Owner.AddressLine1,
		p.Owner.Phone,
		p.Owner.Email,
		p.ID,
		p.ParcelID,
	}
	for _, hay := range haystacks {
		if containsFold(hay, needle) {
			return true
		}
	}
	return false
}

func containsFold(value, query string) bool {
	if value == "" {
		return false
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(query))
}

func hasPrefixFold(value, query string) bool {
	if value == "" {
		return false
	}
	return strings.HasPrefix(strings.ToLower(value), strings.ToLower(query))
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0.0
	}
	return *v
}
