package model

import "time"

// RawRecord is a single property record exactly as the upstream provider
// returned it. Field names vary between counties and data vendors; the
// normalizer is responsible for mapping them onto Property.
type RawRecord map[string]any

// Occupancy classifies whether the owner lives at the property
type Occupancy string

const (
	OccupancyOwnerOccupied Occupancy = "owner_occupied"
	OccupancyAbsentee      Occupancy = "absentee"
	// OccupancyUnknown is the zero value: the address tuples were incomplete
	// so occupancy is never guessed
	OccupancyUnknown Occupancy = ""
)

// OwnerContact holds the owner's mailing address and contact details
type OwnerContact struct {
	Name         string `json:"name,omitempty"`
	AddressLine1 string `json:"address_line1,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
}

// Property is the canonical parcel entity produced by normalization.
// Optional numeric fields are pointers: nil means the provider did not supply
// a parseable value, which scoring and filtering treat differently from zero.
type Property struct {
	ID                  string       `json:"id"`
	ParcelID            string       `json:"parcel_id,omitempty"`
	Address             string       `json:"address,omitempty"`
	City                string       `json:"city,omitempty"`
	State               string       `json:"state,omitempty"`
	PostalCode          string       `json:"postal_code,omitempty"`
	Neighborhood        string       `json:"neighborhood,omitempty"`
	Latitude            *float64     `json:"latitude,omitempty"`
	Longitude           *float64     `json:"longitude,omitempty"`
	TotalAssessedValue  *float64     `json:"total_assessed_value,omitempty"`
	TotalMarketValue    *float64     `json:"total_market_value,omitempty"`
	ModelValue          *float64     `json:"model_value,omitempty"`
	EquityCurrentEstBal *float64     `json:"equity_current_est_bal,omitempty"`
	EquityAvailable     *float64     `json:"equity_available,omitempty"`
	ValueGap            *float64     `json:"value_gap,omitempty"`
	TransferDate        *time.Time   `json:"transfer_date,omitempty"`
	Owner               OwnerContact `json:"owner"`
	OwnerOccupancy      Occupancy    `json:"owner_occupancy,omitempty"`

	// DistanceFromSearchCenterMiles is set by the filter engine when a radius
	// filter is active and cleared otherwise. Always present in the output
	// shape, null when no radius search ran.
	DistanceFromSearchCenterMiles *float64 `json:"distance_from_search_center_miles"`
}

// MarketValue resolves the best available market estimate: model value first,
// then the assessor's total market value. Used the same way by the value gap
// derivation and both market value filter bounds.
func (p *Property) MarketValue() *float64 {
	if p.ModelValue != nil {
		return p.ModelValue
	}
	return p.TotalMarketValue
}

// ScoreBreakdown exposes the normalized sub-scores behind a listing score
type ScoreBreakdown struct {
	Equity   float64 `json:"equity"`
	ValueGap float64 `json:"value_gap"`
	Recency  float64 `json:"recency"`
}

// ScoredProperty is a Property with its computed listing score
type ScoredProperty struct {
	Property
	ListingScore   float64        `json:"listing_score"`
	ScoreBreakdown ScoreBreakdown `json:"score_breakdown"`
}

// ListResponse is one page of scored, filtered properties
type ListResponse struct {
	Items  []ScoredProperty `json:"items"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// LeadPack is a ranked, size-capped bucket of properties sharing a group key.
// Total counts the bucket before truncation to the pack size.
type LeadPack struct {
	Label         string           `json:"label"`
	Total         int              `json:"total"`
	TopProperties []ScoredProperty `json:"top_properties"`
}

// LeadPackResponse is the result of a pack build
type LeadPackResponse struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Packs       []LeadPack `json:"packs"`

	// Digest is an optional LLM-generated summary of the packs. It is produced
	// after scoring and never feeds back into it.
	Digest string `json:"digest,omitempty"`
}

// Float returns a pointer to v. Convenience for optional numeric fields.
func Float(v float64) *float64 {
	return &v
}
