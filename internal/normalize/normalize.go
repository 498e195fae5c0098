// Package normalize maps provider-specific raw records onto the canonical
// Property shape. Every coercion is tolerant: a malformed field becomes
// absent, never an error, so one bad record cannot break a listing.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/leadradar/internal/model"
)

// sentinel the provider uses for "no transfer date"
const noDateSentinel = "00000000"

// Normalize converts a raw provider record into a Property. Pure function:
// no I/O, no side effects.
func Normalize(raw model.RawRecord) model.Property {
	address := firstString(raw, "addressFull", "addressFormal", "address", "addressRaw")
	if address == "" {
		address = composeAddress(raw)
	}

	id := firstString(raw, "_id", "id", "parcelId")
	if id == "" {
		id = address
	}
	if id == "" {
		id = "unknown"
	}

	p := model.Property{
		ID:                  id,
		ParcelID:            firstString(raw, "parcelId"),
		Address:             address,
		City:                firstString(raw, "city"),
		State:               firstString(raw, "state"),
		PostalCode:          firstString(raw, "zipCode", "zipCodePlusFour"),
		Neighborhood:        firstString(raw, "neighborhood"),
		Latitude:            toFloat(raw["latitude"]),
		Longitude:           toFloat(raw["longitude"]),
		TotalAssessedValue:  toFloat(raw["totalAssessedValue"]),
		TotalMarketValue:    toFloat(raw["totalMarketValue"]),
		ModelValue:          toFloat(raw["modelValue"]),
		EquityCurrentEstBal: toFloat(firstNonNull(raw, "equityCurrentEstBal", "equityCurrentBalance")),
		EquityAvailable:     toFloat(firstNonNull(raw, "equityAvailable", "availableEquity", "equityCurrentEstBal")),
		TransferDate:        parseDate(raw["transferDate"]),
		Owner: model.OwnerContact{
			Name:         firstString(raw, "ownerName", "owner1FullName"),
			AddressLine1: firstString(raw, "ownerAddressLine1", "ownerMailingAddress"),
			City:         firstString(raw, "ownerCity"),
			State:        firstString(raw, "ownerState"),
			PostalCode:   firstString(raw, "ownerZipCode"),
			Phone:        firstString(raw, "ownerPhone"),
			Email:        firstString(raw, "ownerEmail"),
		},
	}

	p.ValueGap = valueGap(&p)
	p.OwnerOccupancy = deriveOccupancy(&p)
	return p
}

// composeAddress joins the street part fields, skipping empty parts
func composeAddress(raw model.RawRecord) string {
	parts := []string{
		firstString(raw, "streetNumber"),
		firstString(raw, "streetDirectionPrefix"),
		firstString(raw, "streetName"),
		firstString(raw, "streetType"),
		firstString(raw, "streetDirectionSuffix"),
	}
	var present []string
	for _, part := range parts {
		if part != "" {
			present = append(present, part)
		}
	}
	return strings.Join(present, " ")
}

// valueGap is market minus assessed, floored at zero. Absent when either
// side is missing.
func valueGap(p *model.Property) *float64 {
	market := p.MarketValue()
	if market == nil || p.TotalAssessedValue == nil {
		return nil
	}
	gap := *market - *p.TotalAssessedValue
	if gap < 0 {
		gap = 0
	}
	return model.Float(gap)
}

// deriveOccupancy compares the property's address tuple against the owner's
// mailing address tuple. Occupancy is only classified when every component on
// both sides is populated; otherwise it stays unknown.
func deriveOccupancy(p *model.Property) model.Occupancy {
	propTuple := [4]string{
		canonical(p.Address),
		canonical(p.City),
		canonical(p.State),
		canonical(p.PostalCode),
	}
	ownerTuple := [4]string{
		canonical(p.Owner.AddressLine1),
		canonical(p.Owner.City),
		canonical(p.Owner.State),
		canonical(p.Owner.PostalCode),
	}
	for i := range propTuple {
		if propTuple[i] == "" || ownerTuple[i] == "" {
			return model.OccupancyUnknown
		}
	}
	if propTuple == ownerTuple {
		return model.OccupancyOwnerOccupied
	}
	return model.OccupancyAbsentee
}

func canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// firstString returns the first key whose value renders to a non-empty string
func firstString(raw model.RawRecord, keys ...string) string {
	for _, key := range keys {
		if s := asString(raw[key]); s != "" {
			return s
		}
	}
	return ""
}

// firstNonNull returns the first value that is neither nil nor empty string
func firstNonNull(raw model.RawRecord, keys ...string) any {
	for _, key := range keys {
		value := raw[key]
		if value == nil {
			continue
		}
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		return value
	}
	return nil
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		// JSON numbers decode as float64; render integers without exponent
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// toFloat coerces a scalar to a float, absent on anything unparseable
func toFloat(value any) *float64 {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return model.Float(v)
	case float32:
		return model.Float(float64(v))
	case int:
		return model.Float(float64(v))
	case int64:
		return model.Float(float64(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return model.Float(f)
	default:
		return nil
	}
}

// parseDate accepts the provider's 8-digit YYYYMMDD form, ISO-8601 dates and
// timestamps, and treats the 00000000 sentinel as absent. Never errors.
func parseDate(value any) *time.Time {
	var s string
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		s = strings.TrimSpace(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		s = strconv.Itoa(v)
	default:
		return nil
	}
	if s == "" || s == noDateSentinel {
		return nil
	}

	if len(s) == 8 && isDigits(s) {
		t, err := time.Parse("20060102", s)
		if err != nil {
			return nil
		}
		return &t
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
