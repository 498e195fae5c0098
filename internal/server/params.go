package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ppiankov/leadradar/internal/model"
)

// parseFilters builds a Filters from query parameters. Shape errors (a
// non-numeric threshold, a bad radius) are reported as filter validation
// errors; semantic validation happens in Filters.Normalize inside the core.
func parseFilters(r *http.Request) (model.Filters, error) {
	q := r.URL.Query()
	filters := model.Filters{
		City:       q.Get("city"),
		State:      q.Get("state"),
		PostalCode: q.Get("postal_code"),
		Search:     q.Get("search"),
	}

	var err error
	if filters.MinEquity, err = floatParam(r, "min_equity"); err != nil {
		return filters, err
	}
	if filters.MinScore, err = floatParam(r, "min_score"); err != nil {
		return filters, err
	}
	if filters.MinValueGap, err = floatParam(r, "min_value_gap"); err != nil {
		return filters, err
	}
	if filters.MinMarketValue, err = floatParam(r, "min_market_value"); err != nil {
		return filters, err
	}
	if filters.MaxMarketValue, err = floatParam(r, "max_market_value"); err != nil {
		return filters, err
	}
	if filters.MinAssessedValue, err = floatParam(r, "min_assessed_value"); err != nil {
		return filters, err
	}
	if filters.MaxAssessedValue, err = floatParam(r, "max_assessed_value"); err != nil {
		return filters, err
	}
	if filters.CenterLatitude, err = floatParam(r, "center_latitude"); err != nil {
		return filters, err
	}
	if filters.CenterLongitude, err = floatParam(r, "center_longitude"); err != nil {
		return filters, err
	}
	if filters.RadiusMiles, err = floatParam(r, "radius_miles"); err != nil {
		return filters, err
	}

	if occ := q.Get("owner_occupancy"); occ != "" {
		filters.OwnerOccupancy = model.Occupancy(occ)
	}

	if filters.Limit, err = intParam(r, "limit", model.DefaultLimit); err != nil {
		return filters, err
	}
	if filters.Offset, err = intParam(r, "offset", 0); err != nil {
		return filters, err
	}
	return filters, nil
}

func floatParam(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errInvalid(fmt.Sprintf("%s must be numeric", name))
	}
	return model.Float(v), nil
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errInvalid(fmt.Sprintf("%s must be an integer", name))
	}
	return v, nil
}

func errInvalid(detail string) error {
	return fmt.Errorf("%w: %s", model.ErrInvalidFilters, detail)
}
