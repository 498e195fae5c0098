package model

import (
	"errors"
	"testing"
)

func TestFiltersNormalize_PaginationClamps(t *testing.T) {
	f := Filters{}
	if err := f.Normalize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, f.Limit)
	}

	f = Filters{Limit: 10000, Offset: -5}
	if err := f.Normalize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Limit != MaxLimit {
		t.Errorf("expected limit clamped to %d, got %d", MaxLimit, f.Limit)
	}
	if f.Offset != 0 {
		t.Errorf("expected offset clamped to 0, got %d", f.Offset)
	}
}

func TestFiltersNormalize_TrimsText(t *testing.T) {
	f := Filters{City: "  Austin ", State: " tx", Search: " oak "}
	if err := f.Normalize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.City != "Austin" || f.State != "tx" || f.Search != "oak" {
		t.Errorf("expected trimmed fields, got %+v", f)
	}
}

func TestFiltersNormalize_RadiusRequiresCenter(t *testing.T) {
	f := Filters{RadiusMiles: Float(10)}
	if err := f.Normalize(); !errors.Is(err, ErrInvalidFilters) {
		t.Errorf("radius without center should be invalid, got %v", err)
	}

	f = Filters{RadiusMiles: Float(-1), CenterLatitude: Float(30), CenterLongitude: Float(-97)}
	if err := f.Normalize(); !errors.Is(err, ErrInvalidFilters) {
		t.Errorf("non-positive radius should be invalid, got %v", err)
	}

	f = Filters{RadiusMiles: Float(10), CenterLatitude: Float(30), CenterLongitude: Float(-97)}
	if err := f.Normalize(); err != nil {
		t.Errorf("complete radius search should be valid, got %v", err)
	}
}

func TestParseOccupancy(t *testing.T) {
	cases := []struct {
		in      string
		want    Occupancy
		wantErr bool
	}{
		{"owner", OccupancyOwnerOccupied, false},
		{"OWNER_OCCUPIED", OccupancyOwnerOccupied, false},
		{"owner-occupied", OccupancyOwnerOccupied, false},
		{"absentee", OccupancyAbsentee, false},
		{"investor", OccupancyAbsentee, false},
		{"non_owner", OccupancyAbsentee, false},
		{"tenant", OccupancyUnknown, true},
		{"", OccupancyUnknown, true},
	}
	for _, tc := range cases {
		got, err := ParseOccupancy(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidFilters) {
				t.Errorf("%q: expected ErrInvalidFilters, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestMarketValue_ModelFirst(t *testing.T) {
	p := Property{ModelValue: Float(500000), TotalMarketValue: Float(400000)}
	if got := p.MarketValue(); got == nil || *got != 500000 {
		t.Errorf("expected model value to win, got %v", got)
	}

	p = Property{TotalMarketValue: Float(400000)}
	if got := p.MarketValue(); got == nil || *got != 400000 {
		t.Errorf("expected market value fallback, got %v", got)
	}

	p = Property{}
	if got := p.MarketValue(); got != nil {
		t.Errorf("expected nil without either value, got %v", got)
	}
}
