package normalize

import (
	"testing"
	"time"

	"github.com/ppiankov/leadradar/internal/model"
)

func TestNormalize_IdentifierFallbackChain(t *testing.T) {
	cases := []struct {
		name string
		raw  model.RawRecord
		want string
	}{
		{"provider id wins", model.RawRecord{"_id": "abc", "id": "x", "parcelId": "y"}, "abc"},
		{"generic id next", model.RawRecord{"id": "x", "parcelId": "y"}, "x"},
		{"parcel id next", model.RawRecord{"parcelId": "y"}, "y"},
		{"address next", model.RawRecord{"address": "12 Oak St"}, "12 Oak St"},
		{"unknown last", model.RawRecord{}, "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.raw).ID; got != tc.want {
				t.Errorf("expected id %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNormalize_AddressComposition(t *testing.T) {
	raw := model.RawRecord{
		"streetNumber":          "1200",
		"streetDirectionPrefix": "N",
		"streetName":            "Lamar",
		"streetType":            "Blvd",
	}
	p := Normalize(raw)
	if p.Address != "1200 N Lamar Blvd" {
		t.Errorf("expected composed address, got %q", p.Address)
	}

	full := model.RawRecord{"addressFull": "1200 N Lamar Blvd", "streetName": "Ignored"}
	if got := Normalize(full).Address; got != "1200 N Lamar Blvd" {
		t.Errorf("full address should win over parts, got %q", got)
	}
}

func TestNormalize_NumericCoercion(t *testing.T) {
	raw := model.RawRecord{
		"totalAssessedValue": "250000",
		"totalMarketValue":   300000.0,
		"modelValue":         "",
		"latitude":           "not-a-number",
		"longitude":          nil,
	}
	p := Normalize(raw)

	if p.TotalAssessedValue == nil || *p.TotalAssessedValue != 250000 {
		t.Errorf("expected assessed 250000, got %v", p.TotalAssessedValue)
	}
	if p.TotalMarketValue == nil || *p.TotalMarketValue != 300000 {
		t.Errorf("expected market 300000, got %v", p.TotalMarketValue)
	}
	if p.ModelValue != nil {
		t.Error("empty string should coerce to absent")
	}
	if p.Latitude != nil {
		t.Error("unparseable latitude should coerce to absent, not error")
	}
	if p.Longitude != nil {
		t.Error("nil longitude should stay absent")
	}
}

func TestNormalize_DateParsing(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want *time.Time
	}{
		{"nil", nil, nil},
		{"empty", "", nil},
		{"sentinel", "00000000", nil},
		{"eight digit", "20210315", datePtr(2021, 3, 15)},
		{"eight digit number", float64(20210315), datePtr(2021, 3, 15)},
		{"iso date", "2021-03-15", datePtr(2021, 3, 15)},
		{"garbage", "not a date", nil},
		{"wrong shape", []string{"2021"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Normalize(model.RawRecord{"transferDate": tc.raw})
			if tc.want == nil {
				if p.TransferDate != nil {
					t.Errorf("expected absent date, got %v", p.TransferDate)
				}
				return
			}
			if p.TransferDate == nil || !p.TransferDate.Equal(*tc.want) {
				t.Errorf("expected %v, got %v", tc.want, p.TransferDate)
			}
		})
	}
}

func TestNormalize_ValueGap(t *testing.T) {
	// Model value takes precedence over total market value
	p := Normalize(model.RawRecord{
		"modelValue":         400000,
		"totalMarketValue":   350000,
		"totalAssessedValue": 300000,
	})
	if p.ValueGap == nil || *p.ValueGap != 100000 {
		t.Errorf("expected gap 100000 from model value, got %v", p.ValueGap)
	}

	// Floored at zero
	p = Normalize(model.RawRecord{
		"totalMarketValue":   200000,
		"totalAssessedValue": 300000,
	})
	if p.ValueGap == nil || *p.ValueGap != 0 {
		t.Errorf("expected gap floored at 0, got %v", p.ValueGap)
	}

	// Absent when either side is missing
	p = Normalize(model.RawRecord{"totalMarketValue": 200000})
	if p.ValueGap != nil {
		t.Errorf("expected absent gap without assessed value, got %v", p.ValueGap)
	}
}

func TestNormalize_EquityFallbacks(t *testing.T) {
	p := Normalize(model.RawRecord{"availableEquity": "120000", "equityCurrentBalance": 90000})
	if p.EquityAvailable == nil || *p.EquityAvailable != 120000 {
		t.Errorf("expected equity 120000, got %v", p.EquityAvailable)
	}
	if p.EquityCurrentEstBal == nil || *p.EquityCurrentEstBal != 90000 {
		t.Errorf("expected balance 90000, got %v", p.EquityCurrentEstBal)
	}

	// equityCurrentEstBal backfills equity available
	p = Normalize(model.RawRecord{"equityCurrentEstBal": 75000})
	if p.EquityAvailable == nil || *p.EquityAvailable != 75000 {
		t.Errorf("expected equity backfilled to 75000, got %v", p.EquityAvailable)
	}
}

func TestNormalize_OwnerOccupancy(t *testing.T) {
	base := model.RawRecord{
		"address":           "12 Oak St",
		"city":              "Austin",
		"state":             "TX",
		"zipCode":           "78701",
		"ownerAddressLine1": "12 oak st ",
		"ownerCity":         "AUSTIN",
		"ownerState":        "tx",
		"ownerZipCode":      "78701",
	}

	if got := Normalize(base).OwnerOccupancy; got != model.OccupancyOwnerOccupied {
		t.Errorf("matching tuples should be owner occupied, got %q", got)
	}

	absentee := model.RawRecord{}
	for k, v := range base {
		absentee[k] = v
	}
	absentee["ownerCity"] = "Dallas"
	if got := Normalize(absentee).OwnerOccupancy; got != model.OccupancyAbsentee {
		t.Errorf("differing tuples should be absentee, got %q", got)
	}

	partial := model.RawRecord{}
	for k, v := range base {
		partial[k] = v
	}
	partial["ownerAddressLine1"] = ""
	if got := Normalize(partial).OwnerOccupancy; got != model.OccupancyUnknown {
		t.Errorf("incomplete tuple must stay unknown, got %q", got)
	}
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}
