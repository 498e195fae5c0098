package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/leadradar/internal/cache"
	"github.com/ppiankov/leadradar/internal/llm"
	"github.com/ppiankov/leadradar/internal/model"
	"github.com/ppiankov/leadradar/internal/score"
)

// fixedSource serves a canned raw snapshot and counts fetches
type fixedSource struct {
	fetches atomic.Int64
	records []model.RawRecord
	err     error
}

func (s *fixedSource) FetchAll(ctx context.Context, maxRecords int) ([]model.RawRecord, error) {
	s.fetches.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

// stubDigester returns a fixed digest or error
type stubDigester struct {
	text string
	err  error
}

func (d *stubDigester) Name() string { return "stub" }

func (d *stubDigester) Digest(ctx context.Context, req llm.DigestRequest) (*llm.DigestResponse, error) {
	if d.err != nil {
		return nil, d.err
	}
	return &llm.DigestResponse{Text: d.text, Model: "stub"}, nil
}

func rawRecord(id, postal string, equity float64, transferDaysAgo int) model.RawRecord {
	return model.RawRecord{
		"_id":                id,
		"address":            id + " Oak St",
		"city":               "Austin",
		"state":              "TX",
		"zipCode":            postal,
		"availableEquity":    equity,
		"totalAssessedValue": 200000,
		"totalMarketValue":   250000,
		"transferDate":       time.Now().AddDate(0, 0, -transferDaysAgo).Format("2006-01-02"),
	}
}

func newTestService(t *testing.T, src *fixedSource, digester llm.Provider) *Service {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := cache.NewStore(src, nil,
		model.CacheConfig{TTL: time.Minute, Namespace: "test", MaxProperties: 500},
		model.RefreshConfig{}, log)
	scorer := score.New(model.ScoringConfig{EquityWeight: 0.45, ValueGapWeight: 0.35, RecencyWeight: 0.20}, log)
	return New(store, scorer, digester, 500, log)
}

func TestList_OrdersByScoreDescending(t *testing.T) {
	src := &fixedSource{records: []model.RawRecord{
		rawRecord("low", "78701", 50000, 3000),
		rawRecord("high", "78701", 400000, 30),
		rawRecord("mid", "78702", 180000, 400),
	}}
	svc := newTestService(t, src, nil)

	resp, err := svc.List(context.Background(), model.Filters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total != 3 || len(resp.Items) != 3 {
		t.Fatalf("expected 3 results, got total=%d items=%d", resp.Total, len(resp.Items))
	}
	for i := 1; i < len(resp.Items); i++ {
		if resp.Items[i].ListingScore > resp.Items[i-1].ListingScore {
			t.Errorf("results out of order at %d: %v after %v",
				i, resp.Items[i].ListingScore, resp.Items[i-1].ListingScore)
		}
	}
	if resp.Items[0].ID != "high" {
		t.Errorf("expected the high-equity recent sale first, got %q", resp.Items[0].ID)
	}
}

func TestList_Pagination(t *testing.T) {
	var records []model.RawRecord
	for i := 0; i < 10; i++ {
		records = append(records, rawRecord(string(rune('a'+i)), "78701", float64(100000+i*10000), 100))
	}
	svc := newTestService(t, &fixedSource{records: records}, nil)

	page, err := svc.List(context.Background(), model.Filters{Limit: 3, Offset: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 10 {
		t.Errorf("expected total 10, got %d", page.Total)
	}
	if len(page.Items) != 3 {
		t.Errorf("expected 3 items on the page, got %d", len(page.Items))
	}
	if page.Limit != 3 || page.Offset != 4 {
		t.Errorf("expected the page envelope to echo limit/offset, got %d/%d", page.Limit, page.Offset)
	}

	// Offset past the end yields an empty page, not an error
	empty, err := svc.List(context.Background(), model.Filters{Limit: 3, Offset: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(empty.Items) != 0 || empty.Total != 10 {
		t.Errorf("expected an empty page with the full total, got %d items total %d", len(empty.Items), empty.Total)
	}
}

func TestList_InvalidFiltersSkipCache(t *testing.T) {
	src := &fixedSource{records: []model.RawRecord{rawRecord("a", "78701", 100000, 100)}}
	svc := newTestService(t, src, nil)

	_, err := svc.List(context.Background(), model.Filters{RadiusMiles: model.Float(10)})
	if !errors.Is(err, model.ErrInvalidFilters) {
		t.Fatalf("expected ErrInvalidFilters, got %v", err)
	}
	if n := src.fetches.Load(); n != 0 {
		t.Errorf("validation must reject before any snapshot access, got %d fetches", n)
	}
}

func TestList_SourceErrorSurfaces(t *testing.T) {
	svc := newTestService(t, &fixedSource{err: errors.New("provider down")}, nil)
	if _, err := svc.List(context.Background(), model.Filters{}); err == nil {
		t.Fatal("expected the upstream failure to surface")
	}
}

func TestLeadPacks_CoversAllMatches(t *testing.T) {
	src := &fixedSource{records: []model.RawRecord{
		rawRecord("a", "78701", 300000, 100),
		rawRecord("b", "78701", 200000, 200),
		rawRecord("c", "78702", 150000, 300),
	}}
	svc := newTestService(t, src, nil)

	resp, err := svc.LeadPacks(context.Background(), model.Filters{}, "postal_code", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Packs) != 2 {
		t.Fatalf("expected 2 packs, got %d", len(resp.Packs))
	}

	sum := 0
	for _, p := range resp.Packs {
		sum += p.Total
		if len(p.TopProperties) > 1 {
			t.Errorf("pack %q exceeds the requested size", p.Label)
		}
	}
	if sum != 3 {
		t.Errorf("pack totals should cover every match, got %d", sum)
	}
	if resp.GeneratedAt.IsZero() {
		t.Error("expected a generation timestamp")
	}
	if resp.Digest != "" {
		t.Errorf("no digester configured, digest should be empty, got %q", resp.Digest)
	}
}

func TestLeadPacks_UnknownDimension(t *testing.T) {
	src := &fixedSource{records: []model.RawRecord{rawRecord("a", "78701", 100000, 100)}}
	svc := newTestService(t, src, nil)

	_, err := svc.LeadPacks(context.Background(), model.Filters{}, "owner_name", 10)
	if !errors.Is(err, model.ErrInvalidFilters) {
		t.Errorf("expected ErrInvalidFilters, got %v", err)
	}
}

func TestLeadPacks_DigestAttached(t *testing.T) {
	src := &fixedSource{records: []model.RawRecord{rawRecord("a", "78701", 100000, 100)}}
	svc := newTestService(t, src, &stubDigester{text: "strongest leads in 78701"})

	resp, err := svc.LeadPacks(context.Background(), model.Filters{}, "postal_code", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Digest != "strongest leads in 78701" {
		t.Errorf("expected the digest on the response, got %q", resp.Digest)
	}
}

func TestLeadPacks_DigestFailureIsNotFatal(t *testing.T) {
	src := &fixedSource{records: []model.RawRecord{rawRecord("a", "78701", 100000, 100)}}
	svc := newTestService(t, src, &stubDigester{err: errors.New("llm down")})

	resp, err := svc.LeadPacks(context.Background(), model.Filters{}, "postal_code", 10)
	if err != nil {
		t.Fatalf("digest failures must not fail the build: %v", err)
	}
	if resp.Digest != "" {
		t.Errorf("expected no digest after a failure, got %q", resp.Digest)
	}
	if len(resp.Packs) != 1 {
		t.Errorf("expected the packs regardless, got %d", len(resp.Packs))
	}
}

func TestExportRows(t *testing.T) {
	src := &fixedSource{records: []model.RawRecord{
		rawRecord("a", "78701", 300000, 100),
		rawRecord("b", "78702", 100000, 2000),
	}}
	svc := newTestService(t, src, nil)

	rows, err := svc.ExportRows(context.Background(), model.Filters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected a header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "id" || rows[0][6] != "listing_score" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	for _, row := range rows[1:] {
		if len(row) != len(rows[0]) {
			t.Errorf("ragged row: %v", row)
		}
	}
	// Rows follow the listing order, strongest lead first
	if rows[1][0] != "a" {
		t.Errorf("expected the strongest lead first, got %q", rows[1][0])
	}
}
