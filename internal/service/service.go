// Package service orchestrates a listing request: snapshot, normalize, score,
// filter, sort, paginate. Nothing here is persisted; every request recomputes
// against the currently cached raw snapshot.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/ppiankov/leadradar/internal/cache"
	"github.com/ppiankov/leadradar/internal/filter"
	"github.com/ppiankov/leadradar/internal/llm"
	"github.com/ppiankov/leadradar/internal/model"
	"github.com/ppiankov/leadradar/internal/normalize"
	"github.com/ppiankov/leadradar/internal/pack"
	"github.com/ppiankov/leadradar/internal/score"
)

// Service is the property pipeline facade
type Service struct {
	store         *cache.Store
	scorer        *score.Scorer
	digester      llm.Provider // optional, nil when digests are disabled
	maxProperties int
	log           *slog.Logger
}

// New builds the pipeline facade. digester may be nil.
func New(store *cache.Store, scorer *score.Scorer, digester llm.Provider, maxProperties int, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	if maxProperties <= 0 {
		maxProperties = 500
	}
	return &Service{
		store:         store,
		scorer:        scorer,
		digester:      digester,
		maxProperties: maxProperties,
		log:           log,
	}
}

// List runs the full pipeline and returns one page of results ordered by
// listing score descending. Filter validation happens before any cache
// access.
func (s *Service) List(ctx context.Context, filters model.Filters) (*model.ListResponse, error) {
	if err := filters.Normalize(); err != nil {
		return nil, err
	}

	filtered, err := s.filteredListing(ctx, filters)
	if err != nil {
		return nil, err
	}

	total := len(filtered)
	start := filters.Offset
	if start > total {
		start = total
	}
	end := start + filters.Limit
	if end > total {
		end = total
	}

	return &model.ListResponse{
		Items:  filtered[start:end],
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}

// LeadPacks groups the full filtered set into ranked packs. Pagination on the
// incoming filters is ignored: packs always see every match, capped only by
// the snapshot size itself.
func (s *Service) LeadPacks(ctx context.Context, filters model.Filters, groupBy string, packSize int) (*model.LeadPackResponse, error) {
	if err := filters.Normalize(); err != nil {
		return nil, err
	}

	filtered, err := s.filteredListing(ctx, filters)
	if err != nil {
		return nil, err
	}

	packs, err := pack.Build(filtered, groupBy, packSize)
	if err != nil {
		return nil, err
	}

	result := &model.LeadPackResponse{
		GeneratedAt: time.Now().UTC(),
		Packs:       packs,
	}
	s.attachDigest(ctx, result, groupBy)
	return result, nil
}

// filteredListing is the shared pipeline core: cached snapshot through
// normalization, scoring and filtering, sorted by score descending. Callers
// paginate (or not) on top. Filters must already be normalized.
func (s *Service) filteredListing(ctx context.Context, filters model.Filters) ([]model.ScoredProperty, error) {
	raw, err := s.store.Get(ctx, false)
	if err != nil {
		return nil, err
	}

	properties := make([]model.Property, 0, len(raw))
	for _, record := range raw {
		properties = append(properties, normalize.Normalize(record))
	}

	scored := s.scorer.Score(properties)
	filtered := filter.Apply(scored, filters)

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].ListingScore > filtered[j].ListingScore
	})
	s.logScoringSample(filtered)
	return filtered, nil
}

// Refresh forces a snapshot refresh from the upstream provider
func (s *Service) Refresh(ctx context.Context) error {
	return s.store.Refresh(ctx)
}

// ExportRows flattens a listing page into CSV-ready rows, header first
func (s *Service) ExportRows(ctx context.Context, filters model.Filters) ([][]string, error) {
	response, err := s.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(response.Items)+1)
	rows = append(rows, []string{
		"id", "parcel_id", "address", "city", "state", "postal_code",
		"listing_score", "equity_available", "value_gap", "owner_occupancy",
		"owner_name", "owner_phone", "owner_email",
	})
	for i := range response.Items {
		p := &response.Items[i]
		rows = append(rows, []string{
			p.ID,
			p.ParcelID,
			p.Address,
			p.City,
			p.State,
			p.PostalCode,
			strconv.FormatFloat(p.ListingScore, 'f', 2, 64),
			formatOptional(p.EquityAvailable),
			formatOptional(p.ValueGap),
			string(p.OwnerOccupancy),
			p.Owner.Name,
			p.Owner.Phone,
			p.Owner.Email,
		})
	}
	return rows, nil
}

// attachDigest asks the optional LLM provider for a pack summary. Failures
// are logged and the response ships without a digest; scores are already
// final at this point.
func (s *Service) attachDigest(ctx context.Context, response *model.LeadPackResponse, groupBy string) {
	if s.digester == nil || len(response.Packs) == 0 {
		return
	}
	digest, err := s.digester.Digest(ctx, llm.DigestRequest{
		Packs:   response.Packs,
		GroupBy: groupBy,
	})
	if err != nil {
		s.log.Warn("lead pack digest failed", "provider", s.digester.Name(), "error", err)
		return
	}
	response.Digest = digest.Text
}

func (s *Service) logScoringSample(properties []model.ScoredProperty) {
	if !s.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for i := range properties {
		if i >= 5 {
			break
		}
		p := &properties[i]
		s.log.Debug("score breakdown",
			"id", p.ID,
			"score", p.ListingScore,
			"breakdown", fmt.Sprintf("equity=%.4f value_gap=%.4f recency=%.4f",
				p.ScoreBreakdown.Equity, p.ScoreBreakdown.ValueGap, p.ScoreBreakdown.Recency))
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
