// Package score computes the 0-100 listing score from normalized properties.
// Statistics are taken over the batch being scored, so the normalization
// reflects the current candidate pool rather than the whole history.
package score

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/ppiankov/leadradar/internal/model"
)

// RecencyWindowDays is the decay window for the recency signal: transfers
// older than this score zero.
const RecencyWindowDays = 5 * 365

// neutral recency for properties with no transfer date on record
const missingDateRecency = 0.4

// floating tolerance for treating a pool as uniform (min == max)
const closeTolerance = 1e-9

// Weights are the normalized blend weights, guaranteed to sum to 1
type Weights struct {
	Equity   float64
	ValueGap float64
	Recency  float64
}

// Scorer computes listing scores with a fixed weight configuration
type Scorer struct {
	weights Weights
	log     *slog.Logger
}

// New builds a Scorer from raw configuration weights. Negative weights are
// clamped to zero and the remainder normalized to sum to 1; if every weight
// is zero the guard denominator keeps the blend defined.
func New(cfg model.ScoringConfig, log *slog.Logger) *Scorer {
	if log == nil {
		log = slog.Default()
	}
	weights := normalizeWeights(cfg.EquityWeight, cfg.ValueGapWeight, cfg.RecencyWeight)
	log.Info("scoring weights normalized",
		"equity", weights.Equity,
		"value_gap", weights.ValueGap,
		"recency", weights.Recency)
	return &Scorer{weights: weights, log: log}
}

// Weights returns the normalized weight configuration
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score computes a listing score for every property in the batch. Min/max and
// median fallbacks are derived from the batch itself.
func (s *Scorer) Score(properties []model.Property) []model.ScoredProperty {
	equityStats := collectStats(properties, func(p *model.Property) *float64 { return p.EquityAvailable })
	gapStats := collectStats(properties, func(p *model.Property) *float64 { return p.ValueGap })

	today := time.Now()
	scored := make([]model.ScoredProperty, 0, len(properties))
	for i := range properties {
		p := &properties[i]

		equityScore := equityStats.normalize(p.EquityAvailable)
		gapScore := gapStats.normalize(p.ValueGap)
		recencyScore := recency(p.TransferDate, today)

		listing := equityScore*s.weights.Equity +
			gapScore*s.weights.ValueGap +
			recencyScore*s.weights.Recency

		scored = append(scored, model.ScoredProperty{
			Property:     *p,
			ListingScore: round(listing*100, 2),
			ScoreBreakdown: model.ScoreBreakdown{
				Equity:   round(equityScore, 4),
				ValueGap: round(gapScore, 4),
				Recency:  round(recencyScore, 4),
			},
		})
	}
	return scored
}

// stats holds the min/max and fallback for one signal over the batch
type stats struct {
	min      float64
	max      float64
	fallback float64
}

func collectStats(properties []model.Property, get func(*model.Property) *float64) stats {
	var values []float64
	for i := range properties {
		if v := get(&properties[i]); v != nil {
			values = append(values, *v)
		}
	}

	st := stats{}
	if len(values) == 0 {
		return st
	}
	st.fallback = median(values)
	st.min = values[0]
	st.max = values[0]
	for _, v := range values[1:] {
		st.min = math.Min(st.min, v)
		st.max = math.Max(st.max, v)
	}
	return st
}

// normalize min-max scales the value (or the median fallback when absent)
// into [0,1]. A uniform pool is defined as fully satisfying.
func (st stats) normalize(value *float64) float64 {
	v := st.fallback
	if value != nil {
		v = *value
	}
	if math.Abs(st.max-st.min) <= closeTolerance {
		return 1.0
	}
	return clamp01((v - st.min) / (st.max - st.min))
}

// recency decays linearly from 1 at the present day to 0 at the window edge.
// Future transfer dates score 1, missing ones the neutral constant.
func recency(transfer *time.Time, now time.Time) float64 {
	if transfer == nil {
		return missingDateRecency
	}
	days := daysBetween(*transfer, now)
	switch {
	case days < 0:
		return 1.0
	case days >= RecencyWindowDays:
		return 0.0
	default:
		return 1.0 - float64(days)/float64(RecencyWindowDays)
	}
}

// daysBetween counts calendar days from a to b, ignoring time of day
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}

func normalizeWeights(equity, valueGap, recencyW float64) Weights {
	equity = math.Max(equity, 0)
	valueGap = math.Max(valueGap, 0)
	recencyW = math.Max(recencyW, 0)

	total := equity + valueGap + recencyW
	if total == 0 {
		total = 1.0
	}
	return Weights{
		Equity:   round(equity/total, 4),
		ValueGap: round(valueGap/total, 4),
		Recency:  round(recencyW/total, 4),
	}
}
