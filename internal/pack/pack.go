// Package pack groups filtered, scored properties into labeled lead packs.
package pack

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/leadradar/internal/model"
)

// UnclassifiedLabel buckets properties whose group attribute is absent
const UnclassifiedLabel = "unclassified"

// groupAccessors enumerates the supported group-by dimensions. Keys are
// resolved through the alias table first; anything that does not land here is
// rejected rather than falling through to reflection.
var groupAccessors = map[string]func(*model.ScoredProperty) string{
	"postal_code": func(p *model.ScoredProperty) string { return p.PostalCode },
	"city":        func(p *model.ScoredProperty) string { return p.City },
	"state":       func(p *model.ScoredProperty) string { return p.State },
}

var groupAliases = map[string]string{
	"zip":      "postal_code",
	"zip_code": "postal_code",
}

// Build buckets the scored properties by the groupBy dimension and returns
// ranked packs. Each pack keeps its pre-truncation total and the top packSize
// properties by listing score; packs themselves are ordered by their top
// property's score.
func Build(scored []model.ScoredProperty, groupBy string, packSize int) ([]model.LeadPack, error) {
	accessor, err := resolveAccessor(groupBy)
	if err != nil {
		return nil, err
	}
	if packSize <= 0 {
		packSize = 1
	}

	buckets := make(map[string][]model.ScoredProperty)
	for i := range scored {
		label := accessor(&scored[i])
		if label == "" {
			label = UnclassifiedLabel
		}
		buckets[label] = append(buckets[label], scored[i])
	}

	packs := make([]model.LeadPack, 0, len(buckets))
	for label, items := range buckets {
		ordered := append([]model.ScoredProperty(nil), items...)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].ListingScore > ordered[j].ListingScore
		})
		top := ordered
		if len(top) > packSize {
			top = top[:packSize]
		}
		packs = append(packs, model.LeadPack{
			Label:         label,
			Total:         len(items),
			TopProperties: top,
		})
	}

	sort.SliceStable(packs, func(i, j int) bool {
		si, sj := topScore(&packs[i]), topScore(&packs[j])
		if si != sj {
			return si > sj
		}
		return packs[i].Label < packs[j].Label
	})
	return packs, nil
}

// resolveAccessor maps a requested group-by key through the alias table onto
// its accessor, rejecting unknown dimensions
func resolveAccessor(groupBy string) (func(*model.ScoredProperty) string, error) {
	key := strings.ToLower(strings.TrimSpace(groupBy))
	if canonical, ok := groupAliases[key]; ok {
		key = canonical
	}
	accessor, ok := groupAccessors[key]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported group_by %q (use postal_code, city, or state)", model.ErrInvalidFilters, groupBy)
	}
	return accessor, nil
}

// packs with no properties sort last
func topScore(p *model.LeadPack) float64 {
	if len(p.TopProperties) == 0 {
		return 0
	}
	return p.TopProperties[0].ListingScore
}
