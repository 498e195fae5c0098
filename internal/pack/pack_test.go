package pack

import (
	"errors"
	"testing"

	"github.com/ppiankov/leadradar/internal/model"
)

func entry(id, postal, city string, score float64) model.ScoredProperty {
	return model.ScoredProperty{
		Property:     model.Property{ID: id, PostalCode: postal, City: city, State: "TX"},
		ListingScore: score,
	}
}

func TestBuild_GroupsAndRanks(t *testing.T) {
	scored := []model.ScoredProperty{
		entry("a", "78701", "Austin", 40),
		entry("b", "78701", "Austin", 90),
		entry("c", "78702", "Austin", 70),
		entry("d", "78702", "Austin", 10),
		entry("e", "78702", "Austin", 55),
	}

	packs, err := Build(scored, "postal_code", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(packs) != 2 {
		t.Fatalf("expected 2 packs, got %d", len(packs))
	}

	// Packs ordered by their strongest property
	if packs[0].Label != "78701" || packs[1].Label != "78702" {
		t.Errorf("unexpected pack order: %q, %q", packs[0].Label, packs[1].Label)
	}

	// Totals reflect the bucket before truncation
	if packs[1].Total != 3 {
		t.Errorf("expected pre-truncation total 3, got %d", packs[1].Total)
	}
	if len(packs[1].TopProperties) != 2 {
		t.Errorf("expected pack capped at 2, got %d", len(packs[1].TopProperties))
	}

	// Top properties ordered by score within the pack
	if packs[1].TopProperties[0].ID != "c" || packs[1].TopProperties[1].ID != "e" {
		t.Errorf("unexpected ranking in pack: %q, %q",
			packs[1].TopProperties[0].ID, packs[1].TopProperties[1].ID)
	}

	// Every input is counted exactly once across totals
	sum := 0
	for _, p := range packs {
		sum += p.Total
	}
	if sum != len(scored) {
		t.Errorf("pack totals sum to %d, expected %d", sum, len(scored))
	}
}

func TestBuild_UnclassifiedBucket(t *testing.T) {
	scored := []model.ScoredProperty{
		entry("known", "78701", "Austin", 50),
		entry("missing", "", "Austin", 80),
	}
	packs, err := Build(scored, "postal_code", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var found bool
	for _, p := range packs {
		if p.Label == UnclassifiedLabel {
			found = true
			if p.Total != 1 || p.TopProperties[0].ID != "missing" {
				t.Errorf("unexpected unclassified pack: %+v", p)
			}
		}
	}
	if !found {
		t.Error("expected an unclassified pack for the property without a postal code")
	}
}

func TestBuild_GroupAliases(t *testing.T) {
	scored := []model.ScoredProperty{entry("a", "78701", "Austin", 50)}
	for _, key := range []string{"zip", "zip_code", "ZIP", " postal_code "} {
		packs, err := Build(scored, key, 10)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", key, err)
			continue
		}
		if len(packs) != 1 || packs[0].Label != "78701" {
			t.Errorf("%q: expected a single 78701 pack, got %+v", key, packs)
		}
	}
}

func TestBuild_RejectsUnknownDimension(t *testing.T) {
	_, err := Build(nil, "owner_name", 10)
	if !errors.Is(err, model.ErrInvalidFilters) {
		t.Errorf("expected ErrInvalidFilters for unknown dimension, got %v", err)
	}
}

func TestBuild_TieBreakByLabel(t *testing.T) {
	scored := []model.ScoredProperty{
		entry("a", "78702", "Austin", 60),
		entry("b", "78701", "Austin", 60),
	}
	packs, err := Build(scored, "postal_code", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if packs[0].Label != "78701" || packs[1].Label != "78702" {
		t.Errorf("equal-score packs should order by label: %q, %q", packs[0].Label, packs[1].Label)
	}
}

func TestBuild_Empty(t *testing.T) {
	packs, err := Build(nil, "city", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(packs) != 0 {
		t.Errorf("expected no packs, got %d", len(packs))
	}
}
