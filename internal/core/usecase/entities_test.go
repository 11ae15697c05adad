package usecase

import (
	"testing"

	"github.com/petrolex/contract-engine/internal/core/domain"
)

func TestSelectEntitiesDeduplicatesByNormalizedName(t *testing.T) {
	text := "Agreement between Alpha Drilling LLC and Bravo Services. Alpha Drilling LLC shall..."
	entities := []domain.ModelEntity{
		{Name: "Alpha Drilling LLC"},
		{Name: "  alpha   drilling llc "},
		{Name: "Bravo Services"},
	}

	out := SelectEntities(entities, text, 8)
	if len(out) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(out), out)
	}
	if out[0].Name != "Alpha Drilling LLC" {
		t.Fatalf("expected the most-mentioned entity first, got %q", out[0].Name)
	}
	if out[0].Mentions < 2 {
		t.Fatalf("expected merged mention count >= 2, got %d", out[0].Mentions)
	}
}

func TestSelectEntitiesCapsExternalQueries(t *testing.T) {
	entities := []domain.ModelEntity{
		{Name: "One"}, {Name: "Two"}, {Name: "Three"}, {Name: "Four"}, {Name: "Five"},
	}
	out := SelectEntities(entities, "", 3)
	if len(out) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(out))
	}
	// Equal frequency keeps first-appearance order.
	if out[0].Name != "One" || out[1].Name != "Two" || out[2].Name != "Three" {
		t.Fatalf("expected stable order, got %+v", out)
	}
}

func TestSelectEntitiesSkipsEmptyNames(t *testing.T) {
	out := SelectEntities([]domain.ModelEntity{{Name: "   "}, {Name: ""}}, "text", 8)
	if len(out) != 0 {
		t.Fatalf("expected no candidates, got %+v", out)
	}
}

func TestSelectEntitiesOrdersByMentionFrequency(t *testing.T) {
	text := "Zeta Corp ... Zeta Corp ... Zeta Corp ... Omega LP"
	entities := []domain.ModelEntity{
		{Name: "Omega LP"},
		{Name: "Zeta Corp"},
	}
	out := SelectEntities(entities, text, 8)
	if out[0].Name != "Zeta Corp" {
		t.Fatalf("expected Zeta Corp first by frequency, got %+v", out)
	}
}
