package search

import (
	"strings"

	"github.com/petrolex/contract-engine/internal/core/domain"
)

const maxSourceURLs = 5

var (
	sanctionTerms = []string{
		"sanction", "ofac", "sdn list", "export control", "embargo",
	}
	bankruptcyTerms = []string{
		"bankrupt", "chapter 11", "chapter 7", "insolven", "receivership", "liquidation",
	}
	adverseTerms = []string{
		"fraud", "lawsuit", "litigation", "indict", "investigation",
		"corruption", "bribery", "spill", "violation", "penalty", "fine",
	}
)

// aggregateSignal folds search results into one per-entity signal. A result
// contributes its URL only when it matched at least one risk class.
func aggregateSignal(results []searchResult) domain.RiskSignal {
	var signal domain.RiskSignal
	for _, r := range results {
		text := strings.ToLower(r.Title + " " + r.Snippet)

		matched := false
		if containsAny(text, sanctionTerms) {
			signal.Sanctions = true
			matched = true
		}
		if containsAny(text, bankruptcyTerms) {
			signal.Bankruptcy = true
			matched = true
		}
		if containsAny(text, adverseTerms) {
			signal.AdverseMedia = true
			matched = true
		}
		if matched && r.URL != "" && len(signal.SourceURLs) < maxSourceURLs {
			signal.SourceURLs = append(signal.SourceURLs, r.URL)
		}
	}
	return signal
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
