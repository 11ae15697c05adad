package usecase

import (
	"sort"
	"strings"

	"github.com/petrolex/contract-engine/internal/core/domain"
)

// SelectEntities deduplicates model-reported counterparty names and keeps the
// top candidates by mention frequency. The cap bounds external query count
// per request; ties keep first-appearance order.
func SelectEntities(entities []domain.ModelEntity, text string, limit int) []domain.EntityCandidate {
	if limit <= 0 {
		limit = 8
	}

	lowerText := strings.ToLower(text)

	type bucket struct {
		display  string
		mentions int
		first    int
	}
	byKey := make(map[string]*bucket)
	var order []string

	for i, e := range entities {
		display := strings.Join(strings.Fields(e.Name), " ")
		display = strings.Trim(display, ".,;:\"'")
		if display == "" {
			continue
		}
		key := strings.ToLower(display)

		b, ok := byKey[key]
		if !ok {
			mentions := strings.Count(lowerText, key)
			if mentions < 1 {
				mentions = 1
			}
			byKey[key] = &bucket{display: display, mentions: mentions, first: i}
			order = append(order, key)
			continue
		}
		// Duplicate listings still signal prominence.
		b.mentions++
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := byKey[order[i]], byKey[order[j]]
		if a.mentions != b.mentions {
			return a.mentions > b.mentions
		}
		return a.first < b.first
	})

	if len(order) > limit {
		order = order[:limit]
	}

	out := make([]domain.EntityCandidate, 0, len(order))
	for _, key := range order {
		b := byKey[key]
		out = append(out, domain.EntityCandidate{Name: b.display, Mentions: b.mentions})
	}
	return out
}
