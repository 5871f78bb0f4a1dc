package graph

import (
	"sort"
	"strings"

	"github.com/shopgraph/backend/internal/util"
)

// Search finds entities whose name contains the given substring,
// case-insensitively. An empty typeFilter matches all types. Results are
// ordered by type priority (category > brand > price_range > product >
// feature), then by name.
func (s *Store) Search(substring string, typeFilter EntityType) []Entity {
	needle := strings.ToLower(strings.TrimSpace(substring))
	if needle == "" {
		return []Entity{}
	}

	s.mu.RLock()
	matches := []Entity{}
	for _, e := range s.entities {
		if typeFilter != "" && e.Type != typeFilter {
			continue
		}
		if strings.Contains(strings.ToLower(e.Name), needle) {
			matches = append(matches, *e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		pi, pj := matches[i].Type.Priority(), matches[j].Type.Priority()
		if pi != pj {
			return pi < pj
		}
		return matches[i].Name < matches[j].Name
	})

	return matches
}

// MatchEntities finds entities relevant to a free-text question by token
// overlap between the question and entity names. A candidate qualifies when
// at least half of its name tokens appear in the question, or at least two
// tokens overlap; this keeps "apple" from matching every multi-word name
// that merely contains it. Results are ranked by a precision-weighted
// overlap score and capped at limit.
func (s *Store) MatchEntities(question string, limit int) []Entity {
	queryTokens := util.SalientTokens(question)
	if len(queryTokens) == 0 || limit <= 0 {
		return []Entity{}
	}
	querySet := make(map[string]struct{}, len(queryTokens))
	for _, t := range queryTokens {
		querySet[t] = struct{}{}
	}

	type scoredEntity struct {
		score  float64
		entity Entity
	}

	s.mu.RLock()
	scored := []scoredEntity{}
	for _, e := range s.entities {
		nameTokens := util.Tokenize(e.Name)
		if len(nameTokens) == 0 {
			continue
		}
		common := 0
		for _, t := range nameTokens {
			if _, ok := querySet[t]; ok {
				common++
			}
		}
		if common == 0 {
			continue
		}
		namePrecision := float64(common) / float64(len(nameTokens))
		queryRecall := float64(common) / float64(len(queryTokens))
		if namePrecision < 0.5 && common < 2 {
			continue
		}
		scored = append(scored, scoredEntity{
			score:  namePrecision*0.6 + queryRecall*0.4,
			entity: *e,
		})
	}
	s.mu.RUnlock()

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		pi, pj := scored[i].entity.Type.Priority(), scored[j].entity.Type.Priority()
		if pi != pj {
			return pi < pj
		}
		return scored[i].entity.Name < scored[j].entity.Name
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	matches := make([]Entity, 0, len(scored))
	for _, m := range scored {
		matches = append(matches, m.entity)
	}
	return matches
}
