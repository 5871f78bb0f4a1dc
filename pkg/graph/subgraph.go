package graph

import "sort"

// Subgraph is a bounded excerpt of the knowledge graph.
type Subgraph struct {
	Nodes []Entity       `json:"nodes"`
	Edges []Relationship `json:"edges"`
}

// ExtractSubgraph selects up to maxNodes entities and every edge whose both
// endpoints were selected. Selection is score-then-truncate: entities are
// ranked by degree descending, ties broken by type priority then name, and
// the top maxNodes taken. Repeated calls on an unchanged graph return
// identical output in identical order.
func (s *Store) ExtractSubgraph(maxNodes int) Subgraph {
	if maxNodes <= 0 {
		return Subgraph{Nodes: []Entity{}, Edges: []Relationship{}}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked := make([]*Entity, 0, len(s.entities))
	for _, e := range s.entities {
		ranked = append(ranked, e)
	}
	sort.Slice(ranked, func(i, j int) bool {
		di, dj := s.degreeLocked(ranked[i].ID), s.degreeLocked(ranked[j].ID)
		if di != dj {
			return di > dj
		}
		pi, pj := ranked[i].Type.Priority(), ranked[j].Type.Priority()
		if pi != pj {
			return pi < pj
		}
		return ranked[i].Name < ranked[j].Name
	})

	if len(ranked) > maxNodes {
		ranked = ranked[:maxNodes]
	}

	selected := make(map[string]struct{}, len(ranked))
	nodes := make([]Entity, 0, len(ranked))
	for _, e := range ranked {
		selected[e.ID] = struct{}{}
		nodes = append(nodes, *e)
	}

	edges := []Relationship{}
	for _, e := range ranked {
		for _, out := range s.outgoing[e.ID] {
			if _, ok := selected[out.other]; ok {
				edges = append(edges, Relationship{
					SourceID: e.ID,
					TargetID: out.other,
					Type:     out.relType,
				})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].SourceID != edges[j].SourceID {
			return edges[i].SourceID < edges[j].SourceID
		}
		if edges[i].TargetID != edges[j].TargetID {
			return edges[i].TargetID < edges[j].TargetID
		}
		return edges[i].Type < edges[j].Type
	})

	return Subgraph{Nodes: nodes, Edges: edges}
}
