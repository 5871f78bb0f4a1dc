// Package retriever combines vector search and knowledge-graph lookups
// into a single ranked context for answer generation.
package retriever

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopgraph/backend/internal/util"
	"github.com/shopgraph/backend/pkg/common"
	"github.com/shopgraph/backend/pkg/graph"
	"github.com/shopgraph/backend/pkg/logger"
	"github.com/shopgraph/backend/pkg/store"
)

// Mode selects which retrieval paths contribute to the context.
type Mode string

const (
	ModeVectorOnly Mode = "vector_only"
	ModeGraphOnly  Mode = "graph_only"
	ModeHybrid     Mode = "hybrid"
)

// ParseMode validates a mode string. Empty input defaults to hybrid.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case "":
		return ModeHybrid, nil
	case ModeVectorOnly, ModeGraphOnly, ModeHybrid:
		return Mode(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown retrieval mode %q", common.ErrValidation, raw)
	}
}

const (
	// graphConfidence is the fixed score for graph-derived snippets. Graph
	// facts are curated, so they outrank all but near-exact vector hits.
	graphConfidence = 0.9

	maxGraphEntities = 2
	maxRelatedFacts  = 5
)

// Context is the merged retrieval result handed to the generator.
type Context struct {
	Items       []common.ContextItem `json:"items"`
	EntityNames []string             `json:"entity_names"`
	Mode        Mode                 `json:"mode"`
}

type Retriever struct {
	graph   *graph.Store
	vectors store.VectorIndex
}

func New(g *graph.Store, vectors store.VectorIndex) *Retriever {
	return &Retriever{graph: g, vectors: vectors}
}

// Retrieve builds a ranked context for the question. It holds no state
// between calls and is safe for concurrent use.
func (r *Retriever) Retrieve(ctx context.Context, question string, mode Mode, topK int) (Context, error) {
	switch mode {
	case ModeVectorOnly, ModeGraphOnly, ModeHybrid:
	default:
		return Context{}, fmt.Errorf("%w: unknown retrieval mode %q", common.ErrValidation, mode)
	}
	if topK <= 0 {
		topK = 5
	}

	var vectorItems []common.ContextItem
	if mode == ModeVectorOnly || mode == ModeHybrid {
		chunks, err := r.vectors.Search(ctx, question, topK)
		if err != nil {
			return Context{}, fmt.Errorf("vector retrieval: %w", err)
		}
		for _, c := range chunks {
			vectorItems = append(vectorItems, common.ContextItem{
				Text:   c.Text,
				Score:  c.Score,
				Origin: common.OriginVector,
				Source: c.Source,
				Title:  c.Title,
			})
		}
	}

	var graphItems []common.ContextItem
	var entityNames []string
	if mode == ModeGraphOnly || mode == ModeHybrid {
		graphItems, entityNames = r.graphContext(question)
	}

	items := r.merge(vectorItems, graphItems, topK)
	if len(items) > 0 {
		logger.Debug("Retrieved context",
			"mode", mode, "items", len(items), "entities", len(entityNames))
	}
	return Context{Items: items, EntityNames: entityNames, Mode: mode}, nil
}

// graphContext turns matched entities into one snippet each: the entity
// header, its properties, and up to maxRelatedFacts relationship lines.
func (r *Retriever) graphContext(question string) ([]common.ContextItem, []string) {
	entities := r.graph.MatchEntities(question, maxGraphEntities)

	items := make([]common.ContextItem, 0, len(entities))
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		var b strings.Builder
		fmt.Fprintf(&b, "Entity: %s (%s)\n", e.Name, e.Type)
		if props := renderProps(e.Props); props != "" {
			fmt.Fprintf(&b, "Properties: %s\n", props)
		}
		related, err := r.graph.Related(e.ID)
		if err == nil && len(related) > 0 {
			if len(related) > maxRelatedFacts {
				related = related[:maxRelatedFacts]
			}
			b.WriteString("Relationships:\n")
			for _, rel := range related {
				arrow := "->"
				if rel.Direction == graph.DirectionIncoming {
					arrow = "<-"
				}
				fmt.Fprintf(&b, "- %s %s %s (%s)\n", arrow, rel.Type, rel.Entity.Name, rel.Entity.Type)
			}
		}

		items = append(items, common.ContextItem{
			Text:   b.String(),
			Score:  graphConfidence,
			Origin: common.OriginGraph,
			Source: e.ID,
			Title:  e.Name,
		})
		names = append(names, e.Name)
	}
	return items, names
}

// merge ranks the combined candidates by score, vector hits ahead of graph
// snippets on ties, drops duplicate texts, and truncates to topK.
func (r *Retriever) merge(vectorItems, graphItems []common.ContextItem, topK int) []common.ContextItem {
	combined := make([]common.ContextItem, 0, len(vectorItems)+len(graphItems))
	combined = append(combined, vectorItems...)
	combined = append(combined, graphItems...)

	sort.SliceStable(combined, func(i, j int) bool {
		if combined[i].Score != combined[j].Score {
			return combined[i].Score > combined[j].Score
		}
		return combined[i].Origin == common.OriginVector && combined[j].Origin == common.OriginGraph
	})

	// Duplicate detection is case-sensitive: only whitespace differences
	// collapse two texts into one candidate.
	seen := make(map[string]struct{}, len(combined))
	merged := make([]common.ContextItem, 0, len(combined))
	for _, item := range combined {
		key := util.NormalizeWhitespace(item.Text)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, item)
		if len(merged) == topK {
			break
		}
	}
	return merged
}

func renderProps(props graph.Props) string {
	switch p := props.(type) {
	case *graph.ProductProps:
		parts := []string{}
		if p.Price > 0 {
			parts = append(parts, "price: "+strconv.FormatFloat(p.Price, 'f', -1, 64))
		}
		if p.Rating > 0 {
			parts = append(parts, "rating: "+strconv.FormatFloat(p.Rating, 'f', -1, 64))
		}
		if p.ReviewsCount > 0 {
			parts = append(parts, "reviews: "+strconv.Itoa(p.ReviewsCount))
		}
		if p.Brand != "" {
			parts = append(parts, "brand: "+p.Brand)
		}
		if p.Category != "" {
			parts = append(parts, "category: "+p.Category)
		}
		if p.Description != "" {
			parts = append(parts, "description: "+p.Description)
		}
		if len(p.Features) > 0 {
			parts = append(parts, "features: "+strings.Join(p.Features, "; "))
		}
		return strings.Join(parts, ", ")
	case *graph.PriceRangeProps:
		parts := []string{"min: " + strconv.FormatFloat(p.Min, 'f', -1, 64)}
		if p.Max > 0 {
			parts = append(parts, "max: "+strconv.FormatFloat(p.Max, 'f', -1, 64))
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
