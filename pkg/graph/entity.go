package graph

import "strings"

// EntityType classifies a node in the knowledge graph. The set below covers
// the product domain; the underlying string type keeps it open for new types.
type EntityType string

const (
	TypeProduct    EntityType = "product"
	TypeBrand      EntityType = "brand"
	TypeCategory   EntityType = "category"
	TypePriceRange EntityType = "price_range"
	TypeFeature    EntityType = "feature"
)

// typePriority orders entity types for search results and subgraph
// tie-breaking. Lower is more important.
var typePriority = map[EntityType]int{
	TypeCategory:   0,
	TypeBrand:      1,
	TypePriceRange: 2,
	TypeProduct:    3,
	TypeFeature:    4,
}

// Priority returns the ordering rank of the type. Unknown types sort last.
func (t EntityType) Priority() int {
	if p, ok := typePriority[t]; ok {
		return p
	}
	return len(typePriority)
}

// Entity is a node in the knowledge graph. Props carries the per-type
// property bag; it is nil for types without a schema.
type Entity struct {
	ID    string     `json:"id"`
	Type  EntityType `json:"type"`
	Name  string     `json:"name"`
	Props Props      `json:"properties,omitempty"`
}

// Props is the per-type property bag attached to an entity. Variants merge
// non-destructively: merge returns a new value, leaving prior snapshots
// readable without locking.
type Props interface {
	merge(incoming Props) Props
}

// ProductProps holds the schema for product entities.
type ProductProps struct {
	Price        float64  `json:"price,omitempty"`
	Rating       float64  `json:"rating,omitempty"`
	ReviewsCount int      `json:"reviews_count,omitempty"`
	Description  string   `json:"description,omitempty"`
	Brand        string   `json:"brand,omitempty"`
	Category     string   `json:"category,omitempty"`
	Features     []string `json:"features,omitempty"`
}

func (p *ProductProps) merge(incoming Props) Props {
	in, ok := incoming.(*ProductProps)
	if !ok || in == nil {
		return p
	}
	out := *p
	if in.Price != 0 {
		out.Price = in.Price
	}
	if in.Rating != 0 {
		out.Rating = in.Rating
	}
	if in.ReviewsCount != 0 {
		out.ReviewsCount = in.ReviewsCount
	}
	if in.Description != "" {
		out.Description = in.Description
	}
	if in.Brand != "" {
		out.Brand = in.Brand
	}
	if in.Category != "" {
		out.Category = in.Category
	}
	// Slices replace wholesale, they are never element-merged.
	if in.Features != nil {
		out.Features = append([]string(nil), in.Features...)
	}
	return &out
}

// PriceRangeProps holds the price bracket bounds for price_range entities.
// A zero Max means unbounded.
type PriceRangeProps struct {
	Min float64 `json:"min"`
	Max float64 `json:"max,omitempty"`
}

func (p *PriceRangeProps) merge(incoming Props) Props {
	in, ok := incoming.(*PriceRangeProps)
	if !ok || in == nil {
		return p
	}
	out := *p
	if in.Min != 0 {
		out.Min = in.Min
	}
	if in.Max != 0 {
		out.Max = in.Max
	}
	return &out
}

// NormalizeName folds an entity name for identity comparison.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// EntityID derives the stable identifier of an entity from its type and
// normalized name. The same (type, name) pair always yields the same ID.
func EntityID(typ EntityType, name string) string {
	slug := NormalizeName(name)
	slug = strings.ReplaceAll(slug, " ", "_")
	slug = strings.ReplaceAll(slug, "'", "")
	slug = strings.ReplaceAll(slug, "-", "_")
	return string(typ) + ":" + slug
}
