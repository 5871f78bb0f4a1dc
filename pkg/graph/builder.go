package graph

import (
	"math"
	"strings"

	"github.com/shopgraph/backend/pkg/logger"
)

// Relationship types produced by the product graph builder.
const (
	RelMadeBy       = "made_by"
	RelBelongsTo    = "belongs_to_category"
	RelInPriceRange = "in_price_range"
	RelHasFeature   = "has_feature"
)

const (
	maxStoredFeatures = 5
	maxFeatureLinks   = 3
	maxDescriptionLen = 200
)

// ProductRecord is one ingested product, as delivered by the external
// scraping/parsing pipeline.
type ProductRecord struct {
	Name         string   `json:"name"`
	Brand        string   `json:"brand"`
	Category     string   `json:"category"`
	Price        float64  `json:"price"`
	Rating       float64  `json:"rating"`
	ReviewsCount int      `json:"reviews_count"`
	Description  string   `json:"description"`
	Features     []string `json:"features"`
}

type priceRange struct {
	name string
	min  float64
	max  float64
}

var priceRanges = []priceRange{
	{"Budget (Under ₹500)", 0, 500},
	{"Affordable (₹500-₹1000)", 500, 1000},
	{"Mid-Range (₹1000-₹2500)", 1000, 2500},
	{"Premium (₹2500-₹5000)", 2500, 5000},
	{"Luxury (₹5000-₹10000)", 5000, 10000},
	{"Ultra Premium (Above ₹10000)", 10000, math.Inf(1)},
}

// BuildFromProducts populates the graph from product records: one product
// entity each, plus brand, category, price range and feature entities with
// the connecting relationships. Compound categories like
// "Kitchen - Pressure Cooker" collapse to their main segment.
func (s *Store) BuildFromProducts(products []ProductRecord) error {
	for _, pr := range priceRanges {
		max := pr.max
		if math.IsInf(max, 1) {
			max = 0
		}
		if _, err := s.UpsertEntity(TypePriceRange, pr.name, &PriceRangeProps{Min: pr.min, Max: max}); err != nil {
			return err
		}
	}

	for _, p := range products {
		if NormalizeName(p.Name) == "" {
			logger.Warn("[Graph] Skipping product without a name")
			continue
		}

		features := p.Features
		if len(features) > maxStoredFeatures {
			features = features[:maxStoredFeatures]
		}
		description := p.Description
		if len(description) > maxDescriptionLen {
			description = description[:maxDescriptionLen]
		}

		productID, err := s.UpsertEntity(TypeProduct, p.Name, &ProductProps{
			Price:        p.Price,
			Rating:       p.Rating,
			ReviewsCount: p.ReviewsCount,
			Description:  description,
			Brand:        p.Brand,
			Category:     p.Category,
			Features:     features,
		})
		if err != nil {
			return err
		}

		if p.Brand != "" {
			brandID, err := s.UpsertEntity(TypeBrand, p.Brand, nil)
			if err != nil {
				return err
			}
			if err := s.UpsertRelationship(productID, brandID, RelMadeBy); err != nil {
				return err
			}
		}

		if category := mainCategory(p.Category); category != "" {
			categoryID, err := s.UpsertEntity(TypeCategory, category, nil)
			if err != nil {
				return err
			}
			if err := s.UpsertRelationship(productID, categoryID, RelBelongsTo); err != nil {
				return err
			}
		}

		for _, pr := range priceRanges {
			if p.Price >= pr.min && p.Price < pr.max {
				if err := s.UpsertRelationship(productID, EntityID(TypePriceRange, pr.name), RelInPriceRange); err != nil {
					return err
				}
				break
			}
		}

		links := p.Features
		if len(links) > maxFeatureLinks {
			links = links[:maxFeatureLinks]
		}
		for _, feature := range links {
			if NormalizeName(feature) == "" {
				continue
			}
			featureID, err := s.UpsertEntity(TypeFeature, feature, nil)
			if err != nil {
				return err
			}
			if err := s.UpsertRelationship(productID, featureID, RelHasFeature); err != nil {
				return err
			}
		}
	}

	stats := s.Stats()
	logger.Info("[Graph] Build completed",
		"products", len(products),
		"entities", stats.TotalEntities,
		"relationships", stats.TotalRelationships,
	)

	return nil
}

func mainCategory(category string) string {
	category = strings.TrimSpace(category)
	if main, _, found := strings.Cut(category, " - "); found {
		return strings.TrimSpace(main)
	}
	return category
}
