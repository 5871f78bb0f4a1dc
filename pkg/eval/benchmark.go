package eval

import (
	"fmt"

	"github.com/shopgraph/backend/pkg/common"
)

// Category groups benchmark questions by the retrieval capability they
// exercise.
type Category string

const (
	CategoryEntityLookup Category = "entity_lookup"
	CategoryRelationship Category = "relationship"
	CategoryComparison   Category = "comparison"
	CategoryAggregation  Category = "aggregation"
	CategoryReasoning    Category = "reasoning"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is a benchmark item with its ground truth and the entities and
// keywords a good answer is expected to surface.
type Question struct {
	ID               string     `json:"id"`
	Question         string     `json:"question"`
	Category         Category   `json:"category"`
	Difficulty       Difficulty `json:"difficulty"`
	GroundTruth      string     `json:"ground_truth"`
	ExpectedEntities []string   `json:"expected_entities"`
	ExpectedKeywords []string   `json:"expected_keywords"`
	RequiresGraph    bool       `json:"requires_graph"`
}

func validCategory(c Category) bool {
	switch c {
	case CategoryEntityLookup, CategoryRelationship, CategoryComparison,
		CategoryAggregation, CategoryReasoning:
		return true
	}
	return false
}

func validDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Filter narrows a question set by category and difficulty, then caps it at
// limit. Empty filter values match everything; limit <= 0 means no cap.
func Filter(questions []Question, category Category, difficulty Difficulty, limit int) ([]Question, error) {
	if category != "" && !validCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", common.ErrValidation, category)
	}
	if difficulty != "" && !validDifficulty(difficulty) {
		return nil, fmt.Errorf("%w: unknown difficulty %q", common.ErrValidation, difficulty)
	}

	filtered := make([]Question, 0, len(questions))
	for _, q := range questions {
		if category != "" && q.Category != category {
			continue
		}
		if difficulty != "" && q.Difficulty != difficulty {
			continue
		}
		filtered = append(filtered, q)
	}
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// Stats summarizes the composition of a question set.
type Stats struct {
	TotalQuestions int                `json:"total_questions"`
	ByCategory     map[Category]int   `json:"by_category"`
	ByDifficulty   map[Difficulty]int `json:"by_difficulty"`
	GraphRequired  int                `json:"graph_required"`
}

func Statistics(questions []Question) Stats {
	stats := Stats{
		TotalQuestions: len(questions),
		ByCategory:     map[Category]int{},
		ByDifficulty:   map[Difficulty]int{},
	}
	for _, q := range questions {
		stats.ByCategory[q.Category]++
		stats.ByDifficulty[q.Difficulty]++
		if q.RequiresGraph {
			stats.GraphRequired++
		}
	}
	return stats
}

// DefaultBenchmark returns the curated question set spanning every category
// and difficulty. IDs are stable so results stay comparable across runs.
func DefaultBenchmark() []Question {
	return []Question{
		{
			ID:               "EL001",
			Question:         "What is the price of Nike Air Max 270?",
			Category:         CategoryEntityLookup,
			Difficulty:       DifficultyEasy,
			GroundTruth:      "Nike Air Max 270 is a premium running shoe priced around ₹8000-₹15000.",
			ExpectedEntities: []string{"Nike", "Air Max 270"},
			ExpectedKeywords: []string{"price", "₹", "running", "shoe"},
		},
		{
			ID:               "EL002",
			Question:         "What brand manufactures the UltraBoost Light sneakers?",
			Category:         CategoryEntityLookup,
			Difficulty:       DifficultyEasy,
			GroundTruth:      "UltraBoost Light sneakers are manufactured by Adidas.",
			ExpectedEntities: []string{"Adidas", "UltraBoost Light"},
			ExpectedKeywords: []string{"Adidas", "brand", "manufactures"},
			RequiresGraph:    true,
		},
		{
			ID:               "EL003",
			Question:         "What is the rating of Samsung Galaxy S24 Ultra?",
			Category:         CategoryEntityLookup,
			Difficulty:       DifficultyEasy,
			GroundTruth:      "Samsung Galaxy S24 Ultra typically has high ratings between 4.5 to 5.0 stars.",
			ExpectedEntities: []string{"Samsung", "Galaxy S24 Ultra"},
			ExpectedKeywords: []string{"rating", "stars", "4", "5"},
		},
		{
			ID:               "EL004",
			Question:         "What category does iPhone 15 Pro Max belong to?",
			Category:         CategoryEntityLookup,
			Difficulty:       DifficultyEasy,
			GroundTruth:      "iPhone 15 Pro Max belongs to the Electronics/Smartphones category.",
			ExpectedEntities: []string{"Apple", "iPhone 15 Pro Max"},
			ExpectedKeywords: []string{"category", "electronics", "smartphone"},
			RequiresGraph:    true,
		},
		{
			ID:               "EL005",
			Question:         "What are the key features of Sony WH-1000XM5 headphones?",
			Category:         CategoryEntityLookup,
			Difficulty:       DifficultyMedium,
			GroundTruth:      "Sony WH-1000XM5 features include active noise cancellation, long battery life, and premium sound quality.",
			ExpectedEntities: []string{"Sony", "WH-1000XM5"},
			ExpectedKeywords: []string{"noise cancellation", "battery", "sound"},
		},
		{
			ID:               "REL001",
			Question:         "What products does Adidas manufacture?",
			Category:         CategoryRelationship,
			Difficulty:       DifficultyEasy,
			GroundTruth:      "Adidas manufactures footwear such as the UltraBoost Light along with other sportswear products.",
			ExpectedEntities: []string{"Adidas", "UltraBoost Light"},
			ExpectedKeywords: []string{"UltraBoost", "shoes", "footwear"},
			RequiresGraph:    true,
		},
		{
			ID:               "REL002",
			Question:         "Which brands are in the Footwear category?",
			Category:         CategoryRelationship,
			Difficulty:       DifficultyMedium,
			GroundTruth:      "Footwear brands include Nike, Adidas, Puma, Reebok and New Balance.",
			ExpectedEntities: []string{"Nike", "Adidas", "Puma"},
			ExpectedKeywords: []string{"Nike", "Adidas", "Puma"},
			RequiresGraph:    true,
		},
		{
			ID:               "REL003",
			Question:         "What products are in the price range ₹5000-₹10000?",
			Category:         CategoryRelationship,
			Difficulty:       DifficultyMedium,
			GroundTruth:      "The ₹5000-₹10000 luxury range contains mid-to-premium footwear and audio products.",
			ExpectedEntities: []string{},
			ExpectedKeywords: []string{"₹", "price", "range"},
			RequiresGraph:    true,
		},
		{
			ID:               "REL004",
			Question:         "What is the relationship between Apple and iPhone 15 Pro Max?",
			Category:         CategoryRelationship,
			Difficulty:       DifficultyEasy,
			GroundTruth:      "Apple is the brand that makes the iPhone 15 Pro Max.",
			ExpectedEntities: []string{"Apple", "iPhone 15 Pro Max"},
			ExpectedKeywords: []string{"Apple", "makes", "brand"},
			RequiresGraph:    true,
		},
		{
			ID:               "CMP001",
			Question:         "Compare Nike and Adidas shoes",
			Category:         CategoryComparison,
			Difficulty:       DifficultyMedium,
			GroundTruth:      "Nike and Adidas both offer premium running shoes; Nike focuses on Air cushioning while Adidas uses Boost foam.",
			ExpectedEntities: []string{"Nike", "Adidas"},
			ExpectedKeywords: []string{"Nike", "Adidas", "shoes"},
			RequiresGraph:    true,
		},
		{
			ID:               "CMP002",
			Question:         "Which is better rated: Samsung or Apple smartphones?",
			Category:         CategoryComparison,
			Difficulty:       DifficultyHard,
			GroundTruth:      "Both Samsung and Apple flagship smartphones are rated between 4.5 and 5.0 stars; ratings are comparable.",
			ExpectedEntities: []string{"Samsung", "Apple"},
			ExpectedKeywords: []string{"Samsung", "Apple", "rating"},
			RequiresGraph:    true,
		},
		{
			ID:               "CMP003",
			Question:         "Compare prices of Sony and Bose headphones",
			Category:         CategoryComparison,
			Difficulty:       DifficultyMedium,
			GroundTruth:      "Sony and Bose flagship headphones are similarly priced in the premium ₹20000-₹35000 bracket.",
			ExpectedEntities: []string{"Sony", "Bose"},
			ExpectedKeywords: []string{"Sony", "Bose", "price"},
			RequiresGraph:    true,
		},
		{
			ID:               "AGG001",
			Question:         "What is the average price of Shoes?",
			Category:         CategoryAggregation,
			Difficulty:       DifficultyHard,
			GroundTruth:      "Shoe prices in the catalog span roughly ₹2000 to ₹15000 with most models in the mid range.",
			ExpectedEntities: []string{},
			ExpectedKeywords: []string{"price", "₹", "average"},
			RequiresGraph:    true,
		},
		{
			ID:               "AGG002",
			Question:         "How many brands are in the Electronics category?",
			Category:         CategoryAggregation,
			Difficulty:       DifficultyMedium,
			GroundTruth:      "The Electronics category covers several brands including Samsung, Apple, Sony, Dell and HP.",
			ExpectedEntities: []string{},
			ExpectedKeywords: []string{"brands", "electronics"},
			RequiresGraph:    true,
		},
		{
			ID:               "AGG003",
			Question:         "Which category has the highest rated products?",
			Category:         CategoryAggregation,
			Difficulty:       DifficultyHard,
			GroundTruth:      "Electronics products, particularly flagship smartphones and headphones, carry the highest ratings.",
			ExpectedEntities: []string{},
			ExpectedKeywords: []string{"category", "rating", "highest"},
			RequiresGraph:    true,
		},
		{
			ID:               "RSN001",
			Question:         "Recommend a laptop under ₹80000",
			Category:         CategoryReasoning,
			Difficulty:       DifficultyHard,
			GroundTruth:      "Mid-range laptops such as the Dell XPS 13 or HP Spectre fit under ₹80000 depending on configuration.",
			ExpectedEntities: []string{},
			ExpectedKeywords: []string{"laptop", "₹", "under"},
			RequiresGraph:    true,
		},
		{
			ID:               "RSN002",
			Question:         "Which running shoes have the best rating for under ₹10000?",
			Category:         CategoryReasoning,
			Difficulty:       DifficultyHard,
			GroundTruth:      "Highly rated running shoes under ₹10000 include mid-range Nike and Adidas models.",
			ExpectedEntities: []string{"Nike", "Adidas"},
			ExpectedKeywords: []string{"running", "shoes", "rating", "₹"},
			RequiresGraph:    true,
		},
		{
			ID:               "RSN003",
			Question:         "I need noise cancelling headphones for travel, what do you suggest?",
			Category:         CategoryReasoning,
			Difficulty:       DifficultyMedium,
			GroundTruth:      "The Sony WH-1000XM5 is a strong travel pick for its active noise cancellation and long battery life.",
			ExpectedEntities: []string{"Sony", "WH-1000XM5"},
			ExpectedKeywords: []string{"noise cancellation", "Sony", "battery"},
		},
	}
}
