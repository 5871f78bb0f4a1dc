package graph

import (
	"reflect"
	"testing"
)

func newCatalogStore(t *testing.T) *Store {
	t.Helper()

	s := NewStore()
	err := s.BuildFromProducts([]ProductRecord{
		{Name: "Air Max 270", Brand: "Nike", Category: "Shoes", Price: 8000, Features: []string{"Air Cushioning"}},
		{Name: "UltraBoost Light", Brand: "Adidas", Category: "Shoes", Price: 9000, Features: []string{"Boost Midsole"}},
		{Name: "Galaxy S24 Ultra", Brand: "Samsung", Category: "Electronics - Smartphones", Price: 120000},
		{Name: "WH-1000XM5", Brand: "Sony", Category: "Electronics - Headphones", Price: 30000, Features: []string{"Noise Cancellation"}},
		{Name: "RS-X", Brand: "Puma", Category: "Shoes", Price: 7000},
		{Name: "Gel-Kayano 31", Brand: "Asics", Category: "Shoes", Price: 9500},
		{Name: "Clifton 9", Brand: "Hoka", Category: "Shoes", Price: 12000},
	})
	if err != nil {
		t.Fatalf("BuildFromProducts: %v", err)
	}
	return s
}

func TestExtractSubgraphDeterministic(t *testing.T) {
	s := newCatalogStore(t)

	first := s.ExtractSubgraph(20)
	second := s.ExtractSubgraph(20)

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated extraction on unchanged graph differs")
	}
	if len(first.Nodes) == 0 || len(first.Edges) == 0 {
		t.Fatalf("subgraph unexpectedly empty: %d nodes, %d edges", len(first.Nodes), len(first.Edges))
	}
}

func TestExtractSubgraphMaxNodes(t *testing.T) {
	s := newCatalogStore(t)
	total := s.Stats().TotalEntities

	for _, maxNodes := range []int{0, 1, 3, total, total + 10} {
		got := s.ExtractSubgraph(maxNodes)
		if len(got.Nodes) > maxNodes {
			t.Errorf("maxNodes=%d: %d nodes returned", maxNodes, len(got.Nodes))
		}
		for _, e := range got.Edges {
			if !containsNode(got.Nodes, e.SourceID) || !containsNode(got.Nodes, e.TargetID) {
				t.Errorf("maxNodes=%d: edge %+v has endpoint outside selection", maxNodes, e)
			}
		}
	}

	empty := s.ExtractSubgraph(0)
	if len(empty.Nodes) != 0 || len(empty.Edges) != 0 {
		t.Errorf("ExtractSubgraph(0) = %d nodes, %d edges, want empty", len(empty.Nodes), len(empty.Edges))
	}
}

func TestExtractSubgraphRanksByDegree(t *testing.T) {
	s := newCatalogStore(t)

	got := s.ExtractSubgraph(1)
	if len(got.Nodes) != 1 {
		t.Fatalf("len(nodes) = %d, want 1", len(got.Nodes))
	}
	// Five products attach to Shoes, outranking the degree-4 products
	// that carry made_by, belongs_to, in_price_range and has_feature edges.
	if got.Nodes[0].ID != EntityID(TypeCategory, "Shoes") {
		t.Errorf("top node = %q, want the Shoes category", got.Nodes[0].ID)
	}
}

func containsNode(nodes []Entity, id string) bool {
	for _, n := range nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

func TestBuildFromProducts(t *testing.T) {
	s := newCatalogStore(t)

	t.Run("price range link", func(t *testing.T) {
		related, err := s.Related(EntityID(TypeProduct, "Air Max 270"))
		if err != nil {
			t.Fatalf("Related: %v", err)
		}
		var priceRangeName string
		for _, r := range related {
			if r.Type == RelInPriceRange {
				priceRangeName = r.Entity.Name
			}
		}
		if priceRangeName != "Luxury (₹5000-₹10000)" {
			t.Errorf("price range = %q, want Luxury (₹5000-₹10000)", priceRangeName)
		}
	})

	t.Run("compound category collapsed", func(t *testing.T) {
		if _, err := s.Get(EntityID(TypeCategory, "Electronics")); err != nil {
			t.Errorf("main category missing: %v", err)
		}
		if _, err := s.Get(EntityID(TypeCategory, "Electronics - Smartphones")); err == nil {
			t.Error("compound category stored verbatim, want collapsed")
		}
	})

	t.Run("brand traversal", func(t *testing.T) {
		related, err := s.Related(EntityID(TypeBrand, "Nike"))
		if err != nil {
			t.Fatalf("Related: %v", err)
		}
		if len(related) != 1 || related[0].Direction != DirectionIncoming || related[0].Entity.Name != "Air Max 270" {
			t.Errorf("related = %+v, want one incoming made_by from Air Max 270", related)
		}
	})
}
