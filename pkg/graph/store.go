package graph

import (
	"fmt"
	"sync"

	"github.com/shopgraph/backend/pkg/common"
)

// Direction tells whether a related entity sits at the head or tail of the
// connecting relationship, seen from the queried entity.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)

// Relationship is a directed, typed edge between two entities.
type Relationship struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Type     string `json:"type"`
}

// Related pairs a neighboring entity with the relationship that connects it.
type Related struct {
	Type      string    `json:"relationship"`
	Direction Direction `json:"direction"`
	Entity    Entity    `json:"entity"`
}

type edge struct {
	relType string
	other   string
}

// Store is the in-memory knowledge graph. A single RWMutex guards all state:
// reads take the shared lock, mutations the exclusive one, so readers always
// observe either the full prior state or the full new state.
type Store struct {
	mu       sync.RWMutex
	entities map[string]*Entity
	outgoing map[string][]edge
	incoming map[string][]edge
	byType   map[EntityType][]string
	nameToID map[string]string
}

// NewStore creates an empty knowledge graph.
func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.entities = make(map[string]*Entity)
	s.outgoing = make(map[string][]edge)
	s.incoming = make(map[string][]edge)
	s.byType = make(map[EntityType][]string)
	s.nameToID = make(map[string]string)
}

// UpsertEntity inserts or updates an entity and returns its ID. The ID is
// derived from (type, normalized name), so re-ingesting the same entity
// merges properties instead of duplicating the node.
func (s *Store) UpsertEntity(typ EntityType, name string, props Props) (string, error) {
	if NormalizeName(name) == "" {
		return "", fmt.Errorf("%w: entity name must not be empty", common.ErrValidation)
	}

	id := EntityID(typ, name)

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.entities[id]
	if !ok {
		s.entities[id] = &Entity{
			ID:    id,
			Type:  typ,
			Name:  name,
			Props: props,
		}
		s.byType[typ] = append(s.byType[typ], id)
		s.nameToID[NormalizeName(name)] = id
		return id, nil
	}

	if props != nil {
		if existing.Props == nil {
			existing.Props = props
		} else {
			existing.Props = existing.Props.merge(props)
		}
	}

	return id, nil
}

// UpsertRelationship adds a directed edge between two existing entities.
// Both endpoints must exist, self-loops are rejected, and the exact
// (source, target, type) triple is idempotent.
func (s *Store) UpsertRelationship(sourceID, targetID, relType string) error {
	if sourceID == targetID {
		return fmt.Errorf("%w: self-loop on %q", common.ErrValidation, sourceID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[sourceID]; !ok {
		return fmt.Errorf("%w: source entity %q", common.ErrNotFound, sourceID)
	}
	if _, ok := s.entities[targetID]; !ok {
		return fmt.Errorf("%w: target entity %q", common.ErrNotFound, targetID)
	}

	for _, e := range s.outgoing[sourceID] {
		if e.other == targetID && e.relType == relType {
			return nil
		}
	}

	s.outgoing[sourceID] = append(s.outgoing[sourceID], edge{relType: relType, other: targetID})
	s.incoming[targetID] = append(s.incoming[targetID], edge{relType: relType, other: sourceID})
	return nil
}

// Get looks an entity up by ID or by name and returns a snapshot copy.
func (s *Store) Get(nameOrID string) (Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entities[nameOrID]; ok {
		return *e, nil
	}
	if id, ok := s.nameToID[NormalizeName(nameOrID)]; ok {
		return *s.entities[id], nil
	}
	return Entity{}, fmt.Errorf("%w: entity %q", common.ErrNotFound, nameOrID)
}

// Related lists the neighbors of an entity: outgoing edges first, then
// incoming, each group in insertion order.
func (s *Store) Related(entityID string) ([]Related, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.entities[entityID]; !ok {
		return nil, fmt.Errorf("%w: entity %q", common.ErrNotFound, entityID)
	}

	related := []Related{}
	for _, e := range s.outgoing[entityID] {
		neighbor, ok := s.entities[e.other]
		if !ok {
			continue
		}
		related = append(related, Related{
			Type:      e.relType,
			Direction: DirectionOutgoing,
			Entity:    *neighbor,
		})
	}
	for _, e := range s.incoming[entityID] {
		neighbor, ok := s.entities[e.other]
		if !ok {
			continue
		}
		related = append(related, Related{
			Type:      e.relType,
			Direction: DirectionIncoming,
			Entity:    *neighbor,
		})
	}

	return related, nil
}

// ProductsFor lists the products linked to a brand, category, price range
// or feature entity, in insertion order.
func (s *Store) ProductsFor(nameOrID string) ([]Entity, error) {
	anchor, err := s.Get(nameOrID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	products := []Entity{}
	for _, e := range s.incoming[anchor.ID] {
		neighbor, ok := s.entities[e.other]
		if !ok || neighbor.Type != TypeProduct {
			continue
		}
		products = append(products, *neighbor)
	}
	return products, nil
}

// EntitiesByType returns snapshot copies of every entity of the given type,
// in insertion order.
func (s *Store) EntitiesByType(typ EntityType) []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entities := make([]Entity, 0, len(s.byType[typ]))
	for _, id := range s.byType[typ] {
		entities = append(entities, *s.entities[id])
	}
	return entities
}

// Clear drops all entities and relationships in one step. Concurrent readers
// see either the full prior graph or the empty one, never a partial state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// Stats summarizes the current graph size.
type Stats struct {
	TotalEntities      int            `json:"total_entities"`
	TotalRelationships int            `json:"total_relationships"`
	EntitiesByType     map[string]int `json:"entities_by_type"`
}

// Stats returns entity and relationship counts, broken down by entity type.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totalRelationships := 0
	for _, edges := range s.outgoing {
		totalRelationships += len(edges)
	}

	byType := make(map[string]int, len(s.byType))
	for typ, ids := range s.byType {
		byType[string(typ)] = len(ids)
	}

	return Stats{
		TotalEntities:      len(s.entities),
		TotalRelationships: totalRelationships,
		EntitiesByType:     byType,
	}
}

func (s *Store) degreeLocked(entityID string) int {
	return len(s.outgoing[entityID]) + len(s.incoming[entityID])
}
