package common

// Origin tells which retrieval path produced a context item.
type Origin string

const (
	OriginVector Origin = "vector"
	OriginGraph  Origin = "graph"
)

// ContextItem is one scored piece of evidence handed to the generator.
// Vector items carry chunk text with a similarity score; graph items carry
// entity snippets with a fixed confidence score.
type ContextItem struct {
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
	Origin Origin  `json:"origin"`
	Source string  `json:"source"`
	Title  string  `json:"title,omitempty"`
}

// Source is a citation attached to a generated answer.
type Source struct {
	Source string  `json:"source"`
	Title  string  `json:"title,omitempty"`
	Score  float64 `json:"relevance_score"`
}
