package ai

import (
	"strings"
	"testing"

	"github.com/shopgraph/backend/pkg/common"
)

func TestUnmarshalFlexible(t *testing.T) {
	type verdict struct {
		Relevance int `json:"relevance"`
		Accuracy  int `json:"accuracy"`
	}

	tests := []struct {
		name  string
		input string
	}{
		{name: "clean json", input: `{"relevance": 4, "accuracy": 5}`},
		{name: "double encoded", input: `"{\"relevance\": 4, \"accuracy\": 5}"`},
		{name: "trailing comma", input: `{"relevance": 4, "accuracy": 5,}`},
		{name: "code fence", input: "```json\n{\"relevance\": 4, \"accuracy\": 5}\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out verdict
			if err := UnmarshalFlexible(tt.input, &out); err != nil {
				t.Fatalf("UnmarshalFlexible returned error: %v", err)
			}
			if out.Relevance != 4 || out.Accuracy != 5 {
				t.Errorf("unexpected result: %+v", out)
			}
		})
	}
}

func TestBuildContextBlockGraphOnly(t *testing.T) {
	block := BuildContextBlock([]common.ContextItem{
		{Text: "Entity: nike (brand)", Origin: common.OriginGraph, Score: 0.9},
	})
	if !strings.Contains(block, "VERIFIED KNOWLEDGE GRAPH") {
		t.Error("graph header missing")
	}
	if strings.Contains(block, "SEMANTIC SEARCH RESULTS") {
		t.Error("vector header must not appear without vector items")
	}
	if strings.Contains(block, "two sources of information") {
		t.Error("hybrid instruction must not appear without both sections")
	}
}

func TestBuildContextBlockHybrid(t *testing.T) {
	block := BuildContextBlock([]common.ContextItem{
		{Text: "Entity: nike (brand)", Origin: common.OriginGraph, Score: 0.9},
		{Text: "Nike makes running shoes.", Origin: common.OriginVector, Source: "doc:1", Score: 0.7},
	})

	graphAt := strings.Index(block, "VERIFIED KNOWLEDGE GRAPH")
	vectorAt := strings.Index(block, "SEMANTIC SEARCH RESULTS")
	if graphAt == -1 || vectorAt == -1 {
		t.Fatal("expected both section headers")
	}
	if graphAt > vectorAt {
		t.Error("graph section must come before the vector section")
	}
	if !strings.Contains(block, "[Source: doc:1]") {
		t.Error("vector item missing its source tag")
	}
	if !strings.Contains(block, "two sources of information") {
		t.Error("hybrid instruction missing")
	}
}

func TestBuildContextBlockEmpty(t *testing.T) {
	if block := BuildContextBlock(nil); block != "" {
		t.Errorf("expected empty block, got %q", block)
	}
}
