package ai

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"

	"github.com/shopgraph/backend/pkg/common"
)

// GenerateSchema creates a JSON Schema from the given Go type.
// It uses reflection to inspect the type structure and generates
// a schema suitable for use with AI structured output.
func GenerateSchema(value any) any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	t := reflect.TypeOf(value)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	v := reflect.New(t).Interface()
	return reflector.Reflect(v)
}

// UnmarshalFlexible attempts to unmarshal JSON into the target, repairing
// malformed input before giving up. Model output is not guaranteed to be
// valid JSON even with a schema-constrained request.
func UnmarshalFlexible(input string, out any) error {
	input = strings.TrimSpace(input)

	if err := json.Unmarshal([]byte(input), out); err == nil {
		return nil
	}

	// Some models return the object double-encoded as a JSON string.
	var asString string
	if err := json.Unmarshal([]byte(input), &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if err := json.Unmarshal([]byte(asString), out); err == nil {
			return nil
		}
		input = asString
	}

	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return fmt.Errorf("json repair failed: %w", err)
	}

	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("failed to unmarshal repaired json: %w", err)
	}

	return nil
}

// BuildContextBlock renders retrieval output into the prompt context block:
// graph facts first under their trusted header, vector chunks second, and
// the hybrid arbitration instruction when both sections are present.
func BuildContextBlock(items []common.ContextItem) string {
	var graphParts, vectorParts []string
	for _, item := range items {
		switch item.Origin {
		case common.OriginGraph:
			graphParts = append(graphParts, item.Text)
		default:
			vectorParts = append(vectorParts, fmt.Sprintf("[Source: %s]\n%s", item.Source, item.Text))
		}
	}

	sections := []string{}
	if len(graphParts) > 0 {
		sections = append(sections, GraphContextHeader+"\n\n"+strings.Join(graphParts, "\n\n"))
	}
	if len(vectorParts) > 0 {
		sections = append(sections, VectorContextHeader+"\n\n"+strings.Join(vectorParts, "\n\n"))
	}
	if len(graphParts) > 0 && len(vectorParts) > 0 {
		sections = append(sections, HybridInstruction)
	}

	return strings.Join(sections, "\n\n")
}
