package tool

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// schemaFor reflects a JSON schema for the argument struct of a local tool
// and flattens it into the map form the completion API expects.
func schemaFor[T any]() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}

	var args T
	schema := reflector.Reflect(&args)
	schema.Version = ""

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	var params map[string]any
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	delete(params, "$schema")
	return params, nil
}

func mustSchemaFor[T any]() map[string]any {
	params, err := schemaFor[T]()
	if err != nil {
		panic(err)
	}
	return params
}
