package pagecontent

import (
	"fmt"

	"github.com/invopop/jsonschema"
)

// JSONSchema describes the values object accepted for a component block built
// from definition. Property fields are required, scalar fields are nullable strings.
func JSONSchema(definition Definition) *jsonschema.Schema {
	properties := jsonschema.NewProperties()
	required := make([]string, 0, len(definition.Fields))

	for _, field := range definition.Fields {
		if field.Type == FieldTypeProperty {
			properties.Set(field.Key, propertyFieldSchema(field))
			required = append(required, field.Key)
			continue
		}
		properties.Set(field.Key, scalarFieldSchema(field))
	}

	schema := &jsonschema.Schema{
		Version:              jsonschema.Version,
		Type:                 "object",
		Title:                definition.Name,
		Properties:           properties,
		Required:             required,
		AdditionalProperties: jsonschema.FalseSchema,
	}
	if definition.Slug != "" {
		schema.ID = jsonschema.ID(fmt.Sprintf("urn:page-component:%s", definition.Slug))
	}
	return schema
}

func scalarFieldSchema(field Field) *jsonschema.Schema {
	return &jsonschema.Schema{
		Description: field.Type.String(),
		AnyOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "null"},
		},
	}
}

func propertyFieldSchema(field Field) *jsonschema.Schema {
	attributes := field.Attributes()
	entry := jsonschema.NewProperties()
	for _, attribute := range attributes {
		entry.Set(attribute, &jsonschema.Schema{Type: "string", Pattern: `\S`})
	}

	return &jsonschema.Schema{
		Description: field.Type.String(),
		Type:        "array",
		Items: &jsonschema.Schema{
			Type:       "object",
			Properties: entry,
			Required:   attributes,
		},
		Extras: map[string]interface{}{"minItems": 1},
	}
}
