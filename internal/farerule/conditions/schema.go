package conditions

import (
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

func newReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		DoNotReference:             true,
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == decimalType {
				return &jsonschema.Schema{
					OneOf: []*jsonschema.Schema{
						{Type: "number"},
						{Type: "string", Pattern: `^-?[0-9]+(\.[0-9]+)?$`},
					},
				}
			}
			return nil
		},
	}
}

// Schema describes the conditions payload accepted for category.
func Schema(category Category) (*jsonschema.Schema, error) {
	target, err := New(category)
	if err != nil {
		return nil, err
	}
	schema := newReflector().Reflect(target)
	schema.ID = jsonschema.ID(fmt.Sprintf("https://skyfare.dev/schemas/conditions/%s.json", category))
	schema.Title = fmt.Sprintf("%s conditions", category)
	return schema, nil
}

// Schemas returns the schema of every category keyed by category tag.
func Schemas() (map[Category]*jsonschema.Schema, error) {
	out := make(map[Category]*jsonschema.Schema, len(CategoryOrder))
	for _, category := range CategoryOrder {
		schema, err := Schema(category)
		if err != nil {
			return nil, err
		}
		out[category] = schema
	}
	return out, nil
}
