package output

import (
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"

	"github.com/vsinha/kitinv/pkg/application/dto"
	"github.com/vsinha/kitinv/pkg/domain/entities"
)

// Schema returns the JSON schema of the report emitted by the json format
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper:                    mapType,
	}
	var v dto.Report
	return json.MarshalIndent(reflector.Reflect(v), "", "  ")
}

// mapType describes the types that marshal themselves as strings
func mapType(t reflect.Type) *jsonschema.Schema {
	switch t {
	case reflect.TypeOf(decimal.Decimal{}):
		return &jsonschema.Schema{Type: "string", Pattern: `^-?[0-9]+(\.[0-9]+)?$`}
	case reflect.TypeOf(entities.StatusOK):
		return &jsonschema.Schema{Type: "string", Enum: []interface{}{
			entities.StatusOK.String(), entities.StatusLow.String(), entities.StatusCritical.String(),
		}}
	default:
		return nil
	}
}
