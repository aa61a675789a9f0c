package expand

import (
	"encoding/json"
	"strconv"

	"github.com/simkit/compgen/pkg/template"
)

// Coerce normalizes a raw default value against its declared type tag and
// returns the concrete representation attached to materialized properties:
// string, float64, or bool. A nil raw value normalizes to the type's zero
// value. Anything else that does not already carry the declared type fails
// with a TypeMismatchError; the only permitted reinterpretation is a textual
// default under a number tag that parses as a float.
func Coerce(name string, typ template.PropertyType, raw any) (any, error) {
	switch typ {
	case template.PropertyTypeString:
		return coerceString(name, raw)
	case template.PropertyTypeNumber:
		return coerceNumber(name, raw)
	case template.PropertyTypeBoolean:
		return coerceBoolean(name, raw)
	}
	return nil, &TypeMismatchError{Property: name, Declared: string(typ), Value: raw}
}

func coerceString(name string, raw any) (any, error) {
	switch value := raw.(type) {
	case nil:
		return "", nil
	case string:
		return value, nil
	}
	return nil, &TypeMismatchError{Property: name, Declared: string(template.PropertyTypeString), Value: raw}
}

func coerceNumber(name string, raw any) (any, error) {
	switch value := raw.(type) {
	case nil:
		return float64(0), nil
	case float64:
		return value, nil
	case float32:
		return float64(value), nil
	case int:
		return float64(value), nil
	case int32:
		return float64(value), nil
	case int64:
		return float64(value), nil
	case uint:
		return float64(value), nil
	case uint32:
		return float64(value), nil
	case uint64:
		return float64(value), nil
	case json.Number:
		parsed, err := value.Float64()
		if err != nil {
			return nil, &TypeMismatchError{Property: name, Declared: string(template.PropertyTypeNumber), Value: raw}
		}
		return parsed, nil
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, &TypeMismatchError{Property: name, Declared: string(template.PropertyTypeNumber), Value: raw}
		}
		return parsed, nil
	}
	return nil, &TypeMismatchError{Property: name, Declared: string(template.PropertyTypeNumber), Value: raw}
}

func coerceBoolean(name string, raw any) (any, error) {
	switch value := raw.(type) {
	case nil:
		return false, nil
	case bool:
		return value, nil
	}
	return nil, &TypeMismatchError{Property: name, Declared: string(template.PropertyTypeBoolean), Value: raw}
}
