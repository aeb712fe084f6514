package entities

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// FieldError describes one failed validation rule
type FieldError struct {
	Field string
	Tag   string
	Param string
}

// ValidationError collects every rule an entity failed
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Param != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", f.Field, f.Tag, f.Param))
		} else {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s", f.Field, f.Tag))
		}
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Decimals are compared as floats so the numeric tags (gt, gte) apply to them
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return v
}

// Validate checks an entity against its struct tags
func Validate(entity interface{}) error {
	err := validate.Struct(entity)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	result := &ValidationError{Fields: make([]FieldError, 0, len(validationErrors))}
	for _, fe := range validationErrors {
		result.Fields = append(result.Fields, FieldError{
			Field: fe.StructNamespace(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return result
}
