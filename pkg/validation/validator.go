package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one invalid input property with every failed constraint.
type FieldError struct {
	Property    string
	Value       any
	Constraints []string
}

// Errors is returned by Validate when any field fails.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Property+": "+strings.Join(fe.Constraints, ", "))
	}
	return strings.Join(parts, "; ")
}

type Validator struct {
	validate *validator.Validate
}

// New validates `binding` tags, the same tags gin checks on bind.
func New() *Validator {
	v := validator.New()
	v.SetTagName("binding")
	UseJSONFieldNames(v)
	return &Validator{validate: v}
}

// UseJSONFieldNames makes FieldError.Field report the json name. The router
// applies it to gin's binding engine too.
func UseJSONFieldNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Engine exposes the underlying validator, e.g. for gin's binding engine.
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

// Validate checks s and returns Errors grouped by json property name.
func (v *Validator) Validate(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	return Translate(err)
}

// Translate converts validator errors into Errors. Other errors pass through.
func Translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var out Errors
	index := make(map[string]int)
	for _, e := range verrs {
		property := e.Field()
		msg := Message(e.StructField(), property, e.Tag(), e.Param(), isNumber(e.Kind()))

		if i, ok := index[property]; ok {
			out[i].Constraints = append(out[i].Constraints, msg)
			continue
		}
		index[property] = len(out)
		out = append(out, FieldError{
			Property:    property,
			Value:       e.Value(),
			Constraints: []string{msg},
		})
	}
	return out
}

// Message resolves the Indonesian message for a failed constraint.
func Message(structField, property, tag, param string, numeric bool) string {
	if msg, ok := CustomMessage(structField, tag); ok {
		return msg
	}
	return DefaultMessage(property, tag, param, numeric)
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
