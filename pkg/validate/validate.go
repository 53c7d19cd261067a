// Package validate runs struct-tag validation and reports failures as a flat
// list of field violations with human-readable messages.
//
// Rules are go-playground/validator tags; field names in violations come from
// the `json` tag so they match what the client sent:
//
//	type Input struct {
//	    Title    string   `json:"title"    validate:"required,min=3"`
//	    Price    float64  `json:"price"    validate:"gte=0"`
//	    Category string   `json:"category" validate:"required,objectid"`
//	    Images   []string `json:"images"   validate:"min=1,dive,required"`
//	}
//
//	if v := validate.Struct(in); validate.HasErrors(v) {
//	    // v[0].Field == "title", v[0].Message == "The title must be at least 3 characters."
//	}
//
// Besides the built-in tags, "objectid" checks for a 24-hex-digit document id.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Violation is one failed rule on one field.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations is the result of validating a value. Empty means valid.
type Violations []Violation

func (v Violations) Error() string {
	msgs := make([]string, len(v))
	for i, violation := range v {
		msgs[i] = violation.Message
	}
	return strings.Join(msgs, " ")
}

// Field returns the message for the named field, if it failed.
func (v Violations) Field(name string) (string, bool) {
	for _, violation := range v {
		if violation.Field == name {
			return violation.Message, true
		}
	}
	return "", false
}

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(fl.Field().String())
		})
		instance = v
	})
	return instance
}

// Struct validates every tagged field of v (and nested structs / dived
// slices). It never returns an error: a value that cannot be validated at all
// yields no violations.
func Struct(v interface{}) Violations {
	err := engine().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	out := make(Violations, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fieldPath(fe)
		out = append(out, Violation{Field: field, Message: message(field, fe)})
	}
	return out
}

// Var validates a single value against tag, reporting failures under name.
func Var(name string, value interface{}, tag string) Violations {
	err := engine().Var(value, tag)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	out := make(Violations, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, Violation{Field: name, Message: message(name, fe)})
	}
	return out
}

// HasErrors reports whether any rule failed.
func HasErrors(v Violations) bool { return len(v) > 0 }

// ─── Messages ────────────────────────────────────────────────────────────────

func message(field string, fe validator.FieldError) string {
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "required_if":
		other, value, _ := strings.Cut(param, " ")
		return fmt.Sprintf("The %s field is required when %s is %s.", field, lowerFirst(other), value)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "objectid":
		return fmt.Sprintf("The %s must be a valid identifier.", field)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("The %s must contain at least %s item(s).", field, param)
		default:
			return fmt.Sprintf("The %s must be at least %s.", field, param)
		}
	case "max":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("The %s must not contain more than %s item(s).", field, param)
		default:
			return fmt.Sprintf("The %s must not be greater than %s.", field, param)
		}
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", field, param)
	case "gte":
		return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
	case "lt":
		return fmt.Sprintf("The %s must be less than %s.", field, param)
	case "lte":
		return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
	case "url":
		return fmt.Sprintf("The %s must be a valid URL.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// fieldPath drops the root struct name from the namespace:
// "Order.products[0].name" → "products[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func jsonFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
