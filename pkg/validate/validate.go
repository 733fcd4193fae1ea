// Package validate runs go-playground/validator struct-tag rules and turns the
// failures into a field → message map keyed by JSON field name:
//
//	type Input struct {
//	    Name     string `json:"name"     validate:"required,max=120"`
//	    Quantity int    `json:"quantity" validate:"gte=1"`
//	}
//
//	errs := validate.Struct(in)
//	if validate.HasErrors(errs) { ... }
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate

	messagesMu sync.RWMutex
	messages   = map[string]string{}
)

func engine() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			switch name {
			case "-":
				return ""
			case "":
				return f.Name
			}
			return name
		})
	})
	return v
}

// Register adds a custom rule usable from `validate` tags. message is a
// format with one %s for the field name; empty means "The %s is invalid.".
func Register(tag string, fn func(value string) bool, message string) {
	_ = engine().RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
	if message != "" {
		messagesMu.Lock()
		messages[tag] = message
		messagesMu.Unlock()
	}
}

// Struct validates v and returns fieldName → message. The map is empty when v
// is valid. Nested fields use dotted paths (e.g. "schedules[0].openTime").
func Struct(s interface{}) map[string]string {
	errs := make(map[string]string)

	err := engine().Struct(s)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["_"] = err.Error()
		return errs
	}
	for _, fe := range verrs {
		name := fieldPath(fe)
		if _, seen := errs[name]; !seen {
			errs[name] = message(fe)
		}
	}
	return errs
}

// HasErrors reports whether errs holds any failure.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "min":
		if isNumber(fe.Kind()) {
			return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
	case "max":
		if isNumber(fe.Kind()) {
			return fmt.Sprintf("The %s may not be greater than %s.", field, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s characters.", field, fe.Param())
	case "gte":
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "lte":
		return fmt.Sprintf("The %s may not be greater than %s.", field, fe.Param())
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The %s must be one of: %s.", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url", "http_url":
		return fmt.Sprintf("The %s must be a valid URL.", field)
	case "alphanum":
		return fmt.Sprintf("The %s may only contain letters and numbers.", field)
	case "datetime":
		return fmt.Sprintf("The %s does not match the format %s.", field, fe.Param())
	case "required_if", "required_with":
		return fmt.Sprintf("The %s field is required.", field)
	case "unique":
		return fmt.Sprintf("The %s may not contain duplicates.", field)
	default:
		messagesMu.RLock()
		custom, ok := messages[fe.Tag()]
		messagesMu.RUnlock()
		if ok {
			return fmt.Sprintf(custom, field)
		}
		return fmt.Sprintf("The %s is invalid.", field)
	}
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
