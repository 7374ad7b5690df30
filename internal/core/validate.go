package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	// both cannot fail: the names are valid and the funcs non-nil
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("nonempty", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
			return fl.Field().Len() > 0
		}
		return true
	})
	return v
}

// emptyTags mark rules about missing input.
var emptyTags = map[string]bool{
	"required":         true,
	"required_without": true,
	"notblank":         true,
	"nonempty":         true,
}

// Validate checks the validate tags of the struct v. A missing value is
// validation.empty-input, every other violation is
// validation.out-of-range-parameter. Only the first violation is reported.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return &Error{Kind: KindInvalidArgument, Detail: "cannot validate", Cause: err}
	}
	fe := fields[0]
	kind := KindOutOfRange
	if emptyTags[fe.Tag()] {
		kind = KindEmptyInput
	}
	return &Error{Kind: kind, Detail: describe(fe)}
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fe.Tag() {
	case "required", "notblank", "nonempty":
		return field + " is empty"
	case "required_without":
		return fmt.Sprintf("%s is empty and so is %s", field, strings.ToLower(fe.Param()))
	case "oneof":
		return fmt.Sprintf("unsupported %s %q, expected one of %s",
			field, fmt.Sprint(fe.Value()), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s, got %s", field, fe.Param(), size(fe))
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s, got %s", field, fe.Param(), size(fe))
	default:
		return fmt.Sprintf("%s fails %s", field, fe.Tag())
	}
}

// size renders the measured quantity: length for strings and slices,
// the value for numbers.
func size(fe validator.FieldError) string {
	v := reflect.ValueOf(fe.Value())
	switch fe.Kind() {
	case reflect.String:
		return fmt.Sprintf("%d characters", utf8.RuneCountInString(v.String()))
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("%d items", v.Len())
	default:
		return fmt.Sprint(fe.Value())
	}
}
