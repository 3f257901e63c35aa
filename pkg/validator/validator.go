package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

// Option configures the underlying validator before it is shared
type Option func(*validator.Validate)

// WithCustomTypeFunc makes the validator see values of the given types
// through fn before running tags on them.
func WithCustomTypeFunc(fn validator.CustomTypeFunc, types ...interface{}) Option {
	return func(v *validator.Validate) {
		v.RegisterCustomTypeFunc(fn, types...)
	}
}

func NewValidator(opts ...Option) *CustomValidator {
	v := validator.New()

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Postgres rejects NUL in text parameters
	_ = v.RegisterValidation("nonul", func(fl validator.FieldLevel) bool {
		return !strings.ContainsRune(fl.Field().String(), 0)
	})

	for _, opt := range opts {
		opt(v)
	}

	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	fieldErrors := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				fieldErrors[field] = field + " is required"
			case "datetime":
				fieldErrors[field] = field + " must be a valid date (YYYY-MM-DD)"
			case "nonul":
				fieldErrors[field] = field + " must not contain NUL characters"
			case "min":
				fieldErrors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				fieldErrors[field] = field + " must be at most " + e.Param() + " characters"
			default:
				fieldErrors[field] = field + " is invalid"
			}
		}
	}

	return fieldErrors
}
