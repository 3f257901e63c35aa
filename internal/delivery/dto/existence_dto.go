package dto

import (
	"bytes"
	"encoding/json"
	"reflect"

	"care-registry/pkg/validator"
)

// DateLayout is the date of birth layout accepted from clients. time.Parse
// accepts both zero-padded and unpadded month and day with it.
// The datetime tag on ExistenceCheckRequest.DOB must use the same layout.
const DateLayout = "2006-1-2"

// OptionalString is a JSON string field that remembers whether it was sent.
// A field sent as null is Present with an empty Value.
type OptionalString struct {
	Value   string
	Present bool
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = ""
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Present {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// OptionalStringPresence lets the validator see an OptionalString as a bool,
// so `required` means "the key was sent" rather than "the value is non-empty".
func OptionalStringPresence(field reflect.Value) interface{} {
	if o, ok := field.Interface().(OptionalString); ok {
		return o.Present
	}
	return nil
}

// WithOptionalStrings registers OptionalStringPresence on a new validator
func WithOptionalStrings() validator.Option {
	return validator.WithCustomTypeFunc(OptionalStringPresence, OptionalString{})
}

// ExistenceCheckRequest is the body of POST /check
type ExistenceCheckRequest struct {
	Role OptionalString `json:"role" validate:"required"`
	Name string         `json:"name" validate:"required,nonul"`
	DOB  string         `json:"dob" validate:"required,datetime=2006-1-2"`
}

// ExistenceCheckResponse is returned both when a record is found (200) and when it is not (400)
type ExistenceCheckResponse struct {
	Exist bool `json:"exist"`
}
