package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type enum interface {
	Valid() bool
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// "enum" accepts any field whose type knows its own valid values.
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(enum)
		return ok && e.Valid()
	})
	return v
}

// MalformedError reports a stored document that does not satisfy its schema.
type MalformedError struct {
	Kind string
	ID   string
	Err  error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed %s document %q: %v", e.Kind, e.ID, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

func check(kind, id string, v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return &MalformedError{Kind: kind, ID: id, Err: err}
	}
	return nil
}
