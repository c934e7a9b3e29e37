// Package validation checks item payloads and reports every violated field.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"items-api/models"
)

// FieldError describes a single rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned when a payload fails validation. It always carries at
// least one FieldError.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		if f.Field == "" {
			msgs[i] = f.Message
			continue
		}
		msgs[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// IsValidationError reports whether err wraps a *Error.
func IsValidationError(err error) (*Error, bool) {
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}

const (
	msgInvalidJSON   = "Invalid JSON body"
	msgEmptyUpdate   = "At least one field must be provided for update"
	msgNameRequired  = "Name is required"
	msgPriceRequired = "Price is required"
	msgPricePositive = "Price must be positive"
	msgCatRequired   = "Category is required"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})
	return v
}

// Struct runs the shared validator over any tagged struct. The config
// package uses it for settings.
func Struct(v any) error {
	return validate.Struct(v)
}

// DecodeCreate decodes and validates a create payload. Fields with the wrong
// JSON type are reported alongside every other rule the payload breaks.
func DecodeCreate(r io.Reader) (models.CreateItemInput, error) {
	var in models.CreateItemInput
	typed, err := decode(r, &in)
	if err != nil {
		return in, err
	}
	return in, merge(typed, ValidateCreate(in))
}

// DecodeUpdate decodes and validates an update payload.
func DecodeUpdate(r io.Reader) (models.UpdateItemInput, error) {
	var in models.UpdateItemInput
	typed, err := decode(r, &in)
	if err != nil {
		return in, err
	}
	if len(typed) > 0 && in.Empty() {
		return in, &Error{Fields: typed}
	}
	return in, merge(typed, ValidateUpdate(in))
}

// ValidateCreate requires name, price and category.
func ValidateCreate(in models.CreateItemInput) error {
	return translate(validate.Struct(in))
}

// ValidateUpdate applies the create rules to the fields that are present and
// rejects an update that carries no field at all.
func ValidateUpdate(in models.UpdateItemInput) error {
	if in.Empty() {
		return &Error{Fields: []FieldError{{Message: msgEmptyUpdate}}}
	}
	return translate(validate.Struct(in))
}

// decode unmarshals body into v. A field of the wrong type is returned as a
// FieldError rather than an error so the caller can still validate the rest;
// encoding/json keeps filling the other fields and reports only the first
// mismatch.
func decode(r io.Reader, v any) ([]FieldError, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	err = json.Unmarshal(body, v)
	if err == nil {
		return nil, nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return []FieldError{{
			Field:   typeErr.Field,
			Message: typeErr.Field + " has an invalid type",
		}}, nil
	}
	return nil, &Error{Fields: []FieldError{{Message: msgInvalidJSON}}}
}

// merge puts type errors first and drops rule failures for the same fields.
func merge(typed []FieldError, err error) error {
	if len(typed) == 0 {
		return err
	}
	out := &Error{Fields: typed}
	if err == nil {
		return out
	}
	vErr, ok := IsValidationError(err)
	if !ok {
		return err
	}
	seen := make(map[string]bool, len(typed))
	for _, f := range typed {
		seen[f.Field] = true
	}
	for _, f := range vErr.Fields {
		if !seen[f.Field] {
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Error{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "name":
		return msgNameRequired
	case "price":
		if fe.Tag() == "required" {
			return msgPriceRequired
		}
		return msgPricePositive
	case "category":
		if fe.Tag() == "required" {
			return msgCatRequired
		}
		return "Category must be one of: " + strings.Join(models.CategoryNames(), ", ")
	}
	return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
}
