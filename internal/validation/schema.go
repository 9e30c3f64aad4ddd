// Package validation holds the declarative schemas checkout forms are
// checked against before anything is sent to the commerce backend.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// FormValues is the flat field set submitted by a form.
type FormValues map[string]string

// Get returns the trimmed value of key.
func (v FormValues) Get(key string) string {
	return strings.TrimSpace(v[key])
}

// WithoutPrefix returns the entries named "<prefix>.<field>", keyed by field.
func (v FormValues) WithoutPrefix(prefix string) FormValues {
	out := make(FormValues)
	p := prefix + "."
	for k, val := range v {
		if strings.HasPrefix(k, p) {
			out[strings.TrimPrefix(k, p)] = val
		}
	}
	return out
}

// FieldErrors maps a submitted field name to its messages.
type FieldErrors map[string][]string

// Add appends msg to the messages of field.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Errors is the flattened error shape returned to the form that failed.
type Errors struct {
	FormErrors  []string    `json:"formErrors,omitempty"`
	FieldErrors FieldErrors `json:"fieldErrors,omitempty"`
}

// Messages maps "field.tag" (or just "field") to a user facing message.
type Messages map[string]string

// Schema validates a form of shape T. The zero prefix validates plain field
// names; a prefixed schema reads and reports "<prefix>.<field>".
type Schema[T any] struct {
	prefix   string
	messages Messages
}

// NewSchema builds a schema for T using its `form` and `validate` tags.
func NewSchema[T any](messages ...Messages) Schema[T] {
	merged := make(Messages)
	for _, m := range messages {
		for k, v := range m {
			merged[k] = v
		}
	}
	return Schema[T]{messages: merged}
}

// WithPrefix returns a copy of the schema that reads its fields under prefix.
func (s Schema[T]) WithPrefix(prefix string) Schema[T] {
	s.prefix = prefix
	return s
}

// Prefix returns the field-name prefix, if any.
func (s Schema[T]) Prefix() string {
	return s.prefix
}

// Parse decodes values into T and validates it. A nil FieldErrors means the
// form is valid.
func (s Schema[T]) Parse(values FormValues) (T, FieldErrors) {
	var out T
	src := values
	if s.prefix != "" {
		src = values.WithoutPrefix(s.prefix)
	}

	in := make(map[string]any, len(src))
	for k, v := range src {
		in[k] = strings.TrimSpace(v)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "form",
		Squash:           true,
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, FieldErrors{"": {fmt.Sprintf("invalid form schema: %v", err)}}
	}
	if err := decoder.Decode(in); err != nil {
		return out, FieldErrors{"": {fmt.Sprintf("invalid form data: %v", err)}}
	}

	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return out, FieldErrors{"": {err.Error()}}
		}
		fieldErrors := make(FieldErrors)
		for _, e := range verrs {
			fieldErrors.Add(s.fieldName(e.Field()), s.message(e.Field(), e.Tag()))
		}
		return out, fieldErrors
	}
	return out, nil
}

func (s Schema[T]) fieldName(field string) string {
	if s.prefix == "" {
		return field
	}
	return s.prefix + "." + field
}

func (s Schema[T]) message(field, tag string) string {
	if msg, ok := s.messages[field+"."+tag]; ok {
		return msg
	}
	if msg, ok := s.messages[field]; ok {
		return msg
	}
	return fmt.Sprintf("Field '%s' failed on the '%s' tag", field, tag)
}

var (
	validate = newValidator()

	nonDigits  = regexp.MustCompile(`\D`)
	alphaSpace = regexp.MustCompile(`^[a-zA-Z\s]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Both registrations only fail on an empty tag name.
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return len(DigitsOnly(fl.Field().String())) >= 10
	})
	_ = v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return alphaSpace.MatchString(fl.Field().String())
	})
	return v
}

// DigitsOnly strips every non-digit character from s.
func DigitsOnly(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}
