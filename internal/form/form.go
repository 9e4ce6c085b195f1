// Package form is the editable representation of an entity: ordered string
// fields that are validated and then converted back into request values.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/emilianohg/sitecrew/internal/display"
)

type Kind int

const (
	Text Kind = iota
	Secret
	Number
	Date
	Choice
	ID
)

type Option struct {
	Value string
	Label string
}

// Options builds choices whose label is the value itself.
func Options(values ...string) []Option {
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Value: v, Label: v}
	}
	return out
}

type Field struct {
	Key      string
	Label    string
	Kind     Kind
	Value    string
	Required bool
	Options  []Option
}

// Typed reports whether the field takes free keyboard input.
func (f Field) Typed() bool {
	return f.Kind != Choice && f.Kind != ID
}

// Display is the text shown for the current value.
func (f Field) Display() string {
	if f.Typed() {
		if f.Kind == Secret {
			return strings.Repeat("•", len([]rune(f.Value)))
		}
		return f.Value
	}
	for _, o := range f.Options {
		if o.Value == f.Value {
			return o.Label
		}
	}
	if f.Value == "" {
		return display.Placeholder
	}
	return f.Value
}

var ErrInvalid = errors.New("invalid form")

// ValidationError names the first field that blocks submission.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

type Form struct {
	Title  string
	Fields []Field
}

func New(title string, fields ...Field) *Form {
	return &Form{Title: title, Fields: fields}
}

func (f *Form) index(key string) int {
	for i := range f.Fields {
		if f.Fields[i].Key == key {
			return i
		}
	}
	return -1
}

func (f *Form) Get(key string) string {
	if i := f.index(key); i >= 0 {
		return f.Fields[i].Value
	}
	return ""
}

func (f *Form) Set(key, value string) {
	if i := f.index(key); i >= 0 {
		f.Fields[i].Value = value
	}
}

// SetOptions replaces the choices of key, e.g. once lookups have loaded.
func (f *Form) SetOptions(key string, opts []Option) {
	if i := f.index(key); i >= 0 {
		f.Fields[i].Options = opts
	}
}

// Cycle moves a choice field delta steps through its options, wrapping.
// Optional fields include the empty value in the cycle.
func (f *Form) Cycle(key string, delta int) {
	i := f.index(key)
	if i < 0 {
		return
	}
	field := &f.Fields[i]

	values := make([]string, 0, len(field.Options)+1)
	if !field.Required {
		values = append(values, "")
	}
	for _, o := range field.Options {
		values = append(values, o.Value)
	}
	if len(values) == 0 {
		return
	}

	pos := 0
	for j, v := range values {
		if v == field.Value {
			pos = j
			break
		}
	}
	pos = ((pos+delta)%len(values) + len(values)) % len(values)
	field.Value = values[pos]
}

// Clone copies the form so the copy can be read while the original is
// still being edited.
func (f *Form) Clone() *Form {
	out := &Form{Title: f.Title, Fields: make([]Field, len(f.Fields))}
	for i, field := range f.Fields {
		field.Options = append([]Option(nil), field.Options...)
		out.Fields[i] = field
	}
	return out
}

func (f *Form) Values() map[string]string {
	out := make(map[string]string, len(f.Fields))
	for _, field := range f.Fields {
		out[field.Key] = field.Value
	}
	return out
}

// Validate returns the first problem found, in field order.
func (f *Form) Validate() error {
	for _, field := range f.Fields {
		v := strings.TrimSpace(field.Value)
		if v == "" {
			if field.Required {
				return &ValidationError{Field: field.Label, Reason: "is required"}
			}
			continue
		}

		switch field.Kind {
		case Number:
			if _, err := decimal.NewFromString(v); err != nil {
				return &ValidationError{Field: field.Label, Reason: "must be a number"}
			}
		case ID:
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				return &ValidationError{Field: field.Label, Reason: "must be selected"}
			}
		case Date:
			if _, ok := display.ParseDate(v); !ok {
				return &ValidationError{Field: field.Label, Reason: "must be a date (YYYY-MM-DD)"}
			}
		case Choice:
			if len(field.Options) > 0 && !hasOption(field.Options, v) {
				return &ValidationError{Field: field.Label, Reason: "is not a valid choice"}
			}
		}
	}
	return nil
}

func hasOption(opts []Option, v string) bool {
	for _, o := range opts {
		if o.Value == v {
			return true
		}
	}
	return false
}

// OptString is nil for blank input.
func OptString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func OptDecimal(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %q is not a number", ErrInvalid, s)
	}
	return decimal.NewNullDecimal(d), nil
}

func OptInt64(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not an id", ErrInvalid, s)
	}
	return &n, nil
}

// FromString, FromDecimal and FromInt64 are the inverse of the Opt
// converters, used to seed a form from an entity.
func FromString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func FromDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func FromInt64(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}
