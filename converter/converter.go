// Package converter holds the closed set of value converters used by
// dynamic rule segments.
package converter

import (
	"errors"
	"fmt"
)

var (
	// ErrRejected is returned when a captured segment is not accepted by a
	// converter. It is the normal "this rule does not apply" outcome.
	ErrRejected = errors.New("converter: value rejected")

	// ErrUnsupportedValue is returned by Format for Go values the converter
	// cannot turn into URL text.
	ErrUnsupportedValue = errors.New("converter: unsupported value")

	// ErrInvalidParams is returned by New for inconsistent parameters.
	ErrInvalidParams = errors.New("converter: invalid params")
)

// Kind identifies one of the built-in converters.
type Kind uint8

const (
	String Kind = iota
	Int
	Float
	UUID
	Path
	Any
)

var kindNames = [...]string{
	String: "string",
	Int:    "int",
	Float:  "float",
	UUID:   "uuid",
	Path:   "path",
	Any:    "any",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "unknown"
}

// Lookup returns the converter kind registered under name.
// Empty and unknown names fall back to String.
func Lookup(name string) Kind {
	switch name {
	case "int":
		return Int
	case "float":
		return Float
	case "uuid":
		return UUID
	case "path":
		return Path
	case "any":
		return Any
	}

	return String
}

// Converter validates captured text, formats typed values back into URL
// text and describes the accepted text as a regular expression.
//
// The set of implementations is closed: only this package can provide one.
type Converter interface {
	Kind() Kind

	// Convert validates text and returns the typed value.
	Convert(text string) (any, error)

	// Format returns the URL text for v. v may be the converter's typed value
	// or a string, which is validated with Convert first.
	Format(v any) (string, error)

	// Regex describes the accepted text. Informational only.
	Regex() string

	sealed()
}

// Params is the registration-time parameter grammar of the converters.
//
// String uses MinLength, MaxLength and Length; Int uses FixedDigits, Min and
// Max; Float uses Min and Max. Other fields are ignored.
type Params struct {
	MinLength   int      `yaml:"minlength"`
	MaxLength   int      `yaml:"maxlength"`
	Length      int      `yaml:"length"`
	FixedDigits int      `yaml:"fixed_digits"`
	Min         *float64 `yaml:"min"`
	Max         *float64 `yaml:"max"`
}

// Bound is a helper to fill Params.Min and Params.Max.
func Bound(v float64) *float64 {
	return &v
}

func (p Params) validate(kind Kind) error {
	switch {
	case p.MinLength < 0, p.MaxLength < 0, p.Length < 0, p.FixedDigits < 0:
		return fmt.Errorf("%w: negative length for %s converter", ErrInvalidParams, kind)
	case p.MaxLength > 0 && p.MinLength > p.MaxLength:
		return fmt.Errorf("%w: minlength %d > maxlength %d", ErrInvalidParams, p.MinLength, p.MaxLength)
	case p.Min != nil && p.Max != nil && *p.Min > *p.Max:
		return fmt.Errorf("%w: min %v > max %v", ErrInvalidParams, *p.Min, *p.Max)
	}

	return nil
}

// New returns the converter for kind configured with params.
// items is only used by Any and must not be empty for it.
func New(kind Kind, items []string, params Params) (Converter, error) {
	if err := params.validate(kind); err != nil {
		return nil, err
	}

	switch kind {
	case Int:
		return newIntConverter(params), nil
	case Float:
		return newFloatConverter(params), nil
	case UUID:
		return uuidConverter{}, nil
	case Path:
		return pathConverter{}, nil
	case Any:
		if len(items) == 0 {
			return nil, fmt.Errorf("%w: any converter requires at least one item", ErrInvalidParams)
		}

		return newAnyConverter(items), nil
	}

	return newStringConverter(params), nil
}

func reject(kind Kind, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrRejected, kind, fmt.Sprintf(format, args...))
}

func unsupported(kind Kind, v any) error {
	return fmt.Errorf("%w: %s converter cannot format %T", ErrUnsupportedValue, kind, v)
}

// formatString validates a string value through c and formats the result.
func formatString(c Converter, s string) (string, error) {
	v, err := c.Convert(s)
	if err != nil {
		return "", err
	}

	return c.Format(v)
}
