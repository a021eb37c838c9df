package converter

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

type stringConverter struct {
	minLength int
	maxLength int
	length    int
}

func newStringConverter(p Params) *stringConverter {
	c := &stringConverter{
		minLength: p.MinLength,
		maxLength: p.MaxLength,
		length:    p.Length,
	}

	if c.minLength == 0 {
		c.minLength = 1
	}

	return c
}

func (c *stringConverter) Kind() Kind { return String }

func (c *stringConverter) sealed() {}

func (c *stringConverter) Convert(text string) (any, error) {
	if strings.IndexByte(text, '/') != -1 {
		return nil, reject(String, "%q contains '/'", text)
	}

	n := utf8.RuneCountInString(text)

	if c.length > 0 {
		if n != c.length {
			return nil, reject(String, "length %d does not match required %d", n, c.length)
		}

		return text, nil
	}

	if n < c.minLength {
		return nil, reject(String, "too short: %d < %d", n, c.minLength)
	}

	if c.maxLength > 0 && n > c.maxLength {
		return nil, reject(String, "too long: %d > %d", n, c.maxLength)
	}

	return text, nil
}

func (c *stringConverter) Format(v any) (string, error) {
	s, ok := stringValue(v)
	if !ok {
		return "", unsupported(String, v)
	}

	if _, err := c.Convert(s); err != nil {
		return "", err
	}

	return s, nil
}

func (c *stringConverter) Regex() string {
	switch {
	case c.length > 0:
		return "[^/]{" + strconv.Itoa(c.length) + "}"
	case c.maxLength > 0:
		return "[^/]{" + strconv.Itoa(c.minLength) + "," + strconv.Itoa(c.maxLength) + "}"
	}

	return "[^/]+"
}

// stringValue accepts strings, byte slices and fmt.Stringer values.
func stringValue(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	case fmt.Stringer:
		return s.String(), true
	}

	return "", false
}
