package converter

import (
	"math"
	"strconv"
	"strings"
)

type intConverter struct {
	fixedDigits int
	min         *float64
	max         *float64
}

func newIntConverter(p Params) *intConverter {
	return &intConverter{
		fixedDigits: p.FixedDigits,
		min:         p.Min,
		max:         p.Max,
	}
}

func (c *intConverter) Kind() Kind { return Int }

func (c *intConverter) sealed() {}

// Convert accepts ASCII digits only; signs are rejected.
func (c *intConverter) Convert(text string) (any, error) {
	if len(text) == 0 {
		return nil, reject(Int, "empty value")
	}

	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return nil, reject(Int, "%q is not a valid integer", text)
		}
	}

	if c.fixedDigits > 0 && len(text) != c.fixedDigits {
		return nil, reject(Int, "expected %d digits, got %d", c.fixedDigits, len(text))
	}

	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, reject(Int, "%q is out of range", text)
	}

	if err := c.checkRange(v); err != nil {
		return nil, err
	}

	return v, nil
}

func (c *intConverter) checkRange(v int64) error {
	if c.min != nil && float64(v) < *c.min {
		return reject(Int, "%d is less than minimum %v", v, *c.min)
	}

	if c.max != nil && float64(v) > *c.max {
		return reject(Int, "%d is greater than maximum %v", v, *c.max)
	}

	return nil
}

func (c *intConverter) Format(v any) (string, error) {
	var n int64

	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint:
		n = int64(x)
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return "", reject(Int, "%d is out of range", x)
		}
		n = int64(x)
	case string:
		return formatString(c, x)
	default:
		return "", unsupported(Int, v)
	}

	if n < 0 {
		return "", reject(Int, "%d is negative", n)
	}

	if err := c.checkRange(n); err != nil {
		return "", err
	}

	s := strconv.FormatInt(n, 10)
	if c.fixedDigits > 0 {
		if len(s) > c.fixedDigits {
			return "", reject(Int, "%d does not fit in %d digits", n, c.fixedDigits)
		}

		s = strings.Repeat("0", c.fixedDigits-len(s)) + s
	}

	return s, nil
}

func (c *intConverter) Regex() string {
	if c.fixedDigits > 0 {
		return `\d{` + strconv.Itoa(c.fixedDigits) + `}`
	}

	return `\d+`
}

type floatConverter struct {
	min *float64
	max *float64
}

func newFloatConverter(p Params) *floatConverter {
	return &floatConverter{min: p.Min, max: p.Max}
}

func (c *floatConverter) Kind() Kind { return Float }

func (c *floatConverter) sealed() {}

// Convert accepts an optional '-' followed by digits, a decimal point and
// digits.
func (c *floatConverter) Convert(text string) (any, error) {
	if !isDecimal(text) {
		return nil, reject(Float, "%q is not a valid float", text)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, reject(Float, "%q is out of range", text)
	}

	if err := c.checkRange(v); err != nil {
		return nil, err
	}

	return v, nil
}

func (c *floatConverter) checkRange(v float64) error {
	if c.min != nil && v < *c.min {
		return reject(Float, "%v is less than minimum %v", v, *c.min)
	}

	if c.max != nil && v > *c.max {
		return reject(Float, "%v is greater than maximum %v", v, *c.max)
	}

	return nil
}

func (c *floatConverter) Format(v any) (string, error) {
	var f float64

	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		return formatString(c, x)
	default:
		return "", unsupported(Float, v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", reject(Float, "%v has no URL form", f)
	}

	if err := c.checkRange(f); err != nil {
		return "", err
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if strings.IndexByte(s, '.') == -1 {
		s += ".0"
	}

	return s, nil
}

func (c *floatConverter) Regex() string {
	return `-?\d+\.\d+`
}

func isDecimal(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}

	intStart := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}

	if i == intStart || i == len(s) || s[i] != '.' {
		return false
	}
	i++

	fracStart := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}

	return i > fracStart && i == len(s)
}
