package converter

import (
	"regexp"
	"strings"

	"github.com/savsgio/gotils"
)

type anyConverter struct {
	items []string
}

func newAnyConverter(items []string) *anyConverter {
	return &anyConverter{items: append([]string(nil), items...)}
}

func (c *anyConverter) Kind() Kind { return Any }

func (c *anyConverter) sealed() {}

// Items returns the allowed values in declaration order.
func (c *anyConverter) Items() []string {
	return append([]string(nil), c.items...)
}

func (c *anyConverter) Convert(text string) (any, error) {
	if !gotils.StringSliceInclude(c.items, text) {
		return nil, reject(Any, "%q is not one of the allowed values", text)
	}

	return text, nil
}

func (c *anyConverter) Format(v any) (string, error) {
	s, ok := stringValue(v)
	if !ok {
		return "", unsupported(Any, v)
	}

	// Items containing '/' never match a segment.
	if strings.IndexByte(s, '/') != -1 {
		return "", reject(Any, "%q contains '/'", s)
	}

	if _, err := c.Convert(s); err != nil {
		return "", err
	}

	return s, nil
}

func (c *anyConverter) Regex() string {
	quoted := make([]string, len(c.items))
	for i, item := range c.items {
		quoted[i] = regexp.QuoteMeta(item)
	}

	return strings.Join(quoted, "|")
}
