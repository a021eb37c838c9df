package converter

type pathConverter struct{}

func (pathConverter) Kind() Kind { return Path }

func (pathConverter) sealed() {}

// Convert accepts any non-empty text, including '/' characters.
func (pathConverter) Convert(text string) (any, error) {
	if len(text) == 0 {
		return nil, reject(Path, "empty path")
	}

	return text, nil
}

func (c pathConverter) Format(v any) (string, error) {
	s, ok := stringValue(v)
	if !ok {
		return "", unsupported(Path, v)
	}

	if _, err := c.Convert(s); err != nil {
		return "", err
	}

	return s, nil
}

func (pathConverter) Regex() string {
	return "[^/].*?"
}
