package converter

import (
	"github.com/google/uuid"
)

const uuidLen = 36

type uuidConverter struct{}

func (uuidConverter) Kind() Kind { return UUID }

func (uuidConverter) sealed() {}

// Convert checks the canonical 8-4-4-4-12 hex layout and returns a
// uuid.UUID. Version and variant bits are not inspected.
func (uuidConverter) Convert(text string) (any, error) {
	if !isCanonicalUUID(text) {
		return nil, reject(UUID, "%q is not a valid UUID", text)
	}

	u, err := uuid.Parse(text)
	if err != nil {
		return nil, reject(UUID, "%q is not a valid UUID", text)
	}

	return u, nil
}

func (c uuidConverter) Format(v any) (string, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x.String(), nil
	case [16]byte:
		return uuid.UUID(x).String(), nil
	case string:
		return formatString(c, x)
	}

	return "", unsupported(UUID, v)
}

func (uuidConverter) Regex() string {
	return "[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}"
}

func isCanonicalUUID(s string) bool {
	if len(s) != uuidLen {
		return false
	}

	for i := 0; i < uuidLen; i++ {
		c := s[i]

		switch i {
		case 8, 13, 18, 23:
			if c != '-' {
				return false
			}
		default:
			if !isHex(c) {
				return false
			}
		}
	}

	return true
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
