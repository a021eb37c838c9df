package rule

import (
	"errors"
	"fmt"

	"github.com/valyala/bytebufferpool"
)

var (
	// ErrMissingArgument is returned by Build when a variable has neither a
	// value nor a default.
	ErrMissingArgument = errors.New("missing argument")

	// ErrUnknownEndpoint is returned when no rule owns the endpoint.
	ErrUnknownEndpoint = errors.New("unknown endpoint")
)

// BuildError reports a failed URL build.
type BuildError struct {
	Endpoint string
	Argument string
	Err      error
}

func (e *BuildError) Error() string {
	if e.Argument != "" {
		return fmt.Sprintf("build %q: argument %q: %v", e.Endpoint, e.Argument, e.Err)
	}

	return fmt.Sprintf("build %q: %v", e.Endpoint, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Build returns the path of the rule for values. Dynamic values are
// formatted by their converter and percent-escaped; path values keep their
// '/' separators. Missing values fall back to the rule defaults.
func (r *Rule) Build(values Values) (string, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for i := range r.segments {
		seg := &r.segments[i]

		if seg.Kind == Literal {
			buf.WriteString(seg.Text)
			continue
		}

		v, ok := values[seg.Name]
		if !ok {
			if v, ok = r.defaults[seg.Name]; !ok {
				return "", &BuildError{Endpoint: r.endpoint, Argument: seg.Name, Err: ErrMissingArgument}
			}
		}

		s, err := seg.Converter.Format(v)
		if err != nil {
			return "", &BuildError{Endpoint: r.endpoint, Argument: seg.Name, Err: err}
		}

		buf.B = AppendEscaped(buf.B, s, seg.IsPath())
	}

	return buf.String(), nil
}

// pathSafe marks the bytes left unescaped in a path segment.
var pathSafe = func() (t [256]bool) {
	for c := 'a'; c <= 'z'; c++ {
		t[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		t[c] = true
	}
	for c := '0'; c <= '9'; c++ {
		t[c] = true
	}
	for _, c := range "-._~!$&'()*+,;=:@" {
		t[c] = true
	}

	return t
}()

const upperhex = "0123456789ABCDEF"

// AppendEscaped appends s to dst percent-escaping every byte that is not
// allowed in a path segment. '/' is kept when keepSlash is set.
func AppendEscaped(dst []byte, s string, keepSlash bool) []byte {
	for i := 0; i < len(s); i++ {
		c := s[i]

		if pathSafe[c] || (keepSlash && c == '/') {
			dst = append(dst, c)
		} else {
			dst = append(dst, '%', upperhex[c>>4], upperhex[c&0xf])
		}
	}

	return dst
}
