package rule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fasthttp/urlmap/converter"
)

// ErrInvalidPattern is matched by every CompileError.
var ErrInvalidPattern = errors.New("rule: invalid pattern")

// CompileError reports a malformed rule pattern.
type CompileError struct {
	Pattern string
	Offset  int
	Reason  string
	Err     error
}

func (e *CompileError) Error() string {
	msg := fmt.Sprintf("rule %q: %s", e.Pattern, e.Reason)
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" (offset %d)", e.Offset)
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *CompileError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidPattern, e.Err}
	}

	return []error{ErrInvalidPattern}
}

func compileError(pattern string, offset int, reason string) *CompileError {
	return &CompileError{Pattern: pattern, Offset: offset, Reason: reason}
}

// SegmentKind tells literal and dynamic segments apart.
type SegmentKind uint8

const (
	Literal SegmentKind = iota
	Dynamic
)

// Segment is one piece of a compiled pattern.
type Segment struct {
	Kind SegmentKind

	// Text is the literal text of a Literal segment.
	Text string

	// Name and Converter are set on Dynamic segments.
	Name      string
	Converter converter.Converter
}

// IsPath reports whether s is a dynamic segment using the path converter.
func (s Segment) IsPath() bool {
	return s.Kind == Dynamic && s.Converter.Kind() == converter.Path
}

// placeholder is a parsed <...> token before its converter is built.
type placeholder struct {
	name   string
	kind   converter.Kind
	items  []string
	offset int
}

type token struct {
	literal string
	ph      *placeholder
}

// Compile parses pattern into segments. params configures the converter of
// the variable with the same name.
func Compile(pattern string, params map[string]converter.Params) ([]Segment, error) {
	tokens, err := tokenize(pattern)
	if err != nil {
		return nil, err
	}

	if err := checkTokens(pattern, tokens); err != nil {
		return nil, err
	}

	segments := make([]Segment, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))

	for _, tok := range tokens {
		if tok.ph == nil {
			segments = append(segments, Segment{Kind: Literal, Text: tok.literal})
			continue
		}

		ph := tok.ph
		seen[ph.name] = struct{}{}

		conv, err := converter.New(ph.kind, ph.items, params[ph.name])
		if err != nil {
			ce := compileError(pattern, ph.offset, "invalid converter for <"+ph.name+">")
			ce.Err = err

			return nil, ce
		}

		segments = append(segments, Segment{
			Kind:      Dynamic,
			Name:      ph.name,
			Converter: conv,
		})
	}

	for name := range params {
		if _, ok := seen[name]; !ok {
			return nil, compileError(pattern, -1, fmt.Sprintf("params given for unknown variable %q", name))
		}
	}

	return segments, nil
}

func tokenize(pattern string) ([]token, error) {
	switch {
	case len(pattern) == 0:
		return nil, compileError(pattern, 0, "empty pattern")
	case pattern[0] != '/':
		return nil, compileError(pattern, 0, "pattern must begin with '/'")
	}

	var tokens []token

	for i := 0; i < len(pattern); {
		if pattern[i] != '<' {
			start := i
			for i < len(pattern) && pattern[i] != '<' {
				i++
			}

			tokens = append(tokens, token{literal: pattern[start:i]})

			continue
		}

		end := strings.IndexByte(pattern[i+1:], '>')
		if end == -1 {
			return nil, compileError(pattern, i, "unterminated placeholder")
		}

		ph, err := parsePlaceholder(pattern, i, pattern[i+1:i+1+end])
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, token{ph: ph})
		i += end + 2
	}

	return tokens, nil
}

// parsePlaceholder parses the body of "<conv(args):name>", "<conv:name>" or
// "<name>".
func parsePlaceholder(pattern string, offset int, body string) (*placeholder, error) {
	colon := -1
	depth := 0

	for i := 0; i < len(body) && colon == -1; i++ {
		switch body[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 {
				colon = i
			}
		}
	}

	ph := &placeholder{offset: offset, kind: converter.String}

	if colon == -1 {
		ph.name = strings.TrimSpace(body)
	} else {
		ph.name = strings.TrimSpace(body[colon+1:])
		spec := strings.TrimSpace(body[:colon])

		convName := spec
		if open := strings.IndexByte(spec, '('); open != -1 {
			closing := strings.LastIndexByte(spec, ')')
			if closing < open {
				return nil, compileError(pattern, offset, "unterminated converter arguments")
			}

			convName = strings.TrimSpace(spec[:open])
			ph.items = splitItems(spec[open+1 : closing])
		}

		ph.kind = converter.Lookup(convName)
	}

	if !isIdentifier(ph.name) {
		return nil, compileError(pattern, offset, fmt.Sprintf("invalid variable name %q", ph.name))
	}

	return ph, nil
}

// splitItems splits a comma separated argument list, trimming whitespace and
// dropping empty items.
func splitItems(args string) []string {
	var items []string

	for _, item := range strings.Split(args, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}

func checkTokens(pattern string, tokens []token) error {
	names := make(map[string]struct{})
	pathSeen := false

	for i, tok := range tokens {
		if tok.ph == nil {
			continue
		}

		ph := tok.ph

		if _, dup := names[ph.name]; dup {
			return compileError(pattern, ph.offset, fmt.Sprintf("duplicate variable name %q", ph.name))
		}
		names[ph.name] = struct{}{}

		if i > 0 && tokens[i-1].ph != nil {
			return compileError(pattern, ph.offset, "dynamic segments must be separated by literal text")
		}

		if pathSeen {
			return compileError(pattern, ph.offset, "a path segment can only be followed by literal text")
		}

		if ph.kind == converter.Path {
			pathSeen = true
		}
	}

	return nil
}

func isIdentifier(s string) bool {
	if len(s) == 0 {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}

	return true
}
