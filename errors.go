package urlmap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fasthttp/urlmap/rule"
)

var (
	// ErrNotFound is returned when no rule is shaped like the path.
	ErrNotFound = errors.New("urlmap: not found")

	// ErrMethodNotAllowed is matched by every *MethodNotAllowedError.
	ErrMethodNotAllowed = errors.New("urlmap: method not allowed")

	// ErrFrozen is returned when a rule is added to a frozen Map.
	ErrFrozen = errors.New("urlmap: map is frozen")

	// ErrEmptyMethods is returned for a route configured with an empty
	// methods list.
	ErrEmptyMethods = errors.New("urlmap: methods list is empty")

	ErrUnknownEndpoint = rule.ErrUnknownEndpoint
	ErrMissingArgument = rule.ErrMissingArgument
	ErrInvalidPattern  = rule.ErrInvalidPattern
)

type (
	// CompileError reports a malformed rule pattern.
	CompileError = rule.CompileError

	// BuildError reports a failed URL build.
	BuildError = rule.BuildError
)

// MethodNotAllowedError is returned when rules are shaped like the path but
// none of them accepts the method.
type MethodNotAllowedError struct {
	Path   string
	Method string

	// Allowed is the union of the methods of every rule shaped like Path,
	// in canonical order.
	Allowed []string
}

func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("urlmap: method %s not allowed for %q (allowed: %s)",
		e.Method, e.Path, strings.Join(e.Allowed, ", "))
}

func (e *MethodNotAllowedError) Is(target error) bool {
	return target == ErrMethodNotAllowed
}
