// Package rule compiles URL rule patterns and matches paths against them.
//
// A pattern is literal text with placeholders:
//
//	/users/<int:id>/posts/<name>
//	/files/<path:rest>/download
//	/color/<any(red, green, blue):c>
//
// Recognized converters are string (the default), int, float, uuid, path
// and any. Unknown converter names fall back to string.
package rule

import (
	"regexp"
	"sort"
	"strings"

	"github.com/fasthttp/urlmap/converter"
)

// Values maps variable names to typed values.
type Values map[string]any

// Rule is a compiled, immutable URL rule.
type Rule struct {
	pattern  string
	endpoint string

	segments []Segment

	// trailing[i] is the total literal length after segment i. It bounds
	// the capture of a path segment.
	trailing []int

	methods       MethodSet
	extraMethods  []string
	strictSlashes bool
	defaults      Values
	arguments     []string
	isStatic      bool
}

type options struct {
	methods       []string
	methodsSet    bool
	strictSlashes bool
	defaults      Values
	params        map[string]converter.Params
}

// Option configures a Rule.
type Option func(*options)

// WithMethods sets the allowed methods, case-insensitively. GET is used when
// the option is absent. HEAD and OPTIONS are always allowed.
func WithMethods(methods ...string) Option {
	return func(o *options) {
		o.methods = append(o.methods, methods...)
		o.methodsSet = true
	}
}

// WithStrictSlashes sets whether a trailing slash must match exactly.
// Defaults to true.
func WithStrictSlashes(strict bool) Option {
	return func(o *options) {
		o.strictSlashes = strict
	}
}

// WithDefaults sets values merged under matched values and used by Build
// for missing arguments.
func WithDefaults(defaults Values) Option {
	return func(o *options) {
		if o.defaults == nil {
			o.defaults = make(Values, len(defaults))
		}

		for k, v := range defaults {
			o.defaults[k] = v
		}
	}
}

// WithParams configures the converter of variable name.
func WithParams(name string, params converter.Params) Option {
	return func(o *options) {
		if o.params == nil {
			o.params = make(map[string]converter.Params)
		}

		o.params[name] = params
	}
}

// New compiles pattern into a Rule resolving to endpoint.
func New(pattern, endpoint string, opts ...Option) (*Rule, error) {
	o := options{strictSlashes: true}
	for _, opt := range opts {
		opt(&o)
	}

	segments, err := Compile(pattern, o.params)
	if err != nil {
		return nil, err
	}

	r := &Rule{
		pattern:       pattern,
		endpoint:      endpoint,
		segments:      segments,
		trailing:      make([]int, len(segments)),
		strictSlashes: o.strictSlashes,
		defaults:      o.defaults,
		isStatic:      true,
	}

	tail := 0
	for i := len(segments) - 1; i >= 0; i-- {
		r.trailing[i] = tail

		if segments[i].Kind == Literal {
			tail += len(segments[i].Text)
		}
	}

	for _, seg := range segments {
		if seg.Kind == Dynamic {
			r.isStatic = false
			r.arguments = append(r.arguments, seg.Name)
		}
	}

	r.setMethods(o.methods, o.methodsSet)

	return r, nil
}

func (r *Rule) setMethods(methods []string, explicit bool) {
	if !explicit {
		r.methods = MethodGet
	}

	for _, m := range methods {
		m = NormalizeMethod(m)

		if bit := MethodBit(m); bit != 0 {
			r.methods |= bit
		} else if m != "" && !r.hasExtra(m) {
			r.extraMethods = append(r.extraMethods, m)
		}
	}

	r.methods |= MethodHead | MethodOptions
	sort.Strings(r.extraMethods)
}

func (r *Rule) hasExtra(method string) bool {
	for _, m := range r.extraMethods {
		if m == method {
			return true
		}
	}

	return false
}

// Allows reports whether the rule accepts method. bit is MethodBit(method)
// and method must already be upper-case.
func (r *Rule) Allows(bit MethodSet, method string) bool {
	if bit != 0 {
		return r.methods&bit != 0
	}

	return r.hasExtra(method)
}

// Pattern returns the raw pattern.
func (r *Rule) Pattern() string {
	return r.pattern
}

// Endpoint returns the endpoint name.
func (r *Rule) Endpoint() string {
	return r.endpoint
}

// Methods returns the allowed methods in canonical order.
func (r *Rule) Methods() []string {
	return append(r.methods.Names(), r.extraMethods...)
}

// MethodSet returns the bitmask of allowed standard methods.
func (r *Rule) MethodSet() MethodSet {
	return r.methods
}

// StrictSlashes reports whether trailing slashes must match exactly.
func (r *Rule) StrictSlashes() bool {
	return r.strictSlashes
}

// IsStatic reports whether the rule has no dynamic segment.
func (r *Rule) IsStatic() bool {
	return r.isStatic
}

// Segments returns a copy of the compiled segments.
func (r *Rule) Segments() []Segment {
	return append([]Segment(nil), r.segments...)
}

// Arguments returns the variable names in pattern order.
func (r *Rule) Arguments() []string {
	return append([]string(nil), r.arguments...)
}

// Defaults returns a copy of the rule defaults.
func (r *Rule) Defaults() Values {
	if len(r.defaults) == 0 {
		return nil
	}

	d := make(Values, len(r.defaults))
	for k, v := range r.defaults {
		d[k] = v
	}

	return d
}

// Default returns the default value of name.
func (r *Rule) Default(name string) (any, bool) {
	v, ok := r.defaults[name]
	return v, ok
}

// Regex returns a regular expression equivalent to the rule, built from the
// converters' descriptions. Matching never uses it.
func (r *Rule) Regex() string {
	var b strings.Builder

	b.WriteByte('^')
	for _, seg := range r.segments {
		if seg.Kind == Literal {
			b.WriteString(regexp.QuoteMeta(seg.Text))
			continue
		}

		b.WriteString("(?P<")
		b.WriteString(seg.Name)
		b.WriteByte('>')
		b.WriteString(seg.Converter.Regex())
		b.WriteByte(')')
	}

	expr := b.String()
	if !r.strictSlashes {
		expr = strings.TrimSuffix(expr, "/") + "/?"
	}

	return expr + "$"
}

func (r *Rule) String() string {
	return r.pattern + " -> " + r.endpoint
}
