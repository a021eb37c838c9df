package urlmap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/savsgio/gotils"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/fasthttp/urlmap/rule"
)

// Adapter is a Table bound to a serving context. It is safe for concurrent
// use.
type Adapter struct {
	table *Table

	serverName string
	scheme     string
	scriptName string
}

// BindOption configures an Adapter.
type BindOption func(*Adapter)

// WithScheme sets the URL scheme of external URLs. Defaults to "http".
func WithScheme(scheme string) BindOption {
	return func(a *Adapter) {
		if scheme != "" {
			a.scheme = scheme
		}
	}
}

// WithScriptName sets the prefix the application is mounted under.
func WithScriptName(scriptName string) BindOption {
	return func(a *Adapter) {
		a.scriptName = strings.TrimSuffix(scriptName, "/")
	}
}

// Result is a successful match.
type Result struct {
	Endpoint string
	Values   rule.Values
	Rule     *rule.Rule
}

// Table returns the bound table.
func (a *Adapter) Table() *Table {
	return a.table
}

// ServerName returns the bound server name.
func (a *Adapter) ServerName() string {
	return a.serverName
}

// Match resolves path and method. See Table.Match.
func (a *Adapter) Match(path, method string) (Result, error) {
	r, values, err := a.table.Match(path, method)
	if err != nil {
		return Result{}, err
	}

	return Result{Endpoint: r.Endpoint(), Values: values, Rule: r}, nil
}

// AllowedMethods returns the methods accepted for path. See
// Table.AllowedMethods.
func (a *Adapter) AllowedMethods(path string) []string {
	return a.table.AllowedMethods(path)
}

type buildOptions struct {
	method   string
	external bool
	anchor   string
}

// BuildOption configures Adapter.Build.
type BuildOption func(*buildOptions)

// WithMethod selects the first rule of the endpoint accepting method.
func WithMethod(method string) BuildOption {
	return func(o *buildOptions) {
		o.method = rule.NormalizeMethod(method)
	}
}

// WithExternal prefixes the URL with the scheme and the server name.
func WithExternal() BuildOption {
	return func(o *buildOptions) {
		o.external = true
	}
}

// WithAnchor appends "#anchor" to the URL.
func WithAnchor(anchor string) BuildOption {
	return func(o *buildOptions) {
		o.anchor = anchor
	}
}

// Build returns the URL of endpoint for values. The first rule registered
// under endpoint is used. Values that are not rule arguments are appended
// as a query string sorted by key, except those equal to a rule default.
func (a *Adapter) Build(endpoint string, values rule.Values, opts ...BuildOption) (string, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	r, err := a.lookup(endpoint, o.method)
	if err != nil {
		return "", err
	}

	path, err := r.Build(values)
	if err != nil {
		return "", err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if o.external {
		buf.WriteString(a.scheme)
		buf.WriteString("://")
		buf.WriteString(a.serverName)
	}

	buf.WriteString(a.scriptName)
	buf.WriteString(path)

	buf.B = appendQuery(buf.B, r, values)

	if o.anchor != "" {
		buf.B = append(buf.B, '#')
		buf.B = rule.AppendEscaped(buf.B, o.anchor, true)
	}

	return buf.String(), nil
}

func (a *Adapter) lookup(endpoint, method string) (*rule.Rule, error) {
	found := false
	bit := rule.MethodBit(method)

	for _, r := range a.table.rules {
		if r.Endpoint() != endpoint {
			continue
		}

		if method == "" || r.Allows(bit, method) {
			return r, nil
		}

		found = true
	}

	if found {
		return nil, &BuildError{
			Endpoint: endpoint,
			Err:      &MethodNotAllowedError{Method: method, Allowed: a.endpointMethods(endpoint)},
		}
	}

	return nil, &BuildError{Endpoint: endpoint, Err: ErrUnknownEndpoint}
}

func (a *Adapter) endpointMethods(endpoint string) []string {
	var methods []string

	for _, r := range a.table.Lookup(endpoint) {
		for _, m := range r.Methods() {
			if !gotils.StringSliceInclude(methods, m) {
				methods = append(methods, m)
			}
		}
	}

	rule.SortMethods(methods)

	return methods
}

func appendQuery(dst []byte, r *rule.Rule, values rule.Values) []byte {
	if len(values) == 0 {
		return dst
	}

	arguments := r.Arguments()
	keys := make([]string, 0, len(values))

	for k, v := range values {
		if v == nil || gotils.StringSliceInclude(arguments, k) {
			continue
		}

		if d, ok := r.Default(k); ok && fmt.Sprint(d) == fmt.Sprint(v) {
			continue
		}

		keys = append(keys, k)
	}

	if len(keys) == 0 {
		return dst
	}

	sort.Strings(keys)

	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)

	for _, k := range keys {
		switch v := values[k].(type) {
		case []string:
			for _, s := range v {
				args.Add(k, s)
			}
		default:
			args.Add(k, queryValue(v))
		}
	}

	dst = append(dst, '?')

	return args.AppendBytes(dst)
}

func queryValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	}

	return fmt.Sprint(v)
}
