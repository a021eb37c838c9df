package urlmap

import (
	"fmt"
	"sort"

	"github.com/savsgio/gotils"

	"github.com/fasthttp/urlmap/index"
	"github.com/fasthttp/urlmap/rule"
)

// Table is the immutable result of Map.Freeze. It is safe for concurrent use.
type Table struct {
	// rules owns every rule in registration order. static and dynamic
	// refer to positions in it.
	rules   []*rule.Rule
	static  *index.Static
	dynamic []int
}

// Rules returns the rules in registration order.
func (t *Table) Rules() []*rule.Rule {
	return append([]*rule.Rule(nil), t.rules...)
}

// Bind returns an Adapter serving serverName.
func (t *Table) Bind(serverName string, opts ...BindOption) *Adapter {
	a := &Adapter{
		table:      t,
		serverName: serverName,
		scheme:     "http",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Match returns the rule accepting path and method with its values.
// The error is ErrNotFound (wrapped) or a *MethodNotAllowedError.
func (t *Table) Match(path, method string) (*rule.Rule, rule.Values, error) {
	method = rule.NormalizeMethod(method)
	bit := rule.MethodBit(method)
	shaped := false

	if r := t.staticRule(path); r != nil {
		if r.Allows(bit, method) {
			values, _ := r.Match(path)
			return r, values, nil
		}

		shaped = true
	}

	for _, ref := range t.dynamic {
		r := t.rules[ref]

		values, ok := r.Match(path)
		if !ok {
			continue
		}

		if r.Allows(bit, method) {
			return r, values, nil
		}

		shaped = true
	}

	if shaped {
		return nil, nil, &MethodNotAllowedError{
			Path:    path,
			Method:  method,
			Allowed: t.AllowedMethods(path),
		}
	}

	return nil, nil, fmt.Errorf("%w: %q", ErrNotFound, path)
}

// Each calls fn, in match order, for every rule accepting path and method,
// until fn returns false. The first rule visited is the one Match returns.
func (t *Table) Each(path, method string, fn func(r *rule.Rule, values rule.Values) bool) {
	method = rule.NormalizeMethod(method)
	bit := rule.MethodBit(method)

	if r := t.staticRule(path); r != nil && r.Allows(bit, method) {
		values, _ := r.Match(path)
		if !fn(r, values) {
			return
		}
	}

	for _, ref := range t.dynamic {
		r := t.rules[ref]
		if !r.Allows(bit, method) {
			continue
		}

		if values, ok := r.Match(path); ok && !fn(r, values) {
			return
		}
	}
}

// staticRule returns the indexed rule for path, trying the slash-toggled
// path when there is no exact entry. The toggled hit is only honored for
// rules without strict slashes.
func (t *Table) staticRule(path string) *rule.Rule {
	if ref, ok := t.static.Lookup(path); ok {
		return t.rules[ref]
	}

	toggled, ok := toggleTrailingSlash(path)
	if !ok {
		return nil
	}

	if ref, ok := t.static.Lookup(toggled); ok && !t.rules[ref].StrictSlashes() {
		return t.rules[ref]
	}

	return nil
}

// AllowedMethods returns the union of the methods of every rule shaped like
// path, in canonical order. It returns nil when no rule is shaped like path.
func (t *Table) AllowedMethods(path string) []string {
	var (
		set    rule.MethodSet
		extras []string
		found  bool
	)

	collect := func(r *rule.Rule) {
		found = true
		set |= r.MethodSet()

		for _, m := range r.Methods() {
			if rule.MethodBit(m) == 0 && !gotils.StringSliceInclude(extras, m) {
				extras = append(extras, m)
			}
		}
	}

	if r := t.staticRule(path); r != nil {
		collect(r)
	}

	for _, ref := range t.dynamic {
		if r := t.rules[ref]; matches(r, path) {
			collect(r)
		}
	}

	if !found {
		return nil
	}

	sort.Strings(extras)

	return append(set.Names(), extras...)
}

// Methods returns the union of the methods of every rule, in canonical
// order.
func (t *Table) Methods() []string {
	var set rule.MethodSet
	var extras []string

	for _, r := range t.rules {
		set |= r.MethodSet()

		for _, m := range r.Methods() {
			if rule.MethodBit(m) == 0 && !gotils.StringSliceInclude(extras, m) {
				extras = append(extras, m)
			}
		}
	}

	sort.Strings(extras)

	return append(set.Names(), extras...)
}

// Lookup returns the rules registered under endpoint in registration order.
func (t *Table) Lookup(endpoint string) []*rule.Rule {
	var rules []*rule.Rule

	for _, r := range t.rules {
		if r.Endpoint() == endpoint {
			rules = append(rules, r)
		}
	}

	return rules
}

func matches(r *rule.Rule, path string) bool {
	_, ok := r.Match(path)
	return ok
}
