// Package urlmap maps request paths and methods to named endpoints with
// typed parameters, and builds URLs back from endpoints.
//
// Rules are registered on a Map, which is frozen into an immutable Table.
// A Table is safe for concurrent use and is bound to a serving context with
// Table.Bind:
//
//	m := urlmap.NewMap()
//	m.Rule("/users/<int:id>", "user_detail")
//	adapter := m.Freeze().Bind("example.com")
//
//	res, err := adapter.Match("/users/42", "GET")
//	url, err := adapter.Build("user_detail", rule.Values{"id": 42})
package urlmap

import (
	"go.uber.org/zap"

	"github.com/fasthttp/urlmap/index"
	"github.com/fasthttp/urlmap/rule"
)

// Map collects rules before they are frozen into a Table.
// It must not be used concurrently.
type Map struct {
	rules   []*rule.Rule
	static  *index.Static
	dynamic []int

	logger *zap.Logger
	table  *Table
}

// NewMap returns an empty Map.
func NewMap(opts ...Option) *Map {
	o := newOptions(opts)

	return &Map{
		static: index.New(),
		logger: o.logger,
	}
}

// Add registers r. Static rules are indexed by their literal path; when two
// static rules share a path the first one registered wins.
func (m *Map) Add(r *rule.Rule) error {
	if m.table != nil {
		return ErrFrozen
	}

	ref := len(m.rules)
	m.rules = append(m.rules, r)

	if r.IsStatic() {
		if !m.static.Insert(r.Pattern(), ref) {
			first, _ := m.static.Lookup(r.Pattern())
			m.logger.Warn("duplicate static rule is unreachable",
				zap.String("pattern", r.Pattern()),
				zap.String("endpoint", r.Endpoint()),
				zap.String("shadowed_by", m.rules[first].Endpoint()),
			)
		}
	} else {
		m.dynamic = append(m.dynamic, ref)
	}

	m.logger.Debug("rule registered",
		zap.String("pattern", r.Pattern()),
		zap.String("endpoint", r.Endpoint()),
		zap.Strings("methods", r.Methods()),
		zap.Bool("static", r.IsStatic()),
	)

	return nil
}

// Rule compiles pattern and registers it under endpoint.
func (m *Map) Rule(pattern, endpoint string, opts ...rule.Option) error {
	if m.table != nil {
		return ErrFrozen
	}

	r, err := rule.New(pattern, endpoint, opts...)
	if err != nil {
		return err
	}

	return m.Add(r)
}

// Len returns the number of registered rules.
func (m *Map) Len() int {
	return len(m.rules)
}

// Freeze returns the Table of the registered rules. The Map rejects further
// rules afterwards; calling Freeze again returns the same Table.
func (m *Map) Freeze() *Table {
	if m.table == nil {
		m.table = &Table{
			rules:   m.rules,
			static:  m.static,
			dynamic: m.dynamic,
		}

		m.logger.Debug("map frozen",
			zap.Int("rules", len(m.rules)),
			zap.Int("static", m.static.Len()),
			zap.Int("dynamic", len(m.dynamic)),
		)
	}

	return m.table
}
