package rule

import (
	"sort"

	"github.com/valyala/fasthttp"
)

// MethodSet is a bitmask over the standard HTTP methods.
type MethodSet uint8

const (
	MethodGet MethodSet = 1 << iota
	MethodHead
	MethodPost
	MethodPut
	MethodDelete
	MethodPatch
	MethodOptions
	MethodTrace
)

// standardMethods lists the bits in canonical order.
var standardMethods = [...]struct {
	bit  MethodSet
	name string
}{
	{MethodGet, fasthttp.MethodGet},
	{MethodHead, fasthttp.MethodHead},
	{MethodPost, fasthttp.MethodPost},
	{MethodPut, fasthttp.MethodPut},
	{MethodDelete, fasthttp.MethodDelete},
	{MethodPatch, fasthttp.MethodPatch},
	{MethodOptions, fasthttp.MethodOptions},
	{MethodTrace, fasthttp.MethodTrace},
}

// MethodBit returns the bit of an upper-case method token, or 0 when the
// method is not one of the eight standard ones.
func MethodBit(method string) MethodSet {
	switch len(method) {
	case 3:
		switch method {
		case fasthttp.MethodGet:
			return MethodGet
		case fasthttp.MethodPut:
			return MethodPut
		}
	case 4:
		switch method {
		case fasthttp.MethodHead:
			return MethodHead
		case fasthttp.MethodPost:
			return MethodPost
		}
	case 5:
		switch method {
		case fasthttp.MethodPatch:
			return MethodPatch
		case fasthttp.MethodTrace:
			return MethodTrace
		}
	case 6:
		if method == fasthttp.MethodDelete {
			return MethodDelete
		}
	case 7:
		if method == fasthttp.MethodOptions {
			return MethodOptions
		}
	}

	return 0
}

// Has reports whether every bit of o is set in s.
func (s MethodSet) Has(o MethodSet) bool {
	return o != 0 && s&o == o
}

// Names returns the method names of s in canonical order.
func (s MethodSet) Names() []string {
	names := make([]string, 0, len(standardMethods))
	for _, m := range standardMethods {
		if s&m.bit != 0 {
			names = append(names, m.name)
		}
	}

	return names
}

// SortMethods orders methods canonically: standard methods first in bit
// order, then the others alphabetically.
func SortMethods(methods []string) {
	sort.SliceStable(methods, func(i, j int) bool {
		bi, bj := MethodBit(methods[i]), MethodBit(methods[j])

		switch {
		case bi != 0 && bj != 0:
			return bi < bj
		case bi != 0:
			return true
		case bj != 0:
			return false
		}

		return methods[i] < methods[j]
	})
}

// NormalizeMethod returns method with ASCII letters upper-cased. It does not
// allocate when method is already upper-case.
func NormalizeMethod(method string) string {
	hasLower := false
	for i := 0; i < len(method); i++ {
		if c := method[i]; c >= 'a' && c <= 'z' {
			hasLower = true
			break
		}
	}

	if !hasLower {
		return method
	}

	b := make([]byte, len(method))
	for i := 0; i < len(method); i++ {
		c := method[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		b[i] = c
	}

	return string(b)
}
