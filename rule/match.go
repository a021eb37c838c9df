package rule

import "strings"

// Match matches path against the rule and returns the captured values,
// merged over the rule defaults. A converter rejecting a capture is a plain
// mismatch.
func (r *Rule) Match(path string) (Values, bool) {
	var values Values

	p := 0
	last := len(r.segments) - 1

	for i := range r.segments {
		seg := &r.segments[i]

		if seg.Kind == Literal {
			if strings.HasPrefix(path[p:], seg.Text) {
				p += len(seg.Text)
				continue
			}

			// "/a/" also answers "/a" when slashes are not strict. The
			// root "/" never answers the empty path.
			if i == last && !r.strictSlashes && p+len(seg.Text) > 1 &&
				seg.Text[len(seg.Text)-1] == '/' && path[p:] == seg.Text[:len(seg.Text)-1] {
				p = len(path)
				continue
			}

			return nil, false
		}

		var end int

		if seg.IsPath() {
			trail := r.trailing[i]
			if len(path)-p <= trail {
				return nil, false
			}

			end = len(path) - trail
		} else {
			end = p
			for end < len(path) && path[end] != '/' {
				end++
			}

			if end == p {
				return nil, false
			}
		}

		v, err := seg.Converter.Convert(path[p:end])
		if err != nil {
			return nil, false
		}

		if values == nil {
			values = make(Values, len(r.arguments)+len(r.defaults))
		}
		values[seg.Name] = v
		p = end
	}

	if p != len(path) {
		if r.strictSlashes || p+1 != len(path) || path[p] != '/' {
			return nil, false
		}
	}

	return r.withDefaults(values), true
}

func (r *Rule) withDefaults(values Values) Values {
	if values == nil {
		values = make(Values, len(r.defaults))
	}

	for k, v := range r.defaults {
		if _, ok := values[k]; !ok {
			values[k] = v
		}
	}

	return values
}
