package converter

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, kind Kind, items []string, p Params) Converter {
	t.Helper()

	c, err := New(kind, items, p)
	require.NoError(t, err)

	return c
}

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := map[string]Kind{
		"":        String,
		"string":  String,
		"int":     Int,
		"float":   Float,
		"uuid":    UUID,
		"path":    Path,
		"any":     Any,
		"default": String,
		"INT":     String,
	}

	for name, want := range tests {
		assert.Equal(t, want, Lookup(name), "name %q", name)
	}
}

func TestStringConverter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params Params
		accept []string
		reject []string
		regex  string
	}{
		{
			name:   "default",
			accept: []string{"a", "hello", "héllo"},
			reject: []string{""},
			regex:  "[^/]+",
		},
		{
			name:   "minlength",
			params: Params{MinLength: 3},
			accept: []string{"abc", "abcd"},
			reject: []string{"ab"},
			regex:  "[^/]+",
		},
		{
			name:   "maxlength",
			params: Params{MaxLength: 5},
			accept: []string{"a", "abcde"},
			reject: []string{"abcdef"},
			regex:  "[^/]{1,5}",
		},
		{
			name:   "minmax",
			params: Params{MinLength: 2, MaxLength: 5},
			accept: []string{"ab"},
			reject: []string{"a"},
			regex:  "[^/]{2,5}",
		},
		{
			name:   "length",
			params: Params{Length: 4},
			accept: []string{"abcd", "ñaña"},
			reject: []string{"abc", "abcde"},
			regex:  "[^/]{4}",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := mustNew(t, String, nil, tt.params)
			assert.Equal(t, String, c.Kind())
			assert.Equal(t, tt.regex, c.Regex())

			for _, s := range tt.accept {
				v, err := c.Convert(s)
				require.NoError(t, err, s)
				assert.Equal(t, s, v)
			}

			for _, s := range tt.reject {
				_, err := c.Convert(s)
				assert.ErrorIs(t, err, ErrRejected, s)
			}
		})
	}
}

func TestStringConverterFormat(t *testing.T) {
	t.Parallel()

	c := mustNew(t, String, nil, Params{MaxLength: 3})

	s, err := c.Format("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	_, err = c.Format("abcd")
	assert.ErrorIs(t, err, ErrRejected)

	_, err = c.Format(42)
	assert.ErrorIs(t, err, ErrUnsupportedValue)

	_, err = c.Format("a/b")
	assert.ErrorIs(t, err, ErrRejected)

	_, err = c.Convert("a/b")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestIntConverter(t *testing.T) {
	t.Parallel()

	c := mustNew(t, Int, nil, Params{})

	v, err := c.Convert("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = c.Convert("0")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	for _, s := range []string{"", "-1", "+1", "abc", "4a", "1.5", "99999999999999999999"} {
		_, err := c.Convert(s)
		assert.ErrorIs(t, err, ErrRejected, s)
	}

	assert.Equal(t, `\d+`, c.Regex())
}

func TestIntConverterParams(t *testing.T) {
	t.Parallel()

	fixed := mustNew(t, Int, nil, Params{FixedDigits: 3})
	v, err := fixed.Convert("042")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	_, err = fixed.Convert("42")
	assert.ErrorIs(t, err, ErrRejected)
	_, err = fixed.Convert("0042")
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, `\d{3}`, fixed.Regex())

	ranged := mustNew(t, Int, nil, Params{Min: Bound(10), Max: Bound(100)})
	for _, s := range []string{"10", "100", "55"} {
		_, err := ranged.Convert(s)
		assert.NoError(t, err, s)
	}
	for _, s := range []string{"9", "101"} {
		_, err := ranged.Convert(s)
		assert.ErrorIs(t, err, ErrRejected, s)
	}
}

func TestIntConverterFormat(t *testing.T) {
	t.Parallel()

	c := mustNew(t, Int, nil, Params{})
	for _, v := range []any{42, int64(42), uint8(42), "42", "042"} {
		s, err := c.Format(v)
		require.NoError(t, err, "%v", v)
		assert.Equal(t, "42", s)
	}

	_, err := c.Format(-1)
	assert.ErrorIs(t, err, ErrRejected)

	_, err = c.Format(1.5)
	assert.ErrorIs(t, err, ErrUnsupportedValue)

	fixed := mustNew(t, Int, nil, Params{FixedDigits: 4})
	s, err := fixed.Format(42)
	require.NoError(t, err)
	assert.Equal(t, "0042", s)

	_, err = fixed.Format(123456)
	assert.ErrorIs(t, err, ErrRejected)
}

func TestFloatConverter(t *testing.T) {
	t.Parallel()

	c := mustNew(t, Float, nil, Params{})

	v, err := c.Convert("3.14")
	require.NoError(t, err)
	assert.InDelta(t, 3.14, v, 1e-9)

	v, err = c.Convert("-1.5")
	require.NoError(t, err)
	assert.InDelta(t, -1.5, v, 1e-9)

	for _, s := range []string{"", "42", "abc", "1.", ".5", "1e5", "1.2.3", "-", "inf", "NaN"} {
		_, err := c.Convert(s)
		assert.ErrorIs(t, err, ErrRejected, s)
	}

	assert.Equal(t, `-?\d+\.\d+`, c.Regex())
}

func TestFloatConverterParams(t *testing.T) {
	t.Parallel()

	c := mustNew(t, Float, nil, Params{Min: Bound(0), Max: Bound(10)})

	for _, s := range []string{"0.0", "10.0", "5.5"} {
		_, err := c.Convert(s)
		assert.NoError(t, err, s)
	}

	for _, s := range []string{"-1.0", "10.1"} {
		_, err := c.Convert(s)
		assert.ErrorIs(t, err, ErrRejected, s)
	}
}

func TestFloatConverterFormat(t *testing.T) {
	t.Parallel()

	c := mustNew(t, Float, nil, Params{})

	tests := []struct {
		in   any
		want string
	}{
		{3.14, "3.14"},
		{42.0, "42.0"},
		{42, "42.0"},
		{float32(0.5), "0.5"},
		{-2.25, "-2.25"},
		{"1.50", "1.5"},
	}

	for _, tt := range tests {
		s, err := c.Format(tt.in)
		require.NoError(t, err, "%v", tt.in)
		assert.Equal(t, tt.want, s)

		_, err = c.Convert(s)
		assert.NoError(t, err, "formatted value %q must convert back", s)
	}

	_, err := c.Format("abc")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestUUIDConverter(t *testing.T) {
	t.Parallel()

	c := mustNew(t, UUID, nil, Params{})
	raw := "12345678-1234-5678-1234-567812345678"

	v, err := c.Convert(raw)
	require.NoError(t, err)
	assert.Equal(t, uuid.MustParse(raw), v)

	upper, err := c.Convert("ABCDEF01-1234-5678-1234-567812345678")
	require.NoError(t, err)
	assert.Equal(t, "abcdef01-1234-5678-1234-567812345678", upper.(uuid.UUID).String())

	for _, s := range []string{
		"not-a-uuid",
		"1234567812345678123456781234567",
		"12345678123456781234567812345678",
		"{12345678-1234-5678-1234-567812345678}",
		"12345678-1234-5678-1234-56781234567g",
		"12345678_1234-5678-1234-567812345678",
	} {
		_, err := c.Convert(s)
		assert.ErrorIs(t, err, ErrRejected, s)
	}

	s, err := c.Format(uuid.MustParse(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, s)

	s, err = c.Format(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, s)

	assert.Contains(t, c.Regex(), "[0-9a-f]")
}

func TestPathConverter(t *testing.T) {
	t.Parallel()

	c := mustNew(t, Path, nil, Params{})

	v, err := c.Convert("foo/bar/baz")
	require.NoError(t, err)
	assert.Equal(t, "foo/bar/baz", v)

	_, err = c.Convert("")
	assert.ErrorIs(t, err, ErrRejected)

	s, err := c.Format("foo/bar")
	require.NoError(t, err)
	assert.Equal(t, "foo/bar", s)

	assert.Equal(t, "[^/].*?", c.Regex())
}

func TestAnyConverter(t *testing.T) {
	t.Parallel()

	c := mustNew(t, Any, []string{"foo", "bar", "b.z"}, Params{})

	v, err := c.Convert("foo")
	require.NoError(t, err)
	assert.Equal(t, "foo", v)

	_, err = c.Convert("qux")
	assert.ErrorIs(t, err, ErrRejected)

	s, err := c.Format("bar")
	require.NoError(t, err)
	assert.Equal(t, "bar", s)

	_, err = c.Format("qux")
	assert.ErrorIs(t, err, ErrRejected)

	slashed := mustNew(t, Any, []string{"a/b", "c"}, Params{})
	_, err = slashed.Format("a/b")
	assert.ErrorIs(t, err, ErrRejected)

	assert.Equal(t, `foo|bar|b\.z`, c.Regex())
	assert.Equal(t, []string{"foo", "bar", "b.z"}, c.(*anyConverter).Items())
}

func TestNewInvalidParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		kind   Kind
		items  []string
		params Params
	}{
		{"any without items", Any, nil, Params{}},
		{"negative length", String, nil, Params{Length: -1}},
		{"min greater than max length", String, nil, Params{MinLength: 5, MaxLength: 2}},
		{"min greater than max", Int, nil, Params{Min: Bound(5), Max: Bound(1)}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.kind, tt.items, tt.params)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}
