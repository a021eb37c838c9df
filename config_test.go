package urlmap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fasthttp/urlmap/converter"
	"github.com/fasthttp/urlmap/rule"
)

const testConfig = `
server_name: example.com
url_scheme: https
script_name: /api
routes:
  - pattern: /
    endpoint: index
  - pattern: /users/<int:id>
    endpoint: user_detail
    methods: [get, put]
  - pattern: /docs/
    endpoint: docs
    strict_slashes: false
  - pattern: /page/<int:n>
    endpoint: page
    defaults:
      n: 1
  - pattern: /code/<code>
    endpoint: code
    params:
      code:
        length: 4
  - pattern: /n/<int:n>
    endpoint: bounded
    params:
      n:
        min: 1
        max: 10
`

func TestLoadConfigFromReader(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigFromReader(strings.NewReader(testConfig))
	require.NoError(t, err)

	assert.Equal(t, "example.com", cfg.ServerName)
	assert.Equal(t, "https", cfg.URLScheme)
	assert.Equal(t, "/api", cfg.ScriptName)
	require.Len(t, cfg.Routes, 6)

	assert.Equal(t, []string{"get", "put"}, cfg.Routes[1].Methods)
	require.NotNil(t, cfg.Routes[2].StrictSlashes)
	assert.False(t, *cfg.Routes[2].StrictSlashes)
	assert.Equal(t, 4, cfg.Routes[4].Params["code"].Length)
	require.NotNil(t, cfg.Routes[5].Params["n"].Max)
	assert.InDelta(t, 10.0, *cfg.Routes[5].Params["n"].Max, 0)

	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Routes, 6)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := LoadConfigFromReader(strings.NewReader("routes: [unterminated"))
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestConfigAdapter(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigFromReader(strings.NewReader(testConfig))
	require.NoError(t, err)

	a, err := cfg.Adapter(zap.NewNop())
	require.NoError(t, err)

	res, err := a.Match("/users/3", "PUT")
	require.NoError(t, err)
	assert.Equal(t, "user_detail", res.Endpoint)

	res, err = a.Match("/docs", "GET")
	require.NoError(t, err)
	assert.Equal(t, "docs", res.Endpoint)

	_, err = a.Match("/code/abc", "GET")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = a.Match("/n/11", "GET")
	assert.ErrorIs(t, err, ErrNotFound)

	url, err := a.Build("page", nil, WithExternal())
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/api/page/1", url)

	url, err = a.Build("code", rule.Values{"code": "abcd"})
	require.NoError(t, err)
	assert.Equal(t, "/api/code/abcd", url)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Routes: []RouteConfig{
			{Pattern: "/ok", Endpoint: "ok"},
			{Pattern: "/users/<id", Endpoint: "broken"},
			{Pattern: "/anon"},
			{Pattern: "/p/<x>", Endpoint: "p", Params: map[string]converter.Params{"y": {Length: 1}}},
		},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPattern)
	assert.Contains(t, err.Error(), "routes[1]")
	assert.Contains(t, err.Error(), "routes[2]")
	assert.Contains(t, err.Error(), "routes[3]")

	_, err = cfg.Adapter(nil)
	assert.Error(t, err)
}

func TestConfigEmptyMethods(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigFromReader(strings.NewReader(`
routes:
  - pattern: /a
    endpoint: a
  - pattern: /b
    endpoint: b
    methods: []
`))
	require.NoError(t, err)

	assert.Nil(t, cfg.Routes[0].Methods)
	assert.NotNil(t, cfg.Routes[1].Methods)

	r, err := cfg.Routes[0].Rule()
	require.NoError(t, err)
	assert.Equal(t, []string{"GET", "HEAD", "OPTIONS"}, r.Methods())

	_, err = cfg.Routes[1].Rule()
	assert.ErrorIs(t, err, ErrEmptyMethods)

	err = cfg.Validate()
	assert.ErrorIs(t, err, ErrEmptyMethods)
	assert.Contains(t, err.Error(), "routes[1]")
}

func TestConfigApplyFrozen(t *testing.T) {
	t.Parallel()

	m := NewMap()
	m.Freeze()

	cfg := &Config{Routes: []RouteConfig{{Pattern: "/a", Endpoint: "a"}}}
	assert.ErrorIs(t, cfg.Apply(m), ErrFrozen)
}
