package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fasthttp/urlmap"
)

const testRoutes = `
server_name: example.com
routes:
  - pattern: /
    endpoint: index
  - pattern: /users/<int:id>
    endpoint: user_detail
    methods: [GET, PUT]
  - pattern: /files/<path:name>
    endpoint: files
`

func writeRoutes(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testRoutes), 0o600))

	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	flags, err := parseFlags(append([]string{"-config", writeRoutes(t)}, args...), io.Discard)
	require.NoError(t, err)

	var out bytes.Buffer
	err = run(flags, zap.NewNop(), &out)

	return out.String(), err
}

func firstColumn(out string) []string {
	var col []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n")[2:] {
		col = append(col, strings.Fields(line)[0])
	}

	return col
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	flags, err := parseFlags([]string{"-config", "x.yaml", "-log-level", "debug", "routes", "-sort", "rule"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "x.yaml", flags.configPath)
	assert.Equal(t, "debug", flags.logLevel)
	assert.Equal(t, []string{"routes", "-sort", "rule"}, flags.args)

	_, err = parseFlags([]string{"-unknown"}, io.Discard)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger, err := newLogger("info", "json", &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown", zap.String("k", "v"))
	require.NoError(t, logger.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"k":"v"`)

	_, err = newLogger("loud", "json", &buf)
	assert.Error(t, err)
}

func TestRoutesCmd(t *testing.T) {
	t.Parallel()

	out, err := runCmd(t, "routes")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Endpoint"))
	assert.Equal(t, []string{"files", "index", "user_detail"}, firstColumn(out))
	assert.Contains(t, out, "GET, PUT")
	assert.NotContains(t, out, "HEAD")

	out, err = runCmd(t, "routes", "-sort", "rule")
	require.NoError(t, err)
	assert.Equal(t, []string{"index", "files", "user_detail"}, firstColumn(out))

	out, err = runCmd(t, "routes", "-sort", "methods", "-all-methods")
	require.NoError(t, err)
	assert.Equal(t, []string{"index", "files", "user_detail"}, firstColumn(out))
	assert.Contains(t, out, "GET, HEAD, PUT, OPTIONS")

	_, err = runCmd(t, "routes", "-sort", "size")
	assert.ErrorIs(t, err, errUsage)
}

func TestMatchCmd(t *testing.T) {
	t.Parallel()

	out, err := runCmd(t, "match", "/users/42")
	require.NoError(t, err)
	assert.Equal(t, "user_detail\n  id=42\n", out)

	out, err = runCmd(t, "match", "-method", "put", "/files/a/b.txt")
	assert.ErrorIs(t, err, urlmap.ErrMethodNotAllowed)
	assert.Empty(t, out)

	_, err = runCmd(t, "match", "/nope/x/y")
	assert.ErrorIs(t, err, urlmap.ErrNotFound)

	_, err = runCmd(t, "match")
	assert.ErrorIs(t, err, errUsage)
}

func TestBuildCmd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"index"}, "/"},
		{[]string{"user_detail", "id=7"}, "/users/7"},
		{[]string{"user_detail", "id=7", "tab=a", "tab=b"}, "/users/7?tab=a&tab=b"},
		{[]string{"-external", "user_detail", "id=7"}, "http://example.com/users/7"},
		{[]string{"-anchor", "top", "files", "name=a/b c.txt"}, "/files/a/b%20c.txt#top"},
		{[]string{"-method", "PUT", "user_detail", "id=1"}, "/users/1"},
	}

	for _, tt := range tests {
		out, err := runCmd(t, append([]string{"build"}, tt.args...)...)
		require.NoError(t, err, tt.args)
		assert.Equal(t, tt.want+"\n", out, tt.args)
	}

	_, err := runCmd(t, "build", "user_detail")
	assert.ErrorIs(t, err, urlmap.ErrMissingArgument)

	_, err = runCmd(t, "build", "nope")
	assert.ErrorIs(t, err, urlmap.ErrUnknownEndpoint)

	_, err = runCmd(t, "build", "user_detail", "id")
	assert.ErrorIs(t, err, errUsage)
}

func TestRun(t *testing.T) {
	t.Parallel()

	_, err := runCmd(t)
	assert.ErrorIs(t, err, errUsage)

	_, err = runCmd(t, "serve")
	assert.ErrorIs(t, err, errUsage)

	flags, err := parseFlags([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml"), "routes"}, io.Discard)
	require.NoError(t, err)
	assert.Error(t, run(flags, zap.NewNop(), io.Discard))
}
