package urlmap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fasthttp/urlmap/converter"
	"github.com/fasthttp/urlmap/rule"
)

// Config describes a route table in YAML.
//
//	server_name: example.com
//	routes:
//	  - pattern: /users/<int:id>
//	    endpoint: user_detail
//	    methods: [GET, PUT]
//	  - pattern: /code/<code>
//	    endpoint: code
//	    params:
//	      code: {length: 4}
type Config struct {
	ServerName string        `yaml:"server_name"`
	URLScheme  string        `yaml:"url_scheme"`
	ScriptName string        `yaml:"script_name"`
	Routes     []RouteConfig `yaml:"routes"`
}

// RouteConfig describes one rule.
type RouteConfig struct {
	Pattern       string                      `yaml:"pattern"`
	Endpoint      string                      `yaml:"endpoint"`
	Methods       []string                    `yaml:"methods"`
	StrictSlashes *bool                       `yaml:"strict_slashes"`
	Defaults      map[string]any              `yaml:"defaults"`
	Params        map[string]converter.Params `yaml:"params"`
}

// LoadConfig loads the configuration from a file path.
func LoadConfig(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	data, err := os.ReadFile(absPath) //nolint:gosec // path is resolved via filepath.Abs
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return parseConfig(data)
}

// LoadConfigFromReader loads the configuration from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(data)
}

func parseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &config, nil
}

// Validate compiles every route and reports all the errors found.
func (c *Config) Validate() error {
	var errs []error

	for i := range c.Routes {
		rc := &c.Routes[i]

		if rc.Endpoint == "" {
			errs = append(errs, fmt.Errorf("routes[%d] %q: endpoint is required", i, rc.Pattern))
			continue
		}

		if _, err := rc.Rule(); err != nil {
			errs = append(errs, fmt.Errorf("routes[%d]: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

// Rule compiles the route. Omitted methods default to GET; an explicit
// empty list is an error.
func (rc *RouteConfig) Rule() (*rule.Rule, error) {
	var opts []rule.Option

	if rc.Methods != nil {
		if len(rc.Methods) == 0 {
			return nil, fmt.Errorf("%q: %w", rc.Pattern, ErrEmptyMethods)
		}

		opts = append(opts, rule.WithMethods(rc.Methods...))
	}

	if rc.StrictSlashes != nil {
		opts = append(opts, rule.WithStrictSlashes(*rc.StrictSlashes))
	}

	if len(rc.Defaults) > 0 {
		opts = append(opts, rule.WithDefaults(rc.Defaults))
	}

	for name, params := range rc.Params {
		opts = append(opts, rule.WithParams(name, params))
	}

	return rule.New(rc.Pattern, rc.Endpoint, opts...)
}

// Apply registers the routes on m in order.
func (c *Config) Apply(m *Map) error {
	for i := range c.Routes {
		r, err := c.Routes[i].Rule()
		if err != nil {
			return fmt.Errorf("routes[%d]: %w", i, err)
		}

		if err := m.Add(r); err != nil {
			return err
		}
	}

	return nil
}

// Adapter registers the routes on a new Map and binds the frozen Table with
// the server settings of c.
func (c *Config) Adapter(logger *zap.Logger) (*Adapter, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	m := NewMap(WithLogger(logger))
	if err := c.Apply(m); err != nil {
		return nil, err
	}

	return m.Freeze().Bind(c.ServerName, WithScheme(c.URLScheme), WithScriptName(c.ScriptName)), nil
}
