// Package main is the urlmap command line tool. It loads a YAML route file
// and lists its rules, matches paths against it or builds URLs from it.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fasthttp/urlmap"
	"github.com/fasthttp/urlmap/rule"
)

const usage = `Usage: urlmap [flags] <command> [arguments]

Commands:
  routes [-sort endpoint|methods|rule] [-all-methods]
  match [-method GET] <path>
  build [-method M] [-external] [-anchor A] <endpoint> [key=value...]

Flags:
`

var errUsage = errors.New("invalid usage")

// cliFlags holds command line flags.
type cliFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	args       []string
}

func main() {
	flags, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	logger, err := newLogger(flags.logLevel, flags.logFormat, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(flags, logger, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}

		logger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

// parseFlags parses the global flags. The remaining arguments select the
// command.
func parseFlags(args []string, output io.Writer) (cliFlags, error) {
	var flags cliFlags

	fs := flag.NewFlagSet("urlmap", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&flags.configPath, "config", getEnvOrDefault("URLMAP_CONFIG", "routes.yaml"),
		"Path to the route file")
	fs.StringVar(&flags.logLevel, "log-level", getEnvOrDefault("URLMAP_LOG_LEVEL", "warn"),
		"Log level (debug, info, warn, error)")
	fs.StringVar(&flags.logFormat, "log-format", getEnvOrDefault("URLMAP_LOG_FORMAT", "console"),
		"Log format (json, console)")

	if err := fs.Parse(args); err != nil {
		return flags, err
	}

	flags.args = fs.Args()

	return flags, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return defaultValue
}

// newLogger builds a zap logger writing to w.
func newLogger(level, format string, w io.Writer) (*zap.Logger, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), l)), nil
}

// run loads the route file and executes the selected command.
func run(flags cliFlags, logger *zap.Logger, out io.Writer) error {
	if len(flags.args) == 0 {
		return errUsage
	}

	cfg, err := urlmap.LoadConfig(flags.configPath)
	if err != nil {
		return err
	}

	adapter, err := cfg.Adapter(logger)
	if err != nil {
		return err
	}

	logger.Debug("route file loaded",
		zap.String("config", flags.configPath),
		zap.Int("routes", len(cfg.Routes)),
	)

	cmd, args := flags.args[0], flags.args[1:]

	switch cmd {
	case "routes":
		return routesCmd(adapter.Table(), args, out)
	case "match":
		return matchCmd(adapter, args, out)
	case "build":
		return buildCmd(adapter, args, out)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func newCmdFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	return fs
}

// routesCmd prints the rules of table as a table.
func routesCmd(table *urlmap.Table, args []string, out io.Writer) error {
	fs := newCmdFlags("routes")
	sortBy := fs.String("sort", "endpoint", "Sort order (endpoint, methods, rule)")
	allMethods := fs.Bool("all-methods", false, "Show HEAD and OPTIONS")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	rules := table.Rules()

	methods := func(r *rule.Rule) string {
		names := r.Methods()
		if !*allMethods {
			kept := names[:0]
			for _, m := range names {
				if m != "HEAD" && m != "OPTIONS" {
					kept = append(kept, m)
				}
			}
			names = kept
		}

		return strings.Join(names, ", ")
	}

	switch *sortBy {
	case "endpoint":
		sort.SliceStable(rules, func(i, j int) bool {
			return rules[i].Endpoint() < rules[j].Endpoint()
		})
	case "methods":
		sort.SliceStable(rules, func(i, j int) bool {
			return methods(rules[i]) < methods(rules[j])
		})
	case "rule":
		sort.SliceStable(rules, func(i, j int) bool {
			return rules[i].Pattern() < rules[j].Pattern()
		})
	default:
		return fmt.Errorf("%w: unknown sort order %q", errUsage, *sortBy)
	}

	if len(rules) == 0 {
		fmt.Fprintln(out, "No routes were registered.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Endpoint\tMethods\tRule")
	fmt.Fprintln(w, "--------\t-------\t----")

	for _, r := range rules {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Endpoint(), methods(r), r.Pattern())
	}

	return w.Flush()
}

// matchCmd matches a path and prints the endpoint followed by the values.
func matchCmd(adapter *urlmap.Adapter, args []string, out io.Writer) error {
	fs := newCmdFlags("match")
	method := fs.String("method", "GET", "Request method")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("%w: match expects one path", errUsage)
	}

	res, err := adapter.Match(fs.Arg(0), *method)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, res.Endpoint)

	keys := make([]string, 0, len(res.Values))
	for k := range res.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(out, "  %s=%v\n", k, res.Values[k])
	}

	return nil
}

// buildCmd builds the URL of an endpoint from key=value arguments.
func buildCmd(adapter *urlmap.Adapter, args []string, out io.Writer) error {
	fs := newCmdFlags("build")
	method := fs.String("method", "", "Only consider rules allowing this method")
	external := fs.Bool("external", false, "Prefix the scheme and server name")
	anchor := fs.String("anchor", "", "URL fragment")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("%w: build expects an endpoint", errUsage)
	}

	values := make(rule.Values, fs.NArg()-1)
	for _, arg := range fs.Args()[1:] {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return fmt.Errorf("%w: %q is not key=value", errUsage, arg)
		}

		if prev, exists := values[k]; exists {
			switch p := prev.(type) {
			case []string:
				values[k] = append(p, v)
			case string:
				values[k] = []string{p, v}
			}

			continue
		}

		values[k] = v
	}

	var opts []urlmap.BuildOption
	if *method != "" {
		opts = append(opts, urlmap.WithMethod(*method))
	}
	if *external {
		opts = append(opts, urlmap.WithExternal())
	}
	if *anchor != "" {
		opts = append(opts, urlmap.WithAnchor(*anchor))
	}

	url, err := adapter.Build(fs.Arg(0), values, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, url)

	return nil
}
