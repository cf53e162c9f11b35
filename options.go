package ngupdate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/albertocavalcante/go-ngupdate/compat"
)

// DefaultConcurrency bounds the number of registry requests in flight during
// the initial metadata fetch.
const DefaultConcurrency = 8

// DefaultIgnoredDependents lists deprecated packages whose peer dependency
// mismatches are tolerated by the reverse check. They are removed by
// migrations, so flagging them would only block the update.
var DefaultIgnoredDependents = []string{
	"codelyzer",
	"@schematics/update",
	"@angular-devkit/build-ng-packagr",
	"tsickle",
	"@nguniversal/builders",
}

// Option configures an analysis.
type Option func(*analyzerConfig) error

// analyzerConfig holds all analysis configuration.
type analyzerConfig struct {
	prerelease  bool
	force       bool
	verbose     bool
	provider    Provider
	registries  []string
	projectDir  string
	timeout     time.Duration
	httpClient  *http.Client
	concurrency int
	compat      *compat.Table
	ignored     []string

	// logger is the structured logger for diagnostics.
	// If nil, logging is disabled (silent mode).
	logger *slog.Logger
}

// WithPrerelease resolves "next" and empty request tokens to the most recent
// release including pre-releases, and admits pre-releases in peer checks.
func WithPrerelease(enabled bool) Option {
	return func(c *analyzerConfig) error {
		c.prerelease = enabled
		return nil
	}
}

// WithForce returns the result even when peer dependency violations are found.
// The violations are reported in Result.Violations instead of an error.
func WithForce(force bool) Option {
	return func(c *analyzerConfig) error {
		c.force = force
		return nil
	}
}

// WithVerbose emits debug records for every resolution step.
// Has no effect without WithLogger.
func WithVerbose(verbose bool) Option {
	return func(c *analyzerConfig) error {
		c.verbose = verbose
		return nil
	}
}

// WithProvider sets the source of registry and installed package data.
// When set, WithRegistries, WithProjectDir, WithTimeout and WithHTTPClient
// are not used to build a provider.
func WithProvider(p Provider) Option {
	return func(c *analyzerConfig) error {
		if p == nil {
			return errors.New("provider must not be nil")
		}
		c.provider = p
		return nil
	}
}

// WithRegistries sets the registry URLs to use (in priority order).
func WithRegistries(urls ...string) Option {
	return func(c *analyzerConfig) error {
		c.registries = append(c.registries, urls...)
		return nil
	}
}

// WithProjectDir sets the directory holding package.json, node_modules and
// .npmrc. Installed versions are read from it.
func WithProjectDir(dir string) Option {
	return func(c *analyzerConfig) error {
		c.projectDir = dir
		return nil
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *analyzerConfig) error {
		c.timeout = d
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client for registry requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *analyzerConfig) error {
		c.httpClient = client
		return nil
	}
}

// WithConcurrency bounds the number of concurrent registry fetches.
func WithConcurrency(n int) Option {
	return func(c *analyzerConfig) error {
		c.concurrency = n
		return nil
	}
}

// WithCompatTable replaces the compatibility table used by the reverse peer check.
func WithCompatTable(t *compat.Table) Option {
	return func(c *analyzerConfig) error {
		c.compat = t
		return nil
	}
}

// WithIgnoredDependents adds packages whose peer dependency mismatches are
// tolerated by the reverse check.
func WithIgnoredDependents(names ...string) Option {
	return func(c *analyzerConfig) error {
		c.ignored = append(c.ignored, names...)
		return nil
	}
}

// WithPolicy applies a policy file: its ignored dependents are added and its
// compatibility entries extend the current table.
func WithPolicy(p *Policy) Option {
	return func(c *analyzerConfig) error {
		if p == nil {
			return nil
		}
		if err := p.Validate(); err != nil {
			return err
		}
		c.ignored = append(c.ignored, p.IgnoredDependents...)
		c.compat = p.apply(c.compat)
		return nil
	}
}

// WithLogger sets a structured logger for analysis diagnostics.
// If not set, logging is disabled (silent mode).
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "ngupdate")
//	Analyze(ctx, requested, workspace, WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *analyzerConfig) error {
		c.logger = l
		return nil
	}
}

// validate checks the configuration for logical consistency.
func (c *analyzerConfig) validate() error {
	if c.timeout < 0 {
		return errors.New("timeout must be positive")
	}
	if c.concurrency < 0 {
		return errors.New("concurrency must be positive")
	}
	return nil
}

// log returns the configured logger, or a no-op logger if none was set.
func (c *analyzerConfig) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return discardLogger()
}

// debug logs at debug level when verbose mode is on.
func (c *analyzerConfig) debug(ctx context.Context, msg string, args ...any) {
	if c.verbose {
		c.log().DebugContext(ctx, msg, args...)
	}
}

// ignoredSet returns the ignored dependents as a set.
func (c *analyzerConfig) ignoredSet() map[string]bool {
	set := make(map[string]bool, len(DefaultIgnoredDependents)+len(c.ignored))
	for _, name := range DefaultIgnoredDependents {
		set[name] = true
	}
	for _, name := range c.ignored {
		set[name] = true
	}
	return set
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// newAnalyzerConfig creates a configuration by applying the given options
// over the defaults and validating the result.
func newAnalyzerConfig(opts ...Option) (*analyzerConfig, error) {
	c := &analyzerConfig{
		compat: compat.DefaultTable(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	if c.concurrency == 0 {
		c.concurrency = DefaultConcurrency
	}

	return c, nil
}

func discardLogger() *slog.Logger {
	return slog.New(discardHandler{})
}
