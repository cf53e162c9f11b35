package ngupdate

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/go-ngupdate/registry"
)

// Analyzer computes update plans. It is safe for concurrent use: every call
// to Analyze works on its own state and only the Provider is shared.
type Analyzer struct {
	cfg      *analyzerConfig
	provider Provider
}

// NewAnalyzer creates an analyzer. Without WithProvider, a registry provider
// is built from WithRegistries, WithProjectDir (.npmrc, node_modules and
// package-lock.json) and the HTTP options.
func NewAnalyzer(opts ...Option) (*Analyzer, error) {
	cfg, err := newAnalyzerConfig(opts...)
	if err != nil {
		return nil, err
	}
	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}
	return &Analyzer{cfg: cfg, provider: provider}, nil
}

func buildProvider(cfg *analyzerConfig) (Provider, error) {
	if cfg.provider != nil {
		return cfg.provider, nil
	}
	npmrc, err := loadProjectNpmrc(cfg.projectDir)
	if err != nil {
		return nil, fmt.Errorf("load .npmrc: %w", err)
	}
	reg, err := newRegistry(cfg.registries, registryOptions{
		httpClient: cfg.httpClient,
		timeout:    cfg.timeout,
		npmrc:      npmrc,
		logger:     cfg.log(),
	})
	if err != nil {
		return nil, fmt.Errorf("create registry: %w", err)
	}
	return NewProvider(reg, cfg.projectDir), nil
}

// Analyze works out the updates for requested, a map of package name to
// version token (an exact version, a range, a dist-tag or "" for the most
// recent release). workspace maps every dependency declared by the project
// to its declared range.
//
// Every requested package must be declared in workspace. When peer
// dependency violations are found the error is a *PeerConflictError unless
// force is set, in which case they are reported in Result.Violations.
func (a *Analyzer) Analyze(ctx context.Context, requested, workspace map[string]string) (*Result, error) {
	return a.analyze(ctx, requested, workspace, nil)
}

// analyze runs one analysis. warnings raised while preparing the inputs are
// reported ahead of the analysis' own.
func (a *Analyzer) analyze(ctx context.Context, requested, workspace map[string]string, warnings []string) (*Result, error) {
	an := &analysis{
		cfg:       a.cfg,
		provider:  a.provider,
		workspace: maps.Clone(workspace),
		requested: make(map[string]string, len(requested)),
		warnings:  newWarningLog(a.cfg),
	}
	if an.workspace == nil {
		an.workspace = make(map[string]string)
	}
	for _, w := range warnings {
		an.warnings.add(w)
	}

	for _, name := range sortedKeys(requested) {
		if _, ok := an.workspace[name]; !ok {
			return nil, &PackageError{Name: name, Err: ErrNotInWorkspace}
		}
		token := requested[name]
		if token == "" {
			token = TagLatest
			if a.cfg.prerelease {
				token = TagNext
			}
		}
		an.requested[name] = token
	}

	return an.run(ctx)
}

// analysis is the state of one Analyze call.
type analysis struct {
	cfg       *analyzerConfig
	provider  Provider
	workspace map[string]string
	requested map[string]string

	universe   map[string]*registry.Packument
	unresolved []UnresolvedPackage
	resolver   *infoResolver
	warnings   *warningLog
}

func (a *analysis) warn(format string, args ...any) {
	a.warnings.add(fmt.Sprintf(format, args...))
}

func (a *analysis) run(ctx context.Context) (*Result, error) {
	if err := a.fetchUniverse(ctx); err != nil {
		return nil, err
	}

	a.resolver = newInfoResolver(a.cfg, a.provider, a.universe, a.workspace, a.warn)
	if err := a.expand(ctx); err != nil {
		return nil, err
	}

	infos := make(map[string]*PackageInfo, len(a.universe))
	for _, name := range sortedKeys(a.universe) {
		info, err := a.resolver.resolve(ctx, name, a.requested[name])
		if err != nil {
			return nil, err
		}
		infos[name] = info
	}

	result := &Result{
		Packages:   infos,
		Requested:  maps.Clone(a.requested),
		Unresolved: a.unresolved,
	}

	if len(a.requested) > 0 {
		v := &peerValidator{
			infos:      infos,
			compat:     a.cfg.compat,
			ignored:    a.cfg.ignoredSet(),
			prerelease: a.cfg.prerelease,
			warn:       a.warn,
			debug:      a.cfg.debug,
		}
		violations := v.validate(ctx)
		for _, violation := range violations {
			if a.cfg.force {
				a.cfg.log().WarnContext(ctx, "ignoring peer dependency violation", "violation", violation.Error())
			} else {
				a.cfg.log().ErrorContext(ctx, "peer dependency violation", "violation", violation.Error())
			}
		}
		if len(violations) > 0 && !a.cfg.force {
			return nil, &PeerConflictError{Violations: violations}
		}
		result.Violations = violations
	}

	result.Warnings = a.warnings.list
	return result, nil
}

// fetchUniverse fetches registry metadata for every requested and declared
// package. Individual failures only exclude the package; the call returns
// once every fetch has settled.
func (a *analysis) fetchUniverse(ctx context.Context) error {
	names := make(map[string]struct{}, len(a.workspace)+len(a.requested))
	for name := range a.workspace {
		names[name] = struct{}{}
	}
	for name := range a.requested {
		names[name] = struct{}{}
	}

	var mu sync.Mutex
	universe := make(map[string]*registry.Packument, len(names))
	var failed []UnresolvedPackage

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.concurrency)
	for _, name := range sortedKeys(names) {
		g.Go(func() error {
			meta, err := a.provider.GetRegistryMetadata(gctx, name)
			if err == nil && meta == nil {
				err = ErrPackageNotFound
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, UnresolvedPackage{Name: name, Err: err})
				return nil
			}
			universe[name] = meta
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	sort.Slice(failed, func(i, j int) bool { return failed[i].Name < failed[j].Name })
	for _, f := range failed {
		a.warn("unable to fetch package information for %s: %v", f.Name, f.Err)
	}
	for _, name := range sortedKeys(universe) {
		for _, w := range universe[name].Warnings {
			a.warn("registry metadata for %s: %s", name, w)
		}
	}

	a.universe = universe
	a.unresolved = failed
	a.cfg.debug(ctx, "fetched package metadata", "packages", len(universe), "failed", len(failed))
	return nil
}

// warningLog collects warnings in the order they are first raised, logging
// each one once.
type warningLog struct {
	cfg  *analyzerConfig
	seen map[string]bool
	list []string
}

func newWarningLog(cfg *analyzerConfig) *warningLog {
	return &warningLog{cfg: cfg, seen: make(map[string]bool)}
}

func (w *warningLog) add(msg string) {
	if w.seen[msg] {
		return
	}
	w.seen[msg] = true
	w.list = append(w.list, msg)
	w.cfg.log().Warn(msg)
}
