package ngupdate

import (
	"context"
	"fmt"

	"github.com/albertocavalcante/go-ngupdate/registry"
)

// infoKey identifies a resolution: the same package resolved against
// different request tokens yields different infos.
type infoKey struct {
	name  string
	token string
}

// infoResolver builds PackageInfo records for packages in the metadata
// universe. Results are memoized for the lifetime of one analysis, so
// visiting a package again during expansion costs nothing.
//
// An infoResolver is confined to the goroutine running the analysis.
type infoResolver struct {
	cfg       *analyzerConfig
	provider  Provider
	universe  map[string]*registry.Packument
	workspace map[string]string
	warn      func(format string, args ...any)

	infos     map[infoKey]*PackageInfo
	installed map[string]*PackageVersionInfo
	manifests map[string]*registry.Manifest
}

func newInfoResolver(cfg *analyzerConfig, provider Provider, universe map[string]*registry.Packument, workspace map[string]string, warn func(string, ...any)) *infoResolver {
	return &infoResolver{
		cfg:       cfg,
		provider:  provider,
		universe:  universe,
		workspace: workspace,
		warn:      warn,
		infos:     make(map[infoKey]*PackageInfo),
		installed: make(map[string]*PackageVersionInfo),
		manifests: make(map[string]*registry.Manifest),
	}
}

// resolve returns the info for name when it is requested with token. An
// empty token means the package is not requested and gets no target.
func (r *infoResolver) resolve(ctx context.Context, name, token string) (*PackageInfo, error) {
	key := infoKey{name: name, token: token}
	if info, ok := r.infos[key]; ok {
		return info, nil
	}

	meta, ok := r.universe[name]
	if !ok {
		return nil, &PackageError{Name: name, Err: ErrPackageNotFound}
	}

	installed, err := r.resolveInstalled(ctx, name)
	if err != nil {
		return nil, err
	}

	info := &PackageInfo{
		Name:             name,
		Metadata:         meta,
		Installed:        *installed,
		PackageJSONRange: r.workspace[name],
	}

	if token != "" {
		target, err := r.resolveTarget(ctx, meta, token)
		if err != nil {
			return nil, &PackageError{Name: name, Err: err}
		}
		if greaterThan(target, installed.Version) {
			info.Target, err = r.versionInfo(ctx, name, target)
			if err != nil {
				return nil, err
			}
			r.cfg.debug(ctx, "resolved update", "package", name, "token", token, "from", installed.Version, "to", target)
		} else {
			r.cfg.debug(ctx, "no update needed", "package", name, "token", token, "installed", installed.Version, "candidate", target)
		}
	}

	r.infos[key] = info
	return info, nil
}

// resolveInstalled determines the installed stance of name. The local
// package wins; otherwise the workspace range is resolved against the
// registry as a dist-tag or a range.
func (r *infoResolver) resolveInstalled(ctx context.Context, name string) (*PackageVersionInfo, error) {
	if info, ok := r.installed[name]; ok {
		return info, nil
	}

	rng, ok := r.workspace[name]
	if !ok {
		return nil, &PackageError{Name: name, Err: ErrNotInWorkspace}
	}
	meta, ok := r.universe[name]
	if !ok {
		return nil, &PackageError{Name: name, Err: ErrPackageNotFound}
	}

	local, err := r.provider.GetInstalledPackage(ctx, name)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.cfg.debug(ctx, "installed package unreadable, using registry", "package", name, "error", err)
		local = nil
	}

	var version string
	switch {
	case local != nil && local.Version != "":
		version = local.Version
	default:
		if v, ok := meta.Tag(rng); ok {
			version = v
		} else if v, ok := maxSatisfying(meta, rng); ok {
			version = v
		} else {
			return nil, &PackageError{Name: name, Err: fmt.Errorf("%w (range %q)", ErrNoInstalledVersion, rng)}
		}
	}

	var info *PackageVersionInfo
	if local != nil && local.Manifest != nil {
		md, warnings := ParseUpdateMetadata(local.Manifest)
		for _, w := range warnings {
			r.warn("%s", w)
		}
		info = &PackageVersionInfo{Version: version, Manifest: local.Manifest, UpdateMetadata: md}
	} else {
		info, err = r.versionInfo(ctx, name, version)
		if err != nil {
			return nil, err
		}
	}

	r.installed[name] = info
	return info, nil
}

// resolveTarget turns a request token into a published version: a dist-tag,
// then "next" as the latest tag, then the highest version within the range.
func (r *infoResolver) resolveTarget(ctx context.Context, meta *registry.Packument, token string) (string, error) {
	if v, ok := meta.Tag(token); ok {
		return v, nil
	}
	if token == TagNext {
		if v, ok := meta.Tag(TagLatest); ok {
			return v, nil
		}
	}
	rng := token
	if token == TagLatest || token == TagNext {
		rng = "*"
	}
	if v, ok := maxSatisfying(meta, rng); ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: no version of %s matches %q", ErrVersionNotFound, meta.Name, token)
}

// versionInfo loads the manifest of one published version and derives its
// update metadata.
func (r *infoResolver) versionInfo(ctx context.Context, name, version string) (*PackageVersionInfo, error) {
	m, err := r.manifest(ctx, name, version)
	if err != nil {
		return nil, &PackageError{Name: name, Err: err}
	}
	md, warnings := ParseUpdateMetadata(m)
	for _, w := range warnings {
		r.warn("%s", w)
	}
	return &PackageVersionInfo{Version: version, Manifest: m, UpdateMetadata: md}, nil
}

func (r *infoResolver) manifest(ctx context.Context, name, version string) (*registry.Manifest, error) {
	key := name + "@" + version
	if m, ok := r.manifests[key]; ok {
		return m, nil
	}
	m, err := r.provider.GetRegistryManifest(ctx, name, version)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %s@%s", ErrVersionNotFound, name, version)
	}
	r.manifests[key] = m
	return m, nil
}
