package ngupdate

import (
	"context"
	"errors"
	"fmt"

	"github.com/albertocavalcante/go-ngupdate/registry"
)

// Provider supplies registry metadata and installed package state.
//
// The analysis calls a Provider from several goroutines during the initial
// metadata fetch, so implementations must be safe for concurrent use.
type Provider interface {
	// GetInstalledPackage returns the package installed in the project, or
	// nil when it is not installed. Errors are treated as "not installed".
	GetInstalledPackage(ctx context.Context, name string) (*InstalledPackage, error)

	// GetRegistryMetadata returns the packument for name. An error excludes
	// the package from the analysis.
	GetRegistryMetadata(ctx context.Context, name string) (*registry.Packument, error)

	// GetRegistryManifest returns the manifest of one published version.
	GetRegistryManifest(ctx context.Context, name, version string) (*registry.Manifest, error)
}

// InstalledPackage is a package found in the project.
type InstalledPackage struct {
	// Version is the installed version.
	Version string

	// Manifest is the installed package.json. Nil when only the version is
	// known, for example from package-lock.json.
	Manifest *registry.Manifest
}

// RegistryProvider is the default Provider: packuments come from a Registry
// and installed packages from a project directory.
type RegistryProvider struct {
	registry  Registry
	installed *installedReader
}

var _ Provider = (*RegistryProvider)(nil)

// NewProvider creates a provider. projectDir may be empty, in which case no
// package is considered installed.
func NewProvider(reg Registry, projectDir string) *RegistryProvider {
	return &RegistryProvider{
		registry:  reg,
		installed: newInstalledReader(projectDir),
	}
}

// GetInstalledPackage reads the package from node_modules, falling back to
// package-lock.json.
func (p *RegistryProvider) GetInstalledPackage(ctx context.Context, name string) (*InstalledPackage, error) {
	return p.installed.Get(ctx, name)
}

// GetRegistryMetadata fetches the packument from the registry.
func (p *RegistryProvider) GetRegistryMetadata(ctx context.Context, name string) (*registry.Packument, error) {
	pkg, err := p.registry.GetPackument(ctx, name)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrPackageNotFound, err)
		}
		return nil, err
	}
	return pkg, nil
}

// GetRegistryManifest returns one version's manifest from the packument.
func (p *RegistryProvider) GetRegistryManifest(ctx context.Context, name, version string) (*registry.Manifest, error) {
	pkg, err := p.GetRegistryMetadata(ctx, name)
	if err != nil {
		return nil, err
	}
	m, ok := pkg.Manifest(version)
	if !ok {
		return nil, fmt.Errorf("%s@%s: %w", name, version, ErrVersionNotFound)
	}
	return m, nil
}
