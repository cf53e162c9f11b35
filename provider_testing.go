package ngupdate

import (
	"context"
	"fmt"
	"sync"

	"github.com/albertocavalcante/go-ngupdate/registry"
)

// Compile-time interface compliance check
var _ Provider = (*MemoryProvider)(nil)

// MemoryProvider is a thread-safe in-memory Provider for testing.
type MemoryProvider struct {
	mu         sync.RWMutex
	packuments map[string]*registry.Packument
	installed  map[string]*InstalledPackage
	failures   map[string]error
	calls      map[string]int
}

// NewMemoryProvider creates an empty provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		packuments: make(map[string]*registry.Packument),
		installed:  make(map[string]*InstalledPackage),
		failures:   make(map[string]error),
		calls:      make(map[string]int),
	}
}

// AddPackument registers registry metadata for p.Name.
func (m *MemoryProvider) AddPackument(p *registry.Packument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.packuments[p.Name] = p
}

// SetInstalled marks name as installed at version. manifest may be nil, in
// which case only the version is known.
func (m *MemoryProvider) SetInstalled(name, version string, manifest *registry.Manifest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.installed[name] = &InstalledPackage{Version: version, Manifest: manifest}
}

// SetFailure makes registry lookups for name fail with err.
func (m *MemoryProvider) SetFailure(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[name] = err
}

// MetadataCalls returns how many times the metadata of name was requested.
func (m *MemoryProvider) MetadataCalls(name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[name]
}

// GetInstalledPackage returns the installed package, or nil.
func (m *MemoryProvider) GetInstalledPackage(ctx context.Context, name string) (*InstalledPackage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.installed[name], nil
}

// GetRegistryMetadata returns the registered packument.
func (m *MemoryProvider) GetRegistryMetadata(ctx context.Context, name string) (*registry.Packument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
	if err, ok := m.failures[name]; ok {
		return nil, err
	}
	p, ok := m.packuments[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
	}
	return p, nil
}

// GetRegistryManifest returns one version's manifest from the registered packument.
func (m *MemoryProvider) GetRegistryManifest(ctx context.Context, name, version string) (*registry.Manifest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err, ok := m.failures[name]; ok {
		return nil, err
	}
	p, ok := m.packuments[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
	}
	manifest, ok := p.Manifest(version)
	if !ok {
		return nil, fmt.Errorf("%w: %s@%s", ErrVersionNotFound, name, version)
	}
	return manifest, nil
}
