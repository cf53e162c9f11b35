package ngupdate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/albertocavalcante/go-ngupdate/registry"
)

// registryChain implements multi-registry lookup with fallback behavior.
//
// Key behaviors:
//  1. Scoped packages whose scope has a registry configured in .npmrc are
//     served by that registry only, as npm does
//  2. Other packages are looked up in registry order (first to last)
//  3. The first registry where a package is found serves it from then on
//  4. If a package is not found in any registry, an error wrapping
//     registry.ErrNotFound is returned
//
// Any error from one registry (404, 5xx, TLS, timeouts) moves on to the next.
type registryChain struct {
	clients []Registry
	scoped  map[string]Registry // "@scope" -> registry

	// packageRegistry tracks which registry provides each package.
	packageRegistry   map[string]int
	packageRegistryMu sync.RWMutex

	log *slog.Logger
}

// newRegistryChain creates a chain from registry URLs and scope registries.
//
// Invalid URLs are skipped as long as at least one registry remains.
func newRegistryChain(urls []string, scopes map[string]string, o registryOptions) (*registryChain, error) {
	if len(urls) == 0 {
		return nil, errors.New("no registry URLs provided")
	}

	log := o.logger
	if log == nil {
		log = discardLogger()
	}

	clients := make([]Registry, 0, len(urls))
	for _, url := range urls {
		client, err := createRegistry(url, o)
		if err != nil {
			log.Warn("skipping registry", "url", url, "error", err)
			continue
		}
		clients = append(clients, client)
	}
	if len(clients) == 0 {
		return nil, fmt.Errorf("no valid registries could be created from %d URLs", len(urls))
	}

	scoped := make(map[string]Registry, len(scopes))
	for scope, url := range scopes {
		client, err := createRegistry(url, o)
		if err != nil {
			return nil, fmt.Errorf("registry for scope %s: %w", scope, err)
		}
		scoped[scope] = client
	}

	return &registryChain{
		clients:         clients,
		scoped:          scoped,
		packageRegistry: make(map[string]int),
		log:             log,
	}, nil
}

// scopeOf returns "@scope" for scoped names.
func scopeOf(name string) string {
	if scope, _, ok := strings.Cut(name, "/"); ok && strings.HasPrefix(scope, "@") {
		return scope
	}
	return ""
}

// GetPackument fetches a packument using the chain.
func (rc *registryChain) GetPackument(ctx context.Context, name string) (*registry.Packument, error) {
	pkg, err := rc.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	rc.log.Debug("fetched packument", "package", name, "registry", rc.RegistryFor(name))
	return pkg, nil
}

func (rc *registryChain) lookup(ctx context.Context, name string) (*registry.Packument, error) {
	if reg, ok := rc.scoped[scopeOf(name)]; ok {
		return reg.GetPackument(ctx, name)
	}

	rc.packageRegistryMu.RLock()
	idx, found := rc.packageRegistry[name]
	rc.packageRegistryMu.RUnlock()

	if found {
		return rc.clients[idx].GetPackument(ctx, name)
	}

	var errs []error
	allNotFound := true
	for i, client := range rc.clients {
		pkg, err := client.GetPackument(ctx, name)
		if err == nil {
			rc.packageRegistryMu.Lock()
			if _, exists := rc.packageRegistry[name]; !exists {
				rc.packageRegistry[name] = i
			}
			rc.packageRegistryMu.Unlock()
			return pkg, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, registry.ErrNotFound) {
			allNotFound = false
		}
		errs = append(errs, fmt.Errorf("%s: %w", client.BaseURL(), err))
	}

	if allNotFound {
		return nil, fmt.Errorf("package %s not found in any registry: %w", name, registry.ErrNotFound)
	}
	return nil, fmt.Errorf("package %s could not be fetched: %w", name, errors.Join(errs...))
}

// BaseURL returns the URL of the first registry in the chain.
func (rc *registryChain) BaseURL() string {
	if len(rc.clients) == 0 {
		return ""
	}
	return rc.clients[0].BaseURL()
}

// RegistryFor returns the registry URL that serves name.
// Returns empty string if an unscoped package hasn't been looked up yet.
func (rc *registryChain) RegistryFor(name string) string {
	if reg, ok := rc.scoped[scopeOf(name)]; ok {
		return reg.BaseURL()
	}

	rc.packageRegistryMu.RLock()
	defer rc.packageRegistryMu.RUnlock()

	if idx, found := rc.packageRegistry[name]; found {
		return rc.clients[idx].BaseURL()
	}
	return ""
}

var _ Registry = (*registryChain)(nil)
