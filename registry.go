package ngupdate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/albertocavalcante/go-ngupdate/registry"
)

// DefaultRegistry is the public npm registry.
const DefaultRegistry = registry.DefaultURL

// Registry serves packuments. Remote registries, file:// registries and
// registry chains implement it.
type Registry interface {
	GetPackument(ctx context.Context, name string) (*registry.Packument, error)
	BaseURL() string
}

var _ Registry = (*registry.Client)(nil)

// registryOptions carries the settings shared by every registry in a chain.
type registryOptions struct {
	httpClient *http.Client
	timeout    time.Duration
	npmrc      *registry.NpmConfig
	logger     *slog.Logger
}

// NewRegistry creates a Registry from URLs in priority order.
// With no URLs the public npm registry is used. file:// URLs point at a local
// directory laid out like a registry storage ({root}/{name}/package.json).
func NewRegistry(urls ...string) (Registry, error) {
	return newRegistry(urls, registryOptions{})
}

func newRegistry(urls []string, o registryOptions) (Registry, error) {
	if len(urls) == 0 {
		if o.npmrc != nil && o.npmrc.Registry != "" {
			urls = []string{o.npmrc.Registry}
		} else {
			urls = []string{DefaultRegistry}
		}
	}

	scopes := o.npmrc.ScopeRegistries()
	if len(urls) == 1 && len(scopes) == 0 {
		return createRegistry(urls[0], o)
	}
	return newRegistryChain(urls, scopes, o)
}

// createRegistry creates a single registry for url.
func createRegistry(url string, o registryOptions) (Registry, error) {
	if isFileURL(url) {
		path, err := parseFileURL(url)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("local registry path does not exist: %s", path)
			}
			return nil, fmt.Errorf("cannot access local registry path %s: %w", path, err)
		}
		return newLocalRegistry(path), nil
	}

	opts := []registry.ClientOption{registry.WithHTTPClient(o.httpClient)}
	if o.httpClient == nil && o.timeout > 0 {
		opts = append(opts, registry.WithTimeout(o.timeout))
	}
	if token := o.npmrc.TokenFor(url); token != "" {
		opts = append(opts, registry.WithAuthToken(token))
	}
	return registry.NewClient(url, opts...), nil
}

// loadProjectNpmrc reads {dir}/.npmrc. A missing file yields nil.
func loadProjectNpmrc(dir string) (*registry.NpmConfig, error) {
	if dir == "" {
		return nil, nil
	}
	cfg, err := registry.LoadNpmrc(filepath.Join(dir, ".npmrc"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return cfg, err
}
