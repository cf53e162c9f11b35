package ngupdate

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/albertocavalcante/go-ngupdate/registry"
)

// localRegistry serves packuments from a local directory. This enables
// offline workflows against a mirrored or pre-downloaded registry.
//
// The directory uses the registry storage layout, one packument per package:
//
//	{root}/{name}/package.json
//	{root}/@{scope}/{name}/package.json
//
// Create with file:// URLs:
//
//	reg, err := NewRegistry("file:///path/to/storage")
type localRegistry struct {
	rootPath string
	cache    sync.Map // map[string]*registry.Packument keyed by package name
}

// newLocalRegistry creates a registry for a local directory.
func newLocalRegistry(rootPath string) *localRegistry {
	return &localRegistry{
		rootPath: filepath.Clean(rootPath),
	}
}

// parseFileURL extracts the path from a file:// URL.
// Handles both Unix (file:///path) and Windows (file:///C:/path) formats.
func parseFileURL(url string) (string, error) {
	if !strings.HasPrefix(url, "file://") {
		return "", fmt.Errorf("not a file:// URL: %s", url)
	}

	path := strings.TrimPrefix(url, "file://")

	// file:///C:/path -> C:/path
	if len(path) >= 3 && path[0] == '/' && isWindowsDriveLetter(path[1]) && path[2] == ':' {
		path = path[1:]
	}

	return filepath.Clean(path), nil
}

// isWindowsDriveLetter returns true if c is a valid Windows drive letter (A-Z, a-z).
func isWindowsDriveLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// isFileURL checks if a URL is a file:// URL.
func isFileURL(url string) bool {
	return strings.HasPrefix(url, "file://")
}

// BaseURL returns the file:// URL for this registry.
func (r *localRegistry) BaseURL() string {
	urlPath := filepath.ToSlash(r.rootPath)
	if runtime.GOOS == "windows" && len(urlPath) >= 2 && isWindowsDriveLetter(urlPath[0]) && urlPath[1] == ':' {
		urlPath = "/" + urlPath
	}
	return "file://" + urlPath
}

// GetPackument reads {root}/{name}/package.json.
func (r *localRegistry) GetPackument(ctx context.Context, name string) (*registry.Packument, error) {
	if cached, ok := r.cache.Load(name); ok {
		return cached.(*registry.Packument), nil
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if !registry.ValidName(name) {
		return nil, fmt.Errorf("invalid package name %q: %w", name, registry.ErrNotFound)
	}

	path := filepath.Join(r.rootPath, filepath.FromSlash(name), "package.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &registry.HTTPError{
				StatusCode: http.StatusNotFound,
				URL:        pathToFileURL(path),
			}
		}
		return nil, fmt.Errorf("read local packument %s: %w", path, err)
	}

	pkg, err := registry.DecodePackument(data)
	if err != nil {
		return nil, fmt.Errorf("parse local packument %s: %w", path, err)
	}
	if pkg.Name != name {
		return nil, fmt.Errorf("local packument %s is for %q", path, pkg.Name)
	}

	r.cache.Store(name, pkg)
	return pkg, nil
}

// pathToFileURL converts a native file path to a file:// URL.
func pathToFileURL(path string) string {
	urlPath := filepath.ToSlash(path)
	if len(urlPath) >= 2 && isWindowsDriveLetter(urlPath[0]) && urlPath[1] == ':' {
		urlPath = "/" + urlPath
	}
	return "file://" + urlPath
}

var _ Registry = (*localRegistry)(nil)
