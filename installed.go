package ngupdate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/albertocavalcante/go-ngupdate/lockfile"
	"github.com/albertocavalcante/go-ngupdate/registry"
)

// installedReader finds installed packages under a project directory:
//
//	{dir}/node_modules/{name}/package.json
//	{dir}/package-lock.json (fallback, version only)
type installedReader struct {
	dir string

	lockOnce sync.Once
	lock     *lockfile.Lockfile
	lockErr  error
}

func newInstalledReader(dir string) *installedReader {
	return &installedReader{dir: dir}
}

// Get returns the installed package, or nil when it is not installed.
// A package.json that cannot be read or parsed falls back to the lockfile;
// the read error is only returned when the lockfile does not know the package.
func (r *installedReader) Get(ctx context.Context, name string) (*InstalledPackage, error) {
	if r == nil || r.dir == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, readErr := r.readManifest(name)
	if readErr == nil && m != nil {
		return &InstalledPackage{Version: m.Version, Manifest: m}, nil
	}

	if lf := r.lockfile(); lf != nil {
		if v, ok := lf.InstalledVersion(name); ok {
			return &InstalledPackage{Version: v}, nil
		}
	}
	return nil, readErr
}

// readManifest reads node_modules/{name}/package.json. A missing file
// returns (nil, nil).
func (r *installedReader) readManifest(name string) (*registry.Manifest, error) {
	path := filepath.Join(r.dir, "node_modules", filepath.FromSlash(name), "package.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read installed manifest %s: %w", path, err)
	}

	m, err := registry.DecodeManifest(data)
	if err != nil {
		return nil, fmt.Errorf("installed manifest %s: %w", path, err)
	}
	return m, nil
}

// lockfile loads package-lock.json once. Load failures disable the fallback.
func (r *installedReader) lockfile() *lockfile.Lockfile {
	r.lockOnce.Do(func() {
		r.lock, r.lockErr = lockfile.ReadDir(r.dir)
	})
	if r.lockErr != nil {
		return nil
	}
	return r.lock
}
