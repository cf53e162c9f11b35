package lockfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ReadFile reads and parses a lockfile from the given path.
func ReadFile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}
	return Parse(data)
}

// ReadDir reads package-lock.json from a project directory.
// A missing lockfile is not an error: it returns (nil, nil).
func ReadDir(dir string) (*Lockfile, error) {
	lf, err := ReadFile(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return lf, err
}

// Parse parses lockfile JSON data.
func Parse(data []byte) (*Lockfile, error) {
	var lf Lockfile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("failed to parse lockfile JSON: %w", err)
	}

	if lf.Packages == nil {
		lf.Packages = make(map[string]Package)
	}
	if lf.Dependencies == nil {
		lf.Dependencies = make(map[string]Dependency)
	}

	return &lf, nil
}
