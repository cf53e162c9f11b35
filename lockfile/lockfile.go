package lockfile

import "strings"

// FileName is the lockfile name npm writes next to package.json.
const FileName = "package-lock.json"

// nodeModulesPrefix prefixes every install path in the "packages" map.
const nodeModulesPrefix = "node_modules/"

// Lockfile is the subset of package-lock.json needed to answer
// "which version is installed".
type Lockfile struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	LockfileVersion int    `json:"lockfileVersion"`

	// Packages maps install paths ("" for the root project,
	// "node_modules/<name>" for dependencies) to their entries.
	// Present from lockfileVersion 2 on.
	Packages map[string]Package `json:"packages,omitempty"`

	// Dependencies is the lockfileVersion 1 dependency tree.
	Dependencies map[string]Dependency `json:"dependencies,omitempty"`
}

// Package is one entry of the "packages" map.
type Package struct {
	Name     string `json:"name,omitempty"`
	Version  string `json:"version,omitempty"`
	Resolved string `json:"resolved,omitempty"`
	Dev      bool   `json:"dev,omitempty"`
	Optional bool   `json:"optional,omitempty"`
	Link     bool   `json:"link,omitempty"`

	PeerDependencies map[string]string `json:"peerDependencies,omitempty"`
}

// Dependency is one node of the lockfileVersion 1 tree.
type Dependency struct {
	Version      string                `json:"version"`
	Resolved     string                `json:"resolved,omitempty"`
	Dev          bool                  `json:"dev,omitempty"`
	Requires     map[string]string     `json:"requires,omitempty"`
	Dependencies map[string]Dependency `json:"dependencies,omitempty"`
}

// InstalledVersion returns the version installed at the top level of
// node_modules for name. Nested installs are ignored because they are not
// what the project itself resolves.
func (l *Lockfile) InstalledVersion(name string) (string, bool) {
	if l == nil {
		return "", false
	}
	if p, ok := l.Packages[nodeModulesPrefix+name]; ok && !p.Link && p.Version != "" {
		return p.Version, true
	}
	if d, ok := l.Dependencies[name]; ok && d.Version != "" && !isNonRegistryVersion(d.Version) {
		return d.Version, true
	}
	return "", false
}

// isNonRegistryVersion reports lockfileVersion 1 entries whose "version"
// holds a URL or path instead of a semantic version.
func isNonRegistryVersion(v string) bool {
	return strings.Contains(v, ":") || strings.Contains(v, "/")
}
