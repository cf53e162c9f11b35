package ngupdate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/albertocavalcante/go-ngupdate/registry"
)

// WorkspaceFile is the manifest name at the root of a workspace.
const WorkspaceFile = "package.json"

// Workspace is the root package.json of a project.
type Workspace struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Dependencies     map[string]string `json:"dependencies,omitempty"`
	DevDependencies  map[string]string `json:"devDependencies,omitempty"`
	PeerDependencies map[string]string `json:"peerDependencies,omitempty"`
}

// ParseWorkspaceFile reads and parses a package.json file from disk.
func ParseWorkspaceFile(filename string) (*Workspace, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace manifest: %w", err)
	}
	return ParseWorkspace(data)
}

// ParseWorkspaceDir parses {dir}/package.json.
func ParseWorkspaceDir(dir string) (*Workspace, error) {
	return ParseWorkspaceFile(filepath.Join(dir, WorkspaceFile))
}

// ParseWorkspace parses package.json content.
func ParseWorkspace(data []byte) (*Workspace, error) {
	var w Workspace
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse package.json: %w", err)
	}
	return &w, nil
}

// AllDependencies merges peer, dev and regular dependencies into one map.
// On conflicts dependencies win over devDependencies, which win over
// peerDependencies. Entries that do not come from a registry (file:, git,
// URLs, aliases) are left out and reported as warnings.
func (w *Workspace) AllDependencies() (map[string]string, []string) {
	all := make(map[string]string)
	for _, deps := range []map[string]string{w.PeerDependencies, w.DevDependencies, w.Dependencies} {
		for name, spec := range deps {
			all[name] = spec
		}
	}

	var warnings []string
	for _, name := range sortedKeys(all) {
		if kind := nonRegistryKind(all[name]); kind != "" {
			warnings = append(warnings, fmt.Sprintf("package %s is not installed from the registry (%s: %s); skipping",
				name, kind, all[name]))
			delete(all, name)
		}
	}
	return all, warnings
}

// nonRegistryKind classifies a dependency specifier that does not resolve
// through the registry. Returns "" for ranges, versions and dist-tags.
func nonRegistryKind(spec string) string {
	spec = strings.TrimSpace(spec)
	switch {
	case strings.HasPrefix(spec, "file:"):
		return "file"
	case strings.HasPrefix(spec, "link:"):
		return "link"
	case strings.HasPrefix(spec, "workspace:"):
		return "workspace"
	case strings.HasPrefix(spec, "npm:"):
		return "alias"
	case strings.HasPrefix(spec, "git+"), strings.HasPrefix(spec, "git:"),
		strings.HasPrefix(spec, "github:"), strings.HasPrefix(spec, "gitlab:"),
		strings.HasPrefix(spec, "bitbucket:"):
		return "git"
	case strings.Contains(spec, "://"):
		return "URL"
	case strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "/") || strings.HasPrefix(spec, "~/"):
		return "path"
	case strings.Contains(spec, "/"):
		return "GitHub"
	default:
		return ""
	}
}

// ParsePackageSpecs turns "name[@version]" arguments into a request set.
//
// A missing version requests "latest", or "next" when prerelease is set.
// Names that are not declared in workspace are skipped with a warning.
// Malformed names are an error.
func ParsePackageSpecs(specs []string, workspace map[string]string, prerelease bool) (map[string]string, []string, error) {
	requested := make(map[string]string, len(specs))
	var warnings []string

	for _, spec := range specs {
		name, version := splitPackageSpec(spec)
		if !registry.ValidName(name) {
			return nil, nil, fmt.Errorf("invalid package name %q in %q", name, spec)
		}
		if version == "" {
			version = TagLatest
			if prerelease {
				version = TagNext
			}
		}
		if _, ok := workspace[name]; !ok {
			warnings = append(warnings, fmt.Sprintf("package not installed: %s; skipping", name))
			continue
		}
		requested[name] = version
	}
	return requested, warnings, nil
}

// splitPackageSpec splits "name@version". The leading "@" of a scope is part
// of the name.
func splitPackageSpec(spec string) (name, version string) {
	spec = strings.TrimSpace(spec)
	if i := strings.LastIndex(spec, "@"); i > 0 {
		return spec[:i], spec[i+1:]
	}
	return spec, ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
