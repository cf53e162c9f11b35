package registry

import (
	"bytes"
	"encoding/json"
)

// DefaultURL is the public npm registry.
const DefaultURL = "https://registry.npmjs.org"

// Packument is the registry document for a package name across all versions.
type Packument struct {
	// Name is the package name, including the scope for scoped packages.
	Name string `json:"name"`

	// DistTags maps tag names (e.g. "latest", "next") to published versions.
	DistTags map[string]string `json:"dist-tags"`

	// Versions maps each published version to its manifest.
	Versions map[string]*Manifest `json:"versions"`

	// Warnings lists the entries Prune dropped while decoding.
	Warnings []string `json:"-"`
}

// Manifest is the package.json of one published (or installed) version.
type Manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`

	Dependencies         map[string]string             `json:"dependencies,omitempty"`
	DevDependencies      map[string]string             `json:"devDependencies,omitempty"`
	PeerDependencies     map[string]string             `json:"peerDependencies,omitempty"`
	PeerDependenciesMeta map[string]PeerDependencyMeta `json:"peerDependenciesMeta,omitempty"`

	// Deprecated holds the raw deprecation notice. npm writes a string, some
	// mirrors write a boolean.
	Deprecated json.RawMessage `json:"deprecated,omitempty"`

	// NgUpdate is the raw "ng-update" block. Its shape is only loosely
	// specified, so it is kept raw and normalized by the caller.
	NgUpdate json.RawMessage `json:"ng-update,omitempty"`
}

// PeerDependencyMeta carries per-peer flags from peerDependenciesMeta.
type PeerDependencyMeta struct {
	Optional bool `json:"optional,omitempty"`
}

// Manifest returns the manifest for version, if published.
func (p *Packument) Manifest(version string) (*Manifest, bool) {
	m, ok := p.Versions[version]
	return m, ok && m != nil
}

// HasVersion returns true if the given version is published.
func (p *Packument) HasVersion(version string) bool {
	_, ok := p.Manifest(version)
	return ok
}

// Tag returns the version a dist-tag points at.
func (p *Packument) Tag(tag string) (string, bool) {
	v, ok := p.DistTags[tag]
	return v, ok && v != ""
}

// VersionList returns all published versions in no particular order.
func (p *Packument) VersionList() []string {
	versions := make([]string, 0, len(p.Versions))
	for v := range p.Versions {
		versions = append(versions, v)
	}
	return versions
}

// IsDeprecated reports whether the manifest carries a deprecation notice.
// An empty string or false means not deprecated.
func (m *Manifest) IsDeprecated() bool {
	raw := bytes.TrimSpace(m.Deprecated)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false
		}
		return s != ""
	case 't':
		return bytes.Equal(raw, []byte("true"))
	default:
		return false
	}
}

// IsOptionalPeer reports whether peer is marked optional in peerDependenciesMeta.
func (m *Manifest) IsOptionalPeer(peer string) bool {
	meta, ok := m.PeerDependenciesMeta[peer]
	return ok && meta.Optional
}
