package ngupdate

import (
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-ngupdate/registry"
)

// Version tokens with special meaning in a request set.
const (
	// TagLatest resolves to the "latest" dist-tag.
	TagLatest = "latest"

	// TagNext requests the most recent release, including pre-releases.
	// Registries without a "next" dist-tag resolve it to "latest".
	TagNext = "next"
)

// VersionRange is a semver range or version that parsed successfully.
// Construct it with NewVersionRange.
type VersionRange string

// NewVersionRange validates s as a semver range. The empty string is the
// range that admits every version.
func NewVersionRange(s string) (VersionRange, error) {
	s = strings.TrimSpace(s)
	if _, err := parseRange(s); err != nil {
		return "", fmt.Errorf("invalid version range %q: %w", s, err)
	}
	if s == "" {
		s = "*"
	}
	return VersionRange(s), nil
}

func (r VersionRange) String() string {
	return string(r)
}

// Satisfies reports whether version lies within the range.
func (r VersionRange) Satisfies(version string, includePrerelease bool) bool {
	return satisfies(version, string(r), includePrerelease)
}

// PackageVersionInfo is one resolved version stance of a package.
type PackageVersionInfo struct {
	// Version is the exact version.
	Version string `json:"version"`

	// Manifest is the package.json of Version.
	Manifest *registry.Manifest `json:"-"`

	// UpdateMetadata is the normalized ng-update block of Manifest.
	UpdateMetadata UpdateMetadata `json:"update_metadata"`
}

// PackageInfo is everything known about one package during an analysis.
// Values are immutable once returned.
type PackageInfo struct {
	// Name is the package name.
	Name string `json:"name"`

	// Metadata is the registry packument.
	Metadata *registry.Packument `json:"-"`

	// Installed is the version currently installed, or the best version
	// matching PackageJSONRange when nothing is installed.
	Installed PackageVersionInfo `json:"installed"`

	// Target is the version to update to. Nil when no update is needed.
	Target *PackageVersionInfo `json:"target,omitempty"`

	// PackageJSONRange is the range declared in the workspace package.json.
	PackageJSONRange string `json:"package_json_range"`
}

// HasUpdate reports whether the package moves to a new version.
func (p *PackageInfo) HasUpdate() bool {
	return p.Target != nil
}

// Effective returns the target stance when there is one, else the installed one.
func (p *PackageInfo) Effective() *PackageVersionInfo {
	if p.Target != nil {
		return p.Target
	}
	return &p.Installed
}

// GroupName returns the package group name of the effective version,
// falling back to the package name.
func (p *PackageInfo) GroupName() string {
	if name := p.Effective().UpdateMetadata.PackageGroupName; name != "" {
		return name
	}
	return p.Name
}

// ViolationKind distinguishes forward from reverse peer checks.
type ViolationKind int

const (
	// ForwardViolation: an updated package requires a peer version that will not be installed.
	ForwardViolation ViolationKind = iota

	// ReverseViolation: an installed package does not accept the new version of its peer.
	ReverseViolation
)

func (k ViolationKind) String() string {
	switch k {
	case ForwardViolation:
		return "forward"
	case ReverseViolation:
		return "reverse"
	default:
		return fmt.Sprintf("ViolationKind(%d)", int(k))
	}
}

// PeerViolation is one unsatisfied peer dependency.
type PeerViolation struct {
	Kind ViolationKind `json:"kind"`

	// Dependent declares the peer dependency.
	Dependent string `json:"dependent"`

	// Dependency is the package the range applies to.
	Dependency string `json:"dependency"`

	// Range is the declared peer range.
	Range string `json:"range"`

	// ExtendedRange is Range after compatibility widening. Equal to Range
	// when no widening applied.
	ExtendedRange string `json:"extended_range,omitempty"`

	// Version is the version of Dependency that would be installed.
	Version string `json:"version"`
}

func (v PeerViolation) Error() string {
	extended := ""
	if v.ExtendedRange != "" && v.ExtendedRange != v.Range {
		extended = " (extended)"
	}
	return fmt.Sprintf("package %q has an incompatible peer dependency to %q (requires %q%s, would install %q)",
		v.Dependent, v.Dependency, v.Range, extended, v.Version)
}

// UnresolvedPackage is a package whose registry metadata could not be fetched.
type UnresolvedPackage struct {
	Name string `json:"name"`
	Err  error  `json:"-"`
}

// Result is the outcome of one analysis.
type Result struct {
	// Packages maps every package with registry metadata to its resolved info.
	Packages map[string]*PackageInfo `json:"packages"`

	// Requested is the request set after group and peer expansion.
	Requested map[string]string `json:"requested"`

	// Unresolved lists packages whose registry fetch failed, sorted by name.
	Unresolved []UnresolvedPackage `json:"unresolved,omitempty"`

	// Violations lists peer dependency violations. Only non-empty in the
	// returned Result when force was set.
	Violations []PeerViolation `json:"violations,omitempty"`

	// Warnings contains non-fatal issues such as malformed package groups
	// and missing peers.
	Warnings []string `json:"warnings,omitempty"`
}
