package ngupdate

import (
	"encoding/json"
	"testing"

	"github.com/albertocavalcante/go-ngupdate/registry"
)

type manifestOpt func(*registry.Manifest)

// peers sets peer dependencies from name, range pairs.
func peers(kv ...string) manifestOpt {
	return func(m *registry.Manifest) {
		if m.PeerDependencies == nil {
			m.PeerDependencies = make(map[string]string)
		}
		for i := 0; i+1 < len(kv); i += 2 {
			m.PeerDependencies[kv[i]] = kv[i+1]
		}
	}
}

func optionalPeer(name string) manifestOpt {
	return func(m *registry.Manifest) {
		if m.PeerDependenciesMeta == nil {
			m.PeerDependenciesMeta = make(map[string]registry.PeerDependencyMeta)
		}
		m.PeerDependenciesMeta[name] = registry.PeerDependencyMeta{Optional: true}
	}
}

func ngUpdate(raw string) manifestOpt {
	return func(m *registry.Manifest) {
		m.NgUpdate = json.RawMessage(raw)
	}
}

func deprecated(msg string) manifestOpt {
	return func(m *registry.Manifest) {
		m.Deprecated, _ = json.Marshal(msg)
	}
}

func testManifest(name, version string, opts ...manifestOpt) *registry.Manifest {
	m := &registry.Manifest{Name: name, Version: version}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// testPackument builds a packument whose "latest" tag points at latest.
func testPackument(name, latest string, manifests ...*registry.Manifest) *registry.Packument {
	p := &registry.Packument{
		Name:     name,
		DistTags: map[string]string{},
		Versions: make(map[string]*registry.Manifest, len(manifests)),
	}
	if latest != "" {
		p.DistTags[TagLatest] = latest
	}
	for _, m := range manifests {
		p.Versions[m.Version] = m
	}
	return p
}

// install marks the given version of p as installed, with its registry manifest.
func install(t *testing.T, mp *MemoryProvider, p *registry.Packument, version string) {
	t.Helper()
	m, ok := p.Manifest(version)
	if !ok {
		t.Fatalf("%s has no version %s", p.Name, version)
	}
	mp.AddPackument(p)
	mp.SetInstalled(p.Name, version, m)
}

func countKind(violations []PeerViolation, kind ViolationKind) int {
	n := 0
	for _, v := range violations {
		if v.Kind == kind {
			n++
		}
	}
	return n
}

func containsWarning(warnings []string, want string) bool {
	for _, w := range warnings {
		if w == want {
			return true
		}
	}
	return false
}
