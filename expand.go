package ngupdate

import (
	"context"
)

// expand grows requested until neither package groups nor unmet peer
// dependencies add anything. Packages are visited in name order so the
// outcome does not depend on map iteration.
//
// The loop terminates: every pass that does work adds at least one name and
// only names declared in the workspace or in a manifest are ever added.
func (a *analysis) expand(ctx context.Context) error {
	names := sortedKeys(a.universe)
	for pass := 1; ; pass++ {
		before := len(a.requested)
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, ok := a.requested[name]; !ok {
				continue
			}
			if err := a.addPackageGroup(ctx, name); err != nil {
				return err
			}
			if err := a.addPeerDependencies(ctx, name); err != nil {
				return err
			}
		}
		a.cfg.debug(ctx, "expansion pass", "pass", pass, "requested", len(a.requested))
		if len(a.requested) == before {
			return nil
		}
	}
}

// effectiveVersion is the version whose manifest drives expansion for a
// requested package: the target when there is one, else the token itself
// (resolved through dist-tags).
func (a *analysis) effectiveVersion(ctx context.Context, name string) (string, error) {
	token := a.requested[name]
	info, err := a.resolver.resolve(ctx, name, token)
	if err != nil {
		return "", err
	}
	if info.Target != nil {
		return info.Target.Version, nil
	}
	if v, ok := info.Metadata.Tag(token); ok {
		return v, nil
	}
	return token, nil
}

func (a *analysis) addPackageGroup(ctx context.Context, name string) error {
	version, err := a.effectiveVersion(ctx, name)
	if err != nil {
		return err
	}
	m, ok := a.universe[name].Manifest(version)
	if !ok {
		return nil
	}

	token := a.requested[name]
	var members []string
	var versions map[string]string
	switch g := parsePackageGroup(m).(type) {
	case listGroup:
		members = g.members
	case mapGroup:
		members = g.members
		versions = g.versions
	case malformedGroup:
		a.warn("packageGroup metadata of package %s is malformed (%s); ignoring", name, g.reason)
		return nil
	default:
		return nil
	}

	for _, member := range members {
		if _, declared := a.workspace[member]; !declared {
			continue
		}
		if _, ok := a.requested[member]; ok {
			continue
		}
		v := token
		if versions != nil {
			v = versions[member]
		}
		a.cfg.debug(ctx, "adding package group member", "package", member, "group", name, "token", v)
		a.requested[member] = v
	}
	return nil
}

func (a *analysis) addPeerDependencies(ctx context.Context, name string) error {
	version, err := a.effectiveVersion(ctx, name)
	if err != nil {
		return err
	}
	m, ok := a.universe[name].Manifest(version)
	if !ok {
		return nil
	}

	for _, peer := range sortedKeys(m.PeerDependencies) {
		if _, ok := a.requested[peer]; ok {
			continue
		}
		rng := m.PeerDependencies[peer]
		if _, known := a.universe[peer]; known {
			installed, err := a.resolver.resolveInstalled(ctx, peer)
			if err != nil {
				return err
			}
			if satisfies(installed.Version, rng, false) {
				continue
			}
		}
		if rng == "" {
			rng = "*"
		}
		a.cfg.debug(ctx, "adding peer dependency", "package", peer, "dependent", name, "range", rng)
		a.requested[peer] = rng
	}
	return nil
}
