package ngupdate

import (
	"context"

	"github.com/albertocavalcante/go-ngupdate/compat"
)

// peerValidator checks peer dependency constraints over a resolved info map.
type peerValidator struct {
	infos      map[string]*PackageInfo
	compat     *compat.Table
	ignored    map[string]bool
	prerelease bool
	warn       func(format string, args ...any)
	debug      func(ctx context.Context, msg string, args ...any)
}

// validate checks every package that moves to a new version, in name order.
// It never stops early: all violations are returned.
func (v *peerValidator) validate(ctx context.Context) []PeerViolation {
	var violations []PeerViolation
	for _, name := range sortedKeys(v.infos) {
		info := v.infos[name]
		if info.Target == nil {
			continue
		}
		v.debug(ctx, "validating update", "package", name, "version", info.Target.Version)
		violations = append(violations, v.checkForward(ctx, info)...)
		violations = append(violations, v.checkReverse(ctx, info)...)
	}
	return violations
}

// checkForward tests the peer requirements of info's target against the
// versions that will be installed.
func (v *peerValidator) checkForward(ctx context.Context, info *PackageInfo) []PeerViolation {
	m := info.Target.Manifest
	if m == nil {
		return nil
	}

	var violations []PeerViolation
	for _, peer := range sortedKeys(m.PeerDependencies) {
		rng := m.PeerDependencies[peer]
		peerInfo, ok := v.infos[peer]
		if !ok {
			if !m.IsOptionalPeer(peer) {
				v.warn("package %q has a missing peer dependency of %q @ %q", info.Name, peer, rng)
			}
			continue
		}

		version := peerInfo.Effective().Version
		v.debug(ctx, "checking forward peer", "package", info.Name, "peer", peer, "range", rng, "version", version)
		if !satisfies(version, rng, v.prerelease) {
			violations = append(violations, PeerViolation{
				Kind:       ForwardViolation,
				Dependent:  info.Name,
				Dependency: peer,
				Range:      rng,
				Version:    version,
			})
		}
	}
	return violations
}

// checkReverse tests info's new version against the peer ranges every other
// package declares on it. Ranges are widened through the compatibility
// table, keyed by info's group name.
func (v *peerValidator) checkReverse(ctx context.Context, info *PackageInfo) []PeerViolation {
	version := info.Target.Version
	key := info.GroupName()

	var violations []PeerViolation
	for _, dependent := range sortedKeys(v.infos) {
		if dependent == info.Name || v.ignored[dependent] {
			continue
		}
		m := v.infos[dependent].Effective().Manifest
		if m == nil {
			continue
		}
		rng, ok := m.PeerDependencies[info.Name]
		if !ok {
			continue
		}

		extended := v.compat.Extend(key, rng)
		v.debug(ctx, "checking reverse peer", "package", info.Name, "dependent", dependent, "range", extended, "version", version)
		if !satisfies(version, extended, v.prerelease) {
			violations = append(violations, PeerViolation{
				Kind:          ReverseViolation,
				Dependent:     dependent,
				Dependency:    info.Name,
				Range:         rng,
				ExtendedRange: extended,
				Version:       version,
			})
		}
	}
	return violations
}
