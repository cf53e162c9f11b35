package ngupdate

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/albertocavalcante/go-ngupdate/registry"
)

// parseRange parses a semver range. The empty range admits everything.
func parseRange(rng string) (*semver.Constraints, error) {
	rng = strings.TrimSpace(rng)
	if rng == "" {
		rng = "*"
	}
	return semver.NewConstraint(rng)
}

// satisfies reports whether version lies within rng. Unparseable versions or
// ranges never satisfy.
func satisfies(version, rng string, includePrerelease bool) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	c, err := parseRange(rng)
	if err != nil {
		return false
	}
	c.IncludePrerelease = includePrerelease
	return c.Check(v)
}

// greaterThan reports whether a > b. Unparseable versions compare as not greater.
func greaterThan(a, b string) bool {
	va, err := semver.NewVersion(a)
	if err != nil {
		return false
	}
	vb, err := semver.NewVersion(b)
	if err != nil {
		return false
	}
	return va.GreaterThan(vb)
}

// maxSatisfying returns the highest published version within rng.
// Deprecated versions are only chosen when no other version matches.
func maxSatisfying(p *registry.Packument, rng string) (string, bool) {
	c, err := parseRange(rng)
	if err != nil {
		return "", false
	}

	var best, bestDeprecated *semver.Version
	for raw, m := range p.Versions {
		if m == nil {
			continue
		}
		v, err := semver.NewVersion(raw)
		if err != nil || !c.Check(v) {
			continue
		}
		if m.IsDeprecated() {
			if bestDeprecated == nil || v.GreaterThan(bestDeprecated) {
				bestDeprecated = v
			}
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}

	switch {
	case best != nil:
		return best.Original(), true
	case bestDeprecated != nil:
		return bestDeprecated.Original(), true
	default:
		return "", false
	}
}
