package compat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const (
	// DefaultPrereleaseMinors is the number of minor lines of the next major
	// whose alpha pre-releases are admitted by MajorCompatGuarantee.
	DefaultPrereleaseMinors = 20

	// MaxMajor caps the search for the first major above a range. A range
	// admitting this major is treated as unbounded and returned unchanged.
	MaxMajor = 99
)

// Transform widens a peer dependency range. A Transform never fails: input it
// cannot interpret is returned verbatim.
type Transform func(rng string) string

// MajorCompatGuarantee returns a Transform for packages where major N is
// compatible with major N+1. The returned range admits everything the input
// admits plus "^{N+1}.{minor}.0-alpha.0" for the first minors minor lines.
func MajorCompatGuarantee(minors int) Transform {
	if minors <= 0 {
		minors = DefaultPrereleaseMinors
	}
	return func(rng string) string {
		if _, err := semver.NewConstraint(rng); err != nil {
			return rng
		}

		major, ok := NextMajor(rng)
		if !ok {
			return rng
		}

		var b strings.Builder
		b.WriteString(rng)
		for minor := range minors {
			fmt.Fprintf(&b, " || ^%d.%d.0-alpha.0", major, minor)
		}

		widened := b.String()
		if _, err := semver.NewConstraint(widened); err != nil {
			return rng
		}
		return widened
	}
}

// versionLiteral finds version-like tokens inside a range expression.
var versionLiteral = regexp.MustCompile(`\d+(?:\.\d+){0,2}(?:-[0-9A-Za-z.\-]+)?`)

// NextMajor returns the first major M >= 1 such that M.0.0 lies above every
// version admitted by rng. ok is false when rng is not a valid range or when
// M would reach MaxMajor, which means the range is effectively unbounded.
func NextMajor(rng string) (major uint64, ok bool) {
	c, err := semver.NewConstraint(rng)
	if err != nil {
		return 0, false
	}
	c.IncludePrerelease = true

	highest := int64(-1)
	consider := func(v *semver.Version) {
		if c.Check(v) && int64(v.Major()) > highest {
			highest = int64(v.Major())
		}
	}

	for k := range uint64(MaxMajor + 1) {
		consider(semver.New(k, 0, 0, "", ""))
	}

	// Bounded ranges such as ">=1.2.3 <1.2.9" admit none of the k.0.0 probes,
	// so the literals they name (and their successors) are probed as well.
	literalMax := int64(-1)
	for _, lit := range versionLiteral.FindAllString(rng, -1) {
		v, err := semver.NewVersion(lit)
		if err != nil {
			continue
		}
		if int64(v.Major()) > literalMax {
			literalMax = int64(v.Major())
		}
		consider(v)
		next := v.IncPatch()
		consider(&next)
		next = v.IncMinor()
		consider(&next)
	}

	if highest < 0 {
		// Nothing probed satisfies the range. Its literals still bound it.
		highest = literalMax
	}

	m := highest + 1
	if m < 1 {
		m = 1
	}
	if m >= MaxMajor {
		return 0, false
	}
	return uint64(m), true
}
