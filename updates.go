package ngupdate

import (
	"sort"

	"github.com/Masterminds/semver/v3"
)

// PackageUpdate is one package that moves to a new version.
type PackageUpdate struct {
	// Name is the package name.
	Name string `json:"name"`

	// From is the installed version.
	From string `json:"from"`

	// To is the target version.
	To string `json:"to"`

	// Migrations points at the migration collection shipped with the target
	// version, if any.
	Migrations string `json:"migrations,omitempty"`
}

// IsMajor reports whether the update crosses a major version.
func (u PackageUpdate) IsMajor() bool {
	from, err := semver.NewVersion(u.From)
	if err != nil {
		return false
	}
	to, err := semver.NewVersion(u.To)
	if err != nil {
		return false
	}
	return to.Major() > from.Major()
}

// Updates lists the packages that move to a new version, sorted by name.
//
// Example usage:
//
//	result, _ := Analyze(ctx, requested, workspace)
//	for _, u := range result.Updates() {
//	    fmt.Printf("%s %s -> %s\n", u.Name, u.From, u.To)
//	}
func (r *Result) Updates() []PackageUpdate {
	if r == nil {
		return nil
	}
	var updates []PackageUpdate
	for _, info := range r.Packages {
		if info.Target == nil {
			continue
		}
		updates = append(updates, PackageUpdate{
			Name:       info.Name,
			From:       info.Installed.Version,
			To:         info.Target.Version,
			Migrations: info.Target.UpdateMetadata.Migrations,
		})
	}
	sort.Slice(updates, func(i, j int) bool {
		return updates[i].Name < updates[j].Name
	})
	return updates
}

// HasViolations reports whether forced analysis found peer dependency violations.
func (r *Result) HasViolations() bool {
	return r != nil && len(r.Violations) > 0
}
