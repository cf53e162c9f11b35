package ngupdate

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for package resolution failures.
var (
	// ErrNotInWorkspace indicates the package is not declared in the workspace package.json.
	ErrNotInWorkspace = errors.New("package not declared in workspace")

	// ErrNoInstalledVersion indicates neither node_modules nor the registry yields an installed version.
	ErrNoInstalledVersion = errors.New("could not determine installed version")

	// ErrPackageNotFound indicates the registry does not know the package.
	ErrPackageNotFound = errors.New("package not found")

	// ErrVersionNotFound indicates no published version matches the request.
	ErrVersionNotFound = errors.New("version not found")
)

// PackageError reports a failure to resolve one package.
// Such failures abort the analysis since the package graph cannot be completed.
type PackageError struct {
	Name string
	Err  error
}

func (e *PackageError) Error() string {
	return fmt.Sprintf("package %s: %v", e.Name, e.Err)
}

func (e *PackageError) Unwrap() error {
	return e.Err
}

// PeerConflictError is returned when validation finds peer dependency
// violations and force is not set. It lists every violation found.
type PeerConflictError struct {
	Violations []PeerViolation
}

// forceHint follows every peer conflict message.
const forceHint = "Peer dependency warnings when installing dependencies means that those dependencies might not work correctly together.\nUse force to ignore the incompatibilities."

func (e *PeerConflictError) Error() string {
	var sb strings.Builder
	if len(e.Violations) == 1 {
		sb.WriteString("incompatible peer dependencies found: ")
		sb.WriteString(e.Violations[0].Error())
	} else {
		fmt.Fprintf(&sb, "%d incompatible peer dependencies found:", len(e.Violations))
		for _, v := range e.Violations {
			sb.WriteString("\n  - ")
			sb.WriteString(v.Error())
		}
	}
	sb.WriteString("\n")
	sb.WriteString(forceHint)
	return sb.String()
}

// Unwrap returns each violation so callers can use errors.As on them.
func (e *PeerConflictError) Unwrap() []error {
	errs := make([]error, len(e.Violations))
	for i, v := range e.Violations {
		errs[i] = v
	}
	return errs
}
