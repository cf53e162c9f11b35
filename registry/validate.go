package registry

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// FieldError represents a validation failure for a specific field.
type FieldError struct {
	Field   string // Field path (e.g., "versions[\"1.0.0\"].version")
	Message string // Human-readable error message
}

func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors struct {
	Errors []*FieldError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&b, "\n  - %s", err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying errors for errors.Is/As compatibility.
func (e *ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Add appends a validation error.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &FieldError{Field: field, Message: message})
}

// HasErrors returns true if any errors were collected.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns nil if no errors, otherwise returns self.
func (e *ValidationErrors) ToError() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// maxNameLength is npm's limit on package name length.
const maxNameLength = 214

// packageNamePattern accepts current and legacy npm names: an optional scope,
// no leading dot or underscore, no whitespace or URL-unsafe characters.
var packageNamePattern = regexp.MustCompile(`^(?:@[A-Za-z0-9\-~][A-Za-z0-9\-._~]*/)?[A-Za-z0-9\-~][A-Za-z0-9\-._~]*$`)

// ValidName reports whether name is an acceptable registry package name.
func ValidName(name string) bool {
	return name != "" && len(name) <= maxNameLength && packageNamePattern.MatchString(name)
}

// Validate checks the fields a packument cannot be used without: a valid
// name and a versions object. Inconsistent entries are Prune's concern.
// Returns nil if valid, or ValidationErrors containing all issues found.
func (p *Packument) Validate() error {
	var errs ValidationErrors

	if p.Name == "" {
		errs.Add("name", "required field is missing")
	} else if !ValidName(p.Name) {
		errs.Add("name", fmt.Sprintf("invalid package name %q", p.Name))
	}
	if p.Versions == nil {
		errs.Add("versions", "required field is missing")
	}

	return errs.ToError()
}

// Prune removes version entries that disagree with their key or with the
// packument, then dist-tags left pointing at unpublished versions. It returns
// one message per dropped entry, in key order.
func (p *Packument) Prune() []string {
	var dropped []string
	drop := func(field, reason string) {
		dropped = append(dropped, fmt.Sprintf("dropped %s: %s", field, reason))
	}

	for _, v := range sortedKeys(p.Versions) {
		field := fmt.Sprintf("versions[%q]", v)
		m := p.Versions[v]
		switch {
		case m == nil:
			drop(field, "manifest is null")
		case !isSemver(v):
			drop(field, "not a valid semantic version")
		case m.Version != v:
			drop(field+".version", fmt.Sprintf("expected %q, got %q", v, m.Version))
		case m.Name != "" && m.Name != p.Name:
			drop(field+".name", fmt.Sprintf("expected %q, got %q", p.Name, m.Name))
		default:
			continue
		}
		delete(p.Versions, v)
	}

	for _, tag := range sortedKeys(p.DistTags) {
		if v := p.DistTags[tag]; !p.HasVersion(v) {
			drop(fmt.Sprintf("dist-tags[%q]", tag), fmt.Sprintf("points at unpublished version %q", v))
			delete(p.DistTags, tag)
		}
	}

	return dropped
}

func isSemver(v string) bool {
	_, err := semver.NewVersion(v)
	return err == nil
}

// Validate checks the fields every manifest must carry.
// Returns nil if valid, or ValidationErrors containing all issues found.
func (m *Manifest) Validate() error {
	var errs ValidationErrors

	if m.Name == "" {
		errs.Add("name", "required field is missing")
	}
	if m.Version == "" {
		errs.Add("version", "required field is missing")
	} else if !isSemver(m.Version) {
		errs.Add("version", fmt.Sprintf("%q is not a valid semantic version", m.Version))
	}

	depFields := []struct {
		field string
		deps  map[string]string
	}{
		{"dependencies", m.Dependencies},
		{"devDependencies", m.DevDependencies},
		{"peerDependencies", m.PeerDependencies},
	}
	for _, f := range depFields {
		if _, ok := f.deps[""]; ok {
			errs.Add(f.field, "contains an empty package name")
		}
	}

	return errs.ToError()
}

// IsValidationError reports whether err came from schema validation.
func IsValidationError(err error) bool {
	var verrs *ValidationErrors
	var ferr *FieldError
	return errors.As(err, &verrs) || errors.As(err, &ferr)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
