package ngupdate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/albertocavalcante/go-ngupdate/compat"
	"github.com/albertocavalcante/go-ngupdate/registry"
)

// PolicyFile is the policy file name looked up in a project directory.
const PolicyFile = ".ngupdate.yaml"

// Policy is project configuration for peer dependency validation.
//
//	ignoredDependents:
//	  - "@nrwl/angular"
//	compat:
//	  "@angular/core": 20
//	  "@ngrx/store": 0
type Policy struct {
	// IgnoredDependents are packages whose peer ranges are not checked by
	// the reverse check, in addition to DefaultIgnoredDependents.
	IgnoredDependents []string `yaml:"ignoredDependents"`

	// Compat maps package group names that guarantee compatibility with
	// their next major to the number of pre-release minors admitted.
	// Zero selects compat.DefaultPrereleaseMinors.
	Compat map[string]int `yaml:"compat"`
}

// LoadPolicy parses policy YAML. Unknown keys are rejected. Empty input is
// an empty policy.
func LoadPolicy(data []byte) (*Policy, error) {
	var p Policy
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadPolicyFile reads and parses a policy file. A missing file is reported
// with an error matching fs.ErrNotExist.
func LoadPolicyFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	p, err := LoadPolicy(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Validate checks package names and minor counts.
func (p *Policy) Validate() error {
	var errs []error
	for _, name := range p.IgnoredDependents {
		if !registry.ValidName(name) {
			errs = append(errs, fmt.Errorf("ignoredDependents: invalid package name %q", name))
		}
	}
	for _, name := range sortedKeys(p.Compat) {
		if !registry.ValidName(name) {
			errs = append(errs, fmt.Errorf("compat: invalid package name %q", name))
		}
		if minors := p.Compat[name]; minors < 0 || minors > compat.MaxMajor {
			errs = append(errs, fmt.Errorf("compat: %s: minors must be between 0 and %d, got %d", name, compat.MaxMajor, minors))
		}
	}
	return errors.Join(errs...)
}

// apply returns t extended with the policy's compatibility entries.
func (p *Policy) apply(t *compat.Table) *compat.Table {
	for _, name := range sortedKeys(p.Compat) {
		t = t.With(name, compat.MajorCompatGuarantee(p.Compat[name]))
	}
	return t
}
