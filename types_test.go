package ngupdate

import (
	"errors"
	"strings"
	"testing"
)

func TestNewVersionRange(t *testing.T) {
	tests := []struct {
		input   string
		want    VersionRange
		wantErr bool
	}{
		{"^16.0.0", "^16.0.0", false},
		{" ~1.2.3 ", "~1.2.3", false},
		{"", "*", false},
		{">=1.0.0 <2.0.0 || 3.x", ">=1.0.0 <2.0.0 || 3.x", false},
		{"not a range", "", true},
		{"latest", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NewVersionRange(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewVersionRange(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NewVersionRange(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestVersionRange_Satisfies(t *testing.T) {
	r, err := NewVersionRange("^2.0.0")
	if err != nil {
		t.Fatal(err)
	}
	if !r.Satisfies("2.3.0", false) {
		t.Error("2.3.0 should satisfy ^2.0.0")
	}
	if r.Satisfies("3.0.0", false) {
		t.Error("3.0.0 should not satisfy ^2.0.0")
	}
	if r.Satisfies("2.4.0-beta.1", false) {
		t.Error("pre-release should not satisfy without includePrerelease")
	}
	if !r.Satisfies("2.4.0-beta.1", true) {
		t.Error("pre-release should satisfy with includePrerelease")
	}
}

func TestPackageInfo(t *testing.T) {
	info := &PackageInfo{
		Name:      "@angular/forms",
		Installed: PackageVersionInfo{Version: "16.0.0"},
	}
	if info.HasUpdate() {
		t.Error("HasUpdate() = true without target")
	}
	if got := info.Effective().Version; got != "16.0.0" {
		t.Errorf("Effective() = %s, want installed 16.0.0", got)
	}
	if got := info.GroupName(); got != "@angular/forms" {
		t.Errorf("GroupName() = %s, want package name", got)
	}

	info.Target = &PackageVersionInfo{
		Version:        "17.0.0",
		UpdateMetadata: UpdateMetadata{PackageGroupName: "@angular/core"},
	}
	if !info.HasUpdate() {
		t.Error("HasUpdate() = false with target")
	}
	if got := info.Effective().Version; got != "17.0.0" {
		t.Errorf("Effective() = %s, want target 17.0.0", got)
	}
	if got := info.GroupName(); got != "@angular/core" {
		t.Errorf("GroupName() = %s, want @angular/core", got)
	}
}

func TestViolationKind_String(t *testing.T) {
	tests := map[ViolationKind]string{
		ForwardViolation:  "forward",
		ReverseViolation:  "reverse",
		ViolationKind(42): "ViolationKind(42)",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestPeerViolation_Error(t *testing.T) {
	v := PeerViolation{
		Kind:       ForwardViolation,
		Dependent:  "x",
		Dependency: "d",
		Range:      "^2.0.0",
		Version:    "3.0.0",
	}
	want := `package "x" has an incompatible peer dependency to "d" (requires "^2.0.0", would install "3.0.0")`
	if got := v.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	v.ExtendedRange = "^2.0.0 || ^3.0.0-alpha.0"
	if got := v.Error(); !strings.Contains(got, `(requires "^2.0.0" (extended), would install "3.0.0")`) {
		t.Errorf("Error() = %q, want extended marker", got)
	}
}

func TestPeerConflictError(t *testing.T) {
	one := PeerViolation{Kind: ForwardViolation, Dependent: "x", Dependency: "d", Range: "^2.0.0", Version: "3.0.0"}
	two := PeerViolation{Kind: ReverseViolation, Dependent: "y", Dependency: "d", Range: "^1.0.0", ExtendedRange: "^1.0.0", Version: "3.0.0"}

	single := &PeerConflictError{Violations: []PeerViolation{one}}
	if got, want := single.Error(), "incompatible peer dependencies found: "+one.Error()+"\n"+forceHint; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !strings.HasSuffix(single.Error(), "Use force to ignore the incompatibilities.") {
		t.Errorf("single violation message lacks the force hint: %q", single.Error())
	}

	multi := &PeerConflictError{Violations: []PeerViolation{one, two}}
	msg := multi.Error()
	for _, want := range []string{"2 incompatible peer dependencies found:", one.Error(), two.Error(), "force"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}

	var v PeerViolation
	if !errors.As(multi, &v) || v != one {
		t.Errorf("errors.As() = %+v, want first violation", v)
	}
}

func TestPackageError(t *testing.T) {
	err := &PackageError{Name: "x", Err: ErrNotInWorkspace}
	if got, want := err.Error(), "package x: package not declared in workspace"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrNotInWorkspace) {
		t.Error("errors.Is(err, ErrNotInWorkspace) = false")
	}
}
