package ngupdate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const testWorkspace = `{
  "name": "my-app",
  "version": "0.0.0",
  "dependencies": {
    "@angular/core": "^16.2.0",
    "rxjs": "~7.8.0",
    "local-lib": "file:../local-lib",
    "forked": "github:me/forked#main",
    "shorthand": "me/shorthand",
    "aliased": "npm:other@^1.0.0",
    "tarball": "https://example.com/pkg.tgz"
  },
  "devDependencies": {
    "@angular/core": "^16.0.0",
    "typescript": "~5.1.0",
    "sibling": "workspace:*"
  },
  "peerDependencies": {
    "typescript": ">=5.0.0",
    "zone.js": "~0.13.0"
  }
}`

func TestParseWorkspace(t *testing.T) {
	ws, err := ParseWorkspace([]byte(testWorkspace))
	if err != nil {
		t.Fatalf("ParseWorkspace() error = %v", err)
	}
	if ws.Name != "my-app" {
		t.Errorf("Name = %q, want my-app", ws.Name)
	}

	deps, warnings := ws.AllDependencies()
	want := map[string]string{
		"@angular/core": "^16.2.0",
		"rxjs":          "~7.8.0",
		"typescript":    "~5.1.0",
		"zone.js":       "~0.13.0",
	}
	if diff := cmp.Diff(want, deps); diff != "" {
		t.Errorf("AllDependencies() mismatch (-want +got):\n%s", diff)
	}

	wantWarnings := []string{
		"package aliased is not installed from the registry (alias: npm:other@^1.0.0); skipping",
		"package forked is not installed from the registry (git: github:me/forked#main); skipping",
		"package local-lib is not installed from the registry (file: file:../local-lib); skipping",
		"package shorthand is not installed from the registry (GitHub: me/shorthand); skipping",
		"package sibling is not installed from the registry (workspace: workspace:*); skipping",
		"package tarball is not installed from the registry (URL: https://example.com/pkg.tgz); skipping",
	}
	if diff := cmp.Diff(wantWarnings, warnings); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestParseWorkspace_Invalid(t *testing.T) {
	if _, err := ParseWorkspace([]byte(`{"dependencies": [`)); err == nil {
		t.Error("ParseWorkspace() error = nil, want error")
	}
}

func TestParseWorkspaceDir(t *testing.T) {
	dir := t.TempDir()
	if _, err := ParseWorkspaceDir(dir); err == nil {
		t.Error("ParseWorkspaceDir() on empty dir error = nil, want error")
	}

	if err := os.WriteFile(filepath.Join(dir, WorkspaceFile), []byte(testWorkspace), 0o644); err != nil {
		t.Fatal(err)
	}
	ws, err := ParseWorkspaceDir(dir)
	if err != nil {
		t.Fatalf("ParseWorkspaceDir() error = %v", err)
	}
	if got := ws.Dependencies["rxjs"]; got != "~7.8.0" {
		t.Errorf("rxjs = %q, want ~7.8.0", got)
	}
}

func TestNonRegistryKind(t *testing.T) {
	tests := map[string]string{
		"^1.0.0":                   "",
		"latest":                   "",
		">=1.0.0 <2.0.0":           "",
		"*":                        "",
		"file:../x":                "file",
		"link:../x":                "link",
		"workspace:^":              "workspace",
		"npm:react@18":             "alias",
		"git+ssh://git@host/r.git": "git",
		"git://host/r.git":         "git",
		"gitlab:me/r":              "git",
		"http://example.com/x.tgz": "URL",
		"./vendor/x":               "path",
		"/abs/x":                   "path",
		"user/repo":                "GitHub",
	}
	for spec, want := range tests {
		if got := nonRegistryKind(spec); got != want {
			t.Errorf("nonRegistryKind(%q) = %q, want %q", spec, got, want)
		}
	}
}

func TestParsePackageSpecs(t *testing.T) {
	workspace := map[string]string{
		"@angular/core": "^16.0.0",
		"@angular/cli":  "^16.0.0",
		"rxjs":          "~7.8.0",
	}

	tests := []struct {
		name         string
		specs        []string
		prerelease   bool
		want         map[string]string
		wantWarnings []string
		wantErr      bool
	}{
		{
			name:  "scoped with version",
			specs: []string{"@angular/core@17.0.0", "@angular/cli@^17"},
			want:  map[string]string{"@angular/core": "17.0.0", "@angular/cli": "^17"},
		},
		{
			name:  "defaults to latest",
			specs: []string{"@angular/core", "rxjs"},
			want:  map[string]string{"@angular/core": "latest", "rxjs": "latest"},
		},
		{
			name:       "defaults to next in prerelease mode",
			specs:      []string{"@angular/core"},
			prerelease: true,
			want:       map[string]string{"@angular/core": "next"},
		},
		{
			name:         "unknown packages are skipped",
			specs:        []string{"lodash@4", "rxjs@next"},
			want:         map[string]string{"rxjs": "next"},
			wantWarnings: []string{"package not installed: lodash; skipping"},
		},
		{
			name:    "invalid name",
			specs:   []string{"Not A Package"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings, err := ParsePackageSpecs(tt.specs, workspace, tt.prerelease)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePackageSpecs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParsePackageSpecs() mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantWarnings, warnings); diff != "" {
				t.Errorf("warnings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
