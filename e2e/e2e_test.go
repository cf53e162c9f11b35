package e2e

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ngupdate "github.com/albertocavalcante/go-ngupdate"
)

// angularWorkspace is a minimal Angular 16 project manifest.
const angularWorkspace = `{
  "name": "e2e-app",
  "version": "0.0.0",
  "dependencies": {
    "@angular/core": "^16.0.0",
    "@angular/common": "^16.0.0",
    "@angular/compiler": "^16.0.0",
    "@angular/platform-browser": "^16.0.0",
    "rxjs": "~7.8.0",
    "zone.js": "~0.13.0",
    "tslib": "^2.3.0"
  }
}`

// npmView runs `npm view <pkg> <field> --json` and decodes a string result.
func npmView(t *testing.T, pkg, field string) string {
	t.Helper()
	npm, err := exec.LookPath("npm")
	if err != nil {
		t.Skip("npm not found in PATH")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	out, err := exec.CommandContext(ctx, npm, "view", pkg, field, "--json").Output()
	if err != nil {
		t.Skipf("npm view %s %s failed: %v", pkg, field, err)
	}
	var v string
	if err := json.Unmarshal(out, &v); err != nil {
		t.Fatalf("decode npm view output %q: %v", out, err)
	}
	return v
}

func writeProject(t *testing.T, manifest string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestE2E_LatestMatchesNpmView(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	want := npmView(t, "@angular/core", "dist-tags.latest")
	dir := writeProject(t, angularWorkspace)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := ngupdate.AnalyzeProject(ctx, dir, []string{"@angular/core"}, ngupdate.WithForce(true))
	if err != nil {
		t.Fatalf("AnalyzeProject() error = %v", err)
	}

	core, ok := result.Packages["@angular/core"]
	if !ok {
		t.Fatal("@angular/core missing from result")
	}
	if core.Target == nil {
		t.Fatal("@angular/core has no target")
	}
	if core.Target.Version != want {
		t.Errorf("target = %s, npm view reports latest %s", core.Target.Version, want)
	}
}

func TestE2E_AngularPackageGroup(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	dir := writeProject(t, angularWorkspace)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := ngupdate.AnalyzeProject(ctx, dir, []string{"@angular/core@17"}, ngupdate.WithForce(true))
	if err != nil {
		t.Fatalf("AnalyzeProject() error = %v", err)
	}

	for _, name := range []string{"@angular/common", "@angular/compiler", "@angular/platform-browser"} {
		if _, ok := result.Requested[name]; !ok {
			t.Errorf("package group member %s not requested", name)
		}
		info, ok := result.Packages[name]
		if !ok || info.Target == nil {
			t.Errorf("package group member %s has no update", name)
			continue
		}
		if !strings.HasPrefix(info.Target.Version, "17.") {
			t.Errorf("%s target = %s, want 17.x", name, info.Target.Version)
		}
	}
}
