package ngupdate

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/albertocavalcante/go-ngupdate/registry"
)

func TestParseFileURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"file:///srv/registry", filepath.Clean("/srv/registry"), false},
		{"file:///srv/registry/", filepath.Clean("/srv/registry"), false},
		{"file:///C:/registry", filepath.Clean("C:/registry"), false},
		{"https://registry.npmjs.org", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := parseFileURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFileURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseFileURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestLocalRegistry(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "rxjs", "package.json"), packumentJSON("rxjs", "7.8.0", "7.8.1"))
	writeFile(t, filepath.Join(root, "@angular", "core", "package.json"), packumentJSON("@angular/core", "17.0.0"))
	writeFile(t, filepath.Join(root, "renamed", "package.json"), packumentJSON("other", "1.0.0"))
	writeFile(t, filepath.Join(root, "invalid", "package.json"), `{"name": "invalid", "dist-tags": {"latest": "1.0.0"}}`)

	reg := newLocalRegistry(root)
	ctx := context.Background()

	t.Run("unscoped", func(t *testing.T) {
		p, err := reg.GetPackument(ctx, "rxjs")
		if err != nil {
			t.Fatalf("GetPackument() error = %v", err)
		}
		if len(p.Versions) != 2 {
			t.Errorf("versions = %d, want 2", len(p.Versions))
		}
		again, _ := reg.GetPackument(ctx, "rxjs")
		if again != p {
			t.Error("second lookup was not served from cache")
		}
	})

	t.Run("scoped", func(t *testing.T) {
		p, err := reg.GetPackument(ctx, "@angular/core")
		if err != nil {
			t.Fatalf("GetPackument() error = %v", err)
		}
		if v, _ := p.Tag(TagLatest); v != "17.0.0" {
			t.Errorf("latest = %s, want 17.0.0", v)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := reg.GetPackument(ctx, "missing")
		if !errors.Is(err, registry.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("name mismatch", func(t *testing.T) {
		if _, err := reg.GetPackument(ctx, "renamed"); err == nil {
			t.Error("error = nil, want name mismatch")
		}
	})

	t.Run("schema violation", func(t *testing.T) {
		_, err := reg.GetPackument(ctx, "invalid")
		if !registry.IsValidationError(err) {
			t.Errorf("error = %v, want validation error", err)
		}
	})

	t.Run("invalid name", func(t *testing.T) {
		if _, err := reg.GetPackument(ctx, "../escape"); err == nil {
			t.Error("error = nil, want invalid name")
		}
	})

	t.Run("canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := reg.GetPackument(cctx, "@angular/core/x"); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestLocalRegistry_BaseURL(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}
	reg := newLocalRegistry("/srv/registry")
	if got := reg.BaseURL(); got != "file:///srv/registry" {
		t.Errorf("BaseURL() = %s, want file:///srv/registry", got)
	}
}
