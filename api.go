// Package ngupdate works out consistent package updates for npm workspaces.
//
// Given the packages a user asked to update, it pulls in every package that
// must move with them (declared package groups and unmet peer dependencies),
// resolves installed and target versions against the registry, and checks
// that every peer dependency still holds after the update.
//
// # Quick Start
//
// Analyze a project directory (reads package.json, node_modules,
// package-lock.json, .npmrc and .ngupdate.yaml):
//
//	result, err := ngupdate.AnalyzeProject(ctx, ".", []string{"@angular/core@17"})
//
// Or provide the request and workspace directly:
//
//	result, err := ngupdate.Analyze(ctx,
//	    map[string]string{"@angular/core": "17.0.0"},
//	    map[string]string{"@angular/core": "^16.0.0", "@angular/common": "^16.0.0"},
//	)
//
// # Peer Dependency Conflicts
//
// When an update breaks a peer dependency, Analyze returns a
// *PeerConflictError listing every violation. WithForce reports them in
// Result.Violations instead:
//
//	result, err := ngupdate.Analyze(ctx, requested, workspace, ngupdate.WithForce(true))
//
// # Registry Configuration
//
// The public npm registry is used by default. Registries from the project's
// .npmrc, including per-scope registries, are honored:
//
//	ngupdate.Analyze(ctx, requested, workspace,
//	    ngupdate.WithRegistries("https://npm.example.com", ngupdate.DefaultRegistry),
//	)
//
// # Thread Safety
//
// Analyzer and the registry clients are safe for concurrent use.
package ngupdate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

// Analyze is a convenience wrapper around NewAnalyzer and Analyzer.Analyze.
func Analyze(ctx context.Context, requested, workspace map[string]string, opts ...Option) (*Result, error) {
	a, err := NewAnalyzer(opts...)
	if err != nil {
		return nil, err
	}
	return a.Analyze(ctx, requested, workspace)
}

// AnalyzeProject analyzes the project in dir. specs are "name[@version]"
// arguments; names the workspace does not declare are skipped with a
// warning. A .ngupdate.yaml policy in dir is applied before opts.
func AnalyzeProject(ctx context.Context, dir string, specs []string, opts ...Option) (*Result, error) {
	ws, err := ParseWorkspaceDir(dir)
	if err != nil {
		return nil, err
	}

	all := []Option{WithProjectDir(dir)}
	policy, err := LoadPolicyFile(filepath.Join(dir, PolicyFile))
	switch {
	case err == nil:
		all = append(all, WithPolicy(policy))
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}
	all = append(all, opts...)

	a, err := NewAnalyzer(all...)
	if err != nil {
		return nil, err
	}

	deps, warnings := ws.AllDependencies()
	requested, specWarnings, err := ParsePackageSpecs(specs, deps, a.cfg.prerelease)
	if err != nil {
		return nil, fmt.Errorf("parse package specs: %w", err)
	}
	return a.analyze(ctx, requested, deps, append(warnings, specWarnings...))
}
