// Package registry provides types, validation and an HTTP client for npm-style
// package registries.
//
// A registry serves one JSON document per package name, the packument, which
// lists every published version manifest and the dist-tags that point at them:
//
//	GET {registry}/{name}            # packument: name, dist-tags, versions
//	GET {registry}/@scope%2fname     # scoped names are escaped
//
// # Usage
//
// Fetch and validate a packument:
//
//	client := registry.NewClient(registry.DefaultURL)
//	p, err := client.GetPackument(ctx, "@angular/core")
//	if err != nil {
//	    // Handle validation or network errors
//	}
//	m, _ := p.Manifest(p.DistTags["latest"])
//
// Validate arbitrary JSON before trusting it:
//
//	p, err := registry.DecodePackument(data)
//
// Registry selection follows the user's .npmrc:
//
//	cfg, err := registry.LoadNpmrc(".npmrc")
//	url := cfg.RegistryFor("@myco/widgets")
package registry
