package registry

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// NpmConfig is the registry-related subset of an .npmrc file.
type NpmConfig struct {
	// Registry is the default registry URL ("registry=").
	Registry string

	// Scopes maps "@scope" to the registry serving it ("@scope:registry=").
	Scopes map[string]string

	// AuthTokens maps a "//host/path/" registry prefix to its bearer token
	// ("//host/path/:_authToken=").
	AuthTokens map[string]string
}

// LoadNpmrc reads an .npmrc file. Environment references such as
// ${NPM_TOKEN} are expanded.
func LoadNpmrc(path string) (*NpmConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read npmrc: %w", err)
	}
	return ParseNpmrc(data)
}

// ParseNpmrc parses .npmrc content.
func ParseNpmrc(data []byte) (*NpmConfig, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters:      "=",
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse npmrc: %w", err)
	}

	cfg := &NpmConfig{
		Scopes:     make(map[string]string),
		AuthTokens: make(map[string]string),
	}
	for _, key := range f.Section(ini.DefaultSection).Keys() {
		name := key.Name()
		value := os.ExpandEnv(strings.TrimSpace(key.String()))
		switch {
		case name == "registry":
			cfg.Registry = strings.TrimSuffix(value, "/")
		case strings.HasPrefix(name, "@") && strings.HasSuffix(name, ":registry"):
			cfg.Scopes[strings.TrimSuffix(name, ":registry")] = strings.TrimSuffix(value, "/")
		case strings.HasPrefix(name, "//") && strings.HasSuffix(name, ":_authToken"):
			cfg.AuthTokens[strings.TrimSuffix(name, ":_authToken")] = value
		}
	}
	return cfg, nil
}

// RegistryFor returns the registry URL serving the package name: the scope
// registry when one is configured, else the default registry, else DefaultURL.
func (c *NpmConfig) RegistryFor(name string) string {
	if c == nil {
		return DefaultURL
	}
	if scope, _, ok := strings.Cut(name, "/"); ok && strings.HasPrefix(scope, "@") {
		if reg, ok := c.Scopes[scope]; ok && reg != "" {
			return reg
		}
	}
	if c.Registry != "" {
		return c.Registry
	}
	return DefaultURL
}

// TokenFor returns the auth token configured for a registry URL.
// The longest matching "//host/path/" prefix wins.
func (c *NpmConfig) TokenFor(registryURL string) string {
	if c == nil {
		return ""
	}
	_, rest, ok := strings.Cut(registryURL, "://")
	if !ok {
		return ""
	}
	target := "//" + strings.TrimSuffix(rest, "/") + "/"

	var token string
	best := -1
	for prefix, t := range c.AuthTokens {
		p := prefix
		if !strings.HasSuffix(p, "/") {
			p += "/"
		}
		if strings.HasPrefix(target, p) && len(p) > best {
			best = len(p)
			token = t
		}
	}
	return token
}

// ScopeRegistries returns the distinct scope registry URLs.
func (c *NpmConfig) ScopeRegistries() map[string]string {
	if c == nil {
		return nil
	}
	out := make(map[string]string, len(c.Scopes))
	for scope, reg := range c.Scopes {
		out[scope] = reg
	}
	return out
}
